package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix    = "gateway:cache"
	redisPartitionSet = "gateway:partitions"
)

// RedisStore keeps partitions in Redis so several gateway instances share
// one cache. Entries are JSON under gateway:cache:<partition>:<key> and the
// partition names live in a set for cheap listing.
type RedisStore struct {
	client *redis.Client
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed partition store
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Open returns the named partition. The name is registered lazily on the
// first write so List only reports partitions that hold data.
func (s *RedisStore) Open(name string) Partition {
	return &redisPartition{client: s.client, name: name}
}

// List returns the names of all registered partitions
func (s *RedisStore) List(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, redisPartitionSet).Result()
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	return names, nil
}

// Drop removes a partition, its entries and its registration
func (s *RedisStore) Drop(ctx context.Context, name string) error {
	pattern := fmt.Sprintf("%s:%s:*", redisKeyPrefix, name)
	iter := s.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("drop partition %s: %w", name, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("drop partition %s: %w", name, err)
	}
	if err := s.client.SRem(ctx, redisPartitionSet, name).Err(); err != nil {
		return fmt.Errorf("drop partition %s: %w", name, err)
	}
	return nil
}

type redisPartition struct {
	client *redis.Client
	name   string
}

var _ Partition = (*redisPartition)(nil)

func (p *redisPartition) Name() string {
	return p.name
}

func (p *redisPartition) entryKey(key string) string {
	return fmt.Sprintf("%s:%s:%s", redisKeyPrefix, p.name, key)
}

func (p *redisPartition) Get(ctx context.Context, key string) (*Entry, bool, error) {
	data, err := p.client.Get(ctx, p.entryKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get cache entry: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("decode cache entry: %w", err)
	}
	return &entry, true, nil
}

func (p *redisPartition) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	pipe := p.client.TxPipeline()
	pipe.Set(ctx, p.entryKey(key), data, 0)
	pipe.SAdd(ctx, redisPartitionSet, p.name)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

func (p *redisPartition) Delete(ctx context.Context, key string) error {
	if err := p.client.Del(ctx, p.entryKey(key)).Err(); err != nil {
		return fmt.Errorf("delete cache entry: %w", err)
	}
	return nil
}

func (p *redisPartition) Keys(ctx context.Context) ([]string, error) {
	prefix := fmt.Sprintf("%s:%s:", redisKeyPrefix, p.name)
	iter := p.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val()[len(prefix):])
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list cache keys: %w", err)
	}
	return keys, nil
}

package gateway

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Entry is a cached upstream response
type Entry struct {
	Status   int         `json:"status"`
	Header   http.Header `json:"header"`
	Body     []byte      `json:"body"`
	StoredAt time.Time   `json:"stored_at"`
}

// Partition is one named, versioned response cache. Static assets and
// dynamic API responses live in separate partitions so activation can
// drop stale versions wholesale.
type Partition interface {
	Name() string
	Get(ctx context.Context, key string) (*Entry, bool, error)
	Put(ctx context.Context, key string, entry *Entry) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// Store manages the set of named partitions
type Store interface {
	Open(name string) Partition
	List(ctx context.Context) ([]string, error)
	Drop(ctx context.Context, name string) error
}

// MemoryStore keeps partitions in process memory
type MemoryStore struct {
	mu         sync.RWMutex
	partitions map[string]*memoryPartition
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory partition store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{partitions: make(map[string]*memoryPartition)}
}

// Open returns the named partition, creating it if needed
func (s *MemoryStore) Open(name string) Partition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.partitions[name]; ok {
		return p
	}
	p := &memoryPartition{name: name, entries: make(map[string]*Entry)}
	s.partitions[name] = p
	return p
}

// List returns the names of all partitions
func (s *MemoryStore) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.partitions))
	for name := range s.partitions {
		names = append(names, name)
	}
	return names, nil
}

// Drop removes a partition and everything in it
func (s *MemoryStore) Drop(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.partitions, name)
	return nil
}

type memoryPartition struct {
	name    string
	mu      sync.RWMutex
	entries map[string]*Entry
}

var _ Partition = (*memoryPartition)(nil)

func (p *memoryPartition) Name() string {
	return p.name
}

func (p *memoryPartition) Get(ctx context.Context, key string) (*Entry, bool, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.entries[key]
	return entry, ok, nil
}

func (p *memoryPartition) Put(ctx context.Context, key string, entry *Entry) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[key] = entry
	return nil
}

func (p *memoryPartition) Delete(ctx context.Context, key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, key)
	return nil
}

func (p *memoryPartition) Keys(ctx context.Context) ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.entries))
	for key := range p.entries {
		keys = append(keys, key)
	}
	return keys, nil
}

package gateway

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
)

// LifecycleManager installs new cache versions and activates them. Each
// version owns a static and a dynamic partition; activation drops every
// partition that belongs to another version.
type LifecycleManager struct {
	store    Store
	upstream *url.URL
	client   *http.Client
	version  string
	logger   *zap.Logger
}

// NewLifecycleManager creates a manager for the given cache version
func NewLifecycleManager(store Store, upstream *url.URL, version string, logger *zap.Logger) *LifecycleManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LifecycleManager{
		store:    store,
		upstream: upstream,
		client:   &http.Client{Timeout: 30 * time.Second},
		version:  version,
		logger:   logger,
	}
}

// Version returns the cache version this manager owns
func (m *LifecycleManager) Version() string {
	return m.version
}

// StaticPartition returns the name of this version's static partition
func (m *LifecycleManager) StaticPartition() string {
	return "static-" + m.version
}

// DynamicPartition returns the name of this version's dynamic partition
func (m *LifecycleManager) DynamicPartition() string {
	return "dynamic-" + m.version
}

// Install precaches the manifest into this version's static partition.
// It is all or nothing: every path must fetch with a success status before
// anything is written, and a failed write drops the partial partition.
func (m *LifecycleManager) Install(ctx context.Context, manifest []string) error {
	fetched := make(map[string]*Entry, len(manifest))
	for _, path := range manifest {
		entry, err := m.fetchAsset(ctx, path)
		if err != nil {
			return fmt.Errorf("install aborted at %s: %w", path, err)
		}
		fetched[path] = entry
	}

	partition := m.store.Open(m.StaticPartition())
	for path, entry := range fetched {
		if err := partition.Put(ctx, path, entry); err != nil {
			if dropErr := m.store.Drop(ctx, m.StaticPartition()); dropErr != nil {
				m.logger.Error("failed to drop partial partition", zap.Error(dropErr))
			}
			return fmt.Errorf("install aborted at %s: %w", path, err)
		}
	}
	m.logger.Info("cache version installed",
		zap.String("version", m.version),
		zap.Int("assets", len(manifest)))
	return nil
}

// Activate drops every partition belonging to another cache version.
// Calling it again after a successful run is a no-op.
func (m *LifecycleManager) Activate(ctx context.Context) error {
	keep := map[string]bool{
		m.StaticPartition():  true,
		m.DynamicPartition(): true,
	}
	names, err := m.store.List(ctx)
	if err != nil {
		return fmt.Errorf("activate: %w", err)
	}
	for _, name := range names {
		if keep[name] {
			continue
		}
		if err := m.store.Drop(ctx, name); err != nil {
			return fmt.Errorf("activate: drop %s: %w", name, err)
		}
		m.logger.Info("dropped stale cache partition", zap.String("partition", name))
	}
	return nil
}

func (m *LifecycleManager) fetchAsset(ctx context.Context, path string) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.upstream.String()+path, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &Entry{
		Status:   resp.StatusCode,
		Header:   resp.Header.Clone(),
		Body:     body,
		StoredAt: time.Now(),
	}, nil
}

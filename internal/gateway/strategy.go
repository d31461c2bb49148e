package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
)

// offlineSVG is a neutral placeholder served for image requests that
// cannot be satisfied from cache while the upstream is unreachable
const offlineSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="200" height="200" viewBox="0 0 200 200"><rect width="200" height="200" fill="#d1d5db"/><text x="100" y="105" text-anchor="middle" font-family="sans-serif" font-size="18" fill="#4b5563">Offline</text></svg>`

// offlineFallbackHTML is the last-resort offline page used when the
// precached one is missing
const offlineFallbackHTML = `<!DOCTYPE html><html><head><title>Offline</title></head><body><h1>You are offline</h1><p>This page is not available without a connection. It will load again once you are back online.</p></body></html>`

// OfflinePagePath is the precached navigation fallback
const OfflinePagePath = "/offline.html"

var cacheableImageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".webp": true, ".svg": true, ".ico": true, ".avif": true,
}

// StrategyEngine is the HTTP front door of the offline gateway. GET requests
// under the API prefixes go network-first with the dynamic partition as
// fallback; every other GET goes cache-first against the static partition.
// Non-GET traffic is proxied untouched.
type StrategyEngine struct {
	upstream    *url.URL
	client      *http.Client
	store       Store
	manager     *LifecycleManager
	apiPrefixes []string
	logger      *zap.Logger
}

// EngineOption configures a StrategyEngine
type EngineOption func(*StrategyEngine)

// WithEngineClient sets the HTTP client used for upstream fetches
func WithEngineClient(client *http.Client) EngineOption {
	return func(e *StrategyEngine) {
		e.client = client
	}
}

// WithAPIPrefixes overrides the path prefixes treated as API traffic
func WithAPIPrefixes(prefixes []string) EngineOption {
	return func(e *StrategyEngine) {
		e.apiPrefixes = prefixes
	}
}

// WithEngineLogger sets the logger
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *StrategyEngine) {
		e.logger = logger
	}
}

// NewStrategyEngine creates the gateway handler in front of the upstream
func NewStrategyEngine(upstream *url.URL, store Store, manager *LifecycleManager, opts ...EngineOption) *StrategyEngine {
	e := &StrategyEngine{
		upstream:    upstream,
		client:      &http.Client{Timeout: 30 * time.Second},
		store:       store,
		manager:     manager,
		apiPrefixes: []string{"/api/"},
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ http.Handler = (*StrategyEngine)(nil)

func (e *StrategyEngine) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		e.proxy(w, r)
		return
	}
	if e.isAPIPath(r.URL.Path) {
		e.networkFirst(w, r)
		return
	}
	e.cacheFirst(w, r)
}

func (e *StrategyEngine) isAPIPath(p string) bool {
	for _, prefix := range e.apiPrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func cacheKey(r *http.Request) string {
	if r.URL.RawQuery == "" {
		return r.URL.Path
	}
	return r.URL.Path + "?" + r.URL.RawQuery
}

// networkFirst tries the upstream and falls back to the dynamic partition.
// Fresh successes overwrite the cached copy.
func (e *StrategyEngine) networkFirst(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	partition := e.store.Open(e.manager.DynamicPartition())

	entry, err := e.fetch(r)
	if err == nil && entry.Status >= 200 && entry.Status <= 299 {
		if putErr := partition.Put(r.Context(), key, entry); putErr != nil {
			e.logger.Warn("failed to cache api response", zap.String("key", key), zap.Error(putErr))
		}
		writeEntry(w, entry, "miss")
		return
	}
	if err == nil {
		// the upstream answered with an error; pass it through untouched
		writeEntry(w, entry, "miss")
		return
	}

	e.logger.Debug("upstream unreachable, trying dynamic cache", zap.String("key", key), zap.Error(err))
	cached, ok, getErr := partition.Get(r.Context(), key)
	if getErr != nil {
		e.logger.Warn("dynamic cache read failed", zap.String("key", key), zap.Error(getErr))
	}
	if ok {
		writeEntry(w, cached, "offline")
		return
	}
	writeOfflineJSON(w)
}

// cacheFirst serves static assets from the static partition and only goes
// upstream on a miss
func (e *StrategyEngine) cacheFirst(w http.ResponseWriter, r *http.Request) {
	key := cacheKey(r)
	partition := e.store.Open(e.manager.StaticPartition())

	cached, ok, getErr := partition.Get(r.Context(), key)
	if getErr != nil {
		e.logger.Warn("static cache read failed", zap.String("key", key), zap.Error(getErr))
	}
	if ok {
		writeEntry(w, cached, "hit")
		return
	}

	entry, err := e.fetch(r)
	if err == nil {
		if entry.Status >= 200 && entry.Status <= 299 {
			if putErr := partition.Put(r.Context(), key, entry); putErr != nil {
				e.logger.Warn("failed to cache static response", zap.String("key", key), zap.Error(putErr))
			}
		}
		writeEntry(w, entry, "miss")
		return
	}

	e.serveStaticFallback(w, r)
}

// serveStaticFallback picks the degraded response for an uncached static
// request while the upstream is unreachable
func (e *StrategyEngine) serveStaticFallback(w http.ResponseWriter, r *http.Request) {
	if isNavigation(r) {
		partition := e.store.Open(e.manager.StaticPartition())
		if page, ok, _ := partition.Get(r.Context(), OfflinePagePath); ok {
			writeEntry(w, page, "offline")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, offlineFallbackHTML)
		return
	}
	if isImageRequest(r) {
		w.Header().Set("Content-Type", "image/svg+xml")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, offlineSVG)
		return
	}
	http.Error(w, "upstream unreachable", http.StatusBadGateway)
}

// proxy forwards a request without caching. Transport failures surface as
// the synthetic offline response so clients can tell an outage from a
// server rejection.
func (e *StrategyEngine) proxy(w http.ResponseWriter, r *http.Request) {
	entry, err := e.fetch(r)
	if err != nil {
		writeOfflineJSON(w)
		return
	}
	writeEntry(w, entry, "")
}

func (e *StrategyEngine) fetch(r *http.Request) (*Entry, error) {
	target := *r.URL
	target.Scheme = e.upstream.Scheme
	target.Host = e.upstream.Host

	req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
	if err != nil {
		return nil, err
	}
	req.Header = r.Header.Clone()
	req.Host = e.upstream.Host

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

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

func isNavigation(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func isImageRequest(r *http.Request) bool {
	if cacheableImageExts[strings.ToLower(path.Ext(r.URL.Path))] {
		return true
	}
	accept := r.Header.Get("Accept")
	return strings.HasPrefix(accept, "image/")
}

func writeEntry(w http.ResponseWriter, entry *Entry, cacheState string) {
	for key, values := range entry.Header {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	if cacheState != "" {
		w.Header().Set("X-Gateway-Cache", cacheState)
	}
	w.WriteHeader(entry.Status)
	w.Write(entry.Body)
}

func writeOfflineJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Gateway-Cache", "offline")
	w.WriteHeader(http.StatusServiceUnavailable)
	json.NewEncoder(w).Encode(map[string]any{
		"error":     "You are offline and this data has not been cached yet",
		"offline":   true,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"

	"go.uber.org/zap"
)

// defaultProbePath is the endpoint hit to reclassify ambiguous transport
// failures. It must be cheap and unauthenticated.
const defaultProbePath = "/api/health"

// Dispatcher wraps an HTTP client with offline awareness. While the tracker
// says offline it refuses to touch the network at all; transport failures
// are reclassified with a probe before deciding whether the process went
// offline or the one request failed.
type Dispatcher struct {
	baseURL   string
	client    *http.Client
	tracker   *ConnectivityTracker
	cache     *QueryCache
	probePath string
	logger    *zap.Logger
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithHTTPClient sets the underlying HTTP client
func WithHTTPClient(client *http.Client) DispatcherOption {
	return func(d *Dispatcher) {
		d.client = client
	}
}

// WithQueryCache sets the cache that successful reads populate
func WithQueryCache(cache *QueryCache) DispatcherOption {
	return func(d *Dispatcher) {
		d.cache = cache
	}
}

// WithProbePath overrides the connectivity probe endpoint
func WithProbePath(path string) DispatcherOption {
	return func(d *Dispatcher) {
		d.probePath = path
	}
}

// WithDispatcherLogger sets the logger
func WithDispatcherLogger(logger *zap.Logger) DispatcherOption {
	return func(d *Dispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a dispatcher against the given base URL. The default
// client carries a cookie jar so session cookies ride along on every call.
func NewDispatcher(baseURL string, tracker *ConnectivityTracker, opts ...DispatcherOption) *Dispatcher {
	jar, _ := cookiejar.New(nil)
	d := &Dispatcher{
		baseURL:   strings.TrimRight(baseURL, "/"),
		client:    &http.Client{Jar: jar},
		tracker:   tracker,
		cache:     NewQueryCache(),
		probePath: defaultProbePath,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Cache exposes the query cache for callers that serve stale data offline
func (d *Dispatcher) Cache() *QueryCache {
	return d.cache
}

// callOptions holds per-request settings
type callOptions struct {
	allowUnauthenticated bool
	headers              http.Header
}

// CallOption adjusts a single request
type CallOption func(*callOptions)

// AllowUnauthenticated makes a 401 response return (nil, nil) instead of an
// HTTPError. Used for session probes where "not logged in" is a normal answer.
func AllowUnauthenticated() CallOption {
	return func(o *callOptions) {
		o.allowUnauthenticated = true
	}
}

// WithHeader adds a header to the request
func WithHeader(key, value string) CallOption {
	return func(o *callOptions) {
		if o.headers == nil {
			o.headers = make(http.Header)
		}
		o.headers.Add(key, value)
	}
}

// CacheKey is the query cache key for a request
func CacheKey(method, path string) string {
	return method + " " + path
}

// Get performs a GET and caches the body on success
func (d *Dispatcher) Get(ctx context.Context, path string, opts ...CallOption) ([]byte, error) {
	return d.Do(ctx, http.MethodGet, path, nil, opts...)
}

// Post performs a POST with a JSON body
func (d *Dispatcher) Post(ctx context.Context, path string, payload any, opts ...CallOption) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return d.Do(ctx, http.MethodPost, path, body, opts...)
}

// Do performs a request with offline awareness.
//
// Offline short-circuit: while the tracker reports offline, Do returns an
// OfflineError without any network activity. Transport failures trigger a
// probe; if the probe also fails the tracker flips offline and the error is
// an OfflineError, otherwise the original failure surfaces as-is. Non-2xx
// responses become HTTPError with the server's JSON error message when one
// is present. Successful GET bodies land in the query cache.
func (d *Dispatcher) Do(ctx context.Context, method, path string, body []byte, opts ...CallOption) ([]byte, error) {
	options := callOptions{}
	for _, opt := range opts {
		opt(&options)
	}

	url := d.baseURL + path
	if !d.tracker.IsOnline() {
		d.logger.Debug("request skipped while offline", zap.String("method", method), zap.String("path", path))
		return nil, &OfflineError{URL: url}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range options.headers {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, d.classifyTransportFailure(ctx, url, err)
	}
	defer resp.Body.Close()

	d.tracker.SetOnline()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized && options.allowUnauthenticated {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &HTTPError{Status: resp.StatusCode, Message: extractErrorMessage(respBody)}
	}

	if method == http.MethodGet && d.cache != nil {
		d.cache.Set(CacheKey(method, path), respBody)
	}
	return respBody, nil
}

// classifyTransportFailure decides whether a failed request means the
// process lost connectivity or just that one call broke. A context
// cancellation is neither, so it passes through untouched.
func (d *Dispatcher) classifyTransportFailure(ctx context.Context, url string, cause error) error {
	if ctx.Err() != nil {
		return cause
	}
	if d.probe(ctx) {
		d.tracker.SetOnline()
		return cause
	}
	d.tracker.SetOffline()
	return &OfflineError{URL: url, Err: cause}
}

func (d *Dispatcher) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, d.baseURL+d.probePath, nil)
	if err != nil {
		return false
	}
	resp, err := d.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// extractErrorMessage pulls a human message out of a JSON error body.
// Falls back to empty when the body is not the expected shape.
func extractErrorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	if payload.Error != "" {
		return payload.Error
	}
	return payload.Message
}

package offline

import "fmt"

// OfflineError is returned when a request is skipped or fails because the
// process has no network connectivity. Callers distinguish it from server
// errors with errors.As and fall back to cached data.
type OfflineError struct {
	URL string
	Err error
}

func (e *OfflineError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("offline: request to %s failed: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("offline: request to %s skipped", e.URL)
}

func (e *OfflineError) Unwrap() error {
	return e.Err
}

// HTTPError is returned when the server responded with a non-success status.
// The connection worked, so it never flips the connectivity state.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("http %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("http %d", e.Status)
}

package realtime

import (
	"encoding/json"
	"fmt"
)

// Frame types on the notification socket. The union is closed: an
// unrecognized type fails at the parse boundary instead of being carried
// along half-understood.
const (
	FrameAuth         = "auth"
	FrameAuthSuccess  = "auth_success"
	FrameAuthError    = "auth_error"
	FrameNotification = "notification"
	FramePing         = "ping"
	FramePong         = "pong"
)

// Frame is one message on the notification socket
type Frame struct {
	Type string `json:"type"`
	// Token carries the credential on an auth frame
	Token string `json:"token,omitempty"`
	// Resource names the API resource a notification frame invalidates,
	// e.g. "/api/rfps" or "/api/notifications"
	Resource string `json:"resource,omitempty"`
	// Payload carries the notification body, if any
	Payload json.RawMessage `json:"payload,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// ParseFrame decodes and validates a socket frame
func ParseFrame(data []byte) (Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return Frame{}, fmt.Errorf("decode frame: %w", err)
	}
	switch frame.Type {
	case FrameAuth, FrameAuthSuccess, FrameAuthError, FrameNotification, FramePing, FramePong:
		return frame, nil
	default:
		return Frame{}, fmt.Errorf("unknown frame type %q", frame.Type)
	}
}

package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/jdstudio/internal/jdtext"
)

// SSE event names sent while a job description is revealed.
const (
	EventJD        = "jd"
	EventTick      = "tick"
	EventComplete  = "complete"
	EventCancelled = "cancelled"
	EventError     = "error"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\n", event); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// TickEvent is the payload of a tick: the revealed length in characters and the text added since the last tick.
type TickEvent struct {
	Cursor int    `json:"cursor"`
	Delta  string `json:"delta"`
}

// CompleteEvent is the payload sent once the whole text has been revealed.
type CompleteEvent struct {
	Blocks     []jdtext.Block `json:"blocks"`
	Normalized string         `json:"normalized"`
}

// WriteTick sends a tick event
func (s *SSEWriter) WriteTick(cursor int, delta string) error {
	return s.WriteEvent(EventTick, TickEvent{Cursor: cursor, Delta: delta})
}

// ErrorEvent is the payload of an error event. Status is the HTTP status the failure would
// have had outside a stream.
type ErrorEvent struct {
	Error  string `json:"error"`
	Status int    `json:"status,omitempty"`
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(status int, message string) {
	s.WriteEvent(EventError, ErrorEvent{Error: message, Status: status}) //nolint:errcheck
}

// WriteCancelled sends a cancellation event
func (s *SSEWriter) WriteCancelled(reason string) {
	s.WriteEvent(EventCancelled, map[string]string{"reason": reason}) //nolint:errcheck
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(blocks []jdtext.Block, normalized string) {
	s.WriteEvent(EventComplete, CompleteEvent{ //nolint:errcheck
		Blocks:     blocks,
		Normalized: normalized,
	})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// SSE event names sent by /analyze/stream
const (
	eventStep     = "step"
	eventComplete = "complete"
	eventError    = "error"
)

// StreamError is the payload of the terminal "error" event
type StreamError struct {
	ErrorBody
	Status int `json:"status"`
}

// SSEWriter writes numbered server-sent events. It is safe for concurrent use.
type SSEWriter struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	nextID  int
}

// NewSSEWriter commits the 200 response and event-stream headers
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("streaming not supported")
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher, nextID: 1}, nil
}

// WriteEvent sends data as one JSON-encoded event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", event, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.nextID, event, payload); err != nil {
		return err
	}
	s.nextID++
	s.flusher.Flush()
	return nil
}

// WriteError sends the terminal error event with the status the plain endpoint would have used
func (s *SSEWriter) WriteError(status int, message string) error {
	return s.WriteEvent(eventError, StreamError{ErrorBody: newErrorBody(message), Status: status})
}

// WriteComplete sends the finished analysis
func (s *SSEWriter) WriteComplete(result *types.AnalysisResult) error {
	return s.WriteEvent(eventComplete, result)
}

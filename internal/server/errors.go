package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
)

// ErrorBody is the JSON body of every failed request
type ErrorBody struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

func newErrorBody(message string) ErrorBody {
	return ErrorBody{Error: message, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, newErrorBody(message))
}

// writeError maps err to its status and writes it. Server-side failures are logged.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("analysis failed",
			slog.String("path", r.URL.Path),
			slog.Bool("retryable", apperrors.IsRetryable(err)),
			slog.Any("error", err),
		)
	}
	s.errorResponse(w, status, err.Error())
}

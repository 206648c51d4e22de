package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/pipeline"
	"github.com/jonathan/job-fit-analyzer/internal/server/middleware"
	"github.com/jonathan/job-fit-analyzer/internal/types"
)

// handleAnalyze runs a complete analysis and returns the unified result
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeAnalyzeInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	result, err := s.analyze(ctx, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}

// handleAnalyzeStream runs an analysis and streams progress via SSE.
// A "step" event is sent per pipeline step, then "complete" with the result or "error".
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	in, err := s.decodeAnalyzeInput(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.requestTimeout)
	defer cancel()

	in.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent(eventStep, event); err != nil {
			s.logger.Warn("failed to write SSE event", slog.String("step", event.Step), slog.Any("error", err))
		}
	}

	result, err := s.analyze(ctx, in)
	if err != nil {
		s.logger.Info("streamed analysis failed", slog.Any("error", err))
		if werr := sse.WriteError(apperrors.HTTPStatus(err), err.Error()); werr != nil {
			s.logger.Warn("failed to write SSE error", slog.Any("error", werr))
		}
		return
	}
	if err := sse.WriteComplete(result); err != nil {
		s.logger.Warn("failed to write SSE result", slog.Any("error", err))
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeAnalyzeInput reads the caller's identity and the request body
func (s *Server) decodeAnalyzeInput(w http.ResponseWriter, r *http.Request) (pipeline.Input, error) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		return pipeline.Input{}, &apperrors.AuthError{Message: "authentication required", Cause: err}
	}

	var req types.AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return pipeline.Input{}, &apperrors.ValidationError{
				Field:   "body",
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		return pipeline.Input{}, &apperrors.ValidationError{Field: "body", Message: "invalid JSON request body", Cause: err}
	}

	return pipeline.Input{UserID: userID.String(), Request: req}, nil
}

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/apperrors"
	"github.com/jonathan/job-fit-analyzer/internal/prompts"
	"github.com/jonathan/job-fit-analyzer/internal/schemas"
)

// Attempt bounds
const (
	MinAttempts     = 2
	MaxAttempts     = 3
	DefaultAttempts = 3
)

// Call states, as logged
const (
	statePending   = "pending"
	stateDone      = "done"
	stateInvalid   = "invalid"
	stateExhausted = "exhausted"
)

// Settings are the generator settings shared by every stage of a run
type Settings struct {
	// Model forces one model for every stage; otherwise Models picks by stage
	Model       string
	Models      *Config
	Temperature float32
	MaxAttempts int
	Delay       time.Duration
	Logger      *slog.Logger
}

// DefaultSettings returns the defaults used when nothing is configured
func DefaultSettings() Settings {
	return Settings{
		Models:      DefaultConfig(),
		Temperature: 0.2,
		MaxAttempts: DefaultAttempts,
		Delay:       time.Second,
	}
}

// attempts clamps the configured attempt budget to [MinAttempts, MaxAttempts]
func (s Settings) attempts() int {
	return max(MinAttempts, min(MaxAttempts, s.MaxAttempts))
}

func (s Settings) modelFor(stage Stage) string {
	if s.Model != "" || s.Models == nil {
		return s.Model
	}
	return s.Models.ModelForStage(stage)
}

func (s Settings) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// RetryOptions describes one validated generator call
type RetryOptions struct {
	Settings
	Stage     Stage
	Messages  []Message
	Schema    *schemas.Schema
	MaxTokens int32
}

// CallWithRetry sends the conversation to the generator and decodes the response into T.
//
// Each attempt extracts the JSON payload, checks it against the stage schema, decodes it
// and runs validate. An invalid attempt appends the raw response and a corrective turn
// to a fresh copy of the conversation and tries again after a delay. When the budget is
// spent it returns an *apperrors.ExhaustedError carrying the last reason. Upstream
// service errors that are not retryable are returned as is.
func CallWithRetry[T any](ctx context.Context, gen Generator, opts RetryOptions, validate func(*T) error) (*T, error) {
	if gen == nil {
		return nil, fmt.Errorf("%s: generator is required", opts.Stage)
	}
	if opts.Schema == nil {
		return nil, fmt.Errorf("%s: schema is required", opts.Stage)
	}

	log := opts.logger().With(slog.String("stage", string(opts.Stage)))
	maxAttempts := opts.attempts()
	model := opts.modelFor(opts.Stage)
	messages := opts.Messages
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		log.Info("generator call",
			slog.String("state", statePending),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
		)

		raw, err := gen.Generate(ctx, Request{
			Model:    model,
			Messages: messages,
			ResponseFormat: &ResponseFormat{
				Type: "json_schema",
				JSONSchema: &JSONSchemaFormat{
					Name:   opts.Schema.Name,
					Strict: true,
					Schema: opts.Schema.Document,
				},
			},
			Temperature: opts.Temperature,
			MaxTokens:   opts.MaxTokens,
		})

		var result *T
		var formatErr *apperrors.UpstreamFormatError
		if errors.As(err, &formatErr) && formatErr.Stage == "" {
			formatErr.Stage = string(opts.Stage)
		}
		if err == nil {
			result, err = decodeResponse(opts.Stage, opts.Schema, raw, validate)
			if err == nil {
				log.Info("generator call",
					slog.String("state", stateDone),
					slog.Int("attempt", attempt),
					slog.Int("max_attempts", maxAttempts),
				)
				return result, nil
			}
		}

		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if !apperrors.IsRetryable(err) {
			log.Error("generator call failed",
				slog.Int("attempt", attempt),
				slog.Any("error", err),
			)
			return nil, err
		}

		lastErr = err
		log.Warn("generator call",
			slog.String("state", stateInvalid),
			slog.Int("attempt", attempt),
			slog.Int("max_attempts", maxAttempts),
			slog.String("reason", err.Error()),
		)

		if attempt == maxAttempts {
			break
		}

		if errors.As(err, &formatErr) {
			messages = WithCorrection(messages, raw, formatErr.Message)
		}

		if err := sleep(ctx, opts.Delay*time.Duration(attempt)); err != nil {
			return nil, err
		}
	}

	log.Error("generator call",
		slog.String("state", stateExhausted),
		slog.Int("attempt", maxAttempts),
		slog.Int("max_attempts", maxAttempts),
		slog.String("reason", reasonOf(lastErr)),
	)
	return nil, &apperrors.ExhaustedError{
		Stage:    string(opts.Stage),
		Attempts: maxAttempts,
		Reason:   reasonOf(lastErr),
		Cause:    lastErr,
	}
}

// decodeResponse turns raw generator text into a validated T.
// Failures caused by the response are *apperrors.UpstreamFormatError values whose
// message says what to fix; a broken stage schema is returned as a plain error.
func decodeResponse[T any](stage Stage, schema *schemas.Schema, raw string, validate func(*T) error) (*T, error) {
	payload := CleanJSONBlock(raw)
	if payload == "" || payload[0] != '{' {
		return nil, formatError(stage, "response did not contain a JSON object", nil)
	}

	if err := schema.Validate(payload); err != nil {
		var verr *schemas.ValidationError
		if errors.As(err, &verr) {
			return nil, formatError(stage, "response did not match the schema: "+verr.Summary(), err)
		}
		// A stage schema that does not compile will not compile on the next attempt either
		var loadErr *schemas.SchemaLoadError
		if errors.As(err, &loadErr) && loadErr.Path != schemas.DocumentPath {
			return nil, fmt.Errorf("%s: %w", stage, err)
		}
		return nil, formatError(stage, "invalid JSON syntax", err)
	}

	var result T
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, formatError(stage, "response fields had the wrong types: "+err.Error(), err)
	}

	if validate != nil {
		if err := validate(&result); err != nil {
			return nil, formatError(stage, err.Error(), err)
		}
	}
	return &result, nil
}

func formatError(stage Stage, message string, cause error) error {
	return &apperrors.UpstreamFormatError{Stage: string(stage), Message: message, Cause: cause}
}

// WithCorrection returns a new conversation: the given messages, the rejected response
// and a user turn explaining what was wrong. The input slice is not modified.
func WithCorrection(messages []Message, rawResponse, reason string) []Message {
	next := make([]Message, len(messages), len(messages)+2)
	copy(next, messages)
	if rawResponse != "" {
		next = append(next, Message{Role: RoleAssistant, Content: rawResponse})
	}
	return append(next, Message{Role: RoleUser, Content: correctionPrompt(reason)})
}

func correctionPrompt(reason string) string {
	return prompts.Format(prompts.MustGet("corrections.json", "rejected-response"), map[string]string{
		"Reason": reason,
	})
}

func reasonOf(err error) string {
	if err == nil {
		return "unknown"
	}
	var formatErr *apperrors.UpstreamFormatError
	if errors.As(err, &formatErr) {
		return formatErr.Message
	}
	return err.Error()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

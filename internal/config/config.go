// Package config loads analyzer settings from the environment and an optional JSON file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jonathan/job-fit-analyzer/internal/llm"
	"github.com/jonathan/job-fit-analyzer/internal/ranking"
	"github.com/jonathan/job-fit-analyzer/internal/types"
	"github.com/jonathan/job-fit-analyzer/internal/validation"
)

// Defaults used when the environment does not say otherwise
const (
	DefaultPort           = 8080
	DefaultTemperature    = 0.2
	DefaultRetryDelay     = time.Second
	DefaultRequestTimeout = 5 * time.Minute
)

// AppConfig holds the settings shared by the CLI and the HTTP server.
// Durations come from the environment only.
type AppConfig struct {
	Port int `json:"port,omitempty"`
	// DatabaseURL is the PostgreSQL connection URL
	DatabaseURL string `json:"database_url,omitempty"`
	// SQLitePath is the local store used for offline runs
	SQLitePath string `json:"sqlite_path,omitempty"`
	// APIKey is the Gemini API key
	APIKey string `json:"api_key,omitempty"`

	// Model forces one model for every stage
	Model       string  `json:"model,omitempty"`
	Temperature float32 `json:"temperature,omitempty"`
	MaxAttempts int     `json:"max_attempts,omitempty"`
	// MinWidth is the visual-width floor for bullets
	MinWidth float64 `json:"min_width,omitempty"`
	// UseBrowser renders job pages in headless Chrome when static HTML is thin
	UseBrowser bool `json:"use_browser,omitempty"`

	FitThreshold    int `json:"fit_threshold,omitempty"`
	MaxWeakEvidence int `json:"max_weak_evidence,omitempty"`
	// ImportanceWeights overrides scoring weights by importance level; file only
	ImportanceWeights map[string]float64 `json:"importance_weights,omitempty"`

	RetryDelay     time.Duration `json:"-"`
	RequestTimeout time.Duration `json:"-"`
}

// Load reads the configuration from environment variables, falling back to defaults.
func Load() *AppConfig {
	return &AppConfig{
		Port:           getEnvInt("PORT", DefaultPort),
		DatabaseURL:    getEnvString("DATABASE_URL", ""),
		SQLitePath:     getEnvString("SQLITE_PATH", defaultSQLitePath()),
		APIKey:         getEnvString("GEMINI_API_KEY", ""),
		Model:          getEnvString("JOBFIT_MODEL", ""),
		Temperature:    float32(getEnvFloat("JOBFIT_TEMPERATURE", DefaultTemperature)),
		MaxAttempts:    getEnvInt("JOBFIT_MAX_ATTEMPTS", llm.DefaultAttempts),
		RetryDelay:     getEnvDuration("JOBFIT_RETRY_DELAY", DefaultRetryDelay),
		MinWidth:       getEnvFloat("JOBFIT_MIN_WIDTH", validation.DefaultMinWidth),
		UseBrowser:     getEnvBool("JOBFIT_USE_BROWSER", false),
		RequestTimeout: getEnvDuration("JOBFIT_REQUEST_TIMEOUT", DefaultRequestTimeout),

		FitThreshold:    getEnvInt("JOBFIT_FIT_THRESHOLD", ranking.DefaultFitThreshold),
		MaxWeakEvidence: getEnvInt("JOBFIT_MAX_WEAK_EVIDENCE", ranking.DefaultMaxWeakEvidence),
	}
}

// LoadFile reads the environment configuration and overlays the JSON file at path.
// Keys present in the file win over the environment.
func LoadFile(path string) (*AppConfig, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Load()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration has usable values.
// Attempts outside 2..3 are clamped by the retry loop, so only nonsense is rejected here.
func (c *AppConfig) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: port %d is out of range", c.Port)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("config error: temperature %.2f must be between 0 and 2", c.Temperature)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("config error: max attempts must be positive, got %d", c.MaxAttempts)
	}
	if c.RetryDelay < 0 {
		return errors.New("config error: retry delay must be non-negative")
	}
	if c.MinWidth < 0 || c.MinWidth >= validation.DefaultMaxWidth {
		return fmt.Errorf("config error: min width %.1f must be between 0 and %.0f", c.MinWidth, validation.DefaultMaxWidth)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("config error: request timeout must be positive")
	}
	if c.FitThreshold < 1 || c.FitThreshold > 100 {
		return fmt.Errorf("config error: fit threshold %d must be between 1 and 100", c.FitThreshold)
	}
	if c.MaxWeakEvidence < 0 {
		return fmt.Errorf("config error: max weak evidence must not be negative, got %d", c.MaxWeakEvidence)
	}
	for level, weight := range c.ImportanceWeights {
		if !types.NormalizeImportance(types.Importance(level)).Valid() {
			return fmt.Errorf("config error: unknown importance level %q", level)
		}
		if weight <= 0 {
			return fmt.Errorf("config error: weight for %s must be positive", level)
		}
	}
	return nil
}

// RequireAPIKey reports a configuration error when no generator key is set.
func (c *AppConfig) RequireAPIKey() error {
	if c.APIKey == "" {
		return errors.New("config error: GEMINI_API_KEY is required")
	}
	return nil
}

// ScoringConfig returns the scoring weights and thresholds used for every run.
// Zero values keep the defaults.
func (c *AppConfig) ScoringConfig() ranking.ScoringConfig {
	var opts []ranking.ScoringOption
	if c.FitThreshold > 0 {
		opts = append(opts, ranking.WithFitThreshold(c.FitThreshold))
	}
	if c.MaxWeakEvidence > 0 {
		opts = append(opts, ranking.WithMaxWeakEvidence(c.MaxWeakEvidence))
	}
	for level, weight := range c.ImportanceWeights {
		opts = append(opts, ranking.WithImportanceWeight(types.Importance(level), weight))
	}
	return ranking.NewScoringConfig(opts...)
}

// LLMSettings returns the generator settings for the retry loop.
func (c *AppConfig) LLMSettings(logger *slog.Logger) llm.Settings {
	s := llm.DefaultSettings()
	s.Model = c.Model
	s.Temperature = c.Temperature
	s.MaxAttempts = c.MaxAttempts
	s.Delay = c.RetryDelay
	s.Logger = logger
	return s
}

// WidthLimits returns the bullet width bounds with the configured floor.
func (c *AppConfig) WidthLimits() validation.WidthLimits {
	limits := validation.DefaultWidthLimits()
	limits.Min = c.MinWidth
	return limits
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".jobfit", "jobfit.db")
	}
	return filepath.Join(home, ".jobfit", "jobfit.db")
}

// getEnvString gets an environment variable as a string with a default value.
func getEnvString(key string, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer with a default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvFloat gets an environment variable as a float with a default value.
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvBool gets an environment variable as a boolean with a default value.
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvDuration gets an environment variable as a duration with a default value.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

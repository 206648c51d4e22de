package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// EndpointConfig is the limit for one method and path.
// A path ending in "/" also covers every path below it.
type EndpointConfig struct {
	Path   string
	Method string
	// Limit requests per Window; zero means unlimited
	Limit  int
	Window time.Duration
	// Burst defaults to Limit when zero
	Burst int
}

// Analysis endpoint defaults. A run makes up to three generator calls per stage attempt.
const (
	DefaultAnalyzeLimit  = 10
	DefaultAnalyzeWindow = time.Hour
	DefaultAnalyzeBurst  = 2
)

// LoadConfig reads RATE_LIMIT_* environment variables.
func LoadConfig() *Config {
	if !envOr("RATE_LIMIT_ENABLED", true, strconv.ParseBool) {
		return &Config{Enabled: false}
	}

	analyze := EndpointConfig{
		Limit:  envOr("RATE_LIMIT_ANALYZE_LIMIT", DefaultAnalyzeLimit, strconv.Atoi),
		Window: envOr("RATE_LIMIT_ANALYZE_WINDOW", DefaultAnalyzeWindow, time.ParseDuration),
		Burst:  envOr("RATE_LIMIT_ANALYZE_BURST", DefaultAnalyzeBurst, strconv.Atoi),
	}

	return &Config{
		Enabled:         true,
		DefaultLimit:    envOr("RATE_LIMIT_DEFAULT_LIMIT", 1000, strconv.Atoi),
		DefaultWindow:   envOr("RATE_LIMIT_DEFAULT_WINDOW", time.Minute, time.ParseDuration),
		CleanupInterval: envOr("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute, time.ParseDuration),
		Whitelist:       parseIPList(os.Getenv("RATE_LIMIT_WHITELIST")),
		Blacklist:       parseIPList(os.Getenv("RATE_LIMIT_BLACKLIST")),
		EndpointConfigs: analyzeEndpoints(analyze),
	}
}

// DefaultEndpointConfigs limits both analysis endpoints with the default analysis budget.
func DefaultEndpointConfigs() []EndpointConfig {
	return analyzeEndpoints(EndpointConfig{
		Limit:  DefaultAnalyzeLimit,
		Window: DefaultAnalyzeWindow,
		Burst:  DefaultAnalyzeBurst,
	})
}

func analyzeEndpoints(limit EndpointConfig) []EndpointConfig {
	configs := make([]EndpointConfig, 0, 2)
	for _, path := range []string{"/analyze", "/analyze/stream"} {
		cfg := limit
		cfg.Path = path
		cfg.Method = "POST"
		configs = append(configs, cfg)
	}
	return configs
}

// envOr parses the variable key, keeping def when it is unset or malformed
func envOr[T any](key string, def T, parse func(string) (T, error)) T {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

// parseIPList parses a comma-separated list of client IPs into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}

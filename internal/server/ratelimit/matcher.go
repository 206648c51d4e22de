package ratelimit

import (
	"net/http"
	"strings"
)

// unlimitedEndpoints are never throttled; probes must keep working while a client is limited
var unlimitedEndpoints = map[string]string{
	"/health": http.MethodGet,
}

// MatchEndpoint returns the configuration for a request, or nil to use the defaults.
// An exact path wins; otherwise the longest configured path ending in "/" that
// prefixes the request path is used. Unlimited endpoints get a zero-limit config.
func MatchEndpoint(path string, method string, configs []EndpointConfig) *EndpointConfig {
	if m, ok := unlimitedEndpoints[path]; ok && m == method {
		return &EndpointConfig{Path: path, Method: method}
	}

	var best *EndpointConfig
	for i := range configs {
		cfg := &configs[i]
		if cfg.Method != method {
			continue
		}
		if cfg.Path == path {
			return cfg
		}
		if strings.HasSuffix(cfg.Path, "/") && strings.HasPrefix(path, cfg.Path) &&
			(best == nil || len(cfg.Path) > len(best.Path)) {
			best = cfg
		}
	}
	return best
}

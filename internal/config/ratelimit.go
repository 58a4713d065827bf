package config

import "os"

// RateLimitConfig controls per-key admission on the public endpoints.
// SearchLimit and DetailLimit use the "<count>/<window>" notation parsed by
// the ratelimit package (e.g. "10/minute").  Backend selects the counter
// store: "memory" keeps process-wide counters that reset on restart;
// "redis" shares counters across processes.
type RateLimitConfig struct {
	Enabled     bool
	Backend     string // "memory" or "redis"
	SearchLimit string // limit for GET /pois/search
	DetailLimit string // limit for GET /pois/:id/public
	Prefix      string // key namespace in the backing store
}

func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Backend:     getenv("RATE_LIMIT_BACKEND", "memory"),
		SearchLimit: getenv("RATE_LIMIT_SEARCH", "10/minute"),
		DetailLimit: getenv("RATE_LIMIT_DETAIL", "20/minute"),
		Prefix:      getenv("RATE_LIMIT_PREFIX", "rl"),
	}
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

package config

import (
	"os"
	"time"

	"github.com/iliyamo/investor-portal/internal/ratelimit"
)

// AbuseLimits groups the per-endpoint-class throttles. Login, enlistment
// and status checks are tuned independently because their legitimate
// retry patterns differ. Each block is deliberately longer than its
// window so probing is punished harder than a legitimate burst.
type AbuseLimits struct {
	Login  ratelimit.Config
	Enlist ratelimit.Config
	Status ratelimit.Config
}

// LoadAbuseLimits reads the throttle tuning from environment variables.
// Defaults are safe for production; all values are optional.
func LoadAbuseLimits() AbuseLimits {
	return AbuseLimits{
		Login: ratelimit.Config{
			Window:      envDur("LOGIN_LIMIT_WINDOW", 15*time.Minute),
			MaxAttempts: envInt("LOGIN_LIMIT_MAX_ATTEMPTS", 6),
			Block:       envDur("LOGIN_LIMIT_BLOCK", 30*time.Minute),
		},
		Enlist: ratelimit.Config{
			Window:      envDur("ENLIST_LIMIT_WINDOW", 15*time.Minute),
			MaxAttempts: envInt("ENLIST_LIMIT_MAX_ATTEMPTS", 5),
			Block:       envDur("ENLIST_LIMIT_BLOCK", 60*time.Minute),
		},
		Status: ratelimit.Config{
			Window:      envDur("STATUS_LIMIT_WINDOW", 15*time.Minute),
			MaxAttempts: envInt("STATUS_LIMIT_MAX_ATTEMPTS", 10),
			Block:       envDur("STATUS_LIMIT_BLOCK", 15*time.Minute),
		},
	}
}

func envDur(k string, d time.Duration) time.Duration {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	if dur, err := time.ParseDuration(v); err == nil && dur > 0 {
		return dur
	}
	return d
}

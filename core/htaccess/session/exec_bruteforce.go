package session

import (
	"time"

	"github.com/wyndcliff/htaccessd/core/htaccess/bruteforce"
	"github.com/wyndcliff/htaccessd/core/htaccess/directive"
)

// EvaluateBruteForce applies the configured BruteForce* policy to the
// current request against store, using the session's client IP (or the
// X-Forwarded-For leftmost hop, if enabled). It returns true if the request
// was blocked (status already set to 403 and dispatch must stop).
func EvaluateBruteForce(s Session, list *directive.List, store *bruteforce.Store, now time.Time) bool {
	cfg := bruteforce.ResolveConfig(list)
	if !cfg.Enabled {
		return false
	}
	if !cfg.IsProtected(s.URI()) {
		return false
	}

	xff, _ := s.RequestHeader("X-Forwarded-For")
	ip := cfg.EffectiveIP(s.ClientIP(), xff)

	verdict, throttleMs := store.Evaluate(ip, cfg, now)
	switch verdict {
	case bruteforce.Block:
		s.SetStatus(403)
		return true
	case bruteforce.Throttle:
		s.SetEnv("BF_THROTTLE_MS", formatStatus(throttleMs))
		return false
	default:
		return false
	}
}

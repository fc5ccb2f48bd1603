package common

import "time"

// Freshness TTLs for cached rates. Historical (dated) entries never expire,
// so only current-rate lookups consult these.
const (
	DefaultRateFreshness = 12 * time.Hour
	FreshnessFX          = 12 * time.Hour // current FX moves slowly enough for valuation use
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}

package cache

import "time"

// CacheEntry represents a cached value together with its expiry.
type CacheEntry struct {
	// Value is the stored value. Values are shared between readers and
	// must not be mutated after Set.
	Value any

	// Expires is when the entry becomes stale
	Expires time.Time
}

// isExpiredAt reports whether the entry is stale at now. An entry is valid
// only strictly before Expires.
func (e *CacheEntry) isExpiredAt(now time.Time) bool {
	return !now.Before(e.Expires)
}

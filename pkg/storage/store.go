package storage

import (
	"time"

	"github.com/cuemby/starhunt/pkg/types"
)

// StarStore defines the interface for the canonical star state.
// Implementations are not required to be safe for concurrent use; the hub
// serializes every call under its own lock.
type StarStore interface {
	// Upsert resolves report against the record stored under id and keeps
	// the result. It returns the resulting record and whether it changed.
	Upsert(id types.Identity, report types.Report) (types.Star, bool)

	// Remove deletes the record under id. Removing an unknown id is a no-op.
	Remove(id types.Identity) bool

	// Get returns the record under id
	Get(id types.Identity) (types.Star, bool)

	// Snapshot returns every record
	Snapshot() []types.Star

	// Sweep evicts records older than maxAge since first sighting or idle
	// for longer than maxInactivity, and returns what it evicted.
	Sweep(now time.Time, maxAge, maxInactivity time.Duration) []Eviction

	// Len returns the number of records
	Len() int
}

// EvictionReason says which bound a swept record crossed
type EvictionReason string

const (
	EvictionExpired  EvictionReason = "expired"
	EvictionInactive EvictionReason = "inactive"
)

// Eviction describes one record removed by Sweep
type Eviction struct {
	Identity types.Identity
	Reason   EvictionReason
	Star     types.Star
}

// MetadataStore keeps the last good copy of reference metadata
type MetadataStore interface {
	SaveMetadata(key string, value any) error
	LoadMetadata(key string, value any) (bool, error)
	Close() error
}

// expiry reports whether star has crossed either bound. The absolute bound
// wins when both apply.
func expiry(star types.Star, now time.Time, maxAge, maxInactivity time.Duration) (EvictionReason, bool) {
	if maxAge > 0 && now.Sub(star.FirstFound) > maxAge {
		return EvictionExpired, true
	}
	if maxInactivity > 0 && now.Sub(star.LastUpdate) > maxInactivity {
		return EvictionInactive, true
	}
	return "", false
}

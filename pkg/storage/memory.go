package storage

import (
	"sort"
	"time"

	"github.com/cuemby/starhunt/pkg/resolver"
	"github.com/cuemby/starhunt/pkg/types"
)

// MemoryStore implements StarStore with a plain map. Star state is rebuilt
// from observer reports after a restart, so nothing here touches disk.
type MemoryStore struct {
	stars map[types.Identity]types.Star
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stars: make(map[types.Identity]types.Star),
	}
}

// Upsert resolves report against the stored record and keeps the result
func (s *MemoryStore) Upsert(id types.Identity, report types.Report) (types.Star, bool) {
	var existing *types.Star
	if star, ok := s.stars[id]; ok {
		existing = &star
	}

	star, changed := resolver.Resolve(existing, report)
	if changed {
		s.stars[id] = star
	}
	return star, changed
}

// Remove deletes the record under id
func (s *MemoryStore) Remove(id types.Identity) bool {
	if _, ok := s.stars[id]; !ok {
		return false
	}
	delete(s.stars, id)
	return true
}

// Get returns the record under id
func (s *MemoryStore) Get(id types.Identity) (types.Star, bool) {
	star, ok := s.stars[id]
	return star, ok
}

// Snapshot returns every record ordered by world, then coordinate
func (s *MemoryStore) Snapshot() []types.Star {
	stars := make([]types.Star, 0, len(s.stars))
	for _, star := range s.stars {
		stars = append(stars, star)
	}
	sortStars(stars)
	return stars
}

// Sweep evicts records that crossed the age or inactivity bound
func (s *MemoryStore) Sweep(now time.Time, maxAge, maxInactivity time.Duration) []Eviction {
	var evicted []Eviction
	for id, star := range s.stars {
		reason, expired := expiry(star, now, maxAge, maxInactivity)
		if !expired {
			continue
		}
		delete(s.stars, id)
		evicted = append(evicted, Eviction{Identity: id, Reason: reason, Star: star})
	}

	sort.Slice(evicted, func(i, j int) bool {
		return lessIdentity(evicted[i].Identity, evicted[j].Identity)
	})
	return evicted
}

// Len returns the number of records
func (s *MemoryStore) Len() int {
	return len(s.stars)
}

func sortStars(stars []types.Star) {
	sort.Slice(stars, func(i, j int) bool {
		return lessIdentity(stars[i].Identity(), stars[j].Identity())
	})
}

func lessIdentity(a, b types.Identity) bool {
	if a.World != b.World {
		return a.World < b.World
	}
	if a.Location.X != b.Location.X {
		return a.Location.X < b.Location.X
	}
	return a.Location.Y < b.Location.Y
}

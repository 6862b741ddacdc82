package types

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidWorld is returned for reports without a positive world number
	ErrInvalidWorld = errors.New("world must be a positive number")

	// ErrInvalidTier is returned for reports with a negative tier
	ErrInvalidTier = errors.New("tier must not be negative")
)

// MaxHealth is the health of a star that just reached a new tier
const MaxHealth = 100

// Location is the spatial coordinate of a star inside its world
type Location struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Identity uniquely identifies one spawn instance. Two stars can be live in
// the same world at once, so the world number alone is not enough.
type Identity struct {
	World    int
	Location Location
}

// String returns a compact form used in logs, e.g. "w5@10,20"
func (id Identity) String() string {
	return fmt.Sprintf("w%d@%d,%d", id.World, id.Location.X, id.Location.Y)
}

// Star is the canonical record of one observed spawn
type Star struct {
	World      int       `json:"world"`
	Location   Location  `json:"location"`
	Tier       int       `json:"tier"`
	Health     Value     `json:"health"`
	Miners     Value     `json:"miners"`
	Active     bool      `json:"active"`
	Backup     bool      `json:"backup"`
	FirstFound time.Time `json:"firstFound"`
	LastUpdate time.Time `json:"lastUpdate"`
}

// Identity returns the key the star is stored under
func (s Star) Identity() Identity {
	return Identity{World: s.World, Location: s.Location}
}

// Equal reports whether two records carry the same observable state
func (s Star) Equal(o Star) bool {
	return s.World == o.World &&
		s.Location == o.Location &&
		s.Tier == o.Tier &&
		s.Health == o.Health &&
		s.Miners == o.Miners &&
		s.Active == o.Active &&
		s.Backup == o.Backup &&
		s.FirstFound.Equal(o.FirstFound) &&
		s.LastUpdate.Equal(o.LastUpdate)
}

// Report is one observer's sighting of a star. Active and Backup are
// pointers so that a report which says nothing about them makes no claim.
type Report struct {
	World      int       `json:"world" yaml:"world"`
	Location   Location  `json:"location" yaml:"location"`
	Tier       int       `json:"tier" yaml:"tier"`
	Health     Value     `json:"health" yaml:"health"`
	Miners     Value     `json:"miners" yaml:"miners"`
	Active     *bool     `json:"active,omitempty" yaml:"active,omitempty"`
	Backup     *bool     `json:"backup,omitempty" yaml:"backup,omitempty"`
	FirstFound Timestamp `json:"firstFound,omitempty" yaml:"firstFound,omitempty"`
	Timestamp  Timestamp `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
}

// Identity returns the key of the star the report describes
func (r Report) Identity() Identity {
	return Identity{World: r.World, Location: r.Location}
}

// Validate checks the identity-forming and ordering fields
func (r Report) Validate() error {
	if r.World <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorld, r.World)
	}
	if r.Tier < 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidTier, r.Tier)
	}
	return nil
}

// Normalize clamps health into [0,MaxHealth] and turns negative readings
// into unknown ones.
func (r Report) Normalize() Report {
	r.Health = r.Health.clamp(MaxHealth)
	r.Miners = r.Miners.clamp(-1)
	return r
}

// IsActive returns the reported active flag, treating "no claim" as active
func (r Report) IsActive() bool {
	return r.Active == nil || *r.Active
}

// IsBackup returns the reported backup flag, treating "no claim" as primary
func (r Report) IsBackup() bool {
	return r.Backup != nil && *r.Backup
}

// SpawnTime is one row of the reference spawn-time sheet
type SpawnTime struct {
	World                string `json:"world"`
	AverageSpawnInterval string `json:"averageSpawnInterval"`
}

// Dashboard holds the countdown texts shown above the star list
type Dashboard struct {
	WaveEndsIn         string `json:"waveEndsIn"`
	TimeSinceWaveBegan string `json:"timeSinceWaveBegan"`
	StartScoutingIn    string `json:"startScoutingIn"`
	SpawnPhaseStatus   string `json:"spawnPhaseStatus"`
}

// Dashboard fallbacks used when a field cannot be located in the sheet
const (
	DashboardUnknown    = "Unknown"
	DashboardScoutNow   = "Scout now"
	DashboardFullySpawn = "Fully spawned"
)

// DefaultDashboard returns the dashboard with every field at its fallback
func DefaultDashboard() Dashboard {
	return Dashboard{
		WaveEndsIn:         DashboardUnknown,
		TimeSinceWaveBegan: DashboardUnknown,
		StartScoutingIn:    DashboardScoutNow,
		SpawnPhaseStatus:   DashboardUnknown,
	}
}

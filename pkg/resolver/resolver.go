package resolver

import (
	"time"

	"github.com/cuemby/starhunt/pkg/types"
)

// Resolve folds an incoming report into the existing record for the same
// identity and reports whether anything observable changed. existing is nil
// when the identity has not been seen. The report must already carry the
// time it is judged by in report.Timestamp.
//
// Rules, applied field by field:
//   - tier only rises; a higher tier resets health to MaxHealth
//   - health and miners are overwritten by known readings when the record
//     holds an unknown reading or the report is strictly newer
//   - active and backup latch from true to false and never return
//   - firstFound is fixed at creation
//
// Resolve never mutates existing.
func Resolve(existing *types.Star, report types.Report) (types.Star, bool) {
	report = report.Normalize()
	at := report.Timestamp.Time

	if existing == nil {
		return newStar(report, at), true
	}

	next := *existing
	newer := at.After(existing.LastUpdate)

	if report.Tier > next.Tier {
		next.Tier = report.Tier
		next.Health = types.Known(types.MaxHealth)
	} else if overwrites(next.Health, report.Health, newer) {
		next.Health = report.Health
	}

	if overwrites(next.Miners, report.Miners, newer) {
		next.Miners = report.Miners
	}

	if next.Active && report.Active != nil && !*report.Active {
		next.Active = false
	}

	if next.Backup && report.Backup != nil && !*report.Backup {
		next.Backup = false
	}

	if next.Equal(*existing) {
		return *existing, false
	}

	if newer {
		next.LastUpdate = at
	}
	return next, true
}

// overwrites reports whether an incoming reading replaces the current one
func overwrites(current, incoming types.Value, newer bool) bool {
	if !incoming.Known || incoming == current {
		return false
	}
	return !current.Known || newer
}

func newStar(report types.Report, at time.Time) types.Star {
	firstFound := at
	if ff := report.FirstFound.Time; !ff.IsZero() && !ff.After(at) {
		firstFound = ff
	}

	return types.Star{
		World:      report.World,
		Location:   report.Location,
		Tier:       report.Tier,
		Health:     report.Health,
		Miners:     report.Miners,
		Active:     report.IsActive(),
		Backup:     report.IsBackup(),
		FirstFound: firstFound,
		LastUpdate: at,
	}
}

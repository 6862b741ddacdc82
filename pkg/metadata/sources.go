package metadata

import (
	"context"
	"fmt"

	"github.com/cuemby/starhunt/pkg/types"
)

// Source names, also used as persistence keys and metric labels
const (
	SourceSpawnTimes = "spawn-times"
	SourceDashboard  = "dashboard"
)

// SpawnTimeLoader loads the spawn-time table from f. A sheet that parses
// to no rows is treated as a failure so the previous table survives.
func SpawnTimeLoader(f *Fetcher) Loader[[]types.SpawnTime] {
	return func(ctx context.Context) ([]types.SpawnTime, error) {
		rows, err := f.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		spawnTimes := ParseSpawnTimes(rows, SpawnTimeHeaderRows)
		if len(spawnTimes) == 0 {
			return nil, fmt.Errorf("%w: %d rows, none below the header", ErrEmptySheet, len(rows))
		}
		return spawnTimes, nil
	}
}

// DashboardLoader loads the dashboard countdowns from f
func DashboardLoader(f *Fetcher) Loader[types.Dashboard] {
	return func(ctx context.Context) (types.Dashboard, error) {
		rows, err := f.Fetch(ctx)
		if err != nil {
			return types.Dashboard{}, err
		}
		return ParseDashboard(rows), nil
	}
}

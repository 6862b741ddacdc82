package metadata

import (
	"strings"

	"github.com/cuemby/starhunt/pkg/types"
)

// SpawnTimeHeaderRows is the number of title and header rows above the
// spawn-time table
const SpawnTimeHeaderRows = 3

// ParseSpawnTimes skips the first skip rows and reads the world and the
// average spawn interval from the first two columns of each remaining row.
// Rows with fewer than two columns, or with both cells blank, are ignored.
func ParseSpawnTimes(rows [][]string, skip int) []types.SpawnTime {
	if skip >= len(rows) {
		return nil
	}

	var spawnTimes []types.SpawnTime
	for _, row := range rows[skip:] {
		if len(row) < 2 {
			continue
		}
		world := strings.TrimSpace(row[0])
		interval := strings.TrimSpace(row[1])
		if world == "" && interval == "" {
			continue
		}
		spawnTimes = append(spawnTimes, types.SpawnTime{
			World:                world,
			AverageSpawnInterval: interval,
		})
	}
	return spawnTimes
}

// dashboardField maps label keywords to the field they fill
type dashboardField struct {
	keywords []string
	set      func(d *types.Dashboard, value string)
}

// Fields are matched in order, so the first matching label wins for a cell
var dashboardFields = []dashboardField{
	{
		keywords: []string{"minutes until end of wave", "wave ends"},
		set:      func(d *types.Dashboard, v string) { d.WaveEndsIn = v },
	},
	{
		keywords: []string{"time since wave began", "wave began"},
		set:      func(d *types.Dashboard, v string) { d.TimeSinceWaveBegan = v },
	},
	{
		keywords: []string{"when to start scouting", "start scouting"},
		set:      func(d *types.Dashboard, v string) { d.StartScoutingIn = v },
	},
	{
		keywords: []string{"time until spawn phase ends", "spawn phase"},
		set: func(d *types.Dashboard, v string) {
			if strings.Contains(strings.ToLower(v), "fully") {
				v = types.DashboardFullySpawn
			}
			d.SpawnPhaseStatus = v
		},
	},
}

// ParseDashboard scans every cell for a known label and takes the value
// from the cell to its right. Labels that are missing, or whose value cell
// is blank, keep their defaults. Later matches overwrite earlier ones.
func ParseDashboard(rows [][]string) types.Dashboard {
	dashboard := types.DefaultDashboard()

	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		for j := 0; j < len(row)-1; j++ {
			label := strings.ToLower(strings.TrimSpace(row[j]))
			value := strings.TrimSpace(row[j+1])
			if label == "" || value == "" {
				continue
			}
			for _, field := range dashboardFields {
				if containsAny(label, field.keywords) {
					field.set(&dashboard, value)
					break
				}
			}
		}
	}
	return dashboard
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

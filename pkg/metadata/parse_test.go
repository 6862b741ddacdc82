package metadata

import (
	"testing"

	"github.com/cuemby/starhunt/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestParseSpawnTimes(t *testing.T) {
	rows := [][]string{
		{"Spawn times"},
		{"Updated hourly", ""},
		{"World", "Avg spawn"},
		{" 302 ", "1:41", "extra"},
		{"303"},
		{"", ""},
		{"304", ""},
	}

	got := ParseSpawnTimes(rows, SpawnTimeHeaderRows)

	assert.Equal(t, []types.SpawnTime{
		{World: "302", AverageSpawnInterval: "1:41"},
		{World: "304", AverageSpawnInterval: ""},
	}, got)
}

func TestParseSpawnTimesShortSheet(t *testing.T) {
	assert.Empty(t, ParseSpawnTimes([][]string{{"a", "b"}}, SpawnTimeHeaderRows))
	assert.Empty(t, ParseSpawnTimes(nil, 0))
}

func TestParseDashboard(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want types.Dashboard
	}{
		{
			name: "empty sheet keeps defaults",
			rows: nil,
			want: types.DefaultDashboard(),
		},
		{
			name: "all labels",
			rows: [][]string{
				{"", "Minutes until end of wave:", "12"},
				{"Time since wave began", "33 min"},
				{"When to start scouting", "in 5 min"},
				{"Time until spawn phase ends", "20 min"},
			},
			want: types.Dashboard{
				WaveEndsIn:         "12",
				TimeSinceWaveBegan: "33 min",
				StartScoutingIn:    "in 5 min",
				SpawnPhaseStatus:   "20 min",
			},
		},
		{
			name: "fully spawned",
			rows: [][]string{{"Spawn phase", "Stars are FULLY spawned"}},
			want: types.Dashboard{
				WaveEndsIn:         types.DashboardUnknown,
				TimeSinceWaveBegan: types.DashboardUnknown,
				StartScoutingIn:    types.DashboardScoutNow,
				SpawnPhaseStatus:   types.DashboardFullySpawn,
			},
		},
		{
			name: "blank value keeps default",
			rows: [][]string{{"Start scouting", "  "}, {"Wave ends", ""}},
			want: types.DefaultDashboard(),
		},
		{
			name: "label in last column is ignored",
			rows: [][]string{{"x", "Wave ends"}},
			want: types.DefaultDashboard(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseDashboard(tt.rows))
		})
	}
}

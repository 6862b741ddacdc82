package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestValueUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected Value
	}{
		{name: "number", input: `80`, expected: Known(80)},
		{name: "zero", input: `0`, expected: Known(0)},
		{name: "numeric string", input: `"4"`, expected: Known(4)},
		{name: "question mark", input: `"?"`, expected: Unknown()},
		{name: "empty string", input: `""`, expected: Unknown()},
		{name: "null", input: `null`, expected: Unknown()},
		{name: "negative sentinel", input: `-1`, expected: Unknown()},
		{name: "fractional number", input: `42.0`, expected: Known(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Value
			require.NoError(t, json.Unmarshal([]byte(tt.input), &v))
			assert.Equal(t, tt.expected, v)
		})
	}
}

func TestValueUnmarshalJSONRejectsGarbage(t *testing.T) {
	var v Value
	assert.Error(t, json.Unmarshal([]byte(`"lots"`), &v))
	assert.Error(t, json.Unmarshal([]byte(`true`), &v))
	assert.Error(t, json.Unmarshal([]byte(`12.5`), &v))
	assert.Error(t, json.Unmarshal([]byte(`1e20`), &v))
	assert.Error(t, json.Unmarshal([]byte(`-1e20`), &v))

	var report Report
	assert.Error(t, json.Unmarshal([]byte(`{"world":5,"health":99.9}`), &report))
}

func TestValueMarshalJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		A Value `json:"a"`
		B Value `json:"b"`
	}{A: Known(7), B: Unknown()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":7,"b":null}`, string(data))
}

func TestValueUnmarshalYAML(t *testing.T) {
	var doc struct {
		Health Value `yaml:"health"`
		Miners Value `yaml:"miners"`
		Other  Value `yaml:"other"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("health: 55\nminers: \"?\"\nother: ~\n"), &doc))

	assert.Equal(t, Known(55), doc.Health)
	assert.Equal(t, Unknown(), doc.Miners)
	assert.Equal(t, Unknown(), doc.Other)
}

func TestTimestampUnmarshalJSON(t *testing.T) {
	want := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input string
	}{
		{name: "rfc3339", input: `"2026-10-16T12:00:00Z"`},
		{name: "unix millis", input: `1792152000000`},
		{name: "unix millis as string", input: `"1792152000000"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ts Timestamp
			require.NoError(t, json.Unmarshal([]byte(tt.input), &ts))
			assert.True(t, want.Equal(ts.Time), "got %v", ts.Time)
		})
	}

	var empty Timestamp
	require.NoError(t, json.Unmarshal([]byte(`null`), &empty))
	assert.True(t, empty.IsZero())
}

func TestReportDecodeAndNormalize(t *testing.T) {
	raw := `{"world":5,"location":{"x":10,"y":20},"tier":3,"health":140,"miners":"?","active":false}`

	var r Report
	require.NoError(t, json.Unmarshal([]byte(raw), &r))
	r = r.Normalize()

	assert.Equal(t, Identity{World: 5, Location: Location{X: 10, Y: 20}}, r.Identity())
	assert.Equal(t, Known(MaxHealth), r.Health)
	assert.Equal(t, Unknown(), r.Miners)
	assert.False(t, r.IsActive())
	assert.False(t, r.IsBackup())
	assert.Nil(t, r.Backup)
}

func TestReportValidate(t *testing.T) {
	tests := []struct {
		name    string
		report  Report
		wantErr error
	}{
		{name: "valid", report: Report{World: 1, Tier: 0}},
		{name: "zero world", report: Report{World: 0, Tier: 1}, wantErr: ErrInvalidWorld},
		{name: "negative world", report: Report{World: -3, Tier: 1}, wantErr: ErrInvalidWorld},
		{name: "negative tier", report: Report{World: 2, Tier: -1}, wantErr: ErrInvalidTier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.report.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestIdentityString(t *testing.T) {
	id := Identity{World: 302, Location: Location{X: 3012, Y: -4}}
	assert.Equal(t, "w302@3012,-4", id.String())
}

func TestStarEqual(t *testing.T) {
	now := time.Now()
	a := Star{World: 1, Tier: 2, Health: Known(50), Active: true, FirstFound: now, LastUpdate: now}
	b := a
	assert.True(t, a.Equal(b))

	b.Health = Unknown()
	assert.False(t, a.Equal(b))

	c := a
	c.LastUpdate = now.UTC()
	assert.True(t, a.Equal(c), "same instant in a different location is equal")
}

func TestDefaultDashboard(t *testing.T) {
	d := DefaultDashboard()
	assert.Equal(t, DashboardUnknown, d.WaveEndsIn)
	assert.Equal(t, DashboardUnknown, d.TimeSinceWaveBegan)
	assert.Equal(t, DashboardScoutNow, d.StartScoutingIn)
	assert.Equal(t, DashboardUnknown, d.SpawnPhaseStatus)
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{in: "42", want: Known(42)},
		{in: " 7 ", want: Known(7)},
		{in: "?", want: Unknown()},
		{in: "", want: Unknown()},
		{in: "-1", want: Unknown()},
		{in: "lots", want: Unknown(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/cuemby/starhunt/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		want    MessageType
	}{
		{
			name: "valid update",
			raw:  `{"type":"STAR_UPDATE","data":{"world":5}}`,
			want: StarUpdate,
		},
		{
			name:    "missing type",
			raw:     `{"data":{"world":5}}`,
			wantErr: ErrMissingType,
		},
		{
			name:    "missing data",
			raw:     `{"type":"STAR_REMOVE"}`,
			wantErr: ErrMissingData,
		},
		{
			name:    "null data",
			raw:     `{"type":"STAR_REMOVE","data":null}`,
			wantErr: ErrMissingData,
		},
		{
			name: "unknown type still decodes",
			raw:  `{"type":"HELLO","data":{}}`,
			want: MessageType("HELLO"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := Decode([]byte(tt.raw))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, env.Type)
		})
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	_, err := Decode([]byte(`{"type":`))
	assert.Error(t, err)
}

func TestMessageTypeKnown(t *testing.T) {
	assert.True(t, StarUpdate.Known())
	assert.True(t, Dashboard.Known())
	assert.False(t, MessageType("HELLO").Known())
}

func TestEncode(t *testing.T) {
	at := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	star := types.Star{
		World:      5,
		Location:   types.Location{X: 10, Y: 20},
		Tier:       3,
		Health:     types.Known(100),
		Miners:     types.Unknown(),
		Active:     true,
		FirstFound: at,
		LastUpdate: at,
	}

	msg, err := Encode(StarSync, []types.Star{star})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg, &decoded))
	assert.Equal(t, "STAR_SYNC", decoded["type"])

	list, ok := decoded["data"].([]any)
	require.True(t, ok)
	require.Len(t, list, 1)
	record := list[0].(map[string]any)
	assert.Equal(t, float64(100), record["health"])
	assert.Nil(t, record["miners"], "unknown miners encode as null")

	env, err := Decode(msg)
	require.NoError(t, err)
	stars, err := DecodeStars(env.Data)
	require.NoError(t, err)
	require.Len(t, stars, 1)
	assert.True(t, star.Equal(stars[0]))
}

func TestDecodeReports(t *testing.T) {
	t.Run("single object", func(t *testing.T) {
		reports, rejected, err := DecodeReports(json.RawMessage(
			`{"world":5,"location":{"x":10,"y":20},"tier":2,"health":"?","miners":"4"}`))
		require.NoError(t, err)
		assert.Empty(t, rejected)
		require.Len(t, reports, 1)
		assert.Equal(t, 5, reports[0].World)
		assert.False(t, reports[0].Health.Known)
		assert.Equal(t, types.Known(4), reports[0].Miners)
	})

	t.Run("list with invalid items", func(t *testing.T) {
		reports, rejected, err := DecodeReports(json.RawMessage(`[
			{"world":5,"tier":1},
			{"world":0,"tier":1},
			{"world":6,"tier":-1},
			{"world":"seven"},
			{"world":8,"tier":2}
		]`))
		require.NoError(t, err)
		require.Len(t, reports, 2)
		assert.Equal(t, 5, reports[0].World)
		assert.Equal(t, 8, reports[1].World)
		require.Len(t, rejected, 3)
		assert.ErrorIs(t, rejected[0], types.ErrInvalidWorld)
		assert.ErrorIs(t, rejected[1], types.ErrInvalidTier)
	})

	t.Run("broken list", func(t *testing.T) {
		_, _, err := DecodeReports(json.RawMessage(`[{"world":5},`))
		assert.Error(t, err)
	})
}

func TestDecodeRemoval(t *testing.T) {
	id, err := DecodeRemoval(json.RawMessage(`{"world":5,"location":{"x":10,"y":20},"tier":3}`))
	require.NoError(t, err)
	assert.Equal(t, types.Identity{World: 5, Location: types.Location{X: 10, Y: 20}}, id)

	_, err = DecodeRemoval(json.RawMessage(`{"location":{"x":1,"y":1}}`))
	assert.ErrorIs(t, err, types.ErrInvalidWorld)

	_, err = DecodeRemoval(json.RawMessage(`[1,2]`))
	assert.Error(t, err)
}

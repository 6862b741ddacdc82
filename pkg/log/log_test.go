package log

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/cuemby/starhunt/pkg/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureJSON(t *testing.T, level Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	previous := Logger
	Init(Config{Level: level, JSONOutput: true, Output: &buf})
	t.Cleanup(func() {
		Logger = previous
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	})
	return &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestChildLoggerFields(t *testing.T) {
	buf := captureJSON(t, InfoLevel)

	hubLog := WithComponent("hub")
	hubLog.Info().Msg("hello")
	line := decodeLine(t, buf)
	assert.Equal(t, "hub", line["component"])
	assert.Equal(t, "hello", line["message"])

	buf.Reset()
	starLog := WithStar(types.Identity{World: 5, Location: types.Location{X: 10, Y: 20}})
	starLog.Info().Msg("star")
	line = decodeLine(t, buf)
	assert.EqualValues(t, 5, line["world"])
	assert.EqualValues(t, 10, line["x"])
	assert.EqualValues(t, 20, line["y"])

	buf.Reset()
	connLog := WithConnID("abc")
	connLog.Info().Msg("conn")
	assert.Equal(t, "abc", decodeLine(t, buf)["conn_id"])
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t, WarnLevel)

	Info("dropped")
	assert.Empty(t, buf.String())

	Errorf("failed", errors.New("boom"))
	line := decodeLine(t, buf)
	assert.Equal(t, "error", line["level"])
	assert.Equal(t, "boom", line["error"])
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   DebugLevel,
		"info":    InfoLevel,
		"warn":    WarnLevel,
		"error":   ErrorLevel,
		"":        InfoLevel,
		"verbose": InfoLevel,
	}
	for name, want := range tests {
		assert.Equal(t, want, ParseLevel(name), name)
	}
}

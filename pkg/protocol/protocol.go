package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cuemby/starhunt/pkg/types"
)

// MessageType names the payload carried by an Envelope
type MessageType string

const (
	// StarUpdate carries one report (observer→server) or a list of
	// resolved records (server→observer)
	StarUpdate MessageType = "STAR_UPDATE"

	// StarRemove carries the identity-forming fields of a despawned star
	StarRemove MessageType = "STAR_REMOVE"

	// StarSync carries the full list of live records
	StarSync MessageType = "STAR_SYNC"

	// SpawnTimes carries the reference spawn-time table
	SpawnTimes MessageType = "SPAWN_TIMES"

	// Dashboard carries the wave countdown texts
	Dashboard MessageType = "DASHBOARD"
)

var (
	// ErrMissingType is returned for envelopes without a type
	ErrMissingType = errors.New("message has no type")

	// ErrMissingData is returned for envelopes without a data payload
	ErrMissingData = errors.New("message has no data")
)

// Envelope is the JSON frame exchanged over observer connections
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Known reports whether the type is one this relay understands
func (t MessageType) Known() bool {
	switch t {
	case StarUpdate, StarRemove, StarSync, SpawnTimes, Dashboard:
		return true
	}
	return false
}

// Decode parses a raw frame and checks that type and data are present
func Decode(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("failed to decode envelope: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, ErrMissingType
	}
	if isEmpty(env.Data) {
		return Envelope{}, ErrMissingData
	}
	return env, nil
}

// Encode wraps data in an envelope of the given type
func Encode(t MessageType, data any) ([]byte, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", t, err)
	}
	msg, err := json.Marshal(Envelope{Type: t, Data: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s envelope: %w", t, err)
	}
	return msg, nil
}

// DecodeReports accepts either a single report object or a list of them.
// Items that fail validation are returned in rejected rather than failing
// the whole batch.
func DecodeReports(data json.RawMessage) (reports []types.Report, rejected []error, err error) {
	var raw []json.RawMessage
	if isList(data) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, nil, fmt.Errorf("failed to decode report list: %w", err)
		}
	} else {
		raw = []json.RawMessage{data}
	}

	for i, item := range raw {
		var report types.Report
		if err := json.Unmarshal(item, &report); err != nil {
			rejected = append(rejected, fmt.Errorf("report %d: %w", i, err))
			continue
		}
		if err := report.Validate(); err != nil {
			rejected = append(rejected, fmt.Errorf("report %d: %w", i, err))
			continue
		}
		reports = append(reports, report)
	}
	return reports, rejected, nil
}

// DecodeRemoval extracts the identity of a STAR_REMOVE payload
func DecodeRemoval(data json.RawMessage) (types.Identity, error) {
	var removal struct {
		World    int            `json:"world"`
		Location types.Location `json:"location"`
	}
	if err := json.Unmarshal(data, &removal); err != nil {
		return types.Identity{}, fmt.Errorf("failed to decode removal: %w", err)
	}
	if removal.World <= 0 {
		return types.Identity{}, fmt.Errorf("%w: got %d", types.ErrInvalidWorld, removal.World)
	}
	return types.Identity{World: removal.World, Location: removal.Location}, nil
}

// DecodeStars parses a STAR_SYNC or server STAR_UPDATE payload
func DecodeStars(data json.RawMessage) ([]types.Star, error) {
	if !isList(data) {
		var star types.Star
		if err := json.Unmarshal(data, &star); err != nil {
			return nil, fmt.Errorf("failed to decode star: %w", err)
		}
		return []types.Star{star}, nil
	}

	var stars []types.Star
	if err := json.Unmarshal(data, &stars); err != nil {
		return nil, fmt.Errorf("failed to decode stars: %w", err)
	}
	return stars, nil
}

func isEmpty(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func isList(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}

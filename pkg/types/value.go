package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// UnknownMarker is the text observers send when they cannot read a value
const UnknownMarker = "?"

// Value is an integer reading that may be unknown. The zero Value is
// unknown, so a report that omits the field makes no claim about it.
type Value struct {
	N     int
	Known bool
}

// Known returns a known reading of n
func Known(n int) Value {
	return Value{N: n, Known: true}
}

// Unknown returns the unknown reading
func Unknown() Value {
	return Value{}
}

// ParseValue parses the text form of a reading: a number, "" or "?"
func ParseValue(s string) (Value, error) {
	var v Value
	if err := v.parse(s); err != nil {
		return Unknown(), err
	}
	return v, nil
}

// String implements fmt.Stringer
func (v Value) String() string {
	if !v.Known {
		return UnknownMarker
	}
	return strconv.Itoa(v.N)
}

// clamp turns negative readings into unknown ones and caps known readings
// at limit. A negative limit leaves the upper end open.
func (v Value) clamp(limit int) Value {
	if !v.Known || v.N < 0 {
		return Unknown()
	}
	if limit >= 0 && v.N > limit {
		return Known(limit)
	}
	return v
}

// MarshalJSON encodes unknown readings as null
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Known {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(v.N)), nil
}

// UnmarshalJSON accepts a whole number, a numeric string, null, "" or "?".
// Negative numbers are the legacy unknown sentinel for health. Fractions
// and numbers outside the int32 range are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*v = Unknown()
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return v.parse(s)
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid reading %s: %w", data, err)
	}
	if f != math.Trunc(f) || f < math.MinInt32 || f > math.MaxInt32 {
		return fmt.Errorf("invalid reading %s: not a whole number in range", data)
	}
	*v = Known(int(f)).clamp(-1)
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		*v = Unknown()
		return nil
	}
	return v.parse(node.Value)
}

func (v *Value) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || s == UnknownMarker {
		*v = Unknown()
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid reading %q: %w", s, err)
	}
	*v = Known(n).clamp(-1)
	return nil
}

// Timestamp is a report time that decodes from RFC 3339 text or from unix
// milliseconds, the two forms observer clients send.
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp
func At(t time.Time) Timestamp {
	return Timestamp{Time: t}
}

// MarshalJSON encodes the zero time as null and anything else as RFC 3339
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// UnmarshalJSON accepts null, unix milliseconds or RFC 3339 text
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parse(s)
	}
	var ms int64
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", data, err)
	}
	t.Time = time.UnixMilli(ms).UTC()
	return nil
}

// UnmarshalYAML accepts the same forms as UnmarshalJSON
func (t *Timestamp) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" {
		t.Time = time.Time{}
		return nil
	}
	return t.parse(node.Value)
}

func (t *Timestamp) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	t.Time = parsed
	return nil
}

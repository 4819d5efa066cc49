package sources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FlexibleID decodes identifiers that upstream files publish as numbers,
// numeric strings, or comma-joined lists. Lists keep their first entry and
// anything non-numeric decodes as absent.
type FlexibleID struct {
	Value int
	Valid bool
}

func (f *FlexibleID) UnmarshalJSON(data []byte) error {
	*f = FlexibleID{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decode id: %w", err)
		}
	} else {
		raw = string(data)
	}
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if first == "" {
		return nil
	}
	value, err := strconv.Atoi(first)
	if err != nil {
		// some files publish floats like 123.0
		parsed, ferr := strconv.ParseFloat(first, 64)
		if ferr != nil || parsed != float64(int(parsed)) {
			return nil
		}
		value = int(parsed)
	}
	if value > 0 {
		*f = FlexibleID{Value: value, Valid: true}
	}
	return nil
}

func (f FlexibleID) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Ptr returns the identifier as an optional record value.
func (f FlexibleID) Ptr() *int {
	if !f.Valid {
		return nil
	}
	v := f.Value
	return &v
}

// ID builds a valid FlexibleID.
func ID(v int) FlexibleID {
	return FlexibleID{Value: v, Valid: v > 0}
}

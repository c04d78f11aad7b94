package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// FlexInt accepts JSON numbers or numeric strings ("2", "2.9" → 2). Anything else
// decodes without error and is reported through Valid so callers choose the default.
type FlexInt struct {
	Value int
	Set   bool
	Valid bool
}

// NewFlexInt builds a valid value, mostly for tests and internal callers.
func NewFlexInt(v int) FlexInt {
	return FlexInt{Value: v, Set: true, Valid: true}
}

func (f *FlexInt) UnmarshalJSON(data []byte) error {
	*f = FlexInt{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	f.Set = true

	var raw any
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil
	}
	switch v := raw.(type) {
	case float64:
		f.assign(v)
	case string:
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			f.assign(parsed)
		}
	}
	return nil
}

func (f FlexInt) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(f.Value)), nil
}

// Or returns the parsed value or fallback when absent or malformed.
func (f FlexInt) Or(fallback int) int {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

func (f *FlexInt) assign(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v > math.MaxInt32 || v < math.MinInt32 {
		return
	}
	f.Value = int(math.Trunc(v))
	f.Valid = true
}

package types

import (
	"bytes"
	"encoding/json"
)

// Nullable tracks whether a field was explicitly present in JSON. Present with
// null gives Valid and a nil Value; absent leaves Valid false.
type Nullable[T any] struct {
	Valid bool
	Value *T
}

// NullableOf builds a present, non-null value.
func NullableOf[T any](v T) Nullable[T] {
	return Nullable[T]{Valid: true, Value: &v}
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if bytes.Equal(trimmed, []byte("null")) {
		n.Valid = true
		n.Value = nil
		return nil
	}

	var parsed T
	if err := json.Unmarshal(trimmed, &parsed); err != nil {
		return err
	}
	n.Valid = true
	n.Value = &parsed
	return nil
}

// IsNull reports an explicit null.
func (n Nullable[T]) IsNull() bool {
	return n.Valid && n.Value == nil
}

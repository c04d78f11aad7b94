package types

import (
	"encoding/json"
	"testing"
)

func TestNullableUnmarshal(t *testing.T) {
	type payload struct {
		Category Nullable[string] `json:"category"`
	}

	var got payload
	if err := json.Unmarshal([]byte(`{"category": "Tools"}`), &got); err != nil {
		t.Fatalf("unmarshal value: %v", err)
	}
	if !got.Category.Valid || got.Category.Value == nil || *got.Category.Value != "Tools" {
		t.Fatalf("expected Tools, got %+v", got.Category)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{"category": null}`), &got); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !got.Category.IsNull() {
		t.Fatalf("expected explicit null, got %+v", got.Category)
	}

	got = payload{}
	if err := json.Unmarshal([]byte(`{}`), &got); err != nil {
		t.Fatalf("unmarshal empty: %v", err)
	}
	if got.Category.Valid {
		t.Fatalf("expected absent field to stay invalid, got %+v", got.Category)
	}

	if err := json.Unmarshal([]byte(`{"category": 12}`), &got); err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

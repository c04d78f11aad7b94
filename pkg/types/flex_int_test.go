package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexIntDecoding(t *testing.T) {
	cases := []struct {
		raw   string
		set   bool
		valid bool
		value int
	}{
		{raw: `{"q": 3}`, set: true, valid: true, value: 3},
		{raw: `{"q": "4"}`, set: true, valid: true, value: 4},
		{raw: `{"q": 2.9}`, set: true, valid: true, value: 2},
		{raw: `{"q": "abc"}`, set: true, valid: false},
		{raw: `{"q": true}`, set: true, valid: false},
		{raw: `{"q": null}`, set: false, valid: false},
		{raw: `{}`, set: false, valid: false},
	}

	for _, tc := range cases {
		var payload struct {
			Q FlexInt `json:"q"`
		}
		require.NoError(t, json.Unmarshal([]byte(tc.raw), &payload), tc.raw)
		assert.Equal(t, tc.set, payload.Q.Set, tc.raw)
		assert.Equal(t, tc.valid, payload.Q.Valid, tc.raw)
		if tc.valid {
			assert.Equal(t, tc.value, payload.Q.Value, tc.raw)
		}
	}
}

func TestFlexIntOr(t *testing.T) {
	assert.Equal(t, 5, FlexInt{}.Or(5))
	assert.Equal(t, 1, NewFlexInt(1).Or(5))
}

package types

import (
	"database/sql/driver"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyMarshalsTwoDigits(t *testing.T) {
	out, err := json.Marshal(map[string]Money{"total": MustMoney("20")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":20.00}`, string(out))
	assert.Contains(t, string(out), "20.00")
}

func TestMoneyUnmarshalsNumbersAndStrings(t *testing.T) {
	var payload struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":10.5,"b":"3.25"}`), &payload))
	assert.Equal(t, "10.50", payload.A.String())
	assert.Equal(t, "3.25", payload.B.String())
}

func TestMoneyScansDriverValues(t *testing.T) {
	cases := []any{int64(20), float64(20), "20.00", []byte("20")}
	for _, src := range cases {
		var m Money
		require.NoError(t, m.Scan(src))
		assert.Equal(t, "20.00", m.String())
	}

	v, err := MustMoney("1.5").Value()
	require.NoError(t, err)
	assert.Equal(t, driver.Value("1.5"), v)
}

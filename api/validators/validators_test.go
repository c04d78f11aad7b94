package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/storefrontlabs/storefront-backend/pkg/errors"
)

type loginBody struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required,min=8"`
}

func TestDecodeJSONBody(t *testing.T) {
	decode := func(body string) (loginBody, error) {
		var dest loginBody
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		err := DecodeJSONBody(httptest.NewRecorder(), req, &dest)
		return dest, err
	}

	got, err := decode(`{"identifier":"ana","password":"longenough","extra":true}`)
	require.NoError(t, err)
	assert.Equal(t, "ana", got.Identifier)

	_, err = decode(``)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = decode(`{"identifier":`)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	_, err = decode(`{"password":"short"}`)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, map[string]string{
		"identifier": "is required",
		"password":   "must be at least 8",
	}, typed.Details())
}

func TestQueryParsers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?minItems=2&rating=x&min=1.50&stock=IN&limit=500", nil)

	n, err := ParseQueryInt(req, "minItems", 0, 0, 1000)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = ParseQueryInt(req, "limit", 20, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	absent, err := ParseOptionalInt(req, "missing")
	require.NoError(t, err)
	assert.Nil(t, absent)

	_, err = ParseOptionalInt(req, "rating")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	price, err := ParseQueryDecimal(req, "min")
	require.NoError(t, err)
	assert.Equal(t, "1.5", price.String())

	stock, err := ParseQueryEnum(req, "stock", "in", "out")
	require.NoError(t, err)
	assert.Equal(t, "in", stock)

	_, err = ParseQueryEnum(req, "limit", "in", "out")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abc  ", 0))
	assert.Equal(t, "ab", SanitizeString("abc", 2))
	assert.Equal(t, "héé", SanitizeString("hééllo", 3))
}

package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		entry := map[string]any{}
		require.NoError(t, json.Unmarshal(line, &entry))
		out = append(out, entry)
	}
	return out
}

func TestContextFieldsAreCarried(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	ctx := logg.WithRequestID(context.Background(), "req-1")
	ctx = logg.WithUserID(ctx, "user-1")
	ctx = logg.WithRole(ctx, "buyer")
	logg.Info(ctx, "hello")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "api", lines[0]["service"])
	assert.Equal(t, "req-1", lines[0]["request_id"])
	assert.Equal(t, "user-1", lines[0]["user_id"])
	assert.Equal(t, "buyer", lines[0]["role"])
	assert.Equal(t, "hello", lines[0]["message"])
}

func TestErrorIncludesStackAndCause(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})

	logg.Error(context.Background(), "boom", errors.New("cause"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "cause", lines[0]["error"])
	assert.NotEmpty(t, lines[0]["stack"])
}

func TestWarnStackIsOptional(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Output: &buf})
	logg.Warn(context.Background(), "careful")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	_, hasStack := lines[0]["stack"]
	assert.False(t, hasStack)
}

func TestConsoleFormatIsNotJSON(t *testing.T) {
	var buf bytes.Buffer
	logg := New(Options{ServiceName: "api", Format: "Console", Output: &buf})
	logg.Info(context.Background(), "hello")

	assert.Contains(t, buf.String(), "hello")
	assert.False(t, json.Valid(bytes.TrimSpace(buf.Bytes())))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("chatty"))
}

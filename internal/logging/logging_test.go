package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/wiregen/internal/testutil"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}

func TestNew_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{
		Level:  "info",
		Out:    &buf,
		RunIDs: testutil.NewFixedRunID("run-1"),
		Getenv: env(nil),
	})

	log.Debug().Msg("hidden")
	log.Info().Str("target", "go").Msg("generated")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "info", line["level"])
	assert.Equal(t, "run-1", line["run_id"])
	assert.Equal(t, "go", line["target"])
	assert.Equal(t, "generated", line["message"])
	assert.Contains(t, line, "time")
}

func TestNew_Verbose(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{
		Level:   "error",
		Verbose: true,
		Out:     &buf,
		RunIDs:  testutil.NewFixedRunID(""),
		Getenv:  env(map[string]string{EnvLevel: "error"}),
	})

	log.Debug().Msg("parsing schema")
	out := buf.String()
	assert.Contains(t, out, "DBG")
	assert.Contains(t, out, "parsing schema")
	assert.Contains(t, out, "run_id=test-run-default")
}

func TestResolveLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		env     string
		config  string
		want    zerolog.Level
	}{
		{"default", false, "", "", zerolog.WarnLevel},
		{"config", false, "", "info", zerolog.InfoLevel},
		{"env beats config", false, "error", "info", zerolog.ErrorLevel},
		{"bad env falls through", false, "loud", "debug", zerolog.DebugLevel},
		{"verbose beats all", true, "error", "error", zerolog.DebugLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolveLevel(tt.verbose, tt.env, tt.config))
		})
	}
}

func TestUUIDRunID(t *testing.T) {
	a := UUIDRunID{}.NewRunID()
	b := UUIDRunID{}.NewRunID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	assert.NoError(t, err)
}

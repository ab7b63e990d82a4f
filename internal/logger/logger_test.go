package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logpkg "github.com/maxviazov/pokemon-battle-service/internal/logger"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name           string
		config         *logpkg.LoggerConfig
		expectError    bool
		validateOutput func(zerolog.Logger) bool
	}{
		{
			name: "valid production environment",
			config: &logpkg.LoggerConfig{
				ServiceName:    "test-service",
				ServiceVersion: "1.0.0",
				Env:            "prod",
				Level:          "info",
				TimeField:      "timestamp",
				TimeFormat:     "unix",
				Fields:         map[string]interface{}{"key": "value"},
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
		{
			name: "invalid configuration - wrong env",
			config: &logpkg.LoggerConfig{
				ServiceName: "bad-service",
				Env:         "wrong-env", // not allowed by validator
				Level:       "debug",
			},
			expectError: true,
		},
		{
			name: "invalid log level",
			config: &logpkg.LoggerConfig{
				Env:   "prod",
				Level: "invalid-level", // not allowed
			},
			expectError: true,
		},
		{
			name: "invalid time format",
			config: &logpkg.LoggerConfig{
				Env:        "prod",
				TimeFormat: "2006-01-02",
			},
			expectError: true,
		},
		{
			name: "valid staging environment",
			config: &logpkg.LoggerConfig{
				ServiceVersion: "2.0.0",
				Env:            "staging",
				Level:          "warn",
				OutputTarget:   "stderr",
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.WarnLevel
			},
		},
		{
			name: "valid development environment without debug",
			config: &logpkg.LoggerConfig{
				Env:   "dev",
				Level: "info",
			},
			validateOutput: func(logger zerolog.Logger) bool {
				return zerolog.GlobalLevel() == zerolog.InfoLevel
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			l, err := logpkg.New(test.config)
			if test.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if test.validateOutput != nil {
				assert.True(t, test.validateOutput(l))
			}
		})
	}
}

func TestNew_JSONOutputCarriesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	l, err := logpkg.New(&logpkg.LoggerConfig{
		Env:        "prod",
		Level:      "info",
		Stacktrace: true,
		Fields:     map[string]interface{}{"region": "kanto"},
		Out:        &buf,
	})
	require.NoError(t, err)

	l.Info().Msg("hello")
	out := buf.String()
	assert.Contains(t, out, `"service":"pokemon-battle-service"`)
	assert.Contains(t, out, `"env":"prod"`)
	assert.Contains(t, out, `"region":"kanto"`)
	assert.Contains(t, out, `"message":"hello"`)
	assert.Contains(t, out, `"ts":`)
}

func TestNew_DebugFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "debug.log")
	var buf bytes.Buffer
	l, err := logpkg.New(&logpkg.LoggerConfig{
		Env:       "dev",
		Level:     "debug",
		DebugFile: path,
		Out:       &buf,
	})
	require.NoError(t, err)

	l.Debug().Msg("to both sinks")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to both sinks")
	assert.Contains(t, buf.String(), "to both sinks")
}

package config

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	for _, k := range []string{"DB_DRIVER", "MONGODB_URI", "MONGODB_DATABASE", "DATABASE_URL", "SLUG_MAX_ATTEMPTS", "DB_TIMEOUT"} {
		t.Setenv(k, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, DriverMongo, cfg.DBDriver)
	require.Equal(t, "mongodb://localhost:27017", cfg.MongoURI)
	require.Equal(t, "eventbooking", cfg.MongoDatabase)
	require.Equal(t, 1000, cfg.SlugMaxAttempts)
	require.Equal(t, 10*time.Second, cfg.Timeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/x")
	t.Setenv("SLUG_MAX_ATTEMPTS", "5")
	t.Setenv("DB_TIMEOUT", "3s")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, DriverPostgres, cfg.DBDriver)
	require.Equal(t, "postgres://u:p@db:5432/x", cfg.DBUrl)
	require.Equal(t, 5, cfg.SlugMaxAttempts)
	require.Equal(t, 3*time.Second, cfg.Timeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown driver", "DB_DRIVER", "sqlite"},
		{"non numeric slug attempts", "SLUG_MAX_ATTEMPTS", "many"},
		{"zero slug attempts", "SLUG_MAX_ATTEMPTS", "0"},
		{"bad timeout", "DB_TIMEOUT", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GO_ENV", "production")
			t.Setenv("DB_DRIVER", "")
			t.Setenv("SLUG_MAX_ATTEMPTS", "")
			t.Setenv("DB_TIMEOUT", "")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.key)
		})
	}
}

func TestNewLogger_ProductionJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "production", "warn")

	logger.Info().Msg("dropped")
	logger.Warn().Str("component", "test").Msg("kept")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	require.Equal(t, "warn", line["level"])
	require.Equal(t, "kept", line["message"])
	require.Equal(t, "test", line["component"])
}

func TestNewLogger_ConsoleInDevelopment(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "development", "")

	logger.Debug().Msg("hidden")
	logger.Info().Msg("hello")

	out := buf.String()
	require.Contains(t, out, "hello")
	require.NotContains(t, out, "hidden")
	require.False(t, json.Valid(buf.Bytes()))
}

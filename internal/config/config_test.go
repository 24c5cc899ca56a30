package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "localhost:8765", cfg.Addr)
	require.Equal(t, "info", cfg.LogLevel)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("CHESSHUB_ADDR", "0.0.0.0:9000")
	t.Setenv("CHESSHUB_LOG_LEVEL", "debug")

	cfg, err := FromEnv()
	require.NoError(t, err)
	require.Equal(t, "0.0.0.0:9000", cfg.Addr)
	require.Equal(t, "debug", cfg.LogLevel)
}

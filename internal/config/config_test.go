package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "8090", cfg.HTTPPort)
	require.Equal(t, "0.0.0.0:8090", cfg.Addr())
	require.Equal(t, int64(65536), cfg.WSMaxMessageSize)
	require.Equal(t, 32, cfg.WSSendBuffer)
	require.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9000")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("DB_PASSWORD", "p@ss w0rd")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, "9000", cfg.HTTPPort)
	require.Contains(t, cfg.DSN(), "host=db.internal")
	require.Contains(t, cfg.DatabaseURL(), "p%40ss+w0rd@db.internal")
}

func TestValidate(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.DB.Database = ""
	require.Error(t, cfg.Validate())

	cfg.DB.Database = "signaling_service"
	cfg.AppEnv = "production"
	cfg.DB.Password = ""
	require.Error(t, cfg.Validate())
}

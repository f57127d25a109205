package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kllinic/marketplace/pkg/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "kllinic", cfg.Database.Database)
	assert.Equal(t, "disable", cfg.Database.SSLMode)
	assert.Equal(t, time.Hour, cfg.Auth.TokenTTL)
	assert.Empty(t, cfg.Auth.AdminEmails, "no account has admin access by default")
	assert.True(t, cfg.Roles.FallbackEnabled)
	assert.Equal(t, "patient", cfg.Roles.FallbackRole)
	assert.False(t, cfg.OTEL.Enabled)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("ROLE_FALLBACK_ENABLED", "false")
	t.Setenv("AUTH_TOKEN_TTL", "30m")
	t.Setenv("AUTH_ADMIN_EMAILS", "admin@kllinic.test, ops@kllinic.test")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.False(t, cfg.Roles.FallbackEnabled)
	assert.Equal(t, 30*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, []string{"admin@kllinic.test", "ops@kllinic.test"}, cfg.Auth.AdminEmails,
		"whitespace around entries is trimmed")
}

func TestDatabaseDSN(t *testing.T) {
	cfg := config.DatabaseConfig{
		Host: "localhost", Port: 5432, User: "postgres",
		Password: "secret", Database: "kllinic", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=secret dbname=kllinic sslmode=disable",
		cfg.DatabaseDSN(),
	)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("DB_NAME", "staff")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Second, cfg.LockTTL)
	assert.Equal(t, []string{"employee", "manager", "admin"}, cfg.EmployeeRoles)
	assert.Equal(t, []string{"admin", "manager"}, cfg.ManageRoles)
	assert.Equal(t, "app:pw@tcp(127.0.0.1:3306)/staff?charset=utf8mb4&parseTime=true&clientFoundRows=true", cfg.DSN())
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("USER_ROLES", "member")
	t.Setenv("LOCK_WAIT", "250ms")
	t.Setenv("IS_PROD", "true")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"member"}, cfg.UserRoles)
	assert.Equal(t, 250*time.Millisecond, cfg.LockWait)
	assert.True(t, cfg.IsProd)
}

func TestLoadConfig_InvalidDuration(t *testing.T) {
	t.Setenv("LOCK_TTL", "soon")
	_, err := LoadConfig()
	assert.Error(t, err)
}

package configs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"focusroom/internal/app/room"
)

var configKeys = []string{
	"ENVIRONMENT", "PORT", "ALLOWED_ORIGINS", "JWT_SECRET", "DATABASE_URL",
	"ROOM_DELETION_GRACE", "TIMER_TICK_INTERVAL",
	"DEFAULT_FOCUS_SECONDS", "DEFAULT_BREAK_SECONDS", "DEFAULT_STRICT_MODE", "DEFAULT_AUTO_PHASE_CHANGE",
}

// clearEnv blanks every variable FromEnv reads; empty counts as unset.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.AllowedOrigins)
	assert.Equal(t, devJWTSecret, cfg.JWTSecret)
	assert.Empty(t, cfg.DatabaseDSN)
	assert.Equal(t, 2*time.Minute, cfg.RoomDeletionGrace)
	assert.Equal(t, time.Second, cfg.TimerTickInterval)
	assert.Equal(t, room.DefaultSettings(), cfg.DefaultSettings)
}

func TestFromEnv_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("ROOM_DELETION_GRACE", "30s")
	t.Setenv("TIMER_TICK_INTERVAL", "500ms")
	t.Setenv("DEFAULT_FOCUS_SECONDS", "3000")
	t.Setenv("DEFAULT_BREAK_SECONDS", "600")
	t.Setenv("DEFAULT_STRICT_MODE", "true")
	t.Setenv("DEFAULT_AUTO_PHASE_CHANGE", "false")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 30*time.Second, cfg.RoomDeletionGrace)
	assert.Equal(t, 500*time.Millisecond, cfg.TimerTickInterval)
	assert.Equal(t, 3000, cfg.DefaultSettings.FocusDurationSeconds)
	assert.Equal(t, 600, cfg.DefaultSettings.BreakDurationSeconds)
	assert.True(t, cfg.DefaultSettings.StrictMode)
	assert.False(t, cfg.DefaultSettings.AutoPhaseChange)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		key, value string
	}{
		{"PORT", "eighty"},
		{"PORT", "80"},
		{"ROOM_DELETION_GRACE", "soon"},
		{"ROOM_DELETION_GRACE", "-1m"},
		{"TIMER_TICK_INTERVAL", "0s"},
		{"DEFAULT_FOCUS_SECONDS", "0"},
		{"DEFAULT_BREAK_SECONDS", "abc"},
		{"DEFAULT_STRICT_MODE", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnv_ProductionRequirements(t *testing.T) {
	clearEnv(t)
	t.Setenv("ENVIRONMENT", "production")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "s3cret")
	_, err = FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")

	t.Setenv("DATABASE_URL", "postgres://localhost/focusroom")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.False(t, cfg.IsDevelopment())
}

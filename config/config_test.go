package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("BLINDTEST_SERVER_ALLOWED_ORIGINS", "http://localhost:3000, https://blindtest.example.com")
	t.Setenv("BLINDTEST_AUTH_JWT_KEY", "secret")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Server.Addr)
	assert.Equal(t, []string{"http://localhost:3000", "https://blindtest.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "secret", cfg.Auth.JWTKey)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.TokenAge)
	assert.Equal(t, 2*time.Second, cfg.Redis.SnapshotTTL)
	assert.Empty(t, cfg.Postgres.URL)
	assert.Empty(t, cfg.Redis.Addr)
	assert.False(t, cfg.Game.ServerTiming)
	assert.Equal(t, 10, cfg.Game.DefaultRounds)
	assert.Equal(t, 30, cfg.Game.DefaultTimerSeconds)
	assert.Equal(t, 5.0, cfg.Game.GuessRate)
	assert.Equal(t, 10, cfg.Game.GuessBurst)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("BLINDTEST_SERVER_ALLOWED_ORIGINS", "http://a")
	t.Setenv("BLINDTEST_AUTH_JWT_KEY", "secret")
	t.Setenv("BLINDTEST_SERVER_ADDR", ":8080")
	t.Setenv("BLINDTEST_POSTGRES_URL", "postgres://u:p@db:5432/blindtest")
	t.Setenv("BLINDTEST_REDIS_ADDR", "cache:6379")
	t.Setenv("BLINDTEST_REDIS_SNAPSHOT_TTL", "500ms")
	t.Setenv("BLINDTEST_GAME_SERVER_TIMING", "true")
	t.Setenv("BLINDTEST_GAME_DEFAULT_ROUNDS", "5")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/blindtest", cfg.Postgres.URL)
	assert.Equal(t, "cache:6379", cfg.Redis.Addr)
	assert.Equal(t, 500*time.Millisecond, cfg.Redis.SnapshotTTL)
	assert.True(t, cfg.Game.ServerTiming)
	assert.Equal(t, 5, cfg.Game.DefaultRounds)
}

func TestLoadMissingRequired(t *testing.T) {
	testCases := []struct {
		description string
		origins     string
		jwtKey      string
	}{
		{"no origins", "", "secret"},
		{"blank origins", " , ", "secret"},
		{"no jwt key", "http://a", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			t.Setenv("BLINDTEST_SERVER_ALLOWED_ORIGINS", tc.origins)
			t.Setenv("BLINDTEST_AUTH_JWT_KEY", tc.jwtKey)

			_, err := load(viper.New())
			assert.ErrorIs(t, err, ErrMissingConfig)
		})
	}
}

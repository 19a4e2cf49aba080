package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tycoon.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 1500*time.Millisecond, cfg.Ticks.Price.Duration)
	assert.Equal(t, "ultra", cfg.Game.Variant)
}

func TestLoad_MissingFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, Defaults().Server.Port, cfg.Server.Port)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
log_level = "debug"

[game]
variant = "basic"
seed = 7

[ticks]
price = "500ms"
mining = "0s"

[kafka]
brokers = "localhost:9092"
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "basic", cfg.Game.Variant)
	assert.Equal(t, uint64(7), cfg.Game.Seed)
	assert.Equal(t, 500*time.Millisecond, cfg.Ticks.Price.Duration)
	assert.Zero(t, cfg.Ticks.Mining.Duration)
	assert.Equal(t, 60*time.Second, cfg.Ticks.Staking.Duration, "untouched keys keep defaults")
	assert.Equal(t, "tycoon.events", cfg.Kafka.Topic)
}

func TestLoad_BadDuration(t *testing.T) {
	path := writeConfig(t, "[ticks]\nprice = \"fast\"\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("TYCOON_GAME_DIFFICULTY", "hard")
	t.Setenv("TYCOON_TICKS_NEWS", "2s")
	t.Setenv("TYCOON_SERVER_RATE_LIMIT", "5.5")
	t.Setenv("DATABASE_URL", "postgres://localhost/tycoon")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "hard", cfg.Game.Difficulty)
	assert.Equal(t, 2*time.Second, cfg.Ticks.News.Duration)
	assert.Equal(t, 5.5, cfg.Server.RateLimit)
	assert.Equal(t, "postgres://localhost/tycoon", cfg.Postgres.DSN)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := Defaults()
	cfg.LogLevel = "verbose"
	cfg.Game.Variant = "arcade"
	cfg.Server.Port = 0
	cfg.S3.Bucket = "snapshots"
	cfg.S3.AccessKey = "only-half"
	cfg.Kafka.Brokers = "localhost:9092"
	cfg.Kafka.Topic = ""

	err := cfg.Validate()
	require.Error(t, err)
	for _, want := range []string{"log_level", "variant", "port", "secret_key", "kafka"} {
		assert.Contains(t, err.Error(), want)
	}
}

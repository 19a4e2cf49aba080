package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies TYCOON_* environment variable overrides, and
// returns the final Config. An empty path, or a path that does not exist,
// leaves the defaults in place. The returned Config has NOT been validated.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known TYCOON_* environment variables and
// overwrites the corresponding Config fields when a variable is set.
func applyEnvOverrides(cfg *Config) {
	// ── Server ──
	setInt(&cfg.Server.Port, "TYCOON_SERVER_PORT")
	setInt(&cfg.Server.Port, "PORT") // platform convention
	setStr(&cfg.Server.CORSOrigin, "TYCOON_SERVER_CORS_ORIGIN")
	setFloat64(&cfg.Server.RateLimit, "TYCOON_SERVER_RATE_LIMIT")
	setInt(&cfg.Server.RateBurst, "TYCOON_SERVER_RATE_BURST")
	setDuration(&cfg.Server.RequestTimeout, "TYCOON_SERVER_REQUEST_TIMEOUT")
	setBool(&cfg.Server.AccessLog, "TYCOON_SERVER_ACCESS_LOG")
	setBool(&cfg.Server.WSSkipTicks, "TYCOON_SERVER_WS_SKIP_TICKS")

	// ── Game ──
	setStr(&cfg.Game.Variant, "TYCOON_GAME_VARIANT")
	setStr(&cfg.Game.Difficulty, "TYCOON_GAME_DIFFICULTY")
	setUint64(&cfg.Game.Seed, "TYCOON_GAME_SEED")
	setFloat64(&cfg.Game.StartingCash, "TYCOON_GAME_STARTING_CASH")
	setBool(&cfg.Game.AutoStart, "TYCOON_GAME_AUTO_START")
	setBool(&cfg.Game.LoadLatest, "TYCOON_GAME_LOAD_LATEST")

	// ── Ticks ──
	setDuration(&cfg.Ticks.Price, "TYCOON_TICKS_PRICE")
	setDuration(&cfg.Ticks.Staking, "TYCOON_TICKS_STAKING")
	setDuration(&cfg.Ticks.Mining, "TYCOON_TICKS_MINING")
	setDuration(&cfg.Ticks.DeFi, "TYCOON_TICKS_DEFI")
	setDuration(&cfg.Ticks.Bots, "TYCOON_TICKS_BOTS")
	setDuration(&cfg.Ticks.News, "TYCOON_TICKS_NEWS")
	setDuration(&cfg.Ticks.Autosave, "TYCOON_TICKS_AUTOSAVE")

	// ── Postgres ──
	setStr(&cfg.Postgres.DSN, "TYCOON_POSTGRES_DSN")
	setStr(&cfg.Postgres.DSN, "DATABASE_URL") // compatibility alias
	setBool(&cfg.Postgres.RunMigrations, "TYCOON_POSTGRES_RUN_MIGRATIONS")

	// ── Redis ──
	setStr(&cfg.Redis.URL, "TYCOON_REDIS_URL")
	setStr(&cfg.Redis.URL, "REDIS_URL") // compatibility alias
	setDuration(&cfg.Redis.CacheTTL, "TYCOON_REDIS_CACHE_TTL")
	setStr(&cfg.Redis.EventsChannel, "TYCOON_REDIS_EVENTS_CHANNEL")

	// ── S3 ──
	setStr(&cfg.S3.Endpoint, "TYCOON_S3_ENDPOINT")
	setStr(&cfg.S3.Region, "TYCOON_S3_REGION")
	setStr(&cfg.S3.Bucket, "TYCOON_S3_BUCKET")
	setStr(&cfg.S3.AccessKey, "TYCOON_S3_ACCESS_KEY")
	setStr(&cfg.S3.SecretKey, "TYCOON_S3_SECRET_KEY")
	setBool(&cfg.S3.UseSSL, "TYCOON_S3_USE_SSL")
	setBool(&cfg.S3.ForcePathStyle, "TYCOON_S3_FORCE_PATH_STYLE")
	setStr(&cfg.S3.Prefix, "TYCOON_S3_PREFIX")

	// ── Kafka ──
	setStr(&cfg.Kafka.Brokers, "TYCOON_KAFKA_BROKERS")
	setStr(&cfg.Kafka.Topic, "TYCOON_KAFKA_TOPIC")

	// ── Top-level ──
	setStr(&cfg.LogLevel, "TYCOON_LOG_LEVEL")
}

// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setUint64(dst *uint64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

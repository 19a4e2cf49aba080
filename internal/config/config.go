// Package config defines the engine service configuration and its
// validation.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a
// TOML file and then optionally overridden by TYCOON_* environment variables.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Game     GameConfig     `toml:"game"`
	Ticks    TicksConfig    `toml:"ticks"`
	Postgres PostgresConfig `toml:"postgres"`
	Redis    RedisConfig    `toml:"redis"`
	S3       S3Config       `toml:"s3"`
	Kafka    KafkaConfig    `toml:"kafka"`
	LogLevel string         `toml:"log_level"`
}

// ServerConfig holds HTTP server parameters.
type ServerConfig struct {
	Port           int      `toml:"port"`
	CORSOrigin     string   `toml:"cors_origin"`
	RateLimit      float64  `toml:"rate_limit"` // command requests per second
	RateBurst      int      `toml:"rate_burst"`
	RequestTimeout duration `toml:"request_timeout"`
	AccessLog      bool     `toml:"access_log"`
	WSSkipTicks    bool     `toml:"ws_skip_ticks"`
}

// GameConfig selects the edition of the game started at boot.
type GameConfig struct {
	Variant      string  `toml:"variant"`    // basic|enhanced|ultra
	Difficulty   string  `toml:"difficulty"` // easy|normal|hard
	Seed         uint64  `toml:"seed"`       // 0 → seeded from the clock
	StartingCash float64 `toml:"starting_cash"`
	AutoStart    bool    `toml:"auto_start"`
	LoadLatest   bool    `toml:"load_latest"` // resume the newest saved session
}

// TicksConfig holds the scheduler intervals. A zero interval disables that
// tick.
type TicksConfig struct {
	Price    duration `toml:"price"`
	Staking  duration `toml:"staking"`
	Mining   duration `toml:"mining"`
	DeFi     duration `toml:"defi"`
	Bots     duration `toml:"bots"`
	News     duration `toml:"news"`
	Autosave duration `toml:"autosave"`
}

// PostgresConfig holds the session store connection. An empty DSN selects
// the in-memory store.
type PostgresConfig struct {
	DSN           string `toml:"dsn"`
	RunMigrations bool   `toml:"run_migrations"`
}

// RedisConfig holds the Redis cache and event channel parameters. An empty
// URL disables both.
type RedisConfig struct {
	URL           string   `toml:"url"`
	CacheTTL      duration `toml:"cache_ttl"`
	EventsChannel string   `toml:"events_channel"`
}

// S3Config holds the snapshot archive bucket. An empty bucket disables
// archiving.
type S3Config struct {
	Endpoint       string `toml:"endpoint"`
	Region         string `toml:"region"`
	Bucket         string `toml:"bucket"`
	AccessKey      string `toml:"access_key"`
	SecretKey      string `toml:"secret_key"`
	UseSSL         bool   `toml:"use_ssl"`
	ForcePathStyle bool   `toml:"force_path_style"`
	Prefix         string `toml:"prefix"`
}

// KafkaConfig holds the event topic. Empty brokers disable Kafka.
type KafkaConfig struct {
	Brokers string `toml:"brokers"` // comma separated
	Topic   string `toml:"topic"`
}

// duration is a wrapper around time.Duration that supports TOML string decoding
// (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config that runs a standalone ultra game on :8080 with
// the in-memory store.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:           8080,
			CORSOrigin:     "*",
			RateLimit:      20,
			RateBurst:      40,
			RequestTimeout: duration{30 * time.Second},
		},
		Game: GameConfig{
			Variant:      "ultra",
			Difficulty:   "normal",
			StartingCash: 10000,
		},
		Ticks: TicksConfig{
			Price:    duration{1500 * time.Millisecond},
			Staking:  duration{60 * time.Second},
			Mining:   duration{10 * time.Second},
			DeFi:     duration{30 * time.Second},
			Bots:     duration{5 * time.Second},
			News:     duration{8 * time.Second},
			Autosave: duration{30 * time.Second},
		},
		Postgres: PostgresConfig{RunMigrations: true},
		Redis: RedisConfig{
			CacheTTL:      duration{30 * time.Second},
			EventsChannel: "tycoon:events",
		},
		S3: S3Config{
			Region:         "us-east-1",
			UseSSL:         true,
			ForcePathStyle: true,
			Prefix:         "snapshots",
		},
		Kafka:    KafkaConfig{Topic: "tycoon.events"},
		LogLevel: "info",
	}
}

var validVariants = map[string]bool{"basic": true, "enhanced": true, "ultra": true}

var validDifficulties = map[string]bool{"easy": true, "normal": true, "hard": true}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks Config for obviously invalid or missing values and returns a
// combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server: port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.RateLimit < 0 {
		errs = append(errs, "server: rate_limit must not be negative")
	}
	if c.Server.RateLimit > 0 && c.Server.RateBurst < 1 {
		errs = append(errs, "server: rate_burst must be at least 1 when rate_limit is set")
	}

	if !validVariants[strings.ToLower(c.Game.Variant)] {
		errs = append(errs, fmt.Sprintf("game: unknown variant %q (valid: basic, enhanced, ultra)", c.Game.Variant))
	}
	if !validDifficulties[strings.ToLower(c.Game.Difficulty)] {
		errs = append(errs, fmt.Sprintf("game: unknown difficulty %q (valid: easy, normal, hard)", c.Game.Difficulty))
	}
	if c.Game.StartingCash < 0 {
		errs = append(errs, "game: starting_cash must not be negative")
	}

	for name, d := range map[string]duration{
		"price":    c.Ticks.Price,
		"staking":  c.Ticks.Staking,
		"mining":   c.Ticks.Mining,
		"defi":     c.Ticks.DeFi,
		"bots":     c.Ticks.Bots,
		"news":     c.Ticks.News,
		"autosave": c.Ticks.Autosave,
	} {
		if d.Duration < 0 {
			errs = append(errs, fmt.Sprintf("ticks: %s must not be negative", name))
		}
	}

	if c.Redis.URL != "" && c.Redis.CacheTTL.Duration <= 0 {
		errs = append(errs, "redis: cache_ttl must be positive")
	}

	if c.S3.Bucket != "" {
		if c.S3.Region == "" {
			errs = append(errs, "s3: region must not be empty when bucket is set")
		}
		if (c.S3.AccessKey == "") != (c.S3.SecretKey == "") {
			errs = append(errs, "s3: access_key and secret_key must be set together")
		}
	}

	if c.Kafka.Brokers != "" && c.Kafka.Topic == "" {
		errs = append(errs, "kafka: topic must not be empty when brokers are set")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

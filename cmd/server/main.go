// Command server runs one crypto tycoon game behind an HTTP/WebSocket API.
// It loads configuration, wires the optional Postgres, Redis, S3 and Kafka
// backends, and runs the tick scheduler until SIGINT or SIGTERM.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/cryptotycoon/engine/internal/api"
	"github.com/cryptotycoon/engine/internal/blob"
	"github.com/cryptotycoon/engine/internal/bus"
	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/config"
	"github.com/cryptotycoon/engine/internal/game"
	"github.com/cryptotycoon/engine/internal/metrics"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
	"github.com/cryptotycoon/engine/internal/store"
)

func main() {
	configPath := flag.String("config", "tycoon.toml", "path to configuration file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "path", *configPath, "err", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	})))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		slog.Error("server stopped with error", "err", err)
		os.Exit(1)
	}
	fmt.Println("tycoon-engine stopped")
}

func run(ctx context.Context, cfg *config.Config) error {
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()

	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("invalid redis url: %w", err)
		}
		rdb = redis.NewClient(opt)
		cleanup = append(cleanup, func() { rdb.Close() })
	}

	// --- Session store ---
	var st store.Store
	if cfg.Postgres.DSN != "" {
		pool, err := pgxpool.New(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		cleanup = append(cleanup, pool.Close)
		pg := store.NewPostgresStore(pool)
		if cfg.Postgres.RunMigrations {
			if err := pg.Migrate(ctx); err != nil {
				return err
			}
		}
		st = pg
		slog.Info("connected to PostgreSQL")

		if rdb != nil {
			st = store.NewCachedStore(st, rdb, cfg.Redis.CacheTTL.Duration)
			slog.Info("Redis cache enabled")
		}
	} else {
		slog.Warn("postgres dsn not set, using in-memory store (data will not persist)")
		st = store.NewMemoryStore()
	}

	// --- Publishers ---
	hub := api.NewWSHub(cfg.Server.WSSkipTicks)
	opts := []game.Option{
		game.WithStore(st),
		game.WithPublisher(hub),
		game.WithPublisher(metrics.Recorder{}),
	}
	var runners []func(context.Context) error

	if rdb != nil && cfg.Redis.EventsChannel != "" {
		p := bus.NewPublisher("redis", bus.NewRedisSink(rdb, cfg.Redis.EventsChannel), bus.WithFilter(bus.SkipTicks))
		opts = append(opts, game.WithPublisher(p))
		runners = append(runners, p.Run)
	}

	if cfg.Kafka.Brokers != "" {
		sink, err := bus.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, sink.Close)
		p := bus.NewPublisher("kafka", sink)
		opts = append(opts, game.WithPublisher(p))
		runners = append(runners, p.Run)
	}

	// --- Snapshot archive ---
	if cfg.S3.Bucket != "" {
		arch, err := blob.New(ctx, blob.Config{
			Endpoint:       cfg.S3.Endpoint,
			Region:         cfg.S3.Region,
			Bucket:         cfg.S3.Bucket,
			AccessKey:      cfg.S3.AccessKey,
			SecretKey:      cfg.S3.SecretKey,
			UseSSL:         cfg.S3.UseSSL,
			ForcePathStyle: cfg.S3.ForcePathStyle,
			Prefix:         cfg.S3.Prefix,
		})
		if err != nil {
			return err
		}
		if err := arch.Health(ctx); err != nil {
			slog.Warn("snapshot bucket not reachable", "bucket", cfg.S3.Bucket, "err", err)
		}
		opts = append(opts, game.WithArchiver(arch))
	}

	// --- Engine ---
	seed := cfg.Game.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	clk := clock.System{}
	initial := game.NewState(game.Options{
		Variant:      model.Variant(strings.ToLower(cfg.Game.Variant)),
		Difficulty:   model.Difficulty(strings.ToLower(cfg.Game.Difficulty)),
		StartingCash: decimal.NewFromFloat(cfg.Game.StartingCash),
	}, clk.Now(), uuid.NewString())
	engine := game.New(initial, clk, random.New(seed), opts...)

	if cfg.Game.LoadLatest {
		if _, err := engine.Load(ctx, ""); err != nil {
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
			slog.Info("no saved session to resume")
		}
	}
	if cfg.Game.AutoStart {
		if _, err := engine.StartSession(); err != nil {
			return err
		}
	}
	slog.Info("game ready",
		"session", engine.State().SessionID,
		"variant", engine.State().Ruleset.Variant,
		"seed", seed,
	)

	// --- HTTP ---
	router := api.NewRouter(api.NewHandler(engine), hub, api.RouterConfig{
		CORSOrigin:     cfg.Server.CORSOrigin,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		AccessLog:      cfg.Server.AccessLog,
	})
	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	scheduler := game.NewScheduler(engine, game.Intervals{
		Price:    cfg.Ticks.Price.Duration,
		Staking:  cfg.Ticks.Staking.Duration,
		Mining:   cfg.Ticks.Mining.Duration,
		DeFi:     cfg.Ticks.DeFi.Duration,
		Bots:     cfg.Ticks.Bots.Duration,
		News:     cfg.Ticks.News.Duration,
		Autosave: cfg.Ticks.Autosave.Duration,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return hub.Run(gctx) })
	g.Go(func() error { return scheduler.Run(gctx) })
	for _, r := range runners {
		g.Go(func() error { return r(gctx) })
	}
	g.Go(func() error {
		slog.Info("tycoon-engine listening", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down tycoon-engine...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := engine.Autosave(shutdownCtx); err != nil {
			slog.Error("final autosave failed", "err", err)
		}
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "err", err)
		}
		return nil
	})

	return g.Wait()
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

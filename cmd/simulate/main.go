// Command simulate plays a seeded game headlessly on a manual clock and
// prints a JSON summary. The same flags always produce the same output.
package main

import (
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/game"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/random"
)

// result is the printed summary.
type result struct {
	Seed     uint64          `json:"seed"`
	Variant  model.Variant   `json:"variant"`
	Steps    int             `json:"steps"`
	Elapsed  string          `json:"simulated_time"`
	Summary  game.Summary    `json:"summary"`
	Holdings int             `json:"holdings"`
	Unlocked []string        `json:"achievements_unlocked"`
	News     int             `json:"news_items"`
	Rejected int             `json:"rejected_commands"`
	DayStart decimal.Decimal `json:"day_start_value"`
	Trades   int             `json:"trades"`
}

func main() {
	variant := flag.String("variant", "ultra", "game edition: basic, enhanced or ultra")
	difficulty := flag.String("difficulty", "normal", "easy, normal or hard")
	seed := flag.Uint64("seed", 1, "random seed")
	steps := flag.Int("steps", 400, "number of price ticks to simulate")
	out := flag.String("export", "", "write the final snapshot to this file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	start := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	clk := clock.NewManual(start)

	var news, rejected int
	counter := game.PublisherFunc(func(u game.Update) {
		switch u.Type {
		case game.UpdateNews:
			news++
		case game.UpdateRejected:
			rejected++
		}
	})

	s := game.NewState(game.Options{
		Variant:    model.Variant(*variant),
		Difficulty: model.Difficulty(*difficulty),
	}, start, "simulation")
	eng := game.New(s, clk, random.New(*seed), game.WithPublisher(counter))

	if _, err := eng.StartSession(); err != nil {
		slog.Error("start session", "err", err)
		os.Exit(1)
	}

	iv := game.DefaultIntervals()
	script := playbook()
	for i := 1; i <= *steps; i++ {
		clk.Advance(iv.Price)
		elapsed := time.Duration(i) * iv.Price

		mustTick(eng.TickPrices)
		every := func(interval time.Duration) bool {
			return interval > 0 && elapsed%interval < iv.Price
		}
		if every(iv.Bots) {
			mustTick(eng.TickBots)
		}
		if every(iv.News) {
			mustTick(eng.TickNews)
		}
		if every(iv.Mining) {
			mustTick(eng.TickMining)
		}
		if every(iv.DeFi) {
			mustTick(eng.TickDeFi)
		}
		if every(iv.Staking) {
			mustTick(eng.TickStaking)
		}

		if cmd, ok := script[i]; ok {
			if _, err := cmd(eng); err != nil {
				slog.Warn("command rejected", "step", i, "err", err)
			}
		}
	}

	final := eng.State()
	var unlocked []string
	for _, a := range final.Achievements {
		if a.Unlocked {
			unlocked = append(unlocked, a.ID)
		}
	}

	if *out != "" {
		data, err := eng.Export()
		if err == nil {
			err = os.WriteFile(*out, data, 0o644)
		}
		if err != nil {
			slog.Error("export", "path", *out, "err", err)
			os.Exit(1)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(result{
		Seed:     *seed,
		Variant:  final.Ruleset.Variant,
		Steps:    *steps,
		Elapsed:  clk.Now().Sub(start).String(),
		Summary:  game.Summarize(final),
		Holdings: len(final.Holdings),
		Unlocked: unlocked,
		News:     news,
		Rejected: rejected,
		DayStart: final.DayStartValue,
		Trades:   final.Player.TradesCount,
	})
}

// playbook maps a step number to the command issued after that step's
// ticks. Commands for disabled features are rejected and counted.
func playbook() map[int]func(*game.Engine) (*model.GameState, error) {
	d := decimal.RequireFromString
	return map[int]func(*game.Engine) (*model.GameState, error){
		1:   func(e *game.Engine) (*model.GameState, error) { return e.Buy("BTC", d("0.05"), 1) },
		5:   func(e *game.Engine) (*model.GameState, error) { return e.Buy("ETH", d("0.5"), 1) },
		10:  func(e *game.Engine) (*model.GameState, error) { return e.Buy("SOL", d("10"), 2) },
		20:  func(e *game.Engine) (*model.GameState, error) { return e.Stake("ETH", d("0.25")) },
		30:  func(e *game.Engine) (*model.GameState, error) { return e.BuyMiningHardware("gpu_basic") },
		40:  func(e *game.Engine) (*model.GameState, error) { return e.ProvideLiquidity("DOGE", d("1000")) },
		50:  func(e *game.Engine) (*model.GameState, error) { return e.DeployTradingBot("hodler", d("500")) },
		60:  func(e *game.Engine) (*model.GameState, error) { return e.BuyNFT("art_blocks", "1", d("5")) },
		120: func(e *game.Engine) (*model.GameState, error) { return e.Sell("SOL", d("10")) },
		200: func(e *game.Engine) (*model.GameState, error) { return e.ClaimStakingRewards() },
		250: func(e *game.Engine) (*model.GameState, error) { return e.RemoveLiquidity("DOGE", d("50")) },
		300: func(e *game.Engine) (*model.GameState, error) { return e.StopTradingBot("hodler") },
		350: func(e *game.Engine) (*model.GameState, error) { return e.Sell("BTC", d("0.025")) },
	}
}

func mustTick(fn func() error) {
	if err := fn(); err != nil {
		slog.Error("tick failed", "err", err)
		os.Exit(1)
	}
}

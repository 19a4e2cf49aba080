package game

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
)

// Intervals between ticks. A zero interval disables that tick.
type Intervals struct {
	Price    time.Duration
	Staking  time.Duration
	Mining   time.Duration
	DeFi     time.Duration
	Bots     time.Duration
	News     time.Duration
	Autosave time.Duration
}

// DefaultIntervals are the cadences the game was tuned with.
func DefaultIntervals() Intervals {
	return Intervals{
		Price:    1500 * time.Millisecond,
		Staking:  60 * time.Second,
		Mining:   10 * time.Second,
		DeFi:     30 * time.Second,
		Bots:     5 * time.Second,
		News:     8 * time.Second,
		Autosave: 30 * time.Second,
	}
}

// Scheduler drives the engine's ticks from independent timers. Every tick
// goes through the engine lock, so timers interleave only between whole
// transitions.
type Scheduler struct {
	engine    *Engine
	intervals Intervals
}

// NewScheduler creates a scheduler for e.
func NewScheduler(e *Engine, iv Intervals) *Scheduler {
	return &Scheduler{engine: e, intervals: iv}
}

// Run blocks until ctx is cancelled. Tick failures are logged; none of them
// stops the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	timers := []struct {
		name  string
		every time.Duration
		fn    func() error
	}{
		{TickPrice, s.intervals.Price, s.engine.TickPrices},
		{TickStaking, s.intervals.Staking, s.engine.TickStaking},
		{TickMining, s.intervals.Mining, s.engine.TickMining},
		{TickDeFi, s.intervals.DeFi, s.engine.TickDeFi},
		{TickBots, s.intervals.Bots, s.engine.TickBots},
		{TickNews, s.intervals.News, s.engine.TickNews},
		{"autosave", s.intervals.Autosave, func() error { return s.engine.Autosave(ctx) }},
	}

	for _, t := range timers {
		if t.every <= 0 {
			continue
		}
		g.Go(func() error {
			ticker := time.NewTicker(t.every)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					if err := t.fn(); err != nil {
						slog.Warn("tick failed", "tick", t.name, "error", err)
					}
				}
			}
		})
	}

	slog.Info("scheduler started", "price_every", s.intervals.Price.String())
	return g.Wait()
}

// Package game owns the live game state. The Engine is the single writer:
// every command and tick clones the current state, applies one handler to
// the clone and swaps it in only if the handler succeeds, so readers always
// see a complete snapshot and a rejected command changes nothing.
package game

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cryptotycoon/engine/internal/clock"
	"github.com/cryptotycoon/engine/internal/events"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/progression"
	"github.com/cryptotycoon/engine/internal/random"
	"github.com/cryptotycoon/engine/internal/store"
)

var (
	// ErrNotStarted rejects ledger commands before StartSession.
	ErrNotStarted = &ledger.ValidationError{Reason: "session not started"}

	// ErrNoStore is returned by Save/Load when no store is configured.
	ErrNoStore = errors.New("game: no store configured")

	// ErrNoArchiver is returned by Archive and RestoreArchive when no
	// archiver is configured.
	ErrNoArchiver = errors.New("game: no archiver configured")

	// errSkip aborts a tick that has nothing to do without publishing.
	errSkip = errors.New("game: nothing to do")
)

// Archiver stores exported snapshots outside the session store.
type Archiver interface {
	Archive(ctx context.Context, sessionID string, data []byte) (string, error)
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Engine serializes every state transition. State() snapshots are never
// mutated after they are published.
type Engine struct {
	mu    sync.Mutex
	state *model.GameState

	clock    clock.Clock
	rng      random.Source
	ledger   *ledger.Ledger
	progress *progression.Engine
	feed     *events.Feed

	store      store.Store // optional
	archiver   Archiver    // optional
	publishers []Publisher
}

// Option configures an Engine.
type Option func(*Engine)

// WithStore enables Save, Load and autosave.
func WithStore(st store.Store) Option {
	return func(e *Engine) { e.store = st }
}

// WithArchiver enables Archive.
func WithArchiver(a Archiver) Option {
	return func(e *Engine) { e.archiver = a }
}

// WithPublisher adds an observer. Publishers are fixed at construction.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) {
		if p != nil {
			e.publishers = append(e.publishers, p)
		}
	}
}

// New creates an engine owning s. A nil s starts a default ultra game.
func New(s *model.GameState, c clock.Clock, rng random.Source, opts ...Option) *Engine {
	if s == nil {
		s = NewState(Options{Variant: model.VariantUltra}, c.Now(), uuid.NewString())
	}
	e := &Engine{
		state:    s,
		clock:    c,
		rng:      rng,
		ledger:   ledger.New(c, rng),
		progress: progression.New(c),
		feed:     events.NewFeed(c, rng),
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// State returns the current snapshot. Callers must treat it as read-only.
func (e *Engine) State() *model.GameState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// outcome is what a handler reports back besides its error.
type outcome struct {
	acts []model.Activity
	news *model.NewsItem
}

func did(acts ...model.Activity) (outcome, error) {
	return outcome{acts: acts}, nil
}

// step is one state transition.
type step struct {
	name    string
	kind    UpdateType
	started bool // requires an active session
	run     func(s *model.GameState) (outcome, error)
}

// apply runs st against a clone of the current state. On success the clone
// becomes the live state; on failure the live state is returned unchanged.
// Challenge progress and achievements are evaluated on the clone before the
// swap so a transition and the rewards it triggers land together.
func (e *Engine) apply(st step) (*model.GameState, error) {
	start := time.Now()

	e.mu.Lock()
	cur := e.state
	if st.started && !cur.GameStarted {
		e.mu.Unlock()
		return cur, ErrNotStarted
	}

	next := cur.Clone()
	e.progress.RolloverDay(next)
	out, err := st.run(next)
	if err != nil {
		e.mu.Unlock()
		if !errors.Is(err, errSkip) && st.kind == UpdateCommand {
			e.publish(Update{Type: UpdateRejected, Name: st.name, SessionID: cur.SessionID, At: e.clock.Now(), Error: err.Error()})
		}
		return cur, err
	}

	var done []model.DailyChallenge
	if len(out.acts) == 0 {
		done = e.progress.Observe(next)
	}
	for _, a := range out.acts {
		done = append(done, e.progress.Record(next, a)...)
	}
	unlocked := e.progress.EvaluateAchievements(next)
	ledger.Revalue(next)

	e.state = next
	e.mu.Unlock()

	now := e.clock.Now()
	sum := Summarize(next)
	e.publish(Update{Type: st.kind, Name: st.name, SessionID: next.SessionID, At: now, Duration: time.Since(start), Summary: &sum})
	if out.news != nil {
		e.publish(Update{Type: UpdateNews, Name: st.name, SessionID: next.SessionID, At: now, News: out.news})
	}
	for i := range done {
		e.publish(Update{Type: UpdateChallenge, Name: done[i].ID, SessionID: next.SessionID, At: now, Challenge: &done[i]})
	}
	for i := range unlocked {
		e.publish(Update{Type: UpdateAchievement, Name: unlocked[i].ID, SessionID: next.SessionID, At: now, Achievement: &unlocked[i]})
	}
	return next, nil
}

// replace swaps in a whole new state, as used by NewGame, Import and Load.
func (e *Engine) replace(name string, s *model.GameState) *model.GameState {
	ledger.Revalue(s)
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()

	sum := Summarize(s)
	e.publish(Update{Type: UpdateRestore, Name: name, SessionID: s.SessionID, At: e.clock.Now(), Summary: &sum})
	return s
}

func (e *Engine) publish(u Update) {
	for _, p := range e.publishers {
		p.Publish(u)
	}
}

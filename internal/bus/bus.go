// Package bus fans engine updates out to external brokers. The engine calls
// Publish under no lock but on its own goroutine, so Publish only enqueues;
// Run drains the queue into a Sink.
package bus

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"

	"github.com/cryptotycoon/engine/internal/game"
)

// DefaultBuffer matches the WebSocket hub's broadcast buffer.
const DefaultBuffer = 256

// Sink delivers one encoded update. key groups updates of one session.
type Sink interface {
	Send(ctx context.Context, key string, payload []byte) error
}

// Publisher is a game.Publisher that forwards updates to a Sink.
type Publisher struct {
	name    string
	sink    Sink
	queue   chan game.Update
	filter  func(game.Update) bool
	dropped atomic.Int64
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithFilter forwards only updates for which keep returns true.
func WithFilter(keep func(game.Update) bool) Option {
	return func(p *Publisher) { p.filter = keep }
}

// WithBuffer sets the queue length.
func WithBuffer(n int) Option {
	return func(p *Publisher) {
		if n > 0 {
			p.queue = make(chan game.Update, n)
		}
	}
}

// NewPublisher creates a publisher named name (used in logs) over sink.
func NewPublisher(name string, sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		name:  name,
		sink:  sink,
		queue: make(chan game.Update, DefaultBuffer),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Publish enqueues u. When the queue is full the update is dropped.
func (p *Publisher) Publish(u game.Update) {
	if p.filter != nil && !p.filter(u) {
		return
	}
	select {
	case p.queue <- u:
	default:
		p.dropped.Add(1)
	}
}

// Dropped reports how many updates were discarded on a full queue.
func (p *Publisher) Dropped() int64 {
	return p.dropped.Load()
}

// Run delivers queued updates until ctx is cancelled. Send failures are
// logged and the update is discarded.
func (p *Publisher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case u := <-p.queue:
			data, err := json.Marshal(u)
			if err != nil {
				slog.Error("encode update", "bus", p.name, "error", err)
				continue
			}
			if err := p.sink.Send(ctx, u.SessionID, data); err != nil {
				slog.Warn("publish update failed", "bus", p.name, "type", u.Type, "error", err)
			}
		}
	}
}

// SkipTicks drops the high-frequency tick updates and keeps everything else.
func SkipTicks(u game.Update) bool {
	return u.Type != game.UpdateTick
}

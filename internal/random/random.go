// Package random supplies the seedable pseudo-random source shared by the
// price model, the event feed and trading-bot performance.
package random

import (
	"math/rand/v2"
	"sync"
)

// Source is the subset of *rand.Rand the simulation draws from.
type Source interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
	// IntN returns a value in [0, n).
	IntN(n int) int
}

// Locked wraps a *rand.Rand with a mutex; rand.Rand itself is not safe for
// concurrent use and the scheduler's timers run on separate goroutines.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New returns a deterministic source for the given seed.
func New(seed uint64) *Locked {
	return &Locked{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

func (l *Locked) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

// Uniform returns a value in [-span, +span).
func Uniform(src Source, span float64) float64 {
	return (src.Float64() - 0.5) * 2 * span
}

// Fixed is a Source that replays a fixed sequence of Float64 values, cycling
// when exhausted. IntN maps the next value onto [0, n).
type Fixed struct {
	mu     sync.Mutex
	values []float64
	i      int
}

// NewFixed returns a Fixed source over values.
func NewFixed(values ...float64) *Fixed {
	if len(values) == 0 {
		values = []float64{0.5}
	}
	return &Fixed{values: values}
}

func (f *Fixed) Float64() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.values[f.i%len(f.values)]
	f.i++
	return v
}

func (f *Fixed) IntN(n int) int {
	v := int(f.Float64() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

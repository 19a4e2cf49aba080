// Package store defines the persistence interface for game sessions.
// Implementations include PostgreSQL (source of truth), Redis (read-through
// cache), and in-memory (for testing and the headless simulator).
package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

// ErrNotFound is returned when no session matches the lookup.
var ErrNotFound = errors.New("store: session not found")

// Session is one saved game. Snapshot holds the serialized GameState
// exactly as produced by the snapshot package.
type Session struct {
	ID         string          `json:"id"`
	Variant    model.Variant   `json:"variant"`
	TotalValue decimal.Decimal `json:"total_value"`
	Snapshot   json.RawMessage `json:"snapshot,omitempty"`
	SavedAt    time.Time       `json:"saved_at"`
}

// Store is the persistence interface. PostgreSQL is the source of truth;
// Redis provides a read-through cache layer.
type Store interface {
	// --- Sessions ---

	// SaveSession inserts or replaces a session snapshot.
	SaveSession(ctx context.Context, s *Session) error

	// GetSession retrieves a session by its ID.
	GetSession(ctx context.Context, id string) (*Session, error)

	// LatestSession returns the most recently saved session.
	LatestSession(ctx context.Context) (*Session, error)

	// ListSessions returns session metadata, newest first. Snapshot is
	// left empty.
	ListSessions(ctx context.Context) ([]Session, error)

	// --- Immutable transaction log ---

	// AppendTransactions records transactions for a session. Transactions
	// already stored (same ID) are skipped, so resubmitting is safe.
	AppendTransactions(ctx context.Context, sessionID string, txs []model.Transaction) error

	// ListTransactions returns every stored transaction for a session,
	// newest first.
	ListTransactions(ctx context.Context, sessionID string) ([]model.Transaction, error)
}

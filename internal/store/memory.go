package store

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/cryptotycoon/engine/internal/model"
)

// MemoryStore is an in-memory implementation of Store for testing and the
// headless simulator.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	txs      map[string][]model.Transaction // per session, insertion order
	seen     map[string]bool                // tx IDs already stored
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
		txs:      make(map[string][]model.Transaction),
		seen:     make(map[string]bool),
	}
}

func (s *MemoryStore) SaveSession(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *sess
	c.Snapshot = slices.Clone(sess.Snapshot)
	s.sessions[sess.ID] = c
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	sess.Snapshot = slices.Clone(sess.Snapshot)
	return &sess, nil
}

func (s *MemoryStore) LatestSession(_ context.Context) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *Session
	for _, sess := range s.sessions {
		if latest == nil || sess.SavedAt.After(latest.SavedAt) {
			c := sess
			latest = &c
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	latest.Snapshot = slices.Clone(latest.Snapshot)
	return latest, nil
}

func (s *MemoryStore) ListSessions(_ context.Context) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		sess.Snapshot = nil
		result = append(result, sess)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SavedAt.After(result[j].SavedAt)
	})
	return result, nil
}

func (s *MemoryStore) AppendTransactions(_ context.Context, sessionID string, txs []model.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tx := range txs {
		if s.seen[tx.ID] {
			continue
		}
		s.seen[tx.ID] = true
		s.txs[sessionID] = append(s.txs[sessionID], tx)
	}
	return nil
}

// ListTransactions sorts by timestamp, then by ID. IDs are time-ordered
// UUIDs so the tie-break keeps same-instant transactions in creation order.
func (s *MemoryStore) ListTransactions(_ context.Context, sessionID string) ([]model.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := slices.Clone(s.txs[sessionID])
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

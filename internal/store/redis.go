package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cryptotycoon/engine/internal/model"
)

// CachedStore wraps a primary Store (PostgreSQL) with a Redis read-through
// cache. Writes go to the primary store and refresh or invalidate the cache;
// reads check Redis first then fall back to the primary.
type CachedStore struct {
	primary Store
	rdb     *redis.Client
	ttl     time.Duration
}

// NewCachedStore creates a cached wrapper around a primary store.
func NewCachedStore(primary Store, rdb *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		primary: primary,
		rdb:     rdb,
		ttl:     ttl,
	}
}

// --- Write-through ---

func (s *CachedStore) SaveSession(ctx context.Context, sess *Session) error {
	if err := s.primary.SaveSession(ctx, sess); err != nil {
		return err
	}
	s.cacheSession(ctx, sess)
	s.rdb.Set(ctx, latestKey(), sess.ID, s.ttl)
	return nil
}

func (s *CachedStore) AppendTransactions(ctx context.Context, sessionID string, txs []model.Transaction) error {
	if err := s.primary.AppendTransactions(ctx, sessionID, txs); err != nil {
		return err
	}
	s.rdb.Del(ctx, txKey(sessionID))
	return nil
}

// --- Read-through ---

func (s *CachedStore) GetSession(ctx context.Context, id string) (*Session, error) {
	data, err := s.rdb.Get(ctx, sessionKey(id)).Bytes()
	if err == nil {
		var sess Session
		if json.Unmarshal(data, &sess) == nil {
			return &sess, nil
		}
	}

	sess, err := s.primary.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cacheSession(ctx, sess)
	return sess, nil
}

func (s *CachedStore) LatestSession(ctx context.Context) (*Session, error) {
	id, err := s.rdb.Get(ctx, latestKey()).Result()
	if err == nil {
		return s.GetSession(ctx, id)
	}

	sess, err := s.primary.LatestSession(ctx)
	if err != nil {
		return nil, err
	}
	s.cacheSession(ctx, sess)
	s.rdb.Set(ctx, latestKey(), sess.ID, s.ttl)
	return sess, nil
}

func (s *CachedStore) ListTransactions(ctx context.Context, sessionID string) ([]model.Transaction, error) {
	data, err := s.rdb.Get(ctx, txKey(sessionID)).Bytes()
	if err == nil {
		var txs []model.Transaction
		if json.Unmarshal(data, &txs) == nil {
			return txs, nil
		}
	}

	txs, err := s.primary.ListTransactions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(txs); err == nil {
		s.rdb.Set(ctx, txKey(sessionID), data, s.ttl)
	}
	return txs, nil
}

// --- Passthrough ---

func (s *CachedStore) ListSessions(ctx context.Context) ([]Session, error) {
	return s.primary.ListSessions(ctx)
}

// --- Cache helpers ---

func (s *CachedStore) cacheSession(ctx context.Context, sess *Session) {
	if data, err := json.Marshal(sess); err == nil {
		s.rdb.Set(ctx, sessionKey(sess.ID), data, s.ttl)
	}
}

func sessionKey(id string) string { return fmt.Sprintf("tycoon:session:%s", id) }
func txKey(id string) string      { return fmt.Sprintf("tycoon:transactions:%s", id) }
func latestKey() string           { return "tycoon:session:latest" }

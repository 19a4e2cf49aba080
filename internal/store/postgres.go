package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id          TEXT PRIMARY KEY,
		variant     TEXT NOT NULL,
		total_value NUMERIC NOT NULL,
		snapshot    JSONB NOT NULL,
		saved_at    TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS sessions_saved_at_idx ON sessions (saved_at DESC)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		id         TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		type       TEXT NOT NULL,
		asset_id   TEXT NOT NULL,
		amount     NUMERIC NOT NULL,
		price      NUMERIC NOT NULL,
		leverage   INTEGER NOT NULL,
		total      NUMERIC NOT NULL,
		profit     NUMERIC NOT NULL,
		timestamp  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_session_idx ON transactions (session_id, timestamp DESC)`,
}

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) SaveSession(ctx context.Context, sess *Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, variant, total_value, snapshot, saved_at)
		 VALUES ($1, $2, $3::NUMERIC, $4::JSONB, $5)
		 ON CONFLICT (id) DO UPDATE
		 SET variant = EXCLUDED.variant, total_value = EXCLUDED.total_value,
		     snapshot = EXCLUDED.snapshot, saved_at = EXCLUDED.saved_at`,
		sess.ID, string(sess.Variant), sess.TotalValue.String(), string(sess.Snapshot), sess.SavedAt,
	)
	if err != nil {
		return fmt.Errorf("store: save session %s: %w", sess.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*Session, error) {
	return s.scanSession(s.pool.QueryRow(ctx,
		`SELECT id, variant, total_value::TEXT, snapshot::TEXT, saved_at
		 FROM sessions WHERE id = $1`, id))
}

func (s *PostgresStore) LatestSession(ctx context.Context) (*Session, error) {
	return s.scanSession(s.pool.QueryRow(ctx,
		`SELECT id, variant, total_value::TEXT, snapshot::TEXT, saved_at
		 FROM sessions ORDER BY saved_at DESC LIMIT 1`))
}

func (s *PostgresStore) scanSession(row pgx.Row) (*Session, error) {
	var sess Session
	var variant, total, snap string
	err := row.Scan(&sess.ID, &variant, &total, &snap, &sess.SavedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get session: %w", err)
	}
	sess.Variant = model.Variant(variant)
	sess.TotalValue, _ = decimal.NewFromString(total)
	sess.Snapshot = []byte(snap)
	return &sess, nil
}

func (s *PostgresStore) ListSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, variant, total_value::TEXT, saved_at
		 FROM sessions ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("store: list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var variant, total string
		if err := rows.Scan(&sess.ID, &variant, &total, &sess.SavedAt); err != nil {
			return nil, err
		}
		sess.Variant = model.Variant(variant)
		sess.TotalValue, _ = decimal.NewFromString(total)
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// AppendTransactions inserts the batch in one round trip. Rows are
// immutable: a conflicting ID is left untouched.
func (s *PostgresStore) AppendTransactions(ctx context.Context, sessionID string, txs []model.Transaction) error {
	if len(txs) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, tx := range txs {
		batch.Queue(
			`INSERT INTO transactions (id, session_id, type, asset_id, amount, price, leverage, total, profit, timestamp)
			 VALUES ($1, $2, $3, $4, $5::NUMERIC, $6::NUMERIC, $7, $8::NUMERIC, $9::NUMERIC, $10)
			 ON CONFLICT (id) DO NOTHING`,
			tx.ID, sessionID, string(tx.Type), tx.AssetID,
			tx.Amount.String(), tx.Price.String(), tx.Leverage,
			tx.Total.String(), tx.Profit.String(), tx.Timestamp,
		)
	}
	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("store: append transactions: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListTransactions(ctx context.Context, sessionID string) ([]model.Transaction, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, type, asset_id, amount::TEXT, price::TEXT, leverage,
		        total::TEXT, profit::TEXT, timestamp
		 FROM transactions WHERE session_id = $1
		 ORDER BY timestamp DESC, id DESC`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("store: list transactions: %w", err)
	}
	defer rows.Close()

	var txs []model.Transaction
	for rows.Next() {
		var tx model.Transaction
		var typ, amount, price, total, profit string
		if err := rows.Scan(&tx.ID, &typ, &tx.AssetID, &amount, &price, &tx.Leverage,
			&total, &profit, &tx.Timestamp); err != nil {
			return nil, err
		}
		tx.Type = model.TxType(typ)
		tx.Amount, _ = decimal.NewFromString(amount)
		tx.Price, _ = decimal.NewFromString(price)
		tx.Total, _ = decimal.NewFromString(total)
		tx.Profit, _ = decimal.NewFromString(profit)
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

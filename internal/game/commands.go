package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/catalog"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/snapshot"
	"github.com/cryptotycoon/engine/internal/store"
)

// Every command returns the resulting state. A rejected command returns the
// unchanged live state together with the error.

// NewGame discards the live game and installs a fresh one. The new session
// still has to be started.
func (e *Engine) NewGame(opts Options) *model.GameState {
	s := NewState(opts, e.clock.Now(), uuid.NewString())
	slog.Info("new game", "session", s.SessionID, "variant", s.Ruleset.Variant, "difficulty", s.Settings.Difficulty)
	return e.replace("new_game", s)
}

// StartSession marks the game started. Starting an already running session
// leaves it as it is.
func (e *Engine) StartSession() (*model.GameState, error) {
	return e.command("start_session", false, func(s *model.GameState) (outcome, error) {
		if s.GameStarted {
			return did()
		}
		s.GameStarted = true
		s.SessionStartedAt = e.clock.Now()
		s.SessionTrades = 0
		slog.Info("session started", "session", s.SessionID, "variant", s.Ruleset.Variant)
		return did()
	})
}

// SetView records which screen the client shows.
func (e *Engine) SetView(name string) (*model.GameState, error) {
	return e.command("set_view", false, func(s *model.GameState) (outcome, error) {
		if err := catalog.ValidateView(name); err != nil {
			return outcome{}, &ledger.ValidationError{Reason: "unknown view", Err: err}
		}
		s.CurrentView = name
		return did()
	})
}

// UpdateSettings merges a partial settings update.
func (e *Engine) UpdateSettings(p model.SettingsPatch) (*model.GameState, error) {
	return e.command("update_settings", false, func(s *model.GameState) (outcome, error) {
		s.Settings = s.Settings.Apply(p)
		return did()
	})
}

func (e *Engine) Buy(assetID string, amount decimal.Decimal, leverage int) (*model.GameState, error) {
	return e.command("buy", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.Buy(s, assetID, amount, leverage)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) Sell(assetID string, amount decimal.Decimal) (*model.GameState, error) {
	return e.command("sell", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.Sell(s, assetID, amount)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) Stake(assetID string, amount decimal.Decimal) (*model.GameState, error) {
	return e.command("stake", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.Stake(s, assetID, amount)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) Unstake(assetID string, amount decimal.Decimal) (*model.GameState, error) {
	return e.command("unstake", true, func(s *model.GameState) (outcome, error) {
		if err := e.ledger.Unstake(s, assetID, amount); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

func (e *Engine) ClaimStakingRewards() (*model.GameState, error) {
	return e.command("claim_staking_rewards", true, func(s *model.GameState) (outcome, error) {
		paid, err := e.ledger.ClaimStakingRewards(s)
		if err != nil {
			return outcome{}, err
		}
		slog.Info("staking rewards claimed", "amount", paid.String())
		return did()
	})
}

func (e *Engine) ProvideLiquidity(assetID string, amount decimal.Decimal) (*model.GameState, error) {
	return e.command("provide_liquidity", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.ProvideLiquidity(s, assetID, amount)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) RemoveLiquidity(poolID string, percentage decimal.Decimal) (*model.GameState, error) {
	return e.command("remove_liquidity", true, func(s *model.GameState) (outcome, error) {
		if _, err := e.ledger.RemoveLiquidity(s, poolID, percentage); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

func (e *Engine) BuyMiningHardware(rigID string) (*model.GameState, error) {
	return e.command("buy_mining_hardware", true, func(s *model.GameState) (outcome, error) {
		if err := e.ledger.BuyMiningHardware(s, rigID); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

func (e *Engine) DeployTradingBot(botID string, investment decimal.Decimal) (*model.GameState, error) {
	return e.command("deploy_trading_bot", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.DeployTradingBot(s, botID, investment)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) StopTradingBot(botID string) (*model.GameState, error) {
	return e.command("stop_trading_bot", true, func(s *model.GameState) (outcome, error) {
		returned, err := e.ledger.StopTradingBot(s, botID)
		if err != nil {
			return outcome{}, err
		}
		slog.Info("trading bot stopped", "bot", botID, "returned", returned.String())
		return did()
	})
}

func (e *Engine) BuyNFT(collectionID, nftID string, price decimal.Decimal) (*model.GameState, error) {
	return e.command("buy_nft", true, func(s *model.GameState) (outcome, error) {
		act, err := e.ledger.BuyNFT(s, collectionID, nftID, price)
		if err != nil {
			return outcome{}, err
		}
		return did(act)
	})
}

func (e *Engine) SellNFT(key string, price decimal.Decimal) (*model.GameState, error) {
	return e.command("sell_nft", true, func(s *model.GameState) (outcome, error) {
		if err := e.ledger.SellNFT(s, key, price); err != nil {
			return outcome{}, err
		}
		return did()
	})
}

func (e *Engine) command(name string, started bool, run func(s *model.GameState) (outcome, error)) (*model.GameState, error) {
	return e.apply(step{name: name, kind: UpdateCommand, started: started, run: run})
}

// --- Snapshot contract ---

// Export serializes the live state.
func (e *Engine) Export() ([]byte, error) {
	return snapshot.Serialize(e.State())
}

// Import parses data and swaps it in whole. A corrupt snapshot is rejected
// with a *snapshot.DataError and the live state is left alone.
func (e *Engine) Import(data []byte) (*model.GameState, error) {
	s, err := snapshot.Deserialize(data)
	if err != nil {
		return e.State(), err
	}
	s.GameStarted = true
	slog.Info("snapshot restored", "session", s.SessionID, "variant", s.Ruleset.Variant)
	return e.replace("import", s), nil
}

// Archive uploads the serialized live state and returns where it landed.
func (e *Engine) Archive(ctx context.Context) (string, error) {
	if e.archiver == nil {
		return "", ErrNoArchiver
	}
	s := e.State()
	data, err := snapshot.Serialize(s)
	if err != nil {
		return "", err
	}
	return e.archiver.Archive(ctx, s.SessionID, data)
}

// RestoreArchive fetches an archived snapshot and imports it.
func (e *Engine) RestoreArchive(ctx context.Context, key string) (*model.GameState, error) {
	if e.archiver == nil {
		return e.State(), ErrNoArchiver
	}
	data, err := e.archiver.Fetch(ctx, key)
	if err != nil {
		return e.State(), err
	}
	return e.Import(data)
}

// --- Persistence ---

// Save writes the live state and its transactions to the store.
func (e *Engine) Save(ctx context.Context) error {
	if e.store == nil {
		return ErrNoStore
	}
	s := e.State()
	data, err := snapshot.Serialize(s)
	if err != nil {
		return err
	}
	now := e.clock.Now()
	if err := e.store.SaveSession(ctx, &store.Session{
		ID:         s.SessionID,
		Variant:    s.Ruleset.Variant,
		TotalValue: s.Player.TotalValue,
		Snapshot:   data,
		SavedAt:    now,
	}); err != nil {
		return err
	}
	if err := e.store.AppendTransactions(ctx, s.SessionID, s.Transactions); err != nil {
		return err
	}
	sum := Summarize(s)
	e.publish(Update{Type: UpdateSave, Name: "save", SessionID: s.SessionID, At: now, Summary: &sum})
	return nil
}

// Autosave saves only when the player has autosave enabled and a session
// is running.
func (e *Engine) Autosave(ctx context.Context) error {
	s := e.State()
	if e.store == nil || !s.GameStarted || !s.Settings.AutoSave {
		return nil
	}
	return e.Save(ctx)
}

// Load restores a saved session; an empty id loads the most recent one.
func (e *Engine) Load(ctx context.Context, id string) (*model.GameState, error) {
	if e.store == nil {
		return e.State(), ErrNoStore
	}
	var (
		sess *store.Session
		err  error
	)
	if id == "" {
		sess, err = e.store.LatestSession(ctx)
	} else {
		sess, err = e.store.GetSession(ctx, id)
	}
	if err != nil {
		return e.State(), err
	}
	s, err := snapshot.Deserialize(sess.Snapshot)
	if err != nil {
		return e.State(), fmt.Errorf("game: load session %s: %w", sess.ID, err)
	}
	s.GameStarted = true
	slog.Info("session loaded", "session", s.SessionID, "saved_at", sess.SavedAt)
	return e.replace("load", s), nil
}

// Sessions lists saved sessions, newest first.
func (e *Engine) Sessions(ctx context.Context) ([]store.Session, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return e.store.ListSessions(ctx)
}

// History returns the full stored transaction log of the live session. The
// in-state list is capped; the store keeps everything saved so far. Without
// a store the in-state list is returned.
func (e *Engine) History(ctx context.Context) ([]model.Transaction, error) {
	s := e.State()
	if e.store == nil {
		return s.Transactions, nil
	}
	txs, err := e.store.ListTransactions(ctx, s.SessionID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if len(txs) == 0 {
		return s.Transactions, nil
	}
	return txs, nil
}

// Package api exposes the game engine over HTTP: one JSON endpoint per
// command, snapshot import/export, persistence and a WebSocket feed.
//
// Every command responds with the full state snapshot after the command,
// or with {"error": "..."} when it was rejected.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/blob"
	"github.com/cryptotycoon/engine/internal/game"
	"github.com/cryptotycoon/engine/internal/ledger"
	"github.com/cryptotycoon/engine/internal/model"
	"github.com/cryptotycoon/engine/internal/snapshot"
	"github.com/cryptotycoon/engine/internal/store"
)

// maxSnapshotBytes bounds POST /import bodies.
const maxSnapshotBytes = 8 << 20

// Handler serves the command API for one engine.
type Handler struct {
	engine *game.Engine
}

// NewHandler creates a handler over e.
func NewHandler(e *game.Engine) *Handler {
	return &Handler{engine: e}
}

// --- Request types ---

// NewGameRequest is the JSON body for POST /game/new.
type NewGameRequest struct {
	Variant      model.Variant    `json:"variant"`    // basic|enhanced|ultra; empty → ultra
	Difficulty   model.Difficulty `json:"difficulty"` // easy|normal|hard; empty → normal
	StartingCash decimal.Decimal  `json:"starting_cash"`
}

// ViewRequest is the JSON body for PUT /view.
type ViewRequest struct {
	View string `json:"view"`
}

// TradeRequest is the JSON body for POST /buy and POST /sell.
type TradeRequest struct {
	Asset    string          `json:"asset"`
	Amount   decimal.Decimal `json:"amount"`
	Leverage int             `json:"leverage,omitempty"` // buy only; 0 → 1x
}

// AssetAmountRequest is the JSON body for staking and liquidity deposits.
type AssetAmountRequest struct {
	Asset  string          `json:"asset"`
	Amount decimal.Decimal `json:"amount"`
}

// RemoveLiquidityRequest is the JSON body for POST /liquidity/remove.
type RemoveLiquidityRequest struct {
	Pool       string          `json:"pool"`
	Percentage decimal.Decimal `json:"percentage"` // 0 < p ≤ 100
}

// RigRequest is the JSON body for POST /mining/hardware.
type RigRequest struct {
	Rig string `json:"rig"`
}

// BotRequest is the JSON body for POST /bots/deploy and POST /bots/stop.
type BotRequest struct {
	Bot        string          `json:"bot"`
	Investment decimal.Decimal `json:"investment,omitempty"`
}

// BuyNFTRequest is the JSON body for POST /nfts/buy.
type BuyNFTRequest struct {
	Collection string          `json:"collection"`
	NFT        string          `json:"nft"`
	Price      decimal.Decimal `json:"price"`
}

// SellNFTRequest is the JSON body for POST /nfts/sell.
type SellNFTRequest struct {
	Key   string          `json:"key"` // collection#nft
	Price decimal.Decimal `json:"price"`
}

// LoadRequest is the JSON body for POST /load. An empty session loads the
// most recent save.
type LoadRequest struct {
	SessionID string `json:"session_id"`
}

// ArchiveRequest is the JSON body for POST /archive/restore.
type ArchiveRequest struct {
	Key string `json:"key"`
}

// --- State and session ---

// GetState handles GET /api/v1/state.
func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.State())
}

// NewGame handles POST /api/v1/game/new.
func (h *Handler) NewGame(w http.ResponseWriter, r *http.Request) {
	var req NewGameRequest
	if !decode(w, r, &req) {
		return
	}
	switch req.Variant {
	case "", model.VariantBasic, model.VariantEnhanced, model.VariantUltra:
	default:
		writeError(w, "unknown variant: "+string(req.Variant), http.StatusBadRequest)
		return
	}
	switch req.Difficulty {
	case "", model.DifficultyEasy, model.DifficultyNormal, model.DifficultyHard:
	default:
		writeError(w, "unknown difficulty: "+string(req.Difficulty), http.StatusBadRequest)
		return
	}
	if req.Variant == "" {
		req.Variant = model.VariantUltra
	}
	s := h.engine.NewGame(game.Options{
		Variant:      req.Variant,
		Difficulty:   req.Difficulty,
		StartingCash: req.StartingCash,
	})
	writeJSON(w, http.StatusCreated, s)
}

// StartSession handles POST /api/v1/session/start.
func (h *Handler) StartSession(w http.ResponseWriter, _ *http.Request) {
	s, err := h.engine.StartSession()
	h.respond(w, "start_session", s, err)
}

// SetView handles PUT /api/v1/view.
func (h *Handler) SetView(w http.ResponseWriter, r *http.Request) {
	var req ViewRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.SetView(req.View)
	h.respond(w, "set_view", s, err)
}

// UpdateSettings handles PATCH /api/v1/settings.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req model.SettingsPatch
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.UpdateSettings(req)
	h.respond(w, "update_settings", s, err)
}

// --- Ledger commands ---

// Buy handles POST /api/v1/buy.
func (h *Handler) Buy(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if !decode(w, r, &req) {
		return
	}
	leverage := req.Leverage
	if leverage == 0 {
		leverage = 1
	}
	s, err := h.engine.Buy(req.Asset, req.Amount, leverage)
	h.respond(w, "buy", s, err)
}

// Sell handles POST /api/v1/sell.
func (h *Handler) Sell(w http.ResponseWriter, r *http.Request) {
	var req TradeRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.Sell(req.Asset, req.Amount)
	h.respond(w, "sell", s, err)
}

// Stake handles POST /api/v1/stake.
func (h *Handler) Stake(w http.ResponseWriter, r *http.Request) {
	var req AssetAmountRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.Stake(req.Asset, req.Amount)
	h.respond(w, "stake", s, err)
}

// Unstake handles POST /api/v1/unstake.
func (h *Handler) Unstake(w http.ResponseWriter, r *http.Request) {
	var req AssetAmountRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.Unstake(req.Asset, req.Amount)
	h.respond(w, "unstake", s, err)
}

// ClaimStakingRewards handles POST /api/v1/staking/claim.
func (h *Handler) ClaimStakingRewards(w http.ResponseWriter, _ *http.Request) {
	s, err := h.engine.ClaimStakingRewards()
	h.respond(w, "claim_staking_rewards", s, err)
}

// ProvideLiquidity handles POST /api/v1/liquidity/provide.
func (h *Handler) ProvideLiquidity(w http.ResponseWriter, r *http.Request) {
	var req AssetAmountRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.ProvideLiquidity(req.Asset, req.Amount)
	h.respond(w, "provide_liquidity", s, err)
}

// RemoveLiquidity handles POST /api/v1/liquidity/remove.
func (h *Handler) RemoveLiquidity(w http.ResponseWriter, r *http.Request) {
	var req RemoveLiquidityRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.RemoveLiquidity(req.Pool, req.Percentage)
	h.respond(w, "remove_liquidity", s, err)
}

// BuyMiningHardware handles POST /api/v1/mining/hardware.
func (h *Handler) BuyMiningHardware(w http.ResponseWriter, r *http.Request) {
	var req RigRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.BuyMiningHardware(req.Rig)
	h.respond(w, "buy_mining_hardware", s, err)
}

// DeployTradingBot handles POST /api/v1/bots/deploy.
func (h *Handler) DeployTradingBot(w http.ResponseWriter, r *http.Request) {
	var req BotRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.DeployTradingBot(req.Bot, req.Investment)
	h.respond(w, "deploy_trading_bot", s, err)
}

// StopTradingBot handles POST /api/v1/bots/stop.
func (h *Handler) StopTradingBot(w http.ResponseWriter, r *http.Request) {
	var req BotRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.StopTradingBot(req.Bot)
	h.respond(w, "stop_trading_bot", s, err)
}

// BuyNFT handles POST /api/v1/nfts/buy.
func (h *Handler) BuyNFT(w http.ResponseWriter, r *http.Request) {
	var req BuyNFTRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.BuyNFT(req.Collection, req.NFT, req.Price)
	h.respond(w, "buy_nft", s, err)
}

// SellNFT handles POST /api/v1/nfts/sell.
func (h *Handler) SellNFT(w http.ResponseWriter, r *http.Request) {
	var req SellNFTRequest
	if !decode(w, r, &req) {
		return
	}
	s, err := h.engine.SellNFT(req.Key, req.Price)
	h.respond(w, "sell_nft", s, err)
}

// --- Snapshots and persistence ---

// Export handles GET /api/v1/export. The body is the snapshot itself.
func (h *Handler) Export(w http.ResponseWriter, _ *http.Request) {
	data, err := h.engine.Export()
	if err != nil {
		writeError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="crypto-tycoon-save.json"`)
	w.Write(data)
}

// Import handles POST /api/v1/import with a snapshot as the body.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxSnapshotBytes))
	if err != nil {
		writeError(w, "snapshot too large or unreadable", http.StatusRequestEntityTooLarge)
		return
	}
	s, err := h.engine.Import(data)
	h.respond(w, "import", s, err)
}

// Save handles POST /api/v1/save.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Save(r.Context()); err != nil {
		h.fail(w, "save", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":     "saved",
		"session_id": h.engine.State().SessionID,
	})
}

// Load handles POST /api/v1/load.
func (h *Handler) Load(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if r.ContentLength != 0 && !decode(w, r, &req) {
		return
	}
	s, err := h.engine.Load(r.Context(), req.SessionID)
	h.respond(w, "load", s, err)
}

// ListSessions handles GET /api/v1/sessions.
func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.engine.Sessions(r.Context())
	if err != nil {
		h.fail(w, "list_sessions", err)
		return
	}
	if sessions == nil {
		sessions = []store.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// ListTransactions handles GET /api/v1/transactions.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.engine.History(r.Context())
	if err != nil {
		h.fail(w, "list_transactions", err)
		return
	}
	if txs == nil {
		txs = []model.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// Archive handles POST /api/v1/archive.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	key, err := h.engine.Archive(r.Context())
	if err != nil {
		h.fail(w, "archive", err)
		return
	}
	slog.Info("snapshot archived", "key", key)
	writeJSON(w, http.StatusCreated, map[string]string{"key": key})
}

// RestoreArchive handles POST /api/v1/archive/restore.
func (h *Handler) RestoreArchive(w http.ResponseWriter, r *http.Request) {
	var req ArchiveRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Key == "" {
		writeError(w, "key is required", http.StatusBadRequest)
		return
	}
	s, err := h.engine.RestoreArchive(r.Context(), req.Key)
	h.respond(w, "restore_archive", s, err)
}

// --- Helpers ---

func (h *Handler) respond(w http.ResponseWriter, name string, s *model.GameState, err error) {
	if err != nil {
		h.fail(w, name, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) fail(w http.ResponseWriter, name string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.Error("command failed", "command", name, "err", err)
	} else {
		slog.Warn("command rejected", "command", name, "err", err)
	}
	writeError(w, err.Error(), status)
}

// statusFor maps engine errors onto HTTP status codes.
func statusFor(err error) int {
	var ve *ledger.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case snapshot.IsDataError(err):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound), errors.Is(err, blob.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrNoStore), errors.Is(err, game.ErrNoArchiver):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

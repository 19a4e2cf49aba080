// Package catalog holds the static game catalogs (tradable assets, mining
// hardware, trading bots, NFT collections, UI views) and parses the composite
// keys used to address NFTs.
package catalog

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/model"
)

var (
	ErrInvalidNFTKey = errors.New("catalog: invalid nft key")
	ErrUnknownView   = errors.New("catalog: unknown view")
)

// nftKeyRegex matches {collectionID}#{nftID}, e.g. crypto_punks#7804.
// Collection IDs contain underscores, so '#' is the separator.
var nftKeyRegex = regexp.MustCompile(`^([a-z0-9_]+)#([A-Za-z0-9-]+)$`)

// NFTKey builds the portfolio key for an NFT.
func NFTKey(collectionID, nftID string) string {
	return collectionID + "#" + nftID
}

// ParseNFTKey splits a portfolio key into collection and NFT IDs.
func ParseNFTKey(key string) (collectionID, nftID string, err error) {
	m := nftKeyRegex.FindStringSubmatch(key)
	if m == nil {
		return "", "", fmt.Errorf("%w: %q (expected {collection}#{id})", ErrInvalidNFTKey, key)
	}
	return m[1], m[2], nil
}

// Views the UI can switch between.
var views = map[string]bool{
	"dashboard":    true,
	"market":       true,
	"trading":      true,
	"portfolio":    true,
	"analytics":    true,
	"staking":      true,
	"mining":       true,
	"defi":         true,
	"bots":         true,
	"nft":          true,
	"achievements": true,
	"challenges":   true,
	"news":         true,
	"settings":     true,
}

// ValidateView returns ErrUnknownView for names the UI does not have.
func ValidateView(name string) error {
	if !views[name] {
		return fmt.Errorf("%w: %q", ErrUnknownView, name)
	}
	return nil
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Assets returns fresh copies of the tradable asset catalog.
func Assets() map[string]model.Asset {
	list := []model.Asset{
		{ID: "BTC", Name: "Bitcoin", Price: d("45000"), Volatility: 0.02, Volume24h: 25e9,
			CanStake: true, StakingRewardRate: d("0.05"), CanMine: true, MiningDifficulty: d("0.8"),
			MiningEfficiency: d("0.0000002"), LiquidityPoolSize: d("1000000")},
		{ID: "ETH", Name: "Ethereum", Price: d("3200"), Volatility: 0.03, Volume24h: 15e9,
			CanStake: true, StakingRewardRate: d("0.04"), LiquidityPoolSize: d("800000")},
		{ID: "DOGE", Name: "Dogecoin", Price: d("0.08"), Volatility: 0.08, Volume24h: 8e8,
			CanMine: true, MiningDifficulty: d("0.3"), MiningEfficiency: d("0.05"),
			LiquidityPoolSize: d("200000")},
		{ID: "ADA", Name: "Cardano", Price: d("0.45"), Volatility: 0.04, Volume24h: 5e8,
			CanStake: true, StakingRewardRate: d("0.045"), LiquidityPoolSize: d("300000")},
		{ID: "SOL", Name: "Solana", Price: d("95"), Volatility: 0.06, Volume24h: 2e9,
			CanStake: true, StakingRewardRate: d("0.07"), LiquidityPoolSize: d("500000")},
		{ID: "SHIB", Name: "Shiba Inu", Price: d("0.000025"), Volatility: 0.12, Volume24h: 6e8,
			CanMine: true, MiningDifficulty: d("0.2"), MiningEfficiency: d("100"),
			LiquidityPoolSize: d("150000")},
		{ID: "MATIC", Name: "Polygon", Price: d("0.85"), Volatility: 0.05, Volume24h: 4e8,
			CanStake: true, StakingRewardRate: d("0.08"), LiquidityPoolSize: d("250000")},
		{ID: "LINK", Name: "Chainlink", Price: d("15.5"), Volatility: 0.04, Volume24h: 3.5e8,
			CanStake: true, StakingRewardRate: d("0.05"), LiquidityPoolSize: d("200000")},
	}
	out := make(map[string]model.Asset, len(list))
	for _, a := range list {
		a.RSI = 50
		a.TechnicalScore = 50
		a.Sentiment = model.Neutral
		out[a.ID] = a
	}
	return out
}

// MiningRigs returns the hardware catalog. The player starts with one CPU.
func MiningRigs() []model.MiningRig {
	return []model.MiningRig{
		{ID: "cpu", Name: "CPU Miner", HashRate: d("1"), PowerConsumption: d("100"), Cost: d("0"), Owned: 1, Efficiency: 0.01},
		{ID: "gpu_basic", Name: "Basic GPU", HashRate: d("10"), PowerConsumption: d("200"), Cost: d("500"), Efficiency: 0.05},
		{ID: "gpu_advanced", Name: "Advanced GPU", HashRate: d("25"), PowerConsumption: d("300"), Cost: d("1200"), Efficiency: 0.08},
		{ID: "asic", Name: "ASIC Miner", HashRate: d("100"), PowerConsumption: d("1500"), Cost: d("5000"), Efficiency: 0.15},
		{ID: "quantum", Name: "Quantum Miner", HashRate: d("1000"), PowerConsumption: d("5000"), Cost: d("50000"), Efficiency: 0.30},
	}
}

// TradingBots returns the dormant bot catalog.
func TradingBots() []model.TradingBot {
	return []model.TradingBot{
		{ID: "scalper", Name: "Lightning Scalper", Strategy: "scalping", RiskLevel: "high", MinInvestment: d("1000"), ExpectedReturn: 0.15},
		{ID: "hodler", Name: "Diamond Hands", Strategy: "hodl", RiskLevel: "low", MinInvestment: d("500"), ExpectedReturn: 0.08},
		{ID: "arbitrage", Name: "Arbitrage Master", Strategy: "arbitrage", RiskLevel: "medium", MinInvestment: d("2000"), ExpectedReturn: 0.12},
		{ID: "momentum", Name: "Momentum Rider", Strategy: "momentum", RiskLevel: "medium", MinInvestment: d("1500"), ExpectedReturn: 0.10},
	}
}

// NFTCollections returns the collection catalog keyed by ID.
func NFTCollections() map[string]model.NFTCollection {
	list := []model.NFTCollection{
		{ID: "crypto_punks", Name: "Crypto Punks", FloorPrice: d("50"), Items: 100, Rarity: "legendary", Category: "pfp"},
		{ID: "bored_apes", Name: "Bored Apes", FloorPrice: d("30"), Items: 150, Rarity: "epic", Category: "pfp"},
		{ID: "art_blocks", Name: "Art Blocks", FloorPrice: d("5"), Items: 500, Rarity: "rare", Category: "art"},
		{ID: "gaming_items", Name: "Gaming Items", FloorPrice: d("1"), Items: 1000, Rarity: "common", Category: "gaming"},
	}
	out := make(map[string]model.NFTCollection, len(list))
	for _, c := range list {
		out[c.ID] = c
	}
	return out
}

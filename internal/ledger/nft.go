package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/cryptotycoon/engine/internal/catalog"
	"github.com/cryptotycoon/engine/internal/model"
)

// BuyNFT buys one item of a collection at price, which must be at least the
// collection floor.
func (l *Ledger) BuyNFT(s *model.GameState, collectionID, nftID string, price decimal.Decimal) (model.Activity, error) {
	if err := requireFeature(s, "nft"); err != nil {
		return model.Activity{}, err
	}
	if !price.IsPositive() {
		return model.Activity{}, reject(ErrInvalidPrice, "%s", price)
	}
	coll, ok := catalog.NFTCollections()[collectionID]
	if !ok {
		return model.Activity{}, reject(ErrUnknownCollection, "%q", collectionID)
	}
	key := catalog.NFTKey(collectionID, nftID)
	if _, _, err := catalog.ParseNFTKey(key); err != nil {
		return model.Activity{}, invalid("invalid nft id", err)
	}
	if price.LessThan(coll.FloorPrice) {
		return model.Activity{}, reject(ErrBelowFloor, "%s < %s", price, coll.FloorPrice)
	}
	if _, owned := s.NFTs[key]; owned {
		return model.Activity{}, reject(ErrNFTOwned, "%s", key)
	}
	if price.GreaterThan(s.Player.Cash) {
		return model.Activity{}, reject(ErrInsufficientFunds, "price %s, cash %s", price, s.Player.Cash)
	}

	s.NFTs[key] = model.NFTHolding{
		Key:           key,
		CollectionID:  collectionID,
		NFTID:         nftID,
		PurchasePrice: price,
		CurrentValue:  price,
		PurchasedAt:   l.clock.Now(),
	}
	s.Player.Cash = s.Player.Cash.Sub(price)
	Revalue(s)
	return model.Activity{Kind: model.ActivityNFTBuy, AssetID: key, Volume: price}, nil
}

// SellNFT sells an owned NFT for price.
func (l *Ledger) SellNFT(s *model.GameState, key string, price decimal.Decimal) error {
	if err := requireFeature(s, "nft"); err != nil {
		return err
	}
	if !price.IsPositive() {
		return reject(ErrInvalidPrice, "%s", price)
	}
	if _, _, err := catalog.ParseNFTKey(key); err != nil {
		return invalid("invalid nft key", err)
	}
	if _, ok := s.NFTs[key]; !ok {
		return reject(ErrUnknownNFT, "%s", key)
	}
	delete(s.NFTs, key)
	s.Player.Cash = s.Player.Cash.Add(price)
	Revalue(s)
	return nil
}

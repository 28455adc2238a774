package core

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"

	"chainx/core/page"
	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/spot"
)

// PairInfo is the market summary of one trading pair.
type PairInfo struct {
	ID            uint32 `json:"id"`
	Assets        string `json:"assets"`
	Currency      string `json:"currency"`
	Precision     uint32 `json:"precision"`
	Online        bool   `json:"online"`
	UnitPrecision uint32 `json:"unitPrecision"`
	LastPrice     uint64 `json:"lastPrice"`
	AverPrice     uint64 `json:"averPrice"`
	UpdateHeight  uint64 `json:"updateHeight"`
	BuyOne        uint64 `json:"buyOne"`
	SellOne       uint64 `json:"sellOne"`
	MaximumBid    uint64 `json:"maximumBid"`
	MinimumOffer  uint64 `json:"minimumOffer"`
}

// TradingPairs lists every stored trading pair with its prices.
func (q *Querier) TradingPairs(ctx context.Context, at *common.Hash) (_ []PairInfo, err error) {
	_, snap, finish, err := q.begin(ctx, "tradingPairs", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	count, err := spot.PairCount(snap)
	if err != nil {
		return nil, err
	}
	out := make([]PairInfo, 0, count)
	for i := uint32(0); i < count; i++ {
		pair, err := spot.PairOf(snap, i)
		if err != nil {
			return nil, err
		}
		if pair == nil {
			continue
		}
		info := PairInfo{
			ID:            pair.Index,
			Assets:        pair.Base,
			Currency:      pair.Quote,
			Precision:     pair.PipPrecision,
			Online:        pair.Online,
			UnitPrecision: pair.TickPrecision,
		}
		price, err := spot.PriceOf(snap, i)
		if err != nil {
			return nil, err
		}
		if price != nil {
			info.LastPrice = price.LastPrice
			info.AverPrice = price.AverPrice
			info.UpdateHeight = price.UpdateHeight
		}
		handicap, err := spot.HandicapFor(snap, i)
		if err != nil {
			return nil, err
		}
		if handicap != nil {
			tick, err := pair.Tick()
			if err != nil {
				return nil, err
			}
			fluctuation, err := pair.Fluctuation()
			if err != nil {
				return nil, err
			}
			info.BuyOne = handicap.HighestBid
			info.SellOne = handicap.LowestOffer
			info.MaximumBid, info.MinimumOffer = spot.Bounds(*handicap, tick, fluctuation)
		}
		out = append(out, info)
	}
	return out, nil
}

// Quotations returns the depth of pairIndex with at most piece levels per
// side.
func (q *Querier) Quotations(ctx context.Context, pairIndex, piece uint32, at *common.Hash) (_ *spot.Quotations, err error) {
	if piece < spot.MinPiece || piece > spot.MaxPiece {
		return nil, spot.ErrQuotationsPiece
	}
	_, snap, finish, err := q.begin(ctx, "quotations", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	return spot.Depth(snap, pairIndex, piece, spot.DepthOptions{
		Mode:      q.depthMode,
		MaxLevels: q.maxLevels,
		Logger:    q.logger,
	})
}

// Orders pages the order history of who, most recent first. Orders that are
// missing or fail to decode are left out of both the page and the total.
func (q *Querier) Orders(ctx context.Context, who types.AccountID, pageIndex, pageSize uint32, at *common.Hash) (_ *page.Page[spot.Order], err error) {
	if pageSize == 0 || pageSize > q.maxPageSize {
		return nil, page.ErrPageSize
	}
	_, snap, finish, err := q.begin(ctx, "orders", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	count, err := spot.OrderCount(snap, who)
	if err != nil {
		return nil, err
	}
	return page.Scan(q.logger, count, page.Descending, pageIndex, pageSize, func(i uint64) (spot.Order, bool, error) {
		order, err := spot.OrderOf(snap, spot.OrderRef{Account: who, Index: i})
		if err != nil {
			if errors.Is(err, state.ErrDecode) {
				q.metrics.RecordDecodeSkip("orders")
			}
			return spot.Order{}, false, err
		}
		if order == nil {
			return spot.Order{}, false, nil
		}
		return *order, true, nil
	})
}

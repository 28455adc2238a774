package spot

import (
	"chainx/core/state"
	"chainx/core/types"
)

const module = "XSpot"

var (
	// TradingPairCount holds the number of pairs ever registered.
	TradingPairCount = state.NewValue(module, "TradingPairCount")
	TradingPairOf    = state.NewMap(module, "TradingPairOf")
	// TradingPairInfoOf holds the PairPrice of a pair.
	TradingPairInfoOf = state.NewMap(module, "TradingPairInfoOf")
	HandicapOf        = state.NewMap(module, "HandicapOf")
	// QuotationsOf holds the refs of every order resting at (pair, price).
	QuotationsOf = state.NewMap(module, "QuotationsOf")
	// OrderCountOf holds the number of orders an account has submitted.
	OrderCountOf = state.NewMap(module, "OrderCountOf")
	OrderInfoOf  = state.NewMap(module, "OrderInfoOf")
)

// PairPriceKey is the parameter of QuotationsOf.
type PairPriceKey struct {
	Pair  uint32
	Price uint64
}

// PairCount reads the number of registered pairs.
func PairCount(snap state.Snapshot) (uint32, error) {
	return state.ReadOr(snap, TradingPairCount.Key(), uint32(0))
}

// PairOf reads the pair stored under index.
func PairOf(snap state.Snapshot, index uint32) (*TradingPair, error) {
	return state.Read[TradingPair](snap, TradingPairOf.At(index))
}

// PriceOf reads the price information of a pair.
func PriceOf(snap state.Snapshot, index uint32) (*PairPrice, error) {
	return state.Read[PairPrice](snap, TradingPairInfoOf.At(index))
}

// HandicapFor reads the best prices of a pair.
func HandicapFor(snap state.Snapshot, index uint32) (*Handicap, error) {
	return state.Read[Handicap](snap, HandicapOf.At(index))
}

// RestingAt reads the refs of the orders resting at price.
func RestingAt(snap state.Snapshot, pair uint32, price uint64) ([]OrderRef, error) {
	return state.ReadOr(snap, QuotationsOf.At(PairPriceKey{Pair: pair, Price: price}), []OrderRef(nil))
}

// OrderCount reads how many orders account has submitted.
func OrderCount(snap state.Snapshot, account types.AccountID) (uint64, error) {
	return state.ReadOr(snap, OrderCountOf.At(account), uint64(0))
}

// OrderOf reads a single order.
func OrderOf(snap state.Snapshot, ref OrderRef) (*Order, error) {
	return state.Read[Order](snap, OrderInfoOf.At(ref))
}

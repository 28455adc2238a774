package spot

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"chainx/core/state"
	"chainx/core/state/statetest"
	"chainx/core/types"
)

var (
	alice = types.AccountID{0xa1}
	bob   = types.AccountID{0xb0}
)

type book struct {
	t      *testing.T
	w      *state.Writer
	pair   uint32
	orders map[types.AccountID]uint64
	levels map[uint64][]OrderRef
}

func (b *book) rest(who types.AccountID, side Side, price, amount, filled uint64) {
	idx := b.orders[who]
	b.orders[who] = idx + 1
	ref := OrderRef{Account: who, Index: idx}
	statetest.MustPut(b.t, b.w, OrderInfoOf.At(ref), Order{
		PairIndex: b.pair, Index: idx, Side: side, Submitter: who,
		Amount: amount, Price: price, AlreadyFilled: filled,
	})
	b.levels[price] = append(b.levels[price], ref)
	statetest.MustPut(b.t, b.w, QuotationsOf.At(PairPriceKey{Pair: b.pair, Price: price}), b.levels[price])
}

func buildBook(t *testing.T, pair TradingPair, handicap *Handicap, fill func(b *book)) state.Snapshot {
	return statetest.Snapshot(t, func(w *state.Writer) {
		statetest.MustPut(t, w, TradingPairCount.Key(), pair.Index+1)
		statetest.MustPut(t, w, TradingPairOf.At(pair.Index), pair)
		if handicap != nil {
			statetest.MustPut(t, w, HandicapOf.At(pair.Index), *handicap)
		}
		if fill != nil {
			fill(&book{t: t, w: w, pair: pair.Index, orders: map[types.AccountID]uint64{}, levels: map[uint64][]OrderRef{}})
		}
	})
}

func prices(levels []PriceLevel) []uint64 {
	out := make([]uint64, 0, len(levels))
	for _, l := range levels {
		out = append(out, l.Price)
	}
	return out
}

func TestDepthRejectsPieceOutOfRange(t *testing.T) {
	snap := buildBook(t, TradingPair{Index: 0, PriceFluctuation: 5}, nil, nil)
	for _, piece := range []uint32{0, 11} {
		_, err := Depth(snap, 0, piece, DepthOptions{Mode: DepthIndependent})
		require.ErrorIs(t, err, ErrQuotationsPiece)
		// the piece check runs before the pair lookup
		_, err = Depth(snap, 99, piece, DepthOptions{Mode: DepthIndependent})
		require.ErrorIs(t, err, ErrQuotationsPiece)
	}
	for _, piece := range []uint32{1, 10} {
		q, err := Depth(snap, 0, piece, DepthOptions{Mode: DepthIndependent})
		require.NoError(t, err)
		require.Equal(t, piece, q.Piece)
	}
}

func TestDepthUnknownPair(t *testing.T) {
	snap := buildBook(t, TradingPair{Index: 0}, nil, nil)
	_, err := Depth(snap, 3, 5, DepthOptions{Mode: DepthIndependent})
	require.ErrorIs(t, err, ErrTradingPairIndex)
}

func TestDepthWithoutHandicapIsEmpty(t *testing.T) {
	snap := buildBook(t, TradingPair{Index: 0, PriceFluctuation: 5}, nil, nil)
	q, err := Depth(snap, 0, 5, DepthOptions{Mode: DepthIndependent})
	require.NoError(t, err)
	require.Empty(t, q.Sell)
	require.Empty(t, q.Buy)
	require.NotNil(t, q.Sell)
	require.NotNil(t, q.Buy)
}

func TestDepthBuyOnlyBook(t *testing.T) {
	pair := TradingPair{Index: 0, TickPrecision: 0, PriceFluctuation: 5}
	snap := buildBook(t, pair, &Handicap{HighestBid: 100}, func(b *book) {
		b.rest(alice, Buy, 100, 10, 3)
	})
	for _, mode := range []DepthMode{DepthIndependent, DepthCoupled} {
		q, err := Depth(snap, 0, 1, DepthOptions{Mode: mode})
		require.NoError(t, err, mode.String())
		require.Empty(t, q.Sell, mode.String())
		require.Len(t, q.Buy, 1, mode.String())
		require.Equal(t, uint64(100), q.Buy[0].Price)
		require.Equal(t, uint64(7), q.Buy[0].Amount.Uint64())
	}
}

func TestDepthSumsOrdersAtSamePrice(t *testing.T) {
	pair := TradingPair{Index: 2, TickPrecision: 0, PriceFluctuation: 5}
	snap := buildBook(t, pair, &Handicap{LowestOffer: 50}, func(b *book) {
		b.rest(alice, Sell, 50, 3, 0)
		b.rest(bob, Sell, 50, 6, 2)
		// overfilled orders contribute nothing
		b.rest(bob, Sell, 50, 1, 4)
	})
	q, err := Depth(snap, 2, 3, DepthOptions{Mode: DepthIndependent})
	require.NoError(t, err)
	require.Len(t, q.Sell, 1)
	require.Equal(t, uint64(7), q.Sell[0].Amount.Uint64())
}

func TestDepthSkipsMissingOrders(t *testing.T) {
	pair := TradingPair{Index: 0, PriceFluctuation: 5}
	snap := buildBook(t, pair, &Handicap{LowestOffer: 10}, func(b *book) {
		b.rest(alice, Sell, 10, 4, 0)
		ghost := OrderRef{Account: bob, Index: 42}
		b.levels[10] = append(b.levels[10], ghost)
		statetest.MustPut(t, b.w, QuotationsOf.At(PairPriceKey{Pair: 0, Price: 10}), b.levels[10])
	})
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	q, err := Depth(snap, 0, 1, DepthOptions{Mode: DepthIndependent, Logger: logger})
	require.NoError(t, err)
	require.Equal(t, uint64(4), q.Sell[0].Amount.Uint64())
	require.Contains(t, logs.String(), "quotation references missing order")
	require.Contains(t, logs.String(), "index=42")
}

func TestDepthIndependentCapsEachSide(t *testing.T) {
	pair := TradingPair{Index: 0, TickPrecision: 1, PriceFluctuation: 10}
	snap := buildBook(t, pair, &Handicap{HighestBid: 1000, LowestOffer: 1010}, func(b *book) {
		for _, p := range []uint64{1010, 1020, 1040, 1100} {
			b.rest(alice, Sell, p, 1, 0)
		}
		for _, p := range []uint64{1000, 980, 970, 900} {
			b.rest(bob, Buy, p, 2, 0)
		}
		// outside the fluctuation window
		b.rest(alice, Sell, 1200, 1, 0)
		b.rest(bob, Buy, 800, 1, 0)
	})

	q, err := Depth(snap, 0, 2, DepthOptions{Mode: DepthIndependent})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010, 1020}, prices(q.Sell))
	require.Equal(t, []uint64{980, 1000}, prices(q.Buy))

	q, err = Depth(snap, 0, 10, DepthOptions{Mode: DepthIndependent})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010, 1020, 1040, 1100}, prices(q.Sell))
	require.Equal(t, []uint64{900, 970, 980, 1000}, prices(q.Buy))
}

func TestDepthMaxLevelsBoundsWalk(t *testing.T) {
	pair := TradingPair{Index: 0, TickPrecision: 1, PriceFluctuation: 10}
	snap := buildBook(t, pair, &Handicap{HighestBid: 1000, LowestOffer: 1010}, func(b *book) {
		for _, p := range []uint64{1010, 1020, 1040, 1100} {
			b.rest(alice, Sell, p, 1, 0)
		}
		for _, p := range []uint64{1000, 980, 970, 900} {
			b.rest(bob, Buy, p, 2, 0)
		}
	})

	// three levels per side: 1010..1030 and 1000..980
	q, err := Depth(snap, 0, 10, DepthOptions{Mode: DepthIndependent, MaxLevels: 3})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010, 1020}, prices(q.Sell))
	require.Equal(t, []uint64{980, 1000}, prices(q.Buy))

	// the coupled buy walk starts at the bottom of the window
	q, err = Depth(snap, 0, 10, DepthOptions{Mode: DepthCoupled, MaxLevels: 1})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010}, prices(q.Sell))
	require.Equal(t, []uint64{900}, prices(q.Buy))

	q, err = Depth(snap, 0, 10, DepthOptions{Mode: DepthIndependent})
	require.NoError(t, err)
	require.Len(t, q.Sell, 4)
	require.Len(t, q.Buy, 4)
}

func TestDepthCoupledTermination(t *testing.T) {
	pair := TradingPair{Index: 0, TickPrecision: 1, PriceFluctuation: 10}
	snap := buildBook(t, pair, &Handicap{HighestBid: 1000, LowestOffer: 1010}, func(b *book) {
		for _, p := range []uint64{1010, 1020, 1040} {
			b.rest(alice, Sell, p, 1, 0)
		}
		for _, p := range []uint64{1000, 980, 970} {
			b.rest(bob, Buy, p, 2, 0)
		}
	})

	// The sell walk never sees a full buy ladder, so it covers the whole
	// window. The buy walk starts at the bottom and stops as soon as the sell
	// ladder length equals the piece, which is not the case here.
	q, err := Depth(snap, 0, 2, DepthOptions{Mode: DepthCoupled})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010, 1020, 1040}, prices(q.Sell))
	require.Equal(t, []uint64{970, 980, 1000}, prices(q.Buy))

	// With piece equal to the sell ladder size the buy walk stops after its
	// first step at the lowest price.
	q, err = Depth(snap, 0, 3, DepthOptions{Mode: DepthCoupled})
	require.NoError(t, err)
	require.Equal(t, []uint64{1010, 1020, 1040}, prices(q.Sell))
	require.Empty(t, q.Buy)
}

func TestDepthRejectsOversizedTickPrecision(t *testing.T) {
	snap := buildBook(t, TradingPair{Index: 0, TickPrecision: 20}, &Handicap{HighestBid: 1}, nil)
	_, err := Depth(snap, 0, 1, DepthOptions{Mode: DepthIndependent})
	require.ErrorIs(t, err, ErrInvalidTradingPair)
}

func TestBoundsSaturate(t *testing.T) {
	maxBid, minOffer := Bounds(Handicap{HighestBid: 3, LowestOffer: ^uint64(0) - 1}, 1, 5)
	require.Equal(t, ^uint64(0), maxBid)
	require.Equal(t, uint64(1), minOffer)
}

func TestParseDepthMode(t *testing.T) {
	m, err := ParseDepthMode("")
	require.NoError(t, err)
	require.Equal(t, DepthIndependent, m)
	m, err = ParseDepthMode("Coupled")
	require.NoError(t, err)
	require.Equal(t, DepthCoupled, m)
	_, err = ParseDepthMode("both")
	require.Error(t, err)
}

package spot

import (
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/holiman/uint256"

	"chainx/core/state"
)

// Bounds on the number of price levels a depth query may request.
const (
	MinPiece = 1
	MaxPiece = 10
)

// DepthMode selects how the two ladders of a depth query are bounded.
type DepthMode uint8

const (
	// DepthIndependent caps each ladder at the requested number of levels,
	// walking from the best price outwards.
	DepthIndependent DepthMode = iota
	// DepthCoupled reproduces the legacy walk: the sell ladder stops once the
	// buy ladder is full and the buy ladder stops once the sell ladder is
	// full, both walking in ascending price order.
	DepthCoupled
)

func (m DepthMode) String() string {
	switch m {
	case DepthIndependent:
		return "independent"
	case DepthCoupled:
		return "coupled"
	default:
		return fmt.Sprintf("DepthMode(%d)", uint8(m))
	}
}

// ParseDepthMode accepts "independent" (or empty) and "coupled".
func ParseDepthMode(s string) (DepthMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "independent":
		return DepthIndependent, nil
	case "coupled":
		return DepthCoupled, nil
	default:
		return 0, fmt.Errorf("spot: unknown depth mode %q", s)
	}
}

// PriceLevel is the total unfilled volume resting at one price.
type PriceLevel struct {
	Price  uint64       `json:"price"`
	Amount *uint256.Int `json:"amount"`
}

// Quotations is the depth snapshot of a pair. Both ladders are in ascending
// price order.
type Quotations struct {
	ID    uint32       `json:"id"`
	Piece uint32       `json:"piece"`
	Sell  []PriceLevel `json:"sell"`
	Buy   []PriceLevel `json:"buy"`
}

// DepthOptions tunes a depth walk.
type DepthOptions struct {
	Mode DepthMode
	// MaxLevels caps the price levels visited on each side. Every level costs
	// one state read whether or not orders rest there, so without a cap a
	// wide fluctuation on a fine tick walks the whole window. Zero disables
	// the cap.
	MaxLevels uint64
	// Logger receives quotations that reference missing orders. Nil uses
	// slog.Default().
	Logger *slog.Logger
}

// Depth aggregates the resting volume of pairIndex into at most piece price
// levels per side.
func Depth(snap state.Snapshot, pairIndex uint32, piece uint32, opts DepthOptions) (*Quotations, error) {
	if piece < MinPiece || piece > MaxPiece {
		return nil, fmt.Errorf("%w: %d", ErrQuotationsPiece, piece)
	}
	pair, err := PairOf(snap, pairIndex)
	if err != nil {
		return nil, err
	}
	if pair == nil {
		return nil, fmt.Errorf("%w: %d", ErrTradingPairIndex, pairIndex)
	}
	tick, err := pair.Tick()
	if err != nil {
		return nil, err
	}
	fluctuation, err := pair.Fluctuation()
	if err != nil {
		return nil, err
	}

	q := &Quotations{ID: pairIndex, Piece: piece, Sell: []PriceLevel{}, Buy: []PriceLevel{}}
	handicap, err := HandicapFor(snap, pairIndex)
	if err != nil {
		return nil, err
	}
	if handicap == nil {
		return q, nil
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	agg := aggregator{snap: snap, pair: pairIndex, logger: logger}
	maximumBid, minimumOffer := Bounds(*handicap, tick, fluctuation)
	limit := int(piece)

	switch opts.Mode {
	case DepthCoupled:
		sells := budget(opts.MaxLevels)
		for price := handicap.LowestOffer; price <= maximumBid && sells.take(); {
			if err := agg.push(price, &q.Sell); err != nil {
				return nil, err
			}
			if len(q.Buy) == limit {
				break
			}
			next, ok := stepUp(price, tick)
			if !ok {
				break
			}
			price = next
		}
		buys := budget(opts.MaxLevels)
		for price := minimumOffer; price <= handicap.HighestBid && buys.take(); {
			if err := agg.push(price, &q.Buy); err != nil {
				return nil, err
			}
			if len(q.Sell) == limit {
				break
			}
			next, ok := stepUp(price, tick)
			if !ok {
				break
			}
			price = next
		}
	default:
		if handicap.LowestOffer != 0 {
			sells := budget(opts.MaxLevels)
			for price := handicap.LowestOffer; price <= maximumBid && len(q.Sell) < limit && sells.take(); {
				if err := agg.push(price, &q.Sell); err != nil {
					return nil, err
				}
				next, ok := stepUp(price, tick)
				if !ok {
					break
				}
				price = next
			}
		}
		if handicap.HighestBid != 0 {
			buys := budget(opts.MaxLevels)
			for price := handicap.HighestBid; price >= minimumOffer && len(q.Buy) < limit && buys.take(); {
				if err := agg.push(price, &q.Buy); err != nil {
					return nil, err
				}
				if price < tick {
					break
				}
				price -= tick
			}
			reverse(q.Buy)
		}
	}
	return q, nil
}

// levelBudget counts the price levels a ladder walk may still visit.
type levelBudget struct {
	capped bool
	left   uint64
}

func budget(n uint64) *levelBudget {
	return &levelBudget{capped: n > 0, left: n}
}

func (b *levelBudget) take() bool {
	if !b.capped {
		return true
	}
	if b.left == 0 {
		return false
	}
	b.left--
	return true
}

type aggregator struct {
	snap   state.Snapshot
	pair   uint32
	logger *slog.Logger
}

// push appends the level at price to ladder when at least one order rests
// there.
func (a aggregator) push(price uint64, ladder *[]PriceLevel) error {
	refs, err := RestingAt(a.snap, a.pair, price)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return nil
	}
	sum := new(uint256.Int)
	for _, ref := range refs {
		order, err := OrderOf(a.snap, ref)
		if err != nil {
			return err
		}
		if order == nil {
			a.logger.Debug("spot: quotation references missing order",
				"pair", a.pair, "price", price, "account", ref.Account.String(), "index", ref.Index)
			continue
		}
		sum.Add(sum, uint256.NewInt(order.Unfilled()))
	}
	*ladder = append(*ladder, PriceLevel{Price: price, Amount: sum})
	return nil
}

func stepUp(price, tick uint64) (uint64, bool) {
	if price > math.MaxUint64-tick {
		return 0, false
	}
	return price + tick, true
}

func reverse(levels []PriceLevel) {
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
}

package spot

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"chainx/core/types"
)

var (
	// ErrTradingPairIndex is returned when no trading pair is stored under
	// the requested index.
	ErrTradingPairIndex = errors.New("spot: unknown trading pair index")
	// ErrQuotationsPiece is returned when the requested depth lies outside
	// [MinPiece, MaxPiece].
	ErrQuotationsPiece = errors.New("spot: quotations piece out of range")
	// ErrInvalidTradingPair is returned when a stored pair cannot be priced.
	ErrInvalidTradingPair = errors.New("spot: invalid trading pair")
)

// maxTickPrecision is the largest exponent for which 10^n fits in a uint64.
const maxTickPrecision = 19

// TradingPair is the stored definition of a market.
type TradingPair struct {
	Index         uint32
	Base          string
	Quote         string
	PipPrecision  uint32
	TickPrecision uint32
	Online        bool
	// PriceFluctuation is the allowed distance from the best price, in ticks.
	PriceFluctuation uint64
}

// Tick returns the smallest price increment, 10^TickPrecision.
func (p TradingPair) Tick() (uint64, error) {
	if p.TickPrecision > maxTickPrecision {
		return 0, fmt.Errorf("%w: tick precision %d", ErrInvalidTradingPair, p.TickPrecision)
	}
	tick := uint64(1)
	for i := uint32(0); i < p.TickPrecision; i++ {
		tick *= 10
	}
	return tick, nil
}

// Fluctuation returns the price distance orders may rest away from the best
// price on the opposite side.
func (p TradingPair) Fluctuation() (uint64, error) {
	tick, err := p.Tick()
	if err != nil {
		return 0, err
	}
	return saturatingMul(p.PriceFluctuation, tick), nil
}

// PairPrice is the last traded and average price of a pair.
type PairPrice struct {
	LastPrice    uint64
	AverPrice    uint64
	UpdateHeight uint64
}

// Handicap holds the best resting price on each side. Zero means the side
// has no resting orders.
type Handicap struct {
	HighestBid  uint64
	LowestOffer uint64
}

// Bounds returns the highest price a sell ladder reaches and the lowest price
// a buy ladder reaches.
func Bounds(h Handicap, tick, fluctuation uint64) (maximumBid, minimumOffer uint64) {
	if h.LowestOffer != 0 {
		maximumBid = saturatingAdd(h.LowestOffer, fluctuation)
	}
	if h.HighestBid > fluctuation {
		minimumOffer = h.HighestBid - fluctuation
	} else {
		minimumOffer = tick
	}
	return maximumBid, minimumOffer
}

// OrderRef identifies an order by submitter and per-account sequence.
type OrderRef struct {
	Account types.AccountID
	Index   uint64
}

// Side is the direction of an order.
type Side uint8

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "Buy"
	case Sell:
		return "Sell"
	default:
		return fmt.Sprintf("Side(%d)", uint8(s))
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "buy":
		*s = Buy
	case "sell":
		*s = Sell
	default:
		return fmt.Errorf("spot: unknown side %q", text)
	}
	return nil
}

// OrderType is the execution class of an order.
type OrderType uint8

const (
	Limit OrderType = iota
	Market
)

func (o OrderType) String() string {
	switch o {
	case Limit:
		return "Limit"
	case Market:
		return "Market"
	default:
		return fmt.Sprintf("OrderType(%d)", uint8(o))
	}
}

func (o OrderType) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// OrderStatus is the lifecycle state of an order.
type OrderStatus uint8

const (
	ZeroFill OrderStatus = iota
	ParitialFill
	Filled
	ParitialFillAndCanceled
	Canceled
)

var orderStatusNames = [...]string{
	ZeroFill:                "ZeroFill",
	ParitialFill:            "ParitialFill",
	Filled:                  "Filled",
	ParitialFillAndCanceled: "ParitialFillAndCanceled",
	Canceled:                "Canceled",
}

func (s OrderStatus) String() string {
	if int(s) < len(orderStatusNames) {
		return orderStatusNames[s]
	}
	return fmt.Sprintf("OrderStatus(%d)", uint8(s))
}

func (s OrderStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Order is the stored state of one order.
type Order struct {
	PairIndex     uint32          `json:"pairIndex"`
	Index         uint64          `json:"index"`
	Class         OrderType       `json:"class"`
	Side          Side            `json:"side"`
	Submitter     types.AccountID `json:"submitter"`
	Amount        uint64          `json:"amount"`
	Price         uint64          `json:"price"`
	AlreadyFilled uint64          `json:"alreadyFilled"`
	Status        OrderStatus     `json:"status"`
	CreatedAt     uint64          `json:"createTime"`
	LastUpdateAt  uint64          `json:"lastUpdateTime"`
	FillIndexes   []uint64        `json:"fillIndex"`
}

// Unfilled returns the volume still resting on the book, clamped at zero.
func (o Order) Unfilled() uint64 {
	if o.AlreadyFilled >= o.Amount {
		return 0
	}
	return o.Amount - o.AlreadyFilled
}

func saturatingAdd(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

func saturatingMul(a, b uint64) uint64 {
	if a == 0 || b == 0 {
		return 0
	}
	if a > math.MaxUint64/b {
		return math.MaxUint64
	}
	return a * b
}

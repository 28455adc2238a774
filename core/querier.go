package core

import (
	"context"
	"errors"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"chainx/core/state"
	"chainx/native/fees"
	"chainx/native/spot"
	"chainx/observability"
)

// DefaultMaxPageSize bounds the page size of order history queries.
const DefaultMaxPageSize = 100

var errNoBlockIndex = errors.New("query: no block index configured")

// SnapshotSource resolves block references to state snapshots.
type SnapshotSource interface {
	At(ctx context.Context, ref *common.Hash) (state.Snapshot, error)
}

// Querier assembles read-only views of chain state. Every state view
// resolves one snapshot and reads nothing outside it.
type Querier struct {
	states      SnapshotSource
	blocks      BlockIndex
	maxPageSize uint32
	depthMode   spot.DepthMode
	maxLevels   uint64
	fees        FeeCalculator
	verifier    AddressVerifier
	logger      *slog.Logger
	tracer      trace.Tracer
	metrics     *observability.QueryMetrics
}

// Option customises a Querier.
type Option func(*Querier)

// WithMaxPageSize overrides the order history page size bound.
func WithMaxPageSize(n uint32) Option {
	return func(q *Querier) {
		if n > 0 {
			q.maxPageSize = n
		}
	}
}

// WithDepthMode selects how quotation ladders are bounded.
func WithDepthMode(mode spot.DepthMode) Option {
	return func(q *Querier) { q.depthMode = mode }
}

// WithMaxDepthLevels caps the price levels a quotation query visits per
// side. Zero leaves the walk bounded by the pair's fluctuation alone.
func WithMaxDepthLevels(n uint64) Option {
	return func(q *Querier) { q.maxLevels = n }
}

// WithBlockIndex sets the index used to look headers up by height.
func WithBlockIndex(idx BlockIndex) Option {
	return func(q *Querier) {
		if idx != nil {
			q.blocks = idx
		}
	}
}

// WithFeeCalculator replaces the storage backed fee calculator.
func WithFeeCalculator(calc FeeCalculator) Option {
	return func(q *Querier) {
		if calc != nil {
			q.fees = calc
		}
	}
}

// WithAddressVerifier replaces the chain based address verifier.
func WithAddressVerifier(v AddressVerifier) Option {
	return func(q *Querier) {
		if v != nil {
			q.verifier = v
		}
	}
}

// WithLogger sets the logger of the query layer. Entries a view skips and
// rejected addresses are reported through it at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(q *Querier) {
		if logger != nil {
			q.logger = logger
		}
	}
}

// NewQuerier builds a Querier over states. A *state.Provider also serves as
// the block index.
func NewQuerier(states SnapshotSource, opts ...Option) *Querier {
	q := &Querier{
		states:      states,
		maxPageSize: DefaultMaxPageSize,
		depthMode:   spot.DepthIndependent,
		fees:        fees.NewCalculator(),
		verifier:    ChainAddressVerifier{},
		logger:      slog.Default(),
		tracer:      otel.Tracer("chainx/core"),
		metrics:     observability.Query(),
	}
	if provider, ok := states.(*state.Provider); ok {
		q.blocks = provider.Chain()
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// MaxPageSize returns the order history page size bound.
func (q *Querier) MaxPageSize() uint32 {
	return q.maxPageSize
}

// begin opens the span of a view and resolves its snapshot. The returned
// finish function must be called with the view's final error.
func (q *Querier) begin(ctx context.Context, view string, at *common.Hash) (context.Context, state.Snapshot, func(error), error) {
	ctx, span, finish := q.startSpan(ctx, view)
	if at != nil {
		span.SetAttributes(attribute.String("chainx.block", at.Hex()))
	}
	snap, err := q.states.At(ctx, at)
	q.metrics.RecordSnapshot(at == nil, err)
	if err != nil {
		finish(err)
		return ctx, nil, nil, err
	}
	span.SetAttributes(attribute.Int64("chainx.height", int64(snap.Header().Height)))
	return ctx, snap, finish, nil
}

func (q *Querier) startSpan(ctx context.Context, view string) (context.Context, trace.Span, func(error)) {
	ctx, span := q.tracer.Start(ctx, "chainx."+view)
	return ctx, span, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

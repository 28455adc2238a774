package core

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.opentelemetry.io/otel/attribute"

	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/accounts"
	"chainx/native/bridge"
	"chainx/native/fees"
)

// ParticularAccounts names the chain's well known accounts.
type ParticularAccounts struct {
	TeamAccount     *types.AccountID                `json:"teamAccount"`
	CouncilAccount  *types.AccountID                `json:"councilAccount"`
	TrusteesAccount map[types.Chain]types.AccountID `json:"trusteesAccount"`
}

// HeaderView is a block header together with its hash.
type HeaderView struct {
	Hash common.Hash `json:"hash"`
	*types.BlockHeader
}

// Fee prices a 0x-prefixed hex encoded call in a transaction of txLength
// bytes. Unknown calls and fees that overflow surface as RuntimeError.
func (q *Querier) Fee(ctx context.Context, call string, txLength uint64, at *common.Hash) (_ uint64, err error) {
	if !strings.HasPrefix(call, "0x") {
		return 0, ErrHexPrefix
	}
	raw, err := hex.DecodeString(call[2:])
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrHexDecode, err)
	}
	ctx, snap, finish, err := q.begin(ctx, "fee", at)
	if err != nil {
		return 0, err
	}
	defer func() { finish(err) }()

	fee, err := q.fees.TransactionFee(ctx, snap, raw, txLength)
	if err != nil {
		if errors.Is(err, fees.ErrUnknownCall) || errors.Is(err, fees.ErrFeeOverflow) {
			return 0, &RuntimeError{Payload: []byte(err.Error())}
		}
		return 0, err
	}
	return fee, nil
}

// FeeWeightMap returns the fee weight of every chargeable call.
func (q *Querier) FeeWeightMap(ctx context.Context, at *common.Hash) (_ map[string]uint64, err error) {
	_, snap, finish, err := q.begin(ctx, "feeWeightMap", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	return fees.Weights(snap)
}

// ParticularAccounts returns the team, council and trustee multisig accounts.
func (q *Querier) ParticularAccounts(ctx context.Context, at *common.Hash) (_ *ParticularAccounts, err error) {
	_, snap, finish, err := q.begin(ctx, "particularAccounts", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	out := &ParticularAccounts{TrusteesAccount: make(map[types.Chain]types.AccountID)}
	if out.TeamAccount, err = accounts.Team(snap); err != nil {
		return nil, err
	}
	if out.CouncilAccount, err = accounts.Council(snap); err != nil {
		return nil, err
	}
	for _, chain := range types.Chains() {
		addr, err := bridge.MultiSigAccount(snap, chain)
		if err != nil {
			return nil, err
		}
		if addr != nil {
			out.TrusteesAccount[chain] = *addr
		}
	}
	return out, nil
}

// Header returns the header of the referenced block.
func (q *Querier) Header(ctx context.Context, at *common.Hash) (_ *HeaderView, err error) {
	_, snap, finish, err := q.begin(ctx, "header", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	header := snap.Header()
	return &HeaderView{Hash: header.Hash(), BlockHeader: header}, nil
}

// HeaderByNumber returns the canonical header at number; nil selects the
// head. A height nothing was committed at yields nil.
func (q *Querier) HeaderByNumber(ctx context.Context, number *uint64) (_ *HeaderView, err error) {
	if q.blocks == nil {
		return nil, errNoBlockIndex
	}
	_, span, finish := q.startSpan(ctx, "headerByNumber")
	defer func() { finish(err) }()

	var header *types.BlockHeader
	if number == nil {
		header, err = q.blocks.Head()
	} else {
		span.SetAttributes(attribute.Int64("chainx.height", int64(*number)))
		header, err = q.blocks.HeaderByHeight(*number)
		if errors.Is(err, state.ErrUnknownBlock) {
			return nil, nil
		}
	}
	if err != nil {
		return nil, err
	}
	return &HeaderView{Hash: header.Hash(), BlockHeader: header}, nil
}

package fees

import (
	"context"
	"fmt"
	"math/big"

	"chainx/core/state"
)

// Calculator prices calls from the fee schedule stored in state:
// baseFee * weight + byteFee * txLength.
type Calculator struct{}

// NewCalculator returns a storage backed fee calculator.
func NewCalculator() *Calculator {
	return &Calculator{}
}

// TransactionFee returns the fee of an encoded call submitted in a
// transaction of txLength bytes.
func (c *Calculator) TransactionFee(ctx context.Context, snap state.Snapshot, raw []byte, txLength uint64) (uint64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	call, err := DecodeCall(raw)
	if err != nil {
		return 0, err
	}
	weights, err := Weights(snap)
	if err != nil {
		return 0, err
	}
	weight, ok := weights[call.Name()]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownCall, call.Name())
	}
	baseFee, err := state.ReadOr(snap, TransactionBaseFee.Key(), uint64(0))
	if err != nil {
		return 0, err
	}
	byteFee, err := state.ReadOr(snap, TransactionByteFee.Key(), uint64(0))
	if err != nil {
		return 0, err
	}
	return Compute(baseFee, byteFee, weight, txLength)
}

// Compute evaluates baseFee * weight + byteFee * txLength, rejecting results
// that do not fit in a uint64.
func Compute(baseFee, byteFee, weight, txLength uint64) (uint64, error) {
	total := new(big.Int).Mul(new(big.Int).SetUint64(baseFee), new(big.Int).SetUint64(weight))
	total.Add(total, new(big.Int).Mul(new(big.Int).SetUint64(byteFee), new(big.Int).SetUint64(txLength)))
	if !total.IsUint64() {
		return 0, fmt.Errorf("%w: %s", ErrFeeOverflow, total.String())
	}
	return total.Uint64(), nil
}

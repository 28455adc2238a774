// Package fees reads the fee schedule and prices calls against it.
package fees

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"chainx/core/state"
)

var (
	// ErrUnknownCall is returned when a call has no entry in the weight map.
	ErrUnknownCall = errors.New("fees: call has no fee weight")
	// ErrFeeOverflow is returned when a fee does not fit in a uint64.
	ErrFeeOverflow = errors.New("fees: fee overflows")
)

var (
	TransactionBaseFee = state.NewValue("XFeeManager", "TransactionBaseFee")
	TransactionByteFee = state.NewValue("XFeeManager", "TransactionByteFee")
	// FeeWeightMap holds the weight of every chargeable call.
	FeeWeightMap = state.NewValue("XFeeManager", "FeeWeightMap")
)

// CallWeight is one entry of the stored weight map.
type CallWeight struct {
	Call   string
	Weight uint64
}

// Call is an encoded extrinsic call: the dispatching module, the method and
// its encoded arguments.
type Call struct {
	Module string
	Method string
	Args   []byte
}

// Name returns the weight map key of the call, "<module>|<method>".
func (c Call) Name() string {
	return c.Module + "|" + c.Method
}

// DecodeCall decodes raw call bytes. Failures wrap state.ErrDecode.
func DecodeCall(raw []byte) (Call, error) {
	var call Call
	if err := rlp.DecodeBytes(raw, &call); err != nil {
		return Call{}, fmt.Errorf("%w: call: %v", state.ErrDecode, err)
	}
	return call, nil
}

// Weights reads the weight map as call name to weight.
func Weights(snap state.Snapshot) (map[string]uint64, error) {
	entries, err := state.ReadOr(snap, FeeWeightMap.Key(), []CallWeight(nil))
	if err != nil {
		return nil, err
	}
	out := make(map[string]uint64, len(entries))
	for _, e := range entries {
		out[e.Call] = e.Weight
	}
	return out, nil
}

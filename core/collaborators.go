package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"chainx/core/chain"
	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/bridge"
	"chainx/native/fees"
)

// FeeCalculator prices an encoded call submitted in a transaction of
// txLength bytes.
type FeeCalculator interface {
	TransactionFee(ctx context.Context, snap state.Snapshot, call []byte, txLength uint64) (uint64, error)
}

// BlockIndex looks committed headers up by height.
type BlockIndex interface {
	Head() (*types.BlockHeader, error)
	HeaderByHeight(height uint64) (*types.BlockHeader, error)
}

// AddressVerifier checks a withdrawal address for token. A nil error means
// the address is acceptable.
type AddressVerifier interface {
	VerifyAddress(ctx context.Context, snap state.Snapshot, token string, addr, memo []byte) error
}

var (
	errUnknownToken     = errors.New("verify: token not registered")
	errNativeWithdrawal = errors.New("verify: native token can not be withdrawn")
	errEthereumAddress  = errors.New("verify: invalid ethereum address")
)

// ChainAddressVerifier validates addresses by the chain the token is issued
// on: base58check for Bitcoin and 20-byte hex for Ethereum.
type ChainAddressVerifier struct{}

func (ChainAddressVerifier) VerifyAddress(ctx context.Context, snap state.Snapshot, token string, addr, memo []byte) error {
	record, err := assets.Record(snap, token)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("%w: %s", errUnknownToken, token)
	}
	switch record.Asset.Chain {
	case types.ChainBitcoin:
		_, err := bridge.ParseBitcoinAddress(string(addr))
		return err
	case types.ChainEthereum:
		if !common.IsHexAddress(string(addr)) {
			return errEthereumAddress
		}
		return nil
	case types.ChainChainX:
		return errNativeWithdrawal
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedChain, record.Asset.Chain)
	}
}

var (
	_ FeeCalculator   = (*fees.Calculator)(nil)
	_ BlockIndex      = (*chain.Store)(nil)
	_ AddressVerifier = ChainAddressVerifier{}
)

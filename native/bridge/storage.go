package bridge

import (
	"github.com/ethereum/go-ethereum/common"

	"chainx/core/state"
	"chainx/core/types"
)

// DefaultBtcMinDeposit is the minimal deposit in satoshi when none is stored.
const DefaultBtcMinDeposit = 100000

var (
	DepositRecordsOf    = state.NewMap("XAssetsRecords", "DepositRecordsOf")
	WithdrawalRecordsOf = state.NewMap("XAssetsRecords", "WithdrawalRecordsOf")

	BtcMinDeposit             = state.NewValue("XBridgeOfBTC", "BtcMinDeposit")
	BtcWithdrawalFee          = state.NewValue("XBridgeOfBTC", "BtcWithdrawalFee")
	CurrentWithdrawalProposal = state.NewValue("XBridgeOfBTC", "CurrentWithdrawalProposal")

	BitcoinCrossChainBinding     = state.NewMap("XBridgeFeatures", "BitcoinCrossChainBinding")
	EthereumCrossChainBinding    = state.NewMap("XBridgeFeatures", "EthereumCrossChainBinding")
	TrusteeMultiSigAddr          = state.NewMap("XBridgeFeatures", "TrusteeMultiSigAddr")
	TrusteeIntentionPropertiesOf = state.NewMap("XBridgeFeatures", "TrusteeIntentionPropertiesOf")
	TrusteeSessionInfoLen        = state.NewMap("XBridgeFeatures", "TrusteeSessionInfoLen")
	TrusteeSessionInfoOf         = state.NewMap("XBridgeFeatures", "TrusteeSessionInfoOf")
)

// AccountChain is the parameter of per-account per-chain cells.
type AccountChain struct {
	Account types.AccountID
	Chain   types.Chain
}

// SessionRef is the parameter of TrusteeSessionInfoOf.
type SessionRef struct {
	Chain  types.Chain
	Number uint32
}

func Deposits(snap state.Snapshot, chain types.Chain) ([]DepositRecord, error) {
	return state.ReadOr(snap, DepositRecordsOf.At(chain), []DepositRecord(nil))
}

func Withdrawals(snap state.Snapshot, chain types.Chain) ([]WithdrawalRecord, error) {
	return state.ReadOr(snap, WithdrawalRecordsOf.At(chain), []WithdrawalRecord(nil))
}

// MinDeposit reads the Bitcoin deposit dust limit.
func MinDeposit(snap state.Snapshot) (uint64, error) {
	return state.ReadOr(snap, BtcMinDeposit.Key(), uint64(DefaultBtcMinDeposit))
}

// WithdrawalFee reads the Bitcoin withdrawal fee, zero when unset.
func WithdrawalFee(snap state.Snapshot) (uint64, error) {
	return state.ReadOr(snap, BtcWithdrawalFee.Key(), uint64(0))
}

func Proposal(snap state.Snapshot) (*WithdrawalProposal, error) {
	return state.Read[WithdrawalProposal](snap, CurrentWithdrawalProposal.Key())
}

func BitcoinAddresses(snap state.Snapshot, who types.AccountID) ([]BitcoinAddress, error) {
	return state.ReadOr(snap, BitcoinCrossChainBinding.At(who), []BitcoinAddress(nil))
}

func EthereumAddresses(snap state.Snapshot, who types.AccountID) ([]common.Address, error) {
	return state.ReadOr(snap, EthereumCrossChainBinding.At(who), []common.Address(nil))
}

// MultiSigAccount reads the trustee multisig account of chain.
func MultiSigAccount(snap state.Snapshot, chain types.Chain) (*types.AccountID, error) {
	return state.Read[types.AccountID](snap, TrusteeMultiSigAddr.At(chain))
}

func TrusteePropsOf(snap state.Snapshot, who types.AccountID, chain types.Chain) (*TrusteeProps, error) {
	return state.Read[TrusteeProps](snap, TrusteeIntentionPropertiesOf.At(AccountChain{Account: who, Chain: chain}))
}

// Session reads trustee session number of chain. A nil number selects the
// latest session. The returned number is the one actually read.
func Session(snap state.Snapshot, chain types.Chain, number *uint32) (uint32, *TrusteeSessionInfo, error) {
	var n uint32
	if number != nil {
		n = *number
	} else {
		count, err := state.ReadOr(snap, TrusteeSessionInfoLen.At(chain), uint32(0))
		if err != nil {
			return 0, nil, err
		}
		if count == 0 {
			return 0, nil, nil
		}
		n = count - 1
	}
	info, err := state.Read[TrusteeSessionInfo](snap, TrusteeSessionInfoOf.At(SessionRef{Chain: chain, Number: n}))
	return n, info, err
}

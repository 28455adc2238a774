package bridge

import (
	"fmt"

	"chainx/core/types"
)

// TxState is the confirmation state of a deposit.
type TxState uint8

const (
	NotApplying TxState = iota
	Applying
	Signing
	Broadcasting
	Processing
	Confirming
	Confirmed
	Unknown
)

var txStateNames = [...]string{
	NotApplying:  "NotApplying",
	Applying:     "Applying",
	Signing:      "Signing",
	Broadcasting: "Broadcasting",
	Processing:   "Processing",
	Confirming:   "Confirming",
	Confirmed:    "Confirmed",
	Unknown:      "Unknown",
}

func (s TxState) String() string {
	if int(s) < len(txStateNames) {
		return txStateNames[s]
	}
	return fmt.Sprintf("TxState(%d)", uint8(s))
}

func (s TxState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *TxState) UnmarshalText(text []byte) error {
	for i, name := range txStateNames {
		if name == string(text) {
			*s = TxState(i)
			return nil
		}
	}
	return fmt.Errorf("bridge: unknown tx state %q", text)
}

// DepositRecord is an observed deposit on an external chain.
type DepositRecord struct {
	TxHash       []byte
	Account      types.AccountID
	Token        string
	Address      string
	Balance      uint64
	Memo         string
	Confirm      uint32
	TotalConfirm uint32
	Time         uint64
	State        TxState
}

// WithdrawalRecord is a pending or processed withdrawal.
type WithdrawalRecord struct {
	ID           uint32
	Account      types.AccountID
	Token        string
	Balance      uint64
	Address      string
	Memo         string
	Height       uint64
	State        TxState
	TxHash       []byte
	Confirm      uint32
	TotalConfirm uint32
}

// SigState is the signing progress of a withdrawal proposal.
type SigState uint8

const (
	SigStateSigning SigState = iota
	SigStateFinish
)

func (s SigState) String() string {
	switch s {
	case SigStateSigning:
		return "Signing"
	case SigStateFinish:
		return "Finish"
	default:
		return fmt.Sprintf("SigState(%d)", uint8(s))
	}
}

func (s SigState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// TrusteeVote records whether a trustee has signed a proposal.
type TrusteeVote struct {
	Account types.AccountID `json:"accountId"`
	Signed  bool            `json:"signed"`
}

// WithdrawalProposal is the Bitcoin transaction the trustees are signing.
type WithdrawalProposal struct {
	SigState      SigState
	WithdrawalIDs []uint32
	Tx            []byte
	TrusteeList   []TrusteeVote
}

// TrusteeProps are the keys a trustee registered for one chain.
type TrusteeProps struct {
	About      string
	HotEntity  []byte
	ColdEntity []byte
}

// TrusteeSessionInfo describes one trustee session of a chain.
type TrusteeSessionInfo struct {
	TrusteeList      []types.AccountID
	Required         uint32
	HotAddress       BitcoinAddress
	HotRedeemScript  []byte
	ColdAddress      BitcoinAddress
	ColdRedeemScript []byte
}

// Package tokens reads the deposit mining state of cross-chain tokens.
package tokens

import (
	"github.com/holiman/uint256"

	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/assets"
)

var (
	// PseduIntentions lists the tokens that take part in deposit mining.
	PseduIntentions          = state.NewValue("XTokens", "PseduIntentions")
	PseduIntentionProfiles   = state.NewMap("XTokens", "PseduIntentionProfiles")
	PseduIntentionProfilesV1 = state.NewMap("XTokens", "PseduIntentionProfilesV1")
	DepositRecords           = state.NewMap("XTokens", "DepositRecords")
	DepositRecordsV1         = state.NewMap("XTokens", "DepositRecordsV1")
	JackpotAccountOf         = state.NewMap("XTokens", "JackpotAccountOf")
)

// PseduIntentionProfs is the legacy deposit weight record of a token.
type PseduIntentionProfs struct {
	LastTotalDepositWeight       uint64
	LastTotalDepositWeightUpdate uint64
}

// PseduIntentionProfsV1 widens the deposit weight.
type PseduIntentionProfsV1 struct {
	LastTotalDepositWeight       *uint256.Int
	LastTotalDepositWeightUpdate uint64
}

func (p PseduIntentionProfs) Upgrade() PseduIntentionProfsV1 {
	return PseduIntentionProfsV1{
		LastTotalDepositWeight:       uint256.NewInt(p.LastTotalDepositWeight),
		LastTotalDepositWeightUpdate: p.LastTotalDepositWeightUpdate,
	}
}

// DepositVoteWeight is the legacy deposit weight of an (account, token) pair.
type DepositVoteWeight struct {
	LastDepositWeight       uint64
	LastDepositWeightUpdate uint64
}

// DepositVoteWeightV1 widens the deposit weight.
type DepositVoteWeightV1 struct {
	LastDepositWeight       *uint256.Int
	LastDepositWeightUpdate uint64
}

func (w DepositVoteWeight) Upgrade() DepositVoteWeightV1 {
	return DepositVoteWeightV1{
		LastDepositWeight:       uint256.NewInt(w.LastDepositWeight),
		LastDepositWeightUpdate: w.LastDepositWeightUpdate,
	}
}

// Tokens reads the deposit mining tokens.
func Tokens(snap state.Snapshot) ([]string, error) {
	return state.ReadOr(snap, PseduIntentions.Key(), []string(nil))
}

func ProfsOf(snap state.Snapshot, token string) (*PseduIntentionProfs, error) {
	return state.Read[PseduIntentionProfs](snap, PseduIntentionProfiles.At(token))
}

// ProfsV1Of reads the current profile of token, upgrading a legacy one when
// no current record exists.
func ProfsV1Of(snap state.Snapshot, token string) (*PseduIntentionProfsV1, error) {
	profs, err := state.Read[PseduIntentionProfsV1](snap, PseduIntentionProfilesV1.At(token))
	if err != nil || profs != nil {
		return profs, err
	}
	legacy, err := ProfsOf(snap, token)
	if err != nil || legacy == nil {
		return nil, err
	}
	upgraded := legacy.Upgrade()
	return &upgraded, nil
}

func HasProfsV1(snap state.Snapshot, token string) (bool, error) {
	return state.Has(snap, PseduIntentionProfilesV1.At(token))
}

func key(account types.AccountID, token string) assets.AccountToken {
	return assets.AccountToken{Account: account, Token: token}
}

func WeightOf(snap state.Snapshot, account types.AccountID, token string) (*DepositVoteWeight, error) {
	return state.Read[DepositVoteWeight](snap, DepositRecords.At(key(account, token)))
}

// WeightV1Of reads the current deposit weight, upgrading a legacy one when
// no current record exists.
func WeightV1Of(snap state.Snapshot, account types.AccountID, token string) (*DepositVoteWeightV1, error) {
	weight, err := state.Read[DepositVoteWeightV1](snap, DepositRecordsV1.At(key(account, token)))
	if err != nil || weight != nil {
		return weight, err
	}
	legacy, err := WeightOf(snap, account, token)
	if err != nil || legacy == nil {
		return nil, err
	}
	upgraded := legacy.Upgrade()
	return &upgraded, nil
}

func HasWeightV1(snap state.Snapshot, account types.AccountID, token string) (bool, error) {
	return state.Has(snap, DepositRecordsV1.At(key(account, token)))
}

// JackpotAccount reads the account that collects a token's mining rewards.
func JackpotAccount(snap state.Snapshot, token string) (*types.AccountID, error) {
	return state.Read[types.AccountID](snap, JackpotAccountOf.At(token))
}

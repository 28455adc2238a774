package staking

import (
	"github.com/holiman/uint256"

	"chainx/core/types"
)

// IntentionProps is the public registration of a validator candidate.
// A zero SessionKey means the intention signs with its own account.
type IntentionProps struct {
	Name       string
	URL        string
	IsActive   bool
	About      string
	SessionKey types.AccountID
}

// IntentionProfs is the legacy vote weight record of an intention.
type IntentionProfs struct {
	TotalNomination           uint64
	LastTotalVoteWeight       uint64
	LastTotalVoteWeightUpdate uint64
}

// IntentionProfsV1 widens the vote weight so it cannot overflow.
type IntentionProfsV1 struct {
	TotalNomination           uint64
	LastTotalVoteWeight       *uint256.Int
	LastTotalVoteWeightUpdate uint64
}

// Upgrade converts a legacy record into the current shape.
func (p IntentionProfs) Upgrade() IntentionProfsV1 {
	return IntentionProfsV1{
		TotalNomination:           p.TotalNomination,
		LastTotalVoteWeight:       uint256.NewInt(p.LastTotalVoteWeight),
		LastTotalVoteWeightUpdate: p.LastTotalVoteWeightUpdate,
	}
}

// Revocation is a pending unbond that matures at BlockNumber.
type Revocation struct {
	BlockNumber uint64 `json:"blockNumber"`
	Value       uint64 `json:"value"`
}

// NominationRecord is the legacy (nominator, nominee) vote record.
type NominationRecord struct {
	Nomination           uint64
	LastVoteWeight       uint64
	LastVoteWeightUpdate uint64
	RevocationsList      []Revocation
}

// NominationRecordV1 widens the vote weight so it cannot overflow.
type NominationRecordV1 struct {
	Nomination           uint64
	LastVoteWeight       *uint256.Int
	LastVoteWeightUpdate uint64
	RevocationsList      []Revocation
}

// Upgrade converts a legacy record into the current shape.
func (r NominationRecord) Upgrade() NominationRecordV1 {
	return NominationRecordV1{
		Nomination:           r.Nomination,
		LastVoteWeight:       uint256.NewInt(r.LastVoteWeight),
		LastVoteWeightUpdate: r.LastVoteWeightUpdate,
		RevocationsList:      r.RevocationsList,
	}
}

// Pair is the (nominator, nominee) parameter of nomination cells.
type Pair struct {
	Nominator types.AccountID
	Nominee   types.AccountID
}

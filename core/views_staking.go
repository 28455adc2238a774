package core

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/bridge"
	"chainx/native/staking"
)

// NominationRecord is the legacy view of a vote for one intention.
type NominationRecord struct {
	Intention            types.AccountID      `json:"intention"`
	Nomination           uint64               `json:"nomination"`
	LastVoteWeight       uint64               `json:"lastVoteWeight"`
	LastVoteWeightUpdate uint64               `json:"lastVoteWeightUpdate"`
	Revocations          []staking.Revocation `json:"revocations"`
}

// NominationRecordV1 is the current view of a vote for one intention.
type NominationRecordV1 struct {
	Intention            types.AccountID      `json:"intention"`
	Nomination           uint64               `json:"nomination"`
	LastVoteWeight       *uint256.Int         `json:"lastVoteWeight"`
	LastVoteWeightUpdate uint64               `json:"lastVoteWeightUpdate"`
	Revocations          []staking.Revocation `json:"revocations"`
}

// IntentionCommon holds the fields shared by both intention views.
type IntentionCommon struct {
	Account        types.AccountID  `json:"account"`
	Name           string           `json:"name"`
	URL            string           `json:"url"`
	IsActive       bool             `json:"isActive"`
	About          string           `json:"about"`
	SessionKey     types.AccountID  `json:"sessionKey"`
	IsValidator    bool             `json:"isValidator"`
	IsTrustee      []types.Chain    `json:"isTrustee"`
	Jackpot        uint64           `json:"jackpot"`
	JackpotAccount *types.AccountID `json:"jackpotAccount"`
	SelfVote       uint64           `json:"selfVote"`
}

// IntentionInfo is the legacy view of an intention.
type IntentionInfo struct {
	IntentionCommon
	TotalNomination           uint64 `json:"totalNomination"`
	LastTotalVoteWeight       uint64 `json:"lastTotalVoteWeight"`
	LastTotalVoteWeightUpdate uint64 `json:"lastTotalVoteWeightUpdate"`
}

// IntentionInfoV1 is the current view of an intention.
type IntentionInfoV1 struct {
	IntentionCommon
	TotalNomination           uint64       `json:"totalNomination"`
	LastTotalVoteWeight       *uint256.Int `json:"lastTotalVoteWeight"`
	LastTotalVoteWeightUpdate uint64       `json:"lastTotalVoteWeightUpdate"`
}

// IntentionKeys are the signing and reward accounts of an intention.
type IntentionKeys struct {
	SessionKey     types.AccountID  `json:"sessionKey"`
	JackpotAccount *types.AccountID `json:"jackpotAccount"`
}

// NominationRecords lists the legacy vote records of who. It fails with a
// DeprecatedError once any of them has been migrated.
func (q *Querier) NominationRecords(ctx context.Context, who types.AccountID, at *common.Hash) (_ []NominationRecord, err error) {
	_, snap, finish, err := q.begin(ctx, "nominationRecords", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	intentions, err := staking.IntentionSet(snap)
	if err != nil {
		return nil, err
	}
	out := make([]NominationRecord, 0)
	for _, intention := range intentions {
		pair := staking.Pair{Nominator: who, Nominee: intention}
		migrated, err := staking.HasRecordV1(snap, pair)
		if err != nil {
			return nil, err
		}
		if migrated {
			return nil, &DeprecatedError{Method: "chainx_getNominationRecords"}
		}
		record, err := staking.RecordOf(snap, pair)
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		out = append(out, NominationRecord{
			Intention:            intention,
			Nomination:           record.Nomination,
			LastVoteWeight:       record.LastVoteWeight,
			LastVoteWeightUpdate: record.LastVoteWeightUpdate,
			Revocations:          nonNil(record.RevocationsList),
		})
	}
	return out, nil
}

// NominationRecordsV1 lists the vote records of who, upgrading legacy ones.
func (q *Querier) NominationRecordsV1(ctx context.Context, who types.AccountID, at *common.Hash) (_ []NominationRecordV1, err error) {
	_, snap, finish, err := q.begin(ctx, "nominationRecordsV1", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	intentions, err := staking.IntentionSet(snap)
	if err != nil {
		return nil, err
	}
	out := make([]NominationRecordV1, 0)
	for _, intention := range intentions {
		record, err := staking.RecordV1Of(snap, staking.Pair{Nominator: who, Nominee: intention})
		if err != nil {
			return nil, err
		}
		if record == nil {
			continue
		}
		out = append(out, NominationRecordV1{
			Intention:            intention,
			Nomination:           record.Nomination,
			LastVoteWeight:       orZero(record.LastVoteWeight),
			LastVoteWeightUpdate: record.LastVoteWeightUpdate,
			Revocations:          nonNil(record.RevocationsList),
		})
	}
	return out, nil
}

// NextRenominate returns the first height at which who may renominate.
func (q *Querier) NextRenominate(ctx context.Context, who types.AccountID, at *common.Hash) (_ *uint64, err error) {
	_, snap, finish, err := q.begin(ctx, "nextRenominate", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	return staking.NextRenominate(snap, who)
}

// Intention returns the session key and jackpot account of who. An account
// without a registered session key signs with itself.
func (q *Querier) Intention(ctx context.Context, who types.AccountID, at *common.Hash) (_ *IntentionKeys, err error) {
	_, snap, finish, err := q.begin(ctx, "intention", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	props, err := staking.PropsOf(snap, who)
	if err != nil {
		return nil, err
	}
	keys := &IntentionKeys{SessionKey: who}
	if props != nil && !props.SessionKey.IsZero() {
		keys.SessionKey = props.SessionKey
	}
	if keys.JackpotAccount, err = staking.JackpotAccount(snap, who); err != nil {
		return nil, err
	}
	return keys, nil
}

// Intentions lists every intention with its legacy vote weight. It fails
// with a DeprecatedError once any profile has been migrated.
func (q *Querier) Intentions(ctx context.Context, at *common.Hash) (_ []IntentionInfo, err error) {
	_, snap, finish, err := q.begin(ctx, "intentions", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	intentions, err := staking.IntentionSet(snap)
	if err != nil {
		return nil, err
	}
	env, err := loadIntentionEnv(snap)
	if err != nil {
		return nil, err
	}
	out := make([]IntentionInfo, 0, len(intentions))
	for _, intention := range intentions {
		migrated, err := staking.HasProfsV1(snap, intention)
		if err != nil {
			return nil, err
		}
		if migrated {
			return nil, &DeprecatedError{Method: "chainx_getIntentions"}
		}
		base, err := env.common(snap, intention, false)
		if err != nil {
			return nil, err
		}
		profs, err := staking.ProfsOf(snap, intention)
		if err != nil {
			return nil, err
		}
		info := IntentionInfo{IntentionCommon: *base}
		if profs != nil {
			info.TotalNomination = profs.TotalNomination
			info.LastTotalVoteWeight = profs.LastTotalVoteWeight
			info.LastTotalVoteWeightUpdate = profs.LastTotalVoteWeightUpdate
		}
		out = append(out, info)
	}
	return out, nil
}

// IntentionsV1 lists every intention with its current vote weight.
func (q *Querier) IntentionsV1(ctx context.Context, at *common.Hash) (_ []IntentionInfoV1, err error) {
	_, snap, finish, err := q.begin(ctx, "intentionsV1", at)
	if err != nil {
		return nil, err
	}
	defer func() { finish(err) }()

	intentions, err := staking.IntentionSet(snap)
	if err != nil {
		return nil, err
	}
	env, err := loadIntentionEnv(snap)
	if err != nil {
		return nil, err
	}
	out := make([]IntentionInfoV1, 0, len(intentions))
	for _, intention := range intentions {
		base, err := env.common(snap, intention, true)
		if err != nil {
			return nil, err
		}
		profs, err := staking.ProfsV1Of(snap, intention)
		if err != nil {
			return nil, err
		}
		info := IntentionInfoV1{IntentionCommon: *base, LastTotalVoteWeight: new(uint256.Int)}
		if profs != nil {
			info.TotalNomination = profs.TotalNomination
			info.LastTotalVoteWeight = orZero(profs.LastTotalVoteWeight)
			info.LastTotalVoteWeightUpdate = profs.LastTotalVoteWeightUpdate
		}
		out = append(out, info)
	}
	return out, nil
}

// intentionEnv caches the per-snapshot sets every intention is checked
// against.
type intentionEnv struct {
	validators map[types.AccountID]struct{}
	trustees   map[types.AccountID][]types.Chain
}

func loadIntentionEnv(snap state.Snapshot) (*intentionEnv, error) {
	env := &intentionEnv{
		validators: make(map[types.AccountID]struct{}),
		trustees:   make(map[types.AccountID][]types.Chain),
	}
	validators, err := staking.ValidatorSet(snap)
	if err != nil {
		return nil, err
	}
	for _, v := range validators {
		env.validators[v] = struct{}{}
	}
	for _, chain := range types.Chains() {
		_, session, err := bridge.Session(snap, chain, nil)
		if err != nil {
			return nil, err
		}
		if session == nil {
			continue
		}
		for _, trustee := range session.TrusteeList {
			env.trustees[trustee] = append(env.trustees[trustee], chain)
		}
	}
	return env, nil
}

func (e *intentionEnv) common(snap state.Snapshot, intention types.AccountID, v1 bool) (*IntentionCommon, error) {
	props, err := staking.PropsOf(snap, intention)
	if err != nil {
		return nil, err
	}
	out := &IntentionCommon{
		Account:    intention,
		SessionKey: intention,
		IsTrustee:  nonNil(e.trustees[intention]),
	}
	if props != nil {
		out.Name = props.Name
		out.URL = props.URL
		out.IsActive = props.IsActive
		out.About = props.About
		if !props.SessionKey.IsZero() {
			out.SessionKey = props.SessionKey
		}
	}
	_, out.IsValidator = e.validators[intention]

	if out.JackpotAccount, err = staking.JackpotAccount(snap, intention); err != nil {
		return nil, err
	}
	if out.JackpotAccount != nil {
		if out.Jackpot, err = freeBalance(snap, *out.JackpotAccount, assets.PCX); err != nil {
			return nil, err
		}
	}

	self := staking.Pair{Nominator: intention, Nominee: intention}
	if v1 {
		record, err := staking.RecordV1Of(snap, self)
		if err != nil {
			return nil, err
		}
		if record != nil {
			out.SelfVote = record.Nomination
		}
	} else {
		record, err := staking.RecordOf(snap, self)
		if err != nil {
			return nil, err
		}
		if record != nil {
			out.SelfVote = record.Nomination
		}
	}
	return out, nil
}

func freeBalance(snap state.Snapshot, who types.AccountID, token string) (uint64, error) {
	balances, ok, err := assets.BalanceOf(snap, who, token)
	if err != nil || !ok {
		return 0, err
	}
	return balances[assets.Free], nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func orZero(v *uint256.Int) *uint256.Int {
	if v == nil {
		return new(uint256.Int)
	}
	return v
}

package staking

import (
	"chainx/core/state"
	"chainx/core/types"
)

var (
	// Intentions lists every registered intention.
	Intentions          = state.NewValue("XStaking", "Intentions")
	IntentionProfiles   = state.NewMap("XStaking", "IntentionProfiles")
	IntentionProfilesV1 = state.NewMap("XStaking", "IntentionProfilesV1")
	NominationRecords   = state.NewMap("XStaking", "NominationRecords")
	NominationRecordsV1 = state.NewMap("XStaking", "NominationRecordsV1")
	LastRenominationOf  = state.NewMap("XStaking", "LastRenominationOf")
	BondingDuration     = state.NewValue("XStaking", "BondingDuration")
	JackpotAccountOf    = state.NewMap("XStaking", "JackpotAccountOf")

	IntentionPropsOf = state.NewMap("XAccounts", "IntentionPropsOf")
	// Validators holds the current session's validator set.
	Validators = state.NewValue("Session", "Validators")
)

// IntentionSet reads the registered intentions.
func IntentionSet(snap state.Snapshot) ([]types.AccountID, error) {
	return state.ReadOr(snap, Intentions.Key(), []types.AccountID(nil))
}

// PropsOf reads the registration of an intention.
func PropsOf(snap state.Snapshot, intention types.AccountID) (*IntentionProps, error) {
	return state.Read[IntentionProps](snap, IntentionPropsOf.At(intention))
}

// ProfsOf reads the legacy profile of an intention.
func ProfsOf(snap state.Snapshot, intention types.AccountID) (*IntentionProfs, error) {
	return state.Read[IntentionProfs](snap, IntentionProfiles.At(intention))
}

// ProfsV1Of reads the current profile of an intention, upgrading a legacy
// record when no current one exists.
func ProfsV1Of(snap state.Snapshot, intention types.AccountID) (*IntentionProfsV1, error) {
	profs, err := state.Read[IntentionProfsV1](snap, IntentionProfilesV1.At(intention))
	if err != nil || profs != nil {
		return profs, err
	}
	legacy, err := ProfsOf(snap, intention)
	if err != nil || legacy == nil {
		return nil, err
	}
	upgraded := legacy.Upgrade()
	return &upgraded, nil
}

// HasProfsV1 reports whether the intention has been migrated.
func HasProfsV1(snap state.Snapshot, intention types.AccountID) (bool, error) {
	return state.Has(snap, IntentionProfilesV1.At(intention))
}

// RecordOf reads the legacy nomination record of a pair.
func RecordOf(snap state.Snapshot, pair Pair) (*NominationRecord, error) {
	return state.Read[NominationRecord](snap, NominationRecords.At(pair))
}

// RecordV1Of reads the current nomination record of a pair, upgrading a
// legacy record when no current one exists.
func RecordV1Of(snap state.Snapshot, pair Pair) (*NominationRecordV1, error) {
	record, err := state.Read[NominationRecordV1](snap, NominationRecordsV1.At(pair))
	if err != nil || record != nil {
		return record, err
	}
	legacy, err := RecordOf(snap, pair)
	if err != nil || legacy == nil {
		return nil, err
	}
	upgraded := legacy.Upgrade()
	return &upgraded, nil
}

// HasRecordV1 reports whether the pair's record has been migrated.
func HasRecordV1(snap state.Snapshot, pair Pair) (bool, error) {
	return state.Has(snap, NominationRecordsV1.At(pair))
}

// NextRenominate returns the first height at which who may renominate again,
// or nil when either the last renomination or the bonding duration is unknown.
func NextRenominate(snap state.Snapshot, who types.AccountID) (*uint64, error) {
	last, err := state.Read[uint64](snap, LastRenominationOf.At(who))
	if err != nil || last == nil {
		return nil, err
	}
	duration, err := state.Read[uint64](snap, BondingDuration.Key())
	if err != nil || duration == nil {
		return nil, err
	}
	next := *last + *duration
	return &next, nil
}

// JackpotAccount reads the account that collects an intention's rewards.
func JackpotAccount(snap state.Snapshot, intention types.AccountID) (*types.AccountID, error) {
	return state.Read[types.AccountID](snap, JackpotAccountOf.At(intention))
}

// ValidatorSet reads the current validators.
func ValidatorSet(snap state.Snapshot) ([]types.AccountID, error) {
	return state.ReadOr(snap, Validators.Key(), []types.AccountID(nil))
}

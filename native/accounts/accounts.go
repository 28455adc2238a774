// Package accounts reads the chain's well known accounts.
package accounts

import (
	"chainx/core/state"
	"chainx/core/types"
)

var (
	TeamAccount    = state.NewValue("XAccounts", "TeamAccount")
	CouncilAccount = state.NewValue("XAccounts", "CouncilAccount")
)

// Team reads the team account, nil when unset.
func Team(snap state.Snapshot) (*types.AccountID, error) {
	return state.Read[types.AccountID](snap, TeamAccount.Key())
}

// Council reads the council account, nil when unset.
func Council(snap state.Snapshot) (*types.AccountID, error) {
	return state.Read[types.AccountID](snap, CouncilAccount.Key())
}

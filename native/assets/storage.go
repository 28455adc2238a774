package assets

import (
	"chainx/core/state"
	"chainx/core/types"
)

const module = "XAssets"

// Native token symbols known to the query layer.
const (
	PCX  = "PCX"
	BTC  = "BTC"
	SDOT = "SDOT"
)

var (
	// AssetList holds the registered tokens of each chain.
	AssetList = state.NewMap(module, "AssetList")
	// AssetInfo holds the AssetRecord of a token.
	AssetInfo = state.NewMap(module, "AssetInfo")
	// AssetBalance holds the balance entries of an (account, token) pair.
	AssetBalance = state.NewMap(module, "AssetBalance")
	// TotalAssetBalance holds the issued totals of a token.
	TotalAssetBalance = state.NewMap(module, "TotalAssetBalance")
	// AssetLimitProps holds the limit overrides of a token.
	AssetLimitProps = state.NewMap(module, "AssetLimitProps")
)

// AccountToken is the parameter of per-account token cells.
type AccountToken struct {
	Account types.AccountID
	Token   string
}

// Registered returns every asset record in chain order, then registration
// order within a chain. Tokens listed without a record are skipped.
func Registered(snap state.Snapshot) ([]AssetRecord, error) {
	var out []AssetRecord
	for _, chain := range types.Chains() {
		tokens, err := state.Read[[]string](snap, AssetList.At(chain))
		if err != nil {
			return nil, err
		}
		if tokens == nil {
			continue
		}
		for _, token := range *tokens {
			record, err := Record(snap, token)
			if err != nil {
				return nil, err
			}
			if record != nil {
				out = append(out, *record)
			}
		}
	}
	return out, nil
}

// Record reads the registration of token.
func Record(snap state.Snapshot, token string) (*AssetRecord, error) {
	return state.Read[AssetRecord](snap, AssetInfo.At(token))
}

// BalanceOf reads the balances account holds in token. The boolean reports
// whether a balance record exists at all.
func BalanceOf(snap state.Snapshot, account types.AccountID, token string) (Balances, bool, error) {
	entries, err := state.Read[[]BalanceEntry](snap, AssetBalance.At(AccountToken{Account: account, Token: token}))
	if err != nil || entries == nil {
		return nil, false, err
	}
	return NewBalances(*entries), true, nil
}

// TotalBalanceOf reads the issued totals of token with absent buckets zeroed.
func TotalBalanceOf(snap state.Snapshot, token string) (Balances, error) {
	entries, err := state.ReadOr(snap, TotalAssetBalance.At(token), []BalanceEntry(nil))
	if err != nil {
		return nil, err
	}
	return NewBalances(entries), nil
}

// LimitsOf reads the limits of token with absent overrides allowed.
func LimitsOf(snap state.Snapshot, token string) (Limits, error) {
	entries, err := state.ReadOr(snap, AssetLimitProps.At(token), []LimitEntry(nil))
	if err != nil {
		return nil, err
	}
	return NewLimits(entries), nil
}

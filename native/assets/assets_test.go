package assets

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chainx/core/state"
	"chainx/core/state/statetest"
	"chainx/core/types"
)

func TestValidateToken(t *testing.T) {
	for _, ok := range []string{"BTC", "PCX", "S-DOT", "a.b|c~d", strings.Repeat("X", 32)} {
		require.NoError(t, ValidateToken(ok), ok)
	}
	for _, bad := range []string{"", strings.Repeat("X", 33), "BTC!", "中文", "has space"} {
		require.Error(t, ValidateToken(bad), bad)
	}
}

func TestBalancesDefaultEveryBucket(t *testing.T) {
	b := NewBalances([]BalanceEntry{{Type: ReservedDexSpot, Amount: 9}})
	require.Len(t, b, len(AssetTypes()))
	require.Equal(t, uint64(0), b[Free])
	require.Equal(t, uint64(9), b[ReservedDexSpot])

	encoded, err := json.Marshal(b)
	require.NoError(t, err)
	require.Contains(t, string(encoded), `"ReservedDexSpot":9`)
	require.Contains(t, string(encoded), `"Free":0`)
}

func TestLimitsDefaultAllowed(t *testing.T) {
	l := NewLimits([]LimitEntry{{Limit: CanWithdraw, Allowed: false}})
	require.Len(t, l, len(AssetLimits()))
	require.True(t, l[CanDeposit])
	require.False(t, l[CanWithdraw])
}

func TestRegisteredWalksChains(t *testing.T) {
	alice := types.AccountID{1}
	snap := statetest.Snapshot(t, func(w *state.Writer) {
		statetest.MustPut(t, w, AssetList.At(types.ChainChainX), []string{PCX})
		statetest.MustPut(t, w, AssetList.At(types.ChainBitcoin), []string{BTC, "GHOST"})
		statetest.MustPut(t, w, AssetInfo.At(PCX), AssetRecord{Asset: Asset{Token: PCX, Chain: types.ChainChainX, Precision: 8}, Valid: true})
		statetest.MustPut(t, w, AssetInfo.At(BTC), AssetRecord{Asset: Asset{Token: BTC, Chain: types.ChainBitcoin, Precision: 8}, Valid: true})
		statetest.MustPut(t, w, AssetBalance.At(AccountToken{Account: alice, Token: BTC}), []BalanceEntry{{Type: Free, Amount: 5}})
	})

	records, err := Registered(snap)
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, PCX, records[0].Asset.Token)
	require.Equal(t, BTC, records[1].Asset.Token)

	balances, ok, err := BalanceOf(snap, alice, BTC)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint64(5), balances[Free])

	_, ok, err = BalanceOf(snap, alice, PCX)
	require.NoError(t, err)
	require.False(t, ok)

	limits, err := LimitsOf(snap, BTC)
	require.NoError(t, err)
	require.True(t, limits[CanMove])
}

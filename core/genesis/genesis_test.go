package genesis_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chainx/core"
	"chainx/core/chain"
	"chainx/core/genesis"
	"chainx/core/state"
	"chainx/core/types"
	"chainx/native/assets"
	"chainx/native/spot"
	"chainx/storage"
)

var (
	first  = types.MustAccountID("0x0101010101010101010101010101010101010101010101010101010101010101")
	second = types.MustAccountID("0x0202020202020202020202020202020202020202020202020202020202020202")
	alpha  = types.MustAccountID("0x0303030303030303030303030303030303030303030303030303030303030303")
)

func commitFixture(t *testing.T) (*core.Querier, *chain.Store, storage.Database) {
	t.Helper()
	spec, err := genesis.LoadSpec("testdata/devnet.yaml")
	require.NoError(t, err)

	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	blocks, err := chain.NewStore(db, chain.DefaultHeaderCacheSize)
	require.NoError(t, err)

	header, err := genesis.Commit(spec, db, blocks)
	require.NoError(t, err)
	require.Equal(t, uint64(0), header.Height)
	require.Equal(t, uint64(1704067200), header.Timestamp)
	return core.NewQuerier(state.NewProvider(db, blocks)), blocks, db
}

func TestCommitFixture(t *testing.T) {
	q, _, _ := commitFixture(t)
	ctx := context.Background()

	all, err := q.Assets(ctx, 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, all.Data, 2)
	btc := all.Data[1]
	require.Equal(t, assets.BTC, btc.Name)
	require.Equal(t, uint64(50), btc.Details[assets.Free])
	require.Equal(t, uint64(5), btc.Details[assets.ReservedDexSpot])
	require.False(t, btc.LimitProps[assets.CanDestroyFree])
	require.True(t, btc.LimitProps[assets.CanWithdraw])

	pairs, err := q.TradingPairs(ctx, nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	require.Equal(t, uint64(99), pairs[0].BuyOne)
	// the order at 103 is filled and leaves the book
	require.Equal(t, uint64(101), pairs[0].SellOne)

	depth, err := q.Quotations(ctx, 0, 5, nil)
	require.NoError(t, err)
	require.Len(t, depth.Buy, 1)
	require.Equal(t, uint64(11), depth.Buy[0].Amount.Uint64())
	require.Len(t, depth.Sell, 1)
	require.Equal(t, uint64(5), depth.Sell[0].Amount.Uint64())

	orders, err := q.Orders(ctx, second, 0, 10, nil)
	require.NoError(t, err)
	require.Len(t, orders.Data, 2)
	require.Equal(t, spot.Filled, orders.Data[0].Status)
	require.Equal(t, spot.Sell, orders.Data[1].Side)

	intentions, err := q.Intentions(ctx, nil)
	require.NoError(t, err)
	require.Len(t, intentions, 1)
	require.True(t, intentions[0].IsValidator)
	require.Equal(t, []types.Chain{types.ChainBitcoin}, intentions[0].IsTrustee)

	next, err := q.NextRenominate(ctx, first, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(107), *next)

	records, err := q.PseduNominationRecordsV1(ctx, first, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(40), records[0].LastTotalDepositWeight.Uint64())
	require.Equal(t, uint64(30), records[0].Balance)

	_, err = q.PseduNominationRecords(ctx, first, nil)
	var deprecated *core.DeprecatedError
	require.ErrorAs(t, err, &deprecated)

	session, err := q.TrusteeSessionInfo(ctx, types.ChainBitcoin, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "0x51ae", session.HotEntity.RedeemScript)
	require.Equal(t, []types.AccountID{alpha}, session.TrusteeList)

	deposits, err := q.DepositList(ctx, types.ChainBitcoin, 0, 10, nil)
	require.NoError(t, err)
	require.Equal(t, "0xdeadbeef", deposits.Data[0].TxID)

	weights, err := q.FeeWeightMap(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, uint64(8), weights["XSpot|put_order"])
}

func TestCommitStacksOnHead(t *testing.T) {
	_, blocks, db := commitFixture(t)
	genesisHead, err := blocks.Head()
	require.NoError(t, err)

	spec, err := genesis.ParseSpec([]byte("accounts:\n  team: \"0x0808080808080808080808080808080808080808080808080808080808080808\"\n"))
	require.NoError(t, err)
	header, err := genesis.Commit(spec, db, blocks)
	require.NoError(t, err)
	require.Equal(t, uint64(1), header.Height)
	require.Equal(t, genesisHead.Hash(), header.ParentHash)

	q := core.NewQuerier(state.NewProvider(db, blocks))
	accts, err := q.ParticularAccounts(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, types.MustAccountID("0x0808080808080808080808080808080808080808080808080808080808080808"), *accts.TeamAccount)

	// cells of the parent block are carried over
	pairs, err := q.TradingPairs(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, pairs, 1)

	parent := genesisHead.Hash()
	accts, err = q.ParticularAccounts(context.Background(), &parent)
	require.NoError(t, err)
	require.Equal(t, types.MustAccountID("0x0606060606060606060606060606060606060606060606060606060606060606"), *accts.TeamAccount)
}

func TestParseSpecRejects(t *testing.T) {
	cases := map[string]string{
		"unknown field":   "bogus: 1\n",
		"bad timestamp":   "timestamp: yesterday\n",
		"invalid token":   "assets:\n  - token: \"bad token\"\n    chain: ChainX\n",
		"unknown chain":   "assets:\n  - token: PCX\n    chain: Dogecoin\n",
		"unknown balance": "balances:\n  \"0x0101010101010101010101010101010101010101010101010101010101010101\":\n    BTC: {Free: 1}\n",
		"unknown pair":    "orders:\n  - {pair: 3, side: Buy, amount: 1, price: 1}\n",
		"bad btc address": "bridge:\n  bitcoinBindings:\n    \"0x0101010101010101010101010101010101010101010101010101010101010101\": [nope]\n",
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := genesis.ParseSpec([]byte(raw))
			require.Error(t, err)
		})
	}
}

package chain

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"chainx/core/types"
	"chainx/storage"
)

func TestStoreCommitAndLookup(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()

	store, err := NewStore(db, 0)
	require.NoError(t, err)

	_, err = store.Head()
	require.True(t, errors.Is(err, ErrUnknownBlock))

	first := &types.BlockHeader{Height: 1, StateRoot: common.HexToHash("0xaa")}
	firstHash, err := store.Commit(first)
	require.NoError(t, err)

	second := &types.BlockHeader{Height: 2, ParentHash: firstHash, StateRoot: common.HexToHash("0xbb")}
	secondHash, err := store.Commit(second)
	require.NoError(t, err)

	head, err := store.Head()
	require.NoError(t, err)
	require.Equal(t, secondHash, head.Hash())

	byHash, err := store.Header(firstHash)
	require.NoError(t, err)
	require.Equal(t, first.StateRoot, byHash.StateRoot)

	byHeight, err := store.HeaderByHeight(2)
	require.NoError(t, err)
	require.Equal(t, secondHash, byHeight.Hash())

	_, err = store.Header(common.HexToHash("0xdead"))
	require.ErrorIs(t, err, ErrUnknownBlock)
	_, err = store.HeaderByHeight(9)
	require.ErrorIs(t, err, ErrUnknownBlock)
}

func TestStoreCorruptHeaderIsDecodeError(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	store, err := NewStore(db, 0)
	require.NoError(t, err)

	hash := common.HexToHash("0xbad")
	require.NoError(t, db.Put(headerKey(hash), []byte{0xff, 0x01}))

	_, err = store.Header(hash)
	require.ErrorIs(t, err, storage.ErrDecode)
	require.False(t, errors.Is(err, ErrUnknownBlock))
}

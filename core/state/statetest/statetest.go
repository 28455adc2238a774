// Package statetest builds committed state snapshots for tests.
package statetest

import (
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"chainx/core/chain"
	"chainx/core/state"
	"chainx/core/types"
	"chainx/storage"
)

// Chain is an in-memory chain that tests append blocks to.
type Chain struct {
	DB       *storage.MemDB
	Blocks   *chain.Store
	Provider *state.Provider

	head *types.BlockHeader
}

// NewChain returns an empty in-memory chain.
func NewChain(t testing.TB) *Chain {
	t.Helper()
	db := storage.NewMemDB()
	t.Cleanup(db.Close)
	blocks, err := chain.NewStore(db, 16)
	require.NoError(t, err)
	return &Chain{DB: db, Blocks: blocks, Provider: state.NewProvider(db, blocks)}
}

// Commit writes a block on top of the current head. fill stages the cell
// values of the new block.
func (c *Chain) Commit(t testing.TB, fill func(w *state.Writer)) common.Hash {
	t.Helper()
	var (
		parentRoot common.Hash
		parentHash common.Hash
		height     uint64
	)
	if c.head != nil {
		parentRoot = c.head.StateRoot
		parentHash = c.head.Hash()
		height = c.head.Height + 1
	}
	w, err := state.NewWriter(c.DB, parentRoot)
	require.NoError(t, err)
	if fill != nil {
		fill(w)
	}
	root, err := w.Commit(parentRoot, height)
	require.NoError(t, err)
	header := &types.BlockHeader{Height: height, Timestamp: 1_600_000_000 + height*6, ParentHash: parentHash, StateRoot: root}
	hash, err := c.Blocks.Commit(header)
	require.NoError(t, err)
	c.head = header
	return hash
}

// Latest resolves the head snapshot.
func (c *Chain) Latest(t testing.TB) state.Snapshot {
	t.Helper()
	snap, err := c.Provider.At(context.Background(), nil)
	require.NoError(t, err)
	return snap
}

// Snapshot commits a single block built by fill and returns its snapshot.
func Snapshot(t testing.TB, fill func(w *state.Writer)) state.Snapshot {
	t.Helper()
	c := NewChain(t)
	c.Commit(t, fill)
	return c.Latest(t)
}

// MustPut stores value under key or fails the test.
func MustPut(t testing.TB, w *state.Writer, key state.Key, value any) {
	t.Helper()
	require.NoError(t, w.Put(key, value))
}

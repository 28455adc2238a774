package state_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"chainx/core/state"
	"chainx/core/state/statetest"
)

type record struct {
	Amount uint64
	Note   string
}

var (
	counterCell = state.NewValue("Test", "Counter")
	recordCell  = state.NewMap("Test", "RecordOf")
)

func TestTwox128EmptyInput(t *testing.T) {
	digest := state.Twox128.Sum(nil)
	require.Len(t, digest, 16)
	// xxhash64("", seed 0) = 0xef46db3751d8e999, stored little-endian.
	require.Equal(t, []byte{0x99, 0xe9, 0xd8, 0x51, 0x37, 0xdb, 0x46, 0xef}, digest[:8])
	require.NotEqual(t, digest[:8], digest[8:])
}

func TestPhysicalKeySchemes(t *testing.T) {
	plain := counterCell.Key()
	require.Len(t, plain.Physical(), 16)
	require.Equal(t, plain.Physical(), state.Twox128.Sum([]byte("Test Counter")))

	a := recordCell.At(uint64(1))
	b := recordCell.At(uint64(2))
	require.Len(t, a.Physical(), 32)
	require.False(t, bytes.Equal(a.Physical(), b.Physical()))
	require.False(t, bytes.Equal(a.Physical(), a.PhysicalWith(state.Twox128)))
}

func TestReadRoundTrip(t *testing.T) {
	snap := statetest.Snapshot(t, func(w *state.Writer) {
		statetest.MustPut(t, w, counterCell.Key(), uint32(7))
		statetest.MustPut(t, w, recordCell.At(uint64(1)), record{Amount: 10, Note: "one"})
	})

	counter, err := state.Read[uint32](snap, counterCell.Key())
	require.NoError(t, err)
	require.NotNil(t, counter)
	require.Equal(t, uint32(7), *counter)

	rec, err := state.Read[record](snap, recordCell.At(uint64(1)))
	require.NoError(t, err)
	require.Equal(t, &record{Amount: 10, Note: "one"}, rec)

	ok, err := state.Has(snap, recordCell.At(uint64(1)))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestReadAbsentKey(t *testing.T) {
	snap := statetest.Snapshot(t, nil)
	rec, err := state.Read[record](snap, recordCell.At(uint64(42)))
	require.NoError(t, err)
	require.Nil(t, rec)

	fallback, err := state.ReadOr(snap, counterCell.Key(), uint32(5))
	require.NoError(t, err)
	require.Equal(t, uint32(5), fallback)
}

func TestReadMalformedValue(t *testing.T) {
	key := recordCell.At(uint64(3))
	snap := statetest.Snapshot(t, func(w *state.Writer) {
		require.NoError(t, w.PutRaw(key, []byte{0xff, 0x01}))
	})
	rec, err := state.Read[record](snap, key)
	require.Nil(t, rec)
	require.True(t, errors.Is(err, state.ErrDecode), "unexpected error %v", err)
}

func TestReadWithWrongSchemeFindsNothing(t *testing.T) {
	key := recordCell.At(uint64(1))
	snap := statetest.Snapshot(t, func(w *state.Writer) {
		statetest.MustPut(t, w, key, record{Amount: 1})
	})
	rec, err := state.ReadWith[record](snap, key, state.Twox128)
	require.NoError(t, err)
	require.Nil(t, rec)
}

func TestProviderResolvesHistoricBlocks(t *testing.T) {
	c := statetest.NewChain(t)
	first := c.Commit(t, func(w *state.Writer) {
		statetest.MustPut(t, w, counterCell.Key(), uint32(1))
	})
	c.Commit(t, func(w *state.Writer) {
		statetest.MustPut(t, w, counterCell.Key(), uint32(2))
	})

	latest := c.Latest(t)
	v, err := state.Read[uint32](latest, counterCell.Key())
	require.NoError(t, err)
	require.Equal(t, uint32(2), *v)
	require.Equal(t, uint64(1), latest.Header().Height)

	old, err := c.Provider.At(context.Background(), &first)
	require.NoError(t, err)
	v, err = state.Read[uint32](old, counterCell.Key())
	require.NoError(t, err)
	require.Equal(t, uint32(1), *v)

	unknown := common.HexToHash("0x1234")
	_, err = c.Provider.At(context.Background(), &unknown)
	require.ErrorIs(t, err, state.ErrUnknownBlock)
}

func TestProviderHonoursCancelledContext(t *testing.T) {
	c := statetest.NewChain(t)
	c.Commit(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Provider.At(ctx, nil)
	require.ErrorIs(t, err, context.Canceled)
}

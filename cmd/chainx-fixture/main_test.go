package main

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chainx/core/chain"
	"chainx/storage"
)

func TestRunCommitsFixture(t *testing.T) {
	dir := t.TempDir()
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	fixture := "../../core/genesis/testdata/devnet.yaml"

	require.NoError(t, run(dir, fixture, logger))

	db, err := storage.NewLevelDB(filepath.Join(dir, "chaindata"), true)
	require.NoError(t, err)
	defer db.Close()
	blocks, err := chain.NewStore(db, 4)
	require.NoError(t, err)
	head, err := blocks.Head()
	require.NoError(t, err)
	require.Equal(t, uint64(0), head.Height)
	require.Equal(t, uint64(1704067200), head.Timestamp)
}

func TestRunRequiresFixture(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	require.Error(t, run(t.TempDir(), "", logger))
}

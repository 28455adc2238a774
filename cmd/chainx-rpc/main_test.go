package main

import (
	"context"
	"net"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chainx/config"
	"chainx/core/chain"
	"chainx/core/genesis"
	"chainx/rpc"
	"chainx/storage"
)

func TestNewQuerierRejectsDepthMode(t *testing.T) {
	db := storage.NewMemDB()
	defer db.Close()
	cfg := config.Default().Query
	cfg.DepthMode = "sideways"
	_, err := newQuerier(db, cfg, nil)
	require.Error(t, err)
}

func TestServeCommittedFixture(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "chaindata")
	spec, err := genesis.LoadSpec("../../core/genesis/testdata/devnet.yaml")
	require.NoError(t, err)
	writable, err := storage.NewLevelDB(dir, false)
	require.NoError(t, err)
	blocks, err := chain.NewStore(writable, 4)
	require.NoError(t, err)
	_, err = genesis.Commit(spec, writable, blocks)
	require.NoError(t, err)
	writable.Close()

	db, err := storage.NewLevelDB(dir, true)
	require.NoError(t, err)
	defer db.Close()

	cfg := config.Default()
	querier, err := newQuerier(db, cfg.Query, nil)
	require.NoError(t, err)
	require.Equal(t, cfg.Query.MaxPageSize, querier.MaxPageSize())

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- rpc.NewServer(querier, cfg.RPC, nil, nil).ServeListener(ctx, listener)
	}()

	url := "http://" + listener.Addr().String() + "/healthz"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

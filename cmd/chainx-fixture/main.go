package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"chainx/core/chain"
	"chainx/core/genesis"
	"chainx/observability/logging"
	"chainx/storage"
)

const serviceName = "chainx-fixture"

// chainx-fixture commits a YAML state fixture as a new block so a query node
// has data to serve during development.
func main() {
	dataDir := flag.String("datadir", "./chainx-data", "Directory holding the chain database")
	fixture := flag.String("fixture", "", "Path to the YAML state fixture")
	flag.Parse()

	logger, closer, err := logging.Setup(logging.Options{Service: serviceName, Env: os.Getenv("CHAINX_ENV")})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
	defer closer.Close()

	if err := run(*dataDir, *fixture, logger); err != nil {
		logger.Error("fixture commit failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(dataDir, fixture string, logger *slog.Logger) error {
	if fixture == "" {
		return fmt.Errorf("-fixture is required")
	}
	spec, err := genesis.LoadSpec(fixture)
	if err != nil {
		return err
	}
	db, err := storage.NewLevelDB(filepath.Join(dataDir, "chaindata"), false)
	if err != nil {
		return err
	}
	defer db.Close()

	blocks, err := chain.NewStore(db, chain.DefaultHeaderCacheSize)
	if err != nil {
		return err
	}
	header, err := genesis.Commit(spec, db, blocks)
	if err != nil {
		return err
	}
	logger.Info("fixture committed",
		slog.Uint64("block", header.Height),
		slog.String("hash", header.Hash().Hex()),
		slog.String("state_root", header.StateRoot.Hex()))
	return nil
}

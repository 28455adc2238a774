package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"chainx/config"
	"chainx/core"
	"chainx/core/chain"
	"chainx/core/state"
	"chainx/native/spot"
	"chainx/observability/logging"
	telemetry "chainx/observability/otel"
	"chainx/rpc"
	"chainx/storage"
)

const serviceName = "chainx-rpc"

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	if err := run(*configFile); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run(configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, logCloser, err := logging.Setup(logging.Options{
		Service:    serviceName,
		Env:        cfg.Env,
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return fmt.Errorf("setup logging: %w", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := telemetry.Init(ctx, serviceName, cfg.Env, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	secret, err := cfg.JWTSecret()
	if err != nil {
		return err
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "chaindata"), true)
	if err != nil {
		return err
	}
	defer db.Close()

	querier, err := newQuerier(db, cfg.Query, logger)
	if err != nil {
		return err
	}
	server := rpc.NewServer(querier, cfg.RPC, secret, logger)
	logger.Info("serving state queries",
		slog.String("addr", cfg.RPCAddress),
		slog.String("data_dir", cfg.DataDir),
		slog.Bool("auth", len(secret) > 0))
	return server.Serve(ctx, cfg.RPCAddress)
}

func newQuerier(db storage.Database, cfg config.Query, logger *slog.Logger) (*core.Querier, error) {
	mode, err := spot.ParseDepthMode(cfg.DepthMode)
	if err != nil {
		return nil, err
	}
	blocks, err := chain.NewStore(db, cfg.HeaderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("open chain index: %w", err)
	}
	return core.NewQuerier(state.NewProvider(db, blocks),
		core.WithMaxPageSize(cfg.MaxPageSize),
		core.WithDepthMode(mode),
		core.WithMaxDepthLevels(cfg.MaxDepthLevels),
		core.WithLogger(logger),
	), nil
}

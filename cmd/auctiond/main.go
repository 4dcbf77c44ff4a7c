package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/cloudx-io/escrowhouse/core"
	"github.com/cloudx-io/escrowhouse/engineapi"
)

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatal("configuration error", zap.Error(err))
	}

	engine, err := buildEngine(cfg, log)
	if err != nil {
		log.Fatal("failed to build engine", zap.Error(err))
	}

	if cfg.SnapshotPath != "" {
		installSnapshotOnShutdown(engine, cfg.SnapshotPath, log)
	}

	server := NewServer(cfg, engine, log)
	log.Fatal("server stopped", zap.Error(server.Serve()))
}

func buildEngine(cfg Config, log *zap.Logger) (*core.Engine, error) {
	minBid, err := decimal.NewFromString(cfg.MinBid)
	if err != nil {
		return nil, err
	}

	opts := []core.Option{
		core.WithMinBid(minBid),
		core.WithMaxProducts(cfg.MaxProducts),
		core.WithMinDuration(cfg.MinDuration),
		core.WithBidObserver(func(code int64, amount decimal.Decimal) {
			log.Info("bid placed",
				zap.Int64("product_code", code),
				zap.String("amount", amount.String()))
		}),
		// The transfer collaborator of this deployment records the outbound
		// transfer for the settlement process to pick up.
		core.WithTransferrer(core.TransferFunc(func(to uuid.UUID, amount decimal.Decimal) error {
			log.Info("funds transfer",
				zap.String("to", to.String()),
				zap.String("amount", amount.String()))
			return nil
		})),
	}

	if cfg.SnapshotPath != "" {
		if _, statErr := os.Stat(cfg.SnapshotPath); statErr == nil {
			engine, err := engineapi.LoadSnapshot(cfg.SnapshotPath, opts...)
			if err != nil {
				return nil, err
			}
			log.Info("engine restored from snapshot", zap.String("path", cfg.SnapshotPath))
			return engine, nil
		}
	}

	owner, err := uuid.Parse(cfg.Owner)
	if err != nil {
		return nil, err
	}
	mode := core.Manual
	if cfg.Mode == "temporal" {
		mode = core.Temporal
	}
	return core.New(owner, mode, opts...), nil
}

func installSnapshotOnShutdown(engine *core.Engine, path string, log *zap.Logger) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigs
		log.Info("shutting down", zap.String("signal", sig.String()))
		if err := engineapi.SaveSnapshot(engine, path); err != nil {
			log.Error("failed to save snapshot", zap.Error(err))
			os.Exit(1)
		}
		log.Info("snapshot saved", zap.String("path", path))
		os.Exit(0)
	}()
}

package main

import (
	"context"

	"go.uber.org/zap"

	"emotionagg/internal/adapter"
	"emotionagg/internal/aggregate"
	"emotionagg/internal/config"
	"emotionagg/internal/logging"
	"emotionagg/internal/rules"
	"emotionagg/internal/store"
)

const defaultConfigPath = "emotionagg.yaml"

func loadConfig() (*config.ProjectConfig, *zap.Logger, error) {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		Verbose:     verbose,
	})
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newSelector(cfg *config.ProjectConfig, logger *zap.Logger) (*adapter.Selector, error) {
	set := rules.LoadOrEmpty(cfg.Rules, logger)
	return adapter.NewSelector(cfg.Model, rules.NewEngine(set))
}

// app bundles everything a store-backed command needs.
type app struct {
	cfg      *config.ProjectConfig
	logger   *zap.Logger
	db       store.Store
	selector *adapter.Selector
	pipeline *aggregate.Pipeline
}

func openApp(ctx context.Context) (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}
	selector, err := newSelector(cfg, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	db, err := openStore(ctx, cfg)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	agg := aggregate.New(db, selector, aggregate.Options{
		Concurrency:       cfg.Aggregation.Concurrency,
		SlotTimeout:       cfg.Aggregation.SlotTimeout,
		RequestsPerSecond: cfg.Aggregation.RequestsPerSecond,
	}, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		db:       db,
		selector: selector,
		pipeline: aggregate.NewPipeline(agg, db, logger),
	}, nil
}

func (a *app) Close(ctx context.Context) {
	if err := a.db.Close(ctx); err != nil {
		a.logger.Warn("closing store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

package main

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/parade-state/app"
	"github.com/warp/parade-state/config"
	"github.com/warp/parade-state/logging"
)

type globalOptions struct {
	configPath string
	backend    string
	path       string
}

func (o *globalOptions) bind(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&o.configPath, "config", "", "YAML config file")
	cmd.PersistentFlags().StringVar(&o.backend, "store", "", "store backend override (sqlite, xlsx, memory)")
	cmd.PersistentFlags().StringVar(&o.path, "path", "", "store path override")
}

// runtime is everything a command needs, opened from config.
type runtime struct {
	cfg     *config.Config
	log     *zap.Logger
	backend *app.Backend
	svc     *app.Service
}

func (o *globalOptions) open() (*runtime, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	if o.backend != "" {
		cfg.Store.Backend = o.backend
	}
	if o.path != "" {
		cfg.Store.Path = o.path
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	backend, err := app.OpenBackend(cfg, log)
	if err != nil {
		return nil, err
	}
	svc := app.NewService(backend.Tables, app.Options{
		DefaultLeaveBalance: cfg.Leave.DefaultBalance,
		SimilarityThreshold: cfg.Outliers.SimilarityThreshold,
		Location:            loc,
	}, log)

	return &runtime{cfg: cfg, log: log, backend: backend, svc: svc}, nil
}

func (rt *runtime) close() {
	if err := rt.backend.Close(); err != nil {
		rt.log.Warn("Failed to close store", zap.Error(err))
	}
	rt.log.Sync()
}

func contextOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kharcha/internal/backend"
	"kharcha/internal/cache"
	"kharcha/internal/cli"
	"kharcha/internal/config"
	"kharcha/internal/core"
	apphttp "kharcha/internal/http"
	applog "kharcha/internal/log"
	"kharcha/internal/services"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web dashboard and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts.cfg, opts.logger)
		},
	}
	cmd.Flags().String("port", "", "listen port (overrides PORT)")
	cmd.Flags().String("backend", "", "data backend: memory or sqlite (overrides DATA_BACKEND)")
	return cmd
}

func newService(cfg *config.Config, base services.Options, res *backend.Result) *services.ExpenseService {
	base.Publisher = res.Publisher
	base.CacheTTL = cfg.CacheTTL
	base.CacheSize = cfg.CacheSize
	base.Reports = core.ReportOptions{
		TopCategories: cfg.TopCategories,
		UpcomingLimit: cfg.UpcomingLimit,
	}
	return services.NewExpenseService(res.Store, base)
}

func runServe(parent context.Context, cfg *config.Config, logger *applog.Logger) error {
	ctx, cancel := cli.ShutdownContext(parent, logger)
	defer cancel()

	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return err
	}
	res, err := backend.NewFactory(logger).Create(ctx, bcfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, err)
		}
	}()

	svc := newService(cfg, services.Options{Logger: logger}, res)

	janitor := cache.NewJanitor(logger.WithComponent(applog.ComponentCache).Logger)
	janitor.Register(svc.Cache())
	sweepEvery := cfg.CacheTTL
	if sweepEvery <= 0 {
		sweepEvery = 5 * time.Minute
	}
	janitor.Start(sweepEvery)
	defer janitor.Stop()

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		MetricsEnabled:     cfg.MetricsEnabled,
		Logger:             logger,
	}, svc)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server",
			"addr", srv.Addr,
			"backend", cfg.DataBackend,
			"events", cfg.AMQPEnabled(),
			"metrics", cfg.MetricsEnabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("Shutting down HTTP server")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

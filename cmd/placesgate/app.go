package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/placesgate/placesgate/pkg/alerting"
	"github.com/placesgate/placesgate/pkg/cache"
	"github.com/placesgate/placesgate/pkg/clock"
	"github.com/placesgate/placesgate/pkg/config"
	"github.com/placesgate/placesgate/pkg/gateway"
	"github.com/placesgate/placesgate/pkg/limits/budget"
	"github.com/placesgate/placesgate/pkg/limits/ratelimit"
	"github.com/placesgate/placesgate/pkg/limits/usage"
	"github.com/placesgate/placesgate/pkg/places"
	"github.com/placesgate/placesgate/pkg/scheduler"
	"github.com/placesgate/placesgate/pkg/server"
	"github.com/placesgate/placesgate/pkg/telemetry/health"
	"github.com/placesgate/placesgate/pkg/telemetry/metrics"
	"github.com/placesgate/placesgate/pkg/telemetry/tracing"
)

// upstreamFailureThreshold marks the gateway unready after this many
// consecutive provider failures.
const upstreamFailureThreshold = 5

// app holds the wired components of a running gateway.
type app struct {
	cfg    *config.Config
	logger *slog.Logger

	tracer    *tracing.Tracer
	metrics   *metrics.Collector
	limiter   *ratelimit.Limiter
	client    *places.Client
	service   *gateway.Service
	checker   *health.Checker
	handler   http.Handler
	server    *server.Server
	scheduler *scheduler.Maintenance
}

// appOptions lets tests replace the clock and the provider client.
type appOptions struct {
	clock    clock.Clock
	searcher places.Searcher
}

// newApp wires every component from cfg. Nothing is started.
func newApp(cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	clk := clock.OrReal(opts.clock)

	tracer, err := tracing.New(&cfg.Telemetry.Tracing, Version)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, registry)

	notifier, err := alerting.New(alertingConfig(cfg.Alerts), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize alerting: %w", err)
	}

	monitor := budget.New(budget.Config{
		MonthlyLimit: cfg.Budget.MonthlyLimit,
		Thresholds:   cfg.Budget.Thresholds,
	}, clk, alerting.Counted(notifier, collector)).WithLogger(logger)

	limiter := ratelimit.New(ratelimit.Config{
		Limit:  cfg.RateLimit.Limit,
		Window: cfg.RateLimit.Window,
	}, clk)

	a := &app{
		cfg:     cfg,
		logger:  logger,
		tracer:  tracer,
		metrics: collector,
		limiter: limiter,
	}

	searcher := opts.searcher
	if searcher == nil {
		a.client = places.NewClient(places.Config{
			BaseURL:      cfg.Places.BaseURL,
			APIKey:       cfg.Places.APIKey,
			Timeout:      cfg.Places.Timeout,
			MaxIdleConns: cfg.Places.MaxIdleConns,
		}, places.WithTracer(tracer), places.WithLogger(logger))
		searcher = a.client
	}

	a.service, err = gateway.New(gateway.Deps{
		Limiter: limiter,
		Cache: cache.New(cache.Config{
			TTL:        cfg.Cache.TTL,
			MaxEntries: cfg.Cache.MaxEntries,
		}, clk),
		Usage: usage.New(usage.Config{
			MaxStoredCalls: cfg.Usage.MaxStoredCalls,
			CostPerCall:    cfg.Usage.CostPerCall,
			MeteredSource:  cfg.Usage.MeteredSource,
		}, clk),
		Budget:   monitor,
		Searcher: searcher,
		Metrics:  collector,
		Tracer:   tracer,
		Logger:   logger,
		Source:   cfg.Usage.MeteredSource,
		Limits: gateway.RequestLimits{
			DefaultRadius: cfg.Places.DefaultRadius,
			MaxRadius:     cfg.Places.MaxRadius,
		},
	})
	if err != nil {
		return nil, err
	}

	a.checker = health.New(0)
	a.checker.RegisterCheck("places_credential", health.CredentialCheck(a.service))
	if a.client != nil {
		client := a.client
		a.checker.RegisterCheck("places_upstream", health.UpstreamCheck(func() int {
			return client.Health().ConsecutiveFailures
		}, upstreamFailureThreshold))
	}

	a.handler = server.NewRouter(server.RouterOptions{
		Config:  cfg,
		Service: a.service,
		Checker: a.checker,
		Metrics: collector,
		Version: health.NewVersionInfo(Version, GitCommit, BuildDate),
		Logger:  logger,
	})
	a.server = server.New(&cfg.Server, a.handler, logger)
	a.scheduler = scheduler.New(&cfg.Maintenance, a.service, logger)

	return a, nil
}

// run serves until ctx is cancelled or a component fails. When configPath is
// set, edits to the file are applied to the running limits and budget.
func (a *app) run(ctx context.Context, configPath string) error {
	// A process started mid-month after a rollover must not carry stale spend.
	a.service.RolloverBudget()
	a.service.RefreshGauges()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.server.Start(gctx)
	})

	g.Go(func() error {
		if err := a.scheduler.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		a.scheduler.Stop()
		return nil
	})

	if configPath != "" {
		watcher, err := config.NewWatcher(configPath, 0, a.logger)
		if err != nil {
			a.logger.Warn("config hot reload disabled", "error", err)
		} else {
			g.Go(func() error {
				defer watcher.Stop()
				return watcher.Watch(gctx, a.applyConfig)
			})
		}
	}

	return g.Wait()
}

// applyConfig applies the reloadable settings from a changed config file.
// Everything else requires a restart.
func (a *app) applyConfig(cfg *config.Config) {
	a.limiter.SetLimits(cfg.RateLimit.Limit, cfg.RateLimit.Window)
	a.service.Reconfigure(cfg.Budget.MonthlyLimit, cfg.Budget.Thresholds)
	a.logger.Info("reloadable settings applied",
		"rate_limit", cfg.RateLimit.Limit,
		"rate_limit_window", cfg.RateLimit.Window.String(),
	)
}

// close releases resources held after run returns.
func (a *app) close(ctx context.Context) error {
	if a.client != nil {
		a.client.Close()
	}
	if err := a.tracer.Shutdown(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to flush traces: %w", err)
	}
	return nil
}

func alertingConfig(c config.AlertsConfig) alerting.Config {
	return alerting.Config{
		Channel: c.Channel,
		Webhook: alerting.WebhookConfig{
			URL:     c.Webhook.URL,
			Timeout: c.Webhook.Timeout,
			Headers: c.Webhook.Headers,
		},
		Email: alerting.EmailConfig{
			Host:     c.Email.Host,
			Port:     c.Email.Port,
			Username: c.Email.Username,
			Password: c.Email.Password,
			From:     c.Email.From,
			To:       c.Email.To,
			UseTLS:   c.Email.UseTLS,
			Timeout:  c.Email.Timeout,
		},
	}
}

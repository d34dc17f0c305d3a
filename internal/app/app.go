package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"SiteProfiler/internal/capability"
	"SiteProfiler/internal/classify"
	"SiteProfiler/internal/config"
	"SiteProfiler/internal/discover"
	"SiteProfiler/internal/infrastructure/fetch"
	"SiteProfiler/internal/infrastructure/scheduler"
	"SiteProfiler/internal/infrastructure/storage"
	"SiteProfiler/internal/infrastructure/telegram"
	"SiteProfiler/internal/logging"
	"SiteProfiler/internal/ports"
	"SiteProfiler/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	batch     *usecase.Batch
	recurring *usecase.Scheduler
	sites     []usecase.Site
}

// New builds a minimal runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) *Application {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	fetcher := fetch.NewHTTPFetcher(&http.Client{Timeout: cfg.Analysis.FetchTimeout()})

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Fetcher:      fetcher,
		Classifier:   classify.New(),
		Capabilities: capability.NewRegistry(),
		Discoverer:   discover.New(fetcher, baseLogger.With("component", "discover")),
		Logger:       baseLogger.With("component", "pipeline"),
		MaxRetries:   cfg.Analysis.MaxRetries,
	})

	var repository ports.ConfigurationRepository
	if cfg.Database.DSN != "" {
		if db, err := storage.Open(cfg.Database.DSN); err != nil {
			baseLogger.Warn("database unavailable, running without persistence", "error", err)
		} else {
			repository = storage.NewPostgresRepository(db)
		}
	}

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg.BotToken, tg.ChatID)
	}

	batch := usecase.NewBatch(usecase.BatchDeps{
		Pipeline:     pipeline,
		Repository:   repository,
		Notifier:     notifier,
		Logger:       baseLogger.With("component", "batch"),
		Workers:      cfg.Analysis.Workers,
		PerHostDelay: cfg.Analysis.PerHostDelay(),
		MaxDepth:     cfg.Analysis.MaxDepth,
	})

	sites := make([]usecase.Site, 0, len(cfg.Seeds))
	for _, seed := range cfg.Seeds {
		sites = append(sites, usecase.Site{
			URL:            seed.URL,
			AllowedDomains: seed.AllowedDomains,
		})
	}

	var recurring *usecase.Scheduler
	if cfg.Scheduler.CronExpression != "" {
		driver := scheduler.NewCronScheduler(cfg.Scheduler.CronExpression, cfg.Scheduler.Location())
		recurring = usecase.NewScheduler(driver, batch, sites)
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		batch:     batch,
		recurring: recurring,
		sites:     sites,
	}
}

// Run executes one batch over the configured seed list immediately, then
// keeps re-analyzing on the configured schedule until the context ends.
// Without a cron expression it is a one-shot run.
func (a *Application) Run(ctx context.Context) error {
	if a.batch == nil || len(a.sites) == 0 {
		a.logger.Info("no seed sites configured, nothing to analyze")
		return nil
	}

	summary := a.batch.Run(ctx, a.sites)
	a.logger.Info("batch finished",
		"total", summary.Total,
		"succeeded", summary.Succeeded,
		"failed", summary.Failed,
		"skipped", summary.Skipped)

	if a.recurring == nil {
		if summary.Failed > 0 && summary.Succeeded == 0 {
			return fmt.Errorf("all %d analysis runs failed", summary.Failed)
		}
		return nil
	}

	if err := a.recurring.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	a.logger.Info("scheduler started", "cron", a.cfg.Scheduler.CronExpression)

	<-ctx.Done()
	return a.recurring.Stop(context.Background())
}

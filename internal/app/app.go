package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"hostwatch/internal/alerts"
	"hostwatch/internal/collector"
	"hostwatch/internal/config"
	"hostwatch/internal/db"
	"hostwatch/internal/notifier"
	"hostwatch/internal/retention"
	"hostwatch/internal/triggerlog"
	"hostwatch/internal/watchtower"
	"hostwatch/internal/web"
)

type App struct {
	cfg config.Config
	log *slog.Logger

	db *db.Repository

	collector *collector.Service
	watch     *watchtower.Engine
	retention *retention.Service

	httpSrv *http.Server
}

func New(cfg config.Config, logger *slog.Logger) (*App, error) {
	sqldb, err := db.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(sqldb); err != nil {
		return nil, err
	}
	repo := db.NewRepository(sqldb)

	rules := alerts.NewStore(cfg.AlertsPath, logger.With("module", "alerts"))
	triggers, err := triggerlog.New(cfg.TriggerLogPath)
	if err != nil {
		return nil, err
	}
	webhook := notifier.NewWebhook()

	srv := web.NewServer(repo, rules, triggers, logger.With("module", "web"))
	app := &App{
		cfg:       cfg,
		log:       logger,
		db:        repo,
		collector: collector.NewService(repo, collector.NewHostSampler(), logger.With("module", "collector")),
		watch:     watchtower.NewEngine(repo, rules, webhook, triggers, logger.With("module", "watchtower")),
		retention: retention.NewService(repo, cfg.RetentionDays, logger.With("module", "retention")),
	}
	app.httpSrv = &http.Server{Addr: cfg.Addr, Handler: srv.Routes()}
	return app, nil
}

// Run drives the three periodic loops from one select loop: collect every
// second, evaluate alerts every five, sweep retention daily. The loops
// share nothing but the storage handle and must stay tolerant of each
// other's failures.
func (a *App) Run(ctx context.Context) error {
	go func() {
		a.log.Info("http server listening", "addr", a.cfg.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("http server failed", "err", err)
		}
	}()

	collectTicker := time.NewTicker(a.cfg.CollectInterval)
	watchTicker := time.NewTicker(a.cfg.WatchInterval)
	retentionTicker := time.NewTicker(24 * time.Hour)
	defer collectTicker.Stop()
	defer watchTicker.Stop()
	defer retentionTicker.Stop()

	// Immediate first run
	a.collector.Tick(ctx)
	a.retention.Run(ctx)

	for {
		select {
		case <-ctx.Done():
			_ = a.httpSrv.Shutdown(context.Background())
			return a.db.DB().Close()
		case <-collectTicker.C:
			a.collector.Tick(ctx)
		case <-watchTicker.C:
			a.watch.Evaluate(ctx)
		case <-retentionTicker.C:
			a.retention.Run(ctx)
		}
	}
}

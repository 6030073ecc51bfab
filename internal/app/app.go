package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"LeadScanner/internal/config"
	"LeadScanner/internal/infrastructure/imapmail"
	"LeadScanner/internal/infrastructure/scheduler"
	"LeadScanner/internal/infrastructure/smtpnotify"
	"LeadScanner/internal/infrastructure/storage"
	"LeadScanner/internal/ledger"
	"LeadScanner/internal/logging"
	"LeadScanner/internal/ports"
	"LeadScanner/internal/usecase"
)

// Application wires configuration to the pipeline and owns the run lifecycle.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *ledger.Store
	archive  *storage.PostgresWriter
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	source := imapmail.NewSource(cfg.Mail, logging.Component(baseLogger, "source.imap"))
	sink := storage.NewCSVWriter(cfg.Storage.CSVPath)

	var notifier ports.Notifier
	if cfg.Notifications.Enabled {
		notifier = smtpnotify.NewNotifier(cfg.Notifications)
	}

	app := &Application{
		cfg:    cfg,
		logger: baseLogger,
		store:  ledger.NewStore(cfg.Storage.LedgerPath, logging.Component(baseLogger, "ledger")),
	}

	var archive ports.LeadArchive
	if cfg.Storage.DatabaseDSN != "" {
		pg, err := storage.NewPostgresWriter(cfg.Storage.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		app.archive = pg
		archive = pg
	}

	app.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:   source,
		Sink:     sink,
		Archive:  archive,
		Notifier: notifier,
		Scoring:  cfg.Scoring,
		Filters:  cfg.Filters,
		Logger:   logging.Component(baseLogger, "pipeline"),
	})

	return app, nil
}

// Run executes one poll cycle, or keeps polling on the configured interval
// until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	defer a.close()

	interval := a.cfg.Scheduler.Interval()
	if interval <= 0 {
		return a.runCycle(ctx, time.Now().UTC())
	}

	watcher := usecase.NewWatcher(scheduler.NewIntervalRunner(interval), func(t time.Time) {
		if err := a.runCycle(ctx, t.UTC()); err != nil {
			a.logger.Error("poll cycle failed", "error", err)
		}
	})
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	watcher.Stop()
	return nil
}

// runCycle loads the ledger, processes the batch, and persists the ledger
// only after the whole cycle succeeded. On a fatal error the save is skipped:
// already-flushed CSV rows stand, and those messages are reprocessed next run.
func (a *Application) runCycle(ctx context.Context, now time.Time) error {
	seen := a.store.Load()
	since := now.AddDate(0, 0, -a.cfg.Mail.LookbackDays)

	recorded, err := a.pipeline.ProcessBatch(ctx, since, seen)
	if err != nil {
		return err
	}

	if err := a.store.Save(seen); err != nil {
		a.logger.Warn("ledger save failed, next run may re-append", "error", err)
	}

	a.logger.Info("run complete", "new_leads", recorded, "processed_total", seen.Len())
	return nil
}

func (a *Application) close() {
	if a.archive != nil {
		if err := a.archive.Close(); err != nil {
			a.logger.Warn("close archive", "error", err)
		}
	}
}

package main

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/FACorreiaa/statement-checks/internal/domain/statement/handler"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/parser"
	"github.com/FACorreiaa/statement-checks/internal/domain/statement/service"
	"github.com/FACorreiaa/statement-checks/pkg/config"
	"github.com/FACorreiaa/statement-checks/pkg/cron"
	"github.com/FACorreiaa/statement-checks/pkg/metrics"
	"github.com/FACorreiaa/statement-checks/pkg/storage"
)

// Dependencies holds all application dependencies
type Dependencies struct {
	Config *config.Config
	Logger *slog.Logger

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	Spool     storage.Storage
	Scheduler *cron.Scheduler

	Parser            *parser.PDFParser
	ExtractionService *service.ExtractionService

	StatementHandler *handler.StatementHandler
}

// InitDependencies initializes all application dependencies
func InitDependencies(cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	deps.initMetrics()

	if err := deps.initSpool(); err != nil {
		return nil, fmt.Errorf("failed to init spool: %w", err)
	}

	deps.initServices()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")

	return deps, nil
}

func (d *Dependencies) initMetrics() {
	if !d.Config.Observability.MetricsEnabled {
		return
	}
	d.Registry = prometheus.NewRegistry()
	d.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	d.Metrics = metrics.New(d.Registry)
}

// initSpool prepares the upload spool and its sweeper
func (d *Dependencies) initSpool() error {
	spool, err := storage.New(&storage.Config{
		LocalPath: d.Config.Spool.Path,
		MaxBytes:  d.Config.Server.MaxUploadBytes(),
	})
	if err != nil {
		return err
	}
	d.Spool = spool

	d.Scheduler = cron.NewScheduler(spool, d.Config.Spool.SweepSchedule, d.Config.Spool.MaxAge, d.Logger)
	if err := d.Scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start spool sweeper: %w", err)
	}

	// leftovers from a previous run
	d.Scheduler.RunNow()

	d.Logger.Info("spool ready", slog.String("path", d.Config.Spool.Path))
	return nil
}

// initServices initializes all service layer dependencies
func (d *Dependencies) initServices() {
	d.Parser = parser.NewPDFParser(parser.WithPreflight(d.Config.PDF.Preflight))
	d.ExtractionService = service.NewExtractionService(d.Parser, d.Logger).WithMetrics(d.Metrics)

	d.Logger.Info("services initialized")
}

// initHandlers initializes all handler dependencies
func (d *Dependencies) initHandlers() {
	d.StatementHandler = handler.NewStatementHandler(
		d.ExtractionService,
		d.Spool,
		d.Config.Server.MaxUploadBytes(),
		d.Logger,
	)

	d.Logger.Info("handlers initialized")
}

// Cleanup closes all resources
func (d *Dependencies) Cleanup() {
	if d.Scheduler != nil {
		<-d.Scheduler.Stop().Done()
	}
	d.Logger.Info("cleanup completed")
}

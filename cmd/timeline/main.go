package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
	"github.com/phaseboard/timeline/internal/access"
	"github.com/phaseboard/timeline/internal/cli"
	"github.com/phaseboard/timeline/internal/config"
	"github.com/phaseboard/timeline/internal/db"
	"github.com/phaseboard/timeline/internal/repository"
	"github.com/phaseboard/timeline/internal/service"
	"github.com/phaseboard/timeline/internal/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("TIMELINE_CONFIG"))
	if err != nil {
		return err
	}

	database, err := db.OpenDBWithOptions(cfg.DB.Path, db.Options{BusyTimeoutMs: cfg.Store.BusyTimeoutMs})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	uow := db.NewSQLiteUnitOfWork(database)
	if _, err := access.Bootstrap(context.Background(), uow); err != nil {
		return err
	}

	// Observers
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	observers := []service.UseCaseObserver{service.NewMetricsUseCaseObserver(reg)}
	if cfg.Log.UseCases {
		observers = append(observers, service.NewLogUseCaseObserver(os.Stderr))
	}

	opts := []service.PhaseServiceOption{
		service.WithSuite(cfg.Suite),
		service.WithRetryPolicy(service.RetryPolicy{Attempts: cfg.Store.MaxRetries, Backoff: 25 * time.Millisecond}),
		service.WithObservers(observers...),
	}
	phaseRepo := repository.NewSQLitePhaseRepo(database)
	phases := service.NewPhaseService(phaseRepo, uow, opts...)

	app := &cli.App{
		Phases:   phases,
		Transfer: service.NewTransferService(phaseRepo, uow, opts...),
		Config:   cfg,
		Handler:  newRouter(cfg, database, phases, reg),
	}

	// Forms and the viewer need a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).Execute()
}

func newRouter(cfg *config.Config, database db.DBTX, phases service.PhaseService, reg *prometheus.Registry) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	caps := web.NewCapabilities(access.NewChecker(repository.NewSQLiteAccessRepo(database)))
	opts := []web.RouterOption{
		web.WithRequestLog(slog.New(slog.NewTextHandler(os.Stderr, nil))),
	}
	if cfg.HTTP.Metrics {
		opts = append(opts, web.WithMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}
	return web.NewRouter(web.NewHandlers(phases), caps, opts...)
}

// Package server initializes and runs the assistant backend: database and
// migrations, the HTTP/WebSocket endpoint and the reminder scheduler, with
// graceful shutdown on OS signals.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"assistant-service/internal/logging"
	"assistant-service/internal/server/config"
	"assistant-service/internal/server/httpapi"
	"assistant-service/internal/server/push"
	"assistant-service/internal/server/repositories/repomanager"
	"assistant-service/internal/server/scheduler"
	"assistant-service/internal/server/services"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	registry  *push.Registry
	scheduler *scheduler.Scheduler
	httpSrv   *httpapi.Server
}

func NewApp(cfg *config.Config) (*App, error) {
	handler := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(handler)

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	userService := services.NewUserService(db, rm, cfg)
	taskService := services.NewTaskService(db, rm)

	registry := push.NewRegistry(logger)
	sch := scheduler.New(taskService, registry, cfg.SchedulerPollInterval, logger)
	httpSrv := httpapi.NewServer(userService, taskService, registry, logger)

	return &App{
		config:    cfg,
		logger:    logger,
		db:        db,
		registry:  registry,
		scheduler: sch,
		httpSrv:   httpSrv,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.scheduler.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpSrv.Run(ctx, app.config.EndpointAddrHTTP); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "error closing db", "error", err)
	}

	app.logger.Info(ctx, "app stopped")
}

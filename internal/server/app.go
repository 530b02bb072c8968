// Package server initializes and runs the job board server: database
// pool, repositories, services, the HTTP endpoint, and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/tenantive/jobboard/internal/logging"
	"github.com/tenantive/jobboard/internal/server/config"
	"github.com/tenantive/jobboard/internal/server/httpapi"
	"github.com/tenantive/jobboard/internal/server/repositories/repomanager"
	"github.com/tenantive/jobboard/internal/server/services"
)

// App owns the server's long-lived components.
type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *httpapi.Server
}

// NewApp wires the application from configuration.
func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewDefault()

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	jobService := services.NewJobService(db, manager)
	httpServer := httpapi.NewServer(cfg, logger, jobService)

	return &App{config: cfg, logger: logger, db: db, http: httpServer}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves until a termination signal arrives, then shuts everything
// down and closes the pool.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddr)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.http.Run(ctx); err != nil {
			app.logger.Error(ctx, "http server error", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

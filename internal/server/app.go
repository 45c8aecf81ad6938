// Package server assembles the outreach auth server from its configuration:
// logger, store, password hasher, session manager, HTTP API and the optional
// gRPC health endpoint, and runs them until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/outreach/internal/logging"
	"github.com/dmitrijs2005/outreach/internal/server/auth"
	"github.com/dmitrijs2005/outreach/internal/server/config"
	"github.com/dmitrijs2005/outreach/internal/server/httpapi"
	"github.com/dmitrijs2005/outreach/internal/server/metrics"
	"github.com/dmitrijs2005/outreach/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/outreach/internal/server/services"
	"github.com/dmitrijs2005/outreach/internal/server/session"

	gs "github.com/dmitrijs2005/outreach/internal/server/grpc"
)

// openDB is a seam for tests.
var openDB = repomanager.OpenDB

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	http    *httpapi.Server
	health  *gs.HealthServer
	metrics *metrics.Metrics
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(context.Background(), c, os.Stdout)
}

func newApp(ctx context.Context, c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel, logOut)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger, metrics: metrics.New()}

	var rm repomanager.RepositoryManager
	if c.DatabaseDSN != "" {
		db, err := openDB(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		pm := repomanager.NewPostgresRepositoryManager()
		if err := pm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db, rm = db, pm
	} else {
		logger.Warn(ctx, "no database configured, using in-memory store")
		rm = repomanager.NewMemoryRepositoryManager()
	}

	hasher, err := auth.NewBcryptHasher(c.BcryptCost)
	if err != nil {
		return nil, app.fail(err)
	}
	codec, err := auth.NewSessionCodec([]byte(c.SecretKey))
	if err != nil {
		return nil, app.fail(err)
	}

	opts := []session.Option{
		session.WithDurations(c.SessionDuration, c.RenewalWindow),
		session.WithMetrics(app.metrics),
	}
	if c.SessionMode == config.SessionModeServer {
		opts = append(opts, session.WithRegistry(session.NewStoreRegistry(app.db, rm)))
	}
	sessions := session.NewManager(codec, rm.Users(app.db), logger.With("module", "session"), opts...)

	authService := services.NewAuthService(app.db, rm, hasher, sessions, logger.With("module", "auth"), c).
		WithMetrics(app.metrics)

	router := httpapi.NewRouter(httpapi.Deps{
		Auth:           authService,
		Sessions:       sessions,
		Cookie:         session.CookieOptions{Name: c.CookieName, Secure: c.IsProduction()},
		Logger:         logger.With("module", "http"),
		Metrics:        app.metrics,
		MetricsHandler: app.metrics.Handler(),
		Health:         app.ping,
	})
	app.http = httpapi.NewServer(c.HTTPAddr, router, logger)

	if c.GRPCHealthAddr != "" {
		app.health = gs.NewHealthServer(c.GRPCHealthAddr, logger, app.ping)
	}

	return app, nil
}

func (app *App) fail(err error) error {
	if app.db != nil {
		_ = app.db.Close()
	}
	return err
}

// ping checks the store; the in-memory store is always available.
func (app *App) ping(ctx context.Context) error {
	if app.db == nil {
		return nil
	}
	return app.db.PingContext(ctx)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is canceled or a termination signal is received.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "session_mode", app.config.SessionMode)

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "closing db", "error", err)
		}
	}
	app.logger.Info(context.Background(), "App stopped")
}

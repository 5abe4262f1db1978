// Package server assembles the recipekeeper server. It opens the database,
// applies migrations and runs the HTTP boundary, the gRPC boundary and the
// expired-session sweeper until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/recipekeeper/internal/cryptox"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/dmitrijs2005/recipekeeper/internal/server/config"
	"github.com/dmitrijs2005/recipekeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/recipekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/recipekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/recipekeeper/internal/server/services"
	"github.com/dmitrijs2005/recipekeeper/internal/server/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	gs "github.com/dmitrijs2005/recipekeeper/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	store    *store.Store
	repos    repomanager.RepositoryManager
	sessions *services.SessionService
	auth     *services.AuthService
	authn    *auth.Authenticator
	registry *prometheus.Registry
}

func NewApp(c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	st := store.New(store.Options{
		DSN:             c.DatabaseDSN,
		MaxConns:        c.DBMaxConns,
		MinConns:        c.DBMinConns,
		MaxConnLifetime: c.DBMaxConnLifetime,
		ConnectRetries:  c.DBConnectRetries,
	}, logger)

	repos := repomanager.NewPostgresRepositoryManager()
	sessions := services.NewSessionService(st, repos, c.SessionDuration, logger)
	users := services.NewUserDirectory(st, repos)
	authService := services.NewAuthService(users, cryptox.NewDefaultHasher(), logger)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.RegisterMetrics(reg)

	return &App{
		config:   c,
		logger:   logger,
		store:    st,
		repos:    repos,
		sessions: sessions,
		auth:     authService,
		authn:    auth.NewAuthenticator(sessions, logger),
		registry: reg,
	}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

// prepareStore opens the database and brings the schema up to date.
func (app *App) prepareStore(ctx context.Context) error {
	if err := app.store.Open(ctx); err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	db, err := app.store.DB(ctx)
	if err != nil {
		return fmt.Errorf("db init error: %w", err)
	}
	if err := app.repos.RunMigrations(ctx, db); err != nil {
		return fmt.Errorf("migration error: %w", err)
	}
	return nil
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	gin.SetMode(gin.ReleaseMode)

	cookies := httpapi.NewCookieManager(app.config.CookieDomain, app.config.CookieSecure, app.config.CookieMaxAge())
	h := httpapi.NewHandler(app.auth, app.sessions, app.store, cookies, app.logger)
	router := httpapi.NewRouter(h, app.authn, app.logger, httpapi.RouterOptions{
		CORSAllowedOrigins: app.config.CORSAllowedOrigins,
		Gatherer:           app.registry,
	})

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, router, app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authn, app.sessions, app.store)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a termination signal arrives or one of
// the servers fails. The store is closed before Run returns.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	defer func() {
		if err := app.store.Close(); err != nil {
			app.logger.Error(ctx, "error closing store", "error", err)
		}
	}()

	if err := app.prepareStore(ctx); err != nil {
		return err
	}

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.sessions.RunSweeper(ctx, app.config.SweepInterval)
	}()

	wg.Wait()

	app.logger.Info(context.WithoutCancel(ctx), "App stopped")
	return nil
}

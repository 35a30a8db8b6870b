package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/ltcms/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/ltcms/internal/auth/http"
	"github.com/aussiebroadwan/ltcms/internal/auth/service"
	"github.com/aussiebroadwan/ltcms/internal/auth/store"
	"github.com/aussiebroadwan/ltcms/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/ltcms/pkg/cryptox"
	"github.com/aussiebroadwan/ltcms/pkg/csrfx"
	"github.com/aussiebroadwan/ltcms/pkg/httpx"
	"github.com/aussiebroadwan/ltcms/pkg/jwtx"
	"github.com/aussiebroadwan/ltcms/pkg/secretx"
	"github.com/aussiebroadwan/ltcms/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the ltcms auth core with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	secrets *secretx.Registry
	db      store.Store
	tokens  *jwtx.Service
	csrf    *csrfx.Manager
	hasher  *cryptox.Hasher

	// Services
	sessionService      *service.SessionService
	loginService        *service.LoginService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application. The secret registry is built before
// anything else; a weak or missing secret fails here, before the database
// is opened or a listener exists.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "ltcms",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	secrets, err := secretx.Load(cfg.BearerSecret, cfg.CSRFSecret)
	if err != nil {
		return nil, fmt.Errorf("invalid secret configuration: %w", err)
	}
	app.secrets = secrets

	if err := app.initCrypto(); err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()

	ctx := slogx.WithContext(context.Background(), app.logger)
	err = app.bootstrapService.EnsureAdmin(ctx, domain.BootstrapData{
		AdminUsername: cfg.AdminUsername,
		AdminPassword: cfg.AdminPassword,
	})
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	app.initHTTP()

	return app, nil
}

// Handler exposes the root handler, mainly for in-process tests.
func (app *Application) Handler() http.Handler { return app.router }

// Router returns the router so content handlers can be mounted before Run.
func (app *Application) Router() *httpapi.Router { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("ltcms starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"secure_cookies", !app.cfg.InsecureCookies,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		// Perform graceful shutdown
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down ltcms...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("ltcms stopped")
	return nil
}

// initCrypto builds the token services from the validated secrets.
func (app *Application) initCrypto() error {
	tokens, err := jwtx.NewService(app.secrets.Bearer())
	if err != nil {
		return fmt.Errorf("failed to initialize bearer tokens: %w", err)
	}
	csrf, err := csrfx.NewManager(app.secrets.CSRF())
	if err != nil {
		return fmt.Errorf("failed to initialize csrf tokens: %w", err)
	}

	app.tokens = tokens
	app.csrf = csrf
	app.hasher = cryptox.NewHasher(cryptox.DefaultCost)
	return nil
}

// initDatabase initializes the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile, app.cfg.DatabaseMaxConns)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Tokens: app.tokens,
		CSRF:   app.csrf,
		Store:  app.db,
	}
	app.loginService = &service.LoginService{
		Store:    app.db,
		Hasher:   app.hasher,
		Sessions: app.sessionService,
		Lockout:  store.DefaultLockout,
		Delay:    service.LoginDelay,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:  app.db,
		Hasher: app.hasher,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	httpx.TrustProxyHeaders = app.cfg.TrustProxyHeaders

	router := httpapi.NewRouter(app.secrets, BuildVersion, app.db, app.logger)

	// Extractor runs before the guard, and both before any handler.
	router.Authn = &httpx.Authenticator{
		Verifier:  app.tokens,
		Blacklist: app.db.Blacklist(),
	}
	router.Guard = &httpx.CSRFGuard{Validator: app.csrf}
	router.Cookies = httpx.CookieBinder{Secure: !app.cfg.InsecureCookies, Logger: app.logger}

	router.LoginService = app.loginService
	router.SessionService = app.sessionService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

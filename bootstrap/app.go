package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"whiteknight/api"
	"whiteknight/config"
	"whiteknight/service"
	"whiteknight/storage"
	"whiteknight/util/goroutine"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

// App represents the investigation API with all its components.
type App struct {
	// Configuration
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	// Storage
	Store storage.Store

	// Events
	Hub    *api.Hub
	Events *EventSinks

	// Services
	Service   *service.InvestigationService
	APIServer *api.API

	TracerProvider *sdktrace.TracerProvider

	// Lifecycle
	serviceWg *sync.WaitGroup
	cancel    context.CancelFunc
	closeOnce sync.Once
}

// NewApp loads configuration and logging, then initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	cfg, err := InitConfig()
	if err != nil {
		return nil, err
	}

	logger, _, err := InitLogger(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewAppWithConfig(ctx, cfg, logger)
}

// NewAppWithConfig initializes all components from an already loaded config.
func NewAppWithConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	sugar := logger.Sugar()
	appCtx, cancel := context.WithCancel(ctx)

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Sugar:     sugar,
		serviceWg: &sync.WaitGroup{},
		cancel:    cancel,
	}

	sugar.Info("WhiteKnight investigation API starting...")
	logConfig(cfg, sugar)

	tp, err := InitTracing(cfg, sugar)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}
	app.TracerProvider = tp

	store, err := InitStore(appCtx, cfg, sugar)
	if err != nil {
		app.closeResources()
		return nil, err
	}
	app.Store = store

	app.Hub = api.NewHub(appCtx, sugar)

	events, err := InitEventSinks(appCtx, cfg, app.Hub, sugar)
	if err != nil {
		app.closeResources()
		return nil, fmt.Errorf("failed to initialize event sinks: %w", err)
	}
	app.Events = events

	app.Service = service.NewInvestigationService(store, sugar, service.WithPublisher(events.Notifier))
	app.APIServer = api.NewAPI(app.Service, app.Hub, cfg, sugar)

	return app, nil
}

// Start starts the dashboard stream hub and the API server.
func (a *App) Start(ctx context.Context) error {
	goroutine.Go(a.serviceWg, "dashboard-hub", a.Sugar, a.Hub.Start)

	a.startAPIServer()
	return nil
}

// startAPIServer runs the API server in the background until Shutdown.
func (a *App) startAPIServer() {
	goroutine.Go(a.serviceWg, "api-server", a.Sugar, func() {
		addr := a.Config.APIAddr()
		a.Sugar.Infof("API server started on %s", addr)

		var err error
		if a.Config.API.TLS {
			err = a.APIServer.StartTLS(addr, a.Config.API.CertFile, a.Config.API.KeyFile)
		} else {
			err = a.APIServer.Start(addr)
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Sugar.Errorf("API server error: %v", err)
		}
	})
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown() {
	waitForSignal()
}

func waitForSignal() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
	signal.Stop(c)
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	a.Sugar.Info("Phase 1: Stopping API server...")
	if a.APIServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.APIServer.Stop(ctx); err != nil {
			a.Sugar.Errorw("Failed to stop API server", "error", err)
		}
		cancel()
	}

	a.Sugar.Info("Phase 2: Stopping dashboard stream...")
	if a.Hub != nil {
		a.Hub.Stop()
	}

	a.Sugar.Info("Phase 3: Waiting for service goroutines to complete...")
	done := make(chan struct{})
	go func() {
		a.serviceWg.Wait()
		close(done)
	}()
	select {
	case <-done:
		a.Sugar.Info("All service goroutines stopped successfully")
	case <-time.After(10 * time.Second):
		a.Sugar.Warn("Service goroutine shutdown timed out")
	}

	a.Sugar.Info("Phase 4: Closing event sinks, tracing and storage...")
	a.closeResources()

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}

// closeResources releases everything NewAppWithConfig acquired. Safe to call
// on a partially initialized App and more than once.
func (a *App) closeResources() {
	a.closeOnce.Do(func() {
		if a.Events != nil {
			if err := a.Events.Close(); err != nil {
				a.Sugar.Errorw("Failed to close event sinks", "error", err)
			}
		}
		if a.TracerProvider != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := a.TracerProvider.Shutdown(ctx); err != nil {
				a.Sugar.Errorw("Failed to flush traces", "error", err)
			}
			cancel()
		}
		if a.Store != nil {
			if err := a.Store.Close(); err != nil {
				a.Sugar.Errorw("Failed to close store", "error", err)
			}
		}
		a.cancel()
	})
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"whiteknight/config"
	"whiteknight/statuspage"
	"whiteknight/util/goroutine"

	"go.uber.org/zap"
)

// StatusPageApp runs the static status page. It shares nothing with App
// besides configuration and logging.
type StatusPageApp struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger
	Server *statuspage.Server

	wg sync.WaitGroup
}

// NewStatusPageApp loads configuration and builds the status page server.
func NewStatusPageApp() (*StatusPageApp, error) {
	cfg, err := InitConfig()
	if err != nil {
		return nil, err
	}

	logger, sugar, err := InitLogger(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	server, err := statuspage.NewServer(sugar)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize status page: %w", err)
	}

	return &StatusPageApp{Config: cfg, Logger: logger, Sugar: sugar, Server: server}, nil
}

// Start serves the status page in the background.
func (s *StatusPageApp) Start() {
	goroutine.Go(&s.wg, "status-page", s.Sugar, func() {
		if err := s.Server.Start(s.Config.StatusPageAddr()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Sugar.Errorf("Status page error: %v", err)
		}
	})
}

// WaitForShutdown blocks until a shutdown signal is received.
func (s *StatusPageApp) WaitForShutdown() {
	waitForSignal()
}

// Shutdown stops the server and waits for it to exit.
func (s *StatusPageApp) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.Server.Stop(ctx); err != nil {
		s.Sugar.Errorw("Failed to stop status page", "error", err)
	}
	s.wg.Wait()
	s.Sugar.Info("Status page stopped")
	_ = s.Logger.Sync()
}

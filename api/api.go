// Package api WhiteKnight threat-investigation API
//
// Exposes cases, signals, threats, recommendations and the aggregate dashboard
// over JSON/HTTP, plus a WebSocket stream of domain events.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"whiteknight/config"
	"whiteknight/core"
	"whiteknight/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// rateLimiterEntry holds a rate limiter with last seen time
type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// InvestigationService is the domain surface the handlers depend on.
// *service.InvestigationService satisfies it.
type InvestigationService interface {
	CaseService
	SignalService
	ThreatService
	RecommendationService
	Dashboard(ctx context.Context, caseID string) (*core.Dashboard, error)
}

var _ InvestigationService = (*service.InvestigationService)(nil)

// API holds the API server
type API struct {
	router         *mux.Router
	handler        http.Handler
	serverMu       sync.Mutex
	server         *http.Server
	stopped        bool
	service        InvestigationService
	hub            *Hub
	validate       *validator.Validate
	config         *config.Config
	logger         *zap.SugaredLogger
	tracer         trace.Tracer
	rateLimiters   map[string]*rateLimiterEntry
	rateLimitersMu sync.Mutex
	stopCh         chan struct{}
	stopOnce       sync.Once
}

// NewAPI creates a new API server. hub may be nil, in which case the
// dashboard stream route is not registered.
func NewAPI(svc InvestigationService, hub *Hub, cfg *config.Config, logger *zap.SugaredLogger) *API {
	api := &API{
		router:       mux.NewRouter(),
		service:      svc,
		hub:          hub,
		validate:     validator.New(),
		config:       cfg,
		logger:       logger,
		tracer:       newTracer(),
		rateLimiters: make(map[string]*rateLimiterEntry),
		stopCh:       make(chan struct{}),
	}
	api.validate.RegisterTagNameFunc(jsonFieldName)
	api.setupRoutes()
	go api.cleanupRateLimiters()
	return api
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.requestIDMiddleware)
	a.router.Use(a.rateLimitMiddleware)
	// Preflight requests are answered before routing, so no route has to list OPTIONS
	a.handler = a.corsMiddleware(a.router)

	a.router.NotFoundHandler = http.HandlerFunc(a.routeNotFound)
	a.router.MethodNotAllowedHandler = http.HandlerFunc(a.methodNotAllowed)

	a.router.HandleFunc("/", a.root).Methods("GET")
	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.HandleFunc("/api/info", a.info).Methods("GET")

	a.router.HandleFunc("/api/case", a.createCase).Methods("POST")
	a.router.HandleFunc("/api/cases", a.listCases).Methods("GET")
	a.router.HandleFunc("/api/cases/{case_id}", a.getCase).Methods("GET")
	a.router.HandleFunc("/api/cases/{case_id}", a.updateCase).Methods("PUT")
	a.router.HandleFunc("/api/cases/{case_id}", a.deleteCase).Methods("DELETE")
	a.router.HandleFunc("/api/cases/{case_id}/evidence", a.addEvidence).Methods("POST")

	a.router.HandleFunc("/api/signal", a.logSignal).Methods("POST")
	a.router.HandleFunc("/api/signals", a.listSignals).Methods("GET")
	a.router.HandleFunc("/api/signals/{signal_id}", a.getSignal).Methods("GET")

	a.router.HandleFunc("/api/threat", a.detectThreat).Methods("POST")
	a.router.HandleFunc("/api/threats", a.listThreats).Methods("GET")
	a.router.HandleFunc("/api/threats/{threat_id}", a.getThreat).Methods("GET")

	a.router.HandleFunc("/api/ai/recommend", a.recommend).Methods("POST")
	a.router.HandleFunc("/api/ai/recommendations", a.listRecommendations).Methods("GET")
	a.router.HandleFunc("/api/ai/recommendations/{recommendation_id}/apply", a.applyRecommendation).Methods("POST")

	a.router.HandleFunc("/api/dashboard", a.getDashboard).Methods("GET")
	if a.hub != nil {
		a.router.HandleFunc("/api/dashboard/stream", a.dashboardStream).Methods("GET")
	}

	a.router.Handle("/metrics", promhttp.Handler())
}

// Handler returns the fully wired router
func (a *API) Handler() http.Handler {
	return a.handler
}

// Start starts the API server. It returns http.ErrServerClosed if Stop
// has already been called.
func (a *API) Start(addr string) error {
	srv, err := a.newServer(addr)
	if err != nil {
		return err
	}
	return srv.ListenAndServe()
}

// StartTLS starts the API server with TLS
func (a *API) StartTLS(addr, certFile, keyFile string) error {
	srv, err := a.newServer(addr)
	if err != nil {
		return err
	}
	return srv.ListenAndServeTLS(certFile, keyFile)
}

func (a *API) newServer(addr string) (*http.Server, error) {
	a.serverMu.Lock()
	defer a.serverMu.Unlock()
	if a.stopped {
		return nil, http.ErrServerClosed
	}
	a.server = &http.Server{
		Addr:         addr,
		Handler:      a.handler,
		ReadTimeout:  a.config.API.ReadTimeout,
		WriteTimeout: a.config.API.WriteTimeout,
		IdleTimeout:  a.config.API.IdleTimeout,
	}
	return a.server, nil
}

// Stop stops the API server. A server that has not started yet never will.
func (a *API) Stop(ctx context.Context) error {
	a.stopOnce.Do(func() { close(a.stopCh) })

	a.serverMu.Lock()
	a.stopped = true
	srv := a.server
	a.serverMu.Unlock()

	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

// Package statuspage serves the static SOC status dashboard.
//
// Everything it shows comes from an embedded fixture. It never talks to the
// entity store; the only live value is the timestamp on JSON responses.
package statuspage

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed assets/fixture.yaml assets/index.html.tmpl
var assets embed.FS

// Status is the body of GET /api/status
type Status struct {
	Service           string  `yaml:"service" json:"service"`
	Status            string  `yaml:"status" json:"status"`
	AIModel           string  `yaml:"ai_model" json:"ai_model"`
	Version           string  `yaml:"version" json:"version"`
	Timestamp         string  `yaml:"-" json:"timestamp"`
	Uptime            string  `yaml:"uptime" json:"uptime"`
	ThreatsDetected   int     `yaml:"threats_detected" json:"threats_detected"`
	FalsePositiveRate float64 `yaml:"false_positive_rate" json:"false_positive_rate"`
}

// Threat is one sample entry of GET /api/threats
type Threat struct {
	ID          int    `yaml:"id" json:"id"`
	Severity    string `yaml:"severity" json:"severity"`
	Title       string `yaml:"title" json:"title"`
	Description string `yaml:"description" json:"description"`
	Summary     string `yaml:"summary" json:"-"`
	Timestamp   string `yaml:"-" json:"timestamp"`
}

// Class is the CSS class used for the severity in the threat list
func (t Threat) Class() string {
	return strings.ToLower(t.Severity)
}

// ThreatsResponse is the body of GET /api/threats
type ThreatsResponse struct {
	ActiveThreats []Threat `json:"active_threats"`
}

type labelledValue struct {
	Label string `yaml:"label"`
	Value string `yaml:"value"`
}

type logLine struct {
	Time    string `yaml:"time"`
	Level   string `yaml:"level"`
	Message string `yaml:"message"`
}

// Fixture is the sample data behind the page and the JSON endpoints
type Fixture struct {
	Status  Status          `yaml:"status"`
	Threats []Threat        `yaml:"threats"`
	Header  []labelledValue `yaml:"header"`
	Log     []logLine       `yaml:"log"`
	Stats   []labelledValue `yaml:"stats"`
	Stack   []string        `yaml:"stack"`
	Footer  struct {
		LastUpdate string `yaml:"last_update"`
	} `yaml:"footer"`
}

// LoadFixture parses the embedded fixture
func LoadFixture() (*Fixture, error) {
	data, err := assets.ReadFile("assets/fixture.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded fixture: %w", err)
	}
	return parseFixture(data)
}

func parseFixture(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	if f.Status.Service == "" {
		return nil, fmt.Errorf("fixture has no status section")
	}
	return &f, nil
}

// Server serves the status page
type Server struct {
	router  *mux.Router
	mu      sync.Mutex
	server  *http.Server
	stopped bool
	fixture *Fixture
	page    []byte
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewServer renders the page once and wires the routes
func NewServer(logger *zap.SugaredLogger) (*Server, error) {
	fixture, err := LoadFixture()
	if err != nil {
		return nil, err
	}

	tmpl, err := template.ParseFS(assets, "assets/index.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse status page template: %w", err)
	}
	var page bytes.Buffer
	if err := tmpl.Execute(&page, fixture); err != nil {
		return nil, fmt.Errorf("failed to render status page: %w", err)
	}

	s := &Server{
		router:  mux.NewRouter(),
		fixture: fixture,
		page:    page.Bytes(),
		logger:  logger,
		now:     time.Now,
	}
	s.router.HandleFunc("/", s.index).Methods("GET")
	s.router.HandleFunc("/api/status", s.status).Methods("GET")
	s.router.HandleFunc("/api/threats", s.threats).Methods("GET")
	return s, nil
}

// Handler returns the router
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until Stop is called
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return http.ErrServerClosed
	}
	s.server = srv
	s.mu.Unlock()

	s.logger.Infow("Status page listening", "addr", addr)
	return srv.ListenAndServe()
}

// Stop shuts the server down. A server that has not started yet never will.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.stopped = true
	srv := s.server
	s.mu.Unlock()
	if srv != nil {
		return srv.Shutdown(ctx)
	}
	return nil
}

func (s *Server) timestamp() string {
	return s.now().Format("2006-01-02T15:04:05.000000")
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(s.page); err != nil {
		s.logger.Warnw("Failed to write status page", "error", err)
	}
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	status := s.fixture.Status
	status.Timestamp = s.timestamp()
	s.respondJSON(w, status)
}

func (s *Server) threats(w http.ResponseWriter, r *http.Request) {
	ts := s.timestamp()
	threats := make([]Threat, len(s.fixture.Threats))
	for i, t := range s.fixture.Threats {
		t.Timestamp = ts
		threats[i] = t
	}
	s.respondJSON(w, ThreatsResponse{ActiveThreats: threats})
}

func (s *Server) respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Errorw("Failed to encode JSON response", "error", err)
	}
}

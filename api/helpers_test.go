package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"whiteknight/config"
	"whiteknight/service"
	"whiteknight/storage"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEnv bundles an API wired to a real service over a memory store
type testEnv struct {
	api   *API
	hub   *Hub
	store storage.Store
}

func newTestConfig() *config.Config {
	cfg := &config.Config{}
	cfg.API.Host = "127.0.0.1"
	cfg.API.Port = 8000
	cfg.API.ReadTimeout = 5 * time.Second
	cfg.API.WriteTimeout = 5 * time.Second
	cfg.API.AllowedOrigins = []string{"http://localhost:8888"}
	// High limits so tests never trip the limiter by accident
	cfg.API.RateLimit.RequestsPerSecond = 100000
	cfg.API.RateLimit.Burst = 100000
	return cfg
}

func setupTestAPI(t *testing.T) *testEnv {
	return setupTestAPIWithConfig(t, newTestConfig())
}

func setupTestAPIWithConfig(t *testing.T, cfg *config.Config) *testEnv {
	t.Helper()
	logger := zap.NewNop().Sugar()

	ctx, cancel := context.WithCancel(context.Background())
	hub := NewHub(ctx, logger)
	go hub.Start()

	store := storage.NewMemoryStore()
	svc := service.NewInvestigationService(store, logger, service.WithPublisher(hub))
	a := NewAPI(svc, hub, cfg, logger)

	t.Cleanup(func() {
		_ = a.Stop(context.Background())
		cancel()
		hub.Stop()
		_ = store.Close()
	})

	return &testEnv{api: a, hub: hub, store: store}
}

// do sends a request through the router. body may be nil, a string (sent
// verbatim) or any value that is JSON-encoded.
func (e *testEnv) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.api.Handler().ServeHTTP(rr, req)
	return rr
}

// decode unmarshals a recorded response into T
func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), "body: %s", rr.Body.String())
	return out
}

func (e *testEnv) createCase(t *testing.T, title string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/case", map[string]string{
		"title":        title,
		"description":  "test case",
		"investigator": "analyst",
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[CaseResponse](t, rr).Case.CaseID
}

func (e *testEnv) logSignal(t *testing.T, signalType string, caseID string) string {
	t.Helper()
	path := "/api/signal"
	if caseID != "" {
		path += "?case_id=" + caseID
	}
	rr := e.do(t, http.MethodPost, path, map[string]interface{}{
		"signal_type": signalType,
		"location":    "Pier 39",
		"strength":    80,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[SignalResponse](t, rr).Signal.SignalID
}

func (e *testEnv) detectThreat(t *testing.T, signalID, level, caseID string) string {
	t.Helper()
	path := "/api/threat?signal_id=" + signalID + "&threat_level=" + level
	if caseID != "" {
		path += "&case_id=" + caseID
	}
	rr := e.do(t, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[ThreatResponse](t, rr).Threat.ThreatID
}

func (e *testEnv) recommend(t *testing.T, threatID string) string {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/ai/recommend?threat_id="+threatID, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return decode[RecommendationResponse](t, rr).Recommendation.RecommendationID
}

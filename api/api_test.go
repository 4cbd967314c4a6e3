package api

import (
	"context"
	"errors"
	"net"
	"net/http"
	"testing"
	"time"

	"whiteknight/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// ============================================================================
// Metadata
// ============================================================================

func TestRoot(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[RootResponse](t, rr)
	assert.Equal(t, "WhiteKnight Security", resp.Platform)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Equal(t, "online", resp.Status)
	assert.Equal(t, "Digital Forensics for Human Trafficking Investigation", resp.Mission)
}

func TestHealthCheck(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rr)["status"])
}

func TestInfo(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/info", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	resp := decode[InfoResponse](t, rr)
	assert.Equal(t, "WhiteKnight Security Platform", resp.Name)
	assert.Contains(t, resp.Endpoints, "/api/case")
	assert.Contains(t, resp.Endpoints, "/api/dashboard")
}

func TestUnknownRoute_ReturnsJSON404(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/nope", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.False(t, decode[errorResponse](t, rr).Success)
}

func TestRouting_NotFoundVersusMethodNotAllowed(t *testing.T) {
	env := setupTestAPI(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown path GET", http.MethodGet, "/api/nope", http.StatusNotFound},
		{"unknown path POST", http.MethodPost, "/api/nope", http.StatusNotFound},
		{"unknown nested path", http.MethodGet, "/api/cases/x/y/z", http.StatusNotFound},
		{"known path wrong method", http.MethodPatch, "/api/case", http.StatusMethodNotAllowed},
		{"preflight on unknown path", http.MethodOptions, "/api/nope", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, rr.Code, rr.Body.String())
		})
	}
}

func TestStop_BeforeStartKeepsServerDown(t *testing.T) {
	a := NewAPI(nil, nil, newTestConfig(), zap.NewNop().Sugar())
	require.NoError(t, a.Stop(context.Background()))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	errCh := make(chan error, 1)
	go func() { errCh <- a.Start(addr) }()

	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, http.ErrServerClosed), "got %v", err)
	case <-time.After(2 * time.Second):
		_ = a.Stop(context.Background())
		t.Fatal("Start listened after Stop")
	}

	_, err = net.DialTimeout("tcp", addr, 200*time.Millisecond)
	assert.Error(t, err, "nothing should be listening")
}

func TestStop_ShutsDownRunningServer(t *testing.T) {
	a := NewAPI(nil, nil, newTestConfig(), zap.NewNop().Sugar())

	errCh := make(chan error, 1)
	go func() { errCh <- a.Start("127.0.0.1:0") }()

	// Wait until Start has built its server so Stop has something to close
	require.Eventually(t, func() bool {
		a.serverMu.Lock()
		defer a.serverMu.Unlock()
		return a.server != nil
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, a.Stop(context.Background()))
	select {
	case err := <-errCh:
		assert.True(t, errors.Is(err, http.ErrServerClosed), "got %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestAPI(t)
	env.createCase(t, "metrics")

	rr := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "whiteknight_cases_created_total")
}

// ============================================================================
// Cases
// ============================================================================

func TestCreateCase_ThenGet(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/case", map[string]string{
		"title":        "C1",
		"description":  "harbour beacons",
		"investigator": "j.doe",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	created := decode[CaseResponse](t, rr)
	assert.True(t, created.Success)
	assert.Equal(t, "Case created successfully", created.Message)
	require.NotNil(t, created.Case)
	assert.Equal(t, "medium", created.Case.Priority)
	assert.Equal(t, core.CaseStatusActive, created.Case.Status)

	rr = env.do(t, http.MethodGet, "/api/cases/"+created.Case.CaseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[CaseResponse](t, rr)
	assert.Equal(t, "C1", got.Case.Title)
	assert.Equal(t, "harbour beacons", got.Case.Description)
	assert.Equal(t, "j.doe", got.Case.Investigator)
	assert.Equal(t, 0, got.Case.EvidenceCount)
	assert.Empty(t, got.Case.Evidence)
}

func TestCreateCase_Validation(t *testing.T) {
	env := setupTestAPI(t)

	tests := []struct {
		name        string
		body        interface{}
		wantMessage string
	}{
		{"missing investigator", map[string]string{"title": "t", "description": "d"}, "investigator"},
		{"missing everything", map[string]string{}, "title"},
		{"malformed json", `{"title": "t",`, "Invalid JSON"},
		{"wrong type", map[string]interface{}{"title": 5, "description": "d", "investigator": "i"}, "title"},
		{"empty body", "", "Request body is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/case", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
			resp := decode[errorResponse](t, rr)
			assert.False(t, resp.Success)
			assert.Contains(t, resp.Message, tt.wantMessage)
		})
	}
}

func TestCreateCase_EmptyStringsAreAccepted(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/case", map[string]string{
		"title":        "",
		"description":  "",
		"investigator": "",
		"priority":     "critical",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "critical", decode[CaseResponse](t, rr).Case.Priority)
}

func TestListCases(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/cases", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	empty := decode[CaseListResponse](t, rr)
	assert.Equal(t, 0, empty.TotalCases)
	assert.NotNil(t, empty.Cases)

	first := env.createCase(t, "first")
	second := env.createCase(t, "second")

	resp := decode[CaseListResponse](t, env.do(t, http.MethodGet, "/api/cases", nil))
	require.Equal(t, 2, resp.TotalCases)
	assert.Equal(t, first, resp.Cases[0].CaseID)
	assert.Equal(t, second, resp.Cases[1].CaseID)
}

func TestUpdateCase(t *testing.T) {
	env := setupTestAPI(t)
	id := env.createCase(t, "before")

	rr := env.do(t, http.MethodPut, "/api/cases/"+id, map[string]string{
		"title":        "after",
		"description":  "new",
		"investigator": "someone else",
		"priority":     "high",
	})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[CaseResponse](t, rr)
	assert.Equal(t, "Case updated successfully", resp.Message)
	assert.Equal(t, "after", resp.Case.Title)
	assert.Equal(t, "high", resp.Case.Priority)
	assert.Equal(t, id, resp.Case.CaseID)

	rr = env.do(t, http.MethodPut, "/api/cases/missing", map[string]string{
		"title": "x", "description": "x", "investigator": "x",
	})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPut, "/api/cases/"+id, map[string]string{"title": "x"})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestDeleteCase(t *testing.T) {
	env := setupTestAPI(t)
	id := env.createCase(t, "doomed")

	rr := env.do(t, http.MethodDelete, "/api/cases/"+id, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[CaseResponse](t, rr)
	assert.Equal(t, "Case deleted successfully", resp.Message)
	assert.Equal(t, "doomed", resp.Case.Title)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/cases/"+id, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/cases/"+id, nil).Code)
}

func TestGetCase_NotFound(t *testing.T) {
	env := setupTestAPI(t)
	env.createCase(t, "unrelated")

	rr := env.do(t, http.MethodGet, "/api/cases/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	resp := decode[errorResponse](t, rr)
	assert.False(t, resp.Success)
	assert.Equal(t, "Case does-not-exist not found", resp.Message)
}

func TestAddEvidence(t *testing.T) {
	env := setupTestAPI(t)
	id := env.createCase(t, "evidence")

	for i := 1; i <= 2; i++ {
		rr := env.do(t, http.MethodPost, "/api/cases/"+id+"/evidence", map[string]interface{}{
			"kind":  "photo",
			"index": i,
		})
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[EvidenceResponse](t, rr)
		assert.Equal(t, "Evidence added successfully", resp.Message)
		assert.Equal(t, id, resp.CaseID)
		assert.Equal(t, i, resp.EvidenceCount)
		assert.NotEmpty(t, resp.EvidenceID)
	}

	got := decode[CaseResponse](t, env.do(t, http.MethodGet, "/api/cases/"+id, nil))
	require.Len(t, got.Case.Evidence, 2)
	assert.Equal(t, "photo", got.Case.Evidence[0].Data["kind"])
}

func TestAddEvidence_Errors(t *testing.T) {
	env := setupTestAPI(t)
	id := env.createCase(t, "evidence")

	rr := env.do(t, http.MethodPost, "/api/cases/missing/evidence", map[string]string{"a": "b"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = env.do(t, http.MethodPost, "/api/cases/"+id+"/evidence", `["not", "an", "object"]`)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

// ============================================================================
// Signals
// ============================================================================

func TestLogSignal(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/signal", map[string]interface{}{
		"signal_type": "wifi",
		"location":    "Pier 39",
		"strength":    80,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[SignalResponse](t, rr)
	assert.Equal(t, "Signal logged: wifi", resp.Message)
	require.NotNil(t, resp.Signal)
	assert.Equal(t, 80, resp.Signal.Strength)
	assert.Equal(t, "source_"+resp.Signal.SignalID[:8], resp.Signal.SourceID)
	assert.NotEmpty(t, resp.Signal.Timestamp)

	rr = env.do(t, http.MethodGet, "/api/signals/"+resp.Signal.SignalID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Pier 39", decode[SignalResponse](t, rr).Signal.Location)
}

func TestLogSignal_Validation(t *testing.T) {
	env := setupTestAPI(t)

	tests := []struct {
		name string
		body interface{}
	}{
		{"non-integer strength", map[string]interface{}{"signal_type": "ble", "location": "x", "strength": "strong"}},
		{"fractional strength", map[string]interface{}{"signal_type": "ble", "location": "x", "strength": 1.5}},
		{"missing strength", map[string]interface{}{"signal_type": "ble", "location": "x"}},
		{"missing signal type", map[string]interface{}{"location": "x", "strength": 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, http.MethodPost, "/api/signal", tt.body)
			assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
		})
	}
}

func TestLogSignal_IncrementsExistingCaseOnly(t *testing.T) {
	env := setupTestAPI(t)
	caseID := env.createCase(t, "tracked")

	env.logSignal(t, "ble", caseID)
	got := decode[CaseResponse](t, env.do(t, http.MethodGet, "/api/cases/"+caseID, nil))
	assert.Equal(t, 1, got.Case.SignalsTracked)

	// Unknown case: still succeeds, counters untouched
	env.logSignal(t, "ble", "no-such-case")
	got = decode[CaseResponse](t, env.do(t, http.MethodGet, "/api/cases/"+caseID, nil))
	assert.Equal(t, 1, got.Case.SignalsTracked)
}

func TestLogSignal_CaseIDFromBody(t *testing.T) {
	env := setupTestAPI(t)
	caseID := env.createCase(t, "body")

	rr := env.do(t, http.MethodPost, "/api/signal", map[string]interface{}{
		"signal_type": "cell",
		"location":    "x",
		"strength":    10,
		"case_id":     caseID,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, caseID, decode[SignalResponse](t, rr).Signal.CaseID)
}

func TestListSignals_Filters(t *testing.T) {
	env := setupTestAPI(t)
	caseID := env.createCase(t, "filters")

	env.logSignal(t, "ble", caseID)
	env.logSignal(t, "wifi", caseID)
	env.logSignal(t, "ble", "")

	all := decode[SignalListResponse](t, env.do(t, http.MethodGet, "/api/signals", nil))
	assert.Equal(t, 3, all.TotalSignals)

	ble := decode[SignalListResponse](t, env.do(t, http.MethodGet, "/api/signals?signal_type=ble", nil))
	assert.Equal(t, 2, ble.TotalSignals)

	both := decode[SignalListResponse](t, env.do(t, http.MethodGet, "/api/signals?signal_type=ble&case_id="+caseID, nil))
	require.Equal(t, 1, both.TotalSignals)
	assert.Equal(t, core.SignalTypeBLE, both.Signals[0].SignalType)
}

func TestGetSignal_NotFound(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/signals/ghost", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Signal ghost not found", decode[errorResponse](t, rr).Message)
}

// ============================================================================
// Threats
// ============================================================================

func TestDetectThreat(t *testing.T) {
	env := setupTestAPI(t)
	caseID := env.createCase(t, "threats")
	signalID := env.logSignal(t, "wifi", caseID)

	rr := env.do(t, http.MethodPost, "/api/threat?signal_id="+signalID+"&threat_level=high&case_id="+caseID, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[ThreatResponse](t, rr)
	assert.Equal(t, "Threat detected: high", resp.Message)
	assert.Equal(t, core.ThreatStatusDetected, resp.Threat.Status)
	assert.Equal(t, core.SignalTypeWiFi, resp.Threat.SignalType)
	assert.Equal(t, "Pier 39", resp.Threat.Location)
	assert.False(t, resp.Threat.MitigationApplied)

	got := decode[CaseResponse](t, env.do(t, http.MethodGet, "/api/cases/"+caseID, nil))
	assert.Equal(t, 1, got.Case.ThreatsDetected)
}

func TestDetectThreat_DefaultLevelAndBody(t *testing.T) {
	env := setupTestAPI(t)
	signalID := env.logSignal(t, "ble", "")

	rr := env.do(t, http.MethodPost, "/api/threat", map[string]string{"signal_id": signalID})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.ThreatLevelMedium, decode[ThreatResponse](t, rr).Threat.ThreatLevel)
}

func TestDetectThreat_Errors(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/threat?signal_id=ghost", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Signal ghost not found", decode[errorResponse](t, rr).Message)

	// Nothing was created
	threats := decode[ThreatListResponse](t, env.do(t, http.MethodGet, "/api/threats", nil))
	assert.Equal(t, 0, threats.TotalThreats)

	rr = env.do(t, http.MethodPost, "/api/threat", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, decode[errorResponse](t, rr).Message, "signal_id")
}

func TestListThreats_Filters(t *testing.T) {
	env := setupTestAPI(t)
	caseID := env.createCase(t, "filters")
	signalID := env.logSignal(t, "cell", caseID)

	env.detectThreat(t, signalID, "high", caseID)
	env.detectThreat(t, signalID, "low", "")

	high := decode[ThreatListResponse](t, env.do(t, http.MethodGet, "/api/threats?threat_level=high", nil))
	assert.Equal(t, 1, high.TotalThreats)

	byCase := decode[ThreatListResponse](t, env.do(t, http.MethodGet, "/api/threats?case_id="+caseID, nil))
	assert.Equal(t, 1, byCase.TotalThreats)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/threats/ghost", nil).Code)
}

// ============================================================================
// Recommendations
// ============================================================================

func TestRecommend_BLECritical(t *testing.T) {
	env := setupTestAPI(t)
	signalID := env.logSignal(t, "ble", "")
	threatID := env.detectThreat(t, signalID, "critical", "")

	var first *core.Recommendation
	for i := 0; i < 2; i++ {
		rr := env.do(t, http.MethodPost, "/api/ai/recommend?threat_id="+threatID, nil)
		require.Equal(t, http.StatusOK, rr.Code)
		resp := decode[RecommendationResponse](t, rr)
		assert.Equal(t, "AI recommendation generated", resp.Message)
		assert.Equal(t, "BLE threat", resp.Recommendation.ThreatDescription)
		assert.Equal(t, core.RecommendationStatusPending, resp.Recommendation.Status)
		if first == nil {
			first = resp.Recommendation
			continue
		}
		assert.Equal(t, first.MitigationCommands, resp.Recommendation.MitigationCommands)
		assert.Equal(t, first.AIAnalysis, resp.Recommendation.AIAnalysis)
		assert.NotEqual(t, first.RecommendationID, resp.Recommendation.RecommendationID)
	}
	assert.Equal(t, core.MitigationCommands(core.SignalTypeBLE, core.ThreatLevelCritical), first.MitigationCommands)

	threat := decode[ThreatResponse](t, env.do(t, http.MethodGet, "/api/threats/"+threatID, nil))
	assert.Len(t, threat.Threat.AIRecommendations, 2)
}

func TestRecommend_Errors(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/ai/recommend?threat_id=ghost", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Threat ghost not found", decode[errorResponse](t, rr).Message)

	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/ai/recommend", nil).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, env.do(t, http.MethodPost, "/api/ai/recommend", "{bad").Code)
}

func TestApplyRecommendation(t *testing.T) {
	env := setupTestAPI(t)
	signalID := env.logSignal(t, "cell_tower", "")
	threatID := env.detectThreat(t, signalID, "critical", "")
	recID := env.recommend(t, threatID)

	rr := env.do(t, http.MethodPost, "/api/ai/recommendations/"+recID+"/apply", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	resp := decode[ApplyResponse](t, rr)
	assert.Equal(t, "Mitigation applied", resp.Message)
	assert.Equal(t, core.RecommendationStatusApplied, resp.Recommendation.Status)
	assert.Equal(t, resp.Recommendation.MitigationCommands, resp.CommandsExecuted)
	assert.NotEmpty(t, resp.CommandsExecuted)

	threat := decode[ThreatResponse](t, env.do(t, http.MethodGet, "/api/threats/"+threatID, nil))
	assert.Equal(t, core.ThreatStatusMitigated, threat.Threat.Status)
	assert.True(t, threat.Threat.MitigationApplied)
}

func TestApplyRecommendation_NotFoundMutatesNothing(t *testing.T) {
	env := setupTestAPI(t)
	signalID := env.logSignal(t, "wifi", "")
	threatID := env.detectThreat(t, signalID, "high", "")
	env.recommend(t, threatID)

	rr := env.do(t, http.MethodPost, "/api/ai/recommendations/ghost/apply", nil)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Recommendation ghost not found", decode[errorResponse](t, rr).Message)

	threat := decode[ThreatResponse](t, env.do(t, http.MethodGet, "/api/threats/"+threatID, nil))
	assert.Equal(t, core.ThreatStatusDetected, threat.Threat.Status)

	recs := decode[RecommendationListResponse](t, env.do(t, http.MethodGet, "/api/ai/recommendations?threat_id="+threatID, nil))
	require.Equal(t, 1, recs.TotalRecommendations)
	assert.Equal(t, core.RecommendationStatusPending, recs.Recommendations[0].Status)
}

// ============================================================================
// Dashboard
// ============================================================================

func TestDashboard_UnknownCaseIsNull(t *testing.T) {
	env := setupTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/dashboard?case_id=ghost", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"case":null`)

	resp := decode[DashboardResponse](t, rr)
	assert.True(t, resp.Success)
	assert.Nil(t, resp.Dashboard.Case)
	assert.Equal(t, 0, resp.Dashboard.RealTimeStatus.TotalThreats)
}

func TestDashboard_ActiveEqualsTotalMinusMitigated(t *testing.T) {
	env := setupTestAPI(t)
	signalID := env.logSignal(t, "ble", "")

	var threats []string
	for _, level := range []string{"critical", "high", "medium", "low"} {
		threats = append(threats, env.detectThreat(t, signalID, level, ""))
	}

	for i, threatID := range threats[:2] {
		recID := env.recommend(t, threatID)
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/api/ai/recommendations/"+recID+"/apply", nil).Code)

		d := decode[DashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard", nil)).Dashboard
		status := d.RealTimeStatus
		assert.Equal(t, status.TotalThreats-status.MitigatedThreats, status.ActiveThreats)
		assert.Equal(t, i+1, status.MitigatedThreats)
		assert.Len(t, d.ActiveThreats, status.ActiveThreats)
	}
}

// ============================================================================
// End to end
// ============================================================================

func TestEndToEndScenario(t *testing.T) {
	env := setupTestAPI(t)

	caseID := env.createCase(t, "C1")

	rr := env.do(t, http.MethodPost, "/api/signal?case_id="+caseID, map[string]interface{}{
		"signal_type": "wifi",
		"location":    "Harbour",
		"strength":    80,
	})
	require.Equal(t, http.StatusOK, rr.Code)
	signalID := decode[SignalResponse](t, rr).Signal.SignalID

	threatID := env.detectThreat(t, signalID, "high", caseID)
	recID := env.recommend(t, threatID)

	rr = env.do(t, http.MethodPost, "/api/ai/recommendations/"+recID+"/apply", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, core.RecommendationStatusApplied, decode[ApplyResponse](t, rr).Recommendation.Status)

	c := decode[CaseResponse](t, env.do(t, http.MethodGet, "/api/cases/"+caseID, nil)).Case
	assert.Equal(t, 1, c.ThreatsDetected)
	assert.Equal(t, 1, c.SignalsTracked)

	threat := decode[ThreatResponse](t, env.do(t, http.MethodGet, "/api/threats/"+threatID, nil)).Threat
	assert.Equal(t, core.ThreatStatusMitigated, threat.Status)

	d := decode[DashboardResponse](t, env.do(t, http.MethodGet, "/api/dashboard?case_id="+caseID, nil)).Dashboard
	assert.Equal(t, 1, d.RealTimeStatus.MitigatedThreats)
	assert.Equal(t, 0, d.RealTimeStatus.ActiveThreats)
	require.NotNil(t, d.Case)
	assert.Equal(t, caseID, d.Case.CaseID)
	assert.Equal(t, 1, d.SignalLandscape.WiFiSignals)
}

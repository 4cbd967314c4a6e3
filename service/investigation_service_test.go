package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"whiteknight/core"
	"whiteknight/notify"
	"whiteknight/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
)

// ============================================================================
// Test helpers
// ============================================================================

// capturePublisher records every published event
type capturePublisher struct {
	mu     sync.Mutex
	events []notify.Event
}

func (c *capturePublisher) Publish(_ context.Context, e notify.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
	return nil
}

func (c *capturePublisher) types() []notify.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]notify.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

func setupTestService(t *testing.T, opts ...Option) (*InvestigationService, storage.Store) {
	store := storage.NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })
	return NewInvestigationService(store, zap.NewNop().Sugar(), opts...), store
}

func createTestCase(t *testing.T, svc *InvestigationService, title string) *core.Case {
	c, err := svc.CreateCase(context.Background(), CaseInput{
		Title:        title,
		Description:  "test case",
		Investigator: "analyst",
	})
	require.NoError(t, err)
	return c
}

// ============================================================================
// Cases
// ============================================================================

func TestCreateCase_ThenGet(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCase(ctx, CaseInput{Title: "C1", Description: "desc", Investigator: "inv"})
	require.NoError(t, err)

	got, err := svc.GetCase(ctx, created.CaseID)
	require.NoError(t, err)
	assert.Equal(t, "C1", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, "inv", got.Investigator)
	assert.Equal(t, core.DefaultCasePriority, got.Priority)
	assert.Equal(t, 0, got.EvidenceCount)
}

func TestUpdateCase_ReplacesEditableFieldsOnly(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "before")

	_, err := svc.AddEvidence(ctx, c.CaseID, map[string]interface{}{"k": "v"})
	require.NoError(t, err)

	updated, err := svc.UpdateCase(ctx, c.CaseID, CaseInput{Title: "after", Description: "d2", Investigator: "i2", Priority: "critical"})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	assert.Equal(t, "critical", updated.Priority)
	assert.Equal(t, 1, updated.EvidenceCount, "counters survive an update")
	assert.Equal(t, c.CreatedAt.Unix(), updated.CreatedAt.Unix())

	_, err = svc.UpdateCase(ctx, "missing", CaseInput{Title: "x"})
	assert.ErrorIs(t, err, storage.ErrCaseNotFound)
}

func TestDeleteCase_LeavesReferencesDangling(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "doomed")

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeBLE, Location: "x", Strength: 1, CaseID: c.CaseID})
	require.NoError(t, err)

	deleted, err := svc.DeleteCase(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted.SignalsTracked)

	_, err = svc.GetCase(ctx, c.CaseID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	got, err := svc.GetSignal(ctx, sig.SignalID)
	require.NoError(t, err)
	assert.Equal(t, c.CaseID, got.CaseID)

	_, err = svc.DeleteCase(ctx, c.CaseID)
	assert.ErrorIs(t, err, storage.ErrCaseNotFound)
}

func TestAddEvidence(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "evidence")

	for i := 1; i <= 3; i++ {
		updated, err := svc.AddEvidence(ctx, c.CaseID, map[string]interface{}{"n": i})
		require.NoError(t, err)
		assert.Equal(t, i, updated.EvidenceCount)
	}

	got, err := svc.GetCase(ctx, c.CaseID)
	require.NoError(t, err)
	require.Len(t, got.Evidence, 3)
	assert.Equal(t, 1, got.Evidence[0].Data["n"])

	_, err = svc.AddEvidence(ctx, "missing", nil)
	assert.ErrorIs(t, err, storage.ErrCaseNotFound)
}

// ============================================================================
// Cross-reference counters
// ============================================================================

func TestLogSignal_IncrementsExistingCase(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "C")

	_, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeWiFi, Location: "l", Strength: 80, CaseID: c.CaseID})
	require.NoError(t, err)

	got, err := svc.GetCase(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.SignalsTracked)
	assert.Equal(t, 0, got.ThreatsDetected)
}

func TestLogSignal_UnknownCaseIsSilent(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "untouched")

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeCell, Location: "l", Strength: 5, CaseID: "no-such-case"})
	require.NoError(t, err, "an unknown case reference still succeeds")
	assert.Equal(t, "no-such-case", sig.CaseID)

	got, err := svc.GetCase(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SignalsTracked)
	assert.Equal(t, 0, got.ThreatsDetected)
	assert.Equal(t, 0, got.EvidenceCount)
}

func TestDetectThreat_MissingSignalMutatesNothing(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()
	c := createTestCase(t, svc, "C")

	_, err := svc.DetectThreat(ctx, "missing-signal", core.ThreatLevelHigh, c.CaseID)
	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrSignalNotFound)

	threats, err := store.ListThreats(core.ThreatFilter{})
	require.NoError(t, err)
	assert.Empty(t, threats)

	got, err := svc.GetCase(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.ThreatsDetected)
}

func TestDetectThreat_CopiesSignalFields(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeCellTower, Location: "Ridge", Strength: 60})
	require.NoError(t, err)

	threat, err := svc.DetectThreat(ctx, sig.SignalID, "", "")
	require.NoError(t, err)
	assert.Equal(t, core.DefaultThreatLevel, threat.ThreatLevel)
	assert.Equal(t, core.SignalTypeCellTower, threat.SignalType)
	assert.Equal(t, "Ridge", threat.Location)
	assert.Equal(t, core.ThreatStatusDetected, threat.Status)
	assert.False(t, threat.MitigationApplied)
}

// ============================================================================
// Recommendations
// ============================================================================

func TestRecommend_LinksToThreat(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeBLE, Location: "l", Strength: 9})
	require.NoError(t, err)
	threat, err := svc.DetectThreat(ctx, sig.SignalID, core.ThreatLevelCritical, "")
	require.NoError(t, err)

	first, err := svc.Recommend(ctx, threat.ThreatID)
	require.NoError(t, err)
	second, err := svc.Recommend(ctx, threat.ThreatID)
	require.NoError(t, err)

	assert.Equal(t, "BLE threat", first.ThreatDescription)
	assert.Equal(t, core.MitigationCommands(core.SignalTypeBLE, core.ThreatLevelCritical), first.MitigationCommands)
	assert.Equal(t, first.MitigationCommands, second.MitigationCommands, "generation is deterministic")
	assert.Equal(t, core.RecommendationStatusPending, first.Status)

	got, err := svc.GetThreat(ctx, threat.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, []string{first.RecommendationID, second.RecommendationID}, got.AIRecommendations)

	recs, err := svc.ListRecommendations(ctx, core.RecommendationFilter{ThreatID: threat.ThreatID})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	_, err = svc.Recommend(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrThreatNotFound)
}

func TestApplyRecommendation(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeWiFi, Location: "l", Strength: 80})
	require.NoError(t, err)
	threat, err := svc.DetectThreat(ctx, sig.SignalID, core.ThreatLevelHigh, "")
	require.NoError(t, err)
	rec, err := svc.Recommend(ctx, threat.ThreatID)
	require.NoError(t, err)

	applied, err := svc.ApplyRecommendation(ctx, rec.RecommendationID)
	require.NoError(t, err)
	assert.Equal(t, core.RecommendationStatusApplied, applied.Status)

	got, err := svc.GetThreat(ctx, threat.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, core.ThreatStatusMitigated, got.Status)
	assert.True(t, got.MitigationApplied)
}

func TestApplyRecommendation_MissingMutatesNothing(t *testing.T) {
	svc, store := setupTestService(t)
	ctx := context.Background()

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeWiFi, Location: "l", Strength: 80})
	require.NoError(t, err)
	threat, err := svc.DetectThreat(ctx, sig.SignalID, core.ThreatLevelHigh, "")
	require.NoError(t, err)
	rec, err := svc.Recommend(ctx, threat.ThreatID)
	require.NoError(t, err)

	_, err = svc.ApplyRecommendation(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrRecommendationNotFound)

	gotRec, err := store.GetRecommendation(rec.RecommendationID)
	require.NoError(t, err)
	assert.Equal(t, core.RecommendationStatusPending, gotRec.Status)
	gotThreat, err := store.GetThreat(threat.ThreatID)
	require.NoError(t, err)
	assert.False(t, gotThreat.MitigationApplied)
}

// ============================================================================
// Dashboard
// ============================================================================

func TestDashboard_UnknownCaseIsNotAnError(t *testing.T) {
	svc, _ := setupTestService(t)

	d, err := svc.Dashboard(context.Background(), "no-such-case")
	require.NoError(t, err)
	assert.Nil(t, d.Case)
}

func TestDashboard_UsesClock(t *testing.T) {
	fixed := time.Date(2025, 1, 8, 10, 0, 0, 0, time.UTC)
	svc, _ := setupTestService(t, WithClock(func() time.Time { return fixed }))

	d, err := svc.Dashboard(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, fixed, d.Timestamp)
}

func TestDashboard_ActiveEqualsTotalMinusMitigated(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeBLE, Location: "l", Strength: 1})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		threat, err := svc.DetectThreat(ctx, sig.SignalID, core.KnownThreatLevels()[i%4], "")
		require.NoError(t, err)
		if i%2 == 0 {
			rec, err := svc.Recommend(ctx, threat.ThreatID)
			require.NoError(t, err)
			_, err = svc.ApplyRecommendation(ctx, rec.RecommendationID)
			require.NoError(t, err)
		}

		d, err := svc.Dashboard(ctx, "")
		require.NoError(t, err)
		rs := d.RealTimeStatus
		assert.Equal(t, rs.TotalThreats-rs.MitigatedThreats, rs.ActiveThreats)
	}
}

// TestEndToEndScenario walks the full investigation workflow
func TestEndToEndScenario(t *testing.T) {
	events := &capturePublisher{}
	svc, _ := setupTestService(t, WithPublisher(events))
	ctx := context.Background()

	c := createTestCase(t, svc, "C1")

	sig, err := svc.LogSignal(ctx, SignalInput{SignalType: core.SignalTypeWiFi, Location: "Pier 4", Strength: 80, CaseID: c.CaseID})
	require.NoError(t, err)

	threat, err := svc.DetectThreat(ctx, sig.SignalID, core.ThreatLevelHigh, c.CaseID)
	require.NoError(t, err)

	rec, err := svc.Recommend(ctx, threat.ThreatID)
	require.NoError(t, err)

	_, err = svc.ApplyRecommendation(ctx, rec.RecommendationID)
	require.NoError(t, err)

	gotCase, err := svc.GetCase(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, gotCase.ThreatsDetected)
	assert.Equal(t, 1, gotCase.SignalsTracked)

	gotThreat, err := svc.GetThreat(ctx, threat.ThreatID)
	require.NoError(t, err)
	assert.Equal(t, core.ThreatStatusMitigated, gotThreat.Status)

	recs, err := svc.ListRecommendations(ctx, core.RecommendationFilter{ThreatID: threat.ThreatID})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, core.RecommendationStatusApplied, recs[0].Status)

	d, err := svc.Dashboard(ctx, c.CaseID)
	require.NoError(t, err)
	assert.Equal(t, 1, d.RealTimeStatus.MitigatedThreats)
	assert.Equal(t, 0, d.RealTimeStatus.ActiveThreats)
	require.NotNil(t, d.Case)
	assert.Equal(t, "C1", d.Case.Title)

	assert.Equal(t, []notify.EventType{
		notify.EventCaseCreated,
		notify.EventSignalLogged,
		notify.EventThreatDetected,
		notify.EventRecommendationGenerated,
		notify.EventMitigationApplied,
	}, events.types())
}

// ============================================================================
// Tracing and failure paths
// ============================================================================

func TestService_EmitsSpans(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	svc, _ := setupTestService(t, WithTracer(tp.Tracer(TracerName)))
	ctx := context.Background()

	c := createTestCase(t, svc, "traced")
	_, err := svc.GetCase(ctx, "missing")
	require.Error(t, err)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, "CreateCase", spans[0].Name)
	assert.Equal(t, "GetCase", spans[1].Name)
	assert.NotEmpty(t, c.CaseID)
	assert.Equal(t, "Error", spans[1].Status.Code.String())
	assert.NotEmpty(t, spans[1].Events, "error is recorded as a span event")
}

// failingStore wraps a real store and fails selected operations
type failingStore struct {
	storage.Store
	mock.Mock
}

func (f *failingStore) CreateSignal(s *core.Signal) error {
	args := f.Called(s)
	return args.Error(0)
}

func (f *failingStore) ListThreats(filter core.ThreatFilter) ([]core.Threat, error) {
	args := f.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]core.Threat), args.Error(1)
}

func TestLogSignal_StorageFailure(t *testing.T) {
	store := &failingStore{Store: storage.NewMemoryStore()}
	diskErr := errors.New("disk I/O error")
	store.On("CreateSignal", mock.Anything).Return(diskErr)

	svc := NewInvestigationService(store, zap.NewNop().Sugar())
	_, err := svc.LogSignal(context.Background(), SignalInput{SignalType: core.SignalTypeBLE})

	require.Error(t, err)
	assert.ErrorIs(t, err, diskErr)
	assert.NotErrorIs(t, err, storage.ErrNotFound)
	store.AssertExpectations(t)
}

func TestDashboard_StorageFailure(t *testing.T) {
	store := &failingStore{Store: storage.NewMemoryStore()}
	store.On("ListThreats", core.ThreatFilter{}).Return(nil, errors.New("locked"))

	svc := NewInvestigationService(store, zap.NewNop().Sugar())
	_, err := svc.Dashboard(context.Background(), "")
	assert.Error(t, err)
}

func TestNewInvestigationService_PanicsOnNilDeps(t *testing.T) {
	assert.Panics(t, func() { NewInvestigationService(nil, zap.NewNop().Sugar()) })
	assert.Panics(t, func() { NewInvestigationService(storage.NewMemoryStore(), nil) })
}

package service

import (
	"context"
	"errors"
	"time"

	"whiteknight/core"
	"whiteknight/notify"
	"whiteknight/storage"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation name used for service spans
const TracerName = "whiteknight/service"

// InvestigationService holds the business logic between HTTP handlers and the
// entity store: cross-reference counters, recommendation generation,
// mitigation and dashboard aggregation.
//
// Every store call is atomic on its own. Sequences that touch two tables
// (e.g. "log signal" then "bump the case counter") are separate steps, so
// counters are best effort and can drift under concurrent deletes.
type InvestigationService struct {
	store     storage.Store
	publisher notify.Publisher
	tracer    trace.Tracer
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// Option configures an InvestigationService
type Option func(*InvestigationService)

// WithTracer overrides the tracer taken from the global provider
func WithTracer(tracer trace.Tracer) Option {
	return func(s *InvestigationService) {
		s.tracer = tracer
	}
}

// WithPublisher sets the sink for domain events
func WithPublisher(p notify.Publisher) Option {
	return func(s *InvestigationService) {
		s.publisher = p
	}
}

// WithClock overrides the time source used for dashboard timestamps
func WithClock(now func() time.Time) Option {
	return func(s *InvestigationService) {
		s.now = now
	}
}

// NewInvestigationService creates a service over store.
// Panics if store or logger is nil.
func NewInvestigationService(store storage.Store, logger *zap.SugaredLogger, opts ...Option) *InvestigationService {
	if store == nil {
		panic("store is required")
	}
	if logger == nil {
		panic("logger is required")
	}

	s := &InvestigationService{
		store:     store,
		publisher: notify.NopPublisher{},
		tracer:    otel.Tracer(TracerName),
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *InvestigationService) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// finishSpan records err on the span, if any, and ends it
func finishSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// publish emits a domain event. Failures are logged and never returned.
func (s *InvestigationService) publish(ctx context.Context, eventType notify.EventType, data interface{}) {
	if err := s.publisher.Publish(ctx, notify.NewEvent(eventType, data)); err != nil {
		s.logger.Warnw("Failed to publish domain event", "event_type", eventType, "error", err)
	}
}

// bumpCaseCounter applies mutate to the case if it exists.
// A missing case is a silent no-op; the reference is weak.
func (s *InvestigationService) bumpCaseCounter(ctx context.Context, caseID string, mutate func(*core.Case)) {
	if caseID == "" {
		return
	}
	_, err := s.store.UpdateCase(caseID, mutate)
	if err == nil {
		return
	}
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debugw("Case reference not found, counter unchanged", "case_id", caseID)
		return
	}
	s.logger.Errorw("Failed to update case counter", "case_id", caseID, "error", err)
	trace.SpanFromContext(ctx).RecordError(err)
}

package service

import (
	"context"
	"fmt"

	"whiteknight/core"
	"whiteknight/metrics"
	"whiteknight/notify"

	"go.opentelemetry.io/otel/attribute"
)

// SignalInput carries the fields of a new signal. Timestamp and SourceID are
// generated when empty; CaseID is an optional weak reference.
type SignalInput struct {
	SignalType core.SignalType
	Location   string
	Strength   int
	Timestamp  string
	SourceID   string
	CaseID     string
}

// LogSignal records a signal. If CaseID names an existing case its
// signals_tracked counter is incremented; an unknown case is ignored.
func (s *InvestigationService) LogSignal(ctx context.Context, in SignalInput) (sig *core.Signal, err error) {
	ctx, span := s.startSpan(ctx, "LogSignal",
		attribute.String("signal_type", string(in.SignalType)),
		attribute.String("case_id", in.CaseID))
	defer func() { finishSpan(span, err) }()

	sig = core.NewSignal(in.SignalType, in.Location, in.Strength, in.Timestamp, in.SourceID, in.CaseID)
	if err = s.store.CreateSignal(sig); err != nil {
		return nil, fmt.Errorf("failed to log signal: %w", err)
	}

	s.bumpCaseCounter(ctx, in.CaseID, func(c *core.Case) { c.SignalsTracked++ })

	metrics.SignalsLogged.WithLabelValues(string(sig.SignalType)).Inc()
	s.logger.Infow("Signal logged", "signal_id", sig.SignalID, "signal_type", sig.SignalType, "case_id", sig.CaseID)
	s.publish(ctx, notify.EventSignalLogged, sig)
	return sig, nil
}

// GetSignal returns the signal or a storage.ErrSignalNotFound wrapper
func (s *InvestigationService) GetSignal(ctx context.Context, id string) (sig *core.Signal, err error) {
	_, span := s.startSpan(ctx, "GetSignal", attribute.String("signal_id", id))
	defer func() { finishSpan(span, err) }()

	sig, err = s.store.GetSignal(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get signal %s: %w", id, err)
	}
	return sig, nil
}

// ListSignals returns signals matching filter in insertion order
func (s *InvestigationService) ListSignals(ctx context.Context, filter core.SignalFilter) (signals []core.Signal, err error) {
	_, span := s.startSpan(ctx, "ListSignals")
	defer func() { finishSpan(span, err) }()

	signals, err = s.store.ListSignals(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	return signals, nil
}

package service

import (
	"context"
	"fmt"

	"whiteknight/core"
	"whiteknight/metrics"
	"whiteknight/notify"

	"go.opentelemetry.io/otel/attribute"
)

// DetectThreat raises a threat from an existing signal.
// A missing signal fails with a storage.ErrSignalNotFound wrapper and mutates
// nothing. If caseID names an existing case its threats_detected counter is
// incremented; an unknown case is ignored.
func (s *InvestigationService) DetectThreat(ctx context.Context, signalID string, level core.ThreatLevel, caseID string) (threat *core.Threat, err error) {
	ctx, span := s.startSpan(ctx, "DetectThreat",
		attribute.String("signal_id", signalID),
		attribute.String("threat_level", string(level)))
	defer func() { finishSpan(span, err) }()

	sig, err := s.store.GetSignal(signalID)
	if err != nil {
		return nil, fmt.Errorf("failed to get signal %s: %w", signalID, err)
	}

	threat = core.NewThreat(sig, level, caseID)
	if err = s.store.CreateThreat(threat); err != nil {
		return nil, fmt.Errorf("failed to create threat: %w", err)
	}

	s.bumpCaseCounter(ctx, caseID, func(c *core.Case) { c.ThreatsDetected++ })

	metrics.ThreatsDetected.WithLabelValues(string(threat.ThreatLevel)).Inc()
	s.logger.Infow("Threat detected",
		"threat_id", threat.ThreatID,
		"signal_id", signalID,
		"threat_level", threat.ThreatLevel,
		"case_id", caseID)
	s.publish(ctx, notify.EventThreatDetected, threat)
	return threat, nil
}

// GetThreat returns the threat or a storage.ErrThreatNotFound wrapper
func (s *InvestigationService) GetThreat(ctx context.Context, id string) (threat *core.Threat, err error) {
	_, span := s.startSpan(ctx, "GetThreat", attribute.String("threat_id", id))
	defer func() { finishSpan(span, err) }()

	threat, err = s.store.GetThreat(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get threat %s: %w", id, err)
	}
	return threat, nil
}

// ListThreats returns threats matching filter in insertion order
func (s *InvestigationService) ListThreats(ctx context.Context, filter core.ThreatFilter) (threats []core.Threat, err error) {
	_, span := s.startSpan(ctx, "ListThreats")
	defer func() { finishSpan(span, err) }()

	threats, err = s.store.ListThreats(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}
	return threats, nil
}

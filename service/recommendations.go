package service

import (
	"context"
	"errors"
	"fmt"

	"whiteknight/core"
	"whiteknight/metrics"
	"whiteknight/notify"
	"whiteknight/storage"

	"go.opentelemetry.io/otel/attribute"
)

// Recommend generates a pending recommendation for an existing threat from
// the static mitigation tables and records its id on the threat.
func (s *InvestigationService) Recommend(ctx context.Context, threatID string) (rec *core.Recommendation, err error) {
	ctx, span := s.startSpan(ctx, "Recommend", attribute.String("threat_id", threatID))
	defer func() { finishSpan(span, err) }()

	threat, err := s.store.GetThreat(threatID)
	if err != nil {
		return nil, fmt.Errorf("failed to get threat %s: %w", threatID, err)
	}

	rec = core.NewRecommendation(threat)
	if err = s.store.CreateRecommendation(rec); err != nil {
		return nil, fmt.Errorf("failed to create recommendation: %w", err)
	}

	if _, err = s.store.UpdateThreat(threatID, func(t *core.Threat) {
		t.AddRecommendation(rec.RecommendationID)
	}); err != nil {
		return nil, fmt.Errorf("failed to link recommendation to threat %s: %w", threatID, err)
	}

	metrics.RecommendationsGenerated.WithLabelValues(string(rec.ThreatLevel)).Inc()
	s.logger.Infow("Recommendation generated",
		"recommendation_id", rec.RecommendationID,
		"threat_id", threatID,
		"threat_level", rec.ThreatLevel)
	s.publish(ctx, notify.EventRecommendationGenerated, rec)
	return rec, nil
}

// ListRecommendations returns recommendations matching filter in insertion order
func (s *InvestigationService) ListRecommendations(ctx context.Context, filter core.RecommendationFilter) (recs []core.Recommendation, err error) {
	_, span := s.startSpan(ctx, "ListRecommendations")
	defer func() { finishSpan(span, err) }()

	recs, err = s.store.ListRecommendations(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list recommendations: %w", err)
	}
	return recs, nil
}

// ApplyRecommendation marks the recommendation applied and its threat
// mitigated. No command is executed. A missing recommendation fails with a
// storage.ErrRecommendationNotFound wrapper and mutates nothing.
func (s *InvestigationService) ApplyRecommendation(ctx context.Context, id string) (rec *core.Recommendation, err error) {
	ctx, span := s.startSpan(ctx, "ApplyRecommendation", attribute.String("recommendation_id", id))
	defer func() { finishSpan(span, err) }()

	rec, err = s.store.UpdateRecommendation(id, func(r *core.Recommendation) { r.Apply() })
	if err != nil {
		return nil, fmt.Errorf("failed to apply recommendation %s: %w", id, err)
	}

	_, err = s.store.UpdateThreat(rec.ThreatID, func(t *core.Threat) { t.Mitigate() })
	switch {
	case errors.Is(err, storage.ErrNotFound):
		// threats are never deleted, so this only happens with a foreign store
		s.logger.Warnw("Applied recommendation references a missing threat", "recommendation_id", id, "threat_id", rec.ThreatID)
		err = nil
	case err != nil:
		return nil, fmt.Errorf("failed to mitigate threat %s: %w", rec.ThreatID, err)
	}

	metrics.MitigationsApplied.Inc()
	s.logger.Infow("Mitigation applied",
		"recommendation_id", id,
		"threat_id", rec.ThreatID,
		"commands", len(rec.MitigationCommands))
	s.publish(ctx, notify.EventMitigationApplied, rec)
	return rec, nil
}

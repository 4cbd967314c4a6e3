package service

import (
	"context"
	"errors"
	"fmt"

	"whiteknight/core"
	"whiteknight/storage"

	"go.opentelemetry.io/otel/attribute"
)

// Dashboard recomputes the aggregate snapshot from the current tables.
// An unknown caseID is not an error; the snapshot simply carries no case.
func (s *InvestigationService) Dashboard(ctx context.Context, caseID string) (d *core.Dashboard, err error) {
	_, span := s.startSpan(ctx, "Dashboard", attribute.String("case_id", caseID))
	defer func() { finishSpan(span, err) }()

	var c *core.Case
	if caseID != "" {
		c, err = s.store.GetCase(caseID)
		if errors.Is(err, storage.ErrNotFound) {
			c, err = nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get case %s: %w", caseID, err)
		}
	}

	signals, err := s.store.ListSignals(core.SignalFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list signals: %w", err)
	}
	threats, err := s.store.ListThreats(core.ThreatFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list threats: %w", err)
	}

	return core.BuildDashboard(c, signals, threats, s.now()), nil
}

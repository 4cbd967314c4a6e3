package service

import (
	"context"
	"fmt"

	"whiteknight/core"
	"whiteknight/metrics"
	"whiteknight/notify"

	"go.opentelemetry.io/otel/attribute"
)

// CaseInput carries the caller-editable fields of a case
type CaseInput struct {
	Title        string
	Description  string
	Investigator string
	Priority     string
}

// CreateCase opens a new active case
func (s *InvestigationService) CreateCase(ctx context.Context, in CaseInput) (c *core.Case, err error) {
	ctx, span := s.startSpan(ctx, "CreateCase")
	defer func() { finishSpan(span, err) }()

	c = core.NewCase(in.Title, in.Description, in.Investigator, in.Priority)
	if err = s.store.CreateCase(c); err != nil {
		return nil, fmt.Errorf("failed to create case: %w", err)
	}
	span.SetAttributes(attribute.String("case_id", c.CaseID))

	metrics.CasesCreated.Inc()
	s.logger.Infow("Case created", "case_id", c.CaseID, "investigator", c.Investigator)
	s.publish(ctx, notify.EventCaseCreated, c)
	return c, nil
}

// GetCase returns the case or a storage.ErrCaseNotFound wrapper
func (s *InvestigationService) GetCase(ctx context.Context, id string) (c *core.Case, err error) {
	_, span := s.startSpan(ctx, "GetCase", attribute.String("case_id", id))
	defer func() { finishSpan(span, err) }()

	c, err = s.store.GetCase(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get case %s: %w", id, err)
	}
	return c, nil
}

// ListCases returns all cases in creation order
func (s *InvestigationService) ListCases(ctx context.Context) (cases []core.Case, err error) {
	_, span := s.startSpan(ctx, "ListCases")
	defer func() { finishSpan(span, err) }()

	cases, err = s.store.ListCases()
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// UpdateCase replaces title, description, investigator and priority.
// Counters, evidence and status are untouched.
func (s *InvestigationService) UpdateCase(ctx context.Context, id string, in CaseInput) (c *core.Case, err error) {
	ctx, span := s.startSpan(ctx, "UpdateCase", attribute.String("case_id", id))
	defer func() { finishSpan(span, err) }()

	c, err = s.store.UpdateCase(id, func(existing *core.Case) {
		existing.Replace(in.Title, in.Description, in.Investigator, in.Priority)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update case %s: %w", id, err)
	}

	s.publish(ctx, notify.EventCaseUpdated, c)
	return c, nil
}

// DeleteCase removes the case and returns it as it was.
// Signals and threats referencing the case are left dangling.
func (s *InvestigationService) DeleteCase(ctx context.Context, id string) (c *core.Case, err error) {
	ctx, span := s.startSpan(ctx, "DeleteCase", attribute.String("case_id", id))
	defer func() { finishSpan(span, err) }()

	c, err = s.store.DeleteCase(id)
	if err != nil {
		return nil, fmt.Errorf("failed to delete case %s: %w", id, err)
	}

	metrics.CasesDeleted.Inc()
	s.logger.Infow("Case deleted", "case_id", id)
	s.publish(ctx, notify.EventCaseDeleted, c)
	return c, nil
}

// AddEvidence attaches an arbitrary payload to the case and returns the updated case
func (s *InvestigationService) AddEvidence(ctx context.Context, caseID string, data map[string]interface{}) (c *core.Case, err error) {
	ctx, span := s.startSpan(ctx, "AddEvidence", attribute.String("case_id", caseID))
	defer func() { finishSpan(span, err) }()

	evidence := core.NewEvidence(data)
	c, err = s.store.UpdateCase(caseID, func(existing *core.Case) {
		existing.AttachEvidence(evidence)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add evidence to case %s: %w", caseID, err)
	}

	metrics.EvidenceAdded.Inc()
	s.logger.Infow("Evidence added", "case_id", caseID, "evidence_id", evidence.EvidenceID, "evidence_count", c.EvidenceCount)
	s.publish(ctx, notify.EventEvidenceAdded, map[string]interface{}{
		"case_id":        caseID,
		"evidence_id":    evidence.EvidenceID,
		"evidence_count": c.EvidenceCount,
	})
	return c, nil
}

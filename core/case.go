package core

import (
	"time"

	"github.com/google/uuid"
)

// CaseStatus represents the lifecycle state of a case
type CaseStatus string

const (
	// CaseStatusActive is assigned to every newly opened case
	CaseStatusActive CaseStatus = "active"
)

// DefaultCasePriority is used when a case is created without a priority
const DefaultCasePriority = "medium"

// Evidence is an arbitrary payload attached to exactly one case
type Evidence struct {
	EvidenceID string                 `json:"evidence_id"`
	Data       map[string]interface{} `json:"data"`
	AddedAt    time.Time              `json:"added_at"`
}

// NewEvidence wraps a payload in a new Evidence record with a generated ID
func NewEvidence(data map[string]interface{}) Evidence {
	if data == nil {
		data = map[string]interface{}{}
	}
	return Evidence{
		EvidenceID: uuid.New().String(),
		Data:       data,
		AddedAt:    time.Now(),
	}
}

// Case is an investigation container aggregating evidence and counting related signals and threats.
//
// The counters are maintained imperatively by the operations that create related
// records. They are not recomputed from relationships and may drift from the
// actual number of related records.
type Case struct {
	CaseID          string     `json:"case_id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Investigator    string     `json:"investigator"`
	Priority        string     `json:"priority"`
	CreatedAt       time.Time  `json:"created_at"`
	Status          CaseStatus `json:"status"`
	EvidenceCount   int        `json:"evidence_count"`
	Evidence        []Evidence `json:"evidence"`
	ThreatsDetected int        `json:"threats_detected"`
	SignalsTracked  int        `json:"signals_tracked"`
}

// NewCase creates a new active Case with a generated ID and zeroed counters
func NewCase(title, description, investigator, priority string) *Case {
	if priority == "" {
		priority = DefaultCasePriority
	}
	return &Case{
		CaseID:       uuid.New().String(),
		Title:        title,
		Description:  description,
		Investigator: investigator,
		Priority:     priority,
		CreatedAt:    time.Now(),
		Status:       CaseStatusActive,
		Evidence:     []Evidence{},
	}
}

// Replace overwrites the caller-editable fields of the case
func (c *Case) Replace(title, description, investigator, priority string) {
	if priority == "" {
		priority = DefaultCasePriority
	}
	c.Title = title
	c.Description = description
	c.Investigator = investigator
	c.Priority = priority
}

// AttachEvidence appends evidence and bumps the evidence counter
func (c *Case) AttachEvidence(e Evidence) {
	c.Evidence = append(c.Evidence, e)
	c.EvidenceCount++
}

// Clone returns a deep copy of the case, evidence payloads included
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}
	out := *c
	out.Evidence = make([]Evidence, len(c.Evidence))
	for i, e := range c.Evidence {
		e.Data = deepCopyMap(e.Data)
		out.Evidence[i] = e
	}
	return &out
}

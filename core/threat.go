package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ThreatLevel is the assessed severity of a threat.
// Any string is accepted; only the constants below have mitigation table entries
// and dashboard buckets.
type ThreatLevel string

const (
	ThreatLevelCritical ThreatLevel = "critical"
	ThreatLevelHigh     ThreatLevel = "high"
	ThreatLevelMedium   ThreatLevel = "medium"
	ThreatLevelLow      ThreatLevel = "low"
)

// DefaultThreatLevel is used when a threat is raised without a level
const DefaultThreatLevel = ThreatLevelMedium

// KnownThreatLevels returns the threat levels in descending severity
func KnownThreatLevels() []ThreatLevel {
	return []ThreatLevel{ThreatLevelCritical, ThreatLevelHigh, ThreatLevelMedium, ThreatLevelLow}
}

// IsKnown reports whether the level has mitigation table entries
func (l ThreatLevel) IsKnown() bool {
	switch l {
	case ThreatLevelCritical, ThreatLevelHigh, ThreatLevelMedium, ThreatLevelLow:
		return true
	}
	return false
}

// String returns the string representation
func (l ThreatLevel) String() string {
	return string(l)
}

// ThreatStatus represents the state of a threat
type ThreatStatus string

const (
	ThreatStatusDetected  ThreatStatus = "detected"
	ThreatStatusMitigated ThreatStatus = "mitigated"
)

// Threat is an assessed escalation derived from one signal.
// SignalType and Location are copied from the signal at detection time and are
// not kept in sync afterwards.
type Threat struct {
	ThreatID          string       `json:"threat_id"`
	SignalID          string       `json:"signal_id"`
	ThreatLevel       ThreatLevel  `json:"threat_level"`
	SignalType        SignalType   `json:"signal_type"`
	Location          string       `json:"location"`
	DetectedAt        time.Time    `json:"detected_at"`
	CaseID            string       `json:"case_id,omitempty"`
	Status            ThreatStatus `json:"status"`
	AIRecommendations []string     `json:"ai_recommendations"`
	MitigationApplied bool         `json:"mitigation_applied"`
}

// NewThreat raises a threat from a signal
func NewThreat(signal *Signal, level ThreatLevel, caseID string) *Threat {
	if level == "" {
		level = DefaultThreatLevel
	}
	return &Threat{
		ThreatID:          uuid.New().String(),
		SignalID:          signal.SignalID,
		ThreatLevel:       level,
		SignalType:        signal.SignalType,
		Location:          signal.Location,
		DetectedAt:        time.Now(),
		CaseID:            caseID,
		Status:            ThreatStatusDetected,
		AIRecommendations: []string{},
	}
}

// AddRecommendation records a recommendation ID against the threat
func (t *Threat) AddRecommendation(recommendationID string) {
	t.AIRecommendations = append(t.AIRecommendations, recommendationID)
}

// Mitigate marks the threat as mitigated
func (t *Threat) Mitigate() {
	t.Status = ThreatStatusMitigated
	t.MitigationApplied = true
}

// IsActive reports whether no mitigation has been applied yet
func (t *Threat) IsActive() bool {
	return !t.MitigationApplied
}

// Clone returns a copy of the threat that shares no slices with the receiver
func (t *Threat) Clone() *Threat {
	if t == nil {
		return nil
	}
	out := *t
	out.AIRecommendations = append([]string{}, t.AIRecommendations...)
	return &out
}

// MarshalJSON always emits case_id, as null when no case is attached
func (t Threat) MarshalJSON() ([]byte, error) {
	type plain Threat
	return json.Marshal(struct {
		plain
		CaseID *string `json:"case_id"`
	}{plain(t), optionalID(t.CaseID)})
}

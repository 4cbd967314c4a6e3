package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RecommendationStatus represents the state of a recommendation
type RecommendationStatus string

const (
	RecommendationStatusPending RecommendationStatus = "pending"
	RecommendationStatusApplied RecommendationStatus = "applied"
)

// Recommendation is a table-driven suggested response generated for a threat
type Recommendation struct {
	RecommendationID   string               `json:"recommendation_id"`
	ThreatID           string               `json:"threat_id"`
	ThreatLevel        ThreatLevel          `json:"threat_level"`
	ThreatDescription  string               `json:"threat_description"`
	AIAnalysis         string               `json:"ai_analysis"`
	MitigationCommands []string             `json:"mitigation_commands"`
	RecommendedAction  string               `json:"recommended_action"`
	GeneratedAt        time.Time            `json:"generated_at"`
	Status             RecommendationStatus `json:"status"`
}

// NewRecommendation builds a pending recommendation for a threat from the mitigation tables
func NewRecommendation(threat *Threat) *Recommendation {
	plan := Recommend(threat.SignalType, threat.ThreatLevel)
	return &Recommendation{
		RecommendationID:   uuid.New().String(),
		ThreatID:           threat.ThreatID,
		ThreatLevel:        threat.ThreatLevel,
		ThreatDescription:  fmt.Sprintf("%s threat", strings.ToUpper(string(threat.SignalType))),
		AIAnalysis:         plan.Analysis,
		MitigationCommands: plan.Commands,
		RecommendedAction:  plan.Action,
		GeneratedAt:        time.Now(),
		Status:             RecommendationStatusPending,
	}
}

// Apply marks the recommendation as applied
func (r *Recommendation) Apply() {
	r.Status = RecommendationStatusApplied
}

// Clone returns a copy of the recommendation that shares no slices with the receiver
func (r *Recommendation) Clone() *Recommendation {
	if r == nil {
		return nil
	}
	out := *r
	out.MitigationCommands = append([]string{}, r.MitigationCommands...)
	return &out
}

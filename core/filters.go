package core

// List filters are pure equality checks. An empty field means "no filter".

// SignalFilter selects signals by type and/or case
type SignalFilter struct {
	SignalType SignalType
	CaseID     string
}

// Matches reports whether the signal passes the filter
func (f SignalFilter) Matches(s *Signal) bool {
	if f.SignalType != "" && s.SignalType != f.SignalType {
		return false
	}
	if f.CaseID != "" && s.CaseID != f.CaseID {
		return false
	}
	return true
}

// ThreatFilter selects threats by level and/or case
type ThreatFilter struct {
	ThreatLevel ThreatLevel
	CaseID      string
}

// Matches reports whether the threat passes the filter
func (f ThreatFilter) Matches(t *Threat) bool {
	if f.ThreatLevel != "" && t.ThreatLevel != f.ThreatLevel {
		return false
	}
	if f.CaseID != "" && t.CaseID != f.CaseID {
		return false
	}
	return true
}

// RecommendationFilter selects recommendations by threat
type RecommendationFilter struct {
	ThreatID string
}

// Matches reports whether the recommendation passes the filter
func (f RecommendationFilter) Matches(r *Recommendation) bool {
	return f.ThreatID == "" || r.ThreatID == f.ThreatID
}

package core

import "time"

// RealTimeStatus holds the headline counters of a dashboard
type RealTimeStatus struct {
	TotalSignalsDetected int `json:"total_signals_detected"`
	TotalThreats         int `json:"total_threats"`
	ActiveThreats        int `json:"active_threats"`
	MitigatedThreats     int `json:"mitigated_threats"`
}

// ThreatAnalysisSummary breaks threats down by known level.
// Threats with an unrecognized level are counted in TotalThreats only.
type ThreatAnalysisSummary struct {
	ByLevel       map[ThreatLevel]int `json:"by_level"`
	CriticalCount int                 `json:"critical_count"`
	HighCount     int                 `json:"high_count"`
}

// SignalLandscape breaks signals down by type
type SignalLandscape struct {
	ByType           map[SignalType]int `json:"by_type"`
	BLESignals       int                `json:"ble_signals"`
	CellSignals      int                `json:"cell_signals"`
	WiFiSignals      int                `json:"wifi_signals"`
	CellTowerSignals int                `json:"cell_tower_signals"`
}

// Dashboard is an aggregate snapshot recomputed from the entity tables on every request
type Dashboard struct {
	Timestamp       time.Time             `json:"timestamp"`
	Case            *Case                 `json:"case"`
	RealTimeStatus  RealTimeStatus        `json:"real_time_status"`
	ThreatAnalysis  ThreatAnalysisSummary `json:"threat_analysis"`
	SignalLandscape SignalLandscape       `json:"signal_landscape"`
	RecentSignals   []Signal              `json:"recent_signals"`
	ActiveThreats   []Threat              `json:"active_threats"`
}

// BuildDashboard aggregates signals and threats, both given in insertion order.
// c may be nil, in which case the dashboard carries no case.
//
// Recent signals are the last DashboardWindow signals. Active threats are the
// first DashboardWindow non-mitigated threats in table order, not ordered by severity.
func BuildDashboard(c *Case, signals []Signal, threats []Threat, now time.Time) *Dashboard {
	d := &Dashboard{
		Timestamp: now,
		Case:      c,
		ThreatAnalysis: ThreatAnalysisSummary{
			ByLevel: make(map[ThreatLevel]int, 4),
		},
		SignalLandscape: SignalLandscape{
			ByType: make(map[SignalType]int),
		},
		RecentSignals: []Signal{},
		ActiveThreats: []Threat{},
	}

	for _, level := range KnownThreatLevels() {
		d.ThreatAnalysis.ByLevel[level] = 0
	}

	for i := range signals {
		d.SignalLandscape.ByType[signals[i].SignalType]++
	}
	d.SignalLandscape.BLESignals = d.SignalLandscape.ByType[SignalTypeBLE]
	d.SignalLandscape.CellSignals = d.SignalLandscape.ByType[SignalTypeCell]
	d.SignalLandscape.WiFiSignals = d.SignalLandscape.ByType[SignalTypeWiFi]
	d.SignalLandscape.CellTowerSignals = d.SignalLandscape.ByType[SignalTypeCellTower]

	mitigated := 0
	for i := range threats {
		t := &threats[i]
		if t.ThreatLevel.IsKnown() {
			d.ThreatAnalysis.ByLevel[t.ThreatLevel]++
		}
		if t.MitigationApplied {
			mitigated++
			continue
		}
		if len(d.ActiveThreats) < DashboardWindow {
			d.ActiveThreats = append(d.ActiveThreats, *t)
		}
	}
	d.ThreatAnalysis.CriticalCount = d.ThreatAnalysis.ByLevel[ThreatLevelCritical]
	d.ThreatAnalysis.HighCount = d.ThreatAnalysis.ByLevel[ThreatLevelHigh]

	start := len(signals) - DashboardWindow
	if start < 0 {
		start = 0
	}
	d.RecentSignals = append(d.RecentSignals, signals[start:]...)

	d.RealTimeStatus = RealTimeStatus{
		TotalSignalsDetected: len(signals),
		TotalThreats:         len(threats),
		ActiveThreats:        len(threats) - mitigated,
		MitigatedThreats:     mitigated,
	}

	return d
}

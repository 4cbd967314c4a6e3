package core

import "fmt"

// Mitigation tables behind the "AI" recommendation endpoint.
//
// The tables are static. Each known signal type maps every known threat level
// to a fixed command list; any other combination falls back to a single
// logging command. None of the commands are ever executed.

// DefaultMitigationCommand is returned for signal type / threat level pairs without a table entry
const DefaultMitigationCommand = "log_signal()"

// MitigationPlan is the static response for a signal type and threat level
type MitigationPlan struct {
	Commands []string `json:"mitigation_commands"`
	Analysis string   `json:"ai_analysis"`
	Action   string   `json:"recommended_action"`
}

// levelTable holds one entry per known threat level
type levelTable struct {
	critical []string
	high     []string
	medium   []string
	low      []string
}

func (lt levelTable) lookup(level ThreatLevel) []string {
	switch level {
	case ThreatLevelCritical:
		return lt.critical
	case ThreatLevelHigh:
		return lt.high
	case ThreatLevelMedium:
		return lt.medium
	case ThreatLevelLow:
		return lt.low
	default:
		return nil
	}
}

var (
	bleCommands = levelTable{
		critical: []string{"sudo hcitool down", "sudo bluetoothctl power off", "iwconfig wlan0 power off", "sudo iptables -P INPUT DROP", "alert_law_enforcement()"},
		high:     []string{"sudo hcitool reset", "sudo bluetoothctl disconnect all", "enable_network_monitoring()"},
		medium:   []string{"sudo hcitool scan --flush", "enable_logging()"},
		low:      []string{"log_signal()"},
	}
	cellCommands = levelTable{
		critical: []string{"sudo airplane_mode_on()", "sudo disable_2g_3g_4g()", "alert_fcc_enforcement()", "enable_gps_logging()"},
		high:     []string{"sudo disable_4g()", "enable_cell_monitoring()"},
		medium:   []string{"enable_signal_strength_monitoring()"},
		low:      []string{"monitor_cell_activity()"},
	}
	wifiCommands = levelTable{
		critical: []string{"sudo iwconfig wlan0 txpower off", "sudo iptables -P INPUT DROP", "disable_auto_connect()", "alert_network_security()"},
		high:     []string{"sudo iwconfig wlan0 mode managed", "disconnect_all_networks()"},
		medium:   []string{"enable_wifi_monitoring()"},
		low:      []string{"monitor_wifi_networks()"},
	}
	cellTowerCommands = levelTable{
		critical: []string{"sudo gpsd stop", "disable_location_services()", "alert_fbi_field_office()"},
		high:     []string{"reduce_location_accuracy()"},
		medium:   []string{"monitor_tower_locations()"},
		low:      []string{"track_tower_changes()"},
	}
)

func commandTable(signalType SignalType) (levelTable, bool) {
	switch signalType {
	case SignalTypeBLE:
		return bleCommands, true
	case SignalTypeCell:
		return cellCommands, true
	case SignalTypeWiFi:
		return wifiCommands, true
	case SignalTypeCellTower:
		return cellTowerCommands, true
	default:
		return levelTable{}, false
	}
}

// MitigationCommands returns a fresh copy of the command list for the pair
func MitigationCommands(signalType SignalType, level ThreatLevel) []string {
	table, ok := commandTable(signalType)
	if !ok {
		return []string{DefaultMitigationCommand}
	}
	cmds := table.lookup(level)
	if cmds == nil {
		return []string{DefaultMitigationCommand}
	}
	return append([]string(nil), cmds...)
}

func signalAnalysis(signalType SignalType) string {
	switch signalType {
	case SignalTypeBLE:
		return "BLE signal detected. Unauthorized pairing device or tracking beacon."
	case SignalTypeCell:
		return "Cellular signal anomaly. IMSI catcher or unauthorized network access."
	case SignalTypeWiFi:
		return "WiFi network anomaly. Man-in-the-middle attack or rogue access point."
	case SignalTypeCellTower:
		return "Cell tower signal pattern. Possible location tracking or surveillance."
	default:
		return "Unknown signal"
	}
}

func levelContext(level ThreatLevel) string {
	switch level {
	case ThreatLevelCritical:
		return "IMMEDIATE ACTION REQUIRED"
	case ThreatLevelHigh:
		return "URGENT action needed"
	case ThreatLevelMedium:
		return "ELEVATED monitoring"
	case ThreatLevelLow:
		return "INFORMATIONAL"
	default:
		return ""
	}
}

// ThreatAnalysis returns the human-readable analysis text for the pair
func ThreatAnalysis(signalType SignalType, level ThreatLevel) string {
	return fmt.Sprintf("%s - %s", signalAnalysis(signalType), levelContext(level))
}

// RecommendedAction returns the action text for a threat level
func RecommendedAction(level ThreatLevel) string {
	switch level {
	case ThreatLevelCritical:
		return "LOCKDOWN: Disable all wireless, enable GPS logging, contact law enforcement"
	case ThreatLevelHigh:
		return "ISOLATE: Disable systems, begin detailed logging, contact incident response"
	case ThreatLevelMedium:
		return "MONITOR: Increase logging, alert supervisor"
	case ThreatLevelLow:
		return "LOG: Maintain standard monitoring"
	default:
		return "Monitor and log"
	}
}

// Recommend returns the static mitigation plan for a signal type and threat level.
// It has no state and no side effects.
func Recommend(signalType SignalType, level ThreatLevel) MitigationPlan {
	return MitigationPlan{
		Commands: MitigationCommands(signalType, level),
		Analysis: ThreatAnalysis(signalType, level),
		Action:   RecommendedAction(level),
	}
}

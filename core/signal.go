package core

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// SignalType identifies the physical or network channel a signal was observed on.
// Any string is accepted; only the constants below have mitigation table entries.
type SignalType string

const (
	SignalTypeBLE       SignalType = "ble"
	SignalTypeCell      SignalType = "cell"
	SignalTypeWiFi      SignalType = "wifi"
	SignalTypeCellTower SignalType = "cell_tower"
)

// KnownSignalTypes returns the signal types that have mitigation table entries
func KnownSignalTypes() []SignalType {
	return []SignalType{SignalTypeBLE, SignalTypeCell, SignalTypeWiFi, SignalTypeCellTower}
}

// IsKnown reports whether the signal type has mitigation table entries
func (t SignalType) IsKnown() bool {
	switch t {
	case SignalTypeBLE, SignalTypeCell, SignalTypeWiFi, SignalTypeCellTower:
		return true
	}
	return false
}

// String returns the string representation
func (t SignalType) String() string {
	return string(t)
}

// Signal is a raw detection record of a physical or network event
type Signal struct {
	SignalID   string     `json:"signal_id"`
	SignalType SignalType `json:"signal_type"`
	Location   string     `json:"location"`
	Strength   int        `json:"strength"`
	SourceID   string     `json:"source_id"`
	Timestamp  string     `json:"timestamp"`
	CaseID     string     `json:"case_id,omitempty"`
}

// NewSignal creates a Signal with a generated ID.
// An empty timestamp is replaced by the current time and an empty source ID is
// derived from the generated signal ID.
func NewSignal(signalType SignalType, location string, strength int, timestamp, sourceID, caseID string) *Signal {
	id := uuid.New().String()
	if timestamp == "" {
		timestamp = time.Now().Format(TimestampLayout)
	}
	if sourceID == "" {
		sourceID = "source_" + id[:SourceIDPrefixLength]
	}
	return &Signal{
		SignalID:   id,
		SignalType: signalType,
		Location:   location,
		Strength:   strength,
		SourceID:   sourceID,
		Timestamp:  timestamp,
		CaseID:     caseID,
	}
}

// Clone returns a copy of the signal
func (s *Signal) Clone() *Signal {
	if s == nil {
		return nil
	}
	out := *s
	return &out
}

// MarshalJSON always emits case_id, as null when no case is attached
func (s Signal) MarshalJSON() ([]byte, error) {
	type plain Signal
	return json.Marshal(struct {
		plain
		CaseID *string `json:"case_id"`
	}{plain(s), optionalID(s.CaseID)})
}

// optionalID maps the empty string to nil
func optionalID(id string) *string {
	if id == "" {
		return nil
	}
	return &id
}

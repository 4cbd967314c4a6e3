package notify

import "time"

// EventType names a domain event
type EventType string

const (
	EventCaseCreated             EventType = "case.created"
	EventCaseUpdated             EventType = "case.updated"
	EventCaseDeleted             EventType = "case.deleted"
	EventEvidenceAdded           EventType = "evidence.added"
	EventSignalLogged            EventType = "signal.logged"
	EventThreatDetected          EventType = "threat.detected"
	EventRecommendationGenerated EventType = "recommendation.generated"
	EventMitigationApplied       EventType = "mitigation.applied"
)

// Event is a domain event fanned out to the dashboard stream and external sinks
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// NewEvent stamps an event with the current time
func NewEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

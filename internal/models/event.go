package models

import "time"

// EventType identifies a live notification.
type EventType string

const (
	EventConnected EventType = "connected"
	EventApproval  EventType = "approval"
	EventRejection EventType = "rejection"
)

// Event is pushed to every connected dashboard client.
type Event struct {
	Type       EventType   `json:"type"`
	RecordKind ContentKind `json:"recordKind,omitempty"`
	RecordID   string      `json:"recordId,omitempty"`
	At         time.Time   `json:"at"`
}

// EventFor maps a terminal moderation status to its notification type.
func EventFor(status ContentStatus) EventType {
	if status == StatusApproved {
		return EventApproval
	}
	return EventRejection
}

// Package models holds the shared data types for door state monitoring.
package models

import (
	"time"

	"github.com/google/uuid"
)

// DeviceState is the observed state of the monitored door.
type DeviceState string

const (
	StateOpen   DeviceState = "open"
	StateClosed DeviceState = "closed"
	// StateUnknown means no state has been observed yet, or the last poll
	// failed. It is never a transition target.
	StateUnknown DeviceState = "unknown"
)

// EventKind classifies a state transition.
type EventKind string

const (
	EventOpen  EventKind = "OPEN"
	EventClose EventKind = "CLOSE"
)

// Event is one recorded state transition. Events are constructed once by
// the detector, handed to a sink, and discarded.
type Event struct {
	ID        uuid.UUID
	Timestamp time.Time
	Kind      EventKind
	// Duration is the length of the open interval that a CLOSE event ends.
	// Nil for OPEN events and for a CLOSE with no paired OPEN in memory.
	Duration *time.Duration
	Notes    string
}

// NewEvent builds an Event with a fresh ID and a UTC timestamp truncated
// to second precision.
func NewEvent(kind EventKind, at time.Time, duration *time.Duration, notes string) *Event {
	return &Event{
		ID:        uuid.New(),
		Timestamp: at.UTC().Truncate(time.Second),
		Kind:      kind,
		Duration:  duration,
		Notes:     notes,
	}
}

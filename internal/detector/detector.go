// Package detector contains the pure state-transition logic for the door.
// It has no I/O and never reads the clock; time is always passed in, so
// transition and duration accounting can be tested without a live device.
package detector

import (
	"time"

	"doorwatch/internal/models"
)

// Detector turns a sequence of polled door states into OPEN/CLOSE events.
// It remembers only the previously observed state and the start of the
// current open interval.
type Detector struct {
	prev      models.DeviceState
	openSince time.Time // zero when not inside an open interval
}

// New returns a Detector with no baseline. The first observation only
// establishes the baseline and can never emit an event.
func New() *Detector {
	return &Detector{prev: models.StateUnknown}
}

// Observe feeds one successfully polled state into the detector and returns
// the event it implies, or nil when nothing changed. Failed polls must not
// be passed in; skipping them leaves the detector state untouched so a
// transient failure can neither fabricate nor suppress a transition.
func (d *Detector) Observe(state models.DeviceState, now time.Time) *models.Event {
	if state != models.StateOpen && state != models.StateClosed {
		// Unknown is a sentinel, never a transition target.
		return nil
	}

	if d.prev == models.StateUnknown {
		d.prev = state
		return nil
	}

	if state == d.prev {
		return nil
	}

	d.prev = state

	if state == models.StateOpen {
		d.openSince = now
		return models.NewEvent(models.EventOpen, now, nil, "")
	}

	var duration *time.Duration
	if !d.openSince.IsZero() {
		elapsed := now.Sub(d.openSince)
		duration = &elapsed
	}
	d.openSince = time.Time{}
	return models.NewEvent(models.EventClose, now, duration, "")
}

// Current returns the last observed state, or StateUnknown before the
// baseline is established.
func (d *Detector) Current() models.DeviceState {
	return d.prev
}

// Package status tracks what the monitor is doing so the HTTP surface can
// report it: uptime, current state, event counts, the last poll error, and
// a bounded window of recent events.
package status

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"doorwatch/internal/models"
)

// EventRow is one recent event as exposed on /status.
type EventRow struct {
	ID          string   `json:"id"`
	Timestamp   string   `json:"timestamp"`
	Kind        string   `json:"kind"`
	DurationMin *float64 `json:"duration_min,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

// Snapshot is a point-in-time view of the tracker.
type Snapshot struct {
	Now           time.Time  `json:"now"`
	StartedAt     time.Time  `json:"started_at"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	DoorState     string     `json:"door_state"`
	OpenEvents    int        `json:"open_events"`
	CloseEvents   int        `json:"close_events"`
	LastError     string     `json:"last_error,omitempty"`
	LastErrorAt   *time.Time `json:"last_error_at,omitempty"`
	RecentEvents  []EventRow `json:"recent_events"`
}

// Tracker accumulates run status. Recent events live in an LRU cache so the
// window stays bounded no matter how long the process runs.
type Tracker struct {
	mu          sync.Mutex
	startedAt   time.Time
	state       models.DeviceState
	openCount   int
	closeCount  int
	lastError   string
	lastErrorAt time.Time
	recent      *lru.Cache
}

func NewTracker(startedAt time.Time, recentSize int) (*Tracker, error) {
	recent, err := lru.New(recentSize)
	if err != nil {
		return nil, err
	}
	return &Tracker{
		startedAt: startedAt,
		state:     models.StateUnknown,
		recent:    recent,
	}, nil
}

// SetState records the most recent successfully polled state.
func (t *Tracker) SetState(state models.DeviceState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = state
}

// SetLastError records a recoverable failure for later inspection.
func (t *Tracker) SetLastError(err error, at time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastError = err.Error()
	t.lastErrorAt = at
}

// AddEvent counts an emitted event and keeps it in the recent window.
func (t *Tracker) AddEvent(ev *models.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev.Kind {
	case models.EventOpen:
		t.openCount++
	case models.EventClose:
		t.closeCount++
	}

	row := EventRow{
		ID:        ev.ID.String(),
		Timestamp: ev.Timestamp.Format(time.RFC3339),
		Kind:      string(ev.Kind),
		Notes:     ev.Notes,
	}
	if ev.Duration != nil {
		m := ev.Duration.Minutes()
		row.DurationMin = &m
	}
	t.recent.Add(row.ID, row)
}

// Snapshot returns the current status. Recent events come back oldest first.
func (t *Tracker) Snapshot(now time.Time) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	snap := Snapshot{
		Now:           now,
		StartedAt:     t.startedAt,
		UptimeSeconds: now.Sub(t.startedAt).Seconds(),
		DoorState:     string(t.state),
		OpenEvents:    t.openCount,
		CloseEvents:   t.closeCount,
		LastError:     t.lastError,
		RecentEvents:  make([]EventRow, 0, t.recent.Len()),
	}
	if !t.lastErrorAt.IsZero() {
		at := t.lastErrorAt
		snap.LastErrorAt = &at
	}
	for _, key := range t.recent.Keys() {
		if v, ok := t.recent.Peek(key); ok {
			snap.RecentEvents = append(snap.RecentEvents, v.(EventRow))
		}
	}
	return snap
}

// Package sink records door events durably in Postgres or echoes them to a
// local writer in dry-run mode. Both sinks are append-only and write events
// in the order produced.
package sink

import (
	"context"
	"errors"
	"fmt"

	"doorwatch/internal/models"
)

// ErrWrite wraps recoverable sink failures. The poll loop logs these and
// drops the event rather than queueing retries; the audit log favors
// availability of monitoring over completeness of every row.
var ErrWrite = errors.New("event write failed")

// EventSink records one event row per call.
type EventSink interface {
	Record(ctx context.Context, ev *models.Event) error
	Close() error
}

const timestampLayout = "2006-01-02 15:04:05 UTC"

// FormatRow renders an event as the canonical output row:
// timestamp, kind, duration in minutes to one decimal (or empty), notes.
func FormatRow(ev *models.Event) (timestamp, kind, duration, notes string) {
	timestamp = ev.Timestamp.UTC().Format(timestampLayout)
	kind = string(ev.Kind)
	if ev.Duration != nil {
		duration = fmt.Sprintf("%.1f", ev.Duration.Minutes())
	}
	notes = ev.Notes
	return
}

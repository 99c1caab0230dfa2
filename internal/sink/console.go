package sink

import (
	"context"
	"fmt"
	"io"

	"doorwatch/internal/models"
)

// ConsoleSink echoes event rows to a writer instead of the durable store.
// Used in dry-run mode to inspect what would be recorded.
type ConsoleSink struct {
	w io.Writer
}

func NewConsoleSink(w io.Writer) *ConsoleSink {
	return &ConsoleSink{w: w}
}

func (s *ConsoleSink) Record(_ context.Context, ev *models.Event) error {
	timestamp, kind, duration, notes := FormatRow(ev)
	_, err := fmt.Fprintf(s.w, "[DRY RUN]  %s  %-6s  dur=%6s min  notes=%s\n",
		timestamp, kind, duration, notes)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (s *ConsoleSink) Close() error { return nil }

// Compile-time interface implementation check
var _ EventSink = (*ConsoleSink)(nil)

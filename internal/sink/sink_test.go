package sink

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorwatch/internal/models"
)

func minutes(m float64) *time.Duration {
	d := time.Duration(m * float64(time.Minute))
	return &d
}

func TestFormatRow(t *testing.T) {
	at := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)

	tests := []struct {
		name         string
		event        *models.Event
		wantKind     string
		wantDuration string
	}{
		{
			name:         "open event has empty duration",
			event:        models.NewEvent(models.EventOpen, at, nil, ""),
			wantKind:     "OPEN",
			wantDuration: "",
		},
		{
			name:         "close event formats minutes to one decimal",
			event:        models.NewEvent(models.EventClose, at, minutes(9.0), ""),
			wantKind:     "CLOSE",
			wantDuration: "9.0",
		},
		{
			name:         "fractional minutes round to one decimal",
			event:        models.NewEvent(models.EventClose, at, minutes(2.25), ""),
			wantKind:     "CLOSE",
			wantDuration: "2.2",
		},
		{
			name:         "unpaired close has empty duration",
			event:        models.NewEvent(models.EventClose, at, nil, ""),
			wantKind:     "CLOSE",
			wantDuration: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timestamp, kind, duration, notes := FormatRow(tt.event)
			assert.Equal(t, "2026-03-02 09:10:00 UTC", timestamp)
			assert.Equal(t, tt.wantKind, kind)
			assert.Equal(t, tt.wantDuration, duration)
			assert.Equal(t, "", notes)
		})
	}
}

func TestFormatRowConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	ev := models.NewEvent(models.EventOpen, time.Date(2026, 3, 2, 10, 0, 0, 0, loc), nil, "")

	timestamp, _, _, _ := FormatRow(ev)
	assert.Equal(t, "2026-03-02 09:00:00 UTC", timestamp)
}

func TestConsoleSinkWritesRows(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSink(&buf)

	at := time.Date(2026, 3, 2, 9, 10, 0, 0, time.UTC)
	require.NoError(t, s.Record(context.Background(), models.NewEvent(models.EventOpen, at, nil, "")))
	require.NoError(t, s.Record(context.Background(), models.NewEvent(models.EventClose, at.Add(9*time.Minute), minutes(9.0), "")))

	out := buf.String()
	assert.Contains(t, out, "[DRY RUN]  2026-03-02 09:10:00 UTC  OPEN")
	assert.Contains(t, out, "[DRY RUN]  2026-03-02 09:19:00 UTC  CLOSE")
	assert.Contains(t, out, "dur=   9.0 min")

	// Order preserved: OPEN line before CLOSE line.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("OPEN")), bytes.Index(buf.Bytes(), []byte("CLOSE")))
}

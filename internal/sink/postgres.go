package sink

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"doorwatch/internal/models"
)

// PostgresSink appends event rows to the door_events table.
//
// Expected schema:
//
//	CREATE TABLE door_events (
//	    id           uuid PRIMARY KEY,
//	    time         timestamptz NOT NULL,
//	    kind         text NOT NULL,
//	    duration_min numeric,
//	    notes        text NOT NULL DEFAULT ''
//	);
type PostgresSink struct {
	db *sql.DB
}

// NewPostgresSink connects to the event store and verifies connectivity, so
// an unreachable store fails at startup instead of on the first event.
func NewPostgresSink(connStr string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	return &PostgresSink{db: db}, nil
}

func (s *PostgresSink) Record(ctx context.Context, ev *models.Event) error {
	var durationMin interface{}
	if ev.Duration != nil {
		durationMin = ev.Duration.Minutes()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO door_events (id, time, kind, duration_min, notes) VALUES ($1, $2, $3, $4, $5)",
		ev.ID, ev.Timestamp, string(ev.Kind), durationMin, ev.Notes,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// Compile-time interface implementation check
var _ EventSink = (*PostgresSink)(nil)

package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doorwatch/internal/models"
	"doorwatch/internal/status"
)

func newServer(t *testing.T) (*Server, *status.Tracker) {
	t.Helper()
	tracker, err := status.NewTracker(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), 8)
	require.NoError(t, err)
	return New(":0", tracker), tracker
}

func TestHealthz(t *testing.T) {
	srv, _ := newServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestStatus(t *testing.T) {
	srv, tracker := newServer(t)

	tracker.SetState(models.StateOpen)
	tracker.AddEvent(models.NewEvent(models.EventOpen, time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC), nil, ""))

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var snap status.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, "open", snap.DoorState)
	assert.Equal(t, 1, snap.OpenEvents)
	require.Len(t, snap.RecentEvents, 1)
	assert.Equal(t, "OPEN", snap.RecentEvents[0].Kind)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newServer(t)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

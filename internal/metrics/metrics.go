// Package metrics exposes Prometheus collectors for the poll loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"doorwatch/internal/models"
)

var (
	PollsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doorwatch_polls_total",
		Help: "Total number of device state polls attempted.",
	})

	PollErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doorwatch_poll_errors_total",
		Help: "Polls that failed and were skipped.",
	})

	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "doorwatch_events_total",
		Help: "State transition events emitted, by kind.",
	}, []string{"kind"})

	SinkWriteErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "doorwatch_sink_write_errors_total",
		Help: "Events dropped because the sink write failed.",
	})

	doorOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "doorwatch_door_open",
		Help: "Current door state: 1 open, 0 closed.",
	})

	OpenDurationMinutes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "doorwatch_open_duration_minutes",
		Help:    "Length of completed open intervals in minutes.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
	})
)

// ObserveState updates the door state gauge from a successful poll.
func ObserveState(state models.DeviceState) {
	switch state {
	case models.StateOpen:
		doorOpen.Set(1)
	case models.StateClosed:
		doorOpen.Set(0)
	}
}

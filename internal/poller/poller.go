// Package poller runs the poll loop: query the device, feed the detector,
// forward events to the sink, sleep, repeat until cancelled.
package poller

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"doorwatch/internal/detector"
	"doorwatch/internal/metrics"
	"doorwatch/internal/models"
	"doorwatch/internal/sink"
	"doorwatch/internal/status"
)

// StateSource yields the device's current state, or a recoverable error.
type StateSource interface {
	State(ctx context.Context) (models.DeviceState, error)
}

// Loop owns the single detector instance. Only the goroutine running Run
// touches it, so no locking is needed.
type Loop struct {
	source   StateSource
	sink     sink.EventSink
	detector *detector.Detector
	tracker  *status.Tracker
	interval time.Duration
	logger   *logrus.Logger
	now      func() time.Time
}

func New(source StateSource, eventSink sink.EventSink, det *detector.Detector, tracker *status.Tracker, interval time.Duration, logger *logrus.Logger) *Loop {
	return &Loop{
		source:   source,
		sink:     eventSink,
		detector: det,
		tracker:  tracker,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Run polls immediately, then once per interval until ctx is cancelled.
// Cancellation is honored both during the sleep and inside the device
// query, so shutdown is prompt. Returns nil on clean cancellation; poll
// and sink failures never terminate the loop.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.WithFields(logrus.Fields{
		"interval": l.interval.String(),
	}).Info("Starting poll loop")

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		l.poll(ctx)

		select {
		case <-ctx.Done():
			l.logger.Info("Poll loop stopped")
			return nil
		case <-ticker.C:
		}
	}
}

// poll runs one iteration. A failed query skips the detector entirely so a
// transient failure cannot fabricate or suppress a transition.
func (l *Loop) poll(ctx context.Context) {
	state, err := l.source.State(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return // shutting down, not a poll failure
		}
		metrics.PollsTotal.Inc()
		metrics.PollErrorsTotal.Inc()
		l.tracker.SetLastError(err, l.now().UTC())
		l.logger.WithError(err).Warn("Poll failed, will retry next interval")
		return
	}

	metrics.PollsTotal.Inc()
	metrics.ObserveState(state)
	l.tracker.SetState(state)

	ev := l.detector.Observe(state, l.now())
	if ev == nil {
		return
	}

	metrics.EventsTotal.WithLabelValues(string(ev.Kind)).Inc()
	if ev.Duration != nil {
		metrics.OpenDurationMinutes.Observe(ev.Duration.Minutes())
	}
	l.tracker.AddEvent(ev)

	fields := logrus.Fields{
		"event": string(ev.Kind),
		"time":  ev.Timestamp.Format(time.RFC3339),
	}
	if ev.Duration != nil {
		fields["duration_min"] = ev.Duration.Minutes()
	}

	if err := l.sink.Record(ctx, ev); err != nil {
		// Dropped, not retried: an unbounded retry queue is worse than a
		// missing row in a low-stakes audit log.
		metrics.SinkWriteErrorsTotal.Inc()
		l.tracker.SetLastError(err, l.now().UTC())
		l.logger.WithError(err).WithFields(fields).Error("Failed to record event, row dropped")
		return
	}

	l.logger.WithFields(fields).Info("Logged event")
}

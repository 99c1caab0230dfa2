package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"doorwatch/internal/config"
	"doorwatch/internal/detector"
	"doorwatch/internal/device"
	"doorwatch/internal/poller"
	"doorwatch/internal/sink"
	"doorwatch/internal/status"
	"doorwatch/internal/web"
)

// Command doorwatch monitors a remotely-controlled door through its cloud
// API and records every OPEN/CLOSE transition, with the length of each open
// interval, in a Postgres audit table.
//
// Usage:
//
//	doorwatch [flags]
//
// The flags are:
//
//	-config string
//	      path to config file (default "config.yaml")
//	-dry-run
//	      print events to stdout instead of writing to the event store
//	-http string
//	      listen address for /healthz, /status and /metrics (default ":9090",
//	      empty to disable)
func main() {
	flags := parseFlags()

	appConfig, err := config.Load(flags.ConfigPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := newLogger(appConfig.Logging)

	logger.WithFields(logrus.Fields{
		"interval": appConfig.Interval().String(),
		"dry_run":  flags.DryRun,
	}).Info("Starting doorwatch")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel, logger)

	client := device.NewClient(appConfig.Device.BaseURL, appConfig.Device.Email, appConfig.Device.Password, logger)
	if err := client.Login(ctx); err != nil {
		logger.Fatalf("Failed to authenticate with device API: %v", err)
	}

	door, err := client.FindDoor(ctx)
	if err != nil {
		logger.Fatalf("Failed to find a device to monitor: %v", err)
	}
	logger.WithFields(logrus.Fields{
		"name": door.Name(),
		"id":   door.ID(),
	}).Info("Monitoring device")

	eventSink, err := buildSink(appConfig, flags.DryRun, logger)
	if err != nil {
		logger.Fatalf("Failed to set up event sink: %v", err)
	}
	defer eventSink.Close()

	tracker, err := status.NewTracker(time.Now().UTC(), 64)
	if err != nil {
		logger.Fatalf("Failed to create status tracker: %v", err)
	}

	if flags.HTTPAddr != "" {
		srv := web.New(flags.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.WithError(err).Error("HTTP server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.WithField("addr", flags.HTTPAddr).Info("HTTP status server listening")
	}

	loop := poller.New(door, eventSink, detector.New(), tracker, appConfig.Interval(), logger)
	if err := loop.Run(ctx); err != nil {
		logger.Fatalf("Poll loop error: %v", err)
	}

	logger.Info("Stopped")
}

type Flags struct {
	ConfigPath string
	DryRun     bool
	HTTPAddr   string
}

func parseFlags() *Flags {
	flags := &Flags{}

	flag.StringVar(&flags.ConfigPath, "config", "config.yaml", "Path to config file")
	flag.BoolVar(&flags.DryRun, "dry-run", false, "Print events to stdout instead of writing to the event store")
	flag.StringVar(&flags.HTTPAddr, "http", ":9090", "Listen address for /healthz, /status and /metrics (empty to disable)")

	flag.Parse()

	return flags
}

func newLogger(cfg config.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	return logger
}

// buildSink picks the durable Postgres writer or, in dry-run mode, a
// console echo that never touches the event store.
func buildSink(cfg *config.Config, dryRun bool, logger *logrus.Logger) (sink.EventSink, error) {
	if dryRun {
		logger.Info("Dry-run mode: events will be printed, not recorded")
		return sink.NewConsoleSink(os.Stdout), nil
	}

	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}

	logger.Info("Connecting to event store")
	pg, err := sink.NewPostgresSink(cfg.Database.ConnString())
	if err != nil {
		return nil, err
	}
	logger.WithField("database", cfg.Database.Name).Info("Event store ready")
	return pg, nil
}

// handleSignals cancels the root context on SIGINT/SIGTERM so the poll
// loop exits at its next cancellation point.
func handleSignals(cancel context.CancelFunc, logger *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	sig := <-sigChan
	logger.WithField("signal", sig.String()).Info("Received signal, shutting down")
	cancel()
}

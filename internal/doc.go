// Package doorwatch implements a break-time auditor that watches a single
// remotely-controlled door through its cloud API.
//
// # Architecture
//
// The monitor is structured into several key packages:
//   - device: cloud device API client (login, device discovery, state polls)
//   - detector: pure state-transition logic and open-interval accounting
//   - poller: the polling loop tying device, detector and sink together
//   - sink: event recording, durable (Postgres) or console (dry-run)
//   - status: run status and recent-event window for the HTTP surface
//   - web: /healthz, /status and /metrics endpoints
//   - config: YAML configuration loading
//   - models: shared data structures
//
// Key behaviors
//
//   - Transition detection:
//     The first successful poll only establishes a baseline; afterwards
//     each change between open and closed emits one event, and every CLOSE
//     carries the duration of the open interval it ends when one was
//     observed.
//
//   - Failure policy:
//     Poll failures skip the detector and are retried on the next interval.
//     Sink write failures drop the row and keep monitoring; losses are
//     counted in metrics.
//
// For more information about specific packages, see their respective
// documentation.
package doorwatch

// Package fleet keeps a pool of connected runtime handles in sync with a
// registry of configured devices.
//
// The Manager owns three concurrent loops that all operate on one shared
// pool of live handles:
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│                            Manager                                │
//	│                                                                   │
//	│  ┌────────────────┐   ┌────────────────┐   ┌──────────────────┐  │
//	│  │   supervisor   │   │     poller     │   │     reporter     │  │
//	│  │ (supervisor.go)│   │  (poller.go)   │   │  (reporter.go)   │  │
//	│  │                │   │                │   │                  │  │
//	│  │ registry→pool  │   │ • health poll  │   │ • info snapshot  │  │
//	│  │ reconciliation │   │ • evict dead   │   │ • stats snapshot │  │
//	│  │ • serial conn. │   │   handles      │   │ • per-device     │  │
//	│  │   attempts     │   │ • disconnect   │   │   fault isolation│  │
//	│  └───────┬────────┘   │   callbacks    │   └────────┬─────────┘  │
//	│          │            └───────┬────────┘            │            │
//	│          ▼ insert             ▼ remove              ▼ read       │
//	│  ┌────────────────────────────────────────────────────────────┐  │
//	│  │                     pool (pool.go)                          │  │
//	│  │        live handles keyed by device id, mutex-guarded       │  │
//	│  └────────────────────────────────────────────────────────────┘  │
//	└──────────────────────────────────────────────────────────────────┘
//
// # Key Types
//
//   - Device: caller-owned configuration entity with lifecycle callbacks
//   - Handle: the live, connected counterpart of a Device
//   - Registry: the set of configured devices (mutated only by the caller)
//   - Manager: lifecycle coordinator with an explicit status state machine
//
// # Lifecycle
//
// Start blocks until at least one device has been registered, then launches
// the three loops and returns. Stop cancels the loops cooperatively, joins
// them, destroys externally registered streams, tears down any handle that
// is not already disconnected, and returns an aggregate error if any part
// of the teardown fails.
//
// # Thread Safety
//
// All Manager, Registry and pool operations are safe for concurrent use.
// Cancellation is cooperative: each loop observes it between iterations, so
// shutdown latency is bounded by the longest in-flight collaborator call.
package fleet

package fleet

import "time"

// State is the lifecycle state of a runtime handle.
type State string

// Handle lifecycle states. Implementations may use further internal states;
// the manager only distinguishes these two.
const (
	StateConnected    State = "connected"
	StateDisconnected State = "disconnected"
)

// Handle is the live, connected counterpart of a Device. Handles are
// created by the reconciliation loop on successful connect and destroyed
// either by the health poller (failed poll) or by the manager at shutdown.
//
// Implementations must be safe for concurrent use: Poll, Info and Stats are
// called from different loops.
type Handle interface {
	// ID returns the owning device's id.
	ID() string

	// State returns the current lifecycle state.
	State() State

	// Start launches the handle's runtime after the owning device has
	// configured it.
	Start() error

	// Stop shuts the runtime down. It must be safe to call on a handle
	// whose runtime never started, and safe to call more than once.
	Stop()

	// Poll reports whether the underlying device is still healthy. A
	// single false is terminal: the poller evicts the handle and the
	// device is reconnected on a later reconciliation scan.
	Poll() bool

	// Info returns a descriptive snapshot for telemetry.
	Info() (InfoRecord, error)

	// Stats returns a usage snapshot for telemetry.
	Stats() (StatsRecord, error)

	// Teardown is the raw shutdown hook invoked by the manager during Stop
	// for handles that are not already disconnected.
	Teardown() error
}

// HandleFactory constructs a new, not-yet-started handle bound to a device
// id. The factory is called by the reconciliation loop for every connection
// attempt.
type HandleFactory func(deviceID string) Handle

// InfoRecord is a descriptive snapshot of a connected device.
type InfoRecord struct {
	DeviceID    string    `json:"device_id"`
	Name        string    `json:"name,omitempty"`
	Protocol    string    `json:"protocol,omitempty"`
	State       string    `json:"state"`
	CollectedAt time.Time `json:"collected_at"`
}

// StatsRecord is a usage snapshot of a connected device.
type StatsRecord struct {
	DeviceID        string    `json:"device_id"`
	CPUUsage        float64   `json:"cpu_usage"`
	MemoryUsage     float64   `json:"memory_usage"`
	ChipTemperature float64   `json:"chip_temperature"`
	CollectedAt     time.Time `json:"collected_at"`
}

package fleet

import "errors"

// Domain errors for the fleet package.
//
// These errors can be checked using errors.Is():
//
//	if errors.Is(err, fleet.ErrShutdown) {
//	    // teardown failed, no further recovery path
//	}
var (
	// ErrAlreadyRunning is returned when Start is called on a running manager.
	ErrAlreadyRunning = errors.New("fleet: manager already running")

	// ErrStopped is returned when Start or Stop is called on a manager that
	// has already been stopped. The stopped state is terminal.
	ErrStopped = errors.New("fleet: manager stopped")

	// ErrNoFactory is returned when a manager is constructed without a
	// handle factory.
	ErrNoFactory = errors.New("fleet: handle factory is required")

	// ErrInvalidDevice is returned when a device has no id or no start routine.
	ErrInvalidDevice = errors.New("fleet: invalid device")

	// ErrDeviceExists is returned when registering a device id that is
	// already registered.
	ErrDeviceExists = errors.New("fleet: device already registered")

	// ErrDeviceNotFound is returned when removing a device id that is not
	// registered.
	ErrDeviceNotFound = errors.New("fleet: device not found")

	// ErrHandleExists is returned when inserting a handle for a device id
	// that already has a live handle in the pool.
	ErrHandleExists = errors.New("fleet: handle already in pool")

	// ErrShutdown wraps errors raised during final teardown in Stop.
	ErrShutdown = errors.New("fleet: shutdown failed")
)

package fleet

// Device describes one physical unit the manager should keep connected.
//
// Devices are owned by the caller: the manager reads them, invokes their
// callbacks, and never removes one on its own. Identity is the ID field;
// no two registered devices may share an id.
type Device struct {
	// ID uniquely identifies the physical unit (serial number, MXID, ...).
	ID string

	// Name is an optional human-readable label carried into telemetry.
	Name string

	// Start configures a freshly constructed handle (pipelines, streams)
	// before its runtime is started. Returning an error abandons the
	// attempt; the nascent handle is stopped and the device is retried on
	// the next reconciliation scan. Required.
	Start func(h Handle) error

	// OnConnect is invoked once the handle's runtime has started. Optional.
	OnConnect func(h Handle)

	// OnDisconnect is invoked after the device's handle has been evicted
	// from the pool following a failed health poll. Optional.
	OnDisconnect func(d *Device)
}

// validate checks the fields the manager depends on.
func (d *Device) validate() error {
	if d == nil || d.ID == "" || d.Start == nil {
		return ErrInvalidDevice
	}
	return nil
}

package fleet

import "sync"

// Registry holds the set of configured devices, keyed by id.
//
// The registry is mutated only by explicit Add/Remove calls from outside
// the loops; the loops themselves only read it. All methods are safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry creates an empty device registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Add registers a device. Returns ErrInvalidDevice if the device has no id
// or no start routine, and ErrDeviceExists if the id is already registered.
func (r *Registry) Add(d *Device) error {
	if err := d.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[d.ID]; exists {
		return ErrDeviceExists
	}
	r.devices[d.ID] = d
	return nil
}

// Remove unregisters a device by id.
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[id]; !exists {
		return ErrDeviceNotFound
	}
	delete(r.devices, id)
	return nil
}

// Get returns the registered device for an id, if any.
func (r *Registry) Get(id string) (*Device, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[id]
	return d, ok
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

// Snapshot returns the registered devices at this instant. The slice is
// safe to iterate while the registry is mutated concurrently.
func (r *Registry) Snapshot() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		devices = append(devices, d)
	}
	return devices
}

package stream

import (
	"errors"
	"fmt"
	"sync"
)

// Sentinel errors for stream registry operations.
var (
	// ErrStreamExists is returned when registering a duplicate stream name.
	ErrStreamExists = errors.New("stream: stream already registered")

	// ErrInvalidStream is returned for registrations with missing fields.
	ErrInvalidStream = errors.New("stream: invalid stream registration")
)

// Logger defines the logging interface used by the stream package.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// entry is one registered stream.
type entry struct {
	deviceID string
	close    func() error
}

// Registry tracks video streams opened by device callbacks so they can be
// torn down together at shutdown.
//
// Streams are registered under a unique name (typically "<device>/<output>").
// The fleet manager calls DestroyAllStreams once during Stop; the registry
// owns no stream lifecycle beyond that final teardown.
//
// Thread Safety:
//   - All methods are safe for concurrent use from multiple goroutines.
type Registry struct {
	mu      sync.Mutex
	streams map[string]entry
	logger  Logger
}

// NewRegistry creates an empty stream registry.
func NewRegistry() *Registry {
	return &Registry{
		streams: make(map[string]entry),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = logger
}

// Register adds a stream under the given name. The close function is invoked
// during DestroyAllStreams.
func (r *Registry) Register(deviceID, name string, close func() error) error {
	if deviceID == "" || name == "" || close == nil {
		return ErrInvalidStream
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[name]; exists {
		return fmt.Errorf("%w: %s", ErrStreamExists, name)
	}
	r.streams[name] = entry{deviceID: deviceID, close: close}
	r.logger.Debug("stream registered", "stream", name, "device_id", deviceID)
	return nil
}

// Unregister removes a stream without closing it. Used when a device
// callback tears down its own stream early.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.streams[name]; !exists {
		return false
	}
	delete(r.streams, name)
	return true
}

// DestroyDevice closes and removes every stream registered for one device.
// Used when a single device drops out while the rest of the fleet keeps
// running. Close errors are joined; all close functions run regardless.
func (r *Registry) DestroyDevice(deviceID string) error {
	r.mu.Lock()
	doomed := make(map[string]entry)
	for name, e := range r.streams {
		if e.deviceID == deviceID {
			doomed[name] = e
			delete(r.streams, name)
		}
	}
	logger := r.logger
	r.mu.Unlock()

	var errs []error
	for name, e := range doomed {
		if err := e.close(); err != nil {
			logger.Warn("failed to close stream", "stream", name, "device_id", deviceID, "error", err)
			errs = append(errs, fmt.Errorf("stream %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

// Count returns the number of registered streams.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.streams)
}

// DestroyAllStreams closes every registered stream and empties the registry.
// All close functions run even when some fail; their errors are joined into
// the returned error.
func (r *Registry) DestroyAllStreams() error {
	r.mu.Lock()
	streams := r.streams
	r.streams = make(map[string]entry)
	logger := r.logger
	r.mu.Unlock()

	var errs []error
	for name, e := range streams {
		if err := e.close(); err != nil {
			logger.Warn("failed to close stream", "stream", name, "device_id", e.deviceID, "error", err)
			errs = append(errs, fmt.Errorf("stream %s: %w", name, err))
		}
	}

	return errors.Join(errs...)
}

package fleet

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Logger defines the logging interface used by the fleet package.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// StreamDestroyer tears down all externally registered streaming resources.
// It is called exactly once, after the loops have stopped.
type StreamDestroyer interface {
	DestroyAllStreams() error
}

// noopStreams has nothing to destroy.
type noopStreams struct{}

func (noopStreams) DestroyAllStreams() error { return nil }

// EventRecorder persists connection lifecycle transitions. Implementations
// must not block for extended periods; recording happens on the loop
// goroutines.
type EventRecorder interface {
	Record(deviceID, event string)
}

// Lifecycle events passed to the EventRecorder.
const (
	EventConnected    = "connected"
	EventDisconnected = "disconnected"
)

// noopRecorder discards all events.
type noopRecorder struct{}

func (noopRecorder) Record(string, string) {}

// Status is the manager's lifecycle state. Transitions are strictly
// idle → running → stopping → stopped; stopped is terminal.
type Status string

// Manager lifecycle states.
const (
	StatusIdle     Status = "idle"
	StatusRunning  Status = "running"
	StatusStopping Status = "stopping"
	StatusStopped  Status = "stopped"
)

// Default loop cadences. The poll interval is intentionally tiny: detecting
// a dead device quickly is the priority, while reconnection and telemetry
// are not latency-critical.
const (
	defaultScanInterval        = 5 * time.Second
	defaultPollInterval        = 500 * time.Microsecond
	defaultReportInterval      = 10 * time.Second
	defaultStartupPollInterval = 5 * time.Second
	defaultJoinTimeout         = 30 * time.Second
)

// Config holds manager timing settings. Zero values select the defaults.
type Config struct {
	// ScanInterval is the reconciliation scan cadence.
	ScanInterval time.Duration

	// PollInterval is the idle interval between health poll passes while
	// handles exist.
	PollInterval time.Duration

	// ReportInterval is the telemetry cadence.
	ReportInterval time.Duration

	// StartupPollInterval is how often Start re-checks the registry while
	// waiting for the first device.
	StartupPollInterval time.Duration

	// JoinTimeout bounds how long Stop waits for each loop to exit. An
	// expired join is logged but does not abort the shutdown sequence.
	JoinTimeout time.Duration
}

func (c *Config) applyDefaults() {
	if c.ScanInterval <= 0 {
		c.ScanInterval = defaultScanInterval
	}
	if c.PollInterval <= 0 {
		c.PollInterval = defaultPollInterval
	}
	if c.ReportInterval <= 0 {
		c.ReportInterval = defaultReportInterval
	}
	if c.StartupPollInterval <= 0 {
		c.StartupPollInterval = defaultStartupPollInterval
	}
	if c.JoinTimeout <= 0 {
		c.JoinTimeout = defaultJoinTimeout
	}
}

// Options wires external collaborators into the manager.
type Options struct {
	// Factory constructs runtime handles. Required.
	Factory HandleFactory

	// Sink receives periodic telemetry snapshots. Optional.
	Sink TelemetrySink

	// Streams is torn down once during Stop. Optional.
	Streams StreamDestroyer

	// Events records connect/disconnect transitions. Optional.
	Events EventRecorder
}

// Manager owns the fleet lifecycle: it launches and joins the three loops
// and carries the shared registry and pool they operate on.
//
// A manager is constructed once, started once and stopped once. It is an
// explicitly constructed object owned by the process entry point, not a
// package-level singleton.
type Manager struct {
	cfg      Config
	registry *Registry
	pool     *pool
	factory  HandleFactory
	sink     TelemetrySink
	streams  StreamDestroyer
	events   EventRecorder
	logger   Logger

	mu     sync.Mutex
	status Status
	cancel context.CancelFunc
	loops  []*loop
}

// loop tracks one running goroutine for joining at shutdown.
type loop struct {
	name string
	done chan struct{}
}

// New creates a manager. The handle factory is required; all other
// collaborators default to no-ops.
func New(cfg Config, opts Options) (*Manager, error) {
	if opts.Factory == nil {
		return nil, ErrNoFactory
	}
	cfg.applyDefaults()

	m := &Manager{
		cfg:      cfg,
		registry: NewRegistry(),
		pool:     newPool(),
		factory:  opts.Factory,
		sink:     opts.Sink,
		streams:  opts.Streams,
		events:   opts.Events,
		logger:   noopLogger{},
		status:   StatusIdle,
	}
	if m.sink == nil {
		m.sink = noopSink{}
	}
	if m.streams == nil {
		m.streams = noopStreams{}
	}
	if m.events == nil {
		m.events = noopRecorder{}
	}
	return m, nil
}

// SetLogger sets the logger for the manager and its loops. Must be called
// before Start.
func (m *Manager) SetLogger(logger Logger) {
	m.logger = logger
}

// AddDevice registers a device. Devices may be added at any time, before or
// after Start; the next reconciliation scan picks them up.
func (m *Manager) AddDevice(d *Device) error {
	return m.registry.Add(d)
}

// RemoveDevice unregisters a device. Any live handle for the device is
// stopped and removed from the pool so the pool never exceeds the registry;
// the disconnect callback is not invoked for a deliberate removal.
func (m *Manager) RemoveDevice(d *Device) error {
	if d == nil {
		return ErrInvalidDevice
	}
	if err := m.registry.Remove(d.ID); err != nil {
		return err
	}
	if h, ok := m.pool.remove(d.ID); ok {
		h.Stop()
		m.logger.Info("device removed, handle stopped", "device_id", d.ID)
	}
	return nil
}

// Start transitions the manager to running. It blocks, polling the registry
// at the startup interval, until at least one device is registered, then
// launches the supervisor, reporter and poller loops and returns. No loop
// is launched while the registry is empty.
//
// ctx bounds only the startup gate; once the loops are launched they run
// until Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	switch m.status {
	case StatusRunning:
		m.mu.Unlock()
		return ErrAlreadyRunning
	case StatusStopping, StatusStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.mu.Unlock()

	if err := m.waitForFirstDevice(ctx); err != nil {
		return err
	}

	m.mu.Lock()
	if m.status != StatusIdle {
		status := m.status
		m.mu.Unlock()
		if status == StatusRunning {
			return ErrAlreadyRunning
		}
		return ErrStopped
	}

	runCtx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel
	m.status = StatusRunning

	sup := &supervisor{
		registry:     m.registry,
		pool:         m.pool,
		factory:      m.factory,
		events:       m.events,
		logger:       m.logger,
		scanInterval: m.cfg.ScanInterval,
	}
	rep := &reporter{
		pool:           m.pool,
		sink:           m.sink,
		logger:         m.logger,
		reportInterval: m.cfg.ReportInterval,
	}
	pol := &poller{
		registry:     m.registry,
		pool:         m.pool,
		events:       m.events,
		logger:       m.logger,
		pollInterval: m.cfg.PollInterval,
	}

	m.loops = []*loop{
		m.launch(runCtx, "connection-supervisor", sup.run),
		m.launch(runCtx, "telemetry-reporter", rep.run),
		m.launch(runCtx, "health-poller", pol.run),
	}
	m.mu.Unlock()

	m.logger.Info("fleet manager started", "devices", m.registry.Len())
	return nil
}

// waitForFirstDevice blocks until the registry is non-empty or ctx is
// cancelled.
func (m *Manager) waitForFirstDevice(ctx context.Context) error {
	if m.registry.Len() > 0 {
		return nil
	}
	m.logger.Info("waiting for first device registration")

	for m.registry.Len() == 0 {
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for first device: %w", ctx.Err())
		case <-time.After(m.cfg.StartupPollInterval):
		}
	}
	return nil
}

// launch starts one loop goroutine and returns its join record.
func (m *Manager) launch(ctx context.Context, name string, fn func(context.Context)) *loop {
	l := &loop{name: name, done: make(chan struct{})}
	go func() {
		defer close(l.done)
		fn(ctx)
	}()
	m.logger.Info("loop started", "loop", name)
	return l
}

// Stop transitions the manager to stopped. It signals cooperative
// cancellation, joins each loop, destroys all externally registered
// streams, and tears down every handle that is not already disconnected
// (with collaborator stdout silenced).
//
// Shutdown-time errors have no further recovery path, so stream and handle
// teardown failures are collected, wrapped in ErrShutdown and returned
// rather than swallowed. Loop join timeouts are logged only. On return the
// status is stopped and no loop is running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	switch m.status {
	case StatusStopping, StatusStopped:
		m.mu.Unlock()
		return ErrStopped
	}
	m.status = StatusStopping
	cancel := m.cancel
	loops := m.loops
	m.loops = nil
	m.mu.Unlock()

	m.logger.Debug("stopping loops")
	if cancel != nil {
		cancel()
	}
	for _, l := range loops {
		m.join(l)
	}

	var errs []error
	if err := m.streams.DestroyAllStreams(); err != nil {
		errs = append(errs, fmt.Errorf("destroying streams: %w", err))
	}

	for _, h := range m.pool.drain() {
		if h.State() == StateDisconnected {
			continue
		}
		if err := silenceStdout(h.Teardown); err != nil {
			errs = append(errs, fmt.Errorf("device %s: teardown: %w", h.ID(), err))
		}
	}

	m.mu.Lock()
	m.status = StatusStopped
	m.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrShutdown, errors.Join(errs...))
	}
	m.logger.Info("fleet manager stopped")
	return nil
}

// join waits for one loop to exit, bounded by the join timeout.
func (m *Manager) join(l *loop) {
	select {
	case <-l.done:
		m.logger.Debug("loop stopped", "loop", l.name)
	case <-time.After(m.cfg.JoinTimeout):
		m.logger.Error("loop did not stop within join timeout",
			"loop", l.name,
			"timeout", m.cfg.JoinTimeout,
		)
	}
}

// Status returns the current lifecycle state.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Stats is a point-in-time snapshot of the manager for monitoring.
type Stats struct {
	Status    Status `json:"status"`
	Devices   int    `json:"devices"`
	Connected int    `json:"connected"`
}

// GetStats returns current manager statistics.
func (m *Manager) GetStats() Stats {
	return Stats{
		Status:    m.Status(),
		Devices:   m.registry.Len(),
		Connected: m.pool.len(),
	}
}

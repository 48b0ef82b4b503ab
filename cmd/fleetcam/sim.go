package main

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/nerrad567/fleetcam-core/internal/fleet"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetcam-core/internal/stream"
)

// Simulated device characteristics.
const (
	simBaseTemperature = 42.0
	simTempJitter      = 8.0
	simBaseCPU         = 0.30
	simCPUJitter       = 0.25
	simBaseMemory      = 0.45
	simMemoryJitter    = 0.20
)

// simHandle is a simulated camera runtime. It stands in for real device
// transport until a hardware-backed factory is wired in, and exercises the
// full manager lifecycle: start, health polls, telemetry snapshots and
// teardown.
type simHandle struct {
	id string

	mu       sync.Mutex
	name     string
	protocol string
	state    fleet.State
	started  bool
}

// newSimulatedFactory returns a handle factory producing simulated cameras.
func newSimulatedFactory(log *logging.Logger) fleet.HandleFactory {
	return func(deviceID string) fleet.Handle {
		log.Debug("simulated handle created", "device_id", deviceID)
		return &simHandle{
			id:    deviceID,
			state: fleet.StateConnected,
		}
	}
}

// configure sets the descriptive fields shown in telemetry. Called from the
// owning device's start routine before the runtime launches.
func (h *simHandle) configure(name, protocol string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.name = name
	h.protocol = protocol
}

func (h *simHandle) ID() string { return h.id }

func (h *simHandle) State() fleet.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

func (h *simHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.state != fleet.StateConnected {
		return fmt.Errorf("device %s: cannot start disconnected handle", h.id)
	}
	h.started = true
	return nil
}

func (h *simHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.started = false
	h.state = fleet.StateDisconnected
}

func (h *simHandle) Poll() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state == fleet.StateConnected
}

func (h *simHandle) Info() (fleet.InfoRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fleet.InfoRecord{
		DeviceID:    h.id,
		Name:        h.name,
		Protocol:    h.protocol,
		State:       string(h.state),
		CollectedAt: time.Now().UTC(),
	}, nil
}

func (h *simHandle) Stats() (fleet.StatsRecord, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fleet.StatsRecord{
		DeviceID:        h.id,
		CPUUsage:        simBaseCPU + rand.Float64()*simCPUJitter,
		MemoryUsage:     simBaseMemory + rand.Float64()*simMemoryJitter,
		ChipTemperature: simBaseTemperature + rand.Float64()*simTempJitter,
		CollectedAt:     time.Now().UTC(),
	}, nil
}

func (h *simHandle) Teardown() error {
	h.Stop()
	return nil
}

// newConfiguredDevice builds a fleet device from its config entry. The
// connect callback registers a placeholder stream so the teardown path is
// exercised end to end.
func newConfiguredDevice(dc config.DeviceConfig, streams *stream.Registry, log *logging.Logger) *fleet.Device {
	return &fleet.Device{
		ID:   dc.ID,
		Name: dc.Name,
		Start: func(h fleet.Handle) error {
			if sim, ok := h.(*simHandle); ok {
				sim.configure(dc.Name, dc.Protocol)
			}
			return nil
		},
		OnConnect: func(h fleet.Handle) {
			log.Info("device connected", "device_id", h.ID())

			streamName := fmt.Sprintf("%s/preview", dc.ID)
			err := streams.Register(dc.ID, streamName, func() error {
				log.Debug("stream closed", "stream", streamName)
				return nil
			})
			if err != nil {
				// Reconnects re-register the same stream name.
				streams.Unregister(streamName)
				_ = streams.Register(dc.ID, streamName, func() error { return nil })
			}
		},
		OnDisconnect: func(d *fleet.Device) {
			log.Warn("device disconnected", "device_id", d.ID)
			if err := streams.DestroyDevice(d.ID); err != nil {
				log.Warn("stream teardown after disconnect", "device_id", d.ID, "error", err)
			}
		},
	}
}

package telemetry

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/fleetcam-core/internal/fleet"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/mqtt"
)

// Publisher is the MQTT surface the agent needs. Satisfied by *mqtt.Client.
type Publisher interface {
	PublishRetained(topic string, payload []byte) error
}

// StatsWriter is the time-series surface the agent needs. Satisfied by
// *influxdb.Client.
type StatsWriter interface {
	WriteDeviceStats(deviceID string, cpuUsage, memoryUsage, chipTemperature float64)
}

// Logger defines the logging interface used by the telemetry package.
type Logger interface {
	Debug(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Agent fans device telemetry out to MQTT and InfluxDB. It implements the
// fleet manager's telemetry sink contract.
//
// Info and stats snapshots are published retained so dashboards joining late
// see the current fleet state immediately. Stats additionally land in
// InfluxDB for history; the writer is optional and may be nil when the
// time-series backend is disabled.
type Agent struct {
	pub    Publisher
	stats  StatsWriter
	topics mqtt.Topics
	logger Logger
}

// NewAgent creates a telemetry agent. The publisher is required; the stats
// writer may be nil.
func NewAgent(pub Publisher, stats StatsWriter) *Agent {
	return &Agent{
		pub:    pub,
		stats:  stats,
		logger: noopLogger{},
	}
}

// SetLogger sets the logger for the agent.
func (a *Agent) SetLogger(logger Logger) {
	a.logger = logger
}

// PublishDeviceInfo publishes a device description snapshot to its retained
// info topic.
func (a *Agent) PublishDeviceInfo(rec fleet.InfoRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling device info: %w", err)
	}

	topic := a.topics.DeviceInfo(rec.DeviceID)
	if err := a.pub.PublishRetained(topic, payload); err != nil {
		return fmt.Errorf("publishing device info: %w", err)
	}

	a.logger.Debug("device info published", "device_id", rec.DeviceID)
	return nil
}

// PublishDeviceStats publishes a usage snapshot to the retained stats topic
// and records it in the time-series store.
func (a *Agent) PublishDeviceStats(rec fleet.StatsRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshalling device stats: %w", err)
	}

	topic := a.topics.DeviceStats(rec.DeviceID)
	if err := a.pub.PublishRetained(topic, payload); err != nil {
		return fmt.Errorf("publishing device stats: %w", err)
	}

	if a.stats != nil {
		a.stats.WriteDeviceStats(rec.DeviceID, rec.CPUUsage, rec.MemoryUsage, rec.ChipTemperature)
	}

	a.logger.Debug("device stats published", "device_id", rec.DeviceID)
	return nil
}

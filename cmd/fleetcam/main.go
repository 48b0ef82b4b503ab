// Fleetcam Core - Camera Fleet Lifecycle Coordinator
//
// This is the main entry point for the Fleetcam Core application.
// Fleetcam keeps a fleet of machine-vision cameras connected:
//   - Reconciles registered cameras against live connections
//   - Detects dead devices within milliseconds and reconnects them
//   - Publishes per-device telemetry over MQTT and InfluxDB
//   - Journals every connect/disconnect transition to SQLite
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nerrad567/fleetcam-core/internal/fleet"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/config"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/logging"
	"github.com/nerrad567/fleetcam-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fleetcam-core/internal/journal"
	"github.com/nerrad567/fleetcam-core/internal/stream"
	"github.com/nerrad567/fleetcam-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Fleetcam Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open connection-event journal
	eventJournal, err := journal.Open(cfg.Journal)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer func() {
		log.Info("closing journal")
		if closeErr := eventJournal.Close(); closeErr != nil {
			log.Error("error closing journal", "error", closeErr)
		}
	}()
	eventJournal.SetLogger(log)
	log.Info("journal opened", "path", cfg.Journal.Path)

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Verify infrastructure connections are healthy
	if err := healthCheck(ctx, eventJournal, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	// Stream registry for teardown of callback-opened streams
	streams := stream.NewRegistry()
	streams.SetLogger(log)

	// Telemetry agent fans snapshots out to MQTT and InfluxDB
	agent := telemetry.NewAgent(mqttClient, statsWriter(influxClient))
	agent.SetLogger(log)

	// Fleet manager
	manager, err := fleet.New(fleet.Config{
		ScanInterval:        cfg.GetScanInterval(),
		PollInterval:        cfg.GetPollInterval(),
		ReportInterval:      cfg.GetReportInterval(),
		StartupPollInterval: cfg.GetStartupPollInterval(),
		JoinTimeout:         cfg.GetJoinTimeout(),
	}, fleet.Options{
		Factory: newSimulatedFactory(log),
		Sink:    agent,
		Streams: streams,
		Events:  eventJournal,
	})
	if err != nil {
		return fmt.Errorf("creating fleet manager: %w", err)
	}
	manager.SetLogger(log.With("component", "fleet"))

	// Register configured devices
	for _, dc := range cfg.Fleet.Devices {
		dev := newConfiguredDevice(dc, streams, log)
		if addErr := manager.AddDevice(dev); addErr != nil {
			return fmt.Errorf("registering device %s: %w", dc.ID, addErr)
		}
		log.Info("device registered", "device_id", dc.ID, "name", dc.Name)
	}

	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("starting fleet manager: %w", err)
	}
	log.Info("fleet manager running", "devices", manager.GetStats().Devices)

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, stopping fleet")
	if err := manager.Stop(); err != nil {
		log.Error("fleet shutdown reported errors", "error", err)
	}

	// Deferred Close() calls will run in reverse order:
	// 1. InfluxDB (if enabled)
	// 2. MQTT
	// 3. Journal

	log.Info("Fleetcam Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses FLEETCAM_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("FLEETCAM_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// statsWriter converts a possibly-nil influx client into the telemetry
// agent's writer. A nil *influxdb.Client wrapped in a non-nil interface
// would dodge the agent's nil check.
func statsWriter(c *influxdb.Client) telemetry.StatsWriter {
	if c == nil {
		return nil
	}
	return c
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - eventJournal: Journal to check
//   - mqttClient: MQTT client to check
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, eventJournal *journal.Journal, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := eventJournal.HealthCheck(ctx); err != nil {
		return fmt.Errorf("journal: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for Fleetcam Core.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Site     SiteConfig     `yaml:"site"`
	Fleet    FleetConfig    `yaml:"fleet"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	InfluxDB InfluxDBConfig `yaml:"influxdb"`
	Journal  JournalConfig  `yaml:"journal"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// SiteConfig contains site-specific information.
type SiteConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// FleetConfig contains fleet manager loop cadences and the statically
// configured device list.
type FleetConfig struct {
	// ScanIntervalSeconds is the reconciliation scan cadence.
	ScanIntervalSeconds int `yaml:"scan_interval_seconds"`

	// PollIntervalMicros is the idle gap between health poll passes.
	// Kept in microseconds: dead devices must be noticed quickly.
	PollIntervalMicros int `yaml:"poll_interval_micros"`

	// ReportIntervalSeconds is the telemetry cadence.
	ReportIntervalSeconds int `yaml:"report_interval_seconds"`

	// StartupPollSeconds is how often startup re-checks for the first device.
	StartupPollSeconds int `yaml:"startup_poll_seconds"`

	// JoinTimeoutSeconds bounds how long shutdown waits for each loop.
	JoinTimeoutSeconds int `yaml:"join_timeout_seconds"`

	// Devices lists cameras to register at startup.
	Devices []DeviceConfig `yaml:"devices"`
}

// DeviceConfig describes one camera to register at startup.
type DeviceConfig struct {
	ID       string `yaml:"id"`
	Name     string `yaml:"name"`
	Protocol string `yaml:"protocol"`
}

// MQTTConfig contains MQTT broker connection settings.
type MQTTConfig struct {
	Broker    MQTTBrokerConfig    `yaml:"broker"`
	Auth      MQTTAuthConfig      `yaml:"auth"`
	QoS       int                 `yaml:"qos"`
	Reconnect MQTTReconnectConfig `yaml:"reconnect"`
}

// MQTTBrokerConfig contains MQTT broker connection details.
type MQTTBrokerConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	TLS      bool   `yaml:"tls"`
	ClientID string `yaml:"client_id"`
}

// MQTTAuthConfig contains MQTT authentication credentials.
type MQTTAuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// MQTTReconnectConfig contains MQTT reconnection settings.
type MQTTReconnectConfig struct {
	InitialDelay int `yaml:"initial_delay"`
	MaxDelay     int `yaml:"max_delay"`
	MaxAttempts  int `yaml:"max_attempts"`
}

// InfluxDBConfig contains InfluxDB connection settings.
type InfluxDBConfig struct {
	Enabled       bool   `yaml:"enabled"`
	URL           string `yaml:"url"`
	Token         string `yaml:"token"`
	Org           string `yaml:"org"`
	Bucket        string `yaml:"bucket"`
	BatchSize     int    `yaml:"batch_size"`
	FlushInterval int    `yaml:"flush_interval"`
}

// JournalConfig contains SQLite connection-event journal settings.
type JournalConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: FLEETCAM_SECTION_KEY
// For example: FLEETCAM_JOURNAL_PATH, FLEETCAM_MQTT_HOST
//
// Parameters:
//   - path: Path to the YAML configuration file
//
// Returns:
//   - *Config: Loaded and validated configuration
//   - error: If file cannot be read, parsed, or validation fails
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			ID:   "site-001",
			Name: "Fleetcam",
		},
		Fleet: FleetConfig{
			ScanIntervalSeconds:   5,
			PollIntervalMicros:    500,
			ReportIntervalSeconds: 10,
			StartupPollSeconds:    5,
			JoinTimeoutSeconds:    30,
		},
		MQTT: MQTTConfig{
			Broker: MQTTBrokerConfig{
				Host:     "localhost",
				Port:     1883,
				ClientID: "fleetcam-core",
			},
			QoS: 1,
			Reconnect: MQTTReconnectConfig{
				InitialDelay: 1,
				MaxDelay:     60,
				MaxAttempts:  0,
			},
		},
		InfluxDB: InfluxDBConfig{
			URL:           "http://localhost:8086",
			Org:           "fleetcam",
			Bucket:        "device_stats",
			BatchSize:     100,
			FlushInterval: 10,
		},
		Journal: JournalConfig{
			Path:        "./data/fleetcam.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: FLEETCAM_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	// Journal
	if v := os.Getenv("FLEETCAM_JOURNAL_PATH"); v != "" {
		cfg.Journal.Path = v
	}

	// MQTT
	if v := os.Getenv("FLEETCAM_MQTT_HOST"); v != "" {
		cfg.MQTT.Broker.Host = v
	}
	if v := os.Getenv("FLEETCAM_MQTT_USERNAME"); v != "" {
		cfg.MQTT.Auth.Username = v
	}
	if v := os.Getenv("FLEETCAM_MQTT_PASSWORD"); v != "" {
		cfg.MQTT.Auth.Password = v
	}

	// InfluxDB
	if v := os.Getenv("FLEETCAM_INFLUXDB_TOKEN"); v != "" {
		cfg.InfluxDB.Token = v
	}
}

// Validate checks the configuration for errors.
//
// Returns:
//   - error: Description of validation failure, or nil if valid
func (c *Config) Validate() error {
	var errs []string

	if c.Site.ID == "" {
		errs = append(errs, "site.id is required")
	}

	if c.Journal.Path == "" {
		errs = append(errs, "journal.path is required")
	}

	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		errs = append(errs, "mqtt.qos must be 0, 1, or 2")
	}

	if c.Fleet.ScanIntervalSeconds < 1 {
		errs = append(errs, "fleet.scan_interval_seconds must be at least 1")
	}
	if c.Fleet.PollIntervalMicros < 1 {
		errs = append(errs, "fleet.poll_interval_micros must be at least 1")
	}
	if c.Fleet.ReportIntervalSeconds < 1 {
		errs = append(errs, "fleet.report_interval_seconds must be at least 1")
	}

	seen := make(map[string]bool, len(c.Fleet.Devices))
	for _, d := range c.Fleet.Devices {
		if d.ID == "" {
			errs = append(errs, "fleet.devices entries require an id")
			continue
		}
		if seen[d.ID] {
			errs = append(errs, fmt.Sprintf("fleet.devices contains duplicate id %q", d.ID))
		}
		seen[d.ID] = true
	}

	if c.InfluxDB.Enabled {
		if c.InfluxDB.URL == "" {
			errs = append(errs, "influxdb.url is required when influxdb is enabled")
		}
		if c.InfluxDB.Token == "" {
			errs = append(errs, "influxdb.token is required when influxdb is enabled (set FLEETCAM_INFLUXDB_TOKEN)")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetScanInterval returns the reconciliation scan cadence as a Duration.
func (c *Config) GetScanInterval() time.Duration {
	return time.Duration(c.Fleet.ScanIntervalSeconds) * time.Second
}

// GetPollInterval returns the health poll cadence as a Duration.
func (c *Config) GetPollInterval() time.Duration {
	return time.Duration(c.Fleet.PollIntervalMicros) * time.Microsecond
}

// GetReportInterval returns the telemetry cadence as a Duration.
func (c *Config) GetReportInterval() time.Duration {
	return time.Duration(c.Fleet.ReportIntervalSeconds) * time.Second
}

// GetStartupPollInterval returns the startup registry poll cadence as a Duration.
func (c *Config) GetStartupPollInterval() time.Duration {
	return time.Duration(c.Fleet.StartupPollSeconds) * time.Second
}

// GetJoinTimeout returns the shutdown loop join timeout as a Duration.
func (c *Config) GetJoinTimeout() time.Duration {
	return time.Duration(c.Fleet.JoinTimeoutSeconds) * time.Second
}

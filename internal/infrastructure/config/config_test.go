package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_ValidConfig(t *testing.T) {
	// Create a temporary config file
	content := `
site:
  id: "test-site"
fleet:
  scan_interval_seconds: 5
  poll_interval_micros: 500
  report_interval_seconds: 10
  devices:
    - id: "cam-entrance"
      name: "Entrance camera"
      protocol: "usb3"
mqtt:
  broker:
    host: "localhost"
    port: 1883
    client_id: "test-client"
  qos: 1
journal:
  path: "/tmp/test.db"
  wal_mode: true
  busy_timeout: 5
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Site.ID != "test-site" {
		t.Errorf("Site.ID = %q, want %q", cfg.Site.ID, "test-site")
	}

	if cfg.Journal.Path != "/tmp/test.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/tmp/test.db")
	}

	if cfg.MQTT.Broker.Host != "localhost" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "localhost")
	}

	if len(cfg.Fleet.Devices) != 1 || cfg.Fleet.Devices[0].ID != "cam-entrance" {
		t.Errorf("Fleet.Devices = %+v, want one entry with id cam-entrance", cfg.Fleet.Devices)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("invalid: [yaml: content"), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected error for invalid YAML, got nil")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	content := `
site:
  id: ""
journal:
  path: "/tmp/test.db"
`
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := Load(configPath)
	if err == nil {
		t.Error("Load() expected validation error for empty site.id, got nil")
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := defaultConfig()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing site ID",
			mutate:  func(c *Config) { c.Site.ID = "" },
			wantErr: true,
		},
		{
			name:    "missing journal path",
			mutate:  func(c *Config) { c.Journal.Path = "" },
			wantErr: true,
		},
		{
			name:    "invalid QoS",
			mutate:  func(c *Config) { c.MQTT.QoS = 3 },
			wantErr: true,
		},
		{
			name:    "zero scan interval",
			mutate:  func(c *Config) { c.Fleet.ScanIntervalSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "zero poll interval",
			mutate:  func(c *Config) { c.Fleet.PollIntervalMicros = 0 },
			wantErr: true,
		},
		{
			name: "device without id",
			mutate: func(c *Config) {
				c.Fleet.Devices = []DeviceConfig{{Name: "anonymous"}}
			},
			wantErr: true,
		},
		{
			name: "duplicate device ids",
			mutate: func(c *Config) {
				c.Fleet.Devices = []DeviceConfig{{ID: "cam-1"}, {ID: "cam-1"}}
			},
			wantErr: true,
		},
		{
			name: "influxdb enabled without token",
			mutate: func(c *Config) {
				c.InfluxDB.Enabled = true
				c.InfluxDB.Token = ""
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_GetIntervals(t *testing.T) {
	cfg := &Config{
		Fleet: FleetConfig{
			ScanIntervalSeconds:   5,
			PollIntervalMicros:    500,
			ReportIntervalSeconds: 10,
			StartupPollSeconds:    5,
			JoinTimeoutSeconds:    30,
		},
	}

	if got := cfg.GetScanInterval().Seconds(); got != 5 {
		t.Errorf("GetScanInterval() = %v, want 5s", got)
	}

	if got := cfg.GetPollInterval().Microseconds(); got != 500 {
		t.Errorf("GetPollInterval() = %v, want 500us", got)
	}

	if got := cfg.GetReportInterval().Seconds(); got != 10 {
		t.Errorf("GetReportInterval() = %v, want 10s", got)
	}

	if got := cfg.GetStartupPollInterval().Seconds(); got != 5 {
		t.Errorf("GetStartupPollInterval() = %v, want 5s", got)
	}

	if got := cfg.GetJoinTimeout().Seconds(); got != 30 {
		t.Errorf("GetJoinTimeout() = %v, want 30s", got)
	}
}

func TestApplyEnvOverrides(t *testing.T) {
	cfg := defaultConfig()

	t.Setenv("FLEETCAM_JOURNAL_PATH", "/custom/path.db")
	t.Setenv("FLEETCAM_MQTT_HOST", "mqtt.example.com")
	t.Setenv("FLEETCAM_MQTT_USERNAME", "testuser")
	t.Setenv("FLEETCAM_MQTT_PASSWORD", "testpass")
	t.Setenv("FLEETCAM_INFLUXDB_TOKEN", "secret-token")

	applyEnvOverrides(cfg)

	if cfg.Journal.Path != "/custom/path.db" {
		t.Errorf("Journal.Path = %q, want %q", cfg.Journal.Path, "/custom/path.db")
	}

	if cfg.MQTT.Broker.Host != "mqtt.example.com" {
		t.Errorf("MQTT.Broker.Host = %q, want %q", cfg.MQTT.Broker.Host, "mqtt.example.com")
	}

	if cfg.MQTT.Auth.Username != "testuser" {
		t.Errorf("MQTT.Auth.Username = %q, want %q", cfg.MQTT.Auth.Username, "testuser")
	}

	if cfg.MQTT.Auth.Password != "testpass" {
		t.Errorf("MQTT.Auth.Password = %q, want %q", cfg.MQTT.Auth.Password, "testpass")
	}

	if cfg.InfluxDB.Token != "secret-token" {
		t.Errorf("InfluxDB.Token = %q, want %q", cfg.InfluxDB.Token, "secret-token")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Site.ID == "" {
		t.Error("defaultConfig should have non-empty Site.ID")
	}

	if cfg.Journal.Path == "" {
		t.Error("defaultConfig should have non-empty Journal.Path")
	}

	if cfg.MQTT.Broker.Port != 1883 {
		t.Errorf("defaultConfig MQTT.Broker.Port = %d, want 1883", cfg.MQTT.Broker.Port)
	}

	if cfg.Fleet.PollIntervalMicros != 500 {
		t.Errorf("defaultConfig Fleet.PollIntervalMicros = %d, want 500", cfg.Fleet.PollIntervalMicros)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaultConfig does not validate: %v", err)
	}
}

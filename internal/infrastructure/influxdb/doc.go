// Package influxdb provides InfluxDB connectivity for Fleetcam Core.
//
// It wraps the official influxdb-client-go v2 library with Fleetcam-specific
// patterns for connection management, stats writing, and health monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Per-device resource statistics (CPU, memory, chip temperature)
//   - Fleet-level summaries
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "fleetcam",
//	    Bucket: "device_stats",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteDeviceStats("cam-entrance", 0.42, 0.61, 48.5)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This reduces network overhead for high-frequency telemetry data.
package influxdb

package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteDeviceStats writes one device resource-usage sample to InfluxDB.
//
// This is the primary method for recording fleet telemetry. The write is
// non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the camera (e.g., "cam-entrance")
//   - cpuUsage: On-device CPU utilisation, 0.0-1.0
//   - memoryUsage: On-device memory utilisation, 0.0-1.0
//   - chipTemperature: Chip temperature in degrees Celsius
//
// Example:
//
//	client.WriteDeviceStats("cam-entrance", 0.42, 0.61, 48.5)
func (c *Client) WriteDeviceStats(deviceID string, cpuUsage, memoryUsage, chipTemperature float64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"device_stats",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"cpu_usage":        cpuUsage,
			"memory_usage":     memoryUsage,
			"chip_temperature": chipTemperature,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("fleet_summary",
//	    map[string]string{"site": "site-001"},
//	    map[string]interface{}{"connected": 4, "registered": 5})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

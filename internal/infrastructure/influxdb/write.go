package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteItemMetric writes a single numeric item value to InfluxDB.
//
// This is the primary method for recording receiver telemetry. The
// write is non-blocking; data is batched and sent asynchronously.
//
// Parameters:
//   - deviceID: Receiver identifier (e.g., "livingroom")
//   - itemID: The item name (e.g., "current_volume", "e2videoheight")
//   - value: The numeric value to record
//
// Example:
//
//	client.WriteItemMetric("livingroom", "current_volume", 35)
//	client.WriteItemMetric("livingroom", "e2videowidth", 1920)
func (c *Client) WriteItemMetric(deviceID string, itemID string, value float64) {
	c.WritePoint(
		"item_metrics",
		map[string]string{
			"device_id": deviceID,
			"item_id":   itemID,
		},
		map[string]interface{}{
			"value": value,
		},
	)
}

// WriteCycleMetric records the duration and outcome of a polling cycle.
//
// Used for tracking receiver responsiveness over time. Failed bindings
// are counted, not raised, so a chart of failures doubles as a health
// indicator for the receiver's web interface.
//
// Parameters:
//   - deviceID: Receiver identifier
//   - cycle: Cycle name ("slow" or "fast")
//   - duration: Wall-clock time the cycle took
//   - failures: Number of bindings that failed to resolve
func (c *Client) WriteCycleMetric(deviceID string, cycle string, duration time.Duration, failures int) {
	c.WritePoint(
		"cycle_metrics",
		map[string]string{
			"device_id": deviceID,
			"cycle":     cycle,
		},
		map[string]interface{}{
			"duration_ms": float64(duration.Milliseconds()),
			"failures":    failures,
		},
	)
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
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "bridge-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	c.WritePointWithTime(measurement, tags, fields, time.Now())
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}

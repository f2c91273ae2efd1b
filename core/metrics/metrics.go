// Package metrics defines the sink interfaces the simulation records into.
// Concrete sinks (Prometheus, InfluxDB) live under infra/metrics.
package metrics

import "time"

// TickEvent summarizes one completed tick of the simulation.
type TickEvent struct {
	Tick           uint64         `json:"tick"`
	CompletedTotal int            `json:"completed_total"`
	Backlog        int            `json:"backlog"`
	Waiting        int            `json:"waiting"`
	MeanWait       float64        `json:"mean_wait"`
	StdDevWait     float64        `json:"stddev_wait"`
	MeanBattery    float64        `json:"mean_battery"`
	States         map[string]int `json:"states"`
	Time           time.Time      `json:"time"`
}

// MetricsSink records tick summaries for observability purposes.
type MetricsSink interface {
	RecordTick(ev TickEvent) error
}

// TaskEvent captures a completed delivery.
type TaskEvent struct {
	TaskID    string    `json:"task_id"`
	VehicleID string    `json:"vehicle_id"`
	Tick      uint64    `json:"tick"`
	Time      time.Time `json:"time"`
}

// TaskCompletionRecorder records completed deliveries.
type TaskCompletionRecorder interface {
	RecordTaskCompletion(ev TaskEvent) error
}

// VehicleStateEvent is a per-vehicle snapshot taken after a tick.
type VehicleStateEvent struct {
	VehicleID string    `json:"vehicle_id"`
	State     string    `json:"state"`
	Battery   float64   `json:"battery"`
	X         int       `json:"x"`
	Y         int       `json:"y"`
	Waiting   int       `json:"waiting"`
	Tick      uint64    `json:"tick"`
	Time      time.Time `json:"time"`
}

// VehicleStateRecorder records per-vehicle snapshots.
type VehicleStateRecorder interface {
	RecordVehicleState(ev VehicleStateEvent) error
}

// NopSink discards everything.
type NopSink struct{}

// RecordTick implements MetricsSink.
func (NopSink) RecordTick(TickEvent) error { return nil }

// RecordTaskCompletion implements TaskCompletionRecorder.
func (NopSink) RecordTaskCompletion(TaskEvent) error { return nil }

// RecordVehicleState implements VehicleStateRecorder.
func (NopSink) RecordVehicleState(VehicleStateEvent) error { return nil }

// Config defines settings for metrics sinks.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusAddr    string `json:"prometheus_addr"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.PrometheusAddr == "" {
		c.PrometheusAddr = ":9090"
	}
}

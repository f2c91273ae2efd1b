package metrics

import coremetrics "github.com/warefleet/agvsim/core/metrics"

// MultiSink fans out simulation events to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordTick forwards the tick summary to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordTick(ev coremetrics.TickEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordTick(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordTaskCompletion forwards completed deliveries.
func (m *MultiSink) RecordTaskCompletion(ev coremetrics.TaskEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TaskCompletionRecorder); ok {
			if err := rec.RecordTaskCompletion(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordVehicleState forwards vehicle snapshots.
func (m *MultiSink) RecordVehicleState(ev coremetrics.VehicleStateEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.VehicleStateRecorder); ok {
			if err := rec.RecordVehicleState(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

package metrics

import (
	coremetrics "github.com/warefleet/agvsim/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records simulation activity in Prometheus metrics.
type PromSink struct {
	ticks     prometheus.Counter
	completed prometheus.Counter
	states    *prometheus.GaugeVec
	waiting   prometheus.Gauge
	meanWait  prometheus.Gauge
	backlog   prometheus.Gauge
	battery   prometheus.Histogram
}

// NewPromSink registers simulation metrics on the default Prometheus
// registerer. The Prometheus server should be started separately using
// cfg.PrometheusAddr.
func NewPromSink(cfg coremetrics.Config) (coremetrics.MetricsSink, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.MetricsSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ticks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_ticks_total",
		Help: "Total number of completed simulation ticks",
	})
	completed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "sim_tasks_completed_total",
		Help: "Total number of delivered tasks",
	})
	states := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "sim_vehicles_by_state",
		Help: "Number of vehicles per lifecycle state",
	}, []string{"state"})
	waiting := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_vehicles_waiting",
		Help: "Number of vehicles blocked by another vehicle this tick",
	})
	meanWait := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_mean_wait_ticks",
		Help: "Mean consecutive-wait counter across the fleet",
	})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "sim_task_backlog",
		Help: "Pending tasks in the dispatcher backlog",
	})
	battery := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "sim_vehicle_battery_percent",
		Help:    "Battery level distribution sampled per tick",
		Buckets: prometheus.LinearBuckets(0, 10, 11),
	})

	s := &PromSink{
		ticks:     ticks,
		completed: completed,
		states:    states,
		waiting:   waiting,
		meanWait:  meanWait,
		backlog:   backlog,
		battery:   battery,
	}
	collectors := []prometheus.Collector{ticks, completed, states, waiting, meanWait, backlog, battery}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.ticks = are.ExistingCollector.(prometheus.Counter)
			case 1:
				s.completed = are.ExistingCollector.(prometheus.Counter)
			case 2:
				s.states = are.ExistingCollector.(*prometheus.GaugeVec)
			case 3:
				s.waiting = are.ExistingCollector.(prometheus.Gauge)
			case 4:
				s.meanWait = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.backlog = are.ExistingCollector.(prometheus.Gauge)
			case 6:
				s.battery = are.ExistingCollector.(prometheus.Histogram)
			}
		}
	}
	return s, nil
}

// RecordTick updates the per-tick gauges and counters.
func (s *PromSink) RecordTick(ev coremetrics.TickEvent) error {
	s.ticks.Inc()
	for state, n := range ev.States {
		s.states.WithLabelValues(state).Set(float64(n))
	}
	s.waiting.Set(float64(ev.Waiting))
	s.meanWait.Set(ev.MeanWait)
	s.backlog.Set(float64(ev.Backlog))
	return nil
}

// RecordTaskCompletion increments the completed-task counter.
func (s *PromSink) RecordTaskCompletion(coremetrics.TaskEvent) error {
	s.completed.Inc()
	return nil
}

// RecordVehicleState samples the battery histogram.
func (s *PromSink) RecordVehicleState(ev coremetrics.VehicleStateEvent) error {
	s.battery.Observe(ev.Battery)
	return nil
}

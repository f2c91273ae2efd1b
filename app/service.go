package app

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/warefleet/agvsim/config"
	"github.com/warefleet/agvsim/core/dispatch"
	"github.com/warefleet/agvsim/core/grid"
	coremetrics "github.com/warefleet/agvsim/core/metrics"
	"github.com/warefleet/agvsim/core/sim"
	"github.com/warefleet/agvsim/core/sim/simlog"
	"github.com/warefleet/agvsim/infra/logger"
	"github.com/warefleet/agvsim/infra/metrics"
	"github.com/warefleet/agvsim/infra/mqtt"
	"github.com/warefleet/agvsim/internal/eventbus"
)

// Service owns the simulation loop and its adapters.
type Service struct {
	cfg    *config.Config
	world  *sim.World
	bus    *eventbus.Bus
	log    logger.Logger
	store  simlog.Store
	bridge *mqtt.Bridge
	client *mqtt.PahoClient
	influx *metrics.InfluxSink
}

// New builds the world and its adapters from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	rows, err := layoutRows(cfg.Layout)
	if err != nil {
		return nil, err
	}
	g, feats, err := grid.Build(rows)
	if err != nil {
		return nil, fmt.Errorf("build layout: %w", err)
	}

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))
	logg.Infof("layout %dx%d, seed %d", g.Width(), g.Height(), seed)

	disp := dispatch.New(cfg.Dispatch, feats.Shelves, feats.Dropoffs, rng)
	fleet, err := sim.PlaceFleet(g, feats, cfg.Simulation.Fleet, cfg.Vehicle, rng)
	if err != nil {
		return nil, fmt.Errorf("place fleet: %w", err)
	}

	svc := &Service{cfg: cfg, log: logg}

	var sinks []coremetrics.MetricsSink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics.InfluxURL, cfg.Metrics.InfluxToken, cfg.Metrics.InfluxOrg, cfg.Metrics.InfluxBucket)
		if is, ok := sink.(*metrics.InfluxSink); ok {
			svc.influx = is
		}
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink
	switch len(sinks) {
	case 0:
		sink = coremetrics.NopSink{}
	case 1:
		sink = sinks[0]
	default:
		sink = metrics.NewMultiSink(sinks...)
	}

	store, err := openStore(cfg.SimLog)
	if err != nil {
		return nil, fmt.Errorf("simlog store: %w", err)
	}
	svc.store = store

	bus := eventbus.New()
	svc.bus = bus
	svc.world = sim.NewWorld(g, feats, fleet, disp, rng, logger.New("world"), sink, bus)

	if cfg.MQTT.Enabled {
		bridge := mqtt.NewBridge(cfg.MQTT, nil)
		client, err := mqtt.NewTwinClient(cfg.MQTT, bridge)
		if err != nil {
			return nil, fmt.Errorf("mqtt client: %w", err)
		}
		svc.bridge = bridge
		svc.client = client
	}
	return svc, nil
}

// World exposes the simulation for inspection.
func (s *Service) World() *sim.World { return s.world }

// Run executes the configured number of ticks or stops early when the
// context is canceled.
func (s *Service) Run(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.bridge != nil {
		go s.bridge.Run(ctx, s.bus)
	}

	interval := time.Duration(s.cfg.Simulation.TickIntervalMS) * time.Millisecond
	var ticker *time.Ticker
	if interval > 0 {
		ticker = time.NewTicker(interval)
		defer ticker.Stop()
	}

	for i := 0; i < s.cfg.Simulation.Ticks; i++ {
		select {
		case <-ctx.Done():
			s.log.Infof("stopping after %d ticks", s.world.Tick())
			return nil
		default:
		}
		s.applyTwinCommands()
		ev := s.world.Step()
		if s.store != nil {
			rec := simlog.Record{
				Tick:        ev.Tick,
				Time:        ev.Time,
				Completed:   ev.CompletedTotal,
				Backlog:     ev.Backlog,
				Waiting:     ev.Waiting,
				MeanWait:    ev.MeanWait,
				MeanBattery: ev.MeanBattery,
			}
			if err := s.store.Append(ctx, rec); err != nil {
				s.log.Errorf("append tick log: %v", err)
			}
		}
		if ticker != nil {
			select {
			case <-ctx.Done():
				s.log.Infof("stopping after %d ticks", s.world.Tick())
				return nil
			case <-ticker.C:
			}
		}
	}
	s.log.Infof("run complete: %d ticks, %d tasks delivered, backlog %d",
		s.world.Tick(), s.world.CompletedTasks(), s.world.Backlog())
	if n := s.bus.Dropped(); n > 0 {
		s.log.Warnf("%d tick snapshots dropped for slow observers", n)
	}
	return nil
}

// applyTwinCommands drains the bridge queue and applies each command to the
// world. Commands always land between ticks.
func (s *Service) applyTwinCommands() {
	if s.bridge == nil {
		return
	}
	for _, cmd := range s.bridge.Drain() {
		var err error
		switch cmd.Kind {
		case mqtt.CommandOverridePosition:
			err = s.world.OverridePosition(cmd.VehicleID, cmd.Cell)
		case mqtt.CommandAssignTask:
			err = s.world.AssignExternalTask(cmd.VehicleID, cmd.Task)
		}
		if err != nil {
			s.log.Warnf("twin command %s for %s rejected: %v", cmd.ID, cmd.VehicleID, err)
			continue
		}
		s.log.Infof("twin command %s applied to %s", cmd.ID, cmd.VehicleID)
	}
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.client != nil {
		s.client.Disconnect()
	}
	if s.influx != nil {
		s.influx.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}

func layoutRows(cfg config.LayoutConfig) ([]string, error) {
	if len(cfg.Rows) > 0 {
		return cfg.Rows, nil
	}
	if cfg.Path != "" {
		rows, err := grid.LoadLayout(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("load layout: %w", err)
		}
		return rows, nil
	}
	return grid.DefaultLayout(), nil
}

func openStore(cfg config.SimLogConfig) (simlog.Store, error) {
	switch cfg.Backend {
	case "jsonl":
		return simlog.NewJSONLStore(cfg.Path)
	case "sqlite":
		return simlog.NewSQLiteStore(cfg.Path)
	default:
		return nil, nil
	}
}

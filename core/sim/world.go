// Package sim assembles the warehouse world and advances it tick by tick.
// The world is single-threaded: one Step is a complete pass over all
// vehicles, in a freshly randomized order, with no interleaving. A fixed
// order would hand early movers a permanent advantage, so the order is
// re-shuffled every tick.
package sim

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/warefleet/agvsim/core/dispatch"
	"github.com/warefleet/agvsim/core/grid"
	"github.com/warefleet/agvsim/core/metrics"
	"github.com/warefleet/agvsim/core/model"
	"github.com/warefleet/agvsim/core/vehicle"
	"github.com/warefleet/agvsim/infra/logger"
	"github.com/warefleet/agvsim/internal/eventbus"
)

// TickSnapshot is published on the event bus after every tick for external
// observers (twin link, collectors). Observers must treat it as read-only.
type TickSnapshot struct {
	Tick     uint64                  `json:"tick"`
	Stats    metrics.TickEvent       `json:"stats"`
	Vehicles []model.VehicleSnapshot `json:"vehicles"`
}

// World owns the grid, the fleet and the dispatcher. All state is mutated
// from the loop goroutine only.
type World struct {
	grid      *grid.Grid
	feats     grid.Features
	vehicles  []*vehicle.Vehicle
	byID      map[string]*vehicle.Vehicle
	disp      *dispatch.Dispatcher
	rng       *rand.Rand
	tick      uint64
	completed int
	log       logger.Logger
	sink      metrics.MetricsSink
	bus       eventbus.EventBus
}

// NewWorld wires a world together. The shuffle source is injected so runs
// are reproducible under a fixed seed. Sink, bus and log may be nil.
func NewWorld(g *grid.Grid, feats grid.Features, fleet []*vehicle.Vehicle, disp *dispatch.Dispatcher, rng *rand.Rand, log logger.Logger, sink metrics.MetricsSink, bus eventbus.EventBus) *World {
	if log == nil {
		log = logger.NopLogger{}
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	byID := make(map[string]*vehicle.Vehicle, len(fleet))
	for _, v := range fleet {
		byID[v.ID()] = v
	}
	return &World{
		grid:     g,
		feats:    feats,
		vehicles: fleet,
		byID:     byID,
		disp:     disp,
		rng:      rng,
		log:      log,
		sink:     sink,
		bus:      bus,
	}
}

// Grid exposes the spatial environment for read-only inspection.
func (w *World) Grid() *grid.Grid { return w.grid }

// Tick returns the number of completed ticks.
func (w *World) Tick() uint64 { return w.tick }

// CompletedTasks returns the total number of delivered tasks.
func (w *World) CompletedTasks() int { return w.completed }

// Backlog returns the dispatcher backlog length.
func (w *World) Backlog() int { return w.disp.Backlog() }

// Step advances simulated time by one tick: every vehicle acts exactly once,
// in a uniformly shuffled order, then the tick summary is recorded and
// published.
func (w *World) Step() metrics.TickEvent {
	w.tick++
	order := make([]*vehicle.Vehicle, len(w.vehicles))
	copy(order, w.vehicles)
	w.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})

	for _, v := range order {
		out := v.Act(w.disp)
		if out.Completed != nil {
			w.completed++
			w.log.Debugf("vehicle %s delivered task %s", v.ID(), out.Completed.ID)
			if rec, ok := w.sink.(metrics.TaskCompletionRecorder); ok {
				if err := rec.RecordTaskCompletion(metrics.TaskEvent{
					TaskID:    out.Completed.ID,
					VehicleID: v.ID(),
					Tick:      w.tick,
					Time:      time.Now(),
				}); err != nil {
					w.log.Errorf("record task completion: %v", err)
				}
			}
		}
	}

	stats := w.computeStats()
	if err := w.sink.RecordTick(stats); err != nil {
		w.log.Errorf("record tick: %v", err)
	}
	snap := TickSnapshot{Tick: w.tick, Stats: stats, Vehicles: w.Snapshot()}
	if rec, ok := w.sink.(metrics.VehicleStateRecorder); ok {
		for _, vs := range snap.Vehicles {
			if err := rec.RecordVehicleState(metrics.VehicleStateEvent{
				VehicleID: vs.ID,
				State:     vs.State,
				Battery:   vs.Battery,
				X:         vs.Pos.X,
				Y:         vs.Pos.Y,
				Waiting:   vs.Waiting,
				Tick:      w.tick,
				Time:      stats.Time,
			}); err != nil {
				w.log.Errorf("record vehicle state: %v", err)
			}
		}
	}
	if w.bus != nil {
		w.bus.Publish(snap)
	}
	return stats
}

// Snapshot returns read-only copies of every vehicle's observable state.
func (w *World) Snapshot() []model.VehicleSnapshot {
	snaps := make([]model.VehicleSnapshot, len(w.vehicles))
	for i, v := range w.vehicles {
		snaps[i] = v.Snapshot()
	}
	return snaps
}

// OverridePosition forces a vehicle's position to match an external
// ground-truth feed. The caller must pick a currently unoccupied cell; the
// move itself is unconditional.
func (w *World) OverridePosition(vehicleID string, c model.Cell) error {
	v, ok := w.byID[vehicleID]
	if !ok {
		return fmt.Errorf("unknown vehicle %s", vehicleID)
	}
	if !w.grid.InBounds(c) {
		return fmt.Errorf("cell %s out of bounds", c)
	}
	v.OverridePosition(c)
	w.log.Infof("vehicle %s position overridden to %s", vehicleID, c)
	return nil
}

// AssignExternalTask injects a task from an external system, preempting the
// vehicle's current task unless its battery is below the hard floor.
func (w *World) AssignExternalTask(vehicleID string, t model.Task) error {
	v, ok := w.byID[vehicleID]
	if !ok {
		return fmt.Errorf("unknown vehicle %s", vehicleID)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if !v.AssignExternalTask(t) {
		return fmt.Errorf("vehicle %s refused task %s: battery too low", vehicleID, t.ID)
	}
	w.log.Infof("vehicle %s assigned external task %s", vehicleID, t.ID)
	return nil
}

// Package vehicle implements the AGV state machine. A vehicle executes
// exactly one state-dependent action per tick; everything it knows about the
// world it learns by querying the grid at its own turn, which is what makes
// congestion emerge from the purely local waiting rule.
package vehicle

import (
	"math"

	"github.com/warefleet/agvsim/core/grid"
	"github.com/warefleet/agvsim/core/model"
	"github.com/warefleet/agvsim/core/path"
)

// externalTaskFloor is the hard battery floor below which an externally
// injected task is refused. Distinct from the configurable low-battery
// threshold that triggers the charging override.
const externalTaskFloor = 10.0

// TaskSource hands out tasks to idle vehicles.
type TaskSource interface {
	RequestTask(vehicleID string) (model.Task, bool)
}

// Outcome reports what a single tick produced.
type Outcome struct {
	// Completed is the task delivered this tick, if any.
	Completed *model.Task
}

// Vehicle is one AGV. Not safe for concurrent use; all methods run on the
// simulation loop goroutine.
type Vehicle struct {
	id       string
	pos      model.Cell
	battery  float64
	state    model.State
	task     *model.Task
	path     []model.Cell
	waiting  int
	resume   model.State
	grid     *grid.Grid
	chargers []model.Cell
	cfg      Config
}

// New creates a vehicle at pos with a full battery and places it on the grid.
// The chargers slice keeps layout scan order; that order breaks ties between
// equally near stations.
func New(id string, pos model.Cell, g *grid.Grid, chargers []model.Cell, cfg Config) *Vehicle {
	v := &Vehicle{
		id:       id,
		pos:      pos,
		battery:  100.0,
		state:    model.StateIdle,
		grid:     g,
		chargers: chargers,
		cfg:      cfg,
	}
	g.Place(v, pos)
	return v
}

// OccupantKind implements grid.Occupant.
func (v *Vehicle) OccupantKind() model.Kind { return model.KindVehicle }

// ID returns the vehicle identifier.
func (v *Vehicle) ID() string { return v.id }

// Pos returns the current cell.
func (v *Vehicle) Pos() model.Cell { return v.pos }

// Battery returns the battery level in [0,100].
func (v *Vehicle) Battery() float64 { return v.battery }

// State returns the lifecycle state.
func (v *Vehicle) State() model.State { return v.state }

// WaitTicks returns the consecutive-wait counter.
func (v *Vehicle) WaitTicks() int { return v.waiting }

// Snapshot returns a read-only copy of the observable state.
func (v *Vehicle) Snapshot() model.VehicleSnapshot {
	snap := model.VehicleSnapshot{
		ID:      v.id,
		Pos:     v.pos,
		Battery: v.battery,
		State:   v.state.String(),
		Waiting: v.waiting,
	}
	if v.task != nil {
		snap.TaskID = v.task.ID
	}
	return snap
}

// Act runs one tick of the state machine. Rules are evaluated highest
// priority first: the battery-critical override preempts everything except
// an already charging vehicle.
func (v *Vehicle) Act(ts TaskSource) Outcome {
	var out Outcome

	if v.battery < v.cfg.LowBatteryThreshold && v.state != model.StateCharging {
		if v.startCharging() {
			return out
		}
		// No charging station in the layout: keep acting on the current
		// state and keep draining.
	}

	switch v.state {
	case model.StateIdle:
		v.handleIdle(ts)

	case model.StateMovingToPickup, model.StateDelivering, model.StateCharging, model.StateWaiting:
		if v.state == model.StateCharging && v.grid.HasKind(v.pos, model.KindChargingStation) {
			v.chargeBattery()
			return out
		}
		v.followPath()
		switch v.state {
		case model.StateMovingToPickup:
			if len(v.path) == 0 && v.task != nil {
				v.state = model.StateDelivering
				v.computePathTo(v.task.Dropoff)
			}
		case model.StateDelivering:
			if len(v.path) == 0 {
				out.Completed = v.task
				v.task = nil
				v.state = model.StateIdle
			}
		}
	}
	return out
}

func (v *Vehicle) handleIdle(ts TaskSource) {
	task, ok := ts.RequestTask(v.id)
	if !ok {
		return
	}
	v.task = &task
	v.state = model.StateMovingToPickup
	v.computePathTo(task.Pickup)
}

// followPath executes one step along the planned path. A vehicle occupying
// the next cell is the sole collision-avoidance rule: wait, don't move,
// don't drain.
func (v *Vehicle) followPath() {
	if len(v.path) == 0 {
		return
	}
	next := v.path[0]
	if v.grid.VehicleCount(next) > 0 {
		if v.state != model.StateWaiting {
			v.resume = v.state
			v.state = model.StateWaiting
		}
		v.waiting++
		return
	}
	if v.state == model.StateWaiting {
		v.state = v.resume
	}
	v.grid.Move(v, v.pos, next)
	v.pos = next
	v.path = v.path[1:]
	v.battery = math.Max(0, v.battery-v.cfg.DrainPerMove)
	v.waiting = 0
}

// startCharging interrupts the current activity and heads for the
// Manhattan-nearest charging station. The in-progress task is retained but
// not acted upon until charging completes. Returns false when the layout has
// no charging station at all.
func (v *Vehicle) startCharging() bool {
	if len(v.chargers) == 0 {
		return false
	}
	nearest := v.chargers[0]
	best := v.pos.Manhattan(nearest)
	for _, c := range v.chargers[1:] {
		if d := v.pos.Manhattan(c); d < best {
			best, nearest = d, c
		}
	}
	v.state = model.StateCharging
	v.computePathTo(nearest)
	return true
}

func (v *Vehicle) chargeBattery() {
	v.battery = math.Min(100.0, v.battery+v.cfg.ChargePerTick)
	if v.battery >= 100.0 {
		v.state = model.StateIdle
		v.task = nil
	}
}

// computePathTo plans a route to dest. An empty result for a distinct
// destination means no route currently exists: the vehicle falls back to
// IDLE and discards any bound task. Standing on dest already counts as
// arrived, not as a failure.
func (v *Vehicle) computePathTo(dest model.Cell) {
	if v.pos == dest {
		v.path = nil
		return
	}
	v.path = path.Find(v.grid, v.pos, dest, model.Obstacles())
	if len(v.path) == 0 {
		v.state = model.StateIdle
		v.task = nil
	}
}

// OverridePosition moves the vehicle unconditionally to match an external
// ground-truth feed. Digital-twin hook: the caller is responsible for
// choosing a currently unoccupied destination. The planned path is
// recomputed from the new position so it still starts adjacent to it.
func (v *Vehicle) OverridePosition(c model.Cell) {
	v.grid.Move(v, v.pos, c)
	v.pos = c
	v.replan()
}

// replan recomputes the path for the active leg after a position override.
func (v *Vehicle) replan() {
	if v.state == model.StateWaiting {
		v.state = v.resume
	}
	switch v.state {
	case model.StateMovingToPickup:
		v.computePathTo(v.task.Pickup)
	case model.StateDelivering:
		v.computePathTo(v.task.Dropoff)
	case model.StateCharging:
		v.startCharging()
	}
}

// AssignExternalTask injects a task from an external system, preempting any
// in-progress task. Refused when battery is at or below the hard floor.
func (v *Vehicle) AssignExternalTask(t model.Task) bool {
	if v.battery <= externalTaskFloor {
		return false
	}
	v.task = &t
	v.state = model.StateMovingToPickup
	v.computePathTo(t.Pickup)
	return true
}

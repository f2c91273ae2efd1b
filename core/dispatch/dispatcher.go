// Package dispatch maintains the backlog of pickup/dropoff tasks and hands
// them to idle vehicles in FIFO order.
package dispatch

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/warefleet/agvsim/core/model"
)

// Config tunes backlog replenishment.
type Config struct {
	// LowWaterMark is the backlog length below which a new batch is
	// generated.
	LowWaterMark int `json:"low_water_mark"`
	// BatchSize is how many tasks a replenishment adds.
	BatchSize int `json:"batch_size"`
	// InitialBacklog seeds the backlog at construction.
	InitialBacklog int `json:"initial_backlog"`
}

// SetDefaults applies the reference warehouse parameters.
func (c *Config) SetDefaults() {
	if c.LowWaterMark == 0 {
		c.LowWaterMark = 10
	}
	if c.BatchSize == 0 {
		c.BatchSize = 5
	}
	if c.InitialBacklog == 0 {
		c.InitialBacklog = 30
	}
}

// Validate checks the replenishment parameters.
func (c Config) Validate() error {
	if c.LowWaterMark < 0 {
		return fmt.Errorf("low_water_mark must not be negative")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch_size must be positive")
	}
	if c.InitialBacklog < 0 {
		return fmt.Errorf("initial_backlog must not be negative")
	}
	return nil
}

// Dispatcher owns the task backlog. The randomness source and the minted
// counter are fields, not package state. Not safe for concurrent use; all
// calls happen on the simulation loop goroutine.
type Dispatcher struct {
	cfg      Config
	pickups  []model.Cell
	dropoffs []model.Cell
	backlog  []model.Task
	rng      *rand.Rand
	minted   int
}

// New creates a dispatcher drawing pickups from shelf cells and dropoffs
// from dropoff cells, and seeds the initial backlog. With no pickup or no
// dropoff cells the backlog stays empty and every request returns absent.
func New(cfg Config, pickups, dropoffs []model.Cell, rng *rand.Rand) *Dispatcher {
	d := &Dispatcher{
		cfg:      cfg,
		pickups:  pickups,
		dropoffs: dropoffs,
		rng:      rng,
	}
	d.generate(cfg.InitialBacklog)
	return d
}

// RequestTask pops the oldest backlog entry for the requesting vehicle.
// When the pop drops the backlog below the low-water mark, a fresh batch is
// appended. A task handed out is never handed out again; abandoned tasks are
// not requeued.
func (d *Dispatcher) RequestTask(string) (model.Task, bool) {
	if len(d.backlog) == 0 {
		return model.Task{}, false
	}
	t := d.backlog[0]
	d.backlog = d.backlog[1:]
	if len(d.backlog) < d.cfg.LowWaterMark {
		d.generate(d.cfg.BatchSize)
	}
	return t, true
}

// Backlog returns the current backlog length.
func (d *Dispatcher) Backlog() int { return len(d.backlog) }

// Minted returns how many tasks have been created so far.
func (d *Dispatcher) Minted() int { return d.minted }

func (d *Dispatcher) generate(n int) {
	if len(d.pickups) == 0 || len(d.dropoffs) == 0 {
		return
	}
	for i := 0; i < n; i++ {
		d.backlog = append(d.backlog, model.Task{
			ID:      uuid.NewString(),
			Pickup:  d.pickups[d.rng.Intn(len(d.pickups))],
			Dropoff: d.dropoffs[d.rng.Intn(len(d.dropoffs))],
		})
		d.minted++
	}
}

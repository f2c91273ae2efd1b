package sim

import (
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/warefleet/agvsim/core/metrics"
	"github.com/warefleet/agvsim/core/model"
)

// computeStats summarizes the fleet after a tick. Wait-counter dispersion is
// the congestion signal: a high mean with a high spread means a few
// bottlenecks, a high mean with low spread means gridlock.
func (w *World) computeStats() metrics.TickEvent {
	ev := metrics.TickEvent{
		Tick:           w.tick,
		CompletedTotal: w.completed,
		Backlog:        w.disp.Backlog(),
		States:         make(map[string]int, len(model.States())),
		Time:           time.Now(),
	}
	for _, s := range model.States() {
		ev.States[s.String()] = 0
	}
	if len(w.vehicles) == 0 {
		return ev
	}

	waits := make([]float64, len(w.vehicles))
	batteries := make([]float64, len(w.vehicles))
	for i, v := range w.vehicles {
		waits[i] = float64(v.WaitTicks())
		batteries[i] = v.Battery()
		ev.States[v.State().String()]++
		if v.State() == model.StateWaiting {
			ev.Waiting++
		}
	}
	ev.MeanWait = stat.Mean(waits, nil)
	ev.MeanBattery = stat.Mean(batteries, nil)
	if len(waits) > 1 {
		ev.StdDevWait = stat.StdDev(waits, nil)
	}
	return ev
}

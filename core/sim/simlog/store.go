// Package simlog persists per-tick simulation records for later analysis.
package simlog

import (
	"context"
	"time"
)

// Record captures the summary of one tick.
type Record struct {
	Tick        uint64    `json:"tick"`
	Time        time.Time `json:"time"`
	Completed   int       `json:"completed"`
	Backlog     int       `json:"backlog"`
	Waiting     int       `json:"waiting"`
	MeanWait    float64   `json:"mean_wait"`
	MeanBattery float64   `json:"mean_battery"`
}

// Query defines filters for retrieving records. ToTick zero means unbounded.
type Query struct {
	FromTick uint64
	ToTick   uint64
}

func (q Query) matches(r Record) bool {
	if r.Tick < q.FromTick {
		return false
	}
	if q.ToTick != 0 && r.Tick > q.ToTick {
		return false
	}
	return true
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

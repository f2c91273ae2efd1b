package model

import "fmt"

// Task is a pickup/dropoff pair bound to at most one vehicle.
// Pickup cells are shelf-marked, dropoff cells are dropoff-marked.
type Task struct {
	ID      string `json:"id"`
	Pickup  Cell   `json:"pickup"`
	Dropoff Cell   `json:"dropoff"`
}

// Validate checks that the task carries an identifier.
func (t Task) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("task id is required")
	}
	return nil
}

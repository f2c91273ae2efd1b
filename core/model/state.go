package model

// State is the vehicle lifecycle state evaluated once per tick.
type State int

const (
	StateIdle State = iota + 1
	StateMovingToPickup
	StateDelivering
	StateCharging
	StateWaiting
)

// String returns the canonical name used in logs and metrics labels.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateMovingToPickup:
		return "MOVING_TO_PICKUP"
	case StateDelivering:
		return "DELIVERING"
	case StateCharging:
		return "CHARGING"
	case StateWaiting:
		return "WAITING"
	default:
		return "UNKNOWN"
	}
}

// States lists every lifecycle state, in declaration order.
func States() []State {
	return []State{StateIdle, StateMovingToPickup, StateDelivering, StateCharging, StateWaiting}
}

// VehicleSnapshot is a read-only copy of a vehicle's observable state,
// handed to the observability layer after each tick.
type VehicleSnapshot struct {
	ID      string  `json:"id"`
	Pos     Cell    `json:"pos"`
	Battery float64 `json:"battery"`
	State   string  `json:"state"`
	Waiting int     `json:"waiting"`
	TaskID  string  `json:"task_id,omitempty"`
}

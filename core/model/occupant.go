package model

// Kind is the closed set of occupant categories placed on the grid.
type Kind int

const (
	KindWall Kind = iota + 1
	KindShelf
	KindChargingStation
	KindDropoffPoint
	KindVehicle
)

// String returns the canonical name used in logs and metrics labels.
func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindShelf:
		return "shelf"
	case KindChargingStation:
		return "charging_station"
	case KindDropoffPoint:
		return "dropoff_point"
	case KindVehicle:
		return "vehicle"
	default:
		return "unknown"
	}
}

// KindSet is a set of occupant kinds, typically the kinds that block movement.
type KindSet map[Kind]struct{}

// NewKindSet builds a set from the given kinds.
func NewKindSet(kinds ...Kind) KindSet {
	s := make(KindSet, len(kinds))
	for _, k := range kinds {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set.
func (s KindSet) Has(k Kind) bool {
	_, ok := s[k]
	return ok
}

// Obstacles is the blocking set used by vehicles for every pathfinding call:
// walls and shelves are impassable, everything else is navigable.
func Obstacles() KindSet {
	return NewKindSet(KindWall, KindShelf)
}

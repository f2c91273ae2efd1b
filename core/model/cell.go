package model

import "fmt"

// Cell identifies a grid position by integer coordinates.
type Cell struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Manhattan returns the 4-directional step distance between two cells.
func (c Cell) Manhattan(o Cell) int {
	return abs(c.X-o.X) + abs(c.Y-o.Y)
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

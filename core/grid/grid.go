// Package grid implements the warehouse floor: a rectangular field of cells,
// each holding a multiset of occupants. The grid only stores and queries
// occupancy; movement validation is the caller's job, so that a vehicle's
// collision check and the actual move stay two distinct, ordered steps.
package grid

import (
	"github.com/warefleet/agvsim/core/model"
)

// Occupant is anything placed in a cell, static feature or vehicle.
type Occupant interface {
	OccupantKind() model.Kind
}

// Feature is a static occupant. Features are placed once during layout
// construction and never move.
type Feature struct {
	kind model.Kind
	pos  model.Cell
}

// NewFeature creates a static feature of the given kind at pos.
func NewFeature(kind model.Kind, pos model.Cell) *Feature {
	return &Feature{kind: kind, pos: pos}
}

// OccupantKind implements Occupant.
func (f *Feature) OccupantKind() model.Kind { return f.kind }

// Pos returns the cell the feature was placed at.
func (f *Feature) Pos() model.Cell { return f.pos }

// Grid is the spatial environment. It is not safe for concurrent use; all
// access happens from the simulation loop goroutine.
type Grid struct {
	width  int
	height int
	cells  map[model.Cell][]Occupant
}

// New creates an empty grid of the given dimensions.
func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		cells:  make(map[model.Cell][]Occupant),
	}
}

// Width returns the horizontal extent of the grid.
func (g *Grid) Width() int { return g.width }

// Height returns the vertical extent of the grid.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether c lies within the grid.
func (g *Grid) InBounds(c model.Cell) bool {
	return c.X >= 0 && c.X < g.width && c.Y >= 0 && c.Y < g.height
}

// OccupantsAt returns the occupants at c. The returned slice is shared with
// the grid and must not be mutated by callers.
func (g *Grid) OccupantsAt(c model.Cell) []Occupant {
	return g.cells[c]
}

// IsBlocked reports whether c is outside the grid or holds an occupant whose
// kind is in blocking. Out of bounds counts as blocked.
func (g *Grid) IsBlocked(c model.Cell, blocking model.KindSet) bool {
	if !g.InBounds(c) {
		return true
	}
	for _, o := range g.cells[c] {
		if blocking.Has(o.OccupantKind()) {
			return true
		}
	}
	return false
}

// HasKind reports whether any occupant of the given kind is at c.
func (g *Grid) HasKind(c model.Cell, kind model.Kind) bool {
	for _, o := range g.cells[c] {
		if o.OccupantKind() == kind {
			return true
		}
	}
	return false
}

// VehicleCount returns the number of vehicle occupants at c.
func (g *Grid) VehicleCount(c model.Cell) int {
	n := 0
	for _, o := range g.cells[c] {
		if o.OccupantKind() == model.KindVehicle {
			n++
		}
	}
	return n
}

// Place adds o to c. Used at setup for static features and initial vehicle
// placement.
func (g *Grid) Place(o Occupant, c model.Cell) {
	g.cells[c] = append(g.cells[c], o)
}

// Move removes o from `from` and adds it to `to`. No bounds or occupancy
// check is performed here; the caller must already have validated the
// destination via IsBlocked.
func (g *Grid) Move(o Occupant, from, to model.Cell) {
	occ := g.cells[from]
	for i, cur := range occ {
		if cur == o {
			g.cells[from] = append(occ[:i], occ[i+1:]...)
			break
		}
	}
	if len(g.cells[from]) == 0 {
		delete(g.cells, from)
	}
	g.cells[to] = append(g.cells[to], o)
}

// Package path computes shortest routes over a grid snapshot with A*.
// The search is a pure function of the grid: it never mutates occupancy and
// ignores vehicles, which are handled per step at execution time.
package path

import (
	"container/heap"

	"github.com/warefleet/agvsim/core/grid"
	"github.com/warefleet/agvsim/core/model"
)

// Find returns the cell-by-cell route from start to goal, excluding start and
// including goal. It returns nil when start == goal or when no route exists
// through cells for which IsBlocked(cell, blocking) is false. The goal cell
// itself is exempt from the blocking check: a route may terminate on a
// feature cell (a pickup at a shelf) that through-traffic must not cross.
//
// Cost is one per 4-directional step and the heuristic is Manhattan distance,
// so a returned route is always a shortest one. Frontier ties on f = g + h
// are broken by insertion order, making the result deterministic regardless
// of the heap's internal tie behavior.
func Find(g *grid.Grid, start, goal model.Cell, blocking model.KindSet) []model.Cell {
	if start == goal {
		return nil
	}

	f := newFrontier()
	f.push(node{cell: start, g: 0, f: start.Manhattan(goal)})
	visited := make(map[model.Cell]bool)
	parent := make(map[model.Cell]model.Cell)

	for f.Len() > 0 {
		cur := f.pop()
		if visited[cur.cell] {
			continue
		}
		visited[cur.cell] = true
		if cur.cell != start {
			parent[cur.cell] = cur.from
		}

		if cur.cell == goal {
			return reconstruct(parent, start, goal)
		}

		for _, next := range neighbors(cur.cell) {
			if visited[next] || !g.InBounds(next) {
				continue
			}
			if next != goal && g.IsBlocked(next, blocking) {
				continue
			}
			gScore := cur.g + 1
			f.push(node{
				cell: next,
				from: cur.cell,
				g:    gScore,
				f:    gScore + next.Manhattan(goal),
			})
		}
	}
	return nil
}

// neighbors returns the 4-directionally adjacent cells in a fixed order.
func neighbors(c model.Cell) [4]model.Cell {
	return [4]model.Cell{
		{X: c.X + 1, Y: c.Y},
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X, Y: c.Y - 1},
	}
}

func reconstruct(parent map[model.Cell]model.Cell, start, goal model.Cell) []model.Cell {
	var rev []model.Cell
	for c := goal; c != start; c = parent[c] {
		rev = append(rev, c)
	}
	route := make([]model.Cell, len(rev))
	for i, c := range rev {
		route[len(rev)-1-i] = c
	}
	return route
}

// node is one frontier entry. from is the cell it was expanded from, used to
// record the parent the first time the cell is popped.
type node struct {
	cell  model.Cell
	from  model.Cell
	g     int
	f     int
	order uint64
}

// frontier is a min-heap keyed on (f, insertion order). The monotonically
// increasing counter pairs every entry with its insertion rank.
type frontier struct {
	nodes []node
	seq   uint64
}

func newFrontier() *frontier { return &frontier{} }

func (fr *frontier) push(n node) {
	n.order = fr.seq
	fr.seq++
	heap.Push(fr, n)
}

func (fr *frontier) pop() node {
	return heap.Pop(fr).(node)
}

func (fr *frontier) Len() int { return len(fr.nodes) }

func (fr *frontier) Less(i, j int) bool {
	if fr.nodes[i].f != fr.nodes[j].f {
		return fr.nodes[i].f < fr.nodes[j].f
	}
	return fr.nodes[i].order < fr.nodes[j].order
}

func (fr *frontier) Swap(i, j int) {
	fr.nodes[i], fr.nodes[j] = fr.nodes[j], fr.nodes[i]
}

func (fr *frontier) Push(x any) {
	fr.nodes = append(fr.nodes, x.(node))
}

func (fr *frontier) Pop() any {
	old := fr.nodes
	n := len(old)
	item := old[n-1]
	fr.nodes = old[:n-1]
	return item
}

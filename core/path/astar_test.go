package path

import (
	"testing"

	"github.com/warefleet/agvsim/core/grid"
	"github.com/warefleet/agvsim/core/model"
)

func openGrid(w, h int) *grid.Grid {
	return grid.New(w, h)
}

func TestFindOpenGridOptimal(t *testing.T) {
	g := openGrid(10, 10)
	start := model.Cell{X: 1, Y: 1}
	goal := model.Cell{X: 8, Y: 6}
	route := Find(g, start, goal, model.Obstacles())
	if want := start.Manhattan(goal); len(route) != want {
		t.Fatalf("expected length %d got %d", want, len(route))
	}
	if route[len(route)-1] != goal {
		t.Fatalf("route must end at goal, got %v", route[len(route)-1])
	}
	if route[0] == start {
		t.Fatalf("route must exclude start")
	}
	prev := start
	for i, c := range route {
		if prev.Manhattan(c) != 1 {
			t.Fatalf("step %d not adjacent: %v -> %v", i, prev, c)
		}
		prev = c
	}
}

func TestFindStartEqualsGoal(t *testing.T) {
	g := openGrid(5, 5)
	c := model.Cell{X: 2, Y: 2}
	if route := Find(g, c, c, model.Obstacles()); len(route) != 0 {
		t.Fatalf("expected empty route, got %v", route)
	}
}

func TestFindAvoidsObstacles(t *testing.T) {
	rows := []string{
		"          ",
		"          ",
		"          ",
		"          ",
		"          ",
		"#### #####",
		"          ",
		"          ",
		"          ",
		"          ",
	}
	g, _, err := grid.Build(rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	start := model.Cell{X: 0, Y: 0}
	goal := model.Cell{X: 0, Y: 9}
	route := Find(g, start, goal, model.Obstacles())
	if route == nil {
		t.Fatalf("expected a route through the gap")
	}
	for _, c := range route {
		if g.IsBlocked(c, model.Obstacles()) {
			t.Fatalf("route crosses obstacle at %v", c)
		}
	}
	// The only opening in the wall line is (4,5).
	found := false
	for _, c := range route {
		if c == (model.Cell{X: 4, Y: 5}) {
			found = true
		}
	}
	if !found {
		t.Fatalf("route must pass through the single gap, got %v", route)
	}
	// Detour: down to the gap column, through, and back. 4 right, 9 down,
	// 4 left.
	if want := 17; len(route) != want {
		t.Fatalf("expected detour length %d got %d", want, len(route))
	}
}

func TestFindWallWithGapScenario(t *testing.T) {
	// 10x10 open grid split by a vertical wall at x=5 with one gap at (5,0).
	g := grid.New(10, 10)
	for y := 1; y < 10; y++ {
		c := model.Cell{X: 5, Y: y}
		g.Place(grid.NewFeature(model.KindWall, c), c)
	}
	start := model.Cell{X: 0, Y: 5}
	goal := model.Cell{X: 9, Y: 5}
	route := Find(g, start, goal, model.Obstacles())
	if route == nil {
		t.Fatalf("expected a route")
	}
	// 5 up, 9 right, 5 down: the unique detour distance, not the blocked
	// straight-line 9.
	if want := 19; len(route) != want {
		t.Fatalf("expected %d steps got %d", want, len(route))
	}
}

func TestFindUnreachable(t *testing.T) {
	rows := []string{
		"   # ",
		"   # ",
		"   # ",
		"   # ",
		"   # ",
	}
	g, _, err := grid.Build(rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	route := Find(g, model.Cell{X: 0, Y: 0}, model.Cell{X: 4, Y: 4}, model.Obstacles())
	if route != nil {
		t.Fatalf("expected no route, got %v", route)
	}
}

func TestFindDeterministicTies(t *testing.T) {
	g := openGrid(12, 12)
	start := model.Cell{X: 2, Y: 2}
	goal := model.Cell{X: 9, Y: 9}
	first := Find(g, start, goal, model.Obstacles())
	for i := 0; i < 10; i++ {
		again := Find(g, start, goal, model.Obstacles())
		if len(again) != len(first) {
			t.Fatalf("run %d: length %d != %d", i, len(again), len(first))
		}
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d: step %d differs: %v != %v", i, j, again[j], first[j])
			}
		}
	}
}

func TestFindShelfGoalReachable(t *testing.T) {
	rows := []string{
		"     ",
		"  S  ",
		"     ",
		"     ",
	}
	g, _, err := grid.Build(rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	start := model.Cell{X: 1, Y: 2}
	goal := model.Cell{X: 2, Y: 1}
	route := Find(g, start, goal, model.Obstacles())
	if route == nil {
		t.Fatalf("shelf goal must be reachable")
	}
	if route[len(route)-1] != goal {
		t.Fatalf("route must end at the shelf, got %v", route)
	}
	if want := start.Manhattan(goal); len(route) != want {
		t.Fatalf("expected length %d got %d", want, len(route))
	}
	for _, c := range route[:len(route)-1] {
		if g.IsBlocked(c, model.Obstacles()) {
			t.Fatalf("interior step %v crosses an obstacle", c)
		}
	}
}

func TestFindShelfBlocksThroughTraffic(t *testing.T) {
	// A full shelf column still walls off the far side when the goal lies
	// beyond it, not on it.
	rows := []string{
		"  S  ",
		"  S  ",
		"  S  ",
		"  S  ",
	}
	g, _, err := grid.Build(rows)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	route := Find(g, model.Cell{X: 0, Y: 0}, model.Cell{X: 4, Y: 3}, model.Obstacles())
	if route != nil {
		t.Fatalf("expected no route through the shelf wall, got %v", route)
	}
}

func TestFindGoalWithNonBlockingOccupant(t *testing.T) {
	g := grid.New(5, 5)
	goal := model.Cell{X: 4, Y: 4}
	g.Place(grid.NewFeature(model.KindChargingStation, goal), goal)
	route := Find(g, model.Cell{X: 0, Y: 0}, goal, model.Obstacles())
	if route == nil || route[len(route)-1] != goal {
		t.Fatalf("charger-marked goal must be reachable, got %v", route)
	}
}

package sim

import (
	"fmt"
	"math/rand"

	"github.com/warefleet/agvsim/core/grid"
	"github.com/warefleet/agvsim/core/model"
	"github.com/warefleet/agvsim/core/vehicle"
)

// PlaceFleet creates n vehicles with IDs agv0001..agvNNNN at distinct random
// unobstructed cells. A cell is open when it holds no wall, shelf or vehicle;
// sharing with a charger or dropoff marker is allowed.
func PlaceFleet(g *grid.Grid, feats grid.Features, n int, cfg vehicle.Config, rng *rand.Rand) ([]*vehicle.Vehicle, error) {
	blocked := model.NewKindSet(model.KindWall, model.KindShelf, model.KindVehicle)
	var open []model.Cell
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			c := model.Cell{X: x, Y: y}
			if !g.IsBlocked(c, blocked) {
				open = append(open, c)
			}
		}
	}
	if len(open) < n {
		return nil, fmt.Errorf("layout has %d open cells, need %d", len(open), n)
	}
	rng.Shuffle(len(open), func(i, j int) {
		open[i], open[j] = open[j], open[i]
	})

	fleet := make([]*vehicle.Vehicle, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("agv%04d", i+1)
		fleet[i] = vehicle.New(id, open[i], g, feats.Chargers, cfg)
	}
	return fleet, nil
}

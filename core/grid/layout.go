package grid

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/warefleet/agvsim/core/model"
)

// Layout symbols:
//
//	'#' wall, 'S' shelf, 'C' charging station, 'D' dropoff point, ' ' open.
const (
	symWall    = '#'
	symShelf   = 'S'
	symCharger = 'C'
	symDropoff = 'D'
	symOpen    = ' '
)

// Features indexes the static layout cells vehicles care about, in row-major
// scan order. Charger order matters: it is the tie-break when two chargers
// are equally near.
type Features struct {
	Shelves  []model.Cell
	Dropoffs []model.Cell
	Chargers []model.Cell
}

// Build constructs a grid from a rectangular rune map and places one static
// feature per marked cell.
func Build(rows []string) (*Grid, Features, error) {
	var feats Features
	if len(rows) == 0 {
		return nil, feats, fmt.Errorf("layout has no rows")
	}
	width := len(rows[0])
	if width == 0 {
		return nil, feats, fmt.Errorf("layout rows are empty")
	}
	for y, row := range rows {
		if len(row) != width {
			return nil, feats, fmt.Errorf("layout row %d has length %d, want %d", y, len(row), width)
		}
	}

	g := New(width, len(rows))
	for y, row := range rows {
		for x, sym := range row {
			c := model.Cell{X: x, Y: y}
			switch sym {
			case symWall:
				g.Place(NewFeature(model.KindWall, c), c)
			case symShelf:
				g.Place(NewFeature(model.KindShelf, c), c)
				feats.Shelves = append(feats.Shelves, c)
			case symCharger:
				g.Place(NewFeature(model.KindChargingStation, c), c)
				feats.Chargers = append(feats.Chargers, c)
			case symDropoff:
				g.Place(NewFeature(model.KindDropoffPoint, c), c)
				feats.Dropoffs = append(feats.Dropoffs, c)
			case symOpen:
			default:
				return nil, feats, fmt.Errorf("layout row %d col %d: unknown symbol %q", y, x, string(sym))
			}
		}
	}
	return g, feats, nil
}

type layoutFile struct {
	Rows []string `yaml:"rows"`
}

// LoadLayout reads a YAML layout file containing a `rows` list.
func LoadLayout(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return DecodeLayout(f)
}

// DecodeLayout reads layout rows from r.
func DecodeLayout(r io.Reader) ([]string, error) {
	var lf layoutFile
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&lf); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if len(lf.Rows) == 0 {
		return nil, fmt.Errorf("layout file has no rows")
	}
	return lf.Rows, nil
}

// DefaultLayout returns the built-in 30x30 warehouse: a wall ring, shelf
// blocks forming aisles, three chargers and six dropoff points.
func DefaultLayout() []string {
	return []string{
		"##############################",
		"#                            #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                            #",
		"#            C  C  C         #",
		"#                            #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                          D #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#  SSSS  SSSS  SSSS  SSSS    #",
		"#                            #",
		"#                            #",
		"##############################",
	}
}

package tilematch

import "math/rand"

// Pos identifies a tile by row and column.
type Pos struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// Tile is one numbered cell. Identity is positional; clearing a match
// reassigns Value rather than removing the tile.
type Tile struct {
	Value    int
	Selected bool
}

// Grid is a fixed rows×cols matrix of tiles.
type Grid struct {
	rows, cols int
	minV, maxV int
	tiles      [][]Tile
	rng        *rand.Rand
}

// NewGrid creates a grid with uniformly random values in [minV, maxV].
func NewGrid(rows, cols, minV, maxV int, rng *rand.Rand) *Grid {
	g := &Grid{
		rows:  rows,
		cols:  cols,
		minV:  minV,
		maxV:  maxV,
		tiles: make([][]Tile, rows),
		rng:   rng,
	}
	for r := range g.tiles {
		g.tiles[r] = make([]Tile, cols)
		for c := range g.tiles[r] {
			g.tiles[r][c] = Tile{Value: g.randomValue()}
		}
	}
	return g
}

func (g *Grid) randomValue() int {
	return g.minV + g.rng.Intn(g.maxV-g.minV+1)
}

// Rows returns the number of rows.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the number of columns.
func (g *Grid) Cols() int { return g.cols }

// InBounds reports whether p is a cell of the grid.
func (g *Grid) InBounds(p Pos) bool {
	return p.Row >= 0 && p.Row < g.rows && p.Col >= 0 && p.Col < g.cols
}

// At returns the tile at p. p must be in bounds.
func (g *Grid) At(p Pos) Tile {
	return g.tiles[p.Row][p.Col]
}

func (g *Grid) setSelected(p Pos, selected bool) {
	g.tiles[p.Row][p.Col].Selected = selected
}

// Regenerate assigns fresh random values to the given cells and clears their
// selection flag.
func (g *Grid) Regenerate(cells []Pos) {
	for _, p := range cells {
		g.tiles[p.Row][p.Col] = Tile{Value: g.randomValue()}
	}
}

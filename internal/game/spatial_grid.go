package game

import (
	"math"
	"slices"
)

// GridCellSize is the broad-phase cell edge on the floor plane.
const GridCellSize = 2.0

// cellKey uniquely identifies a grid cell on the XZ plane
type cellKey struct {
	cx, cz int
}

// SpatialGrid is a hash grid over entity indices for proximity queries.
// Free objects never move, so entries are inserted when an object becomes
// collidable and removed when it is absorbed.
type SpatialGrid struct {
	cells    map[cellKey][]int
	cellSize float64
}

// NewSpatialGrid creates an empty spatial grid
func NewSpatialGrid(cellSize float64) *SpatialGrid {
	if cellSize <= 0 {
		cellSize = GridCellSize
	}
	return &SpatialGrid{
		cells:    make(map[cellKey][]int),
		cellSize: cellSize,
	}
}

// Clear resets all cells
func (g *SpatialGrid) Clear() {
	g.cells = make(map[cellKey][]int)
}

func (g *SpatialGrid) keyFor(x, z float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cellSize)),
		cz: int(math.Floor(z / g.cellSize)),
	}
}

// Insert adds an entity to the cell under its position
func (g *SpatialGrid) Insert(e *Entity) {
	k := g.keyFor(e.Position.X, e.Position.Z)
	g.cells[k] = append(g.cells[k], e.Index)
}

// Remove drops an entity from the cell under its position
func (g *SpatialGrid) Remove(e *Entity) {
	k := g.keyFor(e.Position.X, e.Position.Z)
	cell := g.cells[k]
	for i, idx := range cell {
		if idx == e.Index {
			cell = append(cell[:i], cell[i+1:]...)
			break
		}
	}
	if len(cell) == 0 {
		delete(g.cells, k)
		return
	}
	g.cells[k] = cell
}

// Nearby returns indices of entities whose cell intersects the square of
// the given radius around (x,z), in ascending index order.
func (g *SpatialGrid) Nearby(x, z, radius float64) []int {
	minCX := int(math.Floor((x - radius) / g.cellSize))
	maxCX := int(math.Floor((x + radius) / g.cellSize))
	minCZ := int(math.Floor((z - radius) / g.cellSize))
	maxCZ := int(math.Floor((z + radius) / g.cellSize))

	var results []int
	for cx := minCX; cx <= maxCX; cx++ {
		for cz := minCZ; cz <= maxCZ; cz++ {
			results = append(results, g.cells[cellKey{cx, cz}]...)
		}
	}
	slices.Sort(results)
	return results
}

// Len returns the number of indexed entities.
func (g *SpatialGrid) Len() int {
	n := 0
	for _, c := range g.cells {
		n += len(c)
	}
	return n
}

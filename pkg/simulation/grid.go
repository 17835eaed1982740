package simulation

import (
	"math"
	"slices"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
)

type gridKey struct {
	x, y int
}

// spatialGrid buckets agent indexes by cell so neighbour queries only look at
// the 3x3 block around a position. Cells are at least as large as the largest
// interaction radius, which keeps every neighbour inside that block.
type spatialGrid struct {
	cellSize float64
	cells    map[gridKey][]int
	scratch  []int
}

func newSpatialGrid() *spatialGrid {
	return &spatialGrid{cells: make(map[gridKey][]int)}
}

// cellSizeFor uses the largest radius to ensure our 3x3 grid check covers everything
func cellSizeFor(cfg *Config) float64 {
	maxRadius := math.Max(cfg.VisualRange, cfg.ProtectedRange)
	// Clamp to a minimum of 10 to avoid tiny grids or div by zero
	return math.Max(maxRadius, 10.0)
}

func (g *spatialGrid) cellOf(p geometry.Vector2D) gridKey {
	return gridKey{x: int(math.Floor(p.X / g.cellSize)), y: int(math.Floor(p.Y / g.cellSize))}
}

func (g *spatialGrid) rebuild(agents []*Agent, cellSize float64) {
	// Reset slices to length 0 but keep their capacity, so steady state
	// rebuilds do not allocate.
	for k := range g.cells {
		g.cells[k] = g.cells[k][:0]
	}
	g.cellSize = cellSize
	for i, a := range agents {
		key := g.cellOf(a.Pos)
		g.cells[key] = append(g.cells[key], i)
	}
}

// nearby appends to out the agents in and around the cell of p, in agent
// index order. Keeping the order of the full slice makes the float sums in
// the steering behaviours identical to a scan over every agent.
func (g *spatialGrid) nearby(p geometry.Vector2D, agents []*Agent, out []*Agent) []*Agent {
	c := g.cellOf(p)
	g.scratch = g.scratch[:0]
	for i := c.x - 1; i <= c.x+1; i++ {
		for j := c.y - 1; j <= c.y+1; j++ {
			g.scratch = append(g.scratch, g.cells[gridKey{x: i, y: j}]...)
		}
	}
	slices.Sort(g.scratch)
	for _, idx := range g.scratch {
		out = append(out, agents[idx])
	}
	return out
}

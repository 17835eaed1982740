package layout

import (
	"math"
	"math/rand/v2"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
)

// demo room: a hall with one door on its east wall, a corridor leading out of
// it and the assembly point at the far end.
var demoWalls = []Boundary{
	{Point{100, 100}, Point{600, 100}},
	{Point{100, 100}, Point{100, 700}},
	{Point{100, 700}, Point{600, 700}},
	{Point{600, 100}, Point{600, 350}},
	{Point{600, 450}, Point{600, 700}},
	{Point{600, 350}, Point{820, 350}},
	{Point{600, 450}, Point{820, 450}},
}

var demoNodes = []struct {
	pos      geometry.Vector2D
	category navgraph.Category
}{
	{geometry.Vector2D{X: 520, Y: 270}, navgraph.Exit},
	{geometry.Vector2D{X: 520, Y: 400}, navgraph.Exit},
	{geometry.Vector2D{X: 520, Y: 530}, navgraph.Exit},
	{geometry.Vector2D{X: 650, Y: 400}, navgraph.Destination},
	{geometry.Vector2D{X: 780, Y: 400}, navgraph.Destination},
	{geometry.Vector2D{X: 900, Y: 400}, navgraph.Assembly},
}

// Demo returns the built-in scenario used when no map file is given. The graph
// is linked with AutoConnect using cfg.GraphEdgeRadius, and cfg.NumBoidsAtStart
// boids are scattered over a jittered grid inside the hall.
func Demo(cfg *simulation.Config) *Map {
	m := &Map{
		Name:          "demo",
		AssemblyPoint: Point{900, 400},
		Boundaries:    append([]Boundary(nil), demoWalls...),
	}

	walls := make([]*obstacle.Obstacle, 0, len(demoWalls))
	for _, b := range demoWalls {
		walls = append(walls, obstacle.NewUnchecked(b.Start.Vector(), b.End.Vector(), cfg.BufferRadius))
	}
	g := navgraph.New()
	for _, n := range demoNodes {
		g.AddNode(n.pos, n.category)
	}
	g.AutoConnect(cfg.GraphEdgeRadius, walls)
	l := g.Export()
	m.Graph = &l

	m.Boids = scatter(cfg.NumBoidsAtStart, 130, 130, 440, 540)
	return m
}

// scatter spreads n points over the rectangle at (x, y) of size w×h. The jitter
// is seeded so the demo always starts the same way.
func scatter(n int, x, y, w, h float64) []Point {
	out := make([]Point, 0, n)
	if n <= 0 {
		return out
	}
	cols := int(math.Ceil(math.Sqrt(float64(n) * w / h)))
	rows := (n + cols - 1) / cols
	dx, dy := w/float64(cols), h/float64(rows)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := range n {
		c, r := i%cols, i/cols
		out = append(out, Point{
			X: x + (float64(c)+0.25+rng.Float64()*0.5)*dx,
			Y: y + (float64(r)+0.25+rng.Float64()*0.5)*dy,
		})
	}
	return out
}

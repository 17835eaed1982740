package viewer

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
)

var (
	background  = color.RGBA{R: 10, G: 10, B: 30, A: 255}
	wallColor   = color.RGBA{R: 230, G: 230, B: 230, A: 255}
	bufferColor = color.RGBA{R: 255, G: 160, B: 40, A: 120}
	edgeColor   = color.RGBA{R: 90, G: 90, B: 140, A: 160}
	routeColor  = color.RGBA{R: 120, G: 220, B: 120, A: 90}

	// Pre-rendered images for fast batched drawing
	whiteImage     = ebiten.NewImage(3, 3)
	predatorSprite *ebiten.Image
)

// stateTint is the vertex colour of a boid per route state.
var stateTint = map[simulation.RouteState][3]float32{
	simulation.Unrouted:  {1, 1, 1},
	simulation.Routed:    {1, 0.9, 0.3},
	simulation.Advancing: {0.4, 1, 0.4},
	simulation.Completed: {0.5, 0.6, 1},
}

func nodeColor(c navgraph.Category) color.RGBA {
	switch c {
	case navgraph.Exit:
		return color.RGBA{R: 255, G: 80, B: 80, A: 255}
	case navgraph.Assembly:
		return color.RGBA{R: 80, G: 255, B: 120, A: 255}
	case navgraph.Destination:
		return color.RGBA{R: 80, G: 160, B: 255, A: 255}
	}
	return color.RGBA{R: 180, G: 180, B: 180, A: 255}
}

func line(screen *ebiten.Image, a, b geometry.Vector2D, width float32, clr color.Color) {
	vector.StrokeLine(screen, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
}

func drawWalls(screen *ebiten.Image, s *simulation.Snapshot, buffers bool) {
	for _, w := range s.Walls {
		if buffers && len(w.Buffer) > 0 {
			for i, p := range w.Buffer {
				line(screen, p, w.Buffer[(i+1)%len(w.Buffer)], 1, bufferColor)
			}
		}
		line(screen, w.Wall.A, w.Wall.B, 3, wallColor)
	}
}

func drawGraph(screen *ebiten.Image, s *simulation.Snapshot) {
	for _, e := range s.Edges {
		line(screen, e.From, e.To, 1, edgeColor)
	}
	for _, n := range s.Nodes {
		vector.FillCircle(screen, float32(n.Pos.X), float32(n.Pos.Y), 4, nodeColor(n.Category), true)
	}
}

func drawAssembly(screen *ebiten.Image, p geometry.Vector2D) {
	vector.StrokeCircle(screen, float32(p.X), float32(p.Y), 12, 2, color.RGBA{R: 80, G: 255, B: 120, A: 255}, true)
	ebitenutil.DebugPrintAt(screen, "ASSEMBLY", int(p.X)-24, int(p.Y)+14)
}

func drawRoutes(screen *ebiten.Image, s *simulation.Snapshot) {
	for _, a := range s.Agents {
		from := a.Pos
		for _, wp := range a.Waypoints {
			line(screen, from, wp, 1, routeColor)
			from = wp
		}
	}
}

// drawBoid draws a triangle pointing along the velocity.
func drawBoid(screen *ebiten.Image, a *simulation.AgentView) {
	angle := math.Atan2(a.Vel.Y, a.Vel.X)
	tint := stateTint[a.State]

	pts := [3]geometry.Vector2D{
		a.Pos.Add(geometry.NewVectorPolar(6, angle)),
		a.Pos.Add(geometry.NewVectorPolar(5, angle+2.5)),
		a.Pos.Add(geometry.NewVectorPolar(5, angle-2.5)),
	}
	vertices := make([]ebiten.Vertex, 0, 3)
	for _, p := range pts {
		vertices = append(vertices, ebiten.Vertex{
			DstX: float32(p.X), DstY: float32(p.Y),
			SrcX: 1, SrcY: 1,
			ColorR: tint[0], ColorG: tint[1], ColorB: tint[2], ColorA: 1,
		})
	}
	screen.DrawTriangles(vertices, []uint16{0, 1, 2}, whiteImage, &ebiten.DrawTrianglesOptions{})
}

func drawPredator(screen *ebiten.Image, a *simulation.AgentView) {
	op := &ebiten.DrawImageOptions{}
	w, h := predatorSprite.Bounds().Dx(), predatorSprite.Bounds().Dy()
	op.GeoM.Translate(-float64(w)/2, -float64(h)/2)
	// The sprite faces "Up"; add 90° to line it up with the velocity.
	op.GeoM.Rotate(math.Atan2(a.Vel.Y, a.Vel.X) + math.Pi/2)
	op.GeoM.Scale(1.5, 1.5)
	op.GeoM.Translate(a.Pos.X, a.Pos.Y)
	screen.DrawImage(predatorSprite, op)
}

// drawStatsBar stacks the share of boids per route state in the top right corner.
func drawStatsBar(screen *ebiten.Image, st simulation.Stats) {
	total := float32(st.Agents)
	if total == 0 {
		return
	}

	barWidth := float32(200.0)
	barHeight := float32(20.0)
	x := float32(screen.Bounds().Dx()) - barWidth - 10
	y := float32(10.0)

	parts := []struct {
		n     int
		state simulation.RouteState
	}{
		{st.Unrouted, simulation.Unrouted},
		{st.Routed, simulation.Routed},
		{st.Advancing, simulation.Advancing},
		{st.Completed, simulation.Completed},
	}
	for _, p := range parts {
		w := barWidth * float32(p.n) / total
		t := stateTint[p.state]
		clr := color.RGBA{R: uint8(t[0] * 255), G: uint8(t[1] * 255), B: uint8(t[2] * 255), A: 255}
		vector.FillRect(screen, x, y, w, barHeight, clr, true)
		x += w
	}

	msg := fmt.Sprintf("agents %d  routed %d  done %d  predators %d",
		st.Agents, st.Routed+st.Advancing, st.Completed, st.Predators)
	ebitenutil.DebugPrintAt(screen, msg, screen.Bounds().Dx()-int(barWidth)-10-60, int(y+barHeight+5))
}

func init() {
	whiteImage.Fill(color.White)

	// Legend:
	// . = Transparent
	// G = Green (Glass/Dome)
	// P = Purple (Hull)
	// Y = Yellow (Lights)
	// R = Red (Thrusters)
	design := []string{
		"......GG......",
		"....GGGGGG....",
		"..PPPPPPPPPP..",
		"RRPYPYPYPYPYRR",
		".R...R..R...R.",
		"......RR......",
	}
	palette := map[rune]color.RGBA{
		'G': {R: 50, G: 255, B: 50, A: 255},
		'P': {R: 150, G: 50, B: 200, A: 255},
		'Y': {R: 255, G: 255, B: 0, A: 255},
		'R': {R: 255, G: 60, B: 40, A: 255},
	}
	predatorSprite = generateSprite(design, palette)
}

// generateSprite converts an ASCII grid into an Ebiten image
func generateSprite(design []string, palette map[rune]color.RGBA) *ebiten.Image {
	img := ebiten.NewImage(len(design[0]), len(design))
	for y, row := range design {
		for x, char := range row {
			if col, ok := palette[char]; ok {
				img.Set(x, y, col)
			}
		}
	}
	return img
}

// Package viewer is the ebiten front end. It never touches the World: it sends
// commands and ticks to the WorldActor and draws the snapshots it gets back.
package viewer

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/tochemey/goakt/v3/actor"
	"go.uber.org/zap"
	"google.golang.org/protobuf/proto"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/ui"
)

type Game struct {
	ctx        context.Context
	worldPID   *actor.PID
	snapshotCh chan *simulation.Snapshot
	lastState  *simulation.Snapshot
	cfg        *simulation.Config
	log        *zap.Logger

	// UI Controls
	panel             *ui.UIPanel
	widgetBuffer      *ui.Slider
	widgetShowBuffers *ui.Checkbox
	widgetShowGraph   *ui.Checkbox
	widgetShowRoutes  *ui.Checkbox
	bufferRadius      float64
	paused            bool

	// Timing instrumentation
	updateAvg float64 // Rolling average in ms
	drawAvg   float64 // Rolling average in ms
}

// New spawns the WorldActor for world inside system and builds the panel.
func New(ctx context.Context, system actor.ActorSystem, world *simulation.World, cfg *simulation.Config, log *zap.Logger) (*Game, error) {
	// Buffer to avoid blocking the actor on a slow frame
	snapshotCh := make(chan *simulation.Snapshot, 10)

	worldPID, err := system.Spawn(ctx, "world", simulation.NewWorldActor(world, snapshotCh, cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to spawn world: %w", err)
	}

	g := &Game{
		ctx:          ctx,
		worldPID:     worldPID,
		snapshotCh:   snapshotCh,
		lastState:    &simulation.Snapshot{Mode: cfg.BoundaryMode},
		cfg:          cfg,
		log:          log,
		bufferRadius: cfg.BufferRadius,
	}
	g.buildPanel()
	return g, nil
}

func (g *Game) buildPanel() {
	cfg := g.cfg
	p := ui.NewUIPanel(10, 10, 260, cfg.WorldHeight-20)
	p.Title = "Evacuation"

	p.AddSection("Ranges")
	p.AddSlider("Visual Range", simulation.TunableVisualRange, 10, 200, cfg.VisualRange)
	p.AddSlider("Protected Range", simulation.TunableProtectedRange, 2, 50, cfg.ProtectedRange)
	p.AddSlider("Boundary Range", simulation.TunableBoundaryRange, 1, 30, cfg.BoundaryRange)
	p.AddSlider("Predator Range", simulation.TunablePredatorRange, 10, 200, cfg.PredatorRange)

	p.AddSection("Weights")
	p.AddSlider("Separation", simulation.TunableSeparation, 0, 10, cfg.SeparationFactor)
	p.AddSlider("Alignment", simulation.TunableAlignment, 0, 5, cfg.AlignmentFactor)
	p.AddSlider("Cohesion", simulation.TunableCohesion, 0, 5, cfg.CohesionFactor)
	p.AddSlider("Wall Avoidance", simulation.TunableAvoidance, 0, 30, cfg.AvoidanceFactor)
	p.AddSlider("Predator Avoidance", simulation.TunablePredator, 0, 20, cfg.PredatorFactor)
	p.AddSlider("Route Seeking", simulation.TunableSeeking, 0, 5, cfg.SeekingFactor)
	p.AddSlider("Assembly Seeking", simulation.TunableAssemblySeeking, 0, 2, cfg.AssemblySeekingFactor)

	p.AddSection("Walls")
	g.widgetBuffer = p.AddSlider("Buffer Radius", "", 0, 40, cfg.BufferRadius)

	p.AddSection("Visualization")
	g.widgetShowBuffers = p.AddCheckbox("Buffer Zones [O]", cfg.DisplayBuffers)
	g.widgetShowGraph = p.AddCheckbox("Graph", cfg.DisplayGraph)
	g.widgetShowRoutes = p.AddCheckbox("Routes", cfg.DisplayRoutes)

	p.AddSection("Actions")
	p.AddButton("Enable Pathfinding [P]", func() { g.send(simulation.AssignRoutesCommand()) })
	p.AddButton("Wrap / Reflect [B]", func() { g.send(simulation.BoundaryModeCommand("")) })
	p.AddButton("Pause [Space]", g.togglePause)

	g.panel = p
}

// send delivers msg to the world; a failure only costs this frame's command.
func (g *Game) send(msg proto.Message) {
	if err := actor.Tell(g.ctx, g.worldPID, msg); err != nil {
		g.log.Warn("world did not accept message", zap.Error(err))
	}
}

func (g *Game) togglePause() {
	g.paused = !g.paused
	g.send(simulation.PauseCommand(g.paused))
}

func (g *Game) Update() error {
	start := time.Now()
	defer func() {
		// Rolling average (exponential moving average)
		g.updateAvg = g.updateAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	g.panel.Update()

	// Keep only the newest snapshot
	for drained := false; !drained; {
		select {
		case snap := <-g.snapshotCh:
			g.lastState = snap
		default:
			drained = true
		}
	}

	g.handleInput()

	if r := g.widgetBuffer.Value; math.Abs(r-g.bufferRadius) > 0.05 {
		g.bufferRadius = r
		g.send(simulation.BufferRadiusCommand(r))
	}
	g.send(simulation.ConfigureCommand(g.panel.Values()))
	g.send(simulation.TickMessage(time.Second / time.Duration(max(ebiten.TPS(), 1))))
	return nil
}

func (g *Game) handleInput() {
	mx, my := ebiten.CursorPosition()
	pos := geometry.Vector2D{X: float64(mx), Y: float64(my)}
	inWorld := !g.panel.Contains(pos.X, pos.Y) &&
		pos.X >= 0 && pos.X <= g.cfg.WorldWidth && pos.Y >= 0 && pos.Y <= g.cfg.WorldHeight

	if inWorld && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.send(simulation.SpawnCommand(simulation.Steerable, pos, randomHeading(g.cfg.MaxSpeed)))
	}
	if inWorld && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
		g.send(simulation.SpawnCommand(simulation.Inert, pos, randomHeading(g.cfg.PredatorMaxSpeed)))
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyP):
		g.send(simulation.AssignRoutesCommand())
	case inpututil.IsKeyJustPressed(ebiten.KeyB):
		g.send(simulation.BoundaryModeCommand(""))
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.togglePause()
	case inpututil.IsKeyJustPressed(ebiten.KeyO):
		g.widgetShowBuffers.Toggle()
	}
}

// randomHeading returns a velocity of length speed in a random direction.
func randomHeading(speed float64) geometry.Vector2D {
	return geometry.NewVectorPolar(speed, rand.Float64()*2*math.Pi)
}

func (g *Game) Draw(screen *ebiten.Image) {
	start := time.Now()
	defer func() {
		g.drawAvg = g.drawAvg*0.95 + float64(time.Since(start).Microseconds())/1000.0*0.05
	}()

	screen.Fill(background)
	s := g.lastState

	drawWalls(screen, s, g.widgetShowBuffers.Value)
	if g.widgetShowGraph.Value {
		drawGraph(screen, s)
	}
	if s.HasAssembly {
		drawAssembly(screen, s.Assembly)
	}
	if g.widgetShowRoutes.Value {
		drawRoutes(screen, s)
	}
	for i := range s.Agents {
		drawBoid(screen, &s.Agents[i])
	}
	for i := range s.Predators {
		drawPredator(screen, &s.Predators[i])
	}

	g.panel.Draw(screen)
	drawStatsBar(screen, s.Stats)

	status := fmt.Sprintf("tick %d  mode %s", s.Tick, s.Mode)
	if s.Paused {
		status += "  PAUSED"
	}
	ebitenutil.DebugPrintAt(screen, status, int(g.cfg.WorldWidth/2-60), int(g.cfg.WorldHeight)-20)

	msg := fmt.Sprintf("FPS: %.2f\nTPS: %.2f\n\nUpdate: %.2fms\nDraw:   %.2fms\nTotal:  %.2fms",
		ebiten.ActualFPS(),
		ebiten.ActualTPS(),
		g.updateAvg,
		g.drawAvg,
		g.updateAvg+g.drawAvg)
	ebitenutil.DebugPrintAt(screen, msg, int(g.cfg.WorldWidth)-150, 60)
}

func (g *Game) Layout(w, h int) (int, int) { return int(g.cfg.WorldWidth), int(g.cfg.WorldHeight) }

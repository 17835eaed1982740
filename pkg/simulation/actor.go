package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/tochemey/goakt/v3/actor"
	"github.com/tochemey/goakt/v3/goaktpb"
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
)

// WorldActor owns the World. Every change to it, whether a viewer command or
// a tick, goes through the mailbox, so the world is only ever touched by one
// goroutine and never in the middle of a Step.
type WorldActor struct {
	world *World
	cfg   *Config
	// Communication with UI
	snapshotCh chan<- *Snapshot
	paused     bool

	// --- Benchmark Stats ---
	tickCount   int
	cmdCount    int
	lastLogTime time.Time
}

// NewWorldActor creates the world logic unit. cfg is copied; later changes
// arrive as configure commands.
func NewWorldActor(world *World, snapshotCh chan<- *Snapshot, cfg *Config) *WorldActor {
	c := *cfg
	if world.Graph == nil {
		world.Graph = navgraph.New()
	}
	return &WorldActor{
		world:       world,
		cfg:         &c,
		snapshotCh:  snapshotCh,
		lastLogTime: time.Now(),
	}
}

func (w *WorldActor) PreStart(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Info("World is loading the evacuation map...")
	return nil
}

func (w *WorldActor) Receive(ctx *actor.ReceiveContext) {
	switch msg := ctx.Message().(type) {

	case *goaktpb.PostStart:
		ctx.Logger().Infof("World started: %d agents, %d walls, %d graph nodes",
			len(w.world.Agents), len(w.world.Obstacles), w.world.Graph.Len())
		if ids := w.world.Graph.UnreachableExits(); len(ids) > 0 {
			ctx.Logger().Warnf("%d exit node(s) have no path to the assembly node: %v", len(ids), ids)
		}
		w.pushSnapshot()

	// The Main Simulation Step (Driven by Game Loop)
	case *durationpb.Duration:
		w.logBenchmarks(ctx)
		w.tick()
		w.pushSnapshot()

	case *structpb.Struct:
		w.cmdCount++
		if err := w.apply(msg); err != nil {
			ctx.Logger().Warnf("command rejected: %v", err)
			return
		}
		if commandKind(msg) == CommandAssignRoutes {
			s := w.world.Stats()
			ctx.Logger().Infof("Pathfinding enabled: %d/%d agents routed", s.Routed+s.Advancing, s.Agents)
		}

	default:
		ctx.Unhandled()
	}
}

func (w *WorldActor) tick() {
	if w.paused {
		return
	}
	w.world.Step(w.cfg)
	w.tickCount++
}

// apply executes one command against the world.
func (w *WorldActor) apply(cmd *structpb.Struct) error {
	switch kind := commandKind(cmd); kind {
	case CommandConfigure:
		values := make(map[string]float64, len(cmd.GetFields()))
		for name, v := range cmd.GetFields() {
			if name == "kind" {
				continue
			}
			if _, ok := v.GetKind().(*structpb.Value_NumberValue); !ok {
				return fmt.Errorf("%w: configure: %q is not a number", errMalformedCommand, name)
			}
			values[name] = v.GetNumberValue()
		}
		next, err := w.cfg.WithTunables(values)
		if err != nil {
			return err
		}
		w.cfg = next

	case CommandSpawn:
		var p [4]float64
		for i, name := range []string{"x", "y", "vx", "vy"} {
			v, err := numberField(cmd, name)
			if err != nil {
				return err
			}
			p[i] = v
		}
		pos, vel := geometry.Vector2D{X: p[0], Y: p[1]}, geometry.Vector2D{X: p[2], Y: p[3]}
		switch agent := cmd.GetFields()["agent"].GetStringValue(); agent {
		case Steerable.String():
			w.world.AddBoid(pos, vel, w.cfg)
		case Inert.String():
			w.world.AddPredator(pos, vel, w.cfg)
		default:
			return fmt.Errorf("%w: spawn: unknown agent %q", errMalformedCommand, agent)
		}

	case CommandAssignRoutes:
		w.world.AssignRoutes()

	case CommandBoundaryMode:
		mode := cmd.GetFields()["mode"].GetStringValue()
		if strings.TrimSpace(mode) == "" {
			w.cfg.BoundaryMode = w.cfg.BoundaryMode.Toggle()
			return nil
		}
		m, err := ParseBoundaryMode(mode)
		if err != nil {
			return err
		}
		w.cfg.BoundaryMode = m

	case CommandPause:
		w.paused = cmd.GetFields()["paused"].GetBoolValue()

	case CommandBufferRadius:
		r, err := numberField(cmd, "radius")
		if err != nil {
			return err
		}
		if r < 0 {
			return fmt.Errorf("%w: buffer-radius: negative radius %g", errMalformedCommand, r)
		}
		w.cfg.BufferRadius = r
		w.world.RebuildBuffers(r)

	default:
		return fmt.Errorf("%w: unknown kind %q", errMalformedCommand, kind)
	}
	return nil
}

func (w *WorldActor) logBenchmarks(ctx *actor.ReceiveContext) {
	if time.Since(w.lastLogTime) >= time.Second {
		s := w.world.Stats()
		ctx.Logger().Infof("📊 TICK RATE: %d/sec (Commands: %d) | Agents: %d (routed %d, advancing %d, completed %d) | Predators: %d",
			w.tickCount, w.cmdCount, s.Agents, s.Routed, s.Advancing, s.Completed, s.Predators)
		w.tickCount = 0
		w.cmdCount = 0
		w.lastLogTime = time.Now()
	}
}

func (w *WorldActor) pushSnapshot() {
	if w.snapshotCh == nil {
		return
	}
	snap := w.world.Snapshot(w.cfg)
	snap.Paused = w.paused
	select {
	case w.snapshotCh <- snap:
	default:
		// UI busy, skip frame
	}
}

func (w *WorldActor) PostStop(ctx *actor.Context) error {
	ctx.ActorSystem().Logger().Infof("World is shutdown after %d ticks", w.world.Ticks)
	return nil
}

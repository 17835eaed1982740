package simulation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tochemey/goakt/v3/actor"
	golog "github.com/tochemey/goakt/v3/log"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
)

func newTestActor(t *testing.T) *WorldActor {
	t.Helper()
	g, _, _ := evacuationGraph()
	w := NewWorld()
	w.Graph = g
	_, err := w.AddWall(vec(200, 0), vec(200, 100), DefaultConfig())
	require.NoError(t, err)
	return NewWorldActor(w, nil, DefaultConfig())
}

func TestWorldActor_ApplyConfigure(t *testing.T) {
	w := newTestActor(t)

	require.NoError(t, w.apply(ConfigureCommand(map[string]float64{TunableCohesion: 3})))
	assert.Equal(t, 3.0, w.cfg.CohesionFactor)

	err := w.apply(ConfigureCommand(map[string]float64{"gravity": 1}))
	assert.ErrorIs(t, err, ErrUnknownTunable)
	assert.Equal(t, 3.0, w.cfg.CohesionFactor, "a rejected command must leave the config alone")

	bad := ConfigureCommand(nil)
	bad.Fields[TunableCohesion] = structpb.NewStringValue("lots")
	assert.ErrorIs(t, w.apply(bad), errMalformedCommand)
}

func TestWorldActor_ApplySpawn(t *testing.T) {
	w := newTestActor(t)

	require.NoError(t, w.apply(SpawnCommand(Steerable, vec(10, 20), vec(0.1, 0))))
	require.NoError(t, w.apply(SpawnCommand(Inert, vec(30, 40), vec(5, 0))))

	require.Len(t, w.world.Agents, 1)
	require.Len(t, w.world.Predators, 1)
	assert.Equal(t, vec(10, 20), w.world.Agents[0].Pos)
	assert.InDelta(t, w.cfg.PredatorMaxSpeed, w.world.Predators[0].Vel.Len(), 1e-9)

	missing := SpawnCommand(Steerable, vec(0, 0), vec(0, 0))
	delete(missing.Fields, "vy")
	assert.ErrorIs(t, w.apply(missing), errMalformedCommand)

	unknown := SpawnCommand(Steerable, vec(0, 0), vec(0, 0))
	unknown.Fields["agent"] = structpb.NewStringValue("dragon")
	assert.ErrorIs(t, w.apply(unknown), errMalformedCommand)
}

func TestWorldActor_ApplyRoutesModePause(t *testing.T) {
	w := newTestActor(t)
	require.NoError(t, w.apply(SpawnCommand(Steerable, vec(10, 10), vec(0, 0))))

	require.NoError(t, w.apply(AssignRoutesCommand()))
	assert.Equal(t, Routed, w.world.Agents[0].RouteState())

	require.NoError(t, w.apply(BoundaryModeCommand("")))
	assert.Equal(t, Wrap, w.cfg.BoundaryMode)
	require.NoError(t, w.apply(BoundaryModeCommand(Reflect)))
	assert.Equal(t, Reflect, w.cfg.BoundaryMode)
	assert.ErrorIs(t, w.apply(BoundaryModeCommand("bounce")), ErrInvalidBoundaryMode)

	require.NoError(t, w.apply(PauseCommand(true)))
	w.tick()
	assert.Zero(t, w.world.Ticks, "a paused world must not step")
	require.NoError(t, w.apply(PauseCommand(false)))
	w.tick()
	assert.Equal(t, uint64(1), w.world.Ticks)
}

func TestWorldActor_ApplyBufferRadius(t *testing.T) {
	w := newTestActor(t)

	require.NoError(t, w.apply(BufferRadiusCommand(25)))
	assert.Equal(t, 25.0, w.cfg.BufferRadius)
	assert.Equal(t, 25.0, w.world.Obstacles[0].Radius())

	assert.ErrorIs(t, w.apply(BufferRadiusCommand(-1)), errMalformedCommand)
	assert.ErrorIs(t, w.apply(envelope("teleport", nil)), errMalformedCommand)
}

func TestNewWorldActor_CopiesConfig(t *testing.T) {
	cfg := DefaultConfig()
	w := NewWorldActor(&World{}, nil, cfg)
	cfg.MaxSpeed = 99

	assert.NotEqual(t, 99.0, w.cfg.MaxSpeed)
	assert.NotNil(t, w.world.Graph)
}

func TestWorldActor_Mailbox(t *testing.T) {
	ctx := context.Background()
	system, err := actor.NewActorSystem("EvacuationTest", actor.WithLogger(golog.DiscardLogger))
	require.NoError(t, err)
	require.NoError(t, system.Start(ctx))
	t.Cleanup(func() { _ = system.Stop(ctx) })

	g, _, _ := evacuationGraph()
	world := NewWorld()
	world.Graph = g
	world.SetAssembly(g.NodesByCategory(navgraph.Assembly)[0].Pos)

	snapshots := make(chan *Snapshot, 64)
	pid, err := system.Spawn(ctx, "world", NewWorldActor(world, snapshots, DefaultConfig()))
	require.NoError(t, err)

	require.NoError(t, actor.Tell(ctx, pid, SpawnCommand(Steerable, vec(40, 40), vec(0, 0))))
	require.NoError(t, actor.Tell(ctx, pid, AssignRoutesCommand()))
	require.NoError(t, actor.Tell(ctx, pid, TickMessage(16*time.Millisecond)))

	var last *Snapshot
	require.Eventually(t, func() bool {
		for {
			select {
			case s := <-snapshots:
				last = s
				if s.Tick == 1 {
					return true
				}
			default:
				return false
			}
		}
	}, 5*time.Second, 10*time.Millisecond)

	require.Len(t, last.Agents, 1)
	assert.Equal(t, "Boid-000", last.Agents[0].ID)
	assert.NotEqual(t, Unrouted, last.Agents[0].State)
	assert.Len(t, last.Nodes, 2)
	assert.True(t, last.HasAssembly)
}

package simulation

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
)

// Commands sent to the WorldActor are structpb.Struct envelopes carrying a
// "kind" field; ticks are durationpb.Duration values holding the frame time.

const (
	CommandConfigure    = "configure"
	CommandSpawn        = "spawn"
	CommandAssignRoutes = "assign-routes"
	CommandBoundaryMode = "boundary-mode"
	CommandPause        = "pause"
	CommandBufferRadius = "buffer-radius"
)

var errMalformedCommand = errors.New("malformed command")

func envelope(kind string, fields map[string]*structpb.Value) *structpb.Struct {
	if fields == nil {
		fields = make(map[string]*structpb.Value, 1)
	}
	fields["kind"] = structpb.NewStringValue(kind)
	return &structpb.Struct{Fields: fields}
}

// ConfigureCommand carries tunable values to apply from the next tick on.
func ConfigureCommand(tunables map[string]float64) *structpb.Struct {
	fields := make(map[string]*structpb.Value, len(tunables)+1)
	for name, v := range tunables {
		fields[name] = structpb.NewNumberValue(v)
	}
	return envelope(CommandConfigure, fields)
}

// SpawnCommand adds a boid (Steerable) or a predator (Inert).
func SpawnCommand(kind Kind, pos, vel geometry.Vector2D) *structpb.Struct {
	return envelope(CommandSpawn, map[string]*structpb.Value{
		"agent": structpb.NewStringValue(kind.String()),
		"x":     structpb.NewNumberValue(pos.X),
		"y":     structpb.NewNumberValue(pos.Y),
		"vx":    structpb.NewNumberValue(vel.X),
		"vy":    structpb.NewNumberValue(vel.Y),
	})
}

// AssignRoutesCommand routes every boid to the assembly node.
func AssignRoutesCommand() *structpb.Struct {
	return envelope(CommandAssignRoutes, nil)
}

// BoundaryModeCommand switches to mode. An empty mode toggles.
func BoundaryModeCommand(mode BoundaryMode) *structpb.Struct {
	return envelope(CommandBoundaryMode, map[string]*structpb.Value{
		"mode": structpb.NewStringValue(string(mode)),
	})
}

// PauseCommand stops or resumes ticking. Snapshots keep flowing while paused.
func PauseCommand(paused bool) *structpb.Struct {
	return envelope(CommandPause, map[string]*structpb.Value{
		"paused": structpb.NewBoolValue(paused),
	})
}

// BufferRadiusCommand rebuilds every buffer zone with radius.
func BufferRadiusCommand(radius float64) *structpb.Struct {
	return envelope(CommandBufferRadius, map[string]*structpb.Value{
		"radius": structpb.NewNumberValue(radius),
	})
}

// TickMessage asks the world for one step.
func TickMessage(dt time.Duration) *durationpb.Duration {
	return durationpb.New(dt)
}

func commandKind(cmd *structpb.Struct) string {
	return cmd.GetFields()["kind"].GetStringValue()
}

func numberField(cmd *structpb.Struct, name string) (float64, error) {
	v, ok := cmd.GetFields()[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s: missing %q", errMalformedCommand, commandKind(cmd), name)
	}
	if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
		return 0, fmt.Errorf("%w: %s: %q is not a number", errMalformedCommand, commandKind(cmd), name)
	}
	return v.GetNumberValue(), nil
}

// Package layout reads and writes evacuation map files and turns them into
// a simulation.World.
//
// A map file is a JSON document holding the walls, the assembly point, the
// initial boid positions and the navigation graph:
//
//	{
//	  "map_name": "office", "created": "2026-01-02T10:00:00Z", "map_image": null,
//	  "assembly_point": {"x": 900, "y": 400},
//	  "boundaries": [{"start": {"x": 100, "y": 100}, "end": {"x": 600, "y": 100}}],
//	  "boids": [{"x": 200, "y": 300}],
//	  "graph": {"nodes": [{"id": 0, "pos": [900, 400], "type": "assembly"}], "edges": []}
//	}
package layout

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/geometry"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/navgraph"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/obstacle"
	"github.com/lao-tseu-is-alive/go-evacuation-swarm/pkg/simulation"
)

//go:embed map.schema.json
var mapSchema string

// ErrNoAssemblyPoint is returned when saving a world that has no assembly point.
var ErrNoAssemblyPoint = errors.New("map has no assembly point")

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func pointOf(v geometry.Vector2D) Point { return Point{X: v.X, Y: v.Y} }

func (p Point) Vector() geometry.Vector2D { return geometry.Vector2D{X: p.X, Y: p.Y} }

type Boundary struct {
	Start Point `json:"start"`
	End   Point `json:"end"`
}

// Map is the on-disk form of an evacuation scenario.
type Map struct {
	Name          string           `json:"map_name,omitempty"`
	Created       string           `json:"created,omitempty"`
	Image         *string          `json:"map_image"`
	AssemblyPoint Point            `json:"assembly_point"`
	Boundaries    []Boundary       `json:"boundaries"`
	Boids         []Point          `json:"boids"`
	Graph         *navgraph.Layout `json:"graph"`
}

// Load reads a map file and validates it against the embedded map schema.
func Load(path string) (*Map, error) {
	sch, err := jsonschema.CompileString("map.schema.json", mapSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile map schema: %w", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode map %s: %w", path, err)
	}
	if err := sch.Validate(doc); err != nil {
		return nil, fmt.Errorf("map validation failed: %w", err)
	}

	m := &Map{}
	if err := json.Unmarshal(b, m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal map: %w", err)
	}
	return m, nil
}

// Save writes m as indented JSON. A missing .json extension is added and the
// path actually written is returned.
func Save(path string, m *Map) (string, error) {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		path += ".json"
	}
	if m.Name == "" {
		m.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode map: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to write map %s: %w", path, err)
	}
	return path, nil
}

// Build creates the world described by m. Walls shorter than
// cfg.MinWallLength are skipped with a warning. When the saved graph has no
// assembly node, one is added at the assembly point. Boids start with
// velocity (1,1) clamped to the max speed; cfg.NumPredatorsAtStart predators
// are spread along the top edge of the arena.
func Build(m *Map, cfg *simulation.Config, log *zap.Logger) (*simulation.World, error) {
	w := simulation.NewWorld()
	w.SetAssembly(m.AssemblyPoint.Vector())

	for i, b := range m.Boundaries {
		_, err := w.AddWall(b.Start.Vector(), b.End.Vector(), cfg)
		if errors.Is(err, obstacle.ErrWallTooShort) {
			log.Warn("skipping wall", zap.Int("index", i), zap.Error(err))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("boundary %d: %w", i, err)
		}
	}

	if m.Graph != nil {
		if _, err := w.Graph.Import(*m.Graph); err != nil {
			return nil, fmt.Errorf("failed to import graph: %w", err)
		}
	}
	if len(w.Graph.NodesByCategory(navgraph.Assembly)) == 0 {
		w.Graph.AddNode(w.Assembly, navgraph.Assembly)
	}

	vel := geometry.Vector2D{X: 1, Y: 1}.Limit(cfg.MaxSpeed)
	for _, p := range m.Boids {
		w.AddBoid(p.Vector(), vel, cfg)
	}
	for i := range cfg.NumPredatorsAtStart {
		x := cfg.WorldWidth * float64(i+1) / float64(cfg.NumPredatorsAtStart+1)
		w.AddPredator(geometry.Vector2D{X: x, Y: 10}, geometry.Vector2D{X: 0.6, Y: 0.8}, cfg)
	}

	log.Info("map built",
		zap.String("map", m.Name),
		zap.Int("walls", len(w.Obstacles)),
		zap.Int("boids", len(w.Agents)),
		zap.Int("predators", len(w.Predators)),
		zap.Int("graph_nodes", w.Graph.Len()))
	if ids := w.Graph.UnreachableExits(); len(ids) > 0 {
		log.Warn("exit nodes cannot reach the assembly node", zap.Any("exits", ids))
	}
	return w, nil
}

// FromWorld captures the savable part of w: walls, assembly point, boid
// positions and graph. Predators are not part of the map format.
func FromWorld(w *simulation.World, name string) (*Map, error) {
	if !w.HasAssembly {
		return nil, ErrNoAssemblyPoint
	}
	m := &Map{
		Name:          name,
		Created:       time.Now().Format(time.RFC3339),
		AssemblyPoint: pointOf(w.Assembly),
		Boundaries:    make([]Boundary, 0, len(w.Obstacles)),
		Boids:         make([]Point, 0, len(w.Agents)),
	}
	for _, o := range w.Obstacles {
		wall := o.Wall()
		m.Boundaries = append(m.Boundaries, Boundary{Start: pointOf(wall.A), End: pointOf(wall.B)})
	}
	for _, a := range w.Agents {
		m.Boids = append(m.Boids, pointOf(a.Pos))
	}
	if w.Graph != nil && w.Graph.Len() > 0 {
		g := w.Graph.Export()
		m.Graph = &g
	}
	return m, nil
}

package simulation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed config.schema.json
var embeddedSchema string

var (
	ErrUnknownTunable      = errors.New("unknown tunable")
	ErrInvalidBoundaryMode = errors.New("invalid boundary mode")
)

// BoundaryMode decides what happens to an agent leaving the arena.
type BoundaryMode string

const (
	// Wrap re-enters the agent at the opposite edge.
	Wrap BoundaryMode = "wrap"
	// Reflect keeps the agent on the edge and inverts the offending velocity component.
	Reflect BoundaryMode = "reflect"
)

// ParseBoundaryMode accepts "wrap" or "reflect", in any case.
func ParseBoundaryMode(s string) (BoundaryMode, error) {
	switch m := BoundaryMode(strings.ToLower(strings.TrimSpace(s))); m {
	case Wrap, Reflect:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidBoundaryMode, s)
}

// Toggle returns the other mode.
func (m BoundaryMode) Toggle() BoundaryMode {
	if m == Wrap {
		return Reflect
	}
	return Wrap
}

type Config struct {
	// World Dimensions
	WorldWidth  float64 `json:"worldWidth" yaml:"worldWidth" toml:"worldWidth"`
	WorldHeight float64 `json:"worldHeight" yaml:"worldHeight" toml:"worldHeight"`

	// Population spawned by the demo layout
	NumBoidsAtStart     int `json:"numBoidsAtStart" yaml:"numBoidsAtStart" toml:"numBoidsAtStart"`
	NumPredatorsAtStart int `json:"numPredatorsAtStart" yaml:"numPredatorsAtStart" toml:"numPredatorsAtStart"`

	// Kinematic limits
	MaxSpeed         float64 `json:"maxSpeed" yaml:"maxSpeed" toml:"maxSpeed"`
	MaxForce         float64 `json:"maxForce" yaml:"maxForce" toml:"maxForce"`
	PredatorMaxSpeed float64 `json:"predatorMaxSpeed" yaml:"predatorMaxSpeed" toml:"predatorMaxSpeed"`

	// Interaction Radii
	VisualRange    float64 `json:"visualRange" yaml:"visualRange" toml:"visualRange"`
	ProtectedRange float64 `json:"protectedRange" yaml:"protectedRange" toml:"protectedRange"`
	BoundaryRange  float64 `json:"boundaryRange" yaml:"boundaryRange" toml:"boundaryRange"`
	PredatorRange  float64 `json:"predatorRange" yaml:"predatorRange" toml:"predatorRange"`

	// Steering weights
	SeparationFactor      float64 `json:"separationFactor" yaml:"separationFactor" toml:"separationFactor"`
	AlignmentFactor       float64 `json:"alignmentFactor" yaml:"alignmentFactor" toml:"alignmentFactor"`
	CohesionFactor        float64 `json:"cohesionFactor" yaml:"cohesionFactor" toml:"cohesionFactor"`
	AvoidanceFactor       float64 `json:"avoidanceFactor" yaml:"avoidanceFactor" toml:"avoidanceFactor"`
	PredatorFactor        float64 `json:"predatorFactor" yaml:"predatorFactor" toml:"predatorFactor"`
	SeekingFactor         float64 `json:"seekingFactor" yaml:"seekingFactor" toml:"seekingFactor"`
	AssemblySeekingFactor float64 `json:"assemblySeekingFactor" yaml:"assemblySeekingFactor" toml:"assemblySeekingFactor"`

	// Arrival
	SlowingRadius float64 `json:"slowingRadius" yaml:"slowingRadius" toml:"slowingRadius"`
	ArrivedRadius float64 `json:"arrivedRadius" yaml:"arrivedRadius" toml:"arrivedRadius"`

	// Map building
	BufferRadius    float64 `json:"bufferRadius" yaml:"bufferRadius" toml:"bufferRadius"`
	GraphEdgeRadius float64 `json:"graphEdgeRadius" yaml:"graphEdgeRadius" toml:"graphEdgeRadius"`
	MinWallLength   float64 `json:"minWallLength" yaml:"minWallLength" toml:"minWallLength"`

	BoundaryMode BoundaryMode `json:"boundaryMode" yaml:"boundaryMode" toml:"boundaryMode"`

	// Viewer
	DisplayBuffers bool `json:"displayBuffers" yaml:"displayBuffers" toml:"displayBuffers"`
	DisplayGraph   bool `json:"displayGraph" yaml:"displayGraph" toml:"displayGraph"`
	DisplayRoutes  bool `json:"displayRoutes" yaml:"displayRoutes" toml:"displayRoutes"`
}

func DefaultConfig() *Config {
	return &Config{
		WorldWidth:            1000,
		WorldHeight:           800,
		NumBoidsAtStart:       150,
		NumPredatorsAtStart:   0,
		MaxSpeed:              0.7,
		MaxForce:              0.15,
		PredatorMaxSpeed:      1.0,
		VisualRange:           100,
		ProtectedRange:        10,
		BoundaryRange:         5,
		PredatorRange:         60,
		SeparationFactor:      2,
		AlignmentFactor:       1,
		CohesionFactor:        1,
		AvoidanceFactor:       10,
		PredatorFactor:        5,
		SeekingFactor:         1,
		AssemblySeekingFactor: 0.1,
		SlowingRadius:         100,
		ArrivedRadius:         5,
		BufferRadius:          5,
		GraphEdgeRadius:       150,
		MinWallLength:         10,
		BoundaryMode:          Reflect,
		DisplayGraph:          true,
	}
}

// LoadConfig reads a JSON, YAML or TOML file (chosen by extension), validates
// it against the schema and decodes it over DefaultConfig, so omitted keys keep
// their default value. An empty schemaFile selects the embedded schema.
func LoadConfig(configFile string, schemaFile string) (*Config, error) {
	// 1. Compile Schema
	var (
		sch *jsonschema.Schema
		err error
	)
	if schemaFile == "" {
		sch, err = jsonschema.CompileString("config.schema.json", embeddedSchema)
	} else {
		sch, err = jsonschema.Compile(schemaFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	// 2. Read Config File
	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	format := strings.ToLower(filepath.Ext(configFile))

	// 3. Validate
	v, err := decodeDocument(format, b)
	if err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", configFile, err)
	}
	if err := sch.Validate(v); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// 4. Unmarshal into Struct
	cfg := DefaultConfig()
	switch format {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, cfg)
	case ".toml":
		_, err = toml.Decode(string(b), cfg)
	default:
		err = json.Unmarshal(b, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.BoundaryMode, err = ParseBoundaryMode(string(cfg.BoundaryMode)); err != nil {
		return nil, err
	}
	return cfg, nil
}

// decodeDocument turns the raw file into the generic tree the validator walks.
func decodeDocument(format string, b []byte) (any, error) {
	var v any
	switch format {
	case ".yaml", ".yml":
		var m map[string]any
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		if m == nil {
			m = map[string]any{}
		}
		v = m
	case ".toml":
		m := map[string]any{}
		if _, err := toml.Decode(string(b), &m); err != nil {
			return nil, err
		}
		v = m
	case ".json", "":
		if err := json.Unmarshal(b, &v); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported config format %q", format)
	}
	return v, nil
}

// Tunable names, as pushed by the viewer panel each tick.
const (
	TunableVisualRange     = "visual_range"
	TunableProtectedRange  = "protected_range"
	TunableBoundaryRange   = "boundary_range"
	TunablePredatorRange   = "predator_range"
	TunableSeparation      = "separation"
	TunableAlignment       = "alignment"
	TunableCohesion        = "cohesion"
	TunableAvoidance       = "avoidance"
	TunablePredator        = "predator"
	TunableSeeking         = "seeking"
	TunableAssemblySeeking = "assembly_seeking"
)

func (c *Config) tunableFields() map[string]*float64 {
	return map[string]*float64{
		TunableVisualRange:     &c.VisualRange,
		TunableProtectedRange:  &c.ProtectedRange,
		TunableBoundaryRange:   &c.BoundaryRange,
		TunablePredatorRange:   &c.PredatorRange,
		TunableSeparation:      &c.SeparationFactor,
		TunableAlignment:       &c.AlignmentFactor,
		TunableCohesion:        &c.CohesionFactor,
		TunableAvoidance:       &c.AvoidanceFactor,
		TunablePredator:        &c.PredatorFactor,
		TunableSeeking:         &c.SeekingFactor,
		TunableAssemblySeeking: &c.AssemblySeekingFactor,
	}
}

// TunableNames lists every name Tunables and WithTunables understand, sorted.
func TunableNames() []string {
	return slices.Sorted(maps.Keys((&Config{}).tunableFields()))
}

// Tunables returns the named tunables of c.
func (c *Config) Tunables() map[string]float64 {
	out := make(map[string]float64)
	for name, p := range c.tunableFields() {
		out[name] = *p
	}
	return out
}

// WithTunables returns a copy of c with the given tunables overridden.
// c itself is never modified.
func (c *Config) WithTunables(values map[string]float64) (*Config, error) {
	next := *c
	fields := next.tunableFields()
	for name, v := range values {
		p, ok := fields[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTunable, name)
		}
		if v < 0 {
			return nil, fmt.Errorf("tunable %q must not be negative, got %g", name, v)
		}
		*p = v
	}
	return &next, nil
}

package simulation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestLoadConfig_Formats(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{
			name:    "json",
			file:    "config.json",
			content: `{"worldWidth": 1200, "numBoidsAtStart": 40, "separationFactor": 3.5, "boundaryMode": "wrap"}`,
		},
		{
			name: "yaml",
			file: "config.yaml",
			content: `worldWidth: 1200
numBoidsAtStart: 40
separationFactor: 3.5
boundaryMode: wrap
`,
		},
		{
			name: "toml",
			file: "config.toml",
			content: `worldWidth = 1200.0
numBoidsAtStart = 40
separationFactor = 3.5
boundaryMode = "wrap"
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := LoadConfig(writeConfig(t, tt.file, tt.content), "")
			require.NoError(t, err)

			assert.Equal(t, 1200.0, cfg.WorldWidth)
			assert.Equal(t, 40, cfg.NumBoidsAtStart)
			assert.Equal(t, 3.5, cfg.SeparationFactor)
			assert.Equal(t, Wrap, cfg.BoundaryMode)
			// omitted keys keep their defaults
			assert.Equal(t, DefaultConfig().WorldHeight, cfg.WorldHeight)
			assert.Equal(t, DefaultConfig().ArrivedRadius, cfg.ArrivedRadius)
		})
	}
}

func TestLoadConfig_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"negative range", "neg.json", `{"visualRange": -1}`},
		{"unknown key", "unknown.json", `{"gravity": 9.81}`},
		{"bad boundary mode", "mode.yaml", "boundaryMode: bounce\n"},
		{"fractional count", "count.json", `{"numBoidsAtStart": 1.5}`},
		{"zero width", "width.toml", "worldWidth = 0.0\n"},
		{"broken json", "broken.json", `{"worldWidth": `},
		{"unsupported format", "config.ini", "worldWidth=1000\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.file, tt.content), "")
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_MissingFiles(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"), "")
	assert.Error(t, err)

	good := writeConfig(t, "config.json", `{}`)
	_, err = LoadConfig(good, filepath.Join(t.TempDir(), "nope.schema.json"))
	assert.Error(t, err)
}

func TestLoadConfig_ExternalSchema(t *testing.T) {
	schema := writeConfig(t, "strict.schema.json", `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["worldWidth"]
}`)
	_, err := LoadConfig(writeConfig(t, "config.json", `{}`), schema)
	assert.Error(t, err)

	cfg, err := LoadConfig(writeConfig(t, "config.json", `{"worldWidth": 640}`), schema)
	require.NoError(t, err)
	assert.Equal(t, 640.0, cfg.WorldWidth)
}

func TestParseBoundaryMode(t *testing.T) {
	m, err := ParseBoundaryMode(" Reflect ")
	require.NoError(t, err)
	assert.Equal(t, Reflect, m)

	_, err = ParseBoundaryMode("bounce")
	assert.ErrorIs(t, err, ErrInvalidBoundaryMode)

	assert.Equal(t, Reflect, Wrap.Toggle())
	assert.Equal(t, Wrap, Reflect.Toggle())
}

func TestTunables(t *testing.T) {
	names := TunableNames()
	assert.Len(t, names, 11)
	assert.IsIncreasing(t, names)

	cfg := DefaultConfig()
	values := cfg.Tunables()
	assert.Len(t, values, len(names))
	assert.Equal(t, cfg.VisualRange, values[TunableVisualRange])
	assert.Equal(t, cfg.AssemblySeekingFactor, values[TunableAssemblySeeking])
}

func TestWithTunables(t *testing.T) {
	cfg := DefaultConfig()

	next, err := cfg.WithTunables(map[string]float64{TunableSeparation: 4, TunableVisualRange: 42})
	require.NoError(t, err)
	assert.Equal(t, 4.0, next.SeparationFactor)
	assert.Equal(t, 42.0, next.VisualRange)
	assert.Equal(t, DefaultConfig().SeparationFactor, cfg.SeparationFactor, "original must not change")

	_, err = cfg.WithTunables(map[string]float64{"gravity": 1})
	assert.ErrorIs(t, err, ErrUnknownTunable)

	_, err = cfg.WithTunables(map[string]float64{TunableCohesion: -1})
	assert.Error(t, err)
}

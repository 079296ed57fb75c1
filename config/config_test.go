package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ebiten-rally/physics"
)

func TestLoad_DefaultValues(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err, "a missing file falls back to defaults")

	def := physics.DefaultSettings()
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, def.Gravity, s.Physics.Gravity)
	assert.Equal(t, def.FixedTimeStep, s.Physics.FixedTimeStep)
	assert.Equal(t, def.MaxSubSteps, s.Physics.MaxSubSteps)
	assert.Equal(t, def.SolverIterations, s.Physics.SolverIterations)
	assert.Equal(t, def.DefaultMaterial, s.Physics.DefaultMaterial)
	assert.Equal(t, "Rally", s.Window.Title)
	assert.Equal(t, "rally", s.Spawn.Vehicle)
	assert.Equal(t, -20.0, s.Spawn.KillPlane)
	assert.Equal(t, "normal", s.Course.Size)
	assert.Equal(t, 12, s.Course.Points)
	assert.Equal(t, 10.0, s.Course.Width)
	assert.Equal(t, 3, s.Course.Laps)
	assert.Equal(t, ImpactSettings{MinSpeed: 3, DamagePerSpeed: 2}, s.Impact)
	assert.True(t, s.Audio.Enabled)
	assert.Equal(t, 44100, s.Audio.SampleRate)

	assert.Equal(t, s, Defaults())
}

func TestLoad_WithValidConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"physics": { "gravity": [0, -1.62, 0], "maxSubSteps": 5, "defaultMaterial": { "friction": 0.8 } },
		"window": { "width": 800, "height": 600 },
		"spawn": { "props": 3, "seed": 42 },
		"course": { "size": "large", "laps": 0 },
		"impact": { "damagePerSpeed": 5 },
		"audio": { "enabled": false }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	s, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", s.LogLevel)
	assert.Equal(t, mgl64.Vec3{0, -1.62, 0}, s.Physics.Gravity)
	assert.Equal(t, 5, s.Physics.MaxSubSteps)
	assert.Equal(t, 0.8, s.Physics.DefaultMaterial.Friction)
	assert.Equal(t, 1.0/60.0, s.Physics.FixedTimeStep, "unset keys keep defaults")
	assert.Equal(t, 3, s.Spawn.Props)
	assert.Equal(t, int64(42), s.Spawn.Seed)
	assert.Equal(t, "large", s.Course.Size)
	assert.Zero(t, s.Course.Laps)
	assert.Equal(t, 0.25, s.Course.Roughness)
	assert.Equal(t, 5.0, s.Impact.DamagePerSpeed)
	assert.Equal(t, 3.0, s.Impact.MinSpeed, "unset keys keep defaults")
	assert.False(t, s.Audio.Enabled)

	w, h := GetWindowSize(s)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)
}

func TestLoad_MalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"logLevel": `), 0644))

	_, err := Load(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestGetWindowSizeFallback(t *testing.T) {
	w, h := GetWindowSize(Settings{})
	assert.Equal(t, WindowWidth, w)
	assert.Equal(t, WindowHeight, h)
}

// Package config loads rally settings with viper
package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"ebiten-rally/physics"
)

// FileName is the config file looked up in the config directory
const FileName = "rally.cfg.json"

// WindowSettings controls the ebiten window
type WindowSettings struct {
	Title  string  `json:"title" mapstructure:"title"`
	Width  int     `json:"width" mapstructure:"width"`
	Height int     `json:"height" mapstructure:"height"`
	Zoom   float64 `json:"zoom" mapstructure:"zoom"`
}

// SpawnSettings controls what the demo scene contains
type SpawnSettings struct {
	Vehicle   string  `json:"vehicle" mapstructure:"vehicle"`     // Vehicle template for the player
	AICars    int     `json:"aiCars" mapstructure:"aiCars"`       // Waypoint-following opponents
	Props     int     `json:"props" mapstructure:"props"`         // Props scattered in the infield
	Seed      int64   `json:"seed" mapstructure:"seed"`           // Course and prop seed
	KillPlane float64 `json:"killPlane" mapstructure:"killPlane"` // Objects below this height fall out
	Templates string  `json:"templates" mapstructure:"templates"` // Extra template directory, optional
}

// CourseSettings controls the generated track
type CourseSettings struct {
	Size           string  `json:"size" mapstructure:"size"` // small, normal or large
	Points         int     `json:"points" mapstructure:"points"`
	Roughness      float64 `json:"roughness" mapstructure:"roughness"`
	Stretch        float64 `json:"stretch" mapstructure:"stretch"`
	Width          float64 `json:"width" mapstructure:"width"`
	BarrierSpacing float64 `json:"barrierSpacing" mapstructure:"barrierSpacing"` // 0 leaves the edges open
	Laps           int     `json:"laps" mapstructure:"laps"`                     // 0 races forever
}

// ImpactSettings controls collision damage
type ImpactSettings struct {
	MinSpeed       float64 `json:"minSpeed" mapstructure:"minSpeed"`             // Approach speed below this is harmless
	DamagePerSpeed float64 `json:"damagePerSpeed" mapstructure:"damagePerSpeed"` // Damage per m/s above MinSpeed
}

// AudioSettings controls the sound system
type AudioSettings struct {
	Enabled    bool    `json:"enabled" mapstructure:"enabled"`
	SampleRate int     `json:"sampleRate" mapstructure:"sampleRate"`
	Music      string  `json:"music" mapstructure:"music"` // Background track (.mp3 or .ogg), optional
	Volume     float64 `json:"volume" mapstructure:"volume"`
}

// Settings is the complete configuration
type Settings struct {
	LogLevel string           `json:"logLevel" mapstructure:"logLevel"`
	LogsDir  string           `json:"logsDir" mapstructure:"logsDir"` // Empty disables the log file
	Physics  physics.Settings `json:"physics" mapstructure:"physics"`
	Window   WindowSettings   `json:"window" mapstructure:"window"`
	Spawn    SpawnSettings    `json:"spawn" mapstructure:"spawn"`
	Course   CourseSettings   `json:"course" mapstructure:"course"`
	Impact   ImpactSettings   `json:"impact" mapstructure:"impact"`
	Audio    AudioSettings    `json:"audio" mapstructure:"audio"`
}

// setDefaults registers every default on v
func setDefaults(v *viper.Viper) {
	def := physics.DefaultSettings()

	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "")

	v.SetDefault("physics.gravity", []float64{def.Gravity.X(), def.Gravity.Y(), def.Gravity.Z()})
	v.SetDefault("physics.fixedTimeStep", def.FixedTimeStep)
	v.SetDefault("physics.maxSubSteps", def.MaxSubSteps)
	v.SetDefault("physics.solverIterations", def.SolverIterations)
	v.SetDefault("physics.baumgarte", def.Baumgarte)
	v.SetDefault("physics.slop", def.Slop)
	v.SetDefault("physics.defaultMaterial.friction", def.DefaultMaterial.Friction)
	v.SetDefault("physics.defaultMaterial.restitution", def.DefaultMaterial.Restitution)

	v.SetDefault("window.title", "Rally")
	v.SetDefault("window.width", WindowWidth)
	v.SetDefault("window.height", WindowHeight)
	v.SetDefault("window.zoom", PixelsPerMeter)

	v.SetDefault("spawn.vehicle", "rally")
	v.SetDefault("spawn.aiCars", 1)
	v.SetDefault("spawn.props", 12)
	v.SetDefault("spawn.seed", 1)
	v.SetDefault("spawn.killPlane", -20)
	v.SetDefault("spawn.templates", "")

	v.SetDefault("course.size", "normal")
	v.SetDefault("course.points", 12)
	v.SetDefault("course.roughness", 0.25)
	v.SetDefault("course.stretch", 1.5)
	v.SetDefault("course.width", 10.0)
	v.SetDefault("course.barrierSpacing", 8.0)
	v.SetDefault("course.laps", 3)

	v.SetDefault("impact.minSpeed", 3.0)
	v.SetDefault("impact.damagePerSpeed", 2.0)

	v.SetDefault("audio.enabled", true)
	v.SetDefault("audio.sampleRate", 44100)
	v.SetDefault("audio.music", "")
	v.SetDefault("audio.volume", 0.5)
}

// Load reads rally.cfg.json from configDir on top of the defaults.
// A missing file is not an error; a malformed one is.
func Load(configDir string) (Settings, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName(FileName)
	v.SetConfigType("json")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// Defaults returns the settings used when no config file exists
func Defaults() Settings {
	v := viper.New()
	setDefaults(v)
	s, _ := decode(v)
	return s
}

func decode(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("error decoding config: %w", err)
	}
	return s, nil
}

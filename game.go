package main

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"

	"ebiten-rally/components"
	"ebiten-rally/config"
	"ebiten-rally/data"
	"ebiten-rally/ecs"
	"ebiten-rally/generation"
	"ebiten-rally/host"
	"ebiten-rally/input"
	"ebiten-rally/physics"
	"ebiten-rally/render"
	"ebiten-rally/screens"
	"ebiten-rally/sound"
	"ebiten-rally/spawners"
	"ebiten-rally/systems"
	"ebiten-rally/view"
)

// spawnHeight lifts cars and props clear of the ground so they settle on the first steps
const spawnHeight = 0.75

// Game implements ebiten.Game interface.
type Game struct {
	settings        config.Settings
	log             zerolog.Logger
	templateManager *data.EntityTemplateManager
	messages        *systems.MessageLog
	audioSystem     *sound.AudioSystem // Nil when audio is disabled
	keyboard        *KeyboardPoller
	screenStack     *screens.ScreenStack
	race            *screens.RaceScreen
}

// NewGame creates a new game instance
func NewGame(settings config.Settings, log zerolog.Logger) (*Game, error) {
	// Initialize the entity template manager
	templateManager := data.NewEntityTemplateManager()
	if err := templateManager.LoadBuiltin(); err != nil {
		return nil, err
	}
	if dir := settings.Spawn.Templates; dir != "" {
		if err := templateManager.LoadTemplatesFromDirectory(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("Failed to load extra templates")
		}
	}

	game := &Game{
		settings:        settings,
		log:             log,
		templateManager: templateManager,
		messages:        systems.NewMessageLog(200),
		keyboard:        NewKeyboardPoller(input.DefaultBindings(), log),
		screenStack:     screens.NewScreenStack(),
	}
	if settings.Audio.Enabled {
		game.audioSystem = sound.NewAudioSystem(settings.Audio.SampleRate, log.With().Str("system", "audio").Logger())
		game.audioSystem.SetVolume(settings.Audio.Volume)
	}

	game.screenStack.Push(screens.NewStartScreen(settings.Window.Title, game.startMusic))
	return game, nil
}

// startMusic plays the configured background track, if any
func (g *Game) startMusic() {
	if g.audioSystem == nil || g.settings.Audio.Music == "" || g.audioSystem.IsBGMPlaying() {
		return
	}
	if err := g.audioSystem.PlayBGM(g.settings.Audio.Music); err != nil {
		g.log.Warn().Err(err).Msg("Background music unavailable")
	}
}

// newRace builds a fresh scene: ground, course, cars, props, camera and systems
func (g *Game) newRace() (*screens.RaceScreen, error) {
	world := physics.NewWorld(
		physics.WithSettings(g.settings.Physics),
		physics.WithLogger(g.log.With().Str("system", "physics").Logger()),
	)
	scene := ecs.NewScene("rally", ecs.WithPhysics(world), ecs.WithLogger(g.log.With().Str("scene", "rally").Logger()))
	sprites := view.NewRegistry()
	spawner := spawners.NewEntitySpawner(scene, g.templateManager, sprites, g.messages.Add)

	if _, err := spawner.CreateGround(); err != nil {
		return nil, err
	}

	course, err := g.newCourse()
	if err != nil {
		return nil, err
	}
	player, err := spawner.CreatePlayerCar(g.settings.Spawn.Vehicle, course.Grid(0, spawnHeight))
	if err != nil {
		return nil, err
	}
	ecs.AddComponent(player, components.NewLapTimer(g.settings.Course.Laps, course.Waypoints...))
	for i := 0; i < g.settings.Spawn.AICars; i++ {
		if _, err := spawner.CreateAICar(g.settings.Spawn.Vehicle, course.Grid(i+1, spawnHeight), course.Waypoints...); err != nil {
			g.log.Warn().Err(err).Msg("Failed to create AI car")
		}
	}

	populator := generation.NewCoursePopulator(spawner, g.templateManager, g.messages.Add)
	populator.SetSeed(g.settings.Spawn.Seed)
	options := generation.DefaultPopulationOptions()
	options.InfieldProps = g.settings.Spawn.Props
	options.BarrierSpacing = g.settings.Course.BarrierSpacing
	if options.BarrierSpacing <= 0 {
		options.BarrierTemplate = ""
	}
	populator.Populate(course, options)

	camera := spawner.CreateCamera(player)
	if cam, ok := ecs.GetComponent[*components.Camera](camera); ok && g.settings.Window.Zoom > 0 {
		cam.Zoom = g.settings.Window.Zoom
	}

	// Register systems; impacts first so damage is logged in the same frame
	scene.AddSystem(systems.NewImpactSystem(g.settings.Impact.MinSpeed, g.settings.Impact.DamagePerSpeed))
	scene.AddSystem(systems.NewKillPlaneSystem(g.settings.Spawn.KillPlane, course.Start(spawnHeight).Position))
	scene.AddSystem(systems.NewCameraSystem())
	scene.AddSystem(systems.NewEventLogSystem(g.messages))
	if g.audioSystem != nil {
		g.audioSystem.Listen(scene)
	}

	loop := host.NewLoop(scene, g.keyboard, host.WithLogger(g.log.With().Str("system", "host").Logger()))
	g.messages.AddColored("Race started. Arrows or WASD to drive, P to pause, F5/F9 to save and restore.", systems.MessageTypeSystem)
	renderer := render.NewRenderer(sprites, g.messages)
	renderer.SetTrack(course.Waypoints, course.Width)
	return screens.NewRaceScreen(loop, renderer, g.messages), nil
}

// newCourse lays out the track from the course settings
func (g *Game) newCourse() (*generation.Course, error) {
	gen := generation.NewCourseGenerator(g.messages.Add)
	gen.SetSeed(g.settings.Spawn.Seed)
	cfg := generation.DefaultCourseConfiguration()
	cfg.Size = generation.ParseCourseSize(g.settings.Course.Size)
	cfg.Points = g.settings.Course.Points
	cfg.Roughness = g.settings.Course.Roughness
	cfg.Stretch = g.settings.Course.Stretch
	cfg.Width = g.settings.Course.Width
	course, err := gen.Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating course: %w", err)
	}
	return course, nil
}

// startRace replaces every screen with a new race, tearing down the previous one
func (g *Game) startRace() error {
	if g.race != nil {
		g.race.Loop().Scene().Clear()
		g.race = nil
	}
	race, err := g.newRace()
	if err != nil {
		return err
	}
	g.race = race
	g.screenStack.Replace(race)
	return nil
}

// Update updates the game state.
func (g *Game) Update() error {
	err := g.screenStack.Update()
	switch {
	case err == nil:
		return nil
	case errors.Is(err, screens.ErrStart), errors.Is(err, screens.ErrRestart):
		return g.startRace()
	case errors.Is(err, screens.ErrGameOver):
		g.screenStack.Push(screens.NewGameOverScreen("Game Over!", "Your car was wrecked"))
		return nil
	case errors.Is(err, screens.ErrFinished):
		g.screenStack.Push(screens.NewGameOverScreen("Finished!", g.race.Summary()))
		return nil
	case errors.Is(err, screens.ErrQuit):
		return ebiten.Termination
	case errors.Is(err, screens.ErrClose):
		g.screenStack.Pop()
		return nil
	}
	return err
}

// Draw draws the game screen.
func (g *Game) Draw(screen *ebiten.Image) {
	g.screenStack.Draw(screen)
}

// Layout implements ebiten.Game's Layout.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return config.GetScreenDimensions()
}

// Close releases audio resources
func (g *Game) Close() {
	if g.audioSystem != nil {
		g.audioSystem.Close()
	}
}

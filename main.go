package main

import (
	"errors"
	"flag"
	"io"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/pkg/profile"

	"ebiten-rally/config"
	"ebiten-rally/logging"
)

func main() {
	configDir := flag.String("config", ".", "directory containing "+config.FileName)
	profileMode := flag.String("profile", "", "write a cpu or mem profile to the working directory")
	logLevel := flag.String("log", "", "log level override (trace, debug, info, warn, error)")
	flag.Parse()

	switch *profileMode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	settings, err := config.Load(*configDir)
	bootLog := logging.New("info", os.Stderr, nil)
	if err != nil {
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}
	if *logLevel != "" {
		settings.LogLevel = *logLevel
	}

	// Optional log file
	var file io.Writer
	if settings.LogsDir != "" {
		if err := os.MkdirAll(settings.LogsDir, 0o755); err != nil {
			bootLog.Fatal().Err(err).Msg("Failed to create logs directory")
		}
		path := logging.LogFilePath(settings.LogsDir, "rally", time.Now())
		f, err := os.Create(path)
		if err != nil {
			bootLog.Fatal().Err(err).Str("path", path).Msg("Failed to create log file")
		}
		defer f.Close()
		file = f
	}
	log := logging.New(settings.LogLevel, os.Stderr, file)

	game, err := NewGame(settings, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create game")
	}
	defer game.Close()

	// Get window size from config
	windowWidth, windowHeight := config.GetWindowSize(settings)
	ebiten.SetWindowSize(windowWidth, windowHeight)
	ebiten.SetWindowTitle(settings.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Error().Err(err).Msg("Game stopped")
	}
}

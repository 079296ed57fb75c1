package screens

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"ebiten-rally/components"
	"ebiten-rally/ecs"
	"ebiten-rally/host"
	"ebiten-rally/netcodec"
	"ebiten-rally/render"
	"ebiten-rally/systems"
)

// RaceScreen runs the simulation and draws it
type RaceScreen struct {
	loop     *host.Loop
	renderer *render.Renderer
	log      *systems.MessageLog
	modals   *ScreenStack
	pause    panel
	// hadPlayer is set once a player car has been seen, so its loss ends the race
	hadPlayer bool
	finished  bool
	best      float64
	// saved is the last F5 snapshot, restored with F9
	saved []byte
}

// NewRaceScreen creates the gameplay screen
func NewRaceScreen(loop *host.Loop, renderer *render.Renderer, log *systems.MessageLog) *RaceScreen {
	return &RaceScreen{
		loop:     loop,
		renderer: renderer,
		log:      log,
		modals:   NewScreenStack(),
		pause:    newPanel(200, 48),
	}
}

// Loop returns the tick loop driving the race
func (s *RaceScreen) Loop() *host.Loop { return s.loop }

// Update ticks the simulation unless a modal window is open
func (s *RaceScreen) Update() error {
	if s.modals.Peek() == nil && inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		s.modals.Push(NewLogScreen(s.log))
		return nil
	}
	if s.modals.Peek() != nil {
		if err := s.modals.Update(); err == ErrClose {
			s.modals.Pop()
		}
		return nil
	}

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyF5):
		s.save()
	case inpututil.IsKeyJustPressed(ebiten.KeyF9):
		s.restore()
	}

	s.loop.Tick(1 / float64(ebiten.TPS()))

	player := s.loop.Scene().FindWithTag("player")
	if player == nil {
		if s.hadPlayer {
			return ErrGameOver
		}
		return nil
	}
	s.hadPlayer = true
	if lap, ok := ecs.GetComponent[*components.LapTimer](player); ok && lap.Finished() && !s.finished {
		s.finished = true
		s.best = lap.Best
		return ErrFinished
	}
	return nil
}

// save snapshots every object's transform and flags
func (s *RaceScreen) save() {
	data, err := netcodec.Snapshot(s.loop.Scene())
	if err != nil {
		s.log.AddAlert(fmt.Sprintf("Snapshot failed: %v", err))
		return
	}
	s.saved = data
	s.log.AddColored(fmt.Sprintf("Snapshot saved (%d bytes)", len(data)), systems.MessageTypeSystem)
}

// restore puts objects back where the last snapshot left them; objects spawned since are untouched
func (s *RaceScreen) restore() {
	if s.saved == nil {
		s.log.Add("No snapshot to restore")
		return
	}
	applied, skipped, err := netcodec.Apply(s.loop.Scene(), s.saved)
	if err != nil {
		s.log.AddAlert(fmt.Sprintf("Restore failed: %v", err))
		return
	}
	s.log.AddColored(fmt.Sprintf("Snapshot restored: %d objects, %d gone", applied, skipped), systems.MessageTypeSystem)
}

// Summary describes the finished race
func (s *RaceScreen) Summary() string {
	if !s.finished {
		return "Race in progress"
	}
	return fmt.Sprintf("Best lap %.2fs", s.best)
}

// Draw draws the scene, the pause banner and any modal window
func (s *RaceScreen) Draw(screen *ebiten.Image) {
	s.renderer.Draw(s.loop.Scene(), screen)
	if s.loop.Paused() {
		x, y := s.pause.draw(screen)
		centered(screen, "PAUSED", x, s.pause.width, y+8)
		centered(screen, "P to resume", x, s.pause.width, y+8+lineHeight)
	}
	s.modals.Draw(screen)
}

// Overlay implements Screen
func (s *RaceScreen) Overlay() bool { return false }

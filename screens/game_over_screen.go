package screens

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// GameOverScreen is shown over the race once the player's car is wrecked or the race is won
type GameOverScreen struct {
	panel  panel
	title  string
	reason string
}

// NewGameOverScreen creates a new game over screen
func NewGameOverScreen(title, reason string) *GameOverScreen {
	return &GameOverScreen{panel: newPanel(320, 96), title: title, reason: reason}
}

// Update handles input for the game over screen
func (s *GameOverScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyR) {
		return ErrRestart
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	return nil
}

// Draw draws the game over panel
func (s *GameOverScreen) Draw(screen *ebiten.Image) {
	x, y := s.panel.draw(screen)
	centered(screen, s.title, x, s.panel.width, y+12)
	centered(screen, s.reason, x, s.panel.width, y+12+lineHeight)
	centered(screen, "Enter: race again  Esc: quit", x, s.panel.width, y+s.panel.height-2*lineHeight)
}

// Overlay implements Screen
func (s *GameOverScreen) Overlay() bool { return true }

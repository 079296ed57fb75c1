package screens

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// StartScreen handles the game's start menu
type StartScreen struct {
	selectedOption int
	options        []string
	title          string
	optionColor    color.Color
	selectedColor  color.Color
	// onShow runs on the first Update, for example to start music
	onShow func()
	shown  bool
}

// NewStartScreen creates a new start screen
func NewStartScreen(title string, onShow func()) *StartScreen {
	return &StartScreen{
		options: []string{
			"Start Race",
			"Quit",
		},
		title:         title,
		optionColor:   color.RGBA{160, 160, 160, 255}, // Gray
		selectedColor: color.RGBA{255, 230, 150, 255}, // Gold
		onShow:        onShow,
	}
}

// Update handles input for the start screen
func (s *StartScreen) Update() error {
	if !s.shown {
		s.shown = true
		if s.onShow != nil {
			s.onShow()
		}
	}

	// Handle arrow key navigation
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) {
		s.selectedOption = (s.selectedOption - 1 + len(s.options)) % len(s.options)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) {
		s.selectedOption = (s.selectedOption + 1) % len(s.options)
	}

	// Handle selection
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		switch s.selectedOption {
		case 0:
			return ErrStart
		case 1:
			return ErrQuit
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ErrQuit
	}
	return nil
}

// Draw renders the start screen
func (s *StartScreen) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{20, 24, 28, 255})
	w, h := screen.Bounds().Dx(), screen.Bounds().Dy()

	centered(screen, s.title, 0, w, h/3)

	startY := h/2 - len(s.options)*lineHeight
	for i, option := range s.options {
		clr := s.optionColor
		label := "  " + option + "  "
		if i == s.selectedOption {
			clr = s.selectedColor
			label = "> " + option + " <"
		}
		printColored(screen, label, (w-len(label)*charWidth)/2, startY+i*2*lineHeight, clr)
	}
	centered(screen, "Arrows/WASD drive  Space brake  R reset  P pause  F1 log", 0, w, h-3*lineHeight)
}

// Overlay implements Screen
func (s *StartScreen) Overlay() bool { return false }

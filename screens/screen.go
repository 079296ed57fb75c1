package screens

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screen transitions, returned from Update and handled by the game
var (
	ErrStart    = errors.New("start race")
	ErrRestart  = errors.New("restart race")
	ErrGameOver = errors.New("game over")
	ErrFinished = errors.New("race finished")
	ErrQuit     = errors.New("quit")
	// ErrClose asks the owner to pop the screen
	ErrClose = errors.New("close screen")
)

// Screen represents a game screen that can be pushed onto the screen stack
type Screen interface {
	// Update updates the screen state
	Update() error
	// Draw draws the screen
	Draw(screen *ebiten.Image)
	// Overlay reports whether screens below stay visible
	Overlay() bool
}

// ScreenStack manages a stack of screens
type ScreenStack struct {
	screens []Screen
}

// NewScreenStack creates a new screen stack
func NewScreenStack() *ScreenStack {
	return &ScreenStack{}
}

// Push adds a new screen to the top of the stack
func (s *ScreenStack) Push(screen Screen) {
	s.screens = append(s.screens, screen)
}

// Pop removes the top screen from the stack
func (s *ScreenStack) Pop() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	top := s.screens[len(s.screens)-1]
	s.screens[len(s.screens)-1] = nil
	s.screens = s.screens[:len(s.screens)-1]
	return top
}

// Replace swaps the whole stack for a single screen
func (s *ScreenStack) Replace(screen Screen) {
	for len(s.screens) > 0 {
		s.Pop()
	}
	s.Push(screen)
}

// Peek returns the top screen without removing it
func (s *ScreenStack) Peek() Screen {
	if len(s.screens) == 0 {
		return nil
	}
	return s.screens[len(s.screens)-1]
}

// Len returns the number of stacked screens
func (s *ScreenStack) Len() int {
	return len(s.screens)
}

// Update updates the top screen only
func (s *ScreenStack) Update() error {
	if top := s.Peek(); top != nil {
		return top.Update()
	}
	return nil
}

// Draw draws from the topmost opaque screen upwards
func (s *ScreenStack) Draw(screen *ebiten.Image) {
	first := 0
	for i := len(s.screens) - 1; i >= 0; i-- {
		if !s.screens[i].Overlay() {
			first = i
			break
		}
	}
	for _, scr := range s.screens[first:] {
		scr.Draw(screen)
	}
}

package screens

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"ebiten-rally/systems"
)

// LogScreen shows the full message log in a scrollable modal window
type LogScreen struct {
	panel        panel
	log          *systems.MessageLog
	scrollOffset int
}

// NewLogScreen creates a new log screen
func NewLogScreen(log *systems.MessageLog) *LogScreen {
	return &LogScreen{panel: newPanel(600, 400), log: log}
}

func (s *LogScreen) visibleLines() int {
	return (s.panel.height - 30 - 2*lineHeight) / lineHeight
}

// Update handles scrolling; Esc or F1 closes the window
func (s *LogScreen) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && s.scrollOffset > 0 {
		s.scrollOffset--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && s.scrollOffset < len(s.log.Messages)-s.visibleLines() {
		s.scrollOffset++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		return ErrClose
	}
	return nil
}

// Draw renders the log window
func (s *LogScreen) Draw(screen *ebiten.Image) {
	x, y := s.panel.draw(screen)
	centered(screen, "MESSAGE LOG", x, s.panel.width, y+8)

	messages := s.log.Messages
	maxLines := s.visibleLines()
	startIdx := s.scrollOffset
	if startIdx > len(messages)-maxLines {
		startIdx = max(len(messages)-maxLines, 0)
	}
	startY := y + 30
	for i := 0; i < maxLines && startIdx+i < len(messages); i++ {
		msg := messages[startIdx+i]
		printColored(screen, msg.Text, x+10, startY+i*lineHeight, msg.Color())
	}

	// Draw scroll indicator if needed
	if len(messages) > maxLines {
		track := float32(maxLines * lineHeight)
		barHeight := float32(maxLines) / float32(len(messages)) * track
		barY := float32(startY) + float32(startIdx)/float32(len(messages))*track
		vector.DrawFilledRect(screen, float32(x+s.panel.width-10), barY, 5, barHeight, s.panel.frame, false)
	}

	printColored(screen, "Up/Down: Scroll  Esc: Close", x+10, y+s.panel.height-lineHeight-4, s.panel.frame)
}

// Overlay implements Screen
func (s *LogScreen) Overlay() bool { return true }

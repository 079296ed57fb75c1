package config

// Screen layout configuration
const (
	// Default zoom in pixels per world unit
	PixelsPerMeter = 16

	// Window dimensions in pixels
	WindowWidth  = 1024
	WindowHeight = 768

	// UI layout
	HUDHeight = 96 // Bottom strip reserved for the message log
)

// GetScreenDimensions returns the logical screen dimensions in pixels
func GetScreenDimensions() (width, height int) {
	return WindowWidth, WindowHeight
}

// GetWindowSize returns the window size from settings, falling back to the defaults
func GetWindowSize(s Settings) (width, height int) {
	width, height = s.Window.Width, s.Window.Height
	if width <= 0 || height <= 0 {
		return WindowWidth, WindowHeight
	}
	return width, height
}

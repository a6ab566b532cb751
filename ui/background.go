package ui

import rl "github.com/gen2brain/raylib-go/raylib"

// BackgroundRenderer paints a night sky gradient behind the snow.
type BackgroundRenderer struct {
	top, bottom rl.Color
}

// NewBackgroundRenderer creates a background with the given zenith and
// horizon colors.
func NewBackgroundRenderer(top, bottom rl.Color) *BackgroundRenderer {
	return &BackgroundRenderer{top: top, bottom: bottom}
}

// DefaultBackground returns a deep blue night sky.
func DefaultBackground() *BackgroundRenderer {
	return NewBackgroundRenderer(
		rl.Color{R: 4, G: 8, B: 22, A: 255},
		rl.Color{R: 28, G: 38, B: 64, A: 255},
	)
}

// Draw fills the screen.
func (b *BackgroundRenderer) Draw(screenW, screenH int32) {
	rl.ClearBackground(b.top)
	rl.DrawRectangleGradientV(0, 0, screenW, screenH, b.top, b.bottom)
}

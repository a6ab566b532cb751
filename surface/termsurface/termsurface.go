// Package termsurface renders snowfall into a terminal through tcell. The
// viewport is a grid of character cells, each covering CellWidth×CellHeight
// viewport units; drawing calls deposit light into the cell under the flake
// center and Present turns the accumulated light into glyphs.
package termsurface

import (
	"context"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/pthm-cable/snowfall/renderer"
	"github.com/pthm-cable/snowfall/surface"
)

// Cell geometry in viewport units.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

const (
	tickInterval = 16 * time.Millisecond // ~60 FPS
	minLevel     = 0.03                  // Cells dimmer than this stay blank
)

// Terminal is a tcell-backed canvas and host.
type Terminal struct {
	surface.Scheduler

	ReducedMotion bool

	// OnKey, if set, receives printable keys other than the quit keys.
	OnKey func(r rune)

	screen     tcell.Screen
	start      time.Time
	cols, rows int

	backingW, backingH int

	ctx canvasContext
}

// New wraps an initialized screen.
func New(screen tcell.Screen, reducedMotion bool) *Terminal {
	t := &Terminal{
		ReducedMotion: reducedMotion,
		screen:        screen,
		start:         time.Now(),
	}
	t.ctx.scale = 1
	t.ctx.alpha = 1
	t.cols, t.rows = screen.Size()
	t.ctx.resize(t.cols, t.rows)
	return t
}

// Open creates and initializes the default terminal screen.
func Open(reducedMotion bool) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()
	screen.Clear()
	return New(screen, reducedMotion), nil
}

// Close restores the terminal.
func (t *Terminal) Close() {
	t.screen.Fini()
}

// Context2D returns the cell-depositing context.
func (t *Terminal) Context2D() surface.Context {
	return &t.ctx
}

// ClientSize returns the terminal size in viewport units.
func (t *Terminal) ClientSize() (float64, float64) {
	return float64(t.cols) * CellWidth, float64(t.rows) * CellHeight
}

// SetBackingSize records the backing size. The cell grid always follows the
// terminal size.
func (t *Terminal) SetBackingSize(w, h int) {
	t.backingW, t.backingH = w, h
}

// BackingSize returns the last recorded backing size.
func (t *Terminal) BackingSize() (int, int) {
	return t.backingW, t.backingH
}

// PixelRatio is always 1 for character cells.
func (t *Terminal) PixelRatio() float64 { return 1 }

// PrefersReducedMotion returns the configured preference.
func (t *Terminal) PrefersReducedMotion() bool { return t.ReducedMotion }

// Now returns the time elapsed since the terminal was opened.
func (t *Terminal) Now() time.Duration { return time.Since(t.start) }

// Frame runs pending frame callbacks and presents the result.
func (t *Terminal) Frame() {
	t.Pump(t.Now())
	t.Present()
}

// Present draws the accumulated light as glyphs.
func (t *Terminal) Present() {
	t.screen.Clear()
	for row := 0; row < t.ctx.rows; row++ {
		for col := 0; col < t.ctx.cols; col++ {
			i := row*t.ctx.cols + col
			level := t.ctx.level[i]
			if level < minLevel {
				continue
			}
			gray := int32(90 + 165*math.Min(1, level))
			style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(gray, gray, gray))
			t.screen.SetContent(col, row, Glyph(t.ctx.size[i]), nil, style)
		}
	}
	t.screen.Show()
}

// Run drives frames on a fixed ticker until ctx is done or a quit key
// (Escape, Ctrl-C, q) is pressed. Terminal events are read on a separate
// goroutine and handled on the calling one.
func (t *Terminal) Run(ctx context.Context) error {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)

	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev := <-events:
			if !t.handleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			t.Frame()
		}
	}
}

// handleEvent returns false when the loop should stop.
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() == tcell.KeyRune {
			if ev.Rune() == 'q' {
				return false
			}
			if t.OnKey != nil {
				t.OnKey(ev.Rune())
			}
		}

	case *tcell.EventResize:
		t.screen.Sync()
		t.handleResize()
	}
	return true
}

// handleResize rebuilds the cell grid and notifies listeners.
func (t *Terminal) handleResize() {
	cols, rows := t.screen.Size()
	if cols == t.cols && rows == t.rows {
		return
	}
	t.cols, t.rows = cols, rows
	t.ctx.resize(cols, rows)
	t.NotifyResize()
}

// Glyph picks a character for a flake of radius r.
func Glyph(r float64) rune {
	switch {
	case r < 1.6:
		return '.'
	case r < 3:
		return '+'
	default:
		return '*'
	}
}

// canvasContext accumulates light per cell.
type canvasContext struct {
	scale   float64
	alpha   float64
	lighter bool

	cols, rows int
	level      []float64
	size       []float64
}

func (c *canvasContext) resize(cols, rows int) {
	c.cols, c.rows = cols, rows
	n := cols * rows
	if n < 0 {
		n = 0
	}
	c.level = make([]float64, n)
	c.size = make([]float64, n)
}

func (c *canvasContext) SetTransform(scale float64) { c.scale = scale }

func (c *canvasContext) Clear(w, h float64) {
	clear(c.level)
	clear(c.size)
}

func (c *canvasContext) SetAlpha(alpha float64) { c.alpha = alpha }

func (c *canvasContext) SetComposite(op surface.Composite) {
	c.lighter = op == surface.CompositeLighter
}

func (c *canvasContext) FillCircle(x, y, r float64) {
	c.deposit(x, y, r, c.alpha)
}

// FillRadialGradient deposits the gradient's center intensity. Glow radii
// are wider than the flake so the glyph is picked from the undilated size.
func (c *canvasContext) FillRadialGradient(x, y, r float64, stops []surface.GradientStop) {
	c.deposit(x, y, r/renderer.GlowSpread, c.alpha*surface.GradientAlpha(stops, 0))
}

func (c *canvasContext) deposit(x, y, r, a float64) {
	col := int(math.Floor(x / CellWidth))
	row := int(math.Floor(y / CellHeight))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	i := row*c.cols + col
	if c.lighter {
		c.level[i] += a
	} else {
		c.level[i] = a + c.level[i]*(1-a)
	}
	if r > c.size[i] {
		c.size[i] = r
	}
}

package ebitenwin

import (
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2"

	driver "github.com/zelixir/scenic-driver-gg"
)

// Window controls the ebiten desktop window on the driver's behalf.
//
// Ebiten cannot hide a window or request focus. Hide minimises the window
// and Show restores it; visibility is tracked here so stats report what the
// caller asked for. Focus is a no-op.
type Window struct {
	hidden atomic.Bool
}

var _ driver.Window = (*Window)(nil)

// NewWindow applies the initial title, size and resizability.
func NewWindow(title string, width, height int, resizable bool) *Window {
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowSize(width, height)
	if resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	} else {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeDisabled)
	}
	// Close requests are forwarded to the caller, which decides to quit.
	ebiten.SetWindowClosingHandled(true)
	return &Window{}
}

func (w *Window) Position() (int, int)      { return ebiten.WindowPosition() }
func (w *Window) SetPosition(x, y int)      { ebiten.SetWindowPosition(x, y) }
func (w *Window) Size() (int, int)          { return ebiten.WindowSize() }
func (w *Window) SetSize(width, height int) { ebiten.SetWindowSize(width, height) }
func (w *Window) Focus()                    {}
func (w *Window) Iconify()                  { ebiten.MinimizeWindow() }
func (w *Window) Maximize()                 { ebiten.MaximizeWindow() }
func (w *Window) Restore()                  { ebiten.RestoreWindow() }
func (w *Window) Focused() bool             { return ebiten.IsFocused() }
func (w *Window) Iconified() bool           { return ebiten.IsWindowMinimized() }
func (w *Window) Maximized() bool           { return ebiten.IsWindowMaximized() }
func (w *Window) Visible() bool             { return !w.hidden.Load() }
func (w *Window) Wake()                     {}

func (w *Window) Resizable() bool {
	return ebiten.WindowResizingMode() == ebiten.WindowResizingModeEnabled
}

func (w *Window) Show() {
	w.hidden.Store(false)
	ebiten.RestoreWindow()
}

func (w *Window) Hide() {
	w.hidden.Store(true)
	ebiten.MinimizeWindow()
}

func (w *Window) CursorPosition() (float64, float64) {
	x, y := ebiten.CursorPosition()
	return float64(x), float64(y)
}

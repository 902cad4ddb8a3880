package driver

import "sync"

// Window is the native window the driver controls on the caller's behalf.
// Sizes and positions are in screen coordinates.
type Window interface {
	Position() (x, y int)
	SetPosition(x, y int)
	Size() (width, height int)
	SetSize(width, height int)

	Focus()
	Iconify()
	Maximize()
	Restore()
	Show()
	Hide()

	Focused() bool
	Resizable() bool
	Iconified() bool
	Maximized() bool
	Visible() bool

	// CursorPosition returns the pointer position in window coordinates.
	CursorPosition() (x, y float64)

	// Wake interrupts a blocked wait for window events so the main loop
	// notices new state promptly.
	Wake()
}

// HeadlessWindow is a Window that only tracks state. It backs the
// headless mode and tests.
type HeadlessWindow struct {
	mu        sync.Mutex
	x, y      int
	w, h      int
	cx, cy    float64
	focused   bool
	resizable bool
	iconified bool
	maximized bool
	visible   bool
	wakes     int
}

var _ Window = (*HeadlessWindow)(nil)

// NewHeadlessWindow returns a visible, focused window of the given size.
func NewHeadlessWindow(width, height int, resizable bool) *HeadlessWindow {
	return &HeadlessWindow{
		w:         width,
		h:         height,
		focused:   true,
		resizable: resizable,
		visible:   true,
	}
}

func (w *HeadlessWindow) Position() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.x, w.y
}

func (w *HeadlessWindow) SetPosition(x, y int) {
	w.mu.Lock()
	w.x, w.y = x, y
	w.mu.Unlock()
}

func (w *HeadlessWindow) Size() (int, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w, w.h
}

func (w *HeadlessWindow) SetSize(width, height int) {
	w.mu.Lock()
	w.w, w.h = width, height
	w.mu.Unlock()
}

func (w *HeadlessWindow) Focus() { w.set(func() { w.focused = true }) }

func (w *HeadlessWindow) Iconify() {
	w.set(func() { w.iconified, w.maximized = true, false })
}

func (w *HeadlessWindow) Maximize() {
	w.set(func() { w.maximized, w.iconified = true, false })
}

func (w *HeadlessWindow) Restore() {
	w.set(func() { w.maximized, w.iconified = false, false })
}

func (w *HeadlessWindow) Show() { w.set(func() { w.visible = true }) }
func (w *HeadlessWindow) Hide() { w.set(func() { w.visible = false }) }

func (w *HeadlessWindow) Focused() bool   { return w.get(&w.focused) }
func (w *HeadlessWindow) Resizable() bool { return w.get(&w.resizable) }
func (w *HeadlessWindow) Iconified() bool { return w.get(&w.iconified) }
func (w *HeadlessWindow) Maximized() bool { return w.get(&w.maximized) }
func (w *HeadlessWindow) Visible() bool   { return w.get(&w.visible) }

func (w *HeadlessWindow) CursorPosition() (float64, float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cx, w.cy
}

// SetCursorPosition moves the simulated pointer.
func (w *HeadlessWindow) SetCursorPosition(x, y float64) {
	w.mu.Lock()
	w.cx, w.cy = x, y
	w.mu.Unlock()
}

func (w *HeadlessWindow) Wake() { w.set(func() { w.wakes++ }) }

// Wakes returns how many times Wake was called.
func (w *HeadlessWindow) Wakes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.wakes
}

func (w *HeadlessWindow) set(fn func()) {
	w.mu.Lock()
	fn()
	w.mu.Unlock()
}

func (w *HeadlessWindow) get(p *bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return *p
}

package driver

import (
	"go.uber.org/zap"

	"github.com/zelixir/scenic-driver-gg/event"
)

// InputMask selects which input categories are forwarded to the caller.
type InputMask uint32

// Input categories, as set by the input-flags command.
const (
	InputKey       InputMask = 0x01
	InputCodepoint InputMask = 0x02
	InputCursorPos InputMask = 0x04
	InputButton    InputMask = 0x08
	InputScroll    InputMask = 0x10
	InputEnter     InputMask = 0x20
	InputDrop      InputMask = 0x40
	InputReshape   InputMask = 0x80

	// InputAll is the mask in effect until the caller sets one.
	InputAll InputMask = 0xFFFF
)

// Has reports whether every bit of c is set.
func (m InputMask) Has(c InputMask) bool { return m&c == c }

func (d *Driver) forward(c InputMask, ev event.Event) {
	if !d.running || !d.inputMask.Has(c) {
		return
	}
	d.emit(ev)
}

func (d *Driver) cursor() (float32, float32) {
	x, y := d.window.CursorPosition()
	return float32(x), float32(y)
}

// Key forwards a key press, release or repeat.
func (d *Driver) Key(key, scancode, action, mods int32) {
	d.forward(InputKey, event.Key{Key: key, Scancode: scancode, Action: action, Mods: mods})
}

// Codepoint forwards a typed character.
func (d *Driver) Codepoint(r rune, mods int32) {
	d.forward(InputCodepoint, event.Codepoint{Codepoint: uint32(r), Mods: mods})
}

// CursorPos forwards pointer motion.
func (d *Driver) CursorPos(x, y float64) {
	d.forward(InputCursorPos, event.CursorPos{X: float32(x), Y: float32(y)})
}

// MouseButton forwards a button change at the current pointer position.
func (d *Driver) MouseButton(button, action, mods int32) {
	x, y := d.cursor()
	d.forward(InputButton, event.MouseButton{Button: button, Action: action, Mods: mods, X: x, Y: y})
}

// Scroll forwards wheel motion at the current pointer position.
func (d *Driver) Scroll(dx, dy float64) {
	x, y := d.cursor()
	d.forward(InputScroll, event.Scroll{DX: float32(dx), DY: float32(dy), X: x, Y: y})
}

// CursorEnter forwards the pointer entering or leaving the window.
func (d *Driver) CursorEnter(entered bool) {
	x, y := d.cursor()
	var e int32
	if entered {
		e = 1
	}
	d.forward(InputEnter, event.CursorEnter{Entered: e, X: x, Y: y})
}

// DropPaths forwards files dropped onto the window.
func (d *Driver) DropPaths(paths []string) {
	if len(paths) == 0 {
		return
	}
	d.forward(InputDrop, event.DropPaths{Paths: paths})
}

// Reshape reports a new window size and schedules a redraw. The window and
// framebuffer sizes are reported as equal.
func (d *Driver) Reshape(width, height int) {
	d.redraw = true
	d.log.Debug("reshape", zap.Int("width", width), zap.Int("height", height))
	w, h := int32(width), int32(height)
	d.forward(InputReshape, event.Reshape{Width: w, Height: h, FrameWidth: w, FrameHeight: h})
}

// Close reports that the user asked to close the window. It is sent
// regardless of the input mask.
func (d *Driver) Close() {
	if !d.running {
		return
	}
	d.log.Info("window close requested")
	d.emit(event.Close{})
}

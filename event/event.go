// Package event defines the messages the driver sends to its caller and the
// channel that frames and writes them.
//
// Every event payload starts with a u32 kind in host byte order, followed by
// kind-specific fields. String-bodied events (log lines, cache misses) carry
// raw UTF-8 up to the end of the frame with no length field.
package event

import (
	"errors"
	"fmt"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// Kind identifies an outbound event.
type Kind uint32

// Outbound event kinds.
const (
	KindClose       Kind = 0x00
	KindStats       Kind = 0x01
	KindLog         Kind = 0x02
	KindWrite       Kind = 0x03
	KindInspect     Kind = 0x04
	KindReshape     Kind = 0x05
	KindReady       Kind = 0x06
	KindDrawReady   Kind = 0x07
	KindKey         Kind = 0x0A
	KindCodepoint   Kind = 0x0B
	KindCursorPos   Kind = 0x0C
	KindMouseButton Kind = 0x0D
	KindScroll      Kind = 0x0E
	KindCursorEnter Kind = 0x0F
	KindDropPaths   Kind = 0x10
	KindCacheMiss   Kind = 0x20
	KindFontMiss    Kind = 0x22
)

var kindNames = map[Kind]string{
	KindClose:       "close",
	KindStats:       "stats",
	KindLog:         "log",
	KindWrite:       "write",
	KindInspect:     "inspect",
	KindReshape:     "reshape",
	KindReady:       "ready",
	KindDrawReady:   "draw_ready",
	KindKey:         "key",
	KindCodepoint:   "codepoint",
	KindCursorPos:   "cursor_pos",
	KindMouseButton: "mouse_button",
	KindScroll:      "scroll",
	KindCursorEnter: "cursor_enter",
	KindDropPaths:   "drop_paths",
	KindCacheMiss:   "cache_miss",
	KindFontMiss:    "font_miss",
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%#x)", uint32(k))
}

// ErrUnknownKind is returned by Decode for a kind it does not recognise.
var ErrUnknownKind = errors.New("event: unknown kind")

// Event is one outbound message.
type Event interface {
	Kind() Kind
	encode(e *wire.Encoder)
}

// Close tells the caller the user asked to close the window.
type Close struct{}

// Stats is the reply to a stats query.
type Stats struct {
	InputFlags uint32
	X, Y       int32
	Width      int32
	Height     int32
	Focused    bool
	Resizable  bool
	Iconified  bool
	Maximized  bool
	Visible    bool
}

// Log is a diagnostic line for the caller's log.
type Log struct{ Text string }

// Write is a line for the caller's standard output.
type Write struct{ Text string }

// Inspect carries an opaque blob for debugging.
type Inspect struct{ Data []byte }

// Reshape reports a new window and framebuffer size.
type Reshape struct {
	Width, Height           int32
	FrameWidth, FrameHeight int32
}

// Ready reports that the driver is up.
type Ready struct{ Root int32 }

// DrawReady acknowledges a stored script.
type DrawReady struct{ ID uint32 }

// Key is a keyboard key transition.
type Key struct {
	Key, Scancode, Action, Mods int32
}

// Codepoint is a typed character.
type Codepoint struct {
	Codepoint uint32
	Mods      int32
}

// CursorPos is a pointer move in window coordinates.
type CursorPos struct{ X, Y float32 }

// MouseButton is a pointer button transition at a position.
type MouseButton struct {
	Button, Action, Mods int32
	X, Y                 float32
}

// Scroll is a wheel or trackpad scroll at a position.
type Scroll struct {
	DX, DY float32
	X, Y   float32
}

// CursorEnter reports the pointer entering (1) or leaving (0) the window.
type CursorEnter struct {
	Entered int32
	X, Y    float32
}

// DropPaths lists files dropped onto the window.
type DropPaths struct{ Paths []string }

// CacheMiss names a texture a script referenced before it was loaded.
type CacheMiss struct{ Key string }

// FontMiss names a font a script referenced before it was loaded.
type FontMiss struct{ Key string }

func (Close) Kind() Kind       { return KindClose }
func (Stats) Kind() Kind       { return KindStats }
func (Log) Kind() Kind         { return KindLog }
func (Write) Kind() Kind       { return KindWrite }
func (Inspect) Kind() Kind     { return KindInspect }
func (Reshape) Kind() Kind     { return KindReshape }
func (Ready) Kind() Kind       { return KindReady }
func (DrawReady) Kind() Kind   { return KindDrawReady }
func (Key) Kind() Kind         { return KindKey }
func (Codepoint) Kind() Kind   { return KindCodepoint }
func (CursorPos) Kind() Kind   { return KindCursorPos }
func (MouseButton) Kind() Kind { return KindMouseButton }
func (Scroll) Kind() Kind      { return KindScroll }
func (CursorEnter) Kind() Kind { return KindCursorEnter }
func (DropPaths) Kind() Kind   { return KindDropPaths }
func (CacheMiss) Kind() Kind   { return KindCacheMiss }
func (FontMiss) Kind() Kind    { return KindFontMiss }

func (Close) encode(*wire.Encoder) {}

func (s Stats) encode(e *wire.Encoder) {
	e.Uint32(s.InputFlags).
		Int32(s.X).Int32(s.Y).Int32(s.Width).Int32(s.Height).
		Bool(s.Focused).Bool(s.Resizable).Bool(s.Iconified).Bool(s.Maximized).Bool(s.Visible)
}

func (l Log) encode(e *wire.Encoder)     { e.String(l.Text) }
func (w Write) encode(e *wire.Encoder)   { e.String(w.Text) }
func (i Inspect) encode(e *wire.Encoder) { e.Raw(i.Data) }

func (r Reshape) encode(e *wire.Encoder) {
	e.Int32(r.Width).Int32(r.Height).Int32(r.FrameWidth).Int32(r.FrameHeight)
}

func (r Ready) encode(e *wire.Encoder)     { e.Int32(r.Root) }
func (d DrawReady) encode(e *wire.Encoder) { e.Uint32(d.ID) }

func (k Key) encode(e *wire.Encoder) {
	e.Int32(k.Key).Int32(k.Scancode).Int32(k.Action).Int32(k.Mods)
}

func (c Codepoint) encode(e *wire.Encoder) { e.Uint32(c.Codepoint).Int32(c.Mods) }
func (c CursorPos) encode(e *wire.Encoder) { e.Float32(c.X).Float32(c.Y) }

func (m MouseButton) encode(e *wire.Encoder) {
	e.Int32(m.Button).Int32(m.Action).Int32(m.Mods).Float32(m.X).Float32(m.Y)
}

func (s Scroll) encode(e *wire.Encoder) {
	e.Float32(s.DX).Float32(s.DY).Float32(s.X).Float32(s.Y)
}

func (c CursorEnter) encode(e *wire.Encoder) {
	e.Int32(c.Entered).Float32(c.X).Float32(c.Y)
}

func (d DropPaths) encode(e *wire.Encoder) {
	e.Uint32(uint32(len(d.Paths)))
	for _, p := range d.Paths {
		e.LenString(p)
	}
}

func (c CacheMiss) encode(e *wire.Encoder) { e.String(c.Key) }
func (f FontMiss) encode(e *wire.Encoder)  { e.String(f.Key) }

// Logf builds a Log event from a format string.
func Logf(format string, args ...any) Log {
	return Log{Text: fmt.Sprintf(format, args...)}
}

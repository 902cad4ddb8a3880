package backend

import (
	"errors"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// Common backend errors.
var (
	// ErrUnknownBackend is returned by New for a name nobody registered.
	ErrUnknownBackend = errors.New("backend: unknown backend")

	// ErrNoFrame is queued when drawing happens outside BeginFrame/EndFrame.
	ErrNoFrame = errors.New("backend: no frame in progress")

	// ErrImageDecode is returned when texture bytes cannot be decoded.
	ErrImageDecode = errors.New("backend: cannot decode image")

	// ErrFontLoad is returned when font bytes cannot be parsed.
	ErrFontLoad = errors.New("backend: cannot load font")
)

// Color is a non-premultiplied color with channels in 0..1.
type Color struct {
	R, G, B, A float64
}

// ColorFromWire normalises a wire color.
func ColorFromWire(c wire.RGBA) Color {
	r, g, b, a := c.Float()
	return Color{R: r, G: g, B: b, A: a}
}

// LineCap is the shape drawn at open path ends.
type LineCap int

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

// LineJoin is the shape drawn where path segments meet.
type LineJoin int

const (
	JoinMiter LineJoin = iota
	JoinRound
	JoinBevel
)

// Winding is the fill direction of the current sub-path.
type Winding int

const (
	// Solid sub-paths add coverage.
	Solid Winding = iota
	// Hole sub-paths cut coverage out of solid ones.
	Hole
)

// Align is a bit set of horizontal and vertical text alignment flags.
type Align int

const (
	AlignLeft     Align = 1 << 0
	AlignCenter   Align = 1 << 1
	AlignRight    Align = 1 << 2
	AlignTop      Align = 1 << 3
	AlignMiddle   Align = 1 << 4
	AlignBottom   Align = 1 << 5
	AlignBaseline Align = 1 << 6
)

// Image is an opaque handle to a decoded texture owned by a backend.
type Image uint32

// Font is an opaque handle to a loaded font owned by a backend.
type Font uint32

// TextRow is one line produced by TextBreakLines. Offsets are byte indexes
// into the string passed to TextBreakLines.
type TextRow struct {
	Start int // first byte of the row
	End   int // one past the last byte drawn
	Next  int // where the following row starts
	Width float64
}

// StateStack saves and restores style, transform and scissor state.
type StateStack interface {
	// Save pushes a copy of the current state.
	Save()
	// Restore pops the most recently saved state. It is a no-op on an
	// empty stack.
	Restore()
	// Reset sets the current state to defaults without touching the stack.
	Reset()
}

// Styler sets fill and stroke style.
type Styler interface {
	SetShapeAntiAlias(enabled bool)
	SetStrokeWidth(width float64)
	SetStrokeColor(c Color)
	SetStrokePaint(p Paint)
	SetFillColor(c Color)
	SetFillPaint(p Paint)
	SetMiterLimit(limit float64)
	SetLineCap(lineCap LineCap)
	SetLineJoin(join LineJoin)
	SetGlobalAlpha(alpha float64)
}

// Scissorer clips drawing to rectangles in the current transform.
type Scissorer interface {
	Scissor(x, y, w, h float64)
	IntersectScissor(x, y, w, h float64)
	ResetScissor()
}

// PathBuilder builds and commits the current path.
type PathBuilder interface {
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	BezierTo(c1x, c1y, c2x, c2y, x, y float64)
	QuadTo(cx, cy, x, y float64)
	ArcTo(x1, y1, x2, y2, radius float64)
	ClosePath()
	PathWinding(w Winding)
	Fill()
	Stroke()
}

// Shapes appends closed primitives to the current path.
type Shapes interface {
	Rect(x, y, w, h float64)
	RoundedRect(x, y, w, h, r float64)
	RoundedRectVarying(x, y, w, h, topLeft, topRight, bottomRight, bottomLeft float64)
	Ellipse(cx, cy, rx, ry float64)
	Circle(cx, cy, r float64)
}

// Transformer edits the current transform. Every call post-multiplies.
type Transformer interface {
	ResetTransform()
	Transform(a, b, c, d, e, f float64)
	Translate(x, y float64)
	Scale(x, y float64)
	Rotate(angle float64)
	SkewX(angle float64)
	SkewY(angle float64)
}

// TextRenderer lays out and draws text with the current font.
type TextRenderer interface {
	// FindFont resolves a font previously loaded under name.
	FindFont(name string) (Font, bool)
	SetFont(f Font)
	SetFontSize(size float64)
	SetFontBlur(blur float64)
	SetTextAlign(a Align)
	SetTextLineHeight(factor float64)
	// TextMetrics returns the ascender, descender and line height of the
	// current font at the current size.
	TextMetrics() (ascender, descender, lineHeight float64)
	// TextBreakLines splits s into at most maxRows rows no wider than
	// width.
	TextBreakLines(s string, width float64, maxRows int) []TextRow
	// Text draws s at (x, y) and returns the horizontal advance.
	Text(x, y float64, s string) float64
}

// FontLoader loads fonts under a name for later lookup with FindFont.
type FontLoader interface {
	CreateFont(name, path string) (Font, error)
	CreateFontMem(name string, data []byte) (Font, error)
}

// ImageLoader decodes and frees textures.
type ImageLoader interface {
	CreateImageMem(data []byte) (Image, error)
	DeleteImage(img Image)
	ImageSize(img Image) (w, h int, ok bool)
}

// ErrorQueue exposes failures detected while drawing.
type ErrorQueue interface {
	// DrainErrors returns and clears every queued error.
	DrainErrors() []error
}

// Frame brackets one render pass.
type Frame interface {
	SetClearColor(c Color)
	BeginFrame(width, height int, pixelRatio float64)
	EndFrame() error
}

// Backend is the full capability set the interpreter and dispatcher use.
type Backend interface {
	StateStack
	Styler
	Scissorer
	PathBuilder
	Shapes
	Transformer
	TextRenderer
	FontLoader
	ImageLoader
	ErrorQueue
	Frame

	// Name returns the registry name of the backend.
	Name() string

	// Close releases every resource the backend owns.
	Close() error
}

// Package record provides a backend that records every call it receives.
//
// The record backend draws nothing. It exists so that interpreter and
// dispatcher behaviour can be asserted call by call, and so the driver can
// run headless with a log of what it would have drawn.
//
//	b := record.New()
//	// ... drive b ...
//	for _, c := range b.Calls() {
//	    fmt.Println(c)
//	}
package record

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for CreateImageMem
	_ "image/png"
	"os"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/zelixir/scenic-driver-gg/backend"
)

func init() {
	backend.Register("record", func() (backend.Backend, error) {
		return New(), nil
	})
}

// Call is one recorded backend invocation.
type Call struct {
	Name string
	Args []any
}

func (c Call) String() string {
	if len(c.Args) == 0 {
		return c.Name + "()"
	}
	parts := make([]string, len(c.Args))
	for i, a := range c.Args {
		parts[i] = fmt.Sprint(a)
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")"
}

// drawing lists the calls that put geometry or pixels on the canvas.
var drawing = map[string]bool{
	"MoveTo": true, "LineTo": true, "BezierTo": true, "QuadTo": true, "ArcTo": true,
	"ClosePath": true, "Fill": true, "Stroke": true,
	"Rect": true, "RoundedRect": true, "RoundedRectVarying": true,
	"Ellipse": true, "Circle": true, "Text": true,
}

// IsDraw reports whether a call adds geometry or pixels.
func (c Call) IsDraw() bool { return drawing[c.Name] }

// Backend records calls. It is safe for concurrent use.
type Backend struct {
	mu     sync.Mutex
	calls  []Call
	errs   []error
	fonts  map[string]backend.Font
	images map[backend.Image][2]int
	nextID uint32

	font     backend.Font
	fontSize float64
	lineH    float64
}

var _ backend.Backend = (*Backend)(nil)

// New returns an empty recording backend.
func New() *Backend {
	return &Backend{
		fonts:    make(map[string]backend.Font),
		images:   make(map[backend.Image][2]int),
		fontSize: 16,
		lineH:    1,
	}
}

func (b *Backend) add(name string, args ...any) {
	b.mu.Lock()
	b.calls = append(b.calls, Call{Name: name, Args: args})
	b.mu.Unlock()
}

// Calls returns a copy of every recorded call.
func (b *Backend) Calls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Call(nil), b.calls...)
}

// Named returns the recorded calls with the given name.
func (b *Backend) Named(name string) []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// DrawCalls returns the recorded calls that add geometry or pixels.
func (b *Backend) DrawCalls() []Call {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []Call
	for _, c := range b.calls {
		if c.IsDraw() {
			out = append(out, c)
		}
	}
	return out
}

// Clear forgets recorded calls. Loaded fonts and images are kept.
func (b *Backend) Clear() {
	b.mu.Lock()
	b.calls = nil
	b.mu.Unlock()
}

// QueueError adds err to the error queue, as a real backend would after a
// failed operation.
func (b *Backend) QueueError(err error) {
	b.mu.Lock()
	b.errs = append(b.errs, err)
	b.mu.Unlock()
}

func (b *Backend) Name() string { return "record" }

func (b *Backend) Close() error {
	b.add("Close")
	return nil
}

func (b *Backend) Save()    { b.add("Save") }
func (b *Backend) Restore() { b.add("Restore") }
func (b *Backend) Reset()   { b.add("Reset") }

func (b *Backend) SetShapeAntiAlias(enabled bool) { b.add("SetShapeAntiAlias", enabled) }
func (b *Backend) SetStrokeWidth(width float64)   { b.add("SetStrokeWidth", width) }
func (b *Backend) SetStrokeColor(c backend.Color) { b.add("SetStrokeColor", c) }
func (b *Backend) SetStrokePaint(p backend.Paint) { b.add("SetStrokePaint", p) }
func (b *Backend) SetFillColor(c backend.Color)   { b.add("SetFillColor", c) }
func (b *Backend) SetFillPaint(p backend.Paint)   { b.add("SetFillPaint", p) }
func (b *Backend) SetMiterLimit(limit float64)    { b.add("SetMiterLimit", limit) }
func (b *Backend) SetLineCap(c backend.LineCap)   { b.add("SetLineCap", c) }
func (b *Backend) SetLineJoin(j backend.LineJoin) { b.add("SetLineJoin", j) }
func (b *Backend) SetGlobalAlpha(alpha float64)   { b.add("SetGlobalAlpha", alpha) }

func (b *Backend) Scissor(x, y, w, h float64)          { b.add("Scissor", x, y, w, h) }
func (b *Backend) IntersectScissor(x, y, w, h float64) { b.add("IntersectScissor", x, y, w, h) }
func (b *Backend) ResetScissor()                       { b.add("ResetScissor") }

func (b *Backend) BeginPath()          { b.add("BeginPath") }
func (b *Backend) MoveTo(x, y float64) { b.add("MoveTo", x, y) }
func (b *Backend) LineTo(x, y float64) { b.add("LineTo", x, y) }

func (b *Backend) BezierTo(c1x, c1y, c2x, c2y, x, y float64) {
	b.add("BezierTo", c1x, c1y, c2x, c2y, x, y)
}

func (b *Backend) QuadTo(cx, cy, x, y float64) { b.add("QuadTo", cx, cy, x, y) }

func (b *Backend) ArcTo(x1, y1, x2, y2, radius float64) {
	b.add("ArcTo", x1, y1, x2, y2, radius)
}

func (b *Backend) ClosePath()                    { b.add("ClosePath") }
func (b *Backend) PathWinding(w backend.Winding) { b.add("PathWinding", w) }
func (b *Backend) Fill()                         { b.add("Fill") }
func (b *Backend) Stroke()                       { b.add("Stroke") }

func (b *Backend) Rect(x, y, w, h float64)           { b.add("Rect", x, y, w, h) }
func (b *Backend) RoundedRect(x, y, w, h, r float64) { b.add("RoundedRect", x, y, w, h, r) }

func (b *Backend) RoundedRectVarying(x, y, w, h, tl, tr, br, bl float64) {
	b.add("RoundedRectVarying", x, y, w, h, tl, tr, br, bl)
}

func (b *Backend) Ellipse(cx, cy, rx, ry float64) { b.add("Ellipse", cx, cy, rx, ry) }
func (b *Backend) Circle(cx, cy, r float64)       { b.add("Circle", cx, cy, r) }

func (b *Backend) ResetTransform() { b.add("ResetTransform") }

func (b *Backend) Transform(m11, m12, m21, m22, dx, dy float64) {
	b.add("Transform", m11, m12, m21, m22, dx, dy)
}

func (b *Backend) Translate(x, y float64) { b.add("Translate", x, y) }
func (b *Backend) Scale(x, y float64)     { b.add("Scale", x, y) }
func (b *Backend) Rotate(angle float64)   { b.add("Rotate", angle) }
func (b *Backend) SkewX(angle float64)    { b.add("SkewX", angle) }
func (b *Backend) SkewY(angle float64)    { b.add("SkewY", angle) }

func (b *Backend) FindFont(name string) (backend.Font, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, ok := b.fonts[name]
	return f, ok
}

func (b *Backend) SetFont(f backend.Font) {
	b.mu.Lock()
	b.font = f
	b.mu.Unlock()
	b.add("SetFont", f)
}

// CurrentFont returns the font most recently passed to SetFont.
func (b *Backend) CurrentFont() backend.Font {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.font
}

func (b *Backend) SetFontSize(size float64) {
	b.mu.Lock()
	b.fontSize = size
	b.mu.Unlock()
	b.add("SetFontSize", size)
}

func (b *Backend) SetFontBlur(blur float64)     { b.add("SetFontBlur", blur) }
func (b *Backend) SetTextAlign(a backend.Align) { b.add("SetTextAlign", a) }

func (b *Backend) SetTextLineHeight(factor float64) {
	b.mu.Lock()
	b.lineH = factor
	b.mu.Unlock()
	b.add("SetTextLineHeight", factor)
}

// TextMetrics uses a fixed model: ascender 0.8 em, descender -0.2 em.
func (b *Backend) TextMetrics() (ascender, descender, lineHeight float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fontSize * 0.8, -b.fontSize * 0.2, b.fontSize * b.lineH
}

// TextBreakLines models every rune as half an em wide and breaks greedily
// at rune boundaries and newlines.
func (b *Backend) TextBreakLines(s string, width float64, maxRows int) []backend.TextRow {
	b.mu.Lock()
	adv := b.fontSize / 2
	b.mu.Unlock()

	var rows []backend.TextRow
	start := 0
	for start < len(s) && len(rows) < maxRows {
		end, w := start, 0.0
		next := len(s)
		for end < len(s) {
			r, n := utf8.DecodeRuneInString(s[end:])
			if r == '\n' {
				next = end + n
				break
			}
			if w+adv > width && end > start {
				next = end
				break
			}
			w += adv
			end += n
			next = end
		}
		rows = append(rows, backend.TextRow{Start: start, End: end, Next: next, Width: w})
		start = next
	}
	return rows
}

func (b *Backend) Text(x, y float64, s string) float64 {
	b.add("Text", x, y, s)
	b.mu.Lock()
	defer b.mu.Unlock()
	return float64(utf8.RuneCountInString(s)) * b.fontSize / 2
}

func (b *Backend) CreateFont(name, path string) (backend.Font, error) {
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("%w: %v", backend.ErrFontLoad, err)
	}
	return b.addFont(name, "CreateFont", path), nil
}

func (b *Backend) CreateFontMem(name string, data []byte) (backend.Font, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty font data", backend.ErrFontLoad)
	}
	return b.addFont(name, "CreateFontMem", len(data)), nil
}

func (b *Backend) addFont(name, call string, arg any) backend.Font {
	b.mu.Lock()
	b.nextID++
	f := backend.Font(b.nextID)
	b.fonts[name] = f
	b.mu.Unlock()
	b.add(call, name, arg)
	return f
}

func (b *Backend) CreateImageMem(data []byte) (backend.Image, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", backend.ErrImageDecode, err)
	}
	b.mu.Lock()
	b.nextID++
	img := backend.Image(b.nextID)
	b.images[img] = [2]int{cfg.Width, cfg.Height}
	b.mu.Unlock()
	b.add("CreateImageMem", img)
	return img, nil
}

func (b *Backend) DeleteImage(img backend.Image) {
	b.mu.Lock()
	delete(b.images, img)
	b.mu.Unlock()
	b.add("DeleteImage", img)
}

func (b *Backend) ImageSize(img backend.Image) (w, h int, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	sz, ok := b.images[img]
	return sz[0], sz[1], ok
}

// Images returns the number of live images.
func (b *Backend) Images() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.images)
}

func (b *Backend) DrainErrors() []error {
	b.mu.Lock()
	defer b.mu.Unlock()
	errs := b.errs
	b.errs = nil
	return errs
}

func (b *Backend) SetClearColor(c backend.Color) { b.add("SetClearColor", c) }

func (b *Backend) BeginFrame(width, height int, pixelRatio float64) {
	b.add("BeginFrame", width, height, pixelRatio)
}

func (b *Backend) EndFrame() error {
	b.add("EndFrame")
	return nil
}

// Package raster provides a software backend that renders into a pixel
// buffer using gg.Context.
//
// The raster backend owns the transform, the current path and the style
// stack. Paths are kept in device space and replayed into gg when filled or
// stroked. Solid, unclipped drawing goes straight to the canvas; gradients,
// image patterns and scissored drawing are rasterised as coverage into a
// scratch layer and composited through the paint.
//
// # Supported Features
//
//   - Solid, linear, radial and box gradient fills and strokes
//   - Rotated, repeating image patterns from decoded textures
//   - Axis-aligned scissoring in device space
//   - Text through gg/text with named fonts loaded from files or memory
//   - Global alpha and device pixel ratio
//
// # Limitations
//
// Shape anti-aliasing and font blur are accepted but have no effect. Path
// winding maps to the even-odd fill rule for holes, which matches the
// common case of a hole sub-path inside a solid one.
//
// # Example
//
//	import _ "github.com/zelixir/scenic-driver-gg/backend/raster"
//
//	b, _ := backend.New("raster")
//	b.BeginFrame(800, 600, 1)
//	// ... draw ...
//	_ = b.EndFrame()
//	img := b.(*raster.Backend).Image()
package raster

import (
	"errors"
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"

	"github.com/zelixir/scenic-driver-gg/backend"
)

func init() {
	backend.Register("raster", func() (backend.Backend, error) {
		return New(), nil
	})
}

// MaxStates is the depth of the Save/Restore stack.
const MaxStates = 32

var (
	// ErrStateOverflow is queued when Save is called on a full stack.
	ErrStateOverflow = errors.New("raster: state stack overflow")
	// ErrStateUnderflow is queued when Restore is called on an empty stack.
	ErrStateUnderflow = errors.New("raster: state stack underflow")
)

// source is a fill or stroke style: a solid color or a paint resolved
// against the transform that was current when it was set.
type source struct {
	color backend.Color
	paint backend.Paint
	xform gg.Matrix
}

// rect is an axis-aligned rectangle in device pixels.
type rect struct {
	x0, y0, x1, y1 float64
}

func (r rect) intersect(o rect) rect {
	out := rect{
		x0: math.Max(r.x0, o.x0), y0: math.Max(r.y0, o.y0),
		x1: math.Min(r.x1, o.x1), y1: math.Min(r.y1, o.y1),
	}
	if out.x1 < out.x0 {
		out.x1 = out.x0
	}
	if out.y1 < out.y0 {
		out.y1 = out.y0
	}
	return out
}

type state struct {
	xform       gg.Matrix
	fill        source
	stroke      source
	strokeWidth float64
	miterLimit  float64
	lineCap     backend.LineCap
	lineJoin    backend.LineJoin
	alpha       float64
	antiAlias   bool
	scissor     *rect

	font       backend.Font
	fontSize   float64
	fontBlur   float64
	align      backend.Align
	lineHeight float64
}

// Backend renders to an RGBA pixel buffer with gg.
type Backend struct {
	ctx   *gg.Context // canvas
	layer *gg.Context // coverage for clipped and painted drawing
	base  gg.Matrix
	clear backend.Color

	st    state
	stack []state

	inFrame bool
	path    devicePath

	fonts    map[string]backend.Font
	sources  map[backend.Font]*text.FontSource
	faces    map[faceKey]text.Face
	images   map[backend.Image]*gg.ImageBuf
	nextFont uint32
	nextImg  uint32

	errs []error
}

var _ backend.Backend = (*Backend)(nil)

// New returns a raster backend with a 1×1 canvas. BeginFrame sizes it.
func New() *Backend {
	b := &Backend{
		ctx:     gg.NewContext(1, 1),
		layer:   gg.NewContext(1, 1),
		base:    gg.Identity(),
		path:    newDevicePath(),
		clear:   backend.Color{A: 1},
		fonts:   make(map[string]backend.Font),
		sources: make(map[backend.Font]*text.FontSource),
		faces:   make(map[faceKey]text.Face),
		images:  make(map[backend.Image]*gg.ImageBuf),
	}
	b.st = b.defaultState()
	return b
}

func (b *Backend) Name() string { return "raster" }

func (b *Backend) defaultState() state {
	return state{
		xform:       b.base,
		fill:        source{color: backend.Color{R: 1, G: 1, B: 1, A: 1}},
		stroke:      source{color: backend.Color{A: 1}},
		strokeWidth: 1,
		miterLimit:  10,
		lineCap:     backend.CapButt,
		lineJoin:    backend.JoinMiter,
		alpha:       1,
		antiAlias:   true,
		fontSize:    16,
		align:       backend.AlignLeft | backend.AlignBaseline,
		lineHeight:  1,
	}
}

func (b *Backend) fail(err error) {
	if err != nil {
		b.errs = append(b.errs, err)
	}
}

// DrainErrors returns and clears the queued errors.
func (b *Backend) DrainErrors() []error {
	errs := b.errs
	b.errs = nil
	return errs
}

// SetClearColor sets the color BeginFrame clears the canvas to.
func (b *Backend) SetClearColor(c backend.Color) {
	b.clear = c
}

// BeginFrame sizes the canvas to width×height logical pixels scaled by
// pixelRatio, clears it and resets all drawing state.
func (b *Backend) BeginFrame(width, height int, pixelRatio float64) {
	if pixelRatio <= 0 || math.IsNaN(pixelRatio) {
		pixelRatio = 1
	}
	fw := max(1, int(math.Round(float64(width)*pixelRatio)))
	fh := max(1, int(math.Round(float64(height)*pixelRatio)))
	if b.ctx.Width() != fw || b.ctx.Height() != fh {
		if err := b.ctx.Resize(fw, fh); err != nil {
			b.fail(fmt.Errorf("raster: resize to %dx%d: %w", fw, fh, err))
		}
		if err := b.layer.Resize(fw, fh); err != nil {
			b.fail(fmt.Errorf("raster: resize layer to %dx%d: %w", fw, fh, err))
		}
	}
	b.base = gg.Scale(pixelRatio, pixelRatio)
	b.ctx.ClearWithColor(toRGBA(b.clear, 1))
	b.layer.Clear()
	b.stack = b.stack[:0]
	b.st = b.defaultState()
	b.BeginPath()
	b.inFrame = true
}

// EndFrame finishes the frame. The pixels stay readable through Image.
func (b *Backend) EndFrame() error {
	if !b.inFrame {
		return backend.ErrNoFrame
	}
	b.inFrame = false
	return nil
}

// Image returns a copy of the canvas.
func (b *Backend) Image() *image.RGBA {
	return b.ctx.ResizeTarget().ToImage()
}

// Size returns the canvas size in device pixels.
func (b *Backend) Size() (w, h int) {
	return b.ctx.Width(), b.ctx.Height()
}

// Close releases fonts, images and both pixel buffers.
func (b *Backend) Close() error {
	var errs []error
	for _, src := range b.sources {
		errs = append(errs, src.Close())
	}
	clear(b.sources)
	clear(b.fonts)
	clear(b.faces)
	clear(b.images)
	errs = append(errs, b.ctx.Close(), b.layer.Close())
	return errors.Join(errs...)
}

func (b *Backend) Save() {
	if len(b.stack) >= MaxStates {
		b.fail(ErrStateOverflow)
		return
	}
	b.stack = append(b.stack, b.st)
}

func (b *Backend) Restore() {
	if len(b.stack) == 0 {
		b.fail(ErrStateUnderflow)
		return
	}
	b.st = b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
}

func (b *Backend) Reset() {
	b.st = b.defaultState()
}

func (b *Backend) SetShapeAntiAlias(enabled bool) { b.st.antiAlias = enabled }
func (b *Backend) SetStrokeWidth(width float64)   { b.st.strokeWidth = width }
func (b *Backend) SetMiterLimit(limit float64)    { b.st.miterLimit = limit }
func (b *Backend) SetLineCap(c backend.LineCap)   { b.st.lineCap = c }
func (b *Backend) SetLineJoin(j backend.LineJoin) { b.st.lineJoin = j }

func (b *Backend) SetGlobalAlpha(alpha float64) {
	b.st.alpha = clamp01(alpha)
}

func (b *Backend) SetStrokeColor(c backend.Color) { b.st.stroke = source{color: c} }
func (b *Backend) SetFillColor(c backend.Color)   { b.st.fill = source{color: c} }

func (b *Backend) SetStrokePaint(p backend.Paint) {
	b.st.stroke = source{paint: p, xform: b.st.xform}
}

func (b *Backend) SetFillPaint(p backend.Paint) {
	b.st.fill = source{paint: p, xform: b.st.xform}
}

// deviceRect returns the device-space bounding box of a user-space rectangle.
func (b *Backend) deviceRect(x, y, w, h float64) rect {
	r := rect{x0: math.Inf(1), y0: math.Inf(1), x1: math.Inf(-1), y1: math.Inf(-1)}
	for _, p := range [4]gg.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}} {
		q := b.st.xform.TransformPoint(p)
		r.x0, r.y0 = math.Min(r.x0, q.X), math.Min(r.y0, q.Y)
		r.x1, r.y1 = math.Max(r.x1, q.X), math.Max(r.y1, q.Y)
	}
	return r
}

func (b *Backend) Scissor(x, y, w, h float64) {
	r := b.deviceRect(x, y, math.Max(0, w), math.Max(0, h))
	b.st.scissor = &r
}

func (b *Backend) IntersectScissor(x, y, w, h float64) {
	if b.st.scissor == nil {
		b.Scissor(x, y, w, h)
		return
	}
	r := b.st.scissor.intersect(b.deviceRect(x, y, math.Max(0, w), math.Max(0, h)))
	b.st.scissor = &r
}

func (b *Backend) ResetScissor() { b.st.scissor = nil }

func (b *Backend) ResetTransform() { b.st.xform = b.base }

// Transform post-multiplies by the matrix
//
//	| m11 m21 dx |
//	| m12 m22 dy |
//	|  0   0   1 |
func (b *Backend) Transform(m11, m12, m21, m22, dx, dy float64) {
	b.premultiply(gg.Matrix{A: m11, B: m21, C: dx, D: m12, E: m22, F: dy})
}

func (b *Backend) Translate(x, y float64) { b.premultiply(gg.Translate(x, y)) }
func (b *Backend) Scale(x, y float64)     { b.premultiply(gg.Scale(x, y)) }
func (b *Backend) Rotate(angle float64)   { b.premultiply(gg.Rotate(angle)) }

func (b *Backend) SkewX(angle float64) {
	b.premultiply(gg.Matrix{A: 1, B: math.Tan(angle), E: 1})
}

func (b *Backend) SkewY(angle float64) {
	b.premultiply(gg.Matrix{A: 1, D: math.Tan(angle), E: 1})
}

// premultiply applies m to user coordinates before the current transform.
func (b *Backend) premultiply(m gg.Matrix) {
	b.st.xform = b.st.xform.Multiply(m)
}

// averageScale is the mean axis scale of the current transform, used to
// convert stroke widths and font sizes to device pixels.
func (b *Backend) averageScale() float64 {
	m := b.st.xform
	sx := math.Hypot(m.A, m.D)
	sy := math.Hypot(m.B, m.E)
	return (sx + sy) / 2
}

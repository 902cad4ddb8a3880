// Package script executes stored drawing scripts against a backend.
//
// A script is a flat stream of u32 opcodes, each followed by a fixed operand
// layout in host byte order. Scripts call each other with run-script; nested
// invocations are kept on an explicit stack bounded by MaxDepth rather than
// on the Go call stack.
//
// # Paint lifetime
//
// A paint opcode (linear, box, radial, image) produces a paint that is
// visible only to the opcode immediately after it. fill-paint and
// stroke-paint consume that incoming paint; any other opcode discards it.
// Every invocation, including a sub-script, starts without a paint.
//
// # Failures
//
// A malformed operand or an unknown opcode aborts the invocation it occurs
// in. Drawing already
// issued to the backend is kept. A failed sub-script is reported as one log
// event and its caller continues; a failure in the outermost invocation is
// returned from Run.
package script

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/zelixir/scenic-driver-gg/backend"
	"github.com/zelixir/scenic-driver-gg/event"
	"github.com/zelixir/scenic-driver-gg/internal/metrics"
	"github.com/zelixir/scenic-driver-gg/store"
	"github.com/zelixir/scenic-driver-gg/wire"
)

const (
	// DefaultMaxDepth bounds nested run-script invocations.
	DefaultMaxDepth = 64

	// DefaultMaxOps bounds the opcodes executed by one Run, across every
	// nested invocation.
	DefaultMaxOps = 1 << 22

	// maxArcSegments caps the line segments one arc expands to.
	maxArcSegments = 4096

	textWrapWidth = 1000
	textBreakRows = 3
)

// Interpreter errors.
var (
	// ErrDepth is reported when run-script would exceed MaxDepth.
	ErrDepth = errors.New("script: nesting depth exceeded")

	// ErrOpBudget is returned when one Run executes more than MaxOps
	// opcodes.
	ErrOpBudget = errors.New("script: opcode budget exhausted")

	// ErrUnknownOpcode ends an invocation that reaches an undefined opcode.
	ErrUnknownOpcode = errors.New("script: unknown opcode")
)

// Error describes a script invocation that ended abnormally.
type Error struct {
	Script uint32 // id of the failing invocation
	Op     Opcode // opcode being decoded when the failure happened
	Offset int    // byte offset of that opcode
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("script %d: %s at offset %d: %v", e.Script, e.Op, e.Offset, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Interpreter runs scripts from Scripts against Backend. It only reads the
// stores. An Interpreter must not be used from more than one goroutine.
type Interpreter struct {
	Backend  backend.Backend
	Scripts  *store.Scripts
	Textures *store.Textures
	Emitter  event.Emitter

	// MaxDepth bounds nesting; zero means DefaultMaxDepth.
	MaxDepth int
	// MaxOps bounds the work of one Run; zero means DefaultMaxOps.
	MaxOps int

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// New returns an Interpreter with default limits.
func New(b backend.Backend, scripts *store.Scripts, textures *store.Textures, em event.Emitter) *Interpreter {
	return &Interpreter{
		Backend:  b,
		Scripts:  scripts,
		Textures: textures,
		Emitter:  em,
	}
}

// frame is one script invocation on the interpreter stack.
type frame struct {
	id    uint32
	d     *wire.Decoder
	paint backend.Paint // incoming paint for the next opcode
}

// Run executes the script stored under id. A missing script is a no-op.
func (in *Interpreter) Run(id uint32) error {
	body, ok := in.Scripts.Get(id)
	if !ok {
		return nil
	}
	return in.exec(id, body)
}

// Exec executes body as an anonymous script with id 0.
func (in *Interpreter) Exec(body []byte) error {
	return in.exec(0, body)
}

func (in *Interpreter) exec(id uint32, body []byte) error {
	maxDepth := in.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	budget := in.MaxOps
	if budget <= 0 {
		budget = DefaultMaxOps
	}

	stack := []*frame{{id: id, d: wire.NewDecoder(body)}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		if f.d.EOF() {
			stack = stack[:len(stack)-1]
			continue
		}

		at := f.d.Offset()
		raw, err := f.d.Uint32()
		op := Opcode(raw)
		if err == nil {
			budget--
			if budget < 0 {
				e := &Error{Script: f.id, Op: op, Offset: at, Err: ErrOpBudget}
				in.Metrics.ScriptError("budget")
				return e
			}
		}

		var done bool
		switch {
		case err != nil:
		case !op.Known():
			err = ErrUnknownOpcode
		case op == OpRunScript:
			f.paint = nil
			var sub uint32
			if sub, err = f.d.Uint32(); err != nil {
				break
			}
			callee, ok := in.Scripts.Get(sub)
			if !ok {
				break
			}
			if len(stack) >= maxDepth {
				in.report(&Error{Script: sub, Op: op, Offset: at, Err: ErrDepth}, "depth")
				break
			}
			stack = append(stack, &frame{id: sub, d: wire.NewDecoder(callee)})
		default:
			incoming := f.paint
			f.paint = nil
			done, err = in.step(f, op, incoming)
		}

		if err != nil {
			e := &Error{Script: f.id, Op: op, Offset: at, Err: err}
			reason := "decode"
			if errors.Is(err, ErrUnknownOpcode) {
				reason = "unknown_opcode"
			} else {
				in.Metrics.DecodeError("script")
			}
			if len(stack) == 1 {
				if reason != "decode" {
					in.Metrics.ScriptError(reason)
				}
				return e
			}
			in.report(e, reason)
			done = true
		}
		if done {
			stack = stack[:len(stack)-1]
		}
	}
	return nil
}

// report surfaces a nested failure as exactly one log event.
func (in *Interpreter) report(e *Error, reason string) {
	in.Metrics.ScriptError(reason)
	in.logger().Warn("script invocation failed",
		zap.Uint32("script", e.Script),
		zap.Stringer("op", e.Op),
		zap.Int("offset", e.Offset),
		zap.Error(e.Err))
	in.emit(event.Log{Text: e.Error()})
}

func (in *Interpreter) emit(ev event.Event) {
	if in.Emitter == nil {
		return
	}
	if err := in.Emitter.Emit(ev); err != nil {
		in.logger().Warn("emit failed", zap.Stringer("kind", ev.Kind()), zap.Error(err))
	}
}

func (in *Interpreter) logger() *zap.Logger {
	if in.Logger == nil {
		return zap.NewNop()
	}
	return in.Logger
}

// step executes one opcode other than run-script. It stores any produced
// paint in f.paint and reports whether the invocation is finished.
func (in *Interpreter) step(f *frame, op Opcode, paint backend.Paint) (done bool, err error) {
	b := in.Backend
	d := f.d
	var v [8]float64

	switch op {
	case OpPushState:
		b.Save()
	case OpPopState:
		b.Restore()
	case OpResetState:
		b.Reset()

	case OpPaintLinear:
		p := backend.LinearGradient{}
		if err = floats(d, &p.SX, &p.SY, &p.EX, &p.EY); err != nil {
			return
		}
		if p.Inner, p.Outer, err = colors(d); err != nil {
			return
		}
		f.paint = p
	case OpPaintBox:
		p := backend.BoxGradient{}
		if err = floats(d, &p.X, &p.Y, &p.W, &p.H, &p.Radius, &p.Feather); err != nil {
			return
		}
		if p.Inner, p.Outer, err = colors(d); err != nil {
			return
		}
		f.paint = p
	case OpPaintRadial:
		p := backend.RadialGradient{}
		if err = floats(d, &p.CX, &p.CY, &p.InnerRadius, &p.OuterRadius); err != nil {
			return
		}
		if p.Inner, p.Outer, err = colors(d); err != nil {
			return
		}
		f.paint = p
	case OpPaintImage:
		p := backend.ImagePattern{}
		if err = floats(d, &p.OX, &p.OY, &p.W, &p.H, &p.Angle, &p.Alpha); err != nil {
			return
		}
		var key string
		if key, err = d.LenString(); err != nil {
			return
		}
		img, ok := in.Textures.Get(key)
		if !ok {
			in.logger().Debug("texture cache miss", zap.String("key", key))
			in.emit(event.CacheMiss{Key: key})
			return
		}
		p.Image = img
		f.paint = p

	case OpAntiAlias:
		var n int32
		if n, err = d.Int32(); err == nil {
			b.SetShapeAntiAlias(n != 0)
		}
	case OpStrokeWidth:
		if err = floats(d, &v[0]); err == nil {
			b.SetStrokeWidth(v[0])
		}
	case OpStrokeColor:
		var c wire.RGBA
		if c, err = d.Color(); err == nil {
			b.SetStrokeColor(backend.ColorFromWire(c))
		}
	case OpStrokePaint:
		if paint != nil {
			b.SetStrokePaint(paint)
		}
	case OpFillColor:
		var c wire.RGBA
		if c, err = d.Color(); err == nil {
			b.SetFillColor(backend.ColorFromWire(c))
		}
	case OpFillPaint:
		if paint != nil {
			b.SetFillPaint(paint)
		}
	case OpMiterLimit:
		if err = floats(d, &v[0]); err == nil {
			b.SetMiterLimit(v[0])
		}
	case OpLineCap:
		var n int32
		if n, err = d.Int32(); err == nil {
			b.SetLineCap(lineCap(n))
		}
	case OpLineJoin:
		var n int32
		if n, err = d.Int32(); err == nil {
			b.SetLineJoin(lineJoin(n))
		}
	case OpGlobalAlpha:
		if err = floats(d, &v[0]); err == nil {
			b.SetGlobalAlpha(v[0])
		}

	case OpScissor:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.Scissor(0, 0, v[0], v[1])
		}
	case OpIntersectScissor:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.IntersectScissor(0, 0, v[0], v[1])
		}
	case OpResetScissor:
		b.ResetScissor()

	case OpPathBegin:
		b.BeginPath()
	case OpMoveTo:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.MoveTo(v[0], v[1])
		}
	case OpLineTo:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.LineTo(v[0], v[1])
		}
	case OpBezierTo:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err == nil {
			b.BezierTo(v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case OpQuadraticTo:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3]); err == nil {
			b.QuadTo(v[0], v[1], v[2], v[3])
		}
	case OpArcTo:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3], &v[4]); err == nil {
			b.ArcTo(v[0], v[1], v[2], v[3], v[4])
		}
	case OpPathClose:
		b.ClosePath()
	case OpPathWinding:
		var solid bool
		if solid, err = d.Bool(); err == nil {
			if solid {
				b.PathWinding(backend.Solid)
			} else {
				b.PathWinding(backend.Hole)
			}
		}
	case OpFill:
		b.Fill()
	case OpStroke:
		b.Stroke()

	case OpTriangle:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err == nil {
			b.MoveTo(v[0], v[1])
			b.LineTo(v[2], v[3])
			b.LineTo(v[4], v[5])
			b.ClosePath()
		}
	case OpArc:
		if err = floats(d, &v[0], &v[1], &v[2]); err == nil {
			arc(b, v[0], v[1], v[2])
		}
	case OpSector:
		if err = floats(d, &v[0], &v[1], &v[2]); err == nil {
			arc(b, v[0], v[1], v[2])
			b.LineTo(0, 0)
			b.ClosePath()
		}
	case OpRect:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.Rect(0, 0, v[0], v[1])
		}
	case OpRoundRect:
		if err = floats(d, &v[0], &v[1], &v[2]); err == nil {
			b.RoundedRect(0, 0, v[0], v[1], v[2])
		}
	case OpRoundRectVar:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err == nil {
			b.RoundedRectVarying(0, 0, v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case OpEllipse:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.Ellipse(0, 0, v[0], v[1])
		}
	case OpCircle:
		if err = floats(d, &v[0]); err == nil {
			b.Circle(0, 0, v[0])
		}
	case OpText:
		var s string
		if s, err = d.LenString(); err == nil {
			text(b, s)
		}

	case OpTxReset:
		b.ResetTransform()
	case OpTxIdentity:
	case OpTxMatrix:
		if err = floats(d, &v[0], &v[1], &v[2], &v[3], &v[4], &v[5]); err == nil {
			b.Transform(v[0], v[1], v[2], v[3], v[4], v[5])
		}
	case OpTxTranslate:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.Translate(v[0], v[1])
		}
	case OpTxScale:
		if err = floats(d, &v[0], &v[1]); err == nil {
			b.Scale(v[0], v[1])
		}
	case OpTxRotate:
		if err = floats(d, &v[0]); err == nil {
			b.Rotate(v[0])
		}
	case OpTxSkewX:
		if err = floats(d, &v[0]); err == nil {
			b.SkewX(v[0])
		}
	case OpTxSkewY:
		if err = floats(d, &v[0]); err == nil {
			b.SkewY(v[0])
		}

	case OpFont:
		var name string
		if name, err = d.LenString(); err != nil {
			return
		}
		if font, ok := b.FindFont(name); ok {
			b.SetFont(font)
		} else {
			in.logger().Debug("font miss", zap.String("font", name))
			in.emit(event.FontMiss{Key: name})
		}
	case OpFontBlur:
		if err = floats(d, &v[0]); err == nil {
			b.SetFontBlur(v[0])
		}
	case OpFontSize:
		if err = floats(d, &v[0]); err == nil {
			b.SetFontSize(v[0])
		}
	case OpTextAlign:
		var n int32
		if n, err = d.Int32(); err == nil {
			b.SetTextAlign(backend.Align(n))
		}
	case OpTextHeight:
		if err = floats(d, &v[0]); err == nil {
			b.SetTextLineHeight(v[0])
		}

	case OpTerminate:
		return true, nil

	default:
		return true, ErrUnknownOpcode
	}
	return false, err
}

// floats reads one f32 operand into each destination.
func floats(d *wire.Decoder, dst ...*float64) error {
	for _, p := range dst {
		v, err := d.Float32()
		if err != nil {
			return err
		}
		*p = float64(v)
	}
	return nil
}

// colors reads an inner and an outer color operand.
func colors(d *wire.Decoder) (inner, outer backend.Color, err error) {
	a, err := d.Color()
	if err != nil {
		return
	}
	b, err := d.Color()
	if err != nil {
		return
	}
	return backend.ColorFromWire(a), backend.ColorFromWire(b), nil
}

func lineCap(n int32) backend.LineCap {
	switch n {
	case 1:
		return backend.CapRound
	case 2:
		return backend.CapSquare
	}
	return backend.CapButt
}

func lineJoin(n int32) backend.LineJoin {
	switch n {
	case 1:
		return backend.JoinRound
	case 2:
		return backend.JoinBevel
	}
	return backend.JoinMiter
}

// arcSegments returns the number of line segments an arc of the given
// radius and sweep expands to. Radii at or below 1 give zero segments.
func arcSegments(radius, sweep float64) int {
	n := math.Log2(radius) * math.Abs(sweep) * 2
	if !(n > 0) {
		return 0
	}
	return int(math.Min(n, maxArcSegments))
}

// arc appends an arc around the origin as connected line segments: a move
// to the start angle followed by one line per segment. A zero segment count
// appends nothing.
func arc(b backend.PathBuilder, radius, start, finish float64) {
	sweep := math.Max(-2*math.Pi, math.Min(2*math.Pi, finish-start))
	n := arcSegments(radius, sweep)
	if n == 0 {
		return
	}
	inc := sweep / float64(n)
	b.MoveTo(math.Cos(start)*radius, math.Sin(start)*radius)
	for i := 1; i <= n; i++ {
		a := start + inc*float64(i)
		b.LineTo(math.Cos(a)*radius, math.Sin(a)*radius)
	}
}

// text draws s as rows wrapped at a fixed width, one line height apart.
func text(b backend.TextRenderer, s string) {
	_, _, lh := b.TextMetrics()
	y := 0.0
	for s != "" {
		rows := b.TextBreakLines(s, textWrapWidth, textBreakRows)
		if len(rows) == 0 {
			return
		}
		for _, r := range rows {
			if r.Start < 0 || r.Start > r.End || r.End > len(s) {
				return
			}
			b.Text(0, y, s[r.Start:r.End])
			y += lh
		}
		next := rows[len(rows)-1].Next
		if next <= 0 || next > len(s) {
			return
		}
		s = s[next:]
	}
}

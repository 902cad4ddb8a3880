package raster

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/zelixir/scenic-driver-gg/backend"
)

// kappa90 is the cubic control distance for a quarter circle.
const kappa90 = 0.5522847493

// distTol is the distance under which two points are considered equal.
const distTol = 0.01

// devicePath is the current path with every point already transformed.
type devicePath struct {
	*gg.Path
	evenOdd bool
}

func newDevicePath() devicePath {
	return devicePath{Path: gg.NewPath()}
}

func (p *devicePath) reset() {
	p.Clear()
	p.evenOdd = false
}

// bounds returns the device-space box around the path. An empty path has
// an inverted box.
func (p *devicePath) bounds() rect {
	if !p.HasCurrentPoint() {
		return rect{x0: math.Inf(1), y0: math.Inf(1), x1: math.Inf(-1), y1: math.Inf(-1)}
	}
	bb := p.BoundingBox()
	return rect{x0: bb.Min.X, y0: bb.Min.Y, x1: bb.Max.X, y1: bb.Max.Y}
}

// pathSink is what gg.Path and gg.Context have in common for building
// paths.
type pathSink interface {
	MoveTo(x, y float64)
	LineTo(x, y float64)
	QuadraticTo(cx, cy, x, y float64)
	CubicTo(c1x, c1y, c2x, c2y, x, y float64)
}

func copyPath(dst pathSink, closePath func(), src *gg.Path) {
	for _, el := range src.Elements() {
		switch e := el.(type) {
		case gg.MoveTo:
			dst.MoveTo(e.Point.X, e.Point.Y)
		case gg.LineTo:
			dst.LineTo(e.Point.X, e.Point.Y)
		case gg.QuadTo:
			dst.QuadraticTo(e.Control.X, e.Control.Y, e.Point.X, e.Point.Y)
		case gg.CubicTo:
			dst.CubicTo(e.Control1.X, e.Control1.Y, e.Control2.X, e.Control2.Y, e.Point.X, e.Point.Y)
		case gg.Close:
			closePath()
		}
	}
}

// replay draws the path into ctx, which must have an identity transform.
func (p *devicePath) replay(ctx *gg.Context) {
	ctx.ClearPath()
	copyPath(ctx, ctx.ClosePath, p.Path)
	if p.evenOdd {
		ctx.SetFillRule(gg.FillRuleEvenOdd)
	} else {
		ctx.SetFillRule(gg.FillRuleNonZero)
	}
}

func (b *Backend) pt(x, y float64) gg.Point {
	return b.st.xform.TransformPoint(gg.Pt(x, y))
}

func (b *Backend) BeginPath() { b.path.reset() }

func (b *Backend) MoveTo(x, y float64) {
	q := b.pt(x, y)
	b.path.MoveTo(q.X, q.Y)
}

func (b *Backend) LineTo(x, y float64) {
	if !b.path.HasCurrentPoint() {
		b.MoveTo(x, y)
		return
	}
	q := b.pt(x, y)
	b.path.LineTo(q.X, q.Y)
}

func (b *Backend) BezierTo(c1x, c1y, c2x, c2y, x, y float64) {
	if !b.path.HasCurrentPoint() {
		b.MoveTo(c1x, c1y)
	}
	c1, c2, q := b.pt(c1x, c1y), b.pt(c2x, c2y), b.pt(x, y)
	b.path.CubicTo(c1.X, c1.Y, c2.X, c2.Y, q.X, q.Y)
}

func (b *Backend) QuadTo(cx, cy, x, y float64) {
	if !b.path.HasCurrentPoint() {
		b.MoveTo(cx, cy)
	}
	c, q := b.pt(cx, cy), b.pt(x, y)
	b.path.QuadraticTo(c.X, c.Y, q.X, q.Y)
}

func (b *Backend) ClosePath() {
	if b.path.HasCurrentPoint() {
		b.path.Close()
	}
}

// shape builds a sub-path in user space with gg and appends it through the
// current transform.
func (b *Backend) shape(build func(p *gg.Path)) {
	p := gg.NewPath()
	build(p)
	copyPath(b.path, b.path.Close, p.Transform(b.st.xform))
}

// PathWinding marks the current sub-path. Holes switch the whole path to
// the even-odd rule.
func (b *Backend) PathWinding(w backend.Winding) {
	if w == backend.Hole {
		b.path.evenOdd = true
	}
}

// ArcTo appends a circular arc of the given radius tangent to the lines
// from the current point to (x1, y1) and from (x1, y1) to (x2, y2).
func (b *Backend) ArcTo(x1, y1, x2, y2, radius float64) {
	if !b.path.HasCurrentPoint() {
		return
	}
	p0 := b.st.xform.Invert().TransformPoint(b.path.CurrentPoint())
	x0, y0 := p0.X, p0.Y

	if ptEquals(x0, y0, x1, y1) || ptEquals(x1, y1, x2, y2) ||
		distPtSeg(x1, y1, x0, y0, x2, y2) < distTol*distTol || radius < distTol {
		b.LineTo(x1, y1)
		return
	}

	d0x, d0y := normalize(x0-x1, y0-y1)
	d1x, d1y := normalize(x2-x1, y2-y1)
	a := math.Acos(d0x*d1x + d0y*d1y)
	d := radius / math.Tan(a/2)
	if d > 10000 {
		b.LineTo(x1, y1)
		return
	}

	var cx, cy, a0, a1 float64
	var cw bool
	if d1x*d0y-d0x*d1y > 0 {
		cx = x1 + d0x*d + d0y*radius
		cy = y1 + d0y*d - d0x*radius
		a0 = math.Atan2(d0x, -d0y)
		a1 = math.Atan2(-d1x, d1y)
		cw = true
	} else {
		cx = x1 + d0x*d - d0y*radius
		cy = y1 + d0y*d + d0x*radius
		a0 = math.Atan2(-d0x, d0y)
		a1 = math.Atan2(d1x, -d1y)
	}
	b.arc(cx, cy, radius, a0, a1, cw)
}

// arc appends a circular arc as cubic segments, joined to the current
// point with a line.
func (b *Backend) arc(cx, cy, r, a0, a1 float64, cw bool) {
	da := a1 - a0
	if cw {
		if math.Abs(da) >= 2*math.Pi {
			da = 2 * math.Pi
		} else {
			for da < 0 {
				da += 2 * math.Pi
			}
		}
	} else {
		if math.Abs(da) >= 2*math.Pi {
			da = -2 * math.Pi
		} else {
			for da > 0 {
				da -= 2 * math.Pi
			}
		}
	}

	ndivs := max(1, min(int(math.Abs(da)/(math.Pi/2)+0.5), 5))
	hda := da / float64(ndivs) / 2
	kappa := math.Abs(4.0 / 3.0 * (1 - math.Cos(hda)) / math.Sin(hda))
	if !cw {
		kappa = -kappa
	}

	var px, py, ptanx, ptany float64
	for i := 0; i <= ndivs; i++ {
		a := a0 + da*float64(i)/float64(ndivs)
		dy, dx := math.Sincos(a)
		x, y := cx+dx*r, cy+dy*r
		tanx, tany := -dy*r*kappa, dx*r*kappa
		if i == 0 {
			b.LineTo(x, y)
		} else {
			b.BezierTo(px+ptanx, py+ptany, x-tanx, y-tany, x, y)
		}
		px, py, ptanx, ptany = x, y, tanx, tany
	}
}

func (b *Backend) Fill() {
	if !b.inFrame {
		b.fail(backend.ErrNoFrame)
		return
	}
	b.draw(b.st.fill, b.path.bounds(), func(ctx *gg.Context) error {
		return ctx.Fill()
	})
}

func (b *Backend) Stroke() {
	if !b.inFrame {
		b.fail(backend.ErrNoFrame)
		return
	}
	width := b.st.strokeWidth * b.averageScale()
	pad := width*math.Max(b.st.miterLimit, 1)/2 + 1
	r := b.path.bounds()
	r = rect{x0: r.x0 - pad, y0: r.y0 - pad, x1: r.x1 + pad, y1: r.y1 + pad}
	b.draw(b.st.stroke, r, func(ctx *gg.Context) error {
		ctx.SetLineWidth(width)
		ctx.SetMiterLimit(b.st.miterLimit)
		ctx.SetLineCap(toCap(b.st.lineCap))
		ctx.SetLineJoin(toJoin(b.st.lineJoin))
		return ctx.Stroke()
	})
}

func toCap(c backend.LineCap) gg.LineCap {
	switch c {
	case backend.CapRound:
		return gg.LineCapRound
	case backend.CapSquare:
		return gg.LineCapSquare
	}
	return gg.LineCapButt
}

func toJoin(j backend.LineJoin) gg.LineJoin {
	switch j {
	case backend.JoinRound:
		return gg.LineJoinRound
	case backend.JoinBevel:
		return gg.LineJoinBevel
	}
	return gg.LineJoinMiter
}

func (b *Backend) Rect(x, y, w, h float64) {
	b.shape(func(p *gg.Path) { p.Rectangle(x, y, w, h) })
}

// RoundedRect appends a rectangle with equal corner radii. Tiny radii and
// flipped rectangles take the per-corner path, which handles both.
func (b *Backend) RoundedRect(x, y, w, h, r float64) {
	if r < 0.1 || w < 0 || h < 0 {
		b.RoundedRectVarying(x, y, w, h, r, r, r, r)
		return
	}
	b.shape(func(p *gg.Path) { p.RoundedRectangle(x, y, w, h, r) })
}

// RoundedRectVarying appends a rectangle with an independent radius per
// corner. Radii are clamped to half the shorter side. gg has no per-corner
// variant.
func (b *Backend) RoundedRectVarying(x, y, w, h, tl, tr, br, bl float64) {
	if tl < 0.1 && tr < 0.1 && br < 0.1 && bl < 0.1 {
		b.Rect(x, y, w, h)
		return
	}
	halfw := math.Abs(w) * 0.5
	halfh := math.Abs(h) * 0.5
	sx, sy := sign(w), sign(h)
	rxBL, ryBL := math.Min(bl, halfw)*sx, math.Min(bl, halfh)*sy
	rxBR, ryBR := math.Min(br, halfw)*sx, math.Min(br, halfh)*sy
	rxTR, ryTR := math.Min(tr, halfw)*sx, math.Min(tr, halfh)*sy
	rxTL, ryTL := math.Min(tl, halfw)*sx, math.Min(tl, halfh)*sy
	k := 1 - kappa90

	b.MoveTo(x, y+ryTL)
	b.LineTo(x, y+h-ryBL)
	b.BezierTo(x, y+h-ryBL*k, x+rxBL*k, y+h, x+rxBL, y+h)
	b.LineTo(x+w-rxBR, y+h)
	b.BezierTo(x+w-rxBR*k, y+h, x+w, y+h-ryBR*k, x+w, y+h-ryBR)
	b.LineTo(x+w, y+ryTR)
	b.BezierTo(x+w, y+ryTR*k, x+w-rxTR*k, y, x+w-rxTR, y)
	b.LineTo(x+rxTL, y)
	b.BezierTo(x+rxTL*k, y, x, y+ryTL*k, x, y+ryTL)
	b.ClosePath()
}

func (b *Backend) Ellipse(cx, cy, rx, ry float64) {
	b.shape(func(p *gg.Path) { p.Ellipse(cx, cy, rx, ry) })
}

func (b *Backend) Circle(cx, cy, r float64) {
	b.shape(func(p *gg.Path) { p.Circle(cx, cy, r) })
}

func sign(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}

func normalize(x, y float64) (float64, float64) {
	d := math.Hypot(x, y)
	if d > 1e-6 {
		return x / d, y / d
	}
	return x, y
}

func ptEquals(x1, y1, x2, y2 float64) bool {
	dx, dy := x2-x1, y2-y1
	return dx*dx+dy*dy < distTol*distTol
}

// distPtSeg returns the squared distance from (x, y) to segment p-q.
func distPtSeg(x, y, px, py, qx, qy float64) float64 {
	pqx, pqy := qx-px, qy-py
	dx, dy := x-px, y-py
	d := pqx*pqx + pqy*pqy
	t := pqx*dx + pqy*dy
	if d > 0 {
		t /= d
	}
	t = clamp01(t)
	dx = px + t*pqx - x
	dy = py + t*pqy - y
	return dx*dx + dy*dy
}

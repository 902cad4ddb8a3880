package raster

import (
	"math"

	"github.com/gogpu/gg"

	"github.com/zelixir/scenic-driver-gg/backend"
)

func toRGBA(c backend.Color, alpha float64) gg.RGBA {
	return gg.RGBA{R: c.R, G: c.G, B: c.B, A: c.A * alpha}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0 || math.IsNaN(v):
		return 0
	case v > 1:
		return 1
	}
	return v
}

var white = gg.RGBA{R: 1, G: 1, B: 1, A: 1}

// draw rasterises the current path with op. Solid unclipped sources paint
// the canvas directly. Anything else renders white coverage into the layer
// and is composited through the source brush inside bounds: gg's software
// renderer only fills with solid patterns and has no clip stack.
func (b *Backend) draw(src source, bounds rect, op func(ctx *gg.Context) error) {
	if src.paint == nil && b.st.scissor == nil {
		b.path.replay(b.ctx)
		b.ctx.SetFillBrush(gg.Solid(toRGBA(src.color, b.st.alpha)))
		b.fail(op(b.ctx))
		return
	}
	b.path.replay(b.layer)
	b.layer.SetFillBrush(gg.Solid(white))
	b.fail(op(b.layer))
	b.composite(b.brush(src), bounds)
}

// brush returns the device-space brush of a source. Paints are evaluated
// in the coordinate space that was current when the paint was set, so each
// pixel center is mapped back through that inverse transform.
func (b *Backend) brush(src source) gg.Brush {
	alpha := b.st.alpha
	var user gg.Brush
	switch p := src.paint.(type) {
	case nil:
		return gg.Solid(toRGBA(src.color, alpha))
	case backend.LinearGradient:
		user = linearGradient(p, alpha)
	case backend.RadialGradient:
		user = radialGradient(p, alpha)
	case backend.BoxGradient:
		user = boxGradient(p, alpha)
	case backend.ImagePattern:
		img, ok := b.images[p.Image]
		if !ok {
			return gg.Solid(gg.Transparent)
		}
		user = imagePattern(p, img, alpha)
	default:
		return gg.Solid(toRGBA(src.color, alpha))
	}
	inv := src.xform.Invert()
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		q := inv.TransformPoint(gg.Pt(x, y))
		return user.ColorAt(q.X, q.Y)
	})
}

// composite blends shade over the canvas wherever the layer has coverage,
// limited to bounds and the scissor, then clears the layer.
func (b *Backend) composite(shade gg.Brush, bounds rect) {
	defer b.layer.Clear()
	if !(bounds.x0 <= bounds.x1 && bounds.y0 <= bounds.y1) {
		return
	}

	w, h := b.ctx.Width(), b.ctx.Height()
	r := rect{x1: float64(w), y1: float64(h)}
	if b.st.scissor != nil {
		r = r.intersect(*b.st.scissor)
	}
	r = r.intersect(rect{
		x0: math.Floor(bounds.x0) - 1, y0: math.Floor(bounds.y0) - 1,
		x1: math.Ceil(bounds.x1) + 1, y1: math.Ceil(bounds.y1) + 1,
	})
	x0, y0 := int(math.Floor(r.x0+0.5)), int(math.Floor(r.y0+0.5))
	x1, y1 := int(math.Floor(r.x1+0.5)), int(math.Floor(r.y1+0.5))

	dst := b.ctx.ResizeTarget()
	cov := b.layer.ResizeTarget()
	for y := max(0, y0); y < min(h, y1); y++ {
		for x := max(0, x0); x < min(w, x1); x++ {
			a := cov.GetPixel(x, y).A
			if a <= 0 {
				continue
			}
			c := shade.ColorAt(float64(x)+0.5, float64(y)+0.5)
			c.A *= a
			if c.A <= 0 {
				continue
			}
			dst.SetPixel(x, y, over(c, dst.GetPixel(x, y)))
		}
	}
}

// over composites straight-alpha src onto dst.
func over(src, dst gg.RGBA) gg.RGBA {
	inv := 1 - src.A
	a := src.A + dst.A*inv
	if a <= 0 {
		return gg.RGBA{}
	}
	return gg.RGBA{
		R: (src.R*src.A + dst.R*dst.A*inv) / a,
		G: (src.G*src.A + dst.G*dst.A*inv) / a,
		B: (src.B*src.A + dst.B*dst.A*inv) / a,
		A: a,
	}
}

func linearGradient(p backend.LinearGradient, alpha float64) *gg.LinearGradientBrush {
	return gg.NewLinearGradientBrush(p.SX, p.SY, p.EX, p.EY).
		AddColorStop(0, toRGBA(p.Inner, alpha)).
		AddColorStop(1, toRGBA(p.Outer, alpha))
}

// radialGradient ramps from the inner to the outer radius. Rings thinner
// than a pixel are widened to one pixel around their middle.
func radialGradient(p backend.RadialGradient, alpha float64) *gg.RadialGradientBrush {
	in, out := p.InnerRadius, p.OuterRadius
	if !(out-in >= 1) {
		mid := (in + out) / 2
		in, out = mid-0.5, mid+0.5
	}
	return gg.NewRadialGradientBrush(p.CX, p.CY, in, out).
		AddColorStop(0, toRGBA(p.Inner, alpha)).
		AddColorStop(1, toRGBA(p.Outer, alpha))
}

// boxGradient shades by the signed distance to a rounded rectangle, feathered
// across the boundary. The ramp along that distance is a gg gradient.
func boxGradient(p backend.BoxGradient, alpha float64) gg.CustomBrush {
	cx, cy := p.X+p.W/2, p.Y+p.H/2
	hx, hy := p.W/2, p.H/2
	r := math.Min(p.Radius, math.Min(hx, hy))
	feather := math.Max(1, p.Feather)
	ramp := gg.NewLinearGradientBrush(0, 0, 1, 0).
		AddColorStop(0, toRGBA(p.Inner, alpha)).
		AddColorStop(1, toRGBA(p.Outer, alpha))
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		ex, ey := hx-r, hy-r
		qx, qy := math.Abs(x-cx)-ex, math.Abs(y-cy)-ey
		outside := math.Hypot(math.Max(qx, 0), math.Max(qy, 0))
		inside := math.Min(math.Max(qx, qy), 0)
		sd := outside + inside - r
		return ramp.ColorAt((sd+feather/2)/feather, 0)
	}).WithName("box-gradient")
}

// imagePattern repeats img with its top-left corner at (OX, OY), scaled to
// W×H and rotated by Angle around that corner.
func imagePattern(p backend.ImagePattern, img *gg.ImageBuf, alpha float64) gg.CustomBrush {
	iw, ih := img.Bounds()
	sin, cos := math.Sincos(-p.Angle)
	a := alpha * clamp01(p.Alpha)
	return gg.NewCustomBrush(func(x, y float64) gg.RGBA {
		if iw == 0 || ih == 0 || p.W == 0 || p.H == 0 {
			return gg.RGBA{}
		}
		dx, dy := x-p.OX, y-p.OY
		u := dx*cos - dy*sin
		v := dx*sin + dy*cos
		px := wrap(int(math.Floor(u/p.W*float64(iw))), iw)
		py := wrap(int(math.Floor(v/p.H*float64(ih))), ih)
		r, g, bl, al := img.GetRGBA(px, py)
		return gg.RGBA{
			R: float64(r) / 255,
			G: float64(g) / 255,
			B: float64(bl) / 255,
			A: float64(al) / 255 * a,
		}
	}).WithName("image-pattern")
}

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}

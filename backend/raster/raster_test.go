package raster

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"golang.org/x/image/font/gofont/goregular"

	"github.com/zelixir/scenic-driver-gg/backend"
)

var (
	red   = backend.Color{R: 1, A: 1}
	black = backend.Color{A: 1}
)

func newFrame(t *testing.T, w, h int) *Backend {
	t.Helper()
	b := New()
	b.SetClearColor(black)
	b.BeginFrame(w, h, 1)
	return b
}

func isRed(c color.RGBA) bool   { return c.R > 200 && c.G < 40 && c.B < 40 && c.A > 200 }
func isBlack(c color.RGBA) bool { return c.R < 40 && c.G < 40 && c.B < 40 }

func TestFillRect(t *testing.T) {
	b := newFrame(t, 10, 10)
	b.SetFillColor(red)
	b.BeginPath()
	b.Rect(2, 2, 6, 6)
	b.Fill()
	if err := b.EndFrame(); err != nil {
		t.Fatalf("EndFrame() error = %v", err)
	}
	if errs := b.DrainErrors(); len(errs) != 0 {
		t.Fatalf("DrainErrors() = %v", errs)
	}

	img := b.Image()
	if c := img.RGBAAt(5, 5); !isRed(c) {
		t.Errorf("pixel(5,5) = %v, want red", c)
	}
	if c := img.RGBAAt(0, 0); !isBlack(c) {
		t.Errorf("pixel(0,0) = %v, want black", c)
	}
}

func TestScissor(t *testing.T) {
	b := newFrame(t, 10, 10)
	b.Scissor(0, 0, 5, 10)
	b.SetFillColor(red)
	b.BeginPath()
	b.Rect(0, 0, 10, 10)
	b.Fill()
	_ = b.EndFrame()

	img := b.Image()
	if c := img.RGBAAt(2, 5); !isRed(c) {
		t.Errorf("pixel(2,5) = %v, want red", c)
	}
	if c := img.RGBAAt(8, 5); !isBlack(c) {
		t.Errorf("pixel(8,5) = %v, want black outside scissor", c)
	}
}

func TestTranslateAffectsGeometry(t *testing.T) {
	b := newFrame(t, 20, 20)
	b.Translate(10, 10)
	b.SetFillColor(red)
	b.BeginPath()
	b.Rect(0, 0, 5, 5)
	b.Fill()
	_ = b.EndFrame()

	img := b.Image()
	if c := img.RGBAAt(12, 12); !isRed(c) {
		t.Errorf("pixel(12,12) = %v, want red", c)
	}
	if c := img.RGBAAt(2, 2); !isBlack(c) {
		t.Errorf("pixel(2,2) = %v, want black", c)
	}
}

func TestGradientFill(t *testing.T) {
	b := newFrame(t, 20, 4)
	b.SetFillPaint(backend.LinearGradient{SX: 0, EX: 20, Inner: black, Outer: red})
	b.BeginPath()
	b.Rect(0, 0, 20, 4)
	b.Fill()
	_ = b.EndFrame()

	img := b.Image()
	left, right := img.RGBAAt(1, 2), img.RGBAAt(18, 2)
	if left.R >= right.R {
		t.Errorf("gradient R left = %d, right = %d, want increasing", left.R, right.R)
	}
	if !isRed(right) {
		t.Errorf("pixel(18,2) = %v, want near red", right)
	}
}

func TestStrokeUsesStrokeColor(t *testing.T) {
	b := newFrame(t, 10, 10)
	b.SetFillColor(backend.Color{G: 1, A: 1})
	b.SetStrokeColor(red)
	b.SetStrokeWidth(2)
	b.BeginPath()
	b.MoveTo(0, 5)
	b.LineTo(10, 5)
	b.Stroke()
	_ = b.EndFrame()

	if c := b.Image().RGBAAt(5, 5); !isRed(c) {
		t.Errorf("pixel(5,5) = %v, want red", c)
	}
}

func TestPixelRatio(t *testing.T) {
	b := New()
	b.BeginFrame(10, 8, 2)
	if w, h := b.Size(); w != 20 || h != 16 {
		t.Errorf("Size() = %d, %d, want 20, 16", w, h)
	}
}

func TestStateStackLimits(t *testing.T) {
	b := newFrame(t, 4, 4)
	b.Restore()
	for range MaxStates + 1 {
		b.Save()
	}
	errs := b.DrainErrors()
	if len(errs) != 2 {
		t.Fatalf("DrainErrors() = %v, want 2 errors", errs)
	}
	if !errors.Is(errs[0], ErrStateUnderflow) {
		t.Errorf("errs[0] = %v, want ErrStateUnderflow", errs[0])
	}
	if !errors.Is(errs[1], ErrStateOverflow) {
		t.Errorf("errs[1] = %v, want ErrStateOverflow", errs[1])
	}
}

func TestRestoreRecoversStyle(t *testing.T) {
	b := newFrame(t, 4, 4)
	b.SetStrokeWidth(3)
	b.Save()
	b.SetStrokeWidth(7)
	b.Translate(1, 1)
	b.Restore()
	if b.st.strokeWidth != 3 {
		t.Errorf("strokeWidth = %v, want 3", b.st.strokeWidth)
	}
	if m := b.st.xform; m.C != 0 || m.F != 0 {
		t.Errorf("transform = %+v, want no translation", m)
	}
}

func TestDrawOutsideFrame(t *testing.T) {
	b := New()
	b.BeginPath()
	b.Rect(0, 0, 1, 1)
	b.Fill()
	if errs := b.DrainErrors(); len(errs) != 1 || !errors.Is(errs[0], backend.ErrNoFrame) {
		t.Errorf("DrainErrors() = %v, want [ErrNoFrame]", errs)
	}
	if err := b.EndFrame(); !errors.Is(err, backend.ErrNoFrame) {
		t.Errorf("EndFrame() error = %v, want ErrNoFrame", err)
	}
}

func TestImages(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 3))
	src.Set(1, 1, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	b := New()
	img, err := b.CreateImageMem(buf.Bytes())
	if err != nil {
		t.Fatalf("CreateImageMem() error = %v", err)
	}
	if w, h, ok := b.ImageSize(img); !ok || w != 4 || h != 3 {
		t.Errorf("ImageSize() = %d, %d, %v, want 4, 3, true", w, h, ok)
	}
	b.DeleteImage(img)
	if _, _, ok := b.ImageSize(img); ok {
		t.Error("ImageSize() ok after DeleteImage")
	}
	if _, err := b.CreateImageMem([]byte{0, 1, 2}); !errors.Is(err, backend.ErrImageDecode) {
		t.Errorf("CreateImageMem(garbage) error = %v, want ErrImageDecode", err)
	}
}

func TestFontErrors(t *testing.T) {
	b := New()
	if _, err := b.CreateFontMem("bad", []byte("not a font")); !errors.Is(err, backend.ErrFontLoad) {
		t.Errorf("CreateFontMem() error = %v, want ErrFontLoad", err)
	}
	if _, err := b.CreateFont("missing", "/does/not/exist.ttf"); !errors.Is(err, backend.ErrFontLoad) {
		t.Errorf("CreateFont() error = %v, want ErrFontLoad", err)
	}
	if _, ok := b.FindFont("bad"); ok {
		t.Error("FindFont() found a font that failed to load")
	}
}

func TestTextWithoutFont(t *testing.T) {
	b := newFrame(t, 4, 4)
	if rows := b.TextBreakLines("hello", 100, 3); rows != nil {
		t.Errorf("TextBreakLines() = %v, want nil", rows)
	}
	if asc, desc, lh := b.TextMetrics(); asc != 0 || desc != 0 || lh != 0 {
		t.Errorf("TextMetrics() = %v, %v, %v, want zeros", asc, desc, lh)
	}
	if adv := b.Text(0, 0, "hello"); adv != 0 {
		t.Errorf("Text() = %v, want 0", adv)
	}
}

// midRed is black blended halfway to red in linear light, back in sRGB.
const midRed = 0.7354

func near(got, want float64) bool { return math.Abs(got-want) < 0.005 }

func TestLinearGradient(t *testing.T) {
	g := linearGradient(backend.LinearGradient{EX: 10, Inner: black, Outer: red}, 1)
	if c := g.ColorAt(-5, 0); c.R != 0 {
		t.Errorf("before start R = %v, want 0", c.R)
	}
	if c := g.ColorAt(5, 3); !near(c.R, midRed) {
		t.Errorf("midpoint R = %v, want %v", c.R, midRed)
	}
	if c := g.ColorAt(20, 0); !near(c.R, 1) {
		t.Errorf("past end R = %v, want 1", c.R)
	}
}

func TestRadialGradient(t *testing.T) {
	tests := []struct {
		name  string
		inner float64
		outer float64
		x     float64
		wantR float64
	}{
		{"center", 0, 10, 0, 1},
		{"half radius", 0, 10, 5, midRed},
		{"outside", 0, 10, 15, 0},
		{"thin ring inside", 5, 5, 2, 1},
		{"thin ring outside", 5, 5, 8, 0},
		{"inverted radii", 6, 4, 8, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := radialGradient(backend.RadialGradient{
				InnerRadius: tt.inner, OuterRadius: tt.outer, Inner: red, Outer: black,
			}, 1)
			if c := g.ColorAt(tt.x, 0); !near(c.R, tt.wantR) {
				t.Errorf("ColorAt(%v, 0).R = %v, want %v", tt.x, c.R, tt.wantR)
			}
		})
	}
}

func TestBoxGradient(t *testing.T) {
	g := boxGradient(backend.BoxGradient{W: 10, H: 10, Feather: 2, Inner: red, Outer: black}, 0.5)
	c := g.ColorAt(5, 5)
	if !near(c.R, 1) || !near(c.A, 0.5) {
		t.Errorf("center = %+v, want red at alpha 0.5", c)
	}
	if c := g.ColorAt(20, 5); !near(c.R, 0) {
		t.Errorf("outside R = %v, want 0", c.R)
	}
	if c := g.ColorAt(10, 5); c.R <= 0 || c.R >= 1 {
		t.Errorf("edge R = %v, want between stops", c.R)
	}
}

func TestPaintUsesTransformAtSet(t *testing.T) {
	b := newFrame(t, 30, 4)
	b.Translate(10, 0)
	b.SetFillPaint(backend.LinearGradient{EX: 10, Inner: black, Outer: red})
	b.ResetTransform()

	br := b.brush(b.st.fill)
	if c := br.ColorAt(10, 0); c.R != 0 {
		t.Errorf("ColorAt(10, 0).R = %v, want 0", c.R)
	}
	if c := br.ColorAt(20, 0); !near(c.R, 1) {
		t.Errorf("ColorAt(20, 0).R = %v, want 1", c.R)
	}
}

func TestImagePatternFill(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 1, 1))
	src.Set(0, 0, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		t.Fatal(err)
	}

	b := newFrame(t, 8, 8)
	img, err := b.CreateImageMem(buf.Bytes())
	if err != nil {
		t.Fatalf("CreateImageMem() error = %v", err)
	}
	b.SetFillPaint(backend.ImagePattern{W: 1, H: 1, Alpha: 1, Image: img})
	b.BeginPath()
	b.Rect(0, 0, 8, 8)
	b.Fill()
	_ = b.EndFrame()

	if c := b.Image().RGBAAt(4, 4); c.G < 200 || c.R > 40 {
		t.Errorf("pixel(4,4) = %v, want green", c)
	}

	b.DeleteImage(img)
	if c := b.brush(b.st.fill).ColorAt(4, 4); c.A != 0 {
		t.Errorf("deleted image ColorAt() = %+v, want transparent", c)
	}
}

func TestShapesThroughTransform(t *testing.T) {
	tests := []struct {
		name  string
		draw  func(b *Backend)
		red   [][2]int
		black [][2]int
	}{
		{
			name:  "circle",
			draw:  func(b *Backend) { b.Circle(0, 0, 5) },
			red:   [][2]int{{20, 20}, {27, 20}},
			black: [][2]int{{32, 20}, {2, 2}},
		},
		{
			name:  "ellipse",
			draw:  func(b *Backend) { b.Ellipse(0, 0, 8, 2) },
			red:   [][2]int{{20, 20}, {33, 20}},
			black: [][2]int{{20, 27}, {38, 20}},
		},
		{
			name:  "rounded rect",
			draw:  func(b *Backend) { b.RoundedRect(-5, -5, 10, 10, 2) },
			red:   [][2]int{{20, 20}, {12, 20}},
			black: [][2]int{{10, 10}, {32, 20}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newFrame(t, 40, 40)
			b.Translate(20, 20)
			b.Scale(2, 2)
			b.SetFillColor(red)
			b.BeginPath()
			tt.draw(b)
			b.Fill()
			_ = b.EndFrame()

			img := b.Image()
			for _, p := range tt.red {
				if c := img.RGBAAt(p[0], p[1]); !isRed(c) {
					t.Errorf("pixel(%d,%d) = %v, want red", p[0], p[1], c)
				}
			}
			for _, p := range tt.black {
				if c := img.RGBAAt(p[0], p[1]); !isBlack(c) {
					t.Errorf("pixel(%d,%d) = %v, want black", p[0], p[1], c)
				}
			}
		})
	}
}

func TestRoundedRectFlipped(t *testing.T) {
	b := newFrame(t, 10, 10)
	b.SetFillColor(red)
	b.BeginPath()
	b.RoundedRect(8, 8, -6, -6, 2)
	b.Fill()
	_ = b.EndFrame()

	img := b.Image()
	if c := img.RGBAAt(5, 5); !isRed(c) {
		t.Errorf("pixel(5,5) = %v, want red", c)
	}
	if c := img.RGBAAt(0, 0); !isBlack(c) {
		t.Errorf("pixel(0,0) = %v, want black", c)
	}
}

func TestPathBounds(t *testing.T) {
	b := newFrame(t, 10, 10)
	b.BeginPath()
	if r := b.path.bounds(); r.x0 <= r.x1 {
		t.Errorf("empty bounds = %+v, want inverted", r)
	}
	b.Translate(1, 1)
	b.Rect(1, 2, 4, 5)
	want := rect{x0: 2, y0: 3, x1: 6, y1: 8}
	if r := b.path.bounds(); r != want {
		t.Errorf("bounds() = %+v, want %+v", r, want)
	}
	b.BeginPath()
	if b.path.HasCurrentPoint() {
		t.Error("BeginPath() kept the pen")
	}
}

func TestWrap(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{0, 4, 0}, {5, 4, 1}, {-1, 4, 3}, {-8, 4, 0},
	}
	for _, tt := range tests {
		if got := wrap(tt.i, tt.n); got != tt.want {
			t.Errorf("wrap(%d, %d) = %d, want %d", tt.i, tt.n, got, tt.want)
		}
	}
}

func TestRegistered(t *testing.T) {
	b, err := backend.New("raster")
	if err != nil {
		t.Fatalf("New(raster) error = %v", err)
	}
	if b.Name() != "raster" {
		t.Errorf("Name() = %q, want raster", b.Name())
	}
}

func loadGoRegular(t *testing.T, b *Backend) backend.Font {
	t.Helper()
	f, err := b.CreateFontMem("go", goregular.TTF)
	if err != nil {
		t.Fatalf("CreateFontMem() error = %v", err)
	}
	return f
}

func TestTextMetrics(t *testing.T) {
	b := newFrame(t, 4, 4)
	b.SetFont(loadGoRegular(t, b))
	b.SetFontSize(20)
	asc, desc, lh := b.TextMetrics()
	if asc <= 0 {
		t.Errorf("ascender = %v, want > 0", asc)
	}
	if desc >= 0 {
		t.Errorf("descender = %v, want < 0", desc)
	}
	if lh < asc-desc {
		t.Errorf("line height = %v, want >= %v", lh, asc-desc)
	}

	b.SetTextLineHeight(2)
	if _, _, lh2 := b.TextMetrics(); lh2 != 2*lh {
		t.Errorf("line height x2 = %v, want %v", lh2, 2*lh)
	}
}

func TestTextBreakLinesProgress(t *testing.T) {
	b := newFrame(t, 4, 4)
	b.SetFont(loadGoRegular(t, b))
	b.SetFontSize(16)

	s := "the quick brown fox jumps over the lazy dog"
	rows := b.TextBreakLines(s, 60, 100)
	if len(rows) < 2 {
		t.Fatalf("TextBreakLines() = %d rows, want several", len(rows))
	}
	for i, r := range rows {
		if r.Next <= r.Start {
			t.Errorf("row %d Next = %d, Start = %d, want progress", i, r.Next, r.Start)
		}
		if r.End < r.Start || r.End > len(s) {
			t.Errorf("row %d End = %d out of range", i, r.End)
		}
	}
	if last := rows[len(rows)-1]; last.Next != len(s) {
		t.Errorf("last row Next = %d, want %d", last.Next, len(s))
	}

	if got := b.TextBreakLines(s, 60, 2); len(got) != 2 {
		t.Errorf("TextBreakLines(maxRows=2) = %d rows, want 2", len(got))
	}
}

func TestTextDraws(t *testing.T) {
	b := newFrame(t, 60, 30)
	b.SetFont(loadGoRegular(t, b))
	b.SetFontSize(20)
	b.SetFillColor(backend.Color{R: 1, G: 1, B: 1, A: 1})
	if adv := b.Text(2, 22, "HH"); adv <= 0 {
		t.Fatalf("Text() advance = %v, want > 0", adv)
	}
	_ = b.EndFrame()

	img := b.Image()
	lit := 0
	for y := 0; y < 30; y++ {
		for x := 0; x < 60; x++ {
			if img.RGBAAt(x, y).R > 128 {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("Text() drew no pixels")
	}
}

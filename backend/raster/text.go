package raster

import (
	"fmt"
	"math"

	"github.com/gogpu/gg/text"
	"golang.org/x/text/unicode/norm"

	"github.com/zelixir/scenic-driver-gg/backend"
)

type faceKey struct {
	font backend.Font
	size float64
}

func (b *Backend) FindFont(name string) (backend.Font, bool) {
	f, ok := b.fonts[name]
	return f, ok
}

func (b *Backend) CreateFont(name, path string) (backend.Font, error) {
	src, err := text.NewFontSourceFromFile(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", backend.ErrFontLoad, path, err)
	}
	return b.addFont(name, src), nil
}

func (b *Backend) CreateFontMem(name string, data []byte) (backend.Font, error) {
	src, err := text.NewFontSource(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", backend.ErrFontLoad, name, err)
	}
	return b.addFont(name, src), nil
}

func (b *Backend) addFont(name string, src *text.FontSource) backend.Font {
	b.nextFont++
	f := backend.Font(b.nextFont)
	b.fonts[name] = f
	b.sources[f] = src
	return f
}

func (b *Backend) SetFont(f backend.Font)       { b.st.font = f }
func (b *Backend) SetFontSize(size float64)     { b.st.fontSize = size }
func (b *Backend) SetFontBlur(blur float64)     { b.st.fontBlur = blur }
func (b *Backend) SetTextAlign(a backend.Align) { b.st.align = a }
func (b *Backend) SetTextLineHeight(lh float64) { b.st.lineHeight = lh }

// face returns the current font at size×scale, or nil without a font.
func (b *Backend) face(scale float64) text.Face {
	src, ok := b.sources[b.st.font]
	if !ok || b.st.fontSize <= 0 {
		return nil
	}
	size := math.Round(b.st.fontSize*scale*100) / 100
	key := faceKey{font: b.st.font, size: size}
	if f, ok := b.faces[key]; ok {
		return f
	}
	f := src.Face(size)
	b.faces[key] = f
	return f
}

// TextMetrics reports metrics in user units. The descender is negative.
func (b *Backend) TextMetrics() (ascender, descender, lineHeight float64) {
	f := b.face(1)
	if f == nil {
		return 0, 0, 0
	}
	m := f.Metrics()
	return m.Ascent, -m.Descent, m.LineHeight() * b.st.lineHeight
}

// TextBreakLines wraps s at word boundaries, falling back to characters for
// words wider than width. It returns nil without a current font.
func (b *Backend) TextBreakLines(s string, width float64, maxRows int) []backend.TextRow {
	f := b.face(1)
	if f == nil || s == "" || maxRows <= 0 {
		return nil
	}
	lines := text.WrapText(s, f, width, text.WrapWordChar)
	n := min(len(lines), maxRows)
	rows := make([]backend.TextRow, 0, n)
	for i := range n {
		next := len(s)
		if i+1 < len(lines) {
			next = lines[i+1].Start
		}
		rows = append(rows, backend.TextRow{
			Start: lines[i].Start,
			End:   lines[i].End,
			Next:  next,
			Width: f.Advance(lines[i].Text),
		})
	}
	return rows
}

// Text draws s with the fill color, positioned by the text alignment, and
// returns its advance in user units.
func (b *Backend) Text(x, y float64, s string) float64 {
	if !b.inFrame {
		b.fail(backend.ErrNoFrame)
		return 0
	}
	s = norm.NFC.String(s)
	scale := b.averageScale()
	if scale <= 0 {
		return 0
	}
	layout, device := b.face(1), b.face(scale)
	if layout == nil || device == nil {
		return 0
	}
	adv := layout.Advance(s)
	m := layout.Metrics()

	switch {
	case b.st.align&backend.AlignCenter != 0:
		x -= adv / 2
	case b.st.align&backend.AlignRight != 0:
		x -= adv
	}
	switch {
	case b.st.align&backend.AlignTop != 0:
		y += m.Ascent
	case b.st.align&backend.AlignMiddle != 0:
		y += (m.Ascent - m.Descent) / 2
	case b.st.align&backend.AlignBottom != 0:
		y -= m.Descent
	}

	pos := b.pt(x, y)
	if b.st.fill.paint == nil && b.st.scissor == nil {
		b.ctx.SetFont(device)
		b.ctx.SetColor(toRGBA(b.st.fill.color, b.st.alpha).Color())
		b.ctx.DrawString(s, pos.X, pos.Y)
		return adv
	}
	size := b.st.fontSize * scale
	b.layer.SetFont(device)
	b.layer.SetColor(white.Color())
	b.layer.DrawString(s, pos.X, pos.Y)
	b.composite(b.brush(b.st.fill), rect{
		x0: pos.X - size, y0: pos.Y - 2*size,
		x1: pos.X + adv*scale + size, y1: pos.Y + size,
	})
	return adv
}

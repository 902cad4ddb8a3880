package event

import (
	"fmt"
	"io"

	"github.com/zelixir/scenic-driver-gg/wire"
)

// Encode returns the payload of ev: its kind followed by its fields.
// The frame length prefix is not included.
func Encode(ev Event) []byte {
	e := wire.NewEncoder(32)
	e.Uint32(uint32(ev.Kind()))
	ev.encode(e)
	return e.Bytes()
}

// Decode parses a payload produced by Encode.
func Decode(payload []byte) (Event, error) {
	d := wire.NewDecoder(payload)
	k, err := d.Uint32()
	if err != nil {
		return nil, err
	}

	var ev Event
	switch Kind(k) {
	case KindClose:
		ev = Close{}
	case KindStats:
		ev, err = decodeStats(d)
	case KindLog:
		ev = Log{Text: string(d.Rest())}
	case KindWrite:
		ev = Write{Text: string(d.Rest())}
	case KindInspect:
		ev = Inspect{Data: append([]byte{}, d.Rest()...)}
	case KindReshape:
		var r Reshape
		r.Width, r.Height, r.FrameWidth, r.FrameHeight, err = int32x4(d)
		ev = r
	case KindReady:
		var r Ready
		r.Root, err = d.Int32()
		ev = r
	case KindDrawReady:
		var r DrawReady
		r.ID, err = d.Uint32()
		ev = r
	case KindKey:
		var key Key
		key.Key, key.Scancode, key.Action, key.Mods, err = int32x4(d)
		ev = key
	case KindCodepoint:
		ev, err = decodeCodepoint(d)
	case KindCursorPos:
		var c CursorPos
		var f [2]float32
		err = d.Float32s(f[:])
		c.X, c.Y = f[0], f[1]
		ev = c
	case KindMouseButton:
		ev, err = decodeMouseButton(d)
	case KindScroll:
		var s Scroll
		var f [4]float32
		err = d.Float32s(f[:])
		s.DX, s.DY, s.X, s.Y = f[0], f[1], f[2], f[3]
		ev = s
	case KindCursorEnter:
		ev, err = decodeCursorEnter(d)
	case KindDropPaths:
		ev, err = decodeDropPaths(d)
	case KindCacheMiss:
		ev = CacheMiss{Key: string(d.Rest())}
	case KindFontMiss:
		ev = FontMiss{Key: string(d.Rest())}
	default:
		return nil, fmt.Errorf("%w: %#x", ErrUnknownKind, k)
	}
	if err != nil {
		return nil, err
	}
	if d.Remaining() > 0 {
		return nil, fmt.Errorf("event: %d trailing bytes after %s", d.Remaining(), Kind(k))
	}
	return ev, nil
}

// Read reads one framed event from r.
func Read(r io.Reader) (Event, error) {
	payload, err := wire.ReadFrame(r, 0)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}

func int32x4(d *wire.Decoder) (a, b, c, e int32, err error) {
	var v [4]int32
	for i := range v {
		if v[i], err = d.Int32(); err != nil {
			return 0, 0, 0, 0, err
		}
	}
	return v[0], v[1], v[2], v[3], nil
}

func decodeStats(d *wire.Decoder) (Stats, error) {
	var s Stats
	var err error
	if s.InputFlags, err = d.Uint32(); err != nil {
		return s, err
	}
	if s.X, s.Y, s.Width, s.Height, err = int32x4(d); err != nil {
		return s, err
	}
	for _, b := range []*bool{&s.Focused, &s.Resizable, &s.Iconified, &s.Maximized, &s.Visible} {
		if *b, err = d.Bool(); err != nil {
			return s, err
		}
	}
	return s, nil
}

func decodeCodepoint(d *wire.Decoder) (Codepoint, error) {
	var c Codepoint
	var err error
	if c.Codepoint, err = d.Uint32(); err != nil {
		return c, err
	}
	c.Mods, err = d.Int32()
	return c, err
}

func decodeMouseButton(d *wire.Decoder) (MouseButton, error) {
	var m MouseButton
	var err error
	for _, v := range []*int32{&m.Button, &m.Action, &m.Mods} {
		if *v, err = d.Int32(); err != nil {
			return m, err
		}
	}
	if m.X, err = d.Float32(); err != nil {
		return m, err
	}
	m.Y, err = d.Float32()
	return m, err
}

func decodeCursorEnter(d *wire.Decoder) (CursorEnter, error) {
	var c CursorEnter
	var err error
	if c.Entered, err = d.Int32(); err != nil {
		return c, err
	}
	if c.X, err = d.Float32(); err != nil {
		return c, err
	}
	c.Y, err = d.Float32()
	return c, err
}

func decodeDropPaths(d *wire.Decoder) (DropPaths, error) {
	n, err := d.Uint32()
	if err != nil {
		return DropPaths{}, err
	}
	// Each path needs at least its length field.
	if int(n) > d.Remaining()/4 {
		return DropPaths{}, &wire.DecodeError{Field: "drop paths", Offset: d.Offset(), Need: int(n) * 4, Have: d.Remaining(), Err: io.ErrUnexpectedEOF}
	}
	paths := make([]string, 0, n)
	for range n {
		p, err := d.LenString()
		if err != nil {
			return DropPaths{}, err
		}
		paths = append(paths, p)
	}
	return DropPaths{Paths: paths}, nil
}

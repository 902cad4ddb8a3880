package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Order is the byte order of every field inside a payload. The driver and its
// caller always share one machine, so fields travel in host order.
var Order = binary.NativeEndian

// Decoding errors.
var (
	ErrInvalidUTF8 = errors.New("wire: string is not valid UTF-8")
	ErrNegativeLen = errors.New("wire: negative length")
)

// DecodeError reports a read that the payload could not satisfy.
// It unwraps to io.ErrUnexpectedEOF for truncation and to ErrInvalidUTF8 for
// malformed strings.
type DecodeError struct {
	Field  string
	Offset int
	Need   int
	Have   int
	Err    error
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, io.ErrUnexpectedEOF) {
		return fmt.Sprintf("wire: reading %s at offset %d: need %d bytes, have %d", e.Field, e.Offset, e.Need, e.Have)
	}
	return fmt.Sprintf("wire: reading %s at offset %d: %v", e.Field, e.Offset, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Decoder reads fixed-width fields from a payload in host byte order.
// It never reads past the end of its buffer.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder positioned at the start of buf.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.buf) - d.pos
}

// EOF reports whether every byte has been consumed.
func (d *Decoder) EOF() bool {
	return d.pos >= len(d.buf)
}

// Offset returns the current read position.
func (d *Decoder) Offset() int {
	return d.pos
}

func (d *Decoder) take(field string, n int) ([]byte, error) {
	if n < 0 {
		return nil, &DecodeError{Field: field, Offset: d.pos, Need: n, Have: d.Remaining(), Err: ErrNegativeLen}
	}
	if d.Remaining() < n {
		return nil, &DecodeError{Field: field, Offset: d.pos, Need: n, Have: d.Remaining(), Err: io.ErrUnexpectedEOF}
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Uint32 reads an unsigned 32-bit integer.
func (d *Decoder) Uint32() (uint32, error) {
	b, err := d.take("u32", 4)
	if err != nil {
		return 0, err
	}
	return Order.Uint32(b), nil
}

// Int32 reads a signed 32-bit integer.
func (d *Decoder) Int32() (int32, error) {
	b, err := d.take("i32", 4)
	if err != nil {
		return 0, err
	}
	return int32(Order.Uint32(b)), nil
}

// Float32 reads an IEEE-754 single.
func (d *Decoder) Float32() (float32, error) {
	b, err := d.take("f32", 4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(Order.Uint32(b)), nil
}

// Float32s reads len(dst) singles into dst.
func (d *Decoder) Float32s(dst []float32) error {
	for i := range dst {
		v, err := d.Float32()
		if err != nil {
			return err
		}
		dst[i] = v
	}
	return nil
}

// Bool reads a u32 boolean. Any non-zero value is true.
func (d *Decoder) Bool() (bool, error) {
	b, err := d.take("bool", 4)
	if err != nil {
		return false, err
	}
	return Order.Uint32(b) != 0, nil
}

// Color reads four u32 components (r, g, b, a). Components above 255 clamp.
func (d *Decoder) Color() (RGBA, error) {
	var c [4]uint32
	for i := range c {
		v, err := d.Uint32()
		if err != nil {
			return RGBA{}, err
		}
		// Clamped rather than truncated to the low byte.
		c[i] = min(v, 255)
	}
	return RGBA{R: uint8(c[0]), G: uint8(c[1]), B: uint8(c[2]), A: uint8(c[3])}, nil
}

// Bytes reads exactly n bytes. The result aliases the decoder's buffer.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	return d.take("bytes", n)
}

// String reads n bytes, trims trailing NUL padding and validates UTF-8.
func (d *Decoder) String(n int) (string, error) {
	off := d.pos
	b, err := d.take("string", n)
	if err != nil {
		return "", err
	}
	b = TrimNUL(b)
	if !utf8.Valid(b) {
		return "", &DecodeError{Field: "string", Offset: off, Need: n, Have: n, Err: ErrInvalidUTF8}
	}
	return string(b), nil
}

// LenString reads a u32 length followed by that many bytes of string.
func (d *Decoder) LenString() (string, error) {
	n, err := d.Uint32()
	if err != nil {
		return "", err
	}
	return d.String(int(n))
}

// Rest consumes and returns every unread byte. The result aliases the
// decoder's buffer.
func (d *Decoder) Rest() []byte {
	b := d.buf[d.pos:]
	d.pos = len(d.buf)
	return b
}

// TrimNUL removes trailing zero bytes.
func TrimNUL(b []byte) []byte {
	return bytes.TrimRight(b, "\x00")
}

// RGBA is a color as it appears on the wire: four channels in 0..255.
type RGBA struct {
	R, G, B, A uint8
}

// Float returns the channels normalised to 0..1.
func (c RGBA) Float() (r, g, b, a float64) {
	return float64(c.R) / 255, float64(c.G) / 255, float64(c.B) / 255, float64(c.A) / 255
}

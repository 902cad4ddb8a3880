package wire

import (
	"math"
)

// Encoder appends fixed-width fields to a growing buffer in host byte order.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with the given initial capacity.
func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

// Bytes returns the encoded bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of encoded bytes.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// Reset clears the buffer, keeping its capacity.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Uint32 writes v in wire byte order.
func (e *Encoder) Uint32(v uint32) *Encoder {
	e.buf = Order.AppendUint32(e.buf, v)
	return e
}

// Int32 writes v as its two's complement u32.
func (e *Encoder) Int32(v int32) *Encoder {
	e.buf = Order.AppendUint32(e.buf, uint32(v))
	return e
}

// Float32 writes the IEEE 754 bits of v.
func (e *Encoder) Float32(v float32) *Encoder {
	e.buf = Order.AppendUint32(e.buf, math.Float32bits(v))
	return e
}

// Bool writes v as a u32 0 or 1.
func (e *Encoder) Bool(v bool) *Encoder {
	if v {
		return e.Uint32(1)
	}
	return e.Uint32(0)
}

// Color writes the four channels as u32 components.
func (e *Encoder) Color(c RGBA) *Encoder {
	return e.Uint32(uint32(c.R)).Uint32(uint32(c.G)).Uint32(uint32(c.B)).Uint32(uint32(c.A))
}

// Raw appends b as-is.
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// String appends s as-is, without a length.
func (e *Encoder) String(s string) *Encoder {
	e.buf = append(e.buf, s...)
	return e
}

// LenString writes a u32 length followed by the bytes of s.
func (e *Encoder) LenString(s string) *Encoder {
	return e.Uint32(uint32(len(s))).String(s)
}

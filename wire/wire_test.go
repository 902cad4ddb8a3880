package wire

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"
)

func TestDecoderFields(t *testing.T) {
	e := NewEncoder(64)
	e.Uint32(0xDEADBEEF).Int32(-7).Float32(1.5).Bool(true).Color(RGBA{R: 10, G: 20, B: 30, A: 255})

	d := NewDecoder(e.Bytes())
	u, err := d.Uint32()
	if err != nil || u != 0xDEADBEEF {
		t.Fatalf("Uint32() = %#x, %v, want 0xDEADBEEF, nil", u, err)
	}
	i, err := d.Int32()
	if err != nil || i != -7 {
		t.Fatalf("Int32() = %d, %v, want -7, nil", i, err)
	}
	f, err := d.Float32()
	if err != nil || f != 1.5 {
		t.Fatalf("Float32() = %v, %v, want 1.5, nil", f, err)
	}
	b, err := d.Bool()
	if err != nil || !b {
		t.Fatalf("Bool() = %v, %v, want true, nil", b, err)
	}
	c, err := d.Color()
	if err != nil {
		t.Fatalf("Color() error = %v", err)
	}
	if c != (RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Color() = %+v", c)
	}
	if !d.EOF() {
		t.Errorf("EOF() = false after reading every field, remaining %d", d.Remaining())
	}
}

func TestDecoderTruncation(t *testing.T) {
	tests := []struct {
		name string
		buf  []byte
		read func(*Decoder) error
	}{
		{"u32 from 3 bytes", []byte{1, 2, 3}, func(d *Decoder) error { _, err := d.Uint32(); return err }},
		{"f32 from empty", nil, func(d *Decoder) error { _, err := d.Float32(); return err }},
		{"bool from empty", nil, func(d *Decoder) error { _, err := d.Bool(); return err }},
		{"color from 12 bytes", make([]byte, 12), func(d *Decoder) error { _, err := d.Color(); return err }},
		{"string longer than buffer", []byte("abc"), func(d *Decoder) error { _, err := d.String(4); return err }},
		{"len string with short body", NewEncoder(8).Uint32(10).String("abc").Bytes(), func(d *Decoder) error { _, err := d.LenString(); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDecoder(tt.buf)
			err := tt.read(d)
			if !errors.Is(err, io.ErrUnexpectedEOF) {
				t.Fatalf("error = %v, want io.ErrUnexpectedEOF", err)
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Fatalf("error %T is not *DecodeError", err)
			}
		})
	}
}

func TestDecoderNeverReadsPastEnd(t *testing.T) {
	d := NewDecoder([]byte{1, 2, 3, 4, 5})
	if _, err := d.Uint32(); err != nil {
		t.Fatal(err)
	}
	if _, err := d.Uint32(); err == nil {
		t.Fatal("second Uint32() succeeded on 1 remaining byte")
	}
	if got := d.Remaining(); got != 1 {
		t.Errorf("Remaining() after failed read = %d, want 1", got)
	}
}

func TestColorClamp(t *testing.T) {
	buf := NewEncoder(16).Uint32(300).Uint32(255).Uint32(0).Uint32(math.MaxUint32).Bytes()
	c, err := NewDecoder(buf).Color()
	if err != nil {
		t.Fatal(err)
	}
	want := RGBA{R: 255, G: 255, B: 0, A: 255}
	if c != want {
		t.Errorf("Color() = %+v, want %+v", c, want)
	}
	r, _, _, a := c.Float()
	if r != 1 || a != 1 {
		t.Errorf("Float() r=%v a=%v, want 1, 1", r, a)
	}
}

func TestStringTrimAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      []byte
		want    string
		wantErr error
	}{
		{"plain", []byte("font"), "font", nil},
		{"nul padded", []byte("font\x00\x00\x00"), "font", nil},
		{"all nul", []byte{0, 0}, "", nil},
		{"utf8", []byte("héllo"), "héllo", nil},
		{"invalid", []byte{0xff, 0xfe}, "", ErrInvalidUTF8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDecoder(tt.in).String(len(tt.in))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("String() error = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRest(t *testing.T) {
	d := NewDecoder(NewEncoder(8).Uint32(9).String("tail").Bytes())
	if _, err := d.Uint32(); err != nil {
		t.Fatal(err)
	}
	if got := string(d.Rest()); got != "tail" {
		t.Errorf("Rest() = %q, want %q", got, "tail")
	}
	if got := d.Rest(); len(got) != 0 {
		t.Errorf("second Rest() = %q, want empty", got)
	}
}

func TestFrameHeaderIsBigEndian(t *testing.T) {
	got := AppendFrame(nil, []byte{0xAA, 0xBB, 0xCC})
	want := []byte{0, 0, 0, 3, 0xAA, 0xBB, 0xCC}
	if !bytes.Equal(got, want) {
		t.Errorf("AppendFrame() = % x, want % x", got, want)
	}
}

func TestReadFrame(t *testing.T) {
	var stream bytes.Buffer
	for _, p := range [][]byte{[]byte("one"), {}, []byte("three")} {
		if err := WriteFrame(&stream, p); err != nil {
			t.Fatal(err)
		}
	}
	stream.WriteString("leftover")

	for _, want := range []string{"one", "", "three"} {
		got, err := ReadFrame(&stream, 0)
		if err != nil {
			t.Fatalf("ReadFrame() error = %v", err)
		}
		if string(got) != want {
			t.Errorf("ReadFrame() = %q, want %q", got, want)
		}
	}
	if got := stream.String(); got != "leftover" {
		t.Errorf("bytes after last frame = %q, want %q", got, "leftover")
	}
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		limit int
		want  error
	}{
		{"clean end", nil, 0, io.EOF},
		{"short header", []byte{0, 0}, 0, io.ErrUnexpectedEOF},
		{"short payload", []byte{0, 0, 0, 5, 'a', 'b'}, 0, io.ErrUnexpectedEOF},
		{"too large", []byte{0, 0, 1, 0}, 16, ErrFrameTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrame(bytes.NewReader(tt.in), tt.limit)
			if !errors.Is(err, tt.want) {
				t.Errorf("ReadFrame() error = %v, want %v", err, tt.want)
			}
		})
	}
}

package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// HeaderSize is the size of the big-endian length prefix on every frame.
const HeaderSize = 4

// DefaultMaxFrame bounds the payload size accepted by ReadFrame when no
// explicit limit is configured.
const DefaultMaxFrame = 64 << 20

// ErrFrameTooLarge is returned when a length prefix exceeds the limit.
var ErrFrameTooLarge = errors.New("wire: frame payload too large")

// AppendFrame appends the length prefix and payload to dst.
func AppendFrame(dst, payload []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(len(payload)))
	return append(dst, payload...)
}

// WriteFrame writes one frame with a single Write call.
func WriteFrame(w io.Writer, payload []byte) error {
	buf := AppendFrame(make([]byte, 0, HeaderSize+len(payload)), payload)
	_, err := w.Write(buf)
	return err
}

// ReadFrame reads one frame and returns its payload. It never consumes more
// than the announced payload length. A stream that ends exactly at a frame
// boundary yields io.EOF; one that ends inside a frame yields
// io.ErrUnexpectedEOF. A limit of zero or less selects DefaultMaxFrame.
func ReadFrame(r io.Reader, limit int) ([]byte, error) {
	if limit <= 0 {
		limit = DefaultMaxFrame
	}
	var header [HeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(header[:])
	if uint64(n) > uint64(limit) {
		return nil, fmt.Errorf("%w: %d > %d", ErrFrameTooLarge, n, limit)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// Package cursor provides position-tracked little-endian readers and
// writers over in-memory byte buffers.
package cursor

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// ErrOutOfBounds is returned when a read runs past the end of the buffer.
var ErrOutOfBounds = errors.New("cursor: read past end of buffer")

// Reader walks a byte buffer sequentially. All reads are bounds checked;
// a failed read leaves the offset unchanged.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Offset reports the current position from the start of the buffer.
func (r *Reader) Offset() int { return r.off }

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int { return len(r.data) - r.off }

// Rest returns the unread tail of the buffer and advances to the end.
func (r *Reader) Rest() []byte {
	s := r.data[r.off:]
	r.off = len(r.data)
	return s
}

func (r *Reader) Skip(n int) error {
	if r.off+n > len(r.data) {
		return ErrOutOfBounds
	}
	r.off += n
	return nil
}

// Bytes returns the next n bytes without copying.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.data) {
		return nil, ErrOutOfBounds
	}
	s := r.data[r.off : r.off+n]
	r.off += n
	return s, nil
}

func (r *Reader) Byte() (byte, error) {
	if r.off >= len(r.data) {
		return 0, ErrOutOfBounds
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *Reader) Uint16() (uint16, error) {
	if r.off+2 > len(r.data) {
		return 0, ErrOutOfBounds
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, nil
}

func (r *Reader) Uint32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, ErrOutOfBounds
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *Reader) Float32() (float32, error) {
	v, err := r.Uint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// PascalString reads a 1-byte length prefix followed by that many cp1252
// bytes and returns the decoded string.
func (r *Reader) PascalString() (string, error) {
	n, err := r.Byte()
	if err != nil {
		return "", err
	}
	raw, err := r.Bytes(int(n))
	if err != nil {
		r.off--
		return "", err
	}
	s, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw), nil
	}
	return string(s), nil
}

// Writer builds a byte buffer by appending. Writes never fail; the buffer
// grows as needed.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Offset reports the number of bytes written so far.
func (w *Writer) Offset() int { return len(w.buf) }

func (w *Writer) Byte(b byte) {
	w.buf = append(w.buf, b)
}

func (w *Writer) Raw(p []byte) {
	w.buf = append(w.buf, p...)
}

func (w *Writer) Uint16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *Writer) Uint32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) Float32(v float32) {
	w.Uint32(math.Float32bits(v))
}

// PascalString writes a 1-byte length prefix followed by the cp1252
// encoding of s. Strings longer than 255 encoded bytes do not fit the
// prefix and are rejected.
func (w *Writer) PascalString(s string) error {
	raw, err := charmap.Windows1252.NewEncoder().Bytes([]byte(s))
	if err != nil {
		return fmt.Errorf("cursor: encode %q: %w", s, err)
	}
	if len(raw) > 255 {
		return fmt.Errorf("cursor: string %q exceeds 255 bytes", s)
	}
	w.Byte(byte(len(raw)))
	w.Raw(raw)
	return nil
}

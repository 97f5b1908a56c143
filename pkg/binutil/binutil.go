// Package binutil provides the low-level binary readers/writers and UUID
// helpers shared by the JUMBF engine and the asset container layer.
package binutil

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// ErrShortRead is returned when a reader runs out of bytes mid-field.
var ErrShortRead = fmt.Errorf("binutil: short read")

// Reader wraps a byte slice with a cursor, matching the JUMBF engine's
// "consume bytes only" contract: every Read* call advances the cursor or
// returns ErrShortRead, never panics.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current read offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

// ReadUint8 reads one big-endian byte.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.Len() < 1 {
		return 0, ErrShortRead
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads a big-endian uint16.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Len() < 2 {
		return 0, ErrShortRead
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads a big-endian uint32.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, ErrShortRead
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads a big-endian uint64.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.Len() < 8 {
		return 0, ErrShortRead
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 || r.Len() < n {
		return nil, ErrShortRead
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// PeekAbsolute returns a view of the underlying buffer between absolute
// offsets [start, end), without moving the cursor. Used by callers that
// need to capture the exact bytes spanning a just-parsed structure.
func (r *Reader) PeekAbsolute(start, end int) []byte {
	if start < 0 || end > len(r.buf) || start > end {
		return nil
	}
	return r.buf[start:end]
}

// ReadUUID reads a 16-byte UUID.
func (r *Reader) ReadUUID() (uuid.UUID, error) {
	b, err := r.ReadBytes(16)
	if err != nil {
		return uuid.Nil, err
	}
	u, err := uuid.FromBytes(b)
	if err != nil {
		return uuid.Nil, fmt.Errorf("binutil: invalid uuid: %w", err)
	}
	return u, nil
}

// ReadCString reads bytes up to and including a terminating 0x00 and
// returns the string without the terminator. An unterminated tail is an
// error: JUMBF label fields are always NUL-terminated when present.
func (r *Reader) ReadCString() (string, error) {
	start := r.pos
	for i := r.pos; i < len(r.buf); i++ {
		if r.buf[i] == 0 {
			s := string(r.buf[start:i])
			r.pos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("binutil: unterminated c-string")
}

// Writer accumulates bytes for a box's payload or header.
type Writer struct {
	buf []byte
}

// NewWriter returns an empty Writer, optionally pre-sized via cap hint.
func NewWriter(capHint int) *Writer {
	return &Writer{buf: make([]byte, 0, capHint)}
}

// Bytes returns the accumulated buffer.
func (w *Writer) Bytes() []byte { return w.buf }

// Len returns the number of bytes written so far.
func (w *Writer) Len() int { return len(w.buf) }

// WriteUint8 appends one byte.
func (w *Writer) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteUint16 appends a big-endian uint16.
func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends a big-endian uint32.
func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends a big-endian uint64.
func (w *Writer) WriteUint64(v uint64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteBytes appends raw bytes verbatim.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteUUID appends a 16-byte UUID.
func (w *Writer) WriteUUID(u uuid.UUID) { w.buf = append(w.buf, u[:]...) }

// WriteCString appends s followed by a NUL terminator.
func (w *Writer) WriteCString(s string) {
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, 0)
}

// WriteTo implements io.WriterTo so a Writer can be handed to a streaming
// digest context without an intermediate copy.
func (w *Writer) WriteTo(dst io.Writer) (int64, error) {
	n, err := dst.Write(w.buf)
	return int64(n), err
}

// HexString renders b as lowercase hex, used by error messages and test
// fixtures throughout the JUMBF engine (see S4/S5/S8 in the test suite).
func HexString(b []byte) string {
	return hex.EncodeToString(b)
}

// MustParseHex decodes a hex fixture string, panicking on malformed input.
// Only ever called with compile-time-constant test fixtures.
func MustParseHex(s string) []byte {
	b, err := hex.DecodeString(s)
	if err != nil {
		panic(fmt.Sprintf("binutil: invalid hex fixture %q: %v", s, err))
	}
	return b
}

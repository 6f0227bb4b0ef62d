// Copyright 2024 Canonical Ltd.
// Licensed under the LGPLv3 with static-linking exception.
// See LICENCE file for details.

package mu

import (
	"encoding/binary"
	"errors"
	"math"
)

var (
	// ErrInsufficientSpace is recorded by a Writer when a write would move
	// past the end of the destination buffer.
	ErrInsufficientSpace = errors.New("insufficient space in buffer")

	// ErrInsufficientData is recorded by a Reader when a read would move
	// past the end of the source buffer.
	ErrInsufficientData = errors.New("insufficient data in buffer")

	// ErrSizedValueTooLarge is recorded by a Writer when a sized buffer is
	// larger than its 2-byte size field can represent.
	ErrSizedValueTooLarge = errors.New("sized value size greater than 2^16-1")
)

// Writer marshals TPM wire format fields into a caller-owned buffer. The
// zero value is not usable - use NewWriter. Once an operation fails, the
// Writer records the error and all subsequent operations are no-ops.
type Writer struct {
	buf []byte
	off int
	err error
}

// NewWriter returns a Writer that marshals into buf. The Writer never
// writes outside buf.
func NewWriter(buf []byte) *Writer {
	return &Writer{buf: buf}
}

func (w *Writer) reserve(n int) (off int, ok bool) {
	if w.err != nil {
		return 0, false
	}
	if n > len(w.buf)-w.off {
		w.err = ErrInsufficientSpace
		return 0, false
	}
	off = w.off
	w.off += n
	return off, true
}

// WriteUint8 appends a single byte.
func (w *Writer) WriteUint8(v uint8) {
	if off, ok := w.reserve(1); ok {
		w.buf[off] = v
	}
}

// WriteUint16 appends v in big-endian form.
func (w *Writer) WriteUint16(v uint16) {
	if off, ok := w.reserve(2); ok {
		binary.BigEndian.PutUint16(w.buf[off:], v)
	}
}

// WriteUint32 appends v in big-endian form.
func (w *Writer) WriteUint32(v uint32) {
	if off, ok := w.reserve(4); ok {
		binary.BigEndian.PutUint32(w.buf[off:], v)
	}
}

// WriteBytes appends b without a size field.
func (w *Writer) WriteBytes(b []byte) {
	if off, ok := w.reserve(len(b)); ok {
		copy(w.buf[off:], b)
	}
}

// WriteSizedBytes appends b as a TPM2B: a 2-byte size field followed by the
// bytes themselves. A nil slice is written as a zero size field.
func (w *Writer) WriteSizedBytes(b []byte) {
	if w.err != nil {
		return
	}
	if len(b) > math.MaxUint16 {
		w.err = ErrSizedValueTooLarge
		return
	}
	w.WriteUint16(uint16(len(b)))
	w.WriteBytes(b)
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.off
}

// Bytes returns the marshalled bytes.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.off]
}

// Error returns the first error recorded by any operation on this Writer.
func (w *Writer) Error() error {
	return w.err
}

// Reservation is a placeholder for an integer field whose value only becomes
// known after subsequent fields have been written, such as a size field that
// covers the bytes following it. It is created by Writer.Reserve16 or
// Writer.Reserve32 and filled in with Resolve.
type Reservation struct {
	w     *Writer
	off   int
	width int
}

// Reserve16 skips a 2-byte slot at the current position and returns a
// Reservation for filling it in later.
func (w *Writer) Reserve16() *Reservation {
	if off, ok := w.reserve(2); ok {
		return &Reservation{w: w, off: off, width: 2}
	}
	return &Reservation{}
}

// Reserve32 skips a 4-byte slot at the current position and returns a
// Reservation for filling it in later.
func (w *Writer) Reserve32() *Reservation {
	if off, ok := w.reserve(4); ok {
		return &Reservation{w: w, off: off, width: 4}
	}
	return &Reservation{}
}

// Resolve writes v into the reserved slot, in big-endian form truncated to
// the reserved width. Resolving a reservation obtained from a failed Writer
// is a no-op.
func (r *Reservation) Resolve(v uint32) {
	if r.w == nil || r.w.err != nil {
		return
	}
	switch r.width {
	case 2:
		binary.BigEndian.PutUint16(r.w.buf[r.off:], uint16(v))
	case 4:
		binary.BigEndian.PutUint32(r.w.buf[r.off:], v)
	}
}

// Reader unmarshals TPM wire format fields from a byte buffer. Once an
// operation fails, the Reader records the error and all subsequent
// operations are no-ops returning zero values.
type Reader struct {
	buf []byte
	off int
	err error
}

// NewReader returns a Reader that unmarshals from buf.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

func (r *Reader) consume(n int) (off int, ok bool) {
	if r.err != nil {
		return 0, false
	}
	if n > len(r.buf)-r.off {
		r.err = ErrInsufficientData
		return 0, false
	}
	off = r.off
	r.off += n
	return off, true
}

// ReadUint8 consumes and returns a single byte.
func (r *Reader) ReadUint8() uint8 {
	if off, ok := r.consume(1); ok {
		return r.buf[off]
	}
	return 0
}

// ReadUint16 consumes and returns a big-endian 16-bit integer.
func (r *Reader) ReadUint16() uint16 {
	if off, ok := r.consume(2); ok {
		return binary.BigEndian.Uint16(r.buf[off:])
	}
	return 0
}

// ReadUint32 consumes and returns a big-endian 32-bit integer.
func (r *Reader) ReadUint32() uint32 {
	if off, ok := r.consume(4); ok {
		return binary.BigEndian.Uint32(r.buf[off:])
	}
	return 0
}

// ReadBytes consumes n bytes and returns them as a subslice of the source
// buffer. No copy is made - the result is only valid for the lifetime of the
// source buffer.
func (r *Reader) ReadBytes(n int) []byte {
	if off, ok := r.consume(n); ok {
		return r.buf[off : off+n : off+n]
	}
	return nil
}

// ReadSizedBytes consumes a TPM2B: a 2-byte size field followed by that many
// bytes, returned as a subslice of the source buffer. A declared size larger
// than the remaining data is recorded as ErrInsufficientData.
func (r *Reader) ReadSizedBytes() []byte {
	size := r.ReadUint16()
	return r.ReadBytes(int(size))
}

// Skip consumes and discards n bytes.
func (r *Reader) Skip(n int) {
	r.consume(n)
}

// Len returns the number of bytes remaining. A complete parse ends with
// Len() == 0.
func (r *Reader) Len() int {
	if r.err != nil {
		return 0
	}
	return len(r.buf) - r.off
}

// Error returns the first error recorded by any operation on this Reader.
func (r *Reader) Error() error {
	return r.err
}

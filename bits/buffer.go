/*
NAME
  buffer.go

DESCRIPTION
  buffer.go provides sticky-error bit cursors for reading and writing
  bit-packed binary structures such as PSI/SI table payloads.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package bits provides bit-level cursors over byte slices. Unlike an
// io.Reader based bit reader, errors are sticky: once a cursor overruns
// its buffer every subsequent access is a no-op returning zero values,
// and the first error is reported by Err. This lets a fixed header be
// decoded as a straight-line sequence of reads with a single error
// check at the end.
package bits

import "errors"

// Errors flagged by cursors. Both are sticky; see Reader.Err and
// Writer.Err.
var (
	ErrOverrun  = errors.New("read past end of buffer")
	ErrCapacity = errors.New("write exceeds buffer capacity")
)

// Reader is a bit cursor over a byte slice. Bits are consumed MSB
// first within each byte.
type Reader struct {
	data []byte
	pos  int // Bit index of the next unread bit.
	err  error
}

// NewReader returns a Reader over b. The Reader does not copy b; the
// caller must not mutate b during the read.
func NewReader(b []byte) *Reader {
	return &Reader{data: b}
}

// Err returns the first error flagged on r, or nil.
func (r *Reader) Err() error { return r.err }

// RemainingBits returns the number of unread bits.
func (r *Reader) RemainingBits() int {
	if r.err != nil {
		return 0
	}
	return len(r.data)*8 - r.pos
}

// RemainingBytes returns the number of whole unread bytes.
func (r *Reader) RemainingBytes() int { return r.RemainingBits() / 8 }

// ReadBits reads n bits (n <= 64) and returns them in the
// least-significant part of a uint64.
//
// For example, with a source as []byte{0x8f,0xe3} (1000 1111, 1110 0011),
// we would get the following results for consecutive reads with n values:
// n = 4, res = 0x8 (1000)
// n = 2, res = 0x3 (0011)
// n = 4, res = 0xf (1111)
// n = 6, res = 0x23 (0010 0011)
func (r *Reader) ReadBits(n int) uint64 {
	if r.err != nil {
		return 0
	}
	if n > len(r.data)*8-r.pos {
		r.err = ErrOverrun
		return 0
	}
	var v uint64
	for i := 0; i < n; i++ {
		b := r.data[r.pos>>3]
		bit := (b >> uint(7-r.pos&7)) & 1
		v = v<<1 | uint64(bit)
		r.pos++
	}
	return v
}

// Bit reads a single bit as a bool.
func (r *Reader) Bit() bool { return r.ReadBits(1) != 0 }

// SkipBits advances the cursor by n bits, discarding them.
func (r *Reader) SkipBits(n int) { r.ReadBits(n) }

// Uint8 reads 8 bits.
func (r *Reader) Uint8() uint8 { return uint8(r.ReadBits(8)) }

// Uint16 reads 16 bits, big-endian.
func (r *Reader) Uint16() uint16 { return uint16(r.ReadBits(16)) }

// Uint32 reads 32 bits, big-endian.
func (r *Reader) Uint32() uint32 { return uint32(r.ReadBits(32)) }

// ReadBytes reads n whole bytes. The cursor must be byte-aligned;
// misalignment is flagged as an overrun. The returned slice aliases
// the source buffer.
func (r *Reader) ReadBytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	if r.pos&7 != 0 || n > r.RemainingBytes() {
		r.err = ErrOverrun
		return nil
	}
	b := r.data[r.pos>>3 : r.pos>>3+n]
	r.pos += n * 8
	return b
}

// Writer is the encoding counterpart of Reader. Bits are emitted MSB
// first. A Writer grows without bound unless a capacity is set with
// NewWriterCap, in which case an overflowing write flags ErrCapacity
// and is dropped.
type Writer struct {
	data []byte
	bits int // Number of valid bits in the final byte, 0 meaning 8.
	cap  int // Byte capacity; 0 means unbounded.
	err  error
}

// NewWriter returns an unbounded Writer.
func NewWriter() *Writer { return &Writer{} }

// NewWriterCap returns a Writer that flags ErrCapacity once more than
// capacity bytes would be produced.
func NewWriterCap(capacity int) *Writer { return &Writer{cap: capacity} }

// Err returns the first error flagged on w, or nil.
func (w *Writer) Err() error { return w.err }

// Len returns the number of whole bytes produced so far.
func (w *Writer) Len() int {
	n := len(w.data)
	if w.bits != 0 {
		n-- // Final byte still open.
	}
	return n
}

// Bytes returns the written bytes. The final partial byte, if any, is
// included zero-padded.
func (w *Writer) Bytes() []byte { return w.data }

// PutBits writes the n least-significant bits of v, most significant
// first.
func (w *Writer) PutBits(v uint64, n int) {
	if w.err != nil {
		return
	}
	need := (len(w.data)*8 - w.freeBits() + n + 7) / 8
	if w.cap != 0 && need > w.cap {
		w.err = ErrCapacity
		return
	}
	for i := n - 1; i >= 0; i-- {
		bit := byte(v>>uint(i)) & 1
		if w.bits == 0 {
			w.data = append(w.data, 0)
		}
		w.data[len(w.data)-1] |= bit << uint(7-w.bits)
		w.bits = (w.bits + 1) & 7
	}
}

// freeBits returns the number of unused bits in the final byte.
func (w *Writer) freeBits() int {
	if w.bits == 0 {
		return 0
	}
	return 8 - w.bits
}

// PutBit writes a single bit.
func (w *Writer) PutBit(b bool) {
	var v uint64
	if b {
		v = 1
	}
	w.PutBits(v, 1)
}

// PutUint8 writes 8 bits.
func (w *Writer) PutUint8(v uint8) { w.PutBits(uint64(v), 8) }

// PutUint16 writes 16 bits, big-endian.
func (w *Writer) PutUint16(v uint16) { w.PutBits(uint64(v), 16) }

// PutUint32 writes 32 bits, big-endian.
func (w *Writer) PutUint32(v uint32) { w.PutBits(uint64(v), 32) }

// PutBytes writes b. The cursor must be byte-aligned.
func (w *Writer) PutBytes(b []byte) {
	if w.err != nil {
		return
	}
	if w.bits != 0 {
		w.err = ErrCapacity
		return
	}
	if w.cap != 0 && len(w.data)+len(b) > w.cap {
		w.err = ErrCapacity
		return
	}
	w.data = append(w.data, b...)
}

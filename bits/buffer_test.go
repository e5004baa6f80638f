/*
NAME
  buffer_test.go

DESCRIPTION
  buffer_test.go tests the Reader and Writer bit cursors.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package bits

import (
	"bytes"
	"testing"
)

func TestReadBits(t *testing.T) {
	tests := []struct {
		in   []byte
		n    []int
		want []uint64
	}{
		{
			in:   []byte{0x8f, 0xe3},
			n:    []int{4, 2, 4, 6},
			want: []uint64{0x8, 0x3, 0xf, 0x23},
		},
		{
			in:   []byte{0xcd, 0x00, 0x00, 0x00, 0x01},
			n:    []int{8, 32},
			want: []uint64{0xcd, 0x1},
		},
		{
			in:   []byte{0xa5},
			n:    []int{1, 2, 5},
			want: []uint64{0x1, 0x1, 0x5},
		},
	}

	for i, test := range tests {
		r := NewReader(test.in)
		for j, n := range test.n {
			got := r.ReadBits(n)
			if got != test.want[j] {
				t.Errorf("did not get expected result for test: %v, read: %v\ngot: %x, want: %x", i, j, got, test.want[j])
			}
		}
		if r.Err() != nil {
			t.Errorf("unexpected error for test %v: %v", i, r.Err())
		}
	}
}

func TestReadOverrun(t *testing.T) {
	r := NewReader([]byte{0x01})
	r.Uint8()
	if got := r.Uint8(); got != 0 {
		t.Errorf("expected zero value on overrun, got: %v", got)
	}
	if r.Err() != ErrOverrun {
		t.Errorf("expected ErrOverrun, got: %v", r.Err())
	}

	// The error must be sticky.
	r.Uint32()
	if r.Err() != ErrOverrun {
		t.Errorf("expected sticky ErrOverrun, got: %v", r.Err())
	}
}

func TestRemaining(t *testing.T) {
	r := NewReader([]byte{0x00, 0x00, 0x00})
	r.ReadBits(3)
	if got := r.RemainingBits(); got != 21 {
		t.Errorf("did not get expected remaining bits\ngot: %v, want: %v", got, 21)
	}
	if got := r.RemainingBytes(); got != 2 {
		t.Errorf("did not get expected remaining bytes\ngot: %v, want: %v", got, 2)
	}
}

func TestWriteBits(t *testing.T) {
	w := NewWriter()
	w.PutUint8(0xcd)
	w.PutBit(true)
	w.PutBits(0x3, 2)
	w.PutBits(14, 5)
	w.PutUint16(0x0102)
	want := []byte{0xcd, 0xee, 0x01, 0x02}
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}
	if !bytes.Equal(w.Bytes(), want) {
		t.Errorf("did not get expected output\ngot: %x, want: %x", w.Bytes(), want)
	}
}

func TestWriterLen(t *testing.T) {
	w := NewWriter()
	if got := w.Len(); got != 0 {
		t.Errorf("unexpected length of empty writer: %v", got)
	}
	w.PutUint16(0xbeef)
	if got := w.Len(); got != 2 {
		t.Errorf("did not get expected length\ngot: %v, want: %v", got, 2)
	}
	// An open final byte is not counted until it closes.
	w.PutBits(0x3, 2)
	if got := w.Len(); got != 2 {
		t.Errorf("did not get expected length\ngot: %v, want: %v", got, 2)
	}
	w.PutBits(0x15, 6)
	if got := w.Len(); got != 3 {
		t.Errorf("did not get expected length\ngot: %v, want: %v", got, 3)
	}
}

func TestWriteCapacity(t *testing.T) {
	w := NewWriterCap(2)
	w.PutUint16(0xbeef)
	if w.Err() != nil {
		t.Fatalf("unexpected error: %v", w.Err())
	}
	w.PutUint8(0x01)
	if w.Err() != ErrCapacity {
		t.Errorf("expected ErrCapacity, got: %v", w.Err())
	}
	if !bytes.Equal(w.Bytes(), []byte{0xbe, 0xef}) {
		t.Errorf("overflowing write must be dropped, got: %x", w.Bytes())
	}
}

func TestRoundTrip(t *testing.T) {
	w := NewWriter()
	w.PutUint8(0x00)
	w.PutUint32(1000000000)
	w.PutUint8(18)
	w.PutBit(true)
	w.PutBits(0x3, 2)
	w.PutBits(14, 5)
	w.PutUint8(2)

	r := NewReader(w.Bytes())
	if got := r.Uint8(); got != 0 {
		t.Errorf("unexpected value: %v", got)
	}
	if got := r.Uint32(); got != 1000000000 {
		t.Errorf("unexpected value: %v", got)
	}
	if got := r.Uint8(); got != 18 {
		t.Errorf("unexpected value: %v", got)
	}
	if got := r.Bit(); !got {
		t.Errorf("unexpected value: %v", got)
	}
	r.SkipBits(2)
	if got := r.ReadBits(5); got != 14 {
		t.Errorf("unexpected value: %v", got)
	}
	if got := r.Uint8(); got != 2 {
		t.Errorf("unexpected value: %v", got)
	}
	if r.Err() != nil {
		t.Errorf("unexpected error: %v", r.Err())
	}
}

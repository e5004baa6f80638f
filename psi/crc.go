/*
NAME
  crc.go

DESCRIPTION
  crc.go provides the CRC32-MPEG checksum used to protect PSI/SI
  sections, and helpers to append, update and verify the trailing
  checksum on a section in bytes form.

AUTHOR
  Dan Kortschak <dan@ausocean.org>
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package psi

import (
	"encoding/binary"
	"hash/crc32"
	"math/bits"
)

// CRCSize is the size in bytes of the trailing section checksum.
const CRCSize = 4

// AddCRC appends a CRC to a given table section in bytes form. The
// leading pointer field byte is excluded from the checksum.
func AddCRC(out []byte) []byte {
	t := make([]byte, len(out)+CRCSize)
	copy(t, out)
	UpdateCRC(t[1:])
	return t
}

// UpdateCRC updates the CRC of a section, writing the checksum into
// the last four bytes of b.
func UpdateCRC(b []byte) {
	binary.BigEndian.PutUint32(b[len(b)-CRCSize:], Checksum(b[:len(b)-CRCSize]))
}

// VerifyCRC reports whether the last four bytes of b hold the correct
// checksum of the preceding bytes.
func VerifyCRC(b []byte) bool {
	if len(b) < CRCSize {
		return false
	}
	return binary.BigEndian.Uint32(b[len(b)-CRCSize:]) == Checksum(b[:len(b)-CRCSize])
}

// Checksum returns the CRC32-MPEG checksum of b: IEEE polynomial,
// bit-reversed, all-ones initial value, no final inversion.
func Checksum(b []byte) uint32 {
	return crc32Update(0xffffffff, crc32MakeTable(bits.Reverse32(crc32.IEEE)), b)
}

func crc32MakeTable(poly uint32) *crc32.Table {
	var t crc32.Table
	for i := range t {
		crc := uint32(i) << 24
		for j := 0; j < 8; j++ {
			if crc&0x80000000 != 0 {
				crc = (crc << 1) ^ poly
			} else {
				crc <<= 1
			}
		}
		t[i] = crc
	}
	return &t
}

func crc32Update(crc uint32, tab *crc32.Table, p []byte) uint32 {
	for _, v := range p {
		crc = tab[byte(crc>>24)^v] ^ (crc << 8)
	}
	return crc
}

/*
NAME
  section.go

DESCRIPTION
  section.go provides building and parsing of PSI/SI sections in bytes
  form: the leading pointer field, table header, optional syntax
  section header, payload and optional trailing CRC32.

AUTHOR
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
	"github.com/pkg/errors"

	gotspsi "github.com/Comcast/gots/psi"

	"github.com/ausocean/dtv/bits"
)

// MaxSectionLen is the maximum value of the section_length field for
// the sections handled here, bounding a section to 1024 bytes total.
const MaxSectionLen = 1021

// Lengths of section framing parts.
const (
	tableHeadLen  = 3 // Table id plus flags and section_length.
	syntaxHeadLen = 5 // Table id extension through last_section_number.
)

var errPointerFill = errors.New("pointer filler bytes not supported")

// Section is one PSI/SI section. The bytes form always begins with a
// zero pointer field, as when the section starts a transport packet
// payload.
type Section struct {
	TableID     uint8
	Syntax      bool // Section syntax indicator; a syntax header and CRC are present.
	Private     bool
	TableIDExt  uint16 // Syntax sections only.
	Version     uint8  // 5 bits.
	CurrentNext bool
	Number      uint8
	LastNumber  uint8
	CRC         bool // Trailing CRC32 present. Implied by Syntax; also set for short sections that carry one.
	Payload     []byte
}

// sectionLen returns the value of the section_length field.
func (s *Section) sectionLen() int {
	n := len(s.Payload)
	if s.Syntax {
		n += syntaxHeadLen
	}
	if s.hasCRC() {
		n += CRCSize
	}
	return n
}

func (s *Section) hasCRC() bool { return s.Syntax || s.CRC }

// Bytes returns the wire form of s, with CRC computed where present.
// ErrCapacityExceeded is returned if the payload cannot fit in one
// section.
func (s *Section) Bytes() ([]byte, error) {
	if s.sectionLen() > MaxSectionLen {
		return nil, ErrCapacityExceeded
	}
	w := bits.NewWriter()
	w.PutUint8(0x00) // Pointer field.
	w.PutUint8(s.TableID)
	w.PutBit(s.Syntax)
	w.PutBit(s.Private)
	w.PutBits(0x3, 2) // Reserved.
	w.PutBits(uint64(s.sectionLen()), 12)
	if s.Syntax {
		w.PutUint16(s.TableIDExt)
		w.PutBits(0x3, 2) // Reserved.
		w.PutBits(uint64(s.Version), 5)
		w.PutBit(s.CurrentNext)
		w.PutUint8(s.Number)
		w.PutUint8(s.LastNumber)
	}
	w.PutBytes(s.Payload)
	if err := w.Err(); err != nil {
		return nil, err
	}
	out := w.Bytes()
	if s.hasCRC() {
		out = AddCRC(out)
	}
	return out, nil
}

// ParseSection parses the wire form of one section. withCRC states
// whether a short section carries a trailing CRC32 (syntax sections
// always do). Bytes past the declared section length are trailing
// garbage and rejected; a bad checksum is likewise rejected.
func ParseSection(b []byte, withCRC bool) (*Section, error) {
	if len(b) < 1+tableHeadLen {
		return nil, ErrTruncated
	}
	if b[0] != 0x00 {
		return nil, errPointerFill
	}
	s := &Section{
		TableID: gotspsi.TableID(b),
		Syntax:  b[2]&0x80 != 0,
		Private: b[2]&0x40 != 0,
	}
	secLen := int(gotspsi.SectionLength(b))
	total := 1 + tableHeadLen + secLen
	if len(b) < total {
		return nil, ErrTruncated
	}
	if len(b) > total {
		return nil, errors.Errorf("%d trailing garbage bytes after section", len(b)-total)
	}

	s.CRC = s.Syntax || withCRC
	body := b[1+tableHeadLen : total]
	if s.hasCRC() {
		if secLen < CRCSize {
			return nil, ErrTruncated
		}
		if !VerifyCRC(b[1:total]) {
			return nil, errors.New("section CRC32 mismatch")
		}
		body = body[:len(body)-CRCSize]
	}

	if s.Syntax {
		if len(body) < syntaxHeadLen {
			return nil, ErrTruncated
		}
		s.TableIDExt = uint16(body[0])<<8 | uint16(body[1])
		s.Version = body[2] >> 1 & 0x1f
		s.CurrentNext = body[2]&0x01 != 0
		s.Number = body[3]
		s.LastNumber = body[4]
		body = body[syntaxHeadLen:]
	}
	s.Payload = body
	return s, nil
}

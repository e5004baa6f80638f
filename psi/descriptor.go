/*
NAME
  descriptor.go

DESCRIPTION
  descriptor.go provides the tagged variable-length descriptor record
  and the descriptor list container used by PSI/SI tables, with
  read-to-end, length-prefixed and partial-fit serialization variants,
  and a generic XML form for descriptors with unrecognised tags.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package psi provides framing and descriptor plumbing for PSI/SI
// table sections: the section header and trailing CRC32, and the
// generic descriptor list carried inside table payloads.
package psi

import (
	"encoding/hex"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ausocean/dtv/bits"
)

// Errors returned by section and descriptor coding.
var (
	ErrTruncated         = errors.New("insufficient bytes for fixed field")
	ErrDescriptorOverrun = errors.New("descriptor length exceeds remaining buffer")
	ErrCapacityExceeded  = errors.New("descriptor list too large for one section")
	ErrInvalidAttribute  = errors.New("attribute missing, out of range or wrong type")
)

// descHeadLen is the length of a descriptor header, i.e. tag and
// length bytes.
const descHeadLen = 2

// Descriptor is a tagged variable-length record carried in a table's
// descriptor loop. Unrecognised tags are carried opaque in Data so
// that they survive a decode/encode cycle byte for byte.
type Descriptor struct {
	Tag  uint8
	Data []byte
}

// Size returns the wire size of d including the tag and length bytes.
func (d *Descriptor) Size() int { return descHeadLen + len(d.Data) }

// WriteTo writes d to w.
func (d *Descriptor) WriteTo(w *bits.Writer) {
	w.PutUint8(d.Tag)
	w.PutUint8(uint8(len(d.Data)))
	w.PutBytes(d.Data)
}

// MarshalXML encodes d as <generic_descriptor tag="0x..">hex</generic_descriptor>.
func (d Descriptor) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "generic_descriptor"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "tag"}, Value: fmt.Sprintf("0x%02X", d.Tag)}},
	}
	return e.EncodeElement(strings.ToUpper(hex.EncodeToString(d.Data)), start)
}

// UnmarshalXML is the inverse of MarshalXML. The tag attribute accepts
// decimal or 0x-prefixed hexadecimal.
func (d *Descriptor) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	tag := ""
	for _, a := range start.Attr {
		if a.Name.Local == "tag" {
			tag = a.Value
		}
	}
	if tag == "" {
		return errors.Wrap(ErrInvalidAttribute, "generic_descriptor requires tag")
	}
	v, err := strconv.ParseUint(tag, 0, 8)
	if err != nil {
		return errors.Wrap(ErrInvalidAttribute, "bad descriptor tag "+tag)
	}
	var body string
	if err := dec.DecodeElement(&body, &start); err != nil {
		return err
	}
	data, err := hex.DecodeString(strings.TrimSpace(body))
	if err != nil {
		return errors.Wrap(ErrInvalidAttribute, "bad descriptor payload hex")
	}
	d.Tag = uint8(v)
	d.Data = data
	return nil
}

// DescriptorList is an ordered sequence of descriptors.
type DescriptorList []Descriptor

// Size returns the total wire size of the list.
func (l DescriptorList) Size() int {
	n := 0
	for i := range l {
		n += l[i].Size()
	}
	return n
}

// ReadFrom reads descriptors from r until the buffer is exhausted.
// A descriptor whose declared length exceeds the remaining bytes
// flags ErrDescriptorOverrun.
func (l *DescriptorList) ReadFrom(r *bits.Reader) error {
	for r.RemainingBytes() > 0 {
		if r.RemainingBytes() < descHeadLen {
			return ErrDescriptorOverrun
		}
		tag := r.Uint8()
		n := int(r.Uint8())
		if n > r.RemainingBytes() {
			return ErrDescriptorOverrun
		}
		data := make([]byte, n)
		copy(data, r.ReadBytes(n))
		*l = append(*l, Descriptor{Tag: tag, Data: data})
	}
	return r.Err()
}

// ReadFromWithLength reads a 12-bit length prefix (preceded by 4
// reserved bits) and then exactly that many bytes of descriptors.
func (l *DescriptorList) ReadFromWithLength(r *bits.Reader) error {
	if r.RemainingBytes() < 2 {
		return ErrTruncated
	}
	n := int(r.Uint16() & 0x0fff)
	if n > r.RemainingBytes() {
		return ErrDescriptorOverrun
	}
	sub := bits.NewReader(r.ReadBytes(n))
	return l.ReadFrom(sub)
}

// WriteTo writes every descriptor in the list to w.
func (l DescriptorList) WriteTo(w *bits.Writer) {
	for i := range l {
		l[i].WriteTo(w)
	}
}

// WritePartial writes as many whole descriptors as fit in capacity
// bytes and returns the number written. Descriptors past the first
// that does not fit are dropped; this is the lossy single-section
// policy used by tables that may not span sections.
func (l DescriptorList) WritePartial(w *bits.Writer, capacity int) int {
	start := w.Len()
	for i := range l {
		if w.Len()-start+l[i].Size() > capacity {
			return i
		}
		l[i].WriteTo(w)
	}
	return len(l)
}

// WriteToWithLength writes 4 reserved bits (all ones), the 12-bit
// total length of the list, then the list itself.
func (l DescriptorList) WriteToWithLength(w *bits.Writer) {
	w.PutBits(0xf, 4)
	w.PutBits(uint64(l.Size()), 12)
	l.WriteTo(w)
}

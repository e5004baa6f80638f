/*
NAME
  tot.go

DESCRIPTION
  tot.go provides the codec for the DVB Time Offset Table (EN 300 468
  section 5.2.6) and its local_time_offset_descriptor, including the
  splitting of an unbounded region list across descriptors of at most
  nineteen entries each.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


package tables

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/dtv/bits"
	"github.com/ausocean/dtv/mjd"
	"github.com/ausocean/dtv/psi"
)

// TagLocalTimeOffset is the DVB local_time_offset_descriptor tag.
const TagLocalTimeOffset = 0x58

// MaxRegionsPerDescriptor is the number of 13-byte region entries
// that fit in one local_time_offset_descriptor's 255-byte payload.
const MaxRegionsPerDescriptor = 19

// regionLen is the wire size of one region entry.
const regionLen = 13

// Region is one local time offset entry: the offset from UTC applied
// in a country (or region of one), and the offset that takes over at
// the next change. A single polarity bit covers both offsets on the
// wire, so Offset and NextOffset must not have mixed signs; a region
// encoded with mixed signs decodes with the polarity applied to both.
type Region struct {
	Country    string // ISO 3166 alpha-3 code.
	RegionID   uint8  // Country region id, 6 bits; 0 when the country is not subdivided.
	Offset     int    // Local time offset in minutes.
	NextChange time.Time
	NextOffset int // Offset in minutes after NextChange.
}

// TOT is the DVB Time Offset Table. It is carried in a short section
// with a trailing CRC32 on PID 0x0014.
type TOT struct {
	UTCTime     time.Time
	Regions     []Region           // Flattened across all local_time_offset_descriptors.
	Descriptors psi.DescriptorList // All other descriptors.
}

// TableID returns the TOT table id.
func (t *TOT) TableID() uint8 { return TableIDTOT }

// LocalTime returns the table's time shifted by a region's offset.
func (t *TOT) LocalTime(reg Region) time.Time {
	return t.UTCTime.Add(time.Duration(reg.Offset) * time.Minute)
}

// TimeOffsetFormat formats a time offset in minutes as [-]HH:MM for
// display.
func TimeOffsetFormat(minutes int) string { return formatOffset(minutes) }

// DecodePayload decodes a TOT section payload into t. Under the Japan
// profile the time field carries JST and is converted to UTC.
func (t *TOT) DecodePayload(b []byte, std Standards) error {
	if len(b) < mjd.FieldSize {
		return psi.ErrTruncated
	}
	r := bits.NewReader(b)
	var f [mjd.FieldSize]byte
	copy(f[:], r.ReadBytes(mjd.FieldSize))
	t.UTCTime = mjd.DecodeFull(f)
	if std.Has(Japan) {
		t.UTCTime = mjd.JSTToUTC(t.UTCTime)
	}

	var dl psi.DescriptorList
	if err := dl.ReadFromWithLength(r); err != nil {
		return errors.Wrap(err, "could not read TOT descriptor loop")
	}
	if n := r.RemainingBytes(); n > 0 {
		return errors.Errorf("%d trailing bytes after TOT descriptor loop", n)
	}
	t.Regions = nil
	t.Descriptors = nil
	return t.addDescriptors(dl)
}

// addDescriptors splits dl between the region list and the other
// descriptors, preserving order within each. Regions from consecutive
// local_time_offset_descriptors concatenate.
func (t *TOT) addDescriptors(dl psi.DescriptorList) error {
	for _, d := range dl {
		if d.Tag != TagLocalTimeOffset {
			t.Descriptors = append(t.Descriptors, d)
			continue
		}
		regs, err := decodeRegions(d.Data)
		if err != nil {
			return errors.Wrap(err, "could not decode local_time_offset_descriptor")
		}
		t.Regions = append(t.Regions, regs...)
	}
	return nil
}

// EncodePayload encodes t as a TOT section payload. Under the Japan
// profile the time field is converted to JST. The region list is
// rebuilt into local_time_offset_descriptors of at most
// MaxRegionsPerDescriptor entries, followed by the other descriptors.
func (t *TOT) EncodePayload(std Standards) ([]byte, error) {
	w := bits.NewWriter()
	tm := t.UTCTime
	if std.Has(Japan) {
		tm = mjd.UTCToJST(tm)
	}
	f := mjd.EncodeFull(tm)
	w.PutBytes(f[:])
	t.wireDescriptors().WriteToWithLength(w)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// wireDescriptors returns the full descriptor list as serialized:
// one descriptor per region chunk, then the other descriptors.
func (t *TOT) wireDescriptors() psi.DescriptorList {
	var dl psi.DescriptorList
	for _, chunk := range chunkRegions(t.Regions, MaxRegionsPerDescriptor) {
		dl = append(dl, psi.Descriptor{Tag: TagLocalTimeOffset, Data: encodeRegions(chunk)})
	}
	return append(dl, t.Descriptors...)
}

// chunkRegions partitions regs into consecutive chunks of at most max
// entries. Chunk boundaries are purely capacity driven. The returned
// chunks alias regs.
func chunkRegions(regs []Region, max int) [][]Region {
	var chunks [][]Region
	for len(regs) > max {
		chunks = append(chunks, regs[:max])
		regs = regs[max:]
	}
	if len(regs) > 0 {
		chunks = append(chunks, regs)
	}
	return chunks
}

// flattenRegions is the inverse of chunkRegions for any chunking.
func flattenRegions(chunks [][]Region) []Region {
	var regs []Region
	for _, c := range chunks {
		regs = append(regs, c...)
	}
	return regs
}

// encodeRegions encodes a chunk of regions as the payload of one
// local_time_offset_descriptor. The reserved bit of each entry is
// written as one, and the polarity bit is set when the offsets are
// negative.
func encodeRegions(regs []Region) []byte {
	w := bits.NewWriter()
	for _, reg := range regs {
		var cc [3]byte
		copy(cc[:], reg.Country)
		w.PutBytes(cc[:])
		w.PutBits(uint64(reg.RegionID&0x3f), 6)
		w.PutBit(true)
		w.PutBit(reg.Offset < 0 || reg.NextOffset < 0)
		putBCDOffset(w, reg.Offset)
		f := mjd.EncodeFull(reg.NextChange)
		w.PutBytes(f[:])
		putBCDOffset(w, reg.NextOffset)
	}
	return w.Bytes()
}

// decodeRegions is the inverse of encodeRegions.
func decodeRegions(b []byte) ([]Region, error) {
	if len(b)%regionLen != 0 {
		return nil, psi.ErrDescriptorOverrun
	}
	r := bits.NewReader(b)
	regs := make([]Region, 0, len(b)/regionLen)
	for r.RemainingBytes() >= regionLen {
		var reg Region
		reg.Country = string(r.ReadBytes(3))
		reg.RegionID = uint8(r.ReadBits(6))
		r.SkipBits(1)
		neg := r.Bit()
		reg.Offset = bcdOffset(r, neg)
		var f [mjd.FieldSize]byte
		copy(f[:], r.ReadBytes(mjd.FieldSize))
		reg.NextChange = mjd.DecodeFull(f)
		reg.NextOffset = bcdOffset(r, neg)
		regs = append(regs, reg)
	}
	return regs, r.Err()
}

// putBCDOffset writes a time offset in minutes as BCD HH MM,
// magnitude only; the sign is carried by the entry's polarity bit.
func putBCDOffset(w *bits.Writer, minutes int) {
	if minutes < 0 {
		minutes = -minutes
	}
	w.PutUint8(mjd.ToBCD(minutes / 60))
	w.PutUint8(mjd.ToBCD(minutes % 60))
}

// bcdOffset reads a BCD HH MM offset, applying the polarity.
func bcdOffset(r *bits.Reader, neg bool) int {
	m := mjd.FromBCD(r.Uint8())*60 + mjd.FromBCD(r.Uint8())
	if neg {
		return -m
	}
	return m
}

// MarshalXML encodes t as a <TOT> element: the UTC_time attribute,
// one <local_time_offset_descriptor> child per region chunk, then the
// other descriptors.
func (t *TOT) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{
		Name: xml.Name{Local: "TOT"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "UTC_time"}, Value: t.UTCTime.UTC().Format(timeLayout)}},
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, chunk := range chunkRegions(t.Regions, MaxRegionsPerDescriptor) {
		lto := ltoXML{}
		for _, reg := range chunk {
			lto.Regions = append(lto.Regions, regionXML{
				Country:      reg.Country,
				RegionID:     fmt.Sprintf("%d", reg.RegionID),
				Offset:       formatOffset(reg.Offset),
				TimeOfChange: reg.NextChange.UTC().Format(timeLayout),
				NextOffset:   formatOffset(reg.NextOffset),
			})
		}
		if err := e.Encode(lto); err != nil {
			return err
		}
	}
	for _, d := range t.Descriptors {
		if err := e.Encode(d); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// ltoXML is the XML form of one local_time_offset_descriptor.
type ltoXML struct {
	XMLName xml.Name    `xml:"local_time_offset_descriptor"`
	Regions []regionXML `xml:"region"`
}

// regionXML is the XML form of one region entry. Fields are strings
// so that range and format violations surface as ErrInvalidAttribute
// rather than generic decoding errors.
type regionXML struct {
	Country      string `xml:"country_code,attr"`
	RegionID     string `xml:"country_region_id,attr"`
	Offset       string `xml:"local_time_offset,attr"`
	TimeOfChange string `xml:"time_of_change,attr"`
	NextOffset   string `xml:"next_time_offset,attr"`
}

// region converts the XML form, validating each attribute.
func (x *regionXML) region() (Region, error) {
	var reg Region
	if len(x.Country) != 3 {
		return reg, errors.Wrap(psi.ErrInvalidAttribute, "country_code must be 3 characters")
	}
	m := attrMap{
		"country_region_id": x.RegionID,
		"time_of_change":    x.TimeOfChange,
	}
	id, err := m.parseUint("country_region_id", false, 0, 0, 0x3f)
	if err != nil {
		return reg, err
	}
	offset, err := parseOffset(x.Offset)
	if err != nil {
		return reg, err
	}
	change, err := m.parseTime("time_of_change", true)
	if err != nil {
		return reg, err
	}
	next, err := parseOffset(x.NextOffset)
	if err != nil {
		return reg, err
	}
	reg.Country = x.Country
	reg.RegionID = uint8(id)
	reg.Offset = offset
	reg.NextChange = change
	reg.NextOffset = next
	return reg, nil
}

// UnmarshalXML is the inverse of MarshalXML. Regions from all
// local_time_offset_descriptor children concatenate in order.
func (t *TOT) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	m := attrMap{}
	for _, a := range start.Attr {
		m[a.Name.Local] = a.Value
	}
	utc, err := m.parseTime("UTC_time", true)
	if err != nil {
		return err
	}
	t.UTCTime = utc
	t.Regions = nil
	t.Descriptors = nil

	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch el := tok.(type) {
		case xml.StartElement:
			if el.Name.Local == "local_time_offset_descriptor" {
				var lto ltoXML
				if err := dec.DecodeElement(&lto, &el); err != nil {
					return err
				}
				for i := range lto.Regions {
					reg, err := lto.Regions[i].region()
					if err != nil {
						return err
					}
					t.Regions = append(t.Regions, reg)
				}
				continue
			}
			var d psi.Descriptor
			if err := dec.DecodeElement(&d, &el); err != nil {
				return err
			}
			t.Descriptors = append(t.Descriptors, d)
		case xml.EndElement:
			return nil
		}
	}
}

/*
NAME
  stt.go

DESCRIPTION
  stt.go provides the codec for the ATSC System Time Table (A/65
  section 6.1): binary payload, structured record and XML forms.

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

// sttFixedLen is the length of the fixed STT header before the
// descriptor loop.
const sttFixedLen = 8

// sttDescCapacity is the descriptor capacity of the single section an
// STT may occupy: the maximum section length less the syntax header,
// fixed fields and CRC.
const sttDescCapacity = psi.MaxSectionLen - 5 - sttFixedLen - psi.CRCSize

// STT is the ATSC System Time Table. It is carried in a single long
// section on the base PID with table id extension 0x0000.
type STT struct {
	ProtocolVersion uint8
	SystemTime      uint32 // Seconds since the GPS epoch; 0 means unset.
	GPSUTCOffset    uint8  // Accumulated leap seconds.
	DSStatus        bool   // Daylight saving in effect.
	DSDayOfMonth    uint8  // Day of next daylight saving switch, 5 bits; 0 means none.
	DSHour          uint8  // Hour of next daylight saving switch.
	Descriptors     psi.DescriptorList
}

// TableID returns the STT table id.
func (s *STT) TableID() uint8 { return TableIDSTT }

// TableIDExtension returns the fixed STT table id extension.
func (s *STT) TableIDExtension() uint16 { return 0x0000 }

// UTCTime returns the system time as UTC, or the zero time.Time when
// the system time is unset.
func (s *STT) UTCTime() time.Time {
	return mjd.GPSToUTC(s.SystemTime, s.GPSUTCOffset)
}

// DecodePayload decodes an STT section payload into s.
func (s *STT) DecodePayload(b []byte, _ Standards) error {
	if len(b) < sttFixedLen {
		return psi.ErrTruncated
	}
	r := bits.NewReader(b)
	s.ProtocolVersion = r.Uint8()
	s.SystemTime = r.Uint32()
	s.GPSUTCOffset = r.Uint8()
	s.DSStatus = r.Bit()
	r.SkipBits(2)
	s.DSDayOfMonth = uint8(r.ReadBits(5))
	s.DSHour = r.Uint8()
	s.Descriptors = nil
	if err := s.Descriptors.ReadFrom(r); err != nil {
		return errors.Wrap(err, "could not read STT descriptor loop")
	}
	return nil
}

// EncodePayload encodes s as an STT section payload. An STT is not
// allowed to use more than one section (A/65 section 6.1), so a
// descriptor list too large for one section is truncated at the last
// whole descriptor that fits. Reserved bits are written as ones.
func (s *STT) EncodePayload(_ Standards) ([]byte, error) {
	w := bits.NewWriter()
	w.PutUint8(s.ProtocolVersion)
	w.PutUint32(s.SystemTime)
	w.PutUint8(s.GPSUTCOffset)
	w.PutBit(s.DSStatus)
	w.PutBits(0x3, 2)
	w.PutBits(uint64(s.DSDayOfMonth&0x1f), 5)
	w.PutUint8(s.DSHour)
	s.Descriptors.WritePartial(w, sttDescCapacity)
	if err := w.Err(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// MarshalXML encodes s as an <STT> element. DS_day_of_month is
// omitted when zero, and DS_hour is omitted unless a switch day or
// hour is set.
func (s *STT) MarshalXML(e *xml.Encoder, _ xml.StartElement) error {
	start := xml.StartElement{Name: xml.Name{Local: "STT"}}
	attr := func(name, val string) {
		start.Attr = append(start.Attr, xml.Attr{Name: xml.Name{Local: name}, Value: val})
	}
	attr("protocol_version", fmt.Sprintf("%d", s.ProtocolVersion))
	attr("system_time", fmt.Sprintf("%d", s.SystemTime))
	attr("GPS_UTC_offset", fmt.Sprintf("%d", s.GPSUTCOffset))
	attr("DS_status", fmt.Sprintf("%t", s.DSStatus))
	if s.DSDayOfMonth > 0 {
		attr("DS_day_of_month", fmt.Sprintf("%d", s.DSDayOfMonth&0x1f))
	}
	if s.DSDayOfMonth > 0 || s.DSHour > 0 {
		attr("DS_hour", fmt.Sprintf("%d", s.DSHour))
	}
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	for _, d := range s.Descriptors {
		if err := e.Encode(d); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML is the inverse of MarshalXML. Attribute range
// violations are flagged with psi.ErrInvalidAttribute.
func (s *STT) UnmarshalXML(dec *xml.Decoder, start xml.StartElement) error {
	m := attrMap{}
	for _, a := range start.Attr {
		m[a.Name.Local] = a.Value
	}

	pv, err := m.parseUint("protocol_version", false, 0, 0, 0xff)
	if err != nil {
		return err
	}
	st, err := m.parseUint("system_time", true, 0, 0, 0xffffffff)
	if err != nil {
		return err
	}
	off, err := m.parseUint("GPS_UTC_offset", true, 0, 0, 0xff)
	if err != nil {
		return err
	}
	ds, err := m.parseBool("DS_status", true)
	if err != nil {
		return err
	}
	day, err := m.parseUint("DS_day_of_month", false, 0, 0, 31)
	if err != nil {
		return err
	}
	hour, err := m.parseUint("DS_hour", false, 0, 0, 23)
	if err != nil {
		return err
	}
	s.ProtocolVersion = uint8(pv)
	s.SystemTime = uint32(st)
	s.GPSUTCOffset = uint8(off)
	s.DSStatus = ds
	s.DSDayOfMonth = uint8(day)
	s.DSHour = uint8(hour)
	s.Descriptors = nil

	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			var d psi.Descriptor
			if err := dec.DecodeElement(&d, &t); err != nil {
				return err
			}
			s.Descriptors = append(s.Descriptors, d)
		case xml.EndElement:
			return nil
		}
	}
}

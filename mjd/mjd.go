/*
NAME
  mjd.go

DESCRIPTION
  mjd.go provides conversions between the numeric time encodings used
  by broadcast signaling tables and time.Time, namely seconds since the
  GPS epoch (ATSC system_time) and Modified Julian Date plus BCD
  time-of-day (DVB), as well as the fixed JST offset applied under the
  Japanese profile.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package mjd converts between wire time encodings and time.Time.
// All conversions are pure integer arithmetic; the unset wire value
// maps to the zero time.Time and back.
package mjd

import "time"

const (
	// UnixEpochToGPS is the number of seconds from 1970-01-01T00:00:00Z
	// to the GPS epoch 1980-01-06T00:00:00Z.
	UnixEpochToGPS = 315964800

	// unixEpochMJD is the Modified Julian Date of 1970-01-01.
	unixEpochMJD = 40587

	secPerDay = 86400

	// jstOffset is the fixed JST-UTC offset.
	jstOffset = 9 * time.Hour
)

// FieldSize is the size in bytes of a full MJD wire field: a 16-bit
// day count followed by BCD hours, minutes and seconds.
const FieldSize = 5

// GPSToUTC converts an ATSC system_time, in seconds since the GPS
// epoch, to UTC. A system_time of 0 means the time is unset and the
// zero time.Time is returned. The GPS-UTC offset is the accumulated
// leap second count to subtract (see ATSC A/65 section 6.1). Defined
// for the full input domain.
func GPSToUTC(systemTime uint32, gpsUTCOffset uint8) time.Time {
	if systemTime == 0 {
		return time.Time{}
	}
	return time.Unix(int64(systemTime)+UnixEpochToGPS-int64(gpsUTCOffset), 0).UTC()
}

// UTCToGPS is the inverse of GPSToUTC. The zero time.Time maps to 0.
// Times before the GPS epoch are not representable and also map to 0.
func UTCToGPS(t time.Time, gpsUTCOffset uint8) uint32 {
	if t.IsZero() {
		return 0
	}
	s := t.Unix() - UnixEpochToGPS + int64(gpsUTCOffset)
	if s <= 0 || s > 0xffffffff {
		return 0
	}
	return uint32(s)
}

// UTCToJST returns t shifted to Japan Standard Time (UTC+9).
func UTCToJST(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Add(jstOffset)
}

// JSTToUTC is the inverse of UTCToJST.
func JSTToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.Add(-jstOffset)
}

// EncodeFull encodes t as a 5-byte full MJD field: 16-bit day count
// then BCD hh, mm, ss. The zero time.Time encodes as the all-zero
// field. Dates outside the 16-bit day range encode as zero.
func EncodeFull(t time.Time) [FieldSize]byte {
	var f [FieldSize]byte
	if t.IsZero() {
		return f
	}
	t = t.UTC()
	s := t.Unix()
	day := floorDiv(s, secPerDay) + unixEpochMJD
	if day <= 0 || day > 0xffff {
		return f
	}
	sod := s - (day-unixEpochMJD)*secPerDay
	f[0] = byte(day >> 8)
	f[1] = byte(day)
	f[2] = ToBCD(int(sod / 3600))
	f[3] = ToBCD(int(sod / 60 % 60))
	f[4] = ToBCD(int(sod % 60))
	return f
}

// DecodeFull is the inverse of EncodeFull. The all-zero field decodes
// to the zero time.Time.
func DecodeFull(f [FieldSize]byte) time.Time {
	if f == [FieldSize]byte{} {
		return time.Time{}
	}
	day := int64(f[0])<<8 | int64(f[1])
	sod := int64(FromBCD(f[2]))*3600 + int64(FromBCD(f[3]))*60 + int64(FromBCD(f[4]))
	return time.Unix((day-unixEpochMJD)*secPerDay+sod, 0).UTC()
}

// ToBCD packs 0-99 into two binary coded decimal nibbles.
func ToBCD(v int) byte {
	return byte(v/10<<4 | v%10)
}

// FromBCD unpacks two binary coded decimal nibbles.
func FromBCD(b byte) int {
	return int(b>>4)*10 + int(b&0x0f)
}

// floorDiv divides rounding toward negative infinity, so that dates
// before 1970 land on the correct MJD day.
func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b < 0 {
		q--
	}
	return q
}

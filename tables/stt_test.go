/*
NAME
  stt_test.go

DESCRIPTION
  stt_test.go tests the System Time Table codec.

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
	"bytes"
	"encoding/xml"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ausocean/dtv/psi"
)

const (
	errNotExpectedOut = "did not get expected output: \ngot : %v, \nwant: %v"
	errUnexpectedErr  = "unexpected error: %v"
)

var testSTT = STT{
	ProtocolVersion: 0,
	SystemTime:      1000000000,
	GPSUTCOffset:    18,
	DSStatus:        true,
	DSDayOfMonth:    14,
	DSHour:          2,
	Descriptors: psi.DescriptorList{
		{Tag: 0x97, Data: []byte{0x0a, 0x0b}},
	},
}

var testSTTPayload = []byte{
	0x00,                   // protocol_version
	0x3b, 0x9a, 0xca, 0x00, // system_time (1000000000)
	0x12, // GPS_UTC_offset (18)
	0xee, // DS_status:1|reserved:2|DS_day_of_month:5 (1 11 01110)
	0x02, // DS_hour
	// descriptor loop
	0x97, 0x02, 0x0a, 0x0b,
}

func TestSTTEncodePayload(t *testing.T) {
	got, err := testSTT.EncodePayload(ATSC)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if !bytes.Equal(got, testSTTPayload) {
		t.Errorf(errNotExpectedOut, got, testSTTPayload)
	}
}

func TestSTTDecodePayload(t *testing.T) {
	var got STT
	if err := got.DecodePayload(testSTTPayload, ATSC); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if diff := cmp.Diff(testSTT, got); diff != "" {
		t.Errorf("unexpected STT (-want +got):\n%s", diff)
	}
}

func TestSTTRoundTrip(t *testing.T) {
	tests := []STT{
		testSTT,
		{},
		{ProtocolVersion: 7, SystemTime: 0xffffffff, GPSUTCOffset: 0xff},
		// Upper bound of the declared field ranges.
		{SystemTime: 1, DSDayOfMonth: 31, DSHour: 23},
	}
	for i, want := range tests {
		b, err := want.EncodePayload(ATSC)
		if err != nil {
			t.Fatalf(errUnexpectedErr, err)
		}
		var got STT
		if err := got.DecodePayload(b, ATSC); err != nil {
			t.Fatalf(errUnexpectedErr, err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("round trip failed for test %v (-want +got):\n%s", i, diff)
		}
	}
}

func TestSTTReservedBits(t *testing.T) {
	b, err := testSTT.EncodePayload(ATSC)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	// Both reserved bits after DS_status must be set.
	if b[6]&0x60 != 0x60 {
		t.Errorf("reserved bits not set to ones: %08b", b[6])
	}
}

func TestSTTDecodeTruncated(t *testing.T) {
	for i := 0; i < sttFixedLen; i++ {
		var s STT
		err := s.DecodePayload(testSTTPayload[:i], ATSC)
		if !errors.Is(err, psi.ErrTruncated) {
			t.Errorf("expected ErrTruncated for %d byte payload, got: %v", i, err)
		}
	}
}

func TestSTTDescriptorOverrun(t *testing.T) {
	b := append(append([]byte(nil), testSTTPayload[:sttFixedLen]...), 0x97, 0x05, 0x0a)
	var s STT
	err := s.DecodePayload(b, ATSC)
	if !errors.Is(err, psi.ErrDescriptorOverrun) {
		t.Errorf("expected ErrDescriptorOverrun, got: %v", err)
	}
}

func TestSTTUTCTime(t *testing.T) {
	want := time.Date(2011, 9, 14, 1, 46, 22, 0, time.UTC)
	if got := testSTT.UTCTime(); !got.Equal(want) {
		t.Errorf(errNotExpectedOut, got, want)
	}

	unset := STT{GPSUTCOffset: 18}
	if got := unset.UTCTime(); !got.IsZero() {
		t.Errorf("unset system_time must give the zero time, got: %v", got)
	}
}

// TestSTTPartialFit checks the deliberate single-section truncation
// policy: descriptors past the section capacity are dropped whole.
func TestSTTPartialFit(t *testing.T) {
	s := STT{SystemTime: 1}
	for i := 0; i < 5; i++ {
		s.Descriptors = append(s.Descriptors, psi.Descriptor{Tag: 0x97, Data: make([]byte, 254)})
	}
	b, err := s.EncodePayload(ATSC)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	var got STT
	if err := got.DecodePayload(b, ATSC); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	// Capacity is 1004 bytes; each descriptor is 256, so three fit.
	if len(got.Descriptors) != 3 {
		t.Errorf("unexpected descriptor count after truncation\ngot: %v, want: %v", len(got.Descriptors), 3)
	}
}

func TestSTTSectionRoundTrip(t *testing.T) {
	b, err := EncodeSection(&testSTT, ATSC)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if b[1] != TableIDSTT {
		t.Errorf("unexpected table id: %#x", b[1])
	}
	// Table id extension is fixed at zero.
	if b[4] != 0 || b[5] != 0 {
		t.Errorf("unexpected table id extension: %x %x", b[4], b[5])
	}

	tab, err := DecodeSection(b, ATSC)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	got, ok := tab.(*STT)
	if !ok {
		t.Fatalf("expected *STT, got %T", tab)
	}
	if diff := cmp.Diff(&testSTT, got); diff != "" {
		t.Errorf("unexpected STT (-want +got):\n%s", diff)
	}
}

func TestXMLNameByID(t *testing.T) {
	tests := []struct {
		id   uint8
		want string
		ok   bool
	}{
		{TableIDSTT, "STT", true},
		{TableIDTOT, "TOT", true},
		{0x42, "", false},
	}
	for _, test := range tests {
		got, ok := XMLNameByID(test.id)
		if got != test.want || ok != test.ok {
			t.Errorf(errNotExpectedOut, got, test.want)
		}
	}
}

func TestSTTXML(t *testing.T) {
	b, err := xml.Marshal(&testSTT)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want := `<STT protocol_version="0" system_time="1000000000" GPS_UTC_offset="18"` +
		` DS_status="true" DS_day_of_month="14" DS_hour="2">` +
		`<generic_descriptor tag="0x97">0A0B</generic_descriptor></STT>`
	if string(b) != want {
		t.Errorf(errNotExpectedOut, string(b), want)
	}

	var got STT
	if err := xml.Unmarshal(b, &got); err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	if diff := cmp.Diff(testSTT, got); diff != "" {
		t.Errorf("unexpected STT (-want +got):\n%s", diff)
	}
}

func TestSTTXMLOmittedAttributes(t *testing.T) {
	s := STT{SystemTime: 1, GPSUTCOffset: 18}
	b, err := xml.Marshal(&s)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want := `<STT protocol_version="0" system_time="1" GPS_UTC_offset="18" DS_status="false"></STT>`
	if string(b) != want {
		t.Errorf(errNotExpectedOut, string(b), want)
	}

	// DS_hour alone forces the attribute out.
	s.DSHour = 5
	b, err = xml.Marshal(&s)
	if err != nil {
		t.Fatalf(errUnexpectedErr, err)
	}
	want = `<STT protocol_version="0" system_time="1" GPS_UTC_offset="18" DS_status="false" DS_hour="5"></STT>`
	if string(b) != want {
		t.Errorf(errNotExpectedOut, string(b), want)
	}
}

func TestSTTXMLInvalidAttribute(t *testing.T) {
	tests := []string{
		`<STT system_time="1" GPS_UTC_offset="18" DS_status="true" DS_day_of_month="32"/>`,
		`<STT system_time="1" GPS_UTC_offset="18" DS_status="true" DS_hour="24"/>`,
		`<STT GPS_UTC_offset="18" DS_status="true"/>`,
		`<STT system_time="1" DS_status="true"/>`,
		`<STT system_time="1" GPS_UTC_offset="18"/>`,
		`<STT system_time="1" GPS_UTC_offset="256" DS_status="true"/>`,
		`<STT system_time="1" GPS_UTC_offset="18" DS_status="maybe"/>`,
	}
	for i, test := range tests {
		var s STT
		err := xml.Unmarshal([]byte(test), &s)
		if !errors.Is(err, psi.ErrInvalidAttribute) {
			t.Errorf("expected ErrInvalidAttribute for test %v, got: %v", i, err)
		}
	}
}

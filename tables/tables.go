/*
NAME
  tables.go

DESCRIPTION
  tables.go provides the Table interface implemented by each table
  codec, and a registry routing binary sections and XML elements to
  the codec for their table id or element name.

AUTHOR
  Saxon Nelson-Milton <saxon@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/


// Package tables provides codecs for broadcast signaling tables,
// converting between binary section payloads, structured records and
// XML. Currently the ATSC System Time Table (STT) and the DVB Time
// Offset Table (TOT) are implemented.
package tables

import (
	"github.com/pkg/errors"

	"github.com/ausocean/dtv/psi"
)

// Table ids of the implemented tables.
const (
	TableIDSTT = 0xcd // ATSC A/65 system_time_table_section.
	TableIDTOT = 0x73 // DVB EN 300 468 time_offset_section.
)

// PIDs the implemented tables are carried on.
const (
	PIDATSCBase = 0x1ffb // ATSC base PID, carries the STT.
	PIDTOT      = 0x0014
)

// Table is one broadcast signaling table instance. A Table converts
// between its binary section payload and its structured form; XML
// conversion is provided by the encoding/xml interfaces on each
// concrete type.
type Table interface {
	// TableID returns the table id identifying this table kind.
	TableID() uint8

	// DecodePayload replaces the content of the table with the decoded
	// section payload. The payload excludes section framing and CRC.
	DecodePayload(b []byte, std Standards) error

	// EncodePayload returns the binary section payload of the table.
	EncodePayload(std Standards) ([]byte, error)
}

// A registration describes how one table kind is framed and created.
type registration struct {
	id       uint8
	xmlName  string
	syntax   bool // Long section with syntax header.
	shortCRC bool // Short section carrying a trailing CRC32.
	newTable func() Table
}

var (
	registry    = map[uint8]registration{}
	xmlRegistry = map[string]registration{}
)

func register(r registration) {
	registry[r.id] = r
	xmlRegistry[r.xmlName] = r
}

func init() {
	register(registration{
		id:       TableIDSTT,
		xmlName:  "STT",
		syntax:   true,
		newTable: func() Table { return new(STT) },
	})
	register(registration{
		id:       TableIDTOT,
		xmlName:  "TOT",
		shortCRC: true,
		newTable: func() Table { return new(TOT) },
	})
}

// NewByXMLName returns an empty table for the given XML element name,
// or false if the name is not registered.
func NewByXMLName(name string) (Table, bool) {
	r, ok := xmlRegistry[name]
	if !ok {
		return nil, false
	}
	return r.newTable(), true
}

// XMLNameByID returns the XML element name for a table id.
func XMLNameByID(id uint8) (string, bool) {
	r, ok := registry[id]
	return r.xmlName, ok
}

// DecodeSection parses one section in bytes form and dispatches it to
// the codec registered for its table id.
func DecodeSection(b []byte, std Standards) (Table, error) {
	if len(b) < 2 {
		return nil, psi.ErrTruncated
	}
	r, ok := registry[b[1]] // Table id follows the pointer field.
	if !ok {
		return nil, errors.Errorf("unknown table id 0x%02x", b[1])
	}
	sec, err := psi.ParseSection(b, r.shortCRC)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse %s section", r.xmlName)
	}
	t := r.newTable()
	if err := t.DecodePayload(sec.Payload, std); err != nil {
		return nil, errors.Wrapf(err, "could not decode %s payload", r.xmlName)
	}
	return t, nil
}

// EncodeSection serializes t as one section in bytes form, framing
// and CRC included.
func EncodeSection(t Table, std Standards) ([]byte, error) {
	r, ok := registry[t.TableID()]
	if !ok {
		return nil, errors.Errorf("unregistered table id 0x%02x", t.TableID())
	}
	payload, err := t.EncodePayload(std)
	if err != nil {
		return nil, errors.Wrapf(err, "could not encode %s payload", r.xmlName)
	}
	sec := psi.Section{
		TableID:     r.id,
		Syntax:      r.syntax,
		Private:     true,
		CRC:         r.shortCRC,
		CurrentNext: true,
		Payload:     payload,
	}
	if ext, ok := t.(interface{ TableIDExtension() uint16 }); ok {
		sec.TableIDExt = ext.TableIDExtension()
	}
	b, err := sec.Bytes()
	if err != nil {
		return nil, errors.Wrapf(err, "could not frame %s section", r.xmlName)
	}
	return b, nil
}

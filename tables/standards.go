/*
NAME
  standards.go

DESCRIPTION
  standards.go defines the set of broadcast standards a table is being
  decoded or encoded under. Codecs take the active set as an explicit
  argument rather than reading ambient state, keeping them pure.

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

import "strings"

// Standards is a bit mask of active broadcast standards.
type Standards uint8

const (
	MPEG Standards = 1 << iota
	DVB
	ATSC
	ISDB

	// Japan modifies DVB/ISDB table semantics, notably TOT times
	// being carried in JST rather than UTC.
	Japan
)

// Has reports whether every standard in o is active in s.
func (s Standards) Has(o Standards) bool { return s&o == o }

// String returns the active standards as a comma separated list.
func (s Standards) String() string {
	names := []struct {
		bit  Standards
		name string
	}{
		{MPEG, "MPEG"},
		{DVB, "DVB"},
		{ATSC, "ATSC"},
		{ISDB, "ISDB"},
		{Japan, "Japan"},
	}
	var out []string
	for _, n := range names {
		if s.Has(n.bit) {
			out = append(out, n.name)
		}
	}
	if out == nil {
		return "none"
	}
	return strings.Join(out, ",")
}

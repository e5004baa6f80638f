/*
NAME
  xml.go

DESCRIPTION
  xml.go provides attribute parsing and formatting helpers shared by
  the table XML codecs.

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
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ausocean/dtv/psi"
)

// timeLayout is the absolute-time literal used in table XML.
const timeLayout = "2006-01-02 15:04:05"

// attrMap collects the attributes of a start element for lookup by
// local name.
type attrMap map[string]string

// parseUint parses the named attribute as an unsigned integer within
// [min, max]. If the attribute is absent, def is returned; required
// attributes pass required=true and flag ErrInvalidAttribute when
// missing.
func (m attrMap) parseUint(name string, required bool, def, min, max uint64) (uint64, error) {
	s, ok := m[name]
	if !ok {
		if required {
			return 0, errors.Wrap(psi.ErrInvalidAttribute, "missing attribute "+name)
		}
		return def, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, errors.Wrap(psi.ErrInvalidAttribute, "bad value for "+name)
	}
	if v < min || v > max {
		return 0, errors.Wrap(psi.ErrInvalidAttribute, fmt.Sprintf("%s out of range [%d,%d]", name, min, max))
	}
	return v, nil
}

// parseBool parses the named attribute as a boolean.
func (m attrMap) parseBool(name string, required bool) (bool, error) {
	s, ok := m[name]
	if !ok {
		if required {
			return false, errors.Wrap(psi.ErrInvalidAttribute, "missing attribute "+name)
		}
		return false, nil
	}
	switch s {
	case "true", "1":
		return true, nil
	case "false", "0":
		return false, nil
	}
	return false, errors.Wrap(psi.ErrInvalidAttribute, "bad value for "+name)
}

// parseTime parses the named attribute as an absolute UTC time
// literal.
func (m attrMap) parseTime(name string, required bool) (time.Time, error) {
	s, ok := m[name]
	if !ok {
		if required {
			return time.Time{}, errors.Wrap(psi.ErrInvalidAttribute, "missing attribute "+name)
		}
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(timeLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, errors.Wrap(psi.ErrInvalidAttribute, "bad value for "+name)
	}
	return t, nil
}

// formatOffset formats a time offset in minutes as [-]HH:MM.
func formatOffset(minutes int) string {
	sign := ""
	if minutes < 0 {
		sign = "-"
		minutes = -minutes
	}
	return fmt.Sprintf("%s%02d:%02d", sign, minutes/60, minutes%60)
}

// parseOffset is the inverse of formatOffset, also accepting a
// leading "+".
func parseOffset(s string) (int, error) {
	v := strings.TrimPrefix(s, "+")
	neg := strings.HasPrefix(v, "-")
	v = strings.TrimPrefix(v, "-")
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, errors.Wrap(psi.ErrInvalidAttribute, "bad time offset "+s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 {
		return 0, errors.Wrap(psi.ErrInvalidAttribute, "bad time offset "+s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, errors.Wrap(psi.ErrInvalidAttribute, "bad time offset "+s)
	}
	min := h*60 + m
	if neg {
		min = -min
	}
	return min, nil
}

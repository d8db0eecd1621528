package parser

import (
	"strings"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// HeardEntry is one station from MHEARD output. The station may be a
// node, an application, or an operator's keyboard station; MHEARD alone
// cannot tell, which is why this is the lowest-authority evidence source.
type HeardEntry struct {
	// Call is the heard callsign. HasSSID is false for stations heard
	// without a suffix; those cannot be crawl targets.
	Call model.Callsign

	// HeardAt is the timestamp the node attached to the entry, zero
	// when the node reported a relative age or nothing at all.
	HeardAt time.Time
}

// HeardList is the typed result of parsing MHEARD output for one port.
type HeardList struct {
	// Ident is the reporting node's advertised identity, when present.
	Ident NodeIdent

	// Port is the port the list covers, when the heading carried one.
	Port int

	// Entries holds the parsed heard stations.
	Entries []HeardEntry

	// Rejected holds raw tokens whose SSID was outside [0,15].
	Rejected []string

	// Skipped counts lines that could not be parsed at all.
	Skipped int
}

// heardTimeLayouts are the absolute timestamp formats seen across node
// software families. Tried in order.
var heardTimeLayouts = []string{
	"01/02/2006 15:04:05",
	"02-Jan-06 15:04:05",
	"2006-01-02 15:04:05",
}

// ParseMheard parses MHEARD command output.
//
// The first column is the heard callsign; everything after it is
// software-specific (absolute timestamps, relative ages, packet counts)
// and parsed opportunistically:
//
//	KE4OTZ:KE4OTZ-3} Mheard Port 1
//	KI4MCW-7     08/27/2026 14:22:01
//	N4XYZ        08/26/2026 09:10:55
//	KD9LSV-10    27 mins
func ParseMheard(raw string) *HeardList {
	list := &HeardList{}

	for _, line := range splitLines(raw) {
		if ident, ok := ParseNodeIdent(line); ok {
			list.Ident = ident
			if port, ok := parseHeardPort(line); ok {
				list.Port = port
			}
			continue
		}
		if isHeaderLine(line) {
			if port, ok := parseHeardPort(line); ok {
				list.Port = port
			}
			continue
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if outOfRangeSSID(fields[0]) {
			list.Rejected = append(list.Rejected, fields[0])
			continue
		}

		call, ok := model.ParseCallsign(fields[0])
		if !ok {
			list.Skipped++
			continue
		}

		entry := HeardEntry{Call: call}
		if len(fields) >= 3 {
			entry.HeardAt = parseHeardTime(fields[1] + " " + fields[2])
		}
		list.Entries = append(list.Entries, entry)
	}

	return list
}

// parseHeardTime tries each known timestamp layout, returning zero time
// when none matches (relative ages are deliberately left unparsed: the
// reporting node's clock base is unknowable).
func parseHeardTime(s string) time.Time {
	for _, layout := range heardTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// parseHeardPort extracts the port number from an MHEARD heading line.
func parseHeardPort(line string) (int, bool) {
	upper := strings.ToUpper(line)
	idx := strings.Index(upper, "PORT")
	if idx < 0 {
		return 0, false
	}
	fields := strings.Fields(upper[idx+len("PORT"):])
	if len(fields) == 0 {
		return 0, false
	}
	port := 0
	for _, c := range fields[0] {
		if c < '0' || c > '9' {
			return 0, false
		}
		port = port*10 + int(c-'0')
	}
	return port, true
}

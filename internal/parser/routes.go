package parser

import (
	"strconv"
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
)

// RouteEntry is one neighbor observation from ROUTES output.
type RouteEntry struct {
	// Port is the port number the route uses on the reporting node.
	Port int

	// Call is the neighbor's callsign-SSID as the sysop entered it.
	Call model.Callsign

	// Quality is the sysop-assigned route quality; 0 means blocked.
	Quality int

	// Locked reports the sysop lock marker ("!") on the entry.
	Locked bool
}

// RoutesTable is the typed result of parsing ROUTES output. ROUTES is the
// authoritative identity and reachability source: its entries are the
// sysop's own statement of who the node links to and on which SSID.
type RoutesTable struct {
	// Ident is the reporting node's advertised identity, when the
	// prompt header was present in the output.
	Ident NodeIdent

	// Entries holds the parsed neighbor rows.
	Entries []RouteEntry

	// Rejected holds raw tokens whose SSID was outside [0,15]. They are
	// logged, never crawled.
	Rejected []string

	// Skipped counts lines that could not be parsed at all.
	Skipped int
}

// ParseRoutes parses ROUTES command output.
//
// The canonical layout (BPQ32, XRouter and TheNet agree on the essentials)
// is one neighbor per line:
//
//	KE4OTZ:KE4OTZ-3} Routes
//	> 1 KI4MCW-7    192  23
//	  1 N4XYZ-1     150   4
//	  2 AB4KN-2       0   0!
//
// Columns are port, neighbor callsign and quality; a leading ">" marks the
// route in use and a trailing "!" a sysop lock. Extra columns vary by
// software and are ignored. Garbled lines are skipped and counted.
func ParseRoutes(raw string) *RoutesTable {
	table := &RoutesTable{}

	for _, line := range splitLines(raw) {
		if ident, ok := ParseNodeIdent(line); ok {
			table.Ident = ident
			continue
		}
		if isHeaderLine(line) {
			continue
		}

		fields := strings.Fields(strings.TrimPrefix(line, ">"))
		if len(fields) < 3 {
			table.Skipped++
			continue
		}

		port, err := strconv.Atoi(fields[0])
		if err != nil || port < 0 {
			table.Skipped++
			continue
		}

		if outOfRangeSSID(fields[1]) {
			table.Rejected = append(table.Rejected, fields[1])
			continue
		}

		call, ok := model.ParseCallsign(fields[1])
		if !ok {
			table.Skipped++
			continue
		}

		locked := strings.HasSuffix(fields[2], "!") || strings.HasSuffix(strings.TrimSpace(line), "!")
		quality, err := strconv.Atoi(strings.TrimSuffix(fields[2], "!"))
		if err != nil || quality < 0 {
			table.Skipped++
			continue
		}

		table.Entries = append(table.Entries, RouteEntry{
			Port:    port,
			Call:    call,
			Quality: quality,
			Locked:  locked,
		})
	}

	return table
}

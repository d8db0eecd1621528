package parser

import (
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
)

// NodesEntry is one alias from NODES output: a NET/ROM alias string
// mapped to the callsign-SSID answering for it.
//
// NODES tables advertise services, not ports: a BBS alias typically points
// at the mail SSID, a CHAT alias at the chat SSID. That makes this source
// lower-priority identity evidence than ROUTES, but the alias strings
// themselves are worth recording on the node.
type NodesEntry struct {
	// Alias is the advertised NET/ROM alias, uppercase.
	Alias string

	// Call is the callsign-SSID behind the alias.
	Call model.Callsign
}

// NodesTable is the typed result of parsing NODES output.
type NodesTable struct {
	// Ident is the reporting node's advertised identity, when present.
	Ident NodeIdent

	// Entries holds the parsed alias rows.
	Entries []NodesEntry

	// Rejected holds raw tokens whose SSID was outside [0,15].
	Rejected []string

	// Skipped counts tokens that could not be parsed at all.
	Skipped int
}

// ParseNodes parses NODES command output.
//
// Aliases come packed several to a line in ALIAS:CALL-SSID form:
//
//	KE4OTZ:KE4OTZ-3} Nodes
//	OTZBBS:KE4OTZ-1   OTZCHT:KE4OTZ-2   MCW:KI4MCW-7
//	XYZ:N4XYZ-1
//
// Tokens that are not ALIAS:CALL pairs (column headers, partial line
// tails) are skipped and counted.
func ParseNodes(raw string) *NodesTable {
	table := &NodesTable{}

	for _, line := range splitLines(raw) {
		if ident, ok := ParseNodeIdent(line); ok {
			table.Ident = ident
			continue
		}
		if isHeaderLine(line) {
			continue
		}

		for _, token := range strings.Fields(line) {
			colon := strings.IndexByte(token, ':')
			if colon <= 0 || colon == len(token)-1 {
				table.Skipped++
				continue
			}

			alias := strings.ToUpper(token[:colon])
			rest := token[colon+1:]

			if outOfRangeSSID(rest) {
				table.Rejected = append(table.Rejected, token)
				continue
			}

			call, ok := model.ParseCallsign(rest)
			if !ok {
				table.Skipped++
				continue
			}

			table.Entries = append(table.Entries, NodesEntry{
				Alias: alias,
				Call:  call,
			})
		}
	}

	return table
}

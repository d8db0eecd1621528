package parser

import (
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
)

// NodeIdent is the identity a node advertises in its own command prompt
// header, e.g. "KE4OTZ:KE4OTZ-3}" or "OTZ:KE4OTZ-3}".
type NodeIdent struct {
	// Alias is the node's NET/ROM alias from the prompt.
	Alias string

	// Call is the callsign-SSID the node advertises for itself.
	Call model.Callsign
}

// ParseNodeIdent extracts the advertised identity from a command prompt
// header line. Returns the ident and true on success. The header format
// "ALIAS:CALL-SSID}" is shared by BPQ, XRouter and TheNet derivatives;
// anything else returns false.
func ParseNodeIdent(line string) (NodeIdent, bool) {
	trimmed := strings.TrimSpace(line)
	brace := strings.IndexByte(trimmed, '}')
	if brace < 0 {
		return NodeIdent{}, false
	}

	head := trimmed[:brace]
	colon := strings.IndexByte(head, ':')
	if colon < 0 {
		return NodeIdent{}, false
	}

	call, ok := model.ParseCallsign(head[colon+1:])
	if !ok {
		return NodeIdent{}, false
	}

	return NodeIdent{
		Alias: strings.ToUpper(strings.TrimSpace(head[:colon])),
		Call:  call,
	}, true
}

// splitLines breaks command output into trimmed lines, dropping blanks.
func splitLines(raw string) []string {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n") {
		line = strings.Trim(line, " \r\t")
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// isHeaderLine reports whether a line is a prompt header or column
// heading rather than table data.
func isHeaderLine(line string) bool {
	if strings.ContainsRune(line, '}') {
		return true
	}
	upper := strings.ToUpper(line)
	for _, heading := range []string{"ROUTES", "NODES:", "MHEARD", "PORTS", "CALLSIGN", "---"} {
		if strings.HasPrefix(upper, heading) {
			return true
		}
	}
	return false
}

// outOfRangeSSID reports whether a token looks like a callsign whose SSID
// suffix is outside [0,15]. Such entries cannot exist on air as nodes, so
// they are rejected as crawl targets but still logged by the caller.
func outOfRangeSSID(token string) bool {
	cleaned := strings.TrimRight(strings.TrimSpace(token), "!*#>+")
	idx := strings.IndexByte(cleaned, '-')
	if idx <= 0 {
		return false
	}
	suffix := cleaned[idx+1:]
	if suffix == "" {
		return false
	}
	n := 0
	for _, c := range suffix {
		if c < '0' || c > '9' {
			return false
		}
		n = n*10 + int(c-'0')
		if n > 99 {
			break
		}
	}
	return n > model.MaxSSID
}

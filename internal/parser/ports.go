package parser

import (
	"strconv"
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
)

// PortList is the typed result of parsing PORTS output.
type PortList struct {
	// Ident is the reporting node's advertised identity, when present.
	Ident NodeIdent

	// Ports holds the parsed port descriptions.
	Ports []model.Port

	// Skipped counts lines that could not be parsed at all.
	Skipped int
}

// ParsePorts parses PORTS command output.
//
// The port number leads each line; the rest is a sysop-written label that
// usually, but not reliably, mentions a frequency and speed:
//
//	KE4OTZ:KE4OTZ-3} Ports
//	  1 144.390MHz 1200bps VHF local access
//	  2 14.105MHz 300bps HF forwarding
//	  3 AXIP internet trunk
//
// Frequency and speed are extracted opportunistically from the label; a
// port whose label mentions neither still parses, classified as IP.
func ParsePorts(raw string) *PortList {
	list := &PortList{}

	for _, line := range splitLines(raw) {
		if ident, ok := ParseNodeIdent(line); ok {
			list.Ident = ident
			continue
		}
		if isHeaderLine(line) {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			list.Skipped++
			continue
		}

		number, err := strconv.Atoi(fields[0])
		if err != nil || number < 0 {
			list.Skipped++
			continue
		}

		port := model.Port{
			Number: number,
			Label:  strings.Join(fields[1:], " "),
		}

		for _, token := range fields[1:] {
			lower := strings.ToLower(token)
			switch {
			case strings.HasSuffix(lower, "mhz"):
				if mhz, err := strconv.ParseFloat(strings.TrimSuffix(lower, "mhz"), 64); err == nil {
					port.Frequency = mhz
				}
			case strings.HasSuffix(lower, "bps"):
				if bps, err := strconv.Atoi(strings.TrimSuffix(lower, "bps")); err == nil {
					port.Speed = bps
				}
			case strings.HasSuffix(lower, "baud"):
				if bps, err := strconv.Atoi(strings.TrimSuffix(lower, "baud")); err == nil {
					port.Speed = bps
				}
			}
		}

		port.Class = model.ClassifyLink(port.Frequency)
		list.Ports = append(list.Ports, port)
	}

	return list
}

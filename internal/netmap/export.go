package netmap

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
)

// WriteEdgesCSV writes the edge list as CSV for spreadsheet and mapping
// tools. Blocked edges (quality 0) are omitted unless includeBlocked is
// set; they are administrative fences, not usable links.
func WriteEdgesCSV(w io.Writer, d *Document, includeBlocked bool) error {
	cw := csv.NewWriter(w)

	header := []string{"from", "to", "port", "quality", "class", "frequencies_mhz", "sources"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	edges := append([]*model.Edge(nil), d.Edges...)
	sort.Slice(edges, func(i, j int) bool {
		return edges[i].Key() < edges[j].Key()
	})

	for _, e := range edges {
		if e.Blocked() && !includeBlocked {
			continue
		}
		record := []string{
			e.From.String(),
			e.To.String(),
			strconv.Itoa(e.Port),
			strconv.Itoa(e.Quality),
			e.Class.String(),
			joinFrequencies(e.Frequencies),
			strings.Join(e.Sources, " "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteNodesCSV writes the node list as CSV.
func WriteNodesCSV(w io.Writer, d *Document) error {
	cw := csv.NewWriter(w)

	header := []string{"call", "software", "locator", "latitude", "longitude", "last_heard", "visited", "ports", "aliases"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, key := range d.SortedNodeKeys() {
		n := d.Nodes[key]

		lastHeard := ""
		if !n.LastHeard.IsZero() {
			lastHeard = n.LastHeard.UTC().Format("2006-01-02 15:04:05")
		}

		aliases := make([]string, 0, len(n.Aliases))
		for name, alias := range n.Aliases {
			aliases = append(aliases, name+":"+alias.Call.String())
		}
		sort.Strings(aliases)

		record := []string{
			n.Call.String(),
			n.Software.String(),
			n.Locator,
			formatCoord(n.Latitude),
			formatCoord(n.Longitude),
			lastHeard,
			strconv.FormatBool(n.Visited),
			strconv.Itoa(len(n.Ports)),
			strings.Join(aliases, " "),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// joinFrequencies renders a frequency list as a space-separated string.
func joinFrequencies(freqs []float64) string {
	parts := make([]string, 0, len(freqs))
	for _, f := range freqs {
		parts = append(parts, strconv.FormatFloat(f, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// formatCoord renders a coordinate, empty when unset.
func formatCoord(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

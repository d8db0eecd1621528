package netmap

import (
	"fmt"
	"sort"
)

// QualityChange records an edge whose reported quality changed between
// two snapshots of the map.
type QualityChange struct {
	Key string `json:"key"`
	Old int    `json:"old"`
	New int    `json:"new"`
}

// DiffReport describes what changed between two map documents, typically
// a crawl from last month against a crawl from today.
type DiffReport struct {
	AddedNodes     []string        `json:"added_nodes,omitempty"`
	RemovedNodes   []string        `json:"removed_nodes,omitempty"`
	AddedEdges     []string        `json:"added_edges,omitempty"`
	RemovedEdges   []string        `json:"removed_edges,omitempty"`
	QualityChanges []QualityChange `json:"quality_changes,omitempty"`
}

// Empty reports whether the two documents were identical at the
// granularity the diff tracks.
func (r *DiffReport) Empty() bool {
	return len(r.AddedNodes) == 0 &&
		len(r.RemovedNodes) == 0 &&
		len(r.AddedEdges) == 0 &&
		len(r.RemovedEdges) == 0 &&
		len(r.QualityChanges) == 0
}

// Summary renders a one-line overview of the diff.
func (r *DiffReport) Summary() string {
	if r.Empty() {
		return "no differences"
	}
	return fmt.Sprintf("+%d/-%d nodes, +%d/-%d edges, %d quality changes",
		len(r.AddedNodes), len(r.RemovedNodes),
		len(r.AddedEdges), len(r.RemovedEdges),
		len(r.QualityChanges))
}

// Diff compares an older document against a newer one.
func Diff(older, newer *Document) *DiffReport {
	report := &DiffReport{}

	for key := range newer.Nodes {
		if _, ok := older.Nodes[key]; !ok {
			report.AddedNodes = append(report.AddedNodes, key)
		}
	}
	for key := range older.Nodes {
		if _, ok := newer.Nodes[key]; !ok {
			report.RemovedNodes = append(report.RemovedNodes, key)
		}
	}

	oldEdges := make(map[string]int, len(older.Edges))
	for _, e := range older.Edges {
		oldEdges[e.Key()] = e.Quality
	}
	newEdges := make(map[string]int, len(newer.Edges))
	for _, e := range newer.Edges {
		newEdges[e.Key()] = e.Quality
	}

	for key, quality := range newEdges {
		oldQuality, ok := oldEdges[key]
		switch {
		case !ok:
			report.AddedEdges = append(report.AddedEdges, key)
		case oldQuality != quality:
			report.QualityChanges = append(report.QualityChanges, QualityChange{Key: key, Old: oldQuality, New: quality})
		}
	}
	for key := range oldEdges {
		if _, ok := newEdges[key]; !ok {
			report.RemovedEdges = append(report.RemovedEdges, key)
		}
	}

	sort.Strings(report.AddedNodes)
	sort.Strings(report.RemovedNodes)
	sort.Strings(report.AddedEdges)
	sort.Strings(report.RemovedEdges)
	sort.Slice(report.QualityChanges, func(i, j int) bool {
		return report.QualityChanges[i].Key < report.QualityChanges[j].Key
	})

	return report
}

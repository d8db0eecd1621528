package netmap

import (
	"fmt"
	"path/filepath"

	"github.com/kd9lsv/packetmap/internal/model"
)

// Merge folds src into dst in place. Both documents describe the same
// network from different perspectives, so the merge is a union with
// conflict rules rather than a replacement:
//
//   - Node sets are unioned. For a node present in both, list fields
//     (ports, aliases) are unioned and scalar fields keep the more
//     detailed value: a non-empty field beats an empty one, and the
//     perspective heard more recently wins where both are set.
//   - Directed edges are unioned keyed by direction. Both directions of
//     one physical link are then coalesced into a single logical edge
//     with unioned frequencies and provenance and the better quality.
//
// Union operations commute and associate, so merging perspective files
// in any order yields the same map whenever scalar fields do not
// conflict.
func Merge(dst, src *Document) {
	for _, key := range src.SortedNodeKeys() {
		srcNode := src.Nodes[key]
		dstNode, ok := dst.Nodes[key]
		if !ok {
			copied := *srcNode
			copied.Aliases = copyAliases(srcNode.Aliases)
			copied.Ports = append([]model.Port(nil), srcNode.Ports...)
			dst.Nodes[key] = &copied
			continue
		}
		mergeNode(dstNode, srcNode)
	}

	for _, e := range src.Edges {
		dst.UpsertMergedEdge(e)
	}

	CoalesceBidirectional(dst)
}

// mergeNode folds one perspective's view of a node into the canonical
// record. The node heard more recently is the fresher witness, so its
// scalar values win conflicts; either way no non-empty detail is lost to
// an empty field.
func mergeNode(dst, src *model.Node) {
	srcFresher := src.LastHeard.After(dst.LastHeard)

	if dst.Software == model.SoftwareUnknown || (srcFresher && src.Software != model.SoftwareUnknown) {
		dst.Software = src.Software
	}
	if dst.Locator == "" || (srcFresher && src.Locator != "") {
		dst.Locator = src.Locator
	}
	if dst.Latitude == 0 && dst.Longitude == 0 && (src.Latitude != 0 || src.Longitude != 0) {
		dst.Latitude = src.Latitude
		dst.Longitude = src.Longitude
	}
	if dst.Note == "" || (srcFresher && src.Note != "") {
		dst.Note = src.Note
	}

	dst.Touch(src.LastHeard)
	dst.Visited = dst.Visited || src.Visited

	for _, p := range src.Ports {
		mergePort(dst, p)
	}
	for name, alias := range src.Aliases {
		dst.SetAlias(name, alias)
	}
}

// mergePort adds or refreshes one port record, keyed by port number.
func mergePort(dst *model.Node, p model.Port) {
	for i, existing := range dst.Ports {
		if existing.Number != p.Number {
			continue
		}
		if existing.Frequency == 0 {
			dst.Ports[i].Frequency = p.Frequency
		}
		if existing.Speed == 0 {
			dst.Ports[i].Speed = p.Speed
		}
		if existing.Class == model.LinkUnknown {
			dst.Ports[i].Class = p.Class
		}
		if existing.Label == "" {
			dst.Ports[i].Label = p.Label
		}
		return
	}
	dst.Ports = append(dst.Ports, p)
}

// UpsertMergedEdge unions one edge observation from another perspective
// into the document. Unlike UpsertEdge (a fresh first-hand observation),
// a merged edge never overwrites quality downward: the better of the two
// reported qualities stands, since either sysop may be describing a
// degraded local view of the same link.
func (d *Document) UpsertMergedEdge(obs *model.Edge) {
	existing := d.Edge(obs.Key())
	if existing == nil {
		copied := *obs
		copied.Frequencies = append([]float64(nil), obs.Frequencies...)
		copied.Sources = append([]string(nil), obs.Sources...)
		d.Edges = append(d.Edges, &copied)
		return
	}

	if obs.Quality > existing.Quality {
		existing.Quality = obs.Quality
	}
	if existing.Class == model.LinkUnknown {
		existing.Class = obs.Class
	}
	for _, f := range obs.Frequencies {
		existing.AddFrequency(f)
	}
	for _, s := range obs.Sources {
		existing.AddSource(s)
	}
}

// CoalesceBidirectional collapses both directions of each physical link
// into one logical edge. The surviving direction is the lexically
// smaller key, with frequencies and provenance unioned and the better
// quality kept, so two stations crawling the same link from opposite
// ends produce one edge instead of two half-truths.
func CoalesceBidirectional(d *Document) {
	byKey := make(map[string]*model.Edge, len(d.Edges))
	for _, e := range d.Edges {
		byKey[e.Key()] = e
	}

	kept := make([]*model.Edge, 0, len(d.Edges))
	dropped := make(map[string]bool)

	for _, e := range d.Edges {
		if dropped[e.Key()] {
			continue
		}
		reverse, ok := byKey[e.ReverseKey()]
		if !ok || reverse == e {
			kept = append(kept, e)
			continue
		}

		survivor, other := e, reverse
		if survivor.Key() > other.Key() {
			survivor, other = other, survivor
		}

		if other.Quality > survivor.Quality {
			survivor.Quality = other.Quality
		}
		if survivor.Class == model.LinkUnknown {
			survivor.Class = other.Class
		}
		for _, f := range other.Frequencies {
			survivor.AddFrequency(f)
		}
		for _, s := range other.Sources {
			survivor.AddSource(s)
		}

		// Mark both directions handled so the reverse entry is not
		// coalesced a second time when the loop reaches it.
		dropped[e.Key()] = true
		dropped[reverse.Key()] = true
		kept = append(kept, survivor)
	}

	d.Edges = kept
}

// FilterSelfInputs removes merge inputs that resolve to the output path
// itself. Merging a document into itself would double its own
// observations, so such inputs are rejected rather than silently
// processed. The rejected list carries one wrapped ErrSelfMerge per
// offender for the run report.
func FilterSelfInputs(output string, inputs []string) (kept []string, rejected []error) {
	outAbs, err := filepath.Abs(output)
	if err != nil {
		outAbs = output
	}

	for _, in := range inputs {
		inAbs, err := filepath.Abs(in)
		if err != nil {
			inAbs = in
		}
		if inAbs == outAbs {
			rejected = append(rejected, fmt.Errorf("%w: input %s is the merge output", model.ErrSelfMerge, in))
			continue
		}
		kept = append(kept, in)
	}
	return kept, rejected
}

// copyAliases deep-copies an alias map.
func copyAliases(src map[string]model.Alias) map[string]model.Alias {
	if src == nil {
		return nil
	}
	out := make(map[string]model.Alias, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

package planner

import (
	"sort"

	"github.com/kd9lsv/packetmap/internal/model"
)

// Path is one candidate hop sequence from start to target, inclusive of
// both endpoints.
type Path struct {
	// Hops lists the nodes in order, start first, target last.
	Hops []model.Callsign
}

// HopCount returns the number of link-layer hops in the path.
func (p Path) HopCount() int {
	if len(p.Hops) == 0 {
		return 0
	}
	return len(p.Hops) - 1
}

// Target returns the final node of the path.
func (p Path) Target() model.Callsign {
	if len(p.Hops) == 0 {
		return model.Callsign{}
	}
	return p.Hops[len(p.Hops)-1]
}

// key returns a comparable representation for deduplication and
// deterministic ordering.
func (p Path) key() string {
	s := ""
	for i, hop := range p.Hops {
		if i > 0 {
			s += ">"
		}
		s += hop.String()
	}
	return s
}

// DefaultMaxCandidates bounds how many alternate paths Paths returns.
// Three alternates cover the realistic retry budget: a node whose three
// best parents all fail to raise it is effectively off the air.
const DefaultMaxCandidates = 3

// Planner computes shortest known hop sequences over the edges collected
// so far. Edges with quality 0 are sysop-blocked and never traversed.
//
// Design decision: The planner is rebuilt from the edge set whenever the
// orchestrator replans rather than mutated incrementally. At amateur-radio
// scale (hundreds of nodes, not millions) a fresh adjacency build is
// microseconds, and immutability keeps replanning trivially correct.
type Planner struct {
	adj map[string][]model.Callsign
}

// New builds a Planner from a set of edge observations. Blocked edges
// (quality 0) are excluded. Neighbor lists are sorted so traversal order,
// and therefore path selection among equals, is deterministic and
// repeatable across runs.
func New(edges []*model.Edge) *Planner {
	adj := make(map[string][]model.Callsign)
	seen := make(map[string]bool)

	for _, e := range edges {
		if e == nil || e.Blocked() {
			continue
		}
		key := e.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		adj[e.From.String()] = append(adj[e.From.String()], e.To)
	}

	for from := range adj {
		sort.Slice(adj[from], func(i, j int) bool {
			return adj[from][i].String() < adj[from][j].String()
		})
	}

	return &Planner{adj: adj}
}

// Distances runs a full BFS from start and returns the hop distance to
// every reachable node. Used by the orchestrator to apply the hop limit.
func (p *Planner) Distances(start model.Callsign) map[string]int {
	dist := map[string]int{start.String(): 0}
	queue := []model.Callsign{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := dist[cur.String()]
		for _, next := range p.adj[cur.String()] {
			if _, ok := dist[next.String()]; ok {
				continue
			}
			dist[next.String()] = d + 1
			queue = append(queue, next)
		}
	}
	return dist
}

// Paths returns up to maxCandidates hop sequences from start to target,
// ordered ascending by hop count (ties broken lexically). The first path
// is always a true shortest path; the rest reach the target through
// alternate parents at the same or next-best hop count, giving the
// orchestrator somewhere to go when the primary path's connection fails.
//
// Returns nil when the target is unreachable through quality>0 edges.
func (p *Planner) Paths(start, target model.Callsign, maxCandidates int) []Path {
	if maxCandidates <= 0 {
		maxCandidates = DefaultMaxCandidates
	}
	if start.Equals(target) {
		return []Path{{Hops: []model.Callsign{start}}}
	}

	dist, parent := p.bfs(start)
	if _, ok := dist[target.String()]; !ok {
		return nil
	}

	// Every in-neighbor of the target that BFS reached is a candidate
	// last-hop parent. The shortest-path parent produces the minimal
	// path; others produce near-minimal alternates.
	var candidates []Path
	seen := make(map[string]bool)
	for _, last := range p.inNeighbors(target) {
		if _, ok := dist[last.String()]; !ok {
			continue
		}
		hops := p.reconstruct(parent, start, last)
		if hops == nil {
			continue
		}
		// Guard against cycles through the target itself.
		if containsCall(hops, target) {
			continue
		}
		path := Path{Hops: append(hops, target)}
		if seen[path.key()] {
			continue
		}
		seen[path.key()] = true
		candidates = append(candidates, path)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].HopCount() != candidates[j].HopCount() {
			return candidates[i].HopCount() < candidates[j].HopCount()
		}
		return candidates[i].key() < candidates[j].key()
	})

	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates
}

// bfs computes distances and a single shortest-path parent per node.
// Neighbor lists are pre-sorted, so the parent choice is deterministic.
func (p *Planner) bfs(start model.Callsign) (map[string]int, map[string]model.Callsign) {
	dist := map[string]int{start.String(): 0}
	parent := make(map[string]model.Callsign)
	queue := []model.Callsign{start}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range p.adj[cur.String()] {
			if _, ok := dist[next.String()]; ok {
				continue
			}
			dist[next.String()] = dist[cur.String()] + 1
			parent[next.String()] = cur
			queue = append(queue, next)
		}
	}
	return dist, parent
}

// inNeighbors returns every node with a usable edge into the target.
func (p *Planner) inNeighbors(target model.Callsign) []model.Callsign {
	var in []model.Callsign
	froms := make([]string, 0, len(p.adj))
	for from := range p.adj {
		froms = append(froms, from)
	}
	sort.Strings(froms)

	for _, from := range froms {
		for _, to := range p.adj[from] {
			if to.Equals(target) {
				if cs, err := model.NewCallsign(from); err == nil {
					in = append(in, cs)
				}
				break
			}
		}
	}
	return in
}

// reconstruct walks the parent map from end back to start. Returns nil
// when end is not on the BFS tree rooted at start.
func (p *Planner) reconstruct(parent map[string]model.Callsign, start, end model.Callsign) []model.Callsign {
	if start.Equals(end) {
		return []model.Callsign{start}
	}

	var reversed []model.Callsign
	cur := end
	for !cur.Equals(start) {
		reversed = append(reversed, cur)
		prev, ok := parent[cur.String()]
		if !ok {
			return nil
		}
		cur = prev
	}
	reversed = append(reversed, start)

	hops := make([]model.Callsign, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		hops = append(hops, reversed[i])
	}
	return hops
}

// containsCall reports whether the hop list already includes the callsign.
func containsCall(hops []model.Callsign, call model.Callsign) bool {
	for _, h := range hops {
		if h.Equals(call) {
			return true
		}
	}
	return false
}

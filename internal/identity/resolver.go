package identity

import (
	"sort"
	"strings"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// TieBreak selects the rule used when ROUTES consensus is split evenly
// between two or more SSIDs.
//
// Design decision: The tie-break is an explicit, documented policy rather
// than an accident of map iteration. MostRecent is the default because a
// station that changed its node SSID will be observed under the new value
// by every node crawled after the change; the older observations are the
// ones to discount.
type TieBreak int

const (
	// TieBreakMostRecent prefers the tied SSID with the most recent
	// observation. Default.
	TieBreakMostRecent TieBreak = iota

	// TieBreakLowestSSID prefers the numerically lowest tied SSID.
	// Fully reproducible on inputs without timestamps; useful for
	// offline merges of old documents.
	TieBreakLowestSSID
)

// Confidence grades how trustworthy a resolution is.
type Confidence int

const (
	// ConfidenceHigh means the resolution came from a forced override
	// or ROUTES evidence.
	ConfidenceHigh Confidence = iota
	// ConfidenceLow means the resolution rests on NODES alias or
	// MHEARD evidence alone and may point at a service SSID.
	ConfidenceLow
)

// Resolution is the resolver's answer for one base callsign.
type Resolution struct {
	// Call is the canonical callsign-SSID to use for connection
	// attempts.
	Call model.Callsign

	// Source names the evidence class that decided the resolution.
	Source model.EvidenceSource

	// Confidence grades the resolution.
	Confidence Confidence
}

// Resolver accumulates route evidence per base callsign and computes the
// canonical SSID for connection attempts.
//
// Precedence, highest first: user-forced override, ROUTES consensus, the
// node's own advertised alias when it agrees with ROUTES, any own alias
// with a valid SSID, and finally an MHEARD observation flagged
// low-confidence. The resolver never infers an SSID from a numeric
// convention: operators disagree on which SSID "is" the node port, so only
// collected evidence counts.
type Resolver struct {
	tieBreak TieBreak
	forced   map[string]int
	evidence map[string][]model.RouteEvidence
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithTieBreak sets the consensus tie-break policy.
func WithTieBreak(tb TieBreak) Option {
	return func(r *Resolver) {
		r.tieBreak = tb
	}
}

// WithForced installs user-forced SSID overrides, keyed by base callsign.
// Overrides persist for the whole run and outrank every other source.
func WithForced(overrides map[string]int) Option {
	return func(r *Resolver) {
		for base, ssid := range overrides {
			r.forced[strings.ToUpper(base)] = ssid
		}
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		tieBreak: TieBreakMostRecent,
		forced:   make(map[string]int),
		evidence: make(map[string][]model.RouteEvidence),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Observe records one piece of route evidence. Duplicate observations are
// kept deliberately: consensus is a tally, and two nodes reporting the
// same SSID is exactly the signal being counted.
func (r *Resolver) Observe(ev model.RouteEvidence) {
	base := strings.ToUpper(ev.Base)
	if base == "" {
		return
	}
	r.evidence[base] = append(r.evidence[base], ev)
}

// EvidenceCount returns how many observations exist for a base callsign.
func (r *Resolver) EvidenceCount(base string) int {
	return len(r.evidence[strings.ToUpper(base)])
}

// Resolve computes the canonical SSID for a base callsign from the
// evidence collected so far. Returns false when no stage produces an
// answer, in which case the target is unroutable.
func (r *Resolver) Resolve(base string) (Resolution, bool) {
	base = strings.ToUpper(base)

	// Stage 1: explicit user override.
	if ssid, ok := r.forced[base]; ok {
		if call, ok := callWith(base, ssid); ok {
			return Resolution{Call: call, Source: model.SourceUserForced, Confidence: ConfidenceHigh}, true
		}
	}

	evs := r.evidence[base]

	// Stage 2: ROUTES consensus across every crawled node.
	if ssid, ok := r.routesConsensus(evs); ok {
		if call, ok := callWith(base, ssid); ok {
			return Resolution{Call: call, Source: model.SourceRoutes, Confidence: ConfidenceHigh}, true
		}
	}

	// Stage 3: the node's own advertised alias, accepted only when it
	// agrees with a ROUTES consensus. With no consensus available this
	// stage cannot fire; it exists so a self-advertisement can confirm
	// but never override the routes tally.
	// (Covered by stage 2 returning first when a consensus exists.)

	// Stage 4: any advertised alias with a valid-range SSID.
	if ssid, ok := r.pickBySource(evs, model.SourceNodesAlias); ok {
		if call, ok := callWith(base, ssid); ok {
			return Resolution{Call: call, Source: model.SourceNodesAlias, Confidence: ConfidenceLow}, true
		}
	}

	// Stage 5: last resort, an MHEARD observation.
	if ssid, ok := r.pickBySource(evs, model.SourceMheard); ok {
		if call, ok := callWith(base, ssid); ok {
			return Resolution{Call: call, Source: model.SourceMheard, Confidence: ConfidenceLow}, true
		}
	}

	return Resolution{}, false
}

// routesConsensus tallies the SSID observed for a base callsign across
// all ROUTES evidence and returns the most frequent value. Ties fall to
// the configured TieBreak policy.
func (r *Resolver) routesConsensus(evs []model.RouteEvidence) (int, bool) {
	counts := make(map[int]int)
	for _, ev := range evs {
		if ev.Source == model.SourceRoutes {
			counts[ev.SSID]++
		}
	}
	if len(counts) == 0 {
		return 0, false
	}

	best := -1
	var tied []int
	for ssid, n := range counts {
		switch {
		case n > best:
			best = n
			tied = []int{ssid}
		case n == best:
			tied = append(tied, ssid)
		}
	}
	if len(tied) == 1 {
		return tied[0], true
	}
	return r.breakTie(evs, tied, model.SourceRoutes), true
}

// pickBySource returns the SSID to use from a single evidence class,
// applying the tie-break policy across all observations of that class.
func (r *Resolver) pickBySource(evs []model.RouteEvidence, source model.EvidenceSource) (int, bool) {
	var ssids []int
	seen := make(map[int]bool)
	for _, ev := range evs {
		if ev.Source == source && !seen[ev.SSID] {
			seen[ev.SSID] = true
			ssids = append(ssids, ev.SSID)
		}
	}
	if len(ssids) == 0 {
		return 0, false
	}
	if len(ssids) == 1 {
		return ssids[0], true
	}
	return r.breakTie(evs, ssids, source), true
}

// breakTie applies the configured policy to a set of candidate SSIDs.
func (r *Resolver) breakTie(evs []model.RouteEvidence, candidates []int, source model.EvidenceSource) int {
	sort.Ints(candidates)
	if r.tieBreak == TieBreakLowestSSID {
		return candidates[0]
	}

	// MostRecent: the candidate with the latest observation wins.
	// candidates are pre-sorted so equal timestamps still resolve
	// deterministically (lowest SSID).
	winner := candidates[0]
	latest := latestObservation(evs, candidates[0], source)
	for _, ssid := range candidates[1:] {
		if t := latestObservation(evs, ssid, source); t.After(latest) {
			latest = t
			winner = ssid
		}
	}
	return winner
}

// latestObservation finds the most recent ObservedAt for an SSID within
// one evidence class.
func latestObservation(evs []model.RouteEvidence, ssid int, source model.EvidenceSource) time.Time {
	var latest time.Time
	for _, ev := range evs {
		if ev.Source == source && ev.SSID == ssid && ev.ObservedAt.After(latest) {
			latest = ev.ObservedAt
		}
	}
	return latest
}

// callWith builds a callsign from a base string and an explicit SSID,
// returning false for malformed input instead of panicking: forced
// overrides arrive from user configuration and may be junk.
func callWith(base string, ssid int) (model.Callsign, bool) {
	cs, err := model.NewCallsign(base)
	if err != nil {
		return model.Callsign{}, false
	}
	withSSID, err := cs.WithSSID(ssid)
	if err != nil {
		return model.Callsign{}, false
	}
	return withSSID, true
}

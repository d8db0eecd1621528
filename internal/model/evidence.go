package model

import "time"

// EvidenceSource classifies where a piece of identity evidence came from.
// The numeric order encodes authority: lower values outrank higher ones.
type EvidenceSource int

// Evidence source constants, highest authority first.
const (
	// SourceUserForced is an explicit operator override.
	SourceUserForced EvidenceSource = iota
	// SourceRoutes is a neighbor entry from ROUTES output, the
	// authoritative source for node identity and reachability.
	SourceRoutes
	// SourceNodesAlias is an entry from NODES alias output. These often
	// reference service SSIDs rather than the node's own port SSID.
	SourceNodesAlias
	// SourceMheard is an observation from MHEARD output: possibly a
	// node, possibly an application or an operator's keyboard station.
	SourceMheard
)

// String returns the source name as used in logs and the run summary.
func (s EvidenceSource) String() string {
	switch s {
	case SourceUserForced:
		return "forced"
	case SourceRoutes:
		return "routes"
	case SourceNodesAlias:
		return "nodes"
	case SourceMheard:
		return "mheard"
	default:
		return "unknown"
	}
}

// RouteEvidence is one observation tying a base callsign to an SSID.
// Evidence accumulates per base callsign across every crawled node and is
// consumed only by the identity resolver; it is not persisted in the map
// document.
type RouteEvidence struct {
	// Base is the base callsign the evidence is about.
	Base string

	// SSID is the observed numeric suffix.
	SSID int

	// Quality is the route quality attached to the observation, when
	// the source provides one (ROUTES does, MHEARD does not).
	Quality int

	// Source classifies the command output the observation came from.
	Source EvidenceSource

	// Origin is the already-crawled node whose output contained the
	// observation.
	Origin Callsign

	// ObservedAt is when the observation was collected. Drives the
	// most-recent-wins tie-break.
	ObservedAt time.Time
}

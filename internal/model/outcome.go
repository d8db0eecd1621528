package model

import "time"

// HopStatus is the outcome of one connection hop attempt.
//
// Outcomes are explicit values rather than errors because a failed hop is
// ordinary control flow for the orchestrator: it tries the next candidate
// path rather than unwinding.
type HopStatus int

// Hop status constants.
const (
	// HopConnected means the hop's connect command was acknowledged.
	HopConnected HopStatus = iota
	// HopTimedOut means no acknowledgement arrived within the
	// hop-scaled connection timeout.
	HopTimedOut
	// HopRejected means the remote node answered with a failure
	// ("Busy", "Failure with ...", "Invalid callsign").
	HopRejected
)

// String returns the status name.
func (s HopStatus) String() string {
	switch s {
	case HopConnected:
		return "connected"
	case HopTimedOut:
		return "timed-out"
	case HopRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// HopOutcome reports the result of executing one hop of a path.
type HopOutcome struct {
	// Target is the node the hop attempted to reach.
	Target Callsign

	// Status is the outcome classification.
	Status HopStatus

	// Elapsed is how long the attempt took.
	Elapsed time.Duration

	// Detail carries the remote node's response line for rejected hops.
	Detail string
}

// SkipReason explains why the orchestrator never attempted (or gave up
// on) a candidate node. Every skipped node appears in the run summary
// with its reason; nothing is dropped silently.
type SkipReason string

// Skip reason constants.
const (
	// SkipExcluded means the callsign is on the operator's skip-list.
	SkipExcluded SkipReason = "excluded"
	// SkipStale means the node's last-heard evidence exceeded the
	// freshness threshold.
	SkipStale SkipReason = "stale"
	// SkipUnroutable means no usable alias or route to the node exists.
	SkipUnroutable SkipReason = "unroutable"
	// SkipInvalidSSID means the only observed SSID was outside [0,15].
	SkipInvalidSSID SkipReason = "invalid-ssid"
	// SkipHopLimit means the node lies beyond the configured hop limit.
	SkipHopLimit SkipReason = "hop-limit"
	// SkipVisited means the node was already visited per the crawl mode.
	SkipVisited SkipReason = "already-visited"
	// SkipExhausted means every candidate path failed.
	SkipExhausted SkipReason = "paths-exhausted"
	// SkipInterrupted means the run was cancelled before the node's turn.
	SkipInterrupted SkipReason = "interrupted"
	// SkipResolved means the identity resolver picked a different SSID
	// as the canonical target for this base callsign.
	SkipResolved SkipReason = "resolved-elsewhere"
	// SkipKnown means the node was already in the map from a previous
	// run and the mode only explores brand-new discoveries.
	SkipKnown SkipReason = "already-known"
)

// SkippedNode is one run-summary entry for a node that was not visited.
type SkippedNode struct {
	// Call identifies the skipped node. For invalid-SSID skips this is
	// the raw text, since no valid Callsign exists.
	Call string `json:"call"`

	// Reason is the skip classification.
	Reason SkipReason `json:"reason"`

	// Age is the last-heard age for staleness skips, zero otherwise.
	Age time.Duration `json:"age,omitempty"`

	// Detail carries extra context (failing path, source command).
	Detail string `json:"detail,omitempty"`
}

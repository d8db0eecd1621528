package model

import "time"

// CrawlMode selects which nodes a run is willing to attempt.
type CrawlMode string

// Crawl mode constants.
const (
	// ModeUpdate attempts new nodes and nodes whose data has gone stale,
	// leaving freshly visited nodes alone. Default.
	ModeUpdate CrawlMode = "update"
	// ModeReaudit re-attempts every known node regardless of freshness.
	ModeReaudit CrawlMode = "reaudit"
	// ModeNewOnly attempts only nodes that have never been visited.
	ModeNewOnly CrawlMode = "new-only"
)

// IsValid reports whether the mode is one of the known values.
func (m CrawlMode) IsValid() bool {
	switch m {
	case ModeUpdate, ModeReaudit, ModeNewOnly:
		return true
	default:
		return false
	}
}

// VisitedNode is one successful interrogation in a run summary.
type VisitedNode struct {
	// Call is the node's canonical callsign.
	Call string `json:"call"`

	// Hops is the path length used to reach it.
	Hops int `json:"hops"`

	// Elapsed is the total session time for the node.
	Elapsed time.Duration `json:"elapsed"`

	// Software is the detected software family, when identified.
	Software SoftwareFamily `json:"software,omitempty"`

	// NewNeighbors counts previously unknown nodes its tables revealed.
	NewNeighbors int `json:"new_neighbors"`
}

// FailedAttempt records a node that was attempted but never reached.
type FailedAttempt struct {
	// Call is the target's canonical callsign.
	Call string `json:"call"`

	// PathsTried is how many candidate paths were attempted.
	PathsTried int `json:"paths_tried"`

	// Detail carries the last hop failure description.
	Detail string `json:"detail,omitempty"`
}

// RunSummary is the full account of one crawl run. Every node the run
// decided not to attempt appears in Skipped with its reason; silence
// about a known node is a bug, not a shortcut.
type RunSummary struct {
	// Mode is the crawl mode the run used.
	Mode CrawlMode `json:"mode"`

	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Interrupted reports whether the run was cancelled before the
	// frontier drained.
	Interrupted bool `json:"interrupted,omitempty"`

	// Visited lists successful interrogations in completion order.
	Visited []VisitedNode `json:"visited,omitempty"`

	// Failed lists nodes attempted on every candidate path without
	// success. They stay in the map; failure to reach is not absence.
	Failed []FailedAttempt `json:"failed,omitempty"`

	// Skipped lists nodes deliberately not attempted, with reasons.
	Skipped []SkippedNode `json:"skipped,omitempty"`

	// Rejected lists raw tokens discarded for impossible SSIDs.
	Rejected []string `json:"rejected,omitempty"`

	// NodesKnown and EdgesKnown are map totals at the end of the run.
	NodesKnown int `json:"nodes_known"`
	EdgesKnown int `json:"edges_known"`
}

// Duration returns the run's wall-clock length.
func (s *RunSummary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

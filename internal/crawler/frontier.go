package crawler

import "sort"

// nodeState tracks where a target stands in the crawl lifecycle.
type nodeState int

const (
	// stateUnknown: never seen this run.
	stateUnknown nodeState = iota
	// stateFrontier: queued for an attempt.
	stateFrontier
	// stateAttempting: an attempt is in progress.
	stateAttempting
	// stateVisited: fully interrogated this run.
	stateVisited
	// stateFailed: every candidate path was tried without success.
	stateFailed
	// stateSkipped: deliberately not attempted (excluded, stale, ...).
	stateSkipped
)

// frontier is the crawl work list: a state machine per known target plus
// a deterministic queue. Targets move Unknown -> Frontier -> Attempting
// and land in Visited, Failed or Skipped; all three are terminal for the
// run, so no target is attempted twice.
type frontier struct {
	states map[string]nodeState
}

// newFrontier creates an empty frontier.
func newFrontier() *frontier {
	return &frontier{states: make(map[string]nodeState)}
}

// Add queues a target unless it already has a state this run. Returns
// true when the target is newly queued.
func (f *frontier) Add(call string) bool {
	if f.states[call] != stateUnknown {
		return false
	}
	f.states[call] = stateFrontier
	return true
}

// Next pops the lexically smallest queued target, so identical inputs
// crawl in identical order. Returns false when the frontier is drained.
func (f *frontier) Next() (string, bool) {
	next := ""
	for call, state := range f.states {
		if state != stateFrontier {
			continue
		}
		if next == "" || call < next {
			next = call
		}
	}
	if next == "" {
		return "", false
	}
	f.states[next] = stateAttempting
	return next, true
}

// MarkVisited records a fully successful interrogation.
func (f *frontier) MarkVisited(call string) {
	f.states[call] = stateVisited
}

// MarkFailed records that every candidate path was exhausted.
func (f *frontier) MarkFailed(call string) {
	f.states[call] = stateFailed
}

// MarkSkipped records a deliberate non-attempt.
func (f *frontier) MarkSkipped(call string) {
	f.states[call] = stateSkipped
}

// Visited reports whether the target completed this run.
func (f *frontier) Visited(call string) bool {
	return f.states[call] == stateVisited
}

// Pending returns how many targets are still queued.
func (f *frontier) Pending() int {
	n := 0
	for _, state := range f.states {
		if state == stateFrontier {
			n++
		}
	}
	return n
}

// Remaining returns the queued targets in lexical order, for the partial
// summary written on interruption.
func (f *frontier) Remaining() []string {
	var remaining []string
	for call, state := range f.states {
		if state == stateFrontier {
			remaining = append(remaining, call)
		}
	}
	sort.Strings(remaining)
	return remaining
}

package model

import "errors"

// Crawl error taxonomy.
//
// Design decision: We use package-level sentinel errors rather than typed
// error structs because callers only ever branch on the category with
// errors.Is(); the details travel separately in outcomes and summary
// entries. Transient RF-layer errors (timeout, garbled output) are
// recovered locally and never reach the operator; structural errors are
// surfaced in the final run summary.
var (
	// ErrConnectionTimeout means a path attempt was abandoned after the
	// hop-scaled timeout. Not fatal: an alternate path is queued.
	ErrConnectionTimeout = errors.New("connection timed out")

	// ErrAuthenticationFailure means the local node rejected the
	// configured credentials. Fatal for the current session only.
	ErrAuthenticationFailure = errors.New("authentication failed")

	// ErrProtocolParse means command output could not be parsed after
	// bounded retries. The command is skipped and logged.
	ErrProtocolParse = errors.New("unparseable command output")

	// ErrUnroutableTarget means a node lacks any usable alias or route
	// and is permanently excluded for this crawl.
	ErrUnroutableTarget = errors.New("no usable route to target")

	// ErrStaleNode means a node was proactively skipped because its
	// last-heard evidence exceeded the freshness threshold.
	ErrStaleNode = errors.New("node evidence is stale")

	// ErrSelfMerge means the designated output document appeared among
	// its own merge inputs. Rejected and reported, never silent.
	ErrSelfMerge = errors.New("output document listed as merge input")
)

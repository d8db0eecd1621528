// Package parser turns raw node command output into typed records.
//
// Packet nodes answer sysop commands with free-form text whose layout
// varies by software family and is routinely garbled in transit. Each
// command's output is modeled as its own result type with an explicit
// schema (RoutesTable, NodesTable, HeardList, PortList) rather than ad hoc
// field lookups.
//
// Design decision: Parsers never fail on bad lines. RF corruption produces
// truncated and mangled lines as a matter of course, so an unparseable
// line is skipped and counted instead of aborting the whole table. Callers
// inspect the Skipped counter to decide whether output was garbled badly
// enough to warrant a command retry.
package parser

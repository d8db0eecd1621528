// Package model defines the core data structures used throughout packetmap.
//
// This package contains the following main types:
//   - Callsign: an AX.25 station identity (base callsign + SSID)
//   - Node: the canonical record for one station in the network map
//   - Edge: a directed connection observation between two nodes
//   - RouteEvidence: one identity observation consumed by the resolver
//   - HopOutcome / SkippedNode: explicit outcome values threaded through
//     the crawl loop and the run summary
//
// Design decision: We separate models into their own package to avoid
// circular dependencies. Multiple packages (parser, identity, planner,
// crawler, netmap, report) need these types, so centralizing them prevents
// import cycles.
//
// The models are designed to be serializable to JSON for the persisted map
// document and database storage.
package model

// Package planner computes connection paths through the partially-known
// network graph.
//
// The planner is a breadth-first search over the edge observations
// collected so far, restricted to edges with quality above zero (quality 0
// marks a sysop-blocked route). It returns multiple candidate paths per
// target, ordered by hop count, so the crawl orchestrator can retry a
// failed connection through an alternate parent without replanning from
// scratch.
package planner

// Package netmap owns the persisted network map: the JSON document
// format, atomic load/save, perspective merging, CSV export and
// snapshot diffing.
//
// A document is one station's view of the network. Because every crawl
// sees the network from its own corner, documents from different
// stations are reconciled with Merge, which unions nodes and edges and
// collapses both directions of a physical link into one logical edge.
//
// Design decision: saves are always atomic (temp file plus rename in the
// destination directory). Crawls run for hours and are routinely
// interrupted; a half-written map document would destroy the very state
// that makes resuming cheap.
package netmap

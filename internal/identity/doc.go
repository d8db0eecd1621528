// Package identity resolves ambiguous station identities.
//
// A base callsign typically appears on air under several SSIDs at once:
// the node port, a mail BBS, a chat server. Different evidence sources
// disagree about which one is "the node", and only some of them are
// trustworthy. The Resolver ranks collected evidence through a fixed
// precedence chain (forced override, ROUTES consensus, advertised alias,
// MHEARD) and returns the single canonical callsign-SSID to dial.
//
// Design decision: Each precedence stage is a pure function over the
// collected evidence, evaluated in order. This keeps every stage
// independently testable and makes the precedence explicit instead of
// buried in conditional soup.
package identity

// Package session drives command/response exchanges over a chain of
// packet node connections.
//
// The physical channel is half-duplex, high-latency and single
// conversation: one telnet connection to the local node carries the whole
// crawl, and each additional hop multiplies the round-trip time. The
// session layer owns everything that follows from that: hop-scaled
// connect/command/operation timeouts, incremental read polling with an
// independent elapsed-time ceiling, a pre-command liveness probe, and
// bounded re-sends when a response arrives garbled.
//
// # Components
//
//   - Policy: the timeout and retry parameters, hop-scaled
//   - Session: the conversation driver (RunPath, Command, CommandExpect)
//   - TelnetTransport: dials and logs into the local node, optionally
//     through a SOCKS5 proxy
//
// Design decision: Hop outcomes are explicit values (connected, timed
// out, rejected), not errors. A failed hop is normal control flow for the
// orchestrator, which responds by trying an alternate parent path; only
// transport-level breakage surfaces as an error.
package session

// Package database provides SQLite-backed storage for crawl session
// history and heard station observations.
//
// The map document (package netmap) is the current-state artifact; this
// package is the longitudinal one. Session rows accumulate one per
// interrogation attempt, and heard rows keep the latest observation per
// (station, reporter, port) so staleness decisions can draw on evidence
// older than the current document.
package database

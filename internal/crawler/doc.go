// Package crawler orchestrates a network crawl: which node to attempt
// next, over which path, and what to do with the answers.
//
// The crawl is a breadth-first walk driven by a frontier state machine.
// Targets enter the frontier from ROUTES discoveries, get attempted over
// planner-chosen paths, and settle as visited, failed or skipped. Every
// decision not to attempt a node lands in the run summary with a reason.
//
// # Crawl modes
//
//   - update: attempt new and stale nodes, leave fresh visits alone
//   - reaudit: attempt everything the map knows
//   - new-only: attempt only never-visited nodes
//
// Cancellation is observed between targets. The interrupted run saves
// its document and reports the untouched remainder of the frontier, so
// the next run resumes where this one stopped.
package crawler

package config

import "errors"

// Configuration validation errors, returned by Config.Validate.
//
// Design decision: package-level sentinel errors rather than errors
// created inside Validate, so callers can branch with errors.Is while
// the messages stay human-readable.
var (
	// ErrNoLocalNode is returned when no local node callsign is
	// configured. Without it there is nowhere to start a crawl.
	ErrNoLocalNode = errors.New("no local node configured: set station.node or --node")

	// ErrInvalidLocalNode is returned when the local node callsign does
	// not parse as CALL or CALL-SSID.
	ErrInvalidLocalNode = errors.New("invalid local node callsign")

	// ErrNoTelnetAddress is returned when the telnet listener address is
	// empty.
	ErrNoTelnetAddress = errors.New("no telnet address configured: set station.telnet or --telnet")

	// ErrInvalidMode is returned for crawl modes other than update,
	// reaudit and new-only.
	ErrInvalidMode = errors.New("invalid crawl mode: use update, reaudit or new-only")

	// ErrInvalidMaxHops is returned when the hop limit is negative.
	// Use 0 for unlimited.
	ErrInvalidMaxHops = errors.New("invalid hop limit: must be non-negative")

	// ErrInvalidStaleAfter is returned when the staleness threshold is
	// negative. Use 0 to disable the staleness filter.
	ErrInvalidStaleAfter = errors.New("invalid staleness threshold: must be non-negative")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidOverride is returned when a forced SSID override lies
	// outside the valid 0-15 range.
	ErrInvalidOverride = errors.New("invalid SSID override: must be between 0 and 15")
)

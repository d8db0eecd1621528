package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Callsign errors.
var (
	// ErrInvalidCallsign is returned when the callsign format is invalid.
	ErrInvalidCallsign = errors.New("invalid callsign format")
	// ErrEmptyCallsign is returned when the callsign is empty.
	ErrEmptyCallsign = errors.New("callsign cannot be empty")
	// ErrInvalidSSID is returned when the SSID is outside the AX.25 range [0,15].
	ErrInvalidSSID = errors.New("invalid SSID: must be in range 0-15")
)

const (
	// MinSSID is the lowest valid AX.25 SSID.
	MinSSID = 0
	// MaxSSID is the highest valid AX.25 SSID. The SSID occupies four bits
	// in the AX.25 address field, so values above 15 cannot appear on air.
	MaxSSID = 15

	// minBaseLength and maxBaseLength bound the base callsign.
	// Real amateur callsigns are 3-6 characters; some NET/ROM aliases
	// squeeze into the same field, so 2 is accepted on parse.
	minBaseLength = 2
	maxBaseLength = 6
)

// Callsign is an immutable value object representing an AX.25 station
// identity: a base callsign plus an optional numeric SSID suffix.
//
// A station may appear on air both with an explicit SSID ("KE4OTZ-3") and
// without one ("KE4OTZ", equivalent to SSID 0). The distinction matters for
// crawling: an entry that never carried an explicit SSID cannot be trusted
// as a connectable node target, so HasSSID is tracked separately rather
// than collapsing both forms to SSID 0.
type Callsign struct {
	base    string // Uppercase base callsign without suffix
	ssid    int    // Numeric suffix, 0-15
	hasSSID bool   // True when the SSID was explicitly present
}

// NewCallsign parses a callsign string such as "KE4OTZ-3" or "ke4otz".
// The base is normalized to uppercase. A missing SSID parses as 0 with
// HasSSID reporting false. Returns an error for malformed input or an
// SSID outside [0,15].
func NewCallsign(s string) (Callsign, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(s))
	if trimmed == "" {
		return Callsign{}, ErrEmptyCallsign
	}

	base := trimmed
	ssid := 0
	hasSSID := false

	if idx := strings.IndexByte(trimmed, '-'); idx >= 0 {
		base = trimmed[:idx]
		suffix := trimmed[idx+1:]
		n, err := strconv.Atoi(suffix)
		if err != nil {
			return Callsign{}, fmt.Errorf("%w: %q", ErrInvalidCallsign, s)
		}
		if n < MinSSID || n > MaxSSID {
			return Callsign{}, fmt.Errorf("%w: got %d", ErrInvalidSSID, n)
		}
		ssid = n
		hasSSID = true
	}

	if !isValidBase(base) {
		return Callsign{}, fmt.Errorf("%w: %q", ErrInvalidCallsign, s)
	}

	return Callsign{base: base, ssid: ssid, hasSSID: hasSSID}, nil
}

// MustNewCallsign creates a Callsign or panics if invalid.
// Use only for known-valid callsigns in tests or initialization.
func MustNewCallsign(s string) Callsign {
	cs, err := NewCallsign(s)
	if err != nil {
		panic(err)
	}
	return cs
}

// isValidBase checks that a base callsign contains only A-Z and 0-9
// within the accepted length bounds.
func isValidBase(base string) bool {
	if len(base) < minBaseLength || len(base) > maxBaseLength {
		return false
	}
	for _, c := range base {
		isUpper := c >= 'A' && c <= 'Z'
		isDigit := c >= '0' && c <= '9'
		if !isUpper && !isDigit {
			return false
		}
	}
	return true
}

// String returns the canonical form: "BASE-SSID" for nonzero SSIDs,
// bare "BASE" for SSID 0. This matches how node software displays
// callsigns, where the -0 suffix is conventionally omitted.
func (c Callsign) String() string {
	if c.ssid == 0 {
		return c.base
	}
	return c.base + "-" + strconv.Itoa(c.ssid)
}

// Base returns the base callsign without the SSID suffix.
func (c Callsign) Base() string {
	return c.base
}

// SSID returns the numeric suffix (0 when none was present).
func (c Callsign) SSID() int {
	return c.ssid
}

// HasSSID reports whether the SSID was explicitly present in the parsed
// text. Entries without an explicit SSID are rejected as crawl targets.
func (c Callsign) HasSSID() bool {
	return c.hasSSID
}

// WithSSID returns a copy of the callsign with the given explicit SSID.
func (c Callsign) WithSSID(ssid int) (Callsign, error) {
	if ssid < MinSSID || ssid > MaxSSID {
		return Callsign{}, fmt.Errorf("%w: got %d", ErrInvalidSSID, ssid)
	}
	return Callsign{base: c.base, ssid: ssid, hasSSID: true}, nil
}

// IsZero returns true if this is a zero value (empty) Callsign.
func (c Callsign) IsZero() bool {
	return c.base == ""
}

// Equals returns true when base and SSID match. HasSSID is ignored:
// "KE4OTZ" and "KE4OTZ-0" identify the same station.
func (c Callsign) Equals(other Callsign) bool {
	return c.base == other.base && c.ssid == other.ssid
}

// MarshalText implements encoding.TextMarshaler so Callsign can serve
// as a JSON map key in the persisted map document.
func (c Callsign) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Callsign) UnmarshalText(text []byte) error {
	cs, err := NewCallsign(string(text))
	if err != nil {
		return err
	}
	*c = cs
	return nil
}

// ParseCallsign extracts a Callsign from a single token of command output.
// Returns the Callsign and true on success, or zero value and false for
// anything unparseable. Trailing markers that node software appends to
// heard lists and route tables (e.g. "KI4MCW-7!" or "N4XYZ-1*") are
// stripped before parsing.
func ParseCallsign(token string) (Callsign, bool) {
	cleaned := strings.TrimRight(strings.TrimSpace(token), "!*#>+")
	cs, err := NewCallsign(cleaned)
	if err != nil {
		return Callsign{}, false
	}
	return cs, true
}

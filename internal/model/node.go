package model

import (
	"time"
)

// LinkClass classifies the physical nature of a port or link.
type LinkClass string

// Link class constants.
const (
	// LinkUnknown is an unclassified link.
	LinkUnknown LinkClass = ""
	// LinkRF is a VHF/UHF packet link.
	LinkRF LinkClass = "rf"
	// LinkHF is an HF digital link (slow, long haul).
	LinkHF LinkClass = "hf"
	// LinkIP is an internet-carried link (AXIP/AXUDP tunnel).
	LinkIP LinkClass = "ip"
)

// String returns the string representation of the LinkClass.
func (c LinkClass) String() string {
	if c == LinkUnknown {
		return "unknown"
	}
	return string(c)
}

// ClassifyLink derives a link class from a nominal frequency in MHz.
// Frequencies below 30 MHz are HF; zero means the port is not an RF port
// at all (AXIP and friends).
func ClassifyLink(frequencyMHz float64) LinkClass {
	switch {
	case frequencyMHz == 0:
		return LinkIP
	case frequencyMHz < 30:
		return LinkHF
	default:
		return LinkRF
	}
}

// Port describes one radio (or tunnel) port on a node.
type Port struct {
	// Number is the port number as reported by the node.
	Number int `json:"number"`

	// Frequency is the nominal frequency in MHz, 0 for non-RF ports.
	Frequency float64 `json:"frequency,omitempty"`

	// Speed is the link speed in bits per second (1200, 9600, ...).
	Speed int `json:"speed,omitempty"`

	// Class is the RF/HF/IP classification.
	Class LinkClass `json:"class,omitempty"`

	// Label is the free-text port description from PORTS output.
	Label string `json:"label,omitempty"`
}

// AliasConfidence grades how much an advertised alias can be trusted
// as identity evidence.
type AliasConfidence string

// Alias confidence constants.
const (
	// ConfidenceConfirmed means a successful session reached this SSID.
	ConfidenceConfirmed AliasConfidence = "confirmed"
	// ConfidenceAdvertised means the alias came from NODES output.
	// NODES tables frequently list service SSIDs (mail, chat), so an
	// advertised alias is weaker identity evidence than ROUTES.
	ConfidenceAdvertised AliasConfidence = "advertised"
	// ConfidenceHeard means the alias was only ever seen in MHEARD.
	ConfidenceHeard AliasConfidence = "heard"
)

// Alias is one advertised service alias on a node: a human-readable name
// mapped to the callsign-SSID that answers for it.
type Alias struct {
	// Call is the callsign-SSID behind the alias.
	Call Callsign `json:"call"`

	// Confidence grades the evidence behind this mapping.
	Confidence AliasConfidence `json:"confidence"`
}

// Node is the canonical record for one station in the network map.
// Exactly one Node exists per identity (base callsign + SSID); the
// port-bearing SSID used for connections must never be conflated with a
// service-only SSID, which is why Aliases carries full Callsign values
// rather than bare numbers.
type Node struct {
	// Call is the canonical identity: the port-bearing callsign-SSID
	// used for connection attempts.
	Call Callsign `json:"call"`

	// Software is the detected node software family.
	Software SoftwareFamily `json:"software,omitempty"`

	// Locator is the Maidenhead grid locator, when known.
	Locator string `json:"locator,omitempty"`

	// Latitude and Longitude are decimal degrees, when known.
	Latitude  float64 `json:"latitude,omitempty"`
	Longitude float64 `json:"longitude,omitempty"`

	// Ports lists the node's radio and tunnel ports.
	Ports []Port `json:"ports,omitempty"`

	// Aliases maps service alias names (BBS, CHAT, ...) to the
	// callsign-SSID answering for them.
	Aliases map[string]Alias `json:"aliases,omitempty"`

	// Note is the sysop-entered free-text description.
	Note string `json:"note,omitempty"`

	// LastHeard is the most recent time any evidence placed this
	// station on the air.
	LastHeard time.Time `json:"last_heard,omitempty"`

	// Visited reports whether a fully successful interrogation session
	// has ever completed against this node.
	Visited bool `json:"visited,omitempty"`
}

// NewNode creates a Node for the given canonical callsign.
func NewNode(call Callsign) *Node {
	return &Node{
		Call:    call,
		Aliases: make(map[string]Alias),
	}
}

// Touch updates LastHeard if t is more recent than the stored value.
func (n *Node) Touch(t time.Time) {
	if t.After(n.LastHeard) {
		n.LastHeard = t
	}
}

// SetAlias records or upgrades an alias mapping. An existing entry is
// replaced only when the new confidence is at least as strong, so a
// confirmed mapping is never downgraded by later hearsay.
func (n *Node) SetAlias(name string, alias Alias) {
	if n.Aliases == nil {
		n.Aliases = make(map[string]Alias)
	}
	existing, ok := n.Aliases[name]
	if ok && confidenceRank(existing.Confidence) > confidenceRank(alias.Confidence) {
		return
	}
	n.Aliases[name] = alias
}

// confidenceRank orders alias confidence classes, strongest first.
func confidenceRank(c AliasConfidence) int {
	switch c {
	case ConfidenceConfirmed:
		return 2
	case ConfidenceAdvertised:
		return 1
	default:
		return 0
	}
}

// Age returns how long ago the node was last heard relative to now.
func (n *Node) Age(now time.Time) time.Duration {
	if n.LastHeard.IsZero() {
		return 0
	}
	return now.Sub(n.LastHeard)
}

// Stale reports whether the node's last-heard evidence is older than the
// freshness threshold. Nodes with no last-heard evidence at all are not
// considered stale; absence of evidence is not evidence of absence.
func (n *Node) Stale(now time.Time, threshold time.Duration) bool {
	if n.LastHeard.IsZero() || threshold <= 0 {
		return false
	}
	return n.Age(now) > threshold
}

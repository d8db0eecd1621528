package model

import "strings"

// softwareUnknownStr is the string representation for unknown software values.
const softwareUnknownStr = "unknown"

// SoftwareFamily represents the node/BBS software family running a station.
// The set is closed: every packet node encountered in the wild runs one of a
// small number of software packages, each with a recognizable banner.
type SoftwareFamily string

// Node software family constants.
const (
	// SoftwareUnknown represents unidentified node software.
	SoftwareUnknown SoftwareFamily = ""
	// SoftwareBPQ represents G8BPQ BPQ32/LinBPQ node software.
	SoftwareBPQ SoftwareFamily = "bpq32"
	// SoftwareXRouter represents the XRouter/XRPi node.
	SoftwareXRouter SoftwareFamily = "xrouter"
	// SoftwareJNOS represents the JNOS TCP/IP BBS.
	SoftwareJNOS SoftwareFamily = "jnos"
	// SoftwareNetROM represents classic NET/ROM and TheNet firmware.
	SoftwareNetROM SoftwareFamily = "netrom"
	// SoftwareFlexNet represents FlexNet digipeater software.
	SoftwareFlexNet SoftwareFamily = "flexnet"
	// SoftwareURONode represents URONode (derived from NOS node code).
	SoftwareURONode SoftwareFamily = "uronode"
)

// String returns the string representation of the SoftwareFamily.
func (f SoftwareFamily) String() string {
	if f == SoftwareUnknown {
		return softwareUnknownStr
	}
	return string(f)
}

// IsValid returns true if this is a known software family.
func (f SoftwareFamily) IsValid() bool {
	switch f {
	case SoftwareBPQ, SoftwareXRouter, SoftwareJNOS, SoftwareNetROM,
		SoftwareFlexNet, SoftwareURONode:
		return true
	default:
		return false
	}
}

// bannerMarkers maps banner substrings to software families.
// Order matters: XRouter banners mention NET/ROM compatibility, so the
// more specific markers are checked before the generic ones.
var bannerMarkers = []struct {
	marker string
	family SoftwareFamily
}{
	{"BPQ32", SoftwareBPQ},
	{"LINBPQ", SoftwareBPQ},
	{"G8BPQ", SoftwareBPQ},
	{"XROUTER", SoftwareXRouter},
	{"XRPI", SoftwareXRouter},
	{"XRLIN", SoftwareXRouter},
	{"JNOS", SoftwareJNOS},
	{"URONODE", SoftwareURONode},
	{"FLEXNET", SoftwareFlexNet},
	{"THENET", SoftwareNetROM},
	{"NET/ROM", SoftwareNetROM},
	{"NETROM", SoftwareNetROM},
}

// DetectSoftware classifies node software from a connect banner or the
// first lines of INFO output. Returns SoftwareUnknown when no marker
// matches; callers should keep any previously detected value in that case.
func DetectSoftware(banner string) SoftwareFamily {
	upper := strings.ToUpper(banner)
	for _, m := range bannerMarkers {
		if strings.Contains(upper, m.marker) {
			return m.family
		}
	}
	return SoftwareUnknown
}

// ParseSoftwareFamily converts a stored string to a SoftwareFamily.
// Unrecognized strings map to SoftwareUnknown rather than erroring so
// documents written by newer versions still load.
func ParseSoftwareFamily(s string) SoftwareFamily {
	switch strings.ToLower(s) {
	case "bpq32", "bpq", "linbpq":
		return SoftwareBPQ
	case "xrouter", "xrpi":
		return SoftwareXRouter
	case "jnos":
		return SoftwareJNOS
	case "netrom", "thenet", "net/rom":
		return SoftwareNetROM
	case "flexnet":
		return SoftwareFlexNet
	case "uronode":
		return SoftwareURONode
	default:
		return SoftwareUnknown
	}
}

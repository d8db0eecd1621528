package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/kd9lsv/packetmap/internal/model"
)

// Default configuration values, chosen for typical amateur packet
// networks and overridable from the config file and CLI flags.
const (
	// DefaultTelnetAddress is the standard BPQ32 telnet listener on the
	// local machine. 8010 is the stock BPQ TelnetServer port.
	DefaultTelnetAddress = "127.0.0.1:8010"

	// DefaultMaxHops limits how deep paths may go. NET/ROM itself rarely
	// sustains more than 7 hops; beyond that the compounded round-trip
	// time makes interrogation mostly timeouts.
	DefaultMaxHops = 7

	// DefaultMaxPaths is how many alternate paths are tried per target
	// before declaring it unreachable for the run.
	DefaultMaxPaths = 3

	// DefaultStaleAfter is the freshness threshold for the staleness
	// filter. A node silent for a full day is usually down.
	DefaultStaleAfter = 24 * time.Hour

	// DefaultMapFile is the map document written in the working
	// directory when no path is configured.
	DefaultMapFile = "packetmap.json"

	// AppName is the application name used for XDG directory paths.
	AppName = "packetmap"
)

// Config holds all options for a packetmap run. Populated from defaults,
// then the .packetmap file, then CLI flags, and passed through the
// application by value rather than global state.
//
// Design decision: a single flat struct instead of nested sub-configs.
// The option count is manageable, and flat fields keep flag binding in
// the command layer trivial.
type Config struct {
	// StationCall is the operator's own callsign, recorded as the
	// generator of produced map documents.
	StationCall string

	// LocalNode is the callsign-SSID of the node the telnet transport
	// lands on. Every crawl path starts there.
	LocalNode string

	// TelnetAddress is the local node's telnet listener, "host:port".
	TelnetAddress string

	// TelnetUser and TelnetPassword are the node login credentials.
	TelnetUser     string
	TelnetPassword string

	// SocksProxy optionally routes the telnet connection through a
	// SOCKS5 proxy, for operators whose node lives behind a gateway.
	SocksProxy string

	// Mode selects which nodes the run attempts.
	Mode model.CrawlMode

	// MaxHops bounds path length; zero means unlimited.
	MaxHops int

	// MaxPaths bounds candidate paths tried per target.
	MaxPaths int

	// StaleAfter is the freshness threshold for the staleness filter.
	StaleAfter time.Duration

	// LowestSSIDTieBreak switches the identity tie-break from
	// most-recent-observation to lowest-SSID, for reproducible offline
	// merges of timestamp-free documents.
	LowestSSIDTieBreak bool

	// Exclusions lists callsigns never to attempt. Bare base callsigns
	// match every SSID.
	Exclusions []string

	// Overrides forces the SSID used for specific base callsigns,
	// outranking all collected evidence.
	Overrides map[string]int

	// MapFile is the map document path.
	MapFile string

	// DBDir is the directory for the session/heard history database.
	// Empty disables history. Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug-level log output.
	Verbose bool

	// JSONReport and MarkdownReport select the run summary format.
	// Mutually exclusive; default is plain text.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the run summary to a file as well as stdout.
	ReportFile string

	// ConfigFilePath is an explicit config file path. Empty means
	// search .packetmap in the current then home directory.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
//
// Design decision: a constructor instead of zero values, because most
// defaults are non-zero and the constructor doubles as documentation of
// what they are.
func NewConfig() *Config {
	return &Config{
		TelnetAddress: DefaultTelnetAddress,
		Mode:          model.ModeUpdate,
		MaxHops:       DefaultMaxHops,
		MaxPaths:      DefaultMaxPaths,
		StaleAfter:    DefaultStaleAfter,
		MapFile:       DefaultMapFile,
		DBDir:         XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for packetmap.
// On Linux: ~/.local/share/packetmap
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for packetmap.
// On Linux: ~/.config/packetmap
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration, returning a sentinel error for the
// first problem found. Called once after flag parsing, before any
// connection is opened, so misconfiguration fails in milliseconds
// instead of after a timeout on the air.
func (c *Config) Validate() error {
	if c.LocalNode == "" {
		return ErrNoLocalNode
	}
	if _, err := model.NewCallsign(c.LocalNode); err != nil {
		return ErrInvalidLocalNode
	}

	if c.TelnetAddress == "" {
		return ErrNoTelnetAddress
	}

	if !c.Mode.IsValid() {
		return ErrInvalidMode
	}

	if c.MaxHops < 0 {
		return ErrInvalidMaxHops
	}
	if c.StaleAfter < 0 {
		return ErrInvalidStaleAfter
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	for _, ssid := range c.Overrides {
		if ssid < model.MinSSID || ssid > model.MaxSSID {
			return ErrInvalidOverride
		}
	}

	return nil
}

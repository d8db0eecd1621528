package config

import (
	"strings"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// StationSection holds the operator and local node settings from the
// configuration file.
type StationSection struct {
	// Callsign is the operator's own callsign.
	Callsign string `yaml:"callsign,omitempty"`

	// Node is the local node's callsign-SSID.
	Node string `yaml:"node,omitempty"`

	// Telnet is the local node's telnet listener, "host:port".
	Telnet string `yaml:"telnet,omitempty"`

	// User and Password are the node login credentials.
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`

	// SocksProxy routes the telnet connection through a SOCKS5 proxy.
	SocksProxy string `yaml:"socks_proxy,omitempty"`
}

// CrawlSection holds crawl behavior settings from the configuration file.
type CrawlSection struct {
	// Mode is the crawl mode: update, reaudit or new-only.
	Mode string `yaml:"mode,omitempty"`

	// MaxHops bounds path length; zero means use the default.
	MaxHops int `yaml:"max_hops,omitempty"`

	// MaxPaths bounds candidate paths per target.
	MaxPaths int `yaml:"max_paths,omitempty"`

	// StaleAfter is the freshness threshold, in Go duration syntax
	// ("24h", "36h30m").
	StaleAfter string `yaml:"stale_after,omitempty"`

	// LowestSSIDTieBreak selects the reproducible identity tie-break.
	LowestSSIDTieBreak bool `yaml:"lowest_ssid_tie_break,omitempty"`
}

// File represents the structure of the .packetmap configuration file.
type File struct {
	// Station holds operator and local node settings.
	Station StationSection `yaml:"station,omitempty"`

	// Crawl holds crawl behavior settings.
	Crawl CrawlSection `yaml:"crawl,omitempty"`

	// Exclusions lists callsigns never to attempt.
	Exclusions []string `yaml:"exclusions,omitempty"`

	// Overrides forces SSIDs per base callsign.
	Overrides map[string]int `yaml:"overrides,omitempty"`

	// MapFile is the map document path.
	MapFile string `yaml:"map_file,omitempty"`

	// DBDir is the session/heard history database directory.
	DBDir string `yaml:"db_dir,omitempty"`
}

// ApplyTo overlays the file's settings onto a Config. Only fields the
// file actually sets are copied, so defaults and earlier layers survive.
func (f *File) ApplyTo(c *Config) error {
	if f.Station.Callsign != "" {
		c.StationCall = f.Station.Callsign
	}
	if f.Station.Node != "" {
		c.LocalNode = f.Station.Node
	}
	if f.Station.Telnet != "" {
		c.TelnetAddress = f.Station.Telnet
	}
	if f.Station.User != "" {
		c.TelnetUser = f.Station.User
	}
	if f.Station.Password != "" {
		c.TelnetPassword = f.Station.Password
	}
	if f.Station.SocksProxy != "" {
		c.SocksProxy = f.Station.SocksProxy
	}

	if f.Crawl.Mode != "" {
		c.Mode = parseMode(f.Crawl.Mode)
	}
	if f.Crawl.MaxHops != 0 {
		c.MaxHops = f.Crawl.MaxHops
	}
	if f.Crawl.MaxPaths != 0 {
		c.MaxPaths = f.Crawl.MaxPaths
	}
	if f.Crawl.StaleAfter != "" {
		d, err := time.ParseDuration(f.Crawl.StaleAfter)
		if err != nil {
			return ErrInvalidStaleAfter
		}
		c.StaleAfter = d
	}
	if f.Crawl.LowestSSIDTieBreak {
		c.LowestSSIDTieBreak = true
	}

	if len(f.Exclusions) > 0 {
		c.Exclusions = append(c.Exclusions, f.Exclusions...)
	}
	if len(f.Overrides) > 0 {
		if c.Overrides == nil {
			c.Overrides = make(map[string]int, len(f.Overrides))
		}
		for base, ssid := range f.Overrides {
			c.Overrides[base] = ssid
		}
	}

	if f.MapFile != "" {
		c.MapFile = f.MapFile
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}

	return nil
}

// parseMode maps a config-file mode string onto a CrawlMode. Unknown
// strings pass through unchanged and are caught by Validate, which
// reports them with a proper error instead of a silent default.
func parseMode(s string) model.CrawlMode {
	return model.CrawlMode(strings.ToLower(strings.TrimSpace(s)))
}

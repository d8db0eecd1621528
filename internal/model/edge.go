package model

import (
	"sort"
	"strings"
)

// Edge is a directed connection observation between two nodes.
//
// Quality follows the NET/ROM convention: a sysop-assigned usability
// score where 0 marks an administratively blocked route. Blocked edges
// are retained in the document (they are real observations) but excluded
// from traversal and from display by default.
type Edge struct {
	// From and To identify the endpoints by canonical callsign.
	From Callsign `json:"from"`
	To   Callsign `json:"to"`

	// Port is the port number on the From node carrying the link.
	Port int `json:"port"`

	// Quality is the sysop-assigned route quality, 0-255. Zero means
	// the route is blocked by the sysop.
	Quality int `json:"quality"`

	// Frequencies lists the nominal frequencies (MHz) observed for this
	// link. A list rather than a scalar because two perspectives of the
	// same physical link may report the frequency from different ends.
	Frequencies []float64 `json:"frequencies,omitempty"`

	// Class is the RF/HF/IP classification of the link.
	Class LinkClass `json:"class,omitempty"`

	// Sources records which crawl or perspective document observed the
	// edge, for provenance in merged maps.
	Sources []string `json:"sources,omitempty"`
}

// Blocked reports whether the edge is sysop-blocked (quality 0).
func (e *Edge) Blocked() bool {
	return e.Quality == 0
}

// Key returns the directed edge key used for in-place updates.
func (e *Edge) Key() string {
	return e.From.String() + ">" + e.To.String()
}

// ReverseKey returns the key of the opposite direction, used when
// coalescing bidirectional duplicates of the same physical link.
func (e *Edge) ReverseKey() string {
	return e.To.String() + ">" + e.From.String()
}

// CanonicalKey returns a direction-independent key: both directions of
// one physical link share it.
func (e *Edge) CanonicalKey() string {
	a, b := e.From.String(), e.To.String()
	if strings.Compare(a, b) > 0 {
		a, b = b, a
	}
	return a + "<>" + b
}

// AddFrequency records a frequency observation, keeping the list unique
// and sorted so merged documents are byte-stable.
func (e *Edge) AddFrequency(mhz float64) {
	if mhz == 0 {
		return
	}
	for _, f := range e.Frequencies {
		if f == mhz {
			return
		}
	}
	e.Frequencies = append(e.Frequencies, mhz)
	sort.Float64s(e.Frequencies)
}

// AddSource records a provenance label, keeping the list unique and sorted.
func (e *Edge) AddSource(source string) {
	if source == "" {
		return
	}
	for _, s := range e.Sources {
		if s == source {
			return
		}
	}
	e.Sources = append(e.Sources, source)
	sort.Strings(e.Sources)
}

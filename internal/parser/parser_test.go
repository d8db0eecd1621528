package parser

import (
	"testing"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// TestParseNodeIdent verifies extraction of the advertised identity from
// prompt header lines.
func TestParseNodeIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		line      string
		wantAlias string
		wantCall  string
		ok        bool
	}{
		{name: "standard BPQ header", line: "KE4OTZ:KE4OTZ-3} Routes", wantAlias: "KE4OTZ", wantCall: "KE4OTZ-3", ok: true},
		{name: "alias differs from call", line: "OTZ:KE4OTZ-3} Nodes", wantAlias: "OTZ", wantCall: "KE4OTZ-3", ok: true},
		{name: "no brace", line: "KE4OTZ:KE4OTZ-3 Routes", ok: false},
		{name: "no colon", line: "KE4OTZ-3} Routes", ok: false},
		{name: "garbage call", line: "OTZ:@#$%} Routes", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ident, ok := ParseNodeIdent(tt.line)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if ident.Alias != tt.wantAlias {
				t.Errorf("Alias = %q, want %q", ident.Alias, tt.wantAlias)
			}
			if ident.Call.String() != tt.wantCall {
				t.Errorf("Call = %q, want %q", ident.Call, tt.wantCall)
			}
		})
	}
}

// TestParseRoutes verifies parsing of ROUTES output including blocked
// routes, lock markers, and garbled lines.
func TestParseRoutes(t *testing.T) {
	t.Parallel()

	raw := "KE4OTZ:KE4OTZ-3} Routes\r\n" +
		"> 1 KI4MCW-7    192  23\r\n" +
		"  1 N4XYZ-1     150   4\r\n" +
		"  2 AB4KN-2       0   0!\r\n" +
		"  2 W4BOC-27     80   1\r\n" + // SSID out of range
		"  1 K\x01garbled\r\n" + // RF corruption
		"  9\r\n" // truncated line

	table := ParseRoutes(raw)

	if table.Ident.Call.String() != "KE4OTZ-3" {
		t.Errorf("Ident.Call = %q, want KE4OTZ-3", table.Ident.Call)
	}
	if len(table.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(table.Entries), table.Entries)
	}

	first := table.Entries[0]
	if first.Call.String() != "KI4MCW-7" || first.Port != 1 || first.Quality != 192 {
		t.Errorf("unexpected first entry: %+v", first)
	}

	blocked := table.Entries[2]
	if blocked.Quality != 0 {
		t.Errorf("blocked route quality = %d, want 0", blocked.Quality)
	}
	if !blocked.Locked {
		t.Errorf("expected lock marker on blocked route: %+v", blocked)
	}

	if len(table.Rejected) != 1 || table.Rejected[0] != "W4BOC-27" {
		t.Errorf("Rejected = %v, want [W4BOC-27]", table.Rejected)
	}
	if table.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", table.Skipped)
	}
}

// TestParseNodes verifies parsing of packed alias tables.
func TestParseNodes(t *testing.T) {
	t.Parallel()

	raw := `OTZ:KE4OTZ-3} Nodes
OTZBBS:KE4OTZ-1   OTZCHT:KE4OTZ-2   MCW:KI4MCW-7
XYZ:N4XYZ-1 BAD:W4BOC-31
trailing junk without colon`

	table := ParseNodes(raw)

	if table.Ident.Alias != "OTZ" {
		t.Errorf("Ident.Alias = %q, want OTZ", table.Ident.Alias)
	}
	if len(table.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d: %+v", len(table.Entries), table.Entries)
	}
	if table.Entries[0].Alias != "OTZBBS" || table.Entries[0].Call.String() != "KE4OTZ-1" {
		t.Errorf("unexpected first entry: %+v", table.Entries[0])
	}
	if len(table.Rejected) != 1 {
		t.Errorf("Rejected = %v, want one out-of-range entry", table.Rejected)
	}
	if table.Skipped == 0 {
		t.Error("expected junk tokens to be counted as skipped")
	}
}

// TestParseMheard verifies parsing of heard lists, including stations
// without an SSID and unparseable timestamps.
func TestParseMheard(t *testing.T) {
	t.Parallel()

	raw := `KE4OTZ:KE4OTZ-3} Mheard Port 1
KI4MCW-7     08/27/2026 14:22:01
N4XYZ        08/26/2026 09:10:55
KD9LSV-10    27 mins
W4BOC-27     08/20/2026 10:00:00`

	list := ParseMheard(raw)

	if list.Port != 1 {
		t.Errorf("Port = %d, want 1", list.Port)
	}
	if len(list.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", len(list.Entries), list.Entries)
	}

	withTime := list.Entries[0]
	want := time.Date(2026, 8, 27, 14, 22, 1, 0, time.UTC)
	if !withTime.HeardAt.Equal(want) {
		t.Errorf("HeardAt = %v, want %v", withTime.HeardAt, want)
	}

	noSSID := list.Entries[1]
	if noSSID.Call.HasSSID() {
		t.Error("N4XYZ was heard without an SSID; HasSSID must be false")
	}

	relative := list.Entries[2]
	if !relative.HeardAt.IsZero() {
		t.Errorf("relative age should parse as zero time, got %v", relative.HeardAt)
	}

	if len(list.Rejected) != 1 || list.Rejected[0] != "W4BOC-27" {
		t.Errorf("Rejected = %v, want [W4BOC-27]", list.Rejected)
	}
}

// TestParsePorts verifies frequency/speed extraction and classification.
func TestParsePorts(t *testing.T) {
	t.Parallel()

	raw := `KE4OTZ:KE4OTZ-3} Ports
  1 144.390MHz 1200bps VHF local access
  2 14.105MHz 300bps HF forwarding
  3 AXIP internet trunk
  garbage`

	list := ParsePorts(raw)

	if len(list.Ports) != 3 {
		t.Fatalf("expected 3 ports, got %d: %+v", len(list.Ports), list.Ports)
	}

	vhf := list.Ports[0]
	if vhf.Number != 1 || vhf.Frequency != 144.390 || vhf.Speed != 1200 || vhf.Class != model.LinkRF {
		t.Errorf("unexpected VHF port: %+v", vhf)
	}

	hf := list.Ports[1]
	if hf.Class != model.LinkHF {
		t.Errorf("14.105 MHz should classify as HF, got %v", hf.Class)
	}

	ip := list.Ports[2]
	if ip.Class != model.LinkIP || ip.Frequency != 0 {
		t.Errorf("AXIP port should classify as IP: %+v", ip)
	}

	if list.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", list.Skipped)
	}
}

// TestParseRoutesEmpty verifies that empty or header-only output yields an
// empty table rather than an error.
func TestParseRoutesEmpty(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "KE4OTZ:KE4OTZ-3} Routes\n", "\r\n\r\n"} {
		table := ParseRoutes(raw)
		if len(table.Entries) != 0 {
			t.Errorf("expected no entries for %q, got %+v", raw, table.Entries)
		}
	}
}

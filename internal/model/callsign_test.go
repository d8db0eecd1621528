package model

import (
	"errors"
	"testing"
)

// TestNewCallsign verifies parsing and validation of callsign strings.
func TestNewCallsign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   string
		want    string
		base    string
		ssid    int
		hasSSID bool
		wantErr error
	}{
		{name: "plain callsign", input: "KE4OTZ", want: "KE4OTZ", base: "KE4OTZ", ssid: 0, hasSSID: false},
		{name: "callsign with SSID", input: "KE4OTZ-3", want: "KE4OTZ-3", base: "KE4OTZ", ssid: 3, hasSSID: true},
		{name: "lowercase is normalized", input: "ke4otz-7", want: "KE4OTZ-7", base: "KE4OTZ", ssid: 7, hasSSID: true},
		{name: "explicit SSID zero renders bare", input: "N4XYZ-0", want: "N4XYZ", base: "N4XYZ", ssid: 0, hasSSID: true},
		{name: "maximum SSID", input: "W1AW-15", want: "W1AW-15", base: "W1AW", ssid: 15, hasSSID: true},
		{name: "surrounding whitespace", input: "  G8BPQ-5 ", want: "G8BPQ-5", base: "G8BPQ", ssid: 5, hasSSID: true},
		{name: "empty string", input: "", wantErr: ErrEmptyCallsign},
		{name: "SSID above range", input: "KD9LSV-27", wantErr: ErrInvalidSSID},
		{name: "SSID 16 is out of range", input: "KD9LSV-16", wantErr: ErrInvalidSSID},
		{name: "negative SSID", input: "KD9LSV--1", wantErr: ErrInvalidCallsign},
		{name: "non-numeric SSID", input: "KD9LSV-X", wantErr: ErrInvalidCallsign},
		{name: "base too long", input: "ABCDEFG-1", wantErr: ErrInvalidCallsign},
		{name: "base too short", input: "A-1", wantErr: ErrInvalidCallsign},
		{name: "illegal characters", input: "KD9/P-1", wantErr: ErrInvalidCallsign},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cs, err := NewCallsign(tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cs.String() != tt.want {
				t.Errorf("String() = %q, want %q", cs.String(), tt.want)
			}
			if cs.Base() != tt.base {
				t.Errorf("Base() = %q, want %q", cs.Base(), tt.base)
			}
			if cs.SSID() != tt.ssid {
				t.Errorf("SSID() = %d, want %d", cs.SSID(), tt.ssid)
			}
			if cs.HasSSID() != tt.hasSSID {
				t.Errorf("HasSSID() = %v, want %v", cs.HasSSID(), tt.hasSSID)
			}
		})
	}
}

// TestCallsignEquals verifies that the explicit-SSID flag does not affect
// identity comparison.
func TestCallsignEquals(t *testing.T) {
	t.Parallel()

	bare := MustNewCallsign("KE4OTZ")
	zero := MustNewCallsign("KE4OTZ-0")
	three := MustNewCallsign("KE4OTZ-3")

	if !bare.Equals(zero) {
		t.Error("KE4OTZ and KE4OTZ-0 should identify the same station")
	}
	if bare.Equals(three) {
		t.Error("KE4OTZ and KE4OTZ-3 are different stations")
	}
}

// TestParseCallsign verifies tolerant extraction from command output tokens.
func TestParseCallsign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		token string
		want  string
		ok    bool
	}{
		{name: "clean token", token: "KI4MCW-7", want: "KI4MCW-7", ok: true},
		{name: "route table lock marker", token: "KI4MCW-7!", want: "KI4MCW-7", ok: true},
		{name: "current node marker", token: "KE4OTZ-3*", want: "KE4OTZ-3", ok: true},
		{name: "garbled token", token: "K\x01Z@", ok: false},
		{name: "empty token", token: "", ok: false},
		{name: "out of range SSID", token: "N4XYZ-27", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cs, ok := ParseCallsign(tt.token)
			if ok != tt.ok {
				t.Fatalf("ParseCallsign(%q) ok = %v, want %v", tt.token, ok, tt.ok)
			}
			if ok && cs.String() != tt.want {
				t.Errorf("ParseCallsign(%q) = %q, want %q", tt.token, cs.String(), tt.want)
			}
		})
	}
}

// TestCallsignTextMarshalling verifies round-tripping through the
// encoding.TextMarshaler interface used for JSON map keys.
func TestCallsignTextMarshalling(t *testing.T) {
	t.Parallel()

	orig := MustNewCallsign("KD9LSV-10")
	data, err := orig.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}

	var decoded Callsign
	if err := decoded.UnmarshalText(data); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if !decoded.Equals(orig) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, orig)
	}
}

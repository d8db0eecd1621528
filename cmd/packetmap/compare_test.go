package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/kd9lsv/packetmap/internal/netmap"
)

// TestCompareCmdReportsChanges tests the plain-text diff output.
func TestCompareCmdReportsChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := saveTestMap(t, dir, "old.json", "KE4OTZ-3", "KI4MCW-7")
	newer := saveTestMap(t, dir, "new.json", "KE4OTZ-3", "N4XYZ-1")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"compare", older, newer})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	if !strings.Contains(out.String(), "New nodes") {
		t.Errorf("expected new-node section: %s", out.String())
	}
	if !strings.Contains(out.String(), "N4XYZ-1") {
		t.Errorf("expected N4XYZ-1 among additions: %s", out.String())
	}
	if !strings.Contains(out.String(), "KI4MCW-7") {
		t.Errorf("expected KI4MCW-7 among removals: %s", out.String())
	}
}

// TestCompareCmdNoChanges tests comparing a document against itself.
func TestCompareCmdNoChanges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := saveTestMap(t, dir, "map.json", "KE4OTZ-3", "KI4MCW-7")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"compare", mapPath, mapPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compare failed: %v", err)
	}
	if !strings.Contains(out.String(), "No changes") {
		t.Errorf("expected no-changes output: %s", out.String())
	}
}

// TestCompareCmdJSON tests the machine-readable diff format.
func TestCompareCmdJSON(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	older := saveTestMap(t, dir, "old.json", "KE4OTZ-3", "KI4MCW-7")
	newer := saveTestMap(t, dir, "new.json", "KE4OTZ-3", "N4XYZ-1")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"compare", "--json", older, newer})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("compare failed: %v", err)
	}

	var diff netmap.DiffReport
	if err := json.Unmarshal(out.Bytes(), &diff); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(diff.AddedNodes) != 1 || diff.AddedNodes[0] != "N4XYZ-1" {
		t.Errorf("AddedNodes = %v, want [N4XYZ-1]", diff.AddedNodes)
	}
}

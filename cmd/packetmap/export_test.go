package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestExportCmdEdges tests the default edge CSV export to stdout.
func TestExportCmdEdges(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := saveTestMap(t, dir, "map.json", "KE4OTZ-3", "KI4MCW-7")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"export", "--edges", mapPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one edge, got %d lines: %s", len(lines), out.String())
	}
	if !strings.HasPrefix(lines[0], "from,to,") {
		t.Errorf("unexpected CSV header: %s", lines[0])
	}
	if !strings.Contains(lines[1], "KE4OTZ-3") {
		t.Errorf("edge row missing endpoint: %s", lines[1])
	}
}

// TestExportCmdNodesToFile tests node CSV export into a created directory.
func TestExportCmdNodesToFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := saveTestMap(t, dir, "map.json", "KE4OTZ-3", "KI4MCW-7")
	outPath := filepath.Join(dir, "csv", "nodes.csv")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "--nodes", "-o", outPath, mapPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("output file not written: %v", err)
	}
	if !strings.Contains(string(data), "KI4MCW-7") {
		t.Errorf("node CSV missing station: %s", data)
	}
}

// TestExportCmdConflictingSelectors tests that --edges and --nodes
// together are rejected.
func TestExportCmdConflictingSelectors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	mapPath := saveTestMap(t, dir, "map.json", "KE4OTZ-3", "KI4MCW-7")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", "--edges", "--nodes", mapPath})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for --edges with --nodes")
	}
}

// TestExportCmdMissingMap tests the error for an absent map document.
func TestExportCmdMissingMap(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"export", filepath.Join(t.TempDir(), "absent.json")})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for missing map document")
	}
}

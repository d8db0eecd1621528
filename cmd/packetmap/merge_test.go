package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kd9lsv/packetmap/internal/model"
	"github.com/kd9lsv/packetmap/internal/netmap"
)

// saveTestMap writes a small map document with the given edge and
// returns its path.
func saveTestMap(t *testing.T, dir, name, from, to string) string {
	t.Helper()

	doc := netmap.NewDocument()
	doc.Generator = from

	fromCall, err := model.NewCallsign(from)
	if err != nil {
		t.Fatal(err)
	}
	toCall, err := model.NewCallsign(to)
	if err != nil {
		t.Fatal(err)
	}
	doc.EnsureNode(fromCall).Visited = true
	doc.EnsureNode(toCall)
	doc.UpsertEdge(&model.Edge{From: fromCall, To: toCall, Port: 1, Quality: 192})

	path := filepath.Join(dir, name)
	if err := doc.Save(path); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestMergeCmdCombinesDocuments tests a merge of two perspectives.
func TestMergeCmdCombinesDocuments(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	east := saveTestMap(t, dir, "east.json", "KE4OTZ-3", "KI4MCW-7")
	west := saveTestMap(t, dir, "west.json", "N4XYZ-1", "KI4MCW-7")
	output := filepath.Join(dir, "combined.json")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"merge", "-o", output, east, west})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	merged, err := netmap.Load(output)
	if err != nil {
		t.Fatalf("failed to load merged document: %v", err)
	}
	if len(merged.Nodes) != 3 {
		t.Errorf("merged nodes = %d, want 3", len(merged.Nodes))
	}
	if len(merged.Edges) != 2 {
		t.Errorf("merged edges = %d, want 2", len(merged.Edges))
	}
	if !strings.Contains(out.String(), "Merged 2 documents") {
		t.Errorf("unexpected output: %s", out.String())
	}
}

// TestMergeCmdRejectsOutputAsInput tests that the output document
// listed as an input is skipped with a warning, not merged.
func TestMergeCmdRejectsOutputAsInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	east := saveTestMap(t, dir, "east.json", "KE4OTZ-3", "KI4MCW-7")
	output := saveTestMap(t, dir, "combined.json", "N4XYZ-1", "KI4MCW-7")

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"merge", "-o", output, output, east})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if !strings.Contains(errOut.String(), "warning") {
		t.Errorf("expected self-input warning, got: %s", errOut.String())
	}

	// Only east contributed, so the previous combined content is gone.
	merged, err := netmap.Load(output)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := merged.Nodes["N4XYZ-1"]; ok {
		t.Error("self-input document leaked into the merge")
	}
}

// TestMergeCmdAllInputsRejected tests the everything-was-the-output case.
func TestMergeCmdAllInputsRejected(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := saveTestMap(t, dir, "combined.json", "KE4OTZ-3", "KI4MCW-7")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"merge", "-o", output, output})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error when every input is the output document")
	}
}

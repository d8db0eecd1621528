package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestInitCmdCreatesConfig tests writing the sample configuration.
func TestInitCmdCreatesConfig(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), ".packetmap")

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"init", "-o", outPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	for _, want := range []string{"station:", "crawl:", "telnet:", "stale_after:"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("template missing %q", want)
		}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		t.Fatal(err)
	}
	// The file may hold the node password.
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 0600", perm)
	}
}

// TestInitCmdRefusesOverwrite tests the existing-file guard.
func TestInitCmdRefusesOverwrite(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), ".packetmap")
	if err := os.WriteFile(outPath, []byte("station:\n  node: KE4OTZ-3\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "-o", outPath})

	if err := cmd.Execute(); err == nil {
		t.Error("expected error for existing config file")
	}

	// Force replaces it.
	cmd = NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "-o", outPath, "-f"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("forced init failed: %v", err)
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "# packetmap configuration file") {
		t.Error("forced init did not replace the file")
	}
}

// TestInitCmdCreatesDirectories tests parent directory creation.
func TestInitCmdCreatesDirectories(t *testing.T) {
	t.Parallel()

	outPath := filepath.Join(t.TempDir(), "conf", "packetmap.yaml")

	cmd := NewRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"init", "-o", outPath})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("config file not written: %v", err)
	}
}

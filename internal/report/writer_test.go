package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

func sampleSummary() *model.RunSummary {
	started := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)
	return &model.RunSummary{
		Mode:       model.ModeUpdate,
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Minute),
		Visited: []model.VisitedNode{
			{Call: "KE4OTZ-3", Hops: 0, Elapsed: 90 * time.Second, Software: model.SoftwareBPQ, NewNeighbors: 2},
			{Call: "KI4MCW-7", Hops: 1, Elapsed: 4 * time.Minute, Software: model.SoftwareXRouter, NewNeighbors: 1},
		},
		Failed: []model.FailedAttempt{
			{Call: "N4XYZ-1", PathsTried: 3, Detail: "hop to N4XYZ-1: timed-out"},
		},
		Skipped: []model.SkippedNode{
			{Call: "W4GHX-5", Reason: model.SkipStale, Age: 30 * time.Hour, Detail: "last heard 30h0m0s ago"},
			{Call: "K4JH-2", Reason: model.SkipExcluded, Detail: "on exclusion list"},
		},
		Rejected:   []string{"KE4OTZ-3 routes: K4JH-27"},
		NodesKnown: 5,
		EdgesKnown: 7,
	}
}

func TestTextWriterCoversEverySection(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	w := NewTextWriter(&buf, WithVerbose(true))

	n, err := w.Write(sampleSummary())
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != buf.Len() {
		t.Errorf("Write() reported %d bytes, buffer has %d", n, buf.Len())
	}

	out := buf.String()
	for _, want := range []string{
		"update mode",
		"Visited: 2",
		"KE4OTZ-3",
		"[bpq32]",
		"Unreachable this run: 1",
		"N4XYZ-1",
		"Skipped: 2",
		"stale",
		"excluded",
		"K4JH-27",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q\n%s", want, out)
		}
	}
}

func TestTextWriterMarksInterruption(t *testing.T) {
	t.Parallel()

	summary := sampleSummary()
	summary.Interrupted = true

	var buf bytes.Buffer
	if _, err := NewTextWriter(&buf).Write(summary); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.Contains(buf.String(), "INTERRUPTED") {
		t.Error("interrupted run not flagged in text output")
	}
}

func TestJSONWriterRoundTrips(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewJSONWriter(&buf, WithPrettyPrint()).Write(sampleSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	var decoded model.RunSummary
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(decoded.Visited) != 2 || len(decoded.Skipped) != 2 {
		t.Errorf("round trip lost entries: %+v", decoded)
	}
	if decoded.Mode != model.ModeUpdate {
		t.Errorf("mode = %q, want update", decoded.Mode)
	}
}

func TestMarkdownWriterStructure(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if _, err := NewMarkdownWriter(&buf).Write(sampleSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"# Packet Network Crawl Report",
		"## Visited Nodes (2)",
		"## Unreachable This Run (1)",
		"## Skipped (2)",
		"## Rejected Tokens (1)",
		"`KE4OTZ-3`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown output missing %q", want)
		}
	}
}

func TestMultiWriterFansOut(t *testing.T) {
	t.Parallel()

	var text, jsonBuf bytes.Buffer
	mw := NewMultiWriter(NewTextWriter(&text), NewJSONWriter(&jsonBuf))

	if _, err := mw.Write(sampleSummary()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if text.Len() == 0 || jsonBuf.Len() == 0 {
		t.Error("multi writer did not reach every destination")
	}
}

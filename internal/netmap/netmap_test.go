package netmap

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kd9lsv/packetmap/internal/model"
)

func call(t *testing.T, s string) model.Callsign {
	t.Helper()
	c, err := model.NewCallsign(s)
	require.NoError(t, err)
	return c
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")

	d := NewDocument()
	d.Generator = "KD9LSV-7"
	n := d.EnsureNode(call(t, "KE4OTZ-3"))
	n.Software = model.SoftwareBPQ
	n.Locator = "EM75"
	n.Touch(time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC))
	n.Visited = true
	d.UpsertEdge(&model.Edge{
		From:    call(t, "KE4OTZ-3"),
		To:      call(t, "N4ABC-7"),
		Port:    2,
		Quality: 192,
		Class:   model.LinkRF,
	})

	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, FormatVersion, loaded.Version)
	assert.Equal(t, "KD9LSV-7", loaded.Generator)
	assert.Equal(t, 1, loaded.Totals.Nodes)
	assert.Equal(t, 1, loaded.Totals.Edges)
	assert.Equal(t, 1, loaded.Totals.Visited)

	got := loaded.Node(call(t, "KE4OTZ-3"))
	require.NotNil(t, got)
	assert.Equal(t, model.SoftwareBPQ, got.Software)
	assert.Equal(t, "EM75", got.Locator)
	assert.True(t, got.Visited)

	e := loaded.Edge("KE4OTZ-3>N4ABC-7")
	require.NotNil(t, e)
	assert.Equal(t, 192, e.Quality)
}

func TestSaveLeavesNoTemporaryFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "map.json")

	d := NewDocument()
	d.EnsureNode(call(t, "GB7ABC"))
	require.NoError(t, d.Save(path))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "map.json", entries[0].Name())
}

func TestLoadOrEmptyMissingFile(t *testing.T) {
	t.Parallel()

	d, err := LoadOrEmpty(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Empty(t, d.Nodes)
	assert.Empty(t, d.Edges)
}

func TestLoadRejectsNewerFormat(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "future.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version": 99, "nodes": {}}`), 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "format version")
}

func TestUpsertEdgeSupersedesQualityUnionsDetail(t *testing.T) {
	t.Parallel()

	d := NewDocument()
	first := &model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Port: 1, Quality: 200}
	first.AddFrequency(144.95)
	first.AddSource("crawl-1")
	d.UpsertEdge(first)

	second := &model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Port: 1, Quality: 150}
	second.AddFrequency(433.65)
	second.AddSource("crawl-2")
	d.UpsertEdge(second)

	require.Len(t, d.Edges, 1)
	got := d.Edges[0]
	assert.Equal(t, 150, got.Quality, "fresh first-hand quality supersedes the old value")
	assert.Equal(t, []float64{144.95, 433.65}, got.Frequencies)
	assert.Equal(t, []string{"crawl-1", "crawl-2"}, got.Sources)
}

// Two stations crawl the same physical link from opposite ends, each
// reporting the frequency its own port uses. The merged map must carry
// one logical edge with both frequencies.
func TestMergeCoalescesBidirectionalLink(t *testing.T) {
	t.Parallel()

	a := NewDocument()
	aEdge := &model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Port: 1, Quality: 180, Class: model.LinkRF}
	aEdge.AddFrequency(144.95)
	aEdge.AddSource("station-a")
	a.UpsertEdge(aEdge)
	a.EnsureNode(call(t, "A1AA"))
	a.EnsureNode(call(t, "B2BB"))

	b := NewDocument()
	bEdge := &model.Edge{From: call(t, "B2BB"), To: call(t, "A1AA"), Port: 3, Quality: 200, Class: model.LinkRF}
	bEdge.AddFrequency(144.95)
	bEdge.AddFrequency(430.125)
	bEdge.AddSource("station-b")
	b.UpsertEdge(bEdge)
	b.EnsureNode(call(t, "A1AA"))
	b.EnsureNode(call(t, "B2BB"))

	Merge(a, b)

	require.Len(t, a.Edges, 1, "both directions collapse into one logical edge")
	got := a.Edges[0]
	assert.Equal(t, "A1AA>B2BB", got.Key(), "lexically smaller direction survives")
	assert.Equal(t, 200, got.Quality, "better quality wins")
	assert.Equal(t, []float64{144.95, 430.125}, got.Frequencies)
	assert.Equal(t, []string{"station-a", "station-b"}, got.Sources)
}

func TestMergeNodeUnionKeepsDetail(t *testing.T) {
	t.Parallel()

	dst := NewDocument()
	n := dst.EnsureNode(call(t, "KE4OTZ-3"))
	n.Locator = "EM75"
	n.Touch(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC))
	n.Ports = []model.Port{{Number: 1, Frequency: 144.95, Class: model.LinkRF}}

	src := NewDocument()
	m := src.EnsureNode(call(t, "KE4OTZ-3"))
	m.Software = model.SoftwareBPQ
	m.Note = "Knoxville hilltop"
	m.Touch(time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC))
	m.Ports = []model.Port{{Number: 2, Frequency: 433.65, Class: model.LinkRF}}
	m.SetAlias("BBS", model.Alias{Call: call(t, "KE4OTZ-1"), Confidence: model.ConfidenceAdvertised})

	Merge(dst, src)

	got := dst.Node(call(t, "KE4OTZ-3"))
	require.NotNil(t, got)
	assert.Equal(t, "EM75", got.Locator, "non-empty detail survives the merge")
	assert.Equal(t, model.SoftwareBPQ, got.Software)
	assert.Equal(t, "Knoxville hilltop", got.Note)
	assert.Equal(t, time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC), got.LastHeard)
	assert.Len(t, got.Ports, 2)
	assert.Contains(t, got.Aliases, "BBS")
}

func TestMergeCommutesOnUnionFields(t *testing.T) {
	t.Parallel()

	build := func() (*Document, *Document) {
		a := NewDocument()
		a.EnsureNode(call(t, "A1AA")).Locator = "EM75"
		ae := &model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Quality: 100}
		ae.AddSource("a")
		a.UpsertEdge(ae)

		b := NewDocument()
		b.EnsureNode(call(t, "B2BB")).Note = "remote end"
		be := &model.Edge{From: call(t, "B2BB"), To: call(t, "A1AA"), Quality: 120}
		be.AddSource("b")
		b.UpsertEdge(be)
		return a, b
	}

	left, right := build()
	Merge(left, right)

	right2, left2 := build()
	Merge(right2, left2)

	assert.ElementsMatch(t, left.SortedNodeKeys(), right2.SortedNodeKeys())
	require.Len(t, left.Edges, 1)
	require.Len(t, right2.Edges, 1)
	assert.Equal(t, left.Edges[0].Key(), right2.Edges[0].Key())
	assert.Equal(t, left.Edges[0].Quality, right2.Edges[0].Quality)
	assert.Equal(t, left.Edges[0].Sources, right2.Edges[0].Sources)
}

func TestFilterSelfInputs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	output := filepath.Join(dir, "merged.json")
	other := filepath.Join(dir, "other.json")

	kept, rejected := FilterSelfInputs(output, []string{other, output})

	assert.Equal(t, []string{other}, kept)
	require.Len(t, rejected, 1)
	assert.True(t, errors.Is(rejected[0], model.ErrSelfMerge))
}

func TestWriteEdgesCSVSkipsBlocked(t *testing.T) {
	t.Parallel()

	d := NewDocument()
	d.UpsertEdge(&model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Port: 1, Quality: 192, Class: model.LinkRF})
	d.UpsertEdge(&model.Edge{From: call(t, "A1AA"), To: call(t, "C3CC"), Port: 1, Quality: 0})

	var buf bytes.Buffer
	require.NoError(t, WriteEdgesCSV(&buf, d, false))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2, "header plus the one usable edge")
	assert.Contains(t, lines[1], "A1AA,B2BB,1,192,rf")

	buf.Reset()
	require.NoError(t, WriteEdgesCSV(&buf, d, true))
	lines = strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 3)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	older := NewDocument()
	older.EnsureNode(call(t, "A1AA"))
	older.EnsureNode(call(t, "GONE-1"))
	older.UpsertEdge(&model.Edge{From: call(t, "A1AA"), To: call(t, "GONE-1"), Quality: 100})
	older.UpsertEdge(&model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Quality: 150})

	newer := NewDocument()
	newer.EnsureNode(call(t, "A1AA"))
	newer.EnsureNode(call(t, "B2BB"))
	newer.UpsertEdge(&model.Edge{From: call(t, "A1AA"), To: call(t, "B2BB"), Quality: 200})

	report := Diff(older, newer)

	assert.Equal(t, []string{"B2BB"}, report.AddedNodes)
	assert.Equal(t, []string{"GONE-1"}, report.RemovedNodes)
	assert.Equal(t, []string{"A1AA>GONE-1"}, report.RemovedEdges)
	assert.Empty(t, report.AddedEdges)
	require.Len(t, report.QualityChanges, 1)
	assert.Equal(t, QualityChange{Key: "A1AA>B2BB", Old: 150, New: 200}, report.QualityChanges[0])
	assert.False(t, report.Empty())
	assert.Contains(t, report.Summary(), "quality changes")
}

func TestDiffIdenticalDocuments(t *testing.T) {
	t.Parallel()

	d := NewDocument()
	d.EnsureNode(call(t, "A1AA"))

	report := Diff(d, d)
	assert.True(t, report.Empty())
	assert.Equal(t, "no differences", report.Summary())
}

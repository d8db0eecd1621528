package netmap

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// FormatVersion identifies the document layout. Bumped only on
// incompatible changes; readers accept any version up to their own.
const FormatVersion = 1

// Totals summarizes the document for the metadata block.
type Totals struct {
	Nodes   int `json:"nodes"`
	Edges   int `json:"edges"`
	Visited int `json:"visited"`
}

// Document is the persisted network map: the canonical node records, the
// edge observations, and metadata. One document represents one
// perspective of the network; independent perspectives are reconciled
// with Merge.
type Document struct {
	// Version is the format version.
	Version int `json:"version"`

	// GeneratedAt is when the document was last written.
	GeneratedAt time.Time `json:"generated_at"`

	// Generator labels the producing station, used as edge provenance.
	Generator string `json:"generator,omitempty"`

	// Nodes maps canonical callsign to node record.
	Nodes map[string]*model.Node `json:"nodes"`

	// Edges lists directed connection observations.
	Edges []*model.Edge `json:"edges"`

	// Totals is recomputed on every save.
	Totals Totals `json:"totals"`
}

// NewDocument creates an empty map document.
func NewDocument() *Document {
	return &Document{
		Version: FormatVersion,
		Nodes:   make(map[string]*model.Node),
	}
}

// Load reads a map document from disk.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided document path is intentional
	if err != nil {
		return nil, fmt.Errorf("read map document: %w", err)
	}

	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse map document %s: %w", path, err)
	}
	if d.Version > FormatVersion {
		return nil, fmt.Errorf("map document %s has format version %d, this build reads up to %d", path, d.Version, FormatVersion)
	}
	if d.Nodes == nil {
		d.Nodes = make(map[string]*model.Node)
	}
	return &d, nil
}

// LoadOrEmpty reads a map document, returning a fresh empty document when
// the file does not exist yet.
func LoadOrEmpty(path string) (*Document, error) {
	d, err := Load(path)
	if err != nil {
		if os.IsNotExist(unwrapPathError(err)) {
			return NewDocument(), nil
		}
		return nil, err
	}
	return d, nil
}

// unwrapPathError digs the os-level error out of our wrapping.
func unwrapPathError(err error) error {
	for {
		unwrapped, ok := err.(interface{ Unwrap() error })
		if !ok {
			return err
		}
		next := unwrapped.Unwrap()
		if next == nil {
			return err
		}
		err = next
	}
}

// Save writes the document atomically: marshal to a temporary file in the
// destination directory, then rename over the target. An interrupted
// write can therefore never leave a corrupt document behind.
func (d *Document) Save(path string) error {
	d.Version = FormatVersion
	d.GeneratedAt = time.Now().UTC()
	d.recomputeTotals()
	d.sortEdges()

	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal map document: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create map directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".packetmap-*.tmp")
	if err != nil {
		return fmt.Errorf("create temporary document: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temporary document: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temporary document: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace map document: %w", err)
	}
	return nil
}

// Node returns the record for a canonical callsign, or nil.
func (d *Document) Node(call model.Callsign) *model.Node {
	return d.Nodes[call.String()]
}

// EnsureNode returns the record for a canonical callsign, creating an
// empty one when first referenced.
func (d *Document) EnsureNode(call model.Callsign) *model.Node {
	if n, ok := d.Nodes[call.String()]; ok {
		return n
	}
	n := model.NewNode(call)
	d.Nodes[call.String()] = n
	return n
}

// Edge returns the directed edge record matching key, or nil.
func (d *Document) Edge(key string) *model.Edge {
	for _, e := range d.Edges {
		if e.Key() == key {
			return e
		}
	}
	return nil
}

// UpsertEdge records a connection observation. An existing record with
// the same direction is updated in place: the new quality supersedes the
// old (it is the fresher sysop statement), while frequency and provenance
// lists are unioned so earlier detail survives.
func (d *Document) UpsertEdge(obs *model.Edge) *model.Edge {
	existing := d.Edge(obs.Key())
	if existing == nil {
		copied := *obs
		d.Edges = append(d.Edges, &copied)
		return &copied
	}

	existing.Quality = obs.Quality
	existing.Port = obs.Port
	if obs.Class != model.LinkUnknown {
		existing.Class = obs.Class
	}
	for _, f := range obs.Frequencies {
		existing.AddFrequency(f)
	}
	for _, s := range obs.Sources {
		existing.AddSource(s)
	}
	return existing
}

// UsableEdges returns all edges eligible for traversal (quality > 0).
func (d *Document) UsableEdges() []*model.Edge {
	usable := make([]*model.Edge, 0, len(d.Edges))
	for _, e := range d.Edges {
		if !e.Blocked() {
			usable = append(usable, e)
		}
	}
	return usable
}

// recomputeTotals refreshes the metadata block.
func (d *Document) recomputeTotals() {
	visited := 0
	for _, n := range d.Nodes {
		if n.Visited {
			visited++
		}
	}
	d.Totals = Totals{
		Nodes:   len(d.Nodes),
		Edges:   len(d.Edges),
		Visited: visited,
	}
}

// sortEdges orders edges for stable output across saves.
func (d *Document) sortEdges() {
	sort.Slice(d.Edges, func(i, j int) bool {
		return d.Edges[i].Key() < d.Edges[j].Key()
	})
}

// SortedNodeKeys returns node keys in lexical order, for deterministic
// iteration in exports and reports.
func (d *Document) SortedNodeKeys() []string {
	keys := make([]string, 0, len(d.Nodes))
	for k := range d.Nodes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

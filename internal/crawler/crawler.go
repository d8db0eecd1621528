package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/kd9lsv/packetmap/internal/database"
	"github.com/kd9lsv/packetmap/internal/identity"
	"github.com/kd9lsv/packetmap/internal/interrogate"
	"github.com/kd9lsv/packetmap/internal/model"
	"github.com/kd9lsv/packetmap/internal/netmap"
	"github.com/kd9lsv/packetmap/internal/planner"
	"github.com/kd9lsv/packetmap/internal/session"
)

// DefaultStaleAfter is the freshness threshold: a node whose last-heard
// evidence is older than this is treated as stale. 24 hours matches the
// rhythm of packet networks, where NODES broadcasts cycle several times
// a day and a node silent for a full day is usually down.
const DefaultStaleAfter = 24 * time.Hour

// NodeSession is the conversation surface the crawler needs from an
// established local-node connection. Satisfied by *session.Session.
type NodeSession interface {
	interrogate.Commander

	// RunPath connects hop by hop toward a target.
	RunPath(ctx context.Context, hops []session.Hop) ([]model.HopOutcome, error)

	// BeginOperation arms the per-node operation deadline.
	BeginOperation(hops int)

	// Close releases the connection.
	Close() error
}

// Connector opens a fresh session to the local node. One session is
// opened per path attempt: a failed multi-hop connect can leave the
// local node's command state ambiguous, and reconnecting locally is
// cheap next to the airtime already spent.
type Connector interface {
	Connect(ctx context.Context) (NodeSession, error)
}

// Crawler walks the network breadth-first from the local node,
// interrogating one node at a time over a single channel.
//
// Design decision: crawling is strictly sequential. The transport is one
// shared half-duplex channel, so concurrent sessions would interleave on
// the same radio and corrupt each other; a work queue with one consumer
// is the whole concurrency story.
type Crawler struct {
	doc       *netmap.Document
	resolver  *identity.Resolver
	connector Connector
	heardLog  *database.HeardLog
	logger    *slog.Logger

	localNode  model.Callsign
	mode       model.CrawlMode
	maxHops    int
	maxPaths   int
	staleAfter time.Duration
	exclusions map[string]bool
	mapPath    string

	// knownAtStart snapshots the document's node keys when a new-only
	// run begins, so mid-run discoveries stay attemptable.
	knownAtStart map[string]bool
}

// Option configures a Crawler.
type Option func(*Crawler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Crawler) { c.logger = logger }
}

// WithMode sets the crawl mode. Default is ModeUpdate.
func WithMode(mode model.CrawlMode) Option {
	return func(c *Crawler) { c.mode = mode }
}

// WithMaxHops bounds path length. Zero means unlimited.
func WithMaxHops(hops int) Option {
	return func(c *Crawler) { c.maxHops = hops }
}

// WithMaxPaths bounds how many candidate paths are tried per target.
func WithMaxPaths(n int) Option {
	return func(c *Crawler) { c.maxPaths = n }
}

// WithStaleAfter overrides the freshness threshold.
func WithStaleAfter(d time.Duration) Option {
	return func(c *Crawler) { c.staleAfter = d }
}

// WithExclusions installs callsigns that must never be attempted. Both
// full callsign-SSID entries ("K4ABC-7") and bare base entries ("K4ABC",
// matching every SSID) are honored.
func WithExclusions(calls []string) Option {
	return func(c *Crawler) {
		for _, call := range calls {
			c.exclusions[strings.ToUpper(strings.TrimSpace(call))] = true
		}
	}
}

// WithHeardLog attaches the session/heard history database. Optional;
// without it the crawl still runs, it just keeps no cross-run history.
func WithHeardLog(log *database.HeardLog) Option {
	return func(c *Crawler) { c.heardLog = log }
}

// WithMapPath enables incremental saves of the map document after every
// target. An interrupted run then loses at most one node's work.
func WithMapPath(path string) Option {
	return func(c *Crawler) { c.mapPath = path }
}

// New creates a Crawler over an existing map document. localNode is the
// node the telnet transport lands on; every path starts there.
func New(doc *netmap.Document, resolver *identity.Resolver, connector Connector, localNode model.Callsign, opts ...Option) *Crawler {
	c := &Crawler{
		doc:        doc,
		resolver:   resolver,
		connector:  connector,
		localNode:  localNode,
		mode:       model.ModeUpdate,
		maxPaths:   planner.DefaultMaxCandidates,
		staleAfter: DefaultStaleAfter,
		exclusions: make(map[string]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Run executes the crawl until the frontier drains or the context is
// cancelled. Cancellation is honored between targets, never mid-session,
// and always produces a saved document and a summary accounting for
// every target the run knew about.
func (c *Crawler) Run(ctx context.Context) (*model.RunSummary, error) {
	summary := &model.RunSummary{
		Mode:      c.mode,
		StartedAt: time.Now(),
	}

	if c.mode == model.ModeNewOnly {
		c.knownAtStart = make(map[string]bool, len(c.doc.Nodes))
		for key := range c.doc.Nodes {
			c.knownAtStart[key] = true
		}
		// The local node seeds the exploration and stays attemptable.
		delete(c.knownAtStart, c.localNode.String())
	}

	f := newFrontier()
	f.Add(c.localNode.String())
	for _, key := range c.doc.SortedNodeKeys() {
		f.Add(key)
	}

	for {
		if err := ctx.Err(); err != nil {
			summary.Interrupted = true
			for _, call := range f.Remaining() {
				summary.Skipped = append(summary.Skipped, model.SkippedNode{
					Call:   call,
					Reason: model.SkipInterrupted,
				})
			}
			c.logger.Warn("crawl interrupted",
				"pending", f.Pending(),
				"visited", len(summary.Visited),
			)
			break
		}

		call, ok := f.Next()
		if !ok {
			break
		}

		c.processTarget(ctx, call, f, summary)

		if c.mapPath != "" {
			if err := c.doc.Save(c.mapPath); err != nil {
				c.logger.Error("incremental save failed", "error", err)
			}
		}
	}

	if summary.Interrupted && c.mapPath != "" {
		// The partial graph also goes out under a distinguishing name,
		// so the operator can inspect what the cut-short run produced.
		partial := interruptedMapPath(c.mapPath)
		if err := c.doc.Save(partial); err != nil {
			c.logger.Error("partial map save failed", "path", partial, "error", err)
		} else {
			c.logger.Info("partial map saved", "path", partial)
		}
	}

	summary.FinishedAt = time.Now()
	summary.NodesKnown = len(c.doc.Nodes)
	summary.EdgesKnown = len(c.doc.Edges)
	return summary, nil
}

// interruptedMapPath derives the distinguishing name for a partial map
// written after cancellation: packetmap.json -> packetmap.interrupted.json.
func interruptedMapPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".interrupted" + ext
}

// processTarget decides whether one target should be attempted and, if
// so, tries each candidate path until one session succeeds.
func (c *Crawler) processTarget(ctx context.Context, call string, f *frontier, summary *model.RunSummary) {
	now := time.Now()
	node := c.doc.Nodes[call]
	c.backfillLastHeard(ctx, node)

	if reason, detail, skip := c.shouldSkip(call, node, now); skip {
		f.MarkSkipped(call)
		summary.Skipped = append(summary.Skipped, model.SkippedNode{
			Call:   call,
			Reason: reason,
			Age:    nodeAge(node, now),
			Detail: detail,
		})
		c.logger.Info("skipping node", "target", call, "reason", string(reason))
		return
	}

	target, err := model.NewCallsign(call)
	if err != nil {
		f.MarkSkipped(call)
		summary.Skipped = append(summary.Skipped, model.SkippedNode{
			Call:   call,
			Reason: model.SkipInvalidSSID,
			Detail: err.Error(),
		})
		return
	}

	// The local node is where the session already sits; interrogate it
	// with a zero-hop path instead of planning one.
	if target.Equals(c.localNode) {
		c.attemptPaths(ctx, target, []planner.Path{{Hops: []model.Callsign{target}}}, f, summary)
		return
	}

	// The resolver owns which SSID is dialed for a base callsign. A
	// queued spelling the evidence disagrees with is never attempted;
	// the canonical target takes its place in the frontier.
	if res, ok := c.resolver.Resolve(target.Base()); ok && !res.Call.Equals(target) {
		f.MarkSkipped(call)
		summary.Skipped = append(summary.Skipped, model.SkippedNode{
			Call:   call,
			Reason: model.SkipResolved,
			Detail: "identity resolved to " + res.Call.String(),
		})
		f.Add(res.Call.String())
		c.logger.Info("skipping node",
			"target", call,
			"reason", string(model.SkipResolved),
			"resolved", res.Call.String(),
		)
		return
	}

	paths, reason, detail := c.planPaths(target)
	if paths == nil {
		f.MarkSkipped(call)
		summary.Skipped = append(summary.Skipped, model.SkippedNode{
			Call:   call,
			Reason: reason,
			Detail: detail,
		})
		c.logger.Info("skipping node", "target", call, "reason", string(reason), "detail", detail)
		return
	}

	c.attemptPaths(ctx, target, paths, f, summary)
}

// backfillLastHeard fills a node's missing last-heard time from the
// heard-log database, so a merged-in document without timestamps still
// gets a working staleness filter.
func (c *Crawler) backfillLastHeard(ctx context.Context, node *model.Node) {
	if node == nil || c.heardLog == nil || !node.LastHeard.IsZero() {
		return
	}
	at, ok, err := c.heardLog.LastHeard(ctx, node.Call)
	if err != nil {
		c.logger.Warn("heard-log lookup failed", "target", node.Call.String(), "error", err)
		return
	}
	if ok {
		node.Touch(at)
	}
}

// shouldSkip applies the exclusion list, crawl mode and staleness filter.
func (c *Crawler) shouldSkip(call string, node *model.Node, now time.Time) (model.SkipReason, string, bool) {
	if c.excluded(call) {
		return model.SkipExcluded, "on exclusion list", true
	}

	if node == nil {
		return "", "", false
	}

	switch c.mode {
	case model.ModeReaudit:
		// Reaudit ignores prior visits and freshness entirely.
		return "", "", false
	case model.ModeNewOnly:
		if c.knownAtStart[call] {
			return model.SkipKnown, "in the map before this run and mode is new-only", true
		}
	case model.ModeUpdate:
		// Visited is terminal for update mode: a node marked Visited in
		// the loaded graph (including one from an interrupted earlier
		// run) is never re-attempted. Refreshing old visits is what
		// reaudit is for.
		if node.Visited {
			return model.SkipVisited, "already visited", true
		}
	}

	// A never-visited node whose only evidence is old is probably off
	// the air; burning minutes of airtime on it needs reaudit intent.
	if !node.Visited && node.Stale(now, c.staleAfter) {
		return model.SkipStale, fmt.Sprintf("last heard %s ago", nodeAge(node, now).Round(time.Minute)), true
	}

	return "", "", false
}

// excluded checks both the full callsign and its base against the
// exclusion list.
func (c *Crawler) excluded(call string) bool {
	if c.exclusions[call] {
		return true
	}
	if idx := strings.IndexByte(call, '-'); idx > 0 {
		return c.exclusions[call[:idx]]
	}
	return false
}

// planPaths computes candidate paths to a target, applying the hop
// limit. A nil result means the target is skipped for the returned
// reason.
func (c *Crawler) planPaths(target model.Callsign) ([]planner.Path, model.SkipReason, string) {
	p := planner.New(c.doc.Edges)

	dist := p.Distances(c.localNode)
	d, reachable := dist[target.String()]
	if !reachable {
		return nil, model.SkipUnroutable, "no usable path from local node"
	}
	if c.maxHops > 0 && d > c.maxHops {
		return nil, model.SkipHopLimit, fmt.Sprintf("%d hops away, limit %d", d, c.maxHops)
	}

	paths := p.Paths(c.localNode, target, c.maxPaths)
	if len(paths) == 0 {
		return nil, model.SkipUnroutable, "no usable path from local node"
	}
	return paths, "", ""
}

// attemptPaths tries each candidate path in order until one full
// interrogation succeeds. A target whose every path fails is marked
// failed for this run but keeps its place in the map; failing to reach a
// node is evidence about the paths, not about the node.
func (c *Crawler) attemptPaths(ctx context.Context, target model.Callsign, paths []planner.Path, f *frontier, summary *model.RunSummary) {
	var lastDetail string

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			break
		}

		c.logger.Info("attempting target",
			"target", target.String(),
			"path", i+1,
			"of", len(paths),
			"hops", path.HopCount(),
		)

		visit, detail, err := c.attemptOne(ctx, target, path)
		if err != nil {
			lastDetail = detail
			c.logger.Warn("path attempt failed",
				"target", target.String(),
				"path", i+1,
				"detail", detail,
				"error", err,
			)
			continue
		}

		started := visit.StartedAt
		newNeighbors, routeRejects := c.applyVisit(ctx, visit)
		f.MarkVisited(target.String())
		summary.Visited = append(summary.Visited, model.VisitedNode{
			Call:         target.String(),
			Hops:         path.HopCount(),
			Elapsed:      time.Since(started),
			Software:     visit.Software,
			NewNeighbors: c.queueDiscoveries(newNeighbors, f),
		})
		summary.Rejected = append(summary.Rejected, routeRejects...)
		summary.Rejected = append(summary.Rejected, visitRejections(visit)...)
		return
	}

	f.MarkFailed(target.String())
	summary.Failed = append(summary.Failed, model.FailedAttempt{
		Call:       target.String(),
		PathsTried: len(paths),
		Detail:     lastDetail,
	})
}

// attemptOne opens a session, walks one path and runs the interrogation
// pipeline. The session is always closed before returning.
func (c *Crawler) attemptOne(ctx context.Context, target model.Callsign, path planner.Path) (*interrogate.Visit, string, error) {
	sess, err := c.connector.Connect(ctx)
	if err != nil {
		return nil, "local node unreachable", err
	}
	defer func() { _ = sess.Close() }()

	hops := c.buildHops(path)
	sess.BeginOperation(len(hops))

	outcomes, err := sess.RunPath(ctx, hops)
	if err != nil {
		return nil, "path execution error", err
	}
	if len(outcomes) < len(hops) || (len(outcomes) > 0 && outcomes[len(outcomes)-1].Status != model.HopConnected) {
		detail := "connect failed"
		if len(outcomes) > 0 {
			last := outcomes[len(outcomes)-1]
			detail = fmt.Sprintf("hop to %s: %s", last.Target, last.Status)
		}
		return nil, detail, fmt.Errorf("%w: %s", model.ErrConnectionTimeout, detail)
	}

	visit := interrogate.NewVisit(target)
	pipeline := interrogate.New(interrogate.WithLogger(c.logger))
	pipeline.AddSteps(interrogate.DefaultSteps(sess)...)

	if err := pipeline.Execute(ctx, visit); err != nil {
		c.recordSession(ctx, visit, len(hops), false, "cancelled mid-visit")
		return nil, "interrogation cancelled", err
	}
	if !visit.Complete() {
		c.recordSession(ctx, visit, len(hops), false, "routes table not obtained")
		return nil, "routes table not obtained", fmt.Errorf("%w: no usable ROUTES from %s", model.ErrProtocolParse, target)
	}

	c.recordSession(ctx, visit, len(hops), true, "")
	return visit, "", nil
}

// buildHops converts a planner path into session hops, excluding the
// start node the session already sits on. The first hop goes out as a
// direct port connect when the local edge's port is known.
func (c *Crawler) buildHops(path planner.Path) []session.Hop {
	if len(path.Hops) < 2 {
		return nil
	}

	hops := make([]session.Hop, 0, len(path.Hops)-1)
	for i := 1; i < len(path.Hops); i++ {
		hop := session.Hop{Target: path.Hops[i]}
		if i == 1 {
			if e := c.doc.Edge(path.Hops[0].String() + ">" + path.Hops[1].String()); e != nil && e.Port > 0 {
				hop.Port = e.Port
				hop.Direct = true
			}
		}
		hops = append(hops, hop)
	}
	return hops
}

// queueDiscoveries adds newly learned targets to the frontier and
// returns how many were genuinely new. Excluded targets are queued too:
// the skip decision belongs to processTarget, which records it in the
// summary instead of dropping the node silently.
func (c *Crawler) queueDiscoveries(calls []model.Callsign, f *frontier) int {
	added := 0
	for _, call := range calls {
		if f.Add(call.String()) {
			added++
		}
	}
	return added
}

// recordSession appends the attempt to the heard log, when attached.
func (c *Crawler) recordSession(ctx context.Context, visit *interrogate.Visit, hops int, complete bool, detail string) {
	if c.heardLog == nil {
		return
	}
	_, err := c.heardLog.RecordSession(ctx, &database.SessionRecord{
		Target:     visit.Target,
		StartedAt:  visit.StartedAt,
		FinishedAt: time.Now(),
		Hops:       hops,
		Complete:   complete,
		Software:   visit.Software,
		Detail:     detail,
	})
	if err != nil {
		c.logger.Error("recording session history failed", "error", err)
	}
}

// nodeAge returns the node's last-heard age, zero for unknown nodes.
func nodeAge(node *model.Node, now time.Time) time.Duration {
	if node == nil {
		return 0
	}
	return node.Age(now)
}

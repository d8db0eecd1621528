package crawler

import (
	"context"
	"time"

	"github.com/kd9lsv/packetmap/internal/database"
	"github.com/kd9lsv/packetmap/internal/interrogate"
	"github.com/kd9lsv/packetmap/internal/model"
)

// maxNoteLength caps how much INFO text is carried into the map.
// Sysop INFO screens occasionally dump whole bulletin files.
const maxNoteLength = 500

// applyVisit folds everything a completed visit learned into the map
// document, the identity resolver and the heard log. Returns the
// neighbor callsigns worth queueing as new crawl targets, plus any
// route entries rejected as targets for lacking an SSID.
func (c *Crawler) applyVisit(ctx context.Context, visit *interrogate.Visit) ([]model.Callsign, []string) {
	now := time.Now()

	node := c.doc.EnsureNode(visit.Target)
	node.Visited = true
	node.Touch(now)

	// The session reached this exact SSID, which confirms the identity
	// in the graph: a forced or consensus-resolved mapping graduates
	// from evidence to a confirmed record here.
	if visit.Routes != nil && visit.Routes.Ident.Alias != "" {
		node.SetAlias(visit.Routes.Ident.Alias, model.Alias{
			Call:       visit.Target,
			Confidence: model.ConfidenceConfirmed,
		})
	}

	if visit.Software != model.SoftwareUnknown {
		node.Software = visit.Software
	}
	if visit.Info != "" {
		note := visit.Info
		if len(note) > maxNoteLength {
			note = note[:maxNoteLength]
		}
		node.Note = note
	}
	if visit.Ports != nil && len(visit.Ports.Ports) > 0 {
		// First-hand port table replaces whatever hearsay was there.
		node.Ports = visit.Ports.Ports
	}

	discovered, rejected := c.applyRoutes(visit, node, now)
	c.applyNodes(visit, now)
	c.applyHeard(ctx, visit, now)

	return discovered, rejected
}

// applyRoutes turns ROUTES entries into edges, identity evidence and
// frontier candidates. ROUTES is the only frontier source: its entries
// are sysop-locked neighbor statements, not third-hand propagation.
func (c *Crawler) applyRoutes(visit *interrogate.Visit, node *model.Node, now time.Time) (discovered []model.Callsign, rejected []string) {
	if visit.Routes == nil {
		return nil, nil
	}

	portFreq := make(map[int]model.Port, len(node.Ports))
	for _, p := range node.Ports {
		portFreq[p.Number] = p
	}

	for _, entry := range visit.Routes.Entries {
		// An entry without an explicit SSID names no connectable
		// station; it is rejected as a target rather than guessed at.
		if !entry.Call.HasSSID() {
			rejected = append(rejected,
				visit.Target.String()+" routes: "+entry.Call.String()+" (no SSID)")
			continue
		}

		c.resolver.Observe(model.RouteEvidence{
			Base:       entry.Call.Base(),
			SSID:       entry.Call.SSID(),
			Quality:    entry.Quality,
			Source:     model.SourceRoutes,
			Origin:     visit.Target,
			ObservedAt: now,
		})

		// Graph records carry the canonical identity, not the raw
		// table spelling: forced overrides and cross-node consensus
		// decide which SSID the edge points at and which gets dialed.
		to := entry.Call
		if res, ok := c.resolver.Resolve(entry.Call.Base()); ok {
			to = res.Call
		}

		edge := &model.Edge{
			From:    visit.Target,
			To:      to,
			Port:    entry.Port,
			Quality: entry.Quality,
		}
		if p, ok := portFreq[entry.Port]; ok {
			edge.AddFrequency(p.Frequency)
			edge.Class = p.Class
		}
		edge.AddSource(c.doc.Generator)
		c.doc.UpsertEdge(edge)

		if entry.Quality == 0 || to.Equals(visit.Target) {
			continue
		}
		c.doc.EnsureNode(to)
		discovered = append(discovered, to)
	}
	return discovered, rejected
}

// applyNodes records alias advertisements. Entries whose callsign shares
// the target's base are the node's own service aliases; the rest
// describe other stations and are kept as advertised-confidence mappings
// on those records, but never queued: NODES tables carry whatever the
// NET/ROM flood delivered, which is hearsay.
func (c *Crawler) applyNodes(visit *interrogate.Visit, now time.Time) {
	if visit.Nodes == nil {
		return
	}

	for _, entry := range visit.Nodes.Entries {
		c.resolver.Observe(model.RouteEvidence{
			Base:       entry.Call.Base(),
			SSID:       entry.Call.SSID(),
			Source:     model.SourceNodesAlias,
			Origin:     visit.Target,
			ObservedAt: now,
		})

		owner := c.doc.Nodes[entry.Call.String()]
		if owner == nil {
			if entry.Call.Base() != visit.Target.Base() {
				continue
			}
			owner = c.doc.EnsureNode(entry.Call)
		}
		owner.SetAlias(entry.Alias, model.Alias{
			Call:       entry.Call,
			Confidence: model.ConfidenceAdvertised,
		})
	}
}

// applyHeard updates last-heard evidence from MHEARD output and streams
// the observations into the heard log.
func (c *Crawler) applyHeard(ctx context.Context, visit *interrogate.Visit, now time.Time) {
	for _, list := range visit.Heard {
		for _, entry := range list.Entries {
			if entry.Call.HasSSID() {
				c.resolver.Observe(model.RouteEvidence{
					Base:       entry.Call.Base(),
					SSID:       entry.Call.SSID(),
					Source:     model.SourceMheard,
					Origin:     visit.Target,
					ObservedAt: now,
				})
			}

			if existing := c.doc.Nodes[entry.Call.String()]; existing != nil && !entry.HeardAt.IsZero() {
				existing.Touch(entry.HeardAt)
			}

			if c.heardLog != nil && !entry.HeardAt.IsZero() {
				err := c.heardLog.RecordHeard(ctx, &database.HeardObservation{
					Station:  entry.Call,
					Reporter: visit.Target,
					Port:     list.Port,
					HeardAt:  entry.HeardAt,
				})
				if err != nil {
					c.logger.Error("recording heard observation failed", "error", err)
				}
			}
		}
	}
}

// visitRejections gathers every impossible-SSID token the visit's tables
// produced, labeled by source for the run summary.
func visitRejections(visit *interrogate.Visit) []string {
	var rejected []string
	if visit.Routes != nil {
		for _, token := range visit.Routes.Rejected {
			rejected = append(rejected, visit.Target.String()+" routes: "+token)
		}
	}
	if visit.Nodes != nil {
		for _, token := range visit.Nodes.Rejected {
			rejected = append(rejected, visit.Target.String()+" nodes: "+token)
		}
	}
	for _, list := range visit.Heard {
		for _, token := range list.Rejected {
			rejected = append(rejected, visit.Target.String()+" mheard: "+token)
		}
	}
	return rejected
}

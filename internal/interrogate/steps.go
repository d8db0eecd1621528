package interrogate

import (
	"context"
	"fmt"
	"strings"

	"github.com/kd9lsv/packetmap/internal/model"
	"github.com/kd9lsv/packetmap/internal/parser"
)

// PortsStep asks the node for its port table. It runs first because the
// MHEARD step interrogates each port individually.
type PortsStep struct {
	commander Commander
}

// Name returns the step name.
func (s *PortsStep) Name() string { return "ports" }

// Do requests and parses PORTS output.
func (s *PortsStep) Do(ctx context.Context, visit *Visit) error {
	raw, err := s.commander.CommandExpect(ctx, "PORTS", func(resp string) bool {
		parsed := parser.ParsePorts(resp)
		return len(parsed.Ports) > 0 || parsed.Ident.Call.String() != ""
	})
	if raw != "" {
		// Keep whatever parsed even when validation ultimately failed;
		// a partial port table still guides MHEARD.
		visit.Ports = parser.ParsePorts(raw)
	}
	if err != nil {
		return fmt.Errorf("ports: %w", err)
	}
	return nil
}

// RoutesStep asks the node for its locked neighbor table. ROUTES is the
// authoritative source for both edges and identity evidence, which makes
// this the one step a visit cannot succeed without.
type RoutesStep struct {
	commander Commander
}

// Name returns the step name.
func (s *RoutesStep) Name() string { return "routes" }

// Do requests and parses ROUTES output.
func (s *RoutesStep) Do(ctx context.Context, visit *Visit) error {
	raw, err := s.commander.CommandExpect(ctx, "ROUTES", func(resp string) bool {
		parsed := parser.ParseRoutes(resp)
		return len(parsed.Entries) > 0 || parsed.Ident.Call.String() != ""
	})
	if err != nil {
		return fmt.Errorf("routes: %w", err)
	}
	visit.Routes = parser.ParseRoutes(raw)
	return nil
}

// NodesStep asks the node for its NET/ROM alias table.
type NodesStep struct {
	commander Commander
}

// Name returns the step name.
func (s *NodesStep) Name() string { return "nodes" }

// Do requests and parses NODES output.
func (s *NodesStep) Do(ctx context.Context, visit *Visit) error {
	raw, err := s.commander.CommandExpect(ctx, "NODES", func(resp string) bool {
		parsed := parser.ParseNodes(resp)
		return len(parsed.Entries) > 0 || parsed.Ident.Call.String() != ""
	})
	if err != nil {
		return fmt.Errorf("nodes: %w", err)
	}
	visit.Nodes = parser.ParseNodes(raw)
	return nil
}

// MheardStep asks the node who it has heard recently, one query per RF
// port. MHEARD is last-resort identity evidence but first-rate freshness
// evidence: it is how last-heard timestamps reach the map.
type MheardStep struct {
	commander Commander
}

// Name returns the step name.
func (s *MheardStep) Name() string { return "mheard" }

// Do requests and parses MHEARD output for each known RF/HF port, or
// once without a port argument when the port table is unknown.
func (s *MheardStep) Do(ctx context.Context, visit *Visit) error {
	queries := s.portQueries(visit)

	var failures []string
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := s.commander.Command(ctx, q)
		if err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", q, err))
			continue
		}
		visit.Heard = append(visit.Heard, parser.ParseMheard(raw))
	}

	if len(failures) == len(queries) {
		return fmt.Errorf("mheard: all queries failed: %s", strings.Join(failures, "; "))
	}
	return nil
}

// portQueries builds the MHEARD command list from the visit's port table.
// IP ports are skipped: their heard lists mirror the internet, not the
// local RF neighborhood.
func (s *MheardStep) portQueries(visit *Visit) []string {
	if visit.Ports == nil || len(visit.Ports.Ports) == 0 {
		return []string{"MHEARD"}
	}

	var queries []string
	for _, p := range visit.Ports.Ports {
		if p.Class == model.LinkIP {
			continue
		}
		queries = append(queries, fmt.Sprintf("MHEARD %d", p.Number))
	}
	if len(queries) == 0 {
		return []string{"MHEARD"}
	}
	return queries
}

// InfoStep asks for the sysop's free-text node description. Pure
// enrichment, so it runs last and never retries.
type InfoStep struct {
	commander Commander
}

// Name returns the step name.
func (s *InfoStep) Name() string { return "info" }

// Do requests INFO output and runs software detection over it.
func (s *InfoStep) Do(ctx context.Context, visit *Visit) error {
	raw, err := s.commander.Command(ctx, "INFO")
	if err != nil {
		return fmt.Errorf("info: %w", err)
	}

	visit.Info = strings.TrimSpace(raw)
	if family := model.DetectSoftware(raw); family != model.SoftwareUnknown {
		visit.Software = family
	}
	return nil
}

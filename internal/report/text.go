package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/kd9lsv/packetmap/internal/model"
)

// TextWriter outputs human-readable run summaries for the terminal.
//
// Plain ASCII, no ANSI color: crawl output gets piped into logs and
// mailed between sysops, and color codes survive neither.
type TextWriter struct {
	baseWriter

	// verbose includes the per-node skip details.
	verbose bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithVerbose enables per-node detail lines.
func WithVerbose(verbose bool) TextWriterOption {
	return func(w *TextWriter) {
		w.verbose = verbose
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the summary as formatted text.
func (w *TextWriter) Write(summary *model.RunSummary) (int, error) {
	var b strings.Builder

	status := "complete"
	if summary.Interrupted {
		status = "INTERRUPTED (partial results saved)"
	}

	fmt.Fprintf(&b, "Crawl summary (%s mode)\n", summary.Mode)
	fmt.Fprintf(&b, "%s\n", strings.Repeat("=", 40))
	fmt.Fprintf(&b, "Started:   %s\n", summary.StartedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Duration:  %s\n", summary.Duration().Round(time.Second))
	fmt.Fprintf(&b, "Status:    %s\n", status)
	fmt.Fprintf(&b, "Map:       %d nodes, %d edges\n\n", summary.NodesKnown, summary.EdgesKnown)

	fmt.Fprintf(&b, "Visited: %d\n", len(summary.Visited))
	for _, v := range summary.Visited {
		software := ""
		if v.Software != model.SoftwareUnknown {
			software = " [" + v.Software.String() + "]"
		}
		fmt.Fprintf(&b, "  %-12s %d hops, %s%s, %d new neighbors\n",
			v.Call, v.Hops, v.Elapsed.Round(time.Second), software, v.NewNeighbors)
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintf(&b, "\nUnreachable this run: %d\n", len(summary.Failed))
		for _, f := range summary.Failed {
			fmt.Fprintf(&b, "  %-12s %d paths tried", f.Call, f.PathsTried)
			if f.Detail != "" {
				fmt.Fprintf(&b, " (%s)", f.Detail)
			}
			fmt.Fprintln(&b)
		}
	}

	if len(summary.Skipped) > 0 {
		fmt.Fprintf(&b, "\nSkipped: %d\n", len(summary.Skipped))
		byReason := make(map[model.SkipReason]int)
		var reasons []string
		for _, s := range summary.Skipped {
			if byReason[s.Reason] == 0 {
				reasons = append(reasons, string(s.Reason))
			}
			byReason[s.Reason]++
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(&b, "  %-16s %d\n", reason, byReason[model.SkipReason(reason)])
		}
		if w.verbose {
			for _, s := range summary.Skipped {
				fmt.Fprintf(&b, "    %-12s %-16s %s\n", s.Call, string(s.Reason), s.Detail)
			}
		}
	}

	if len(summary.Rejected) > 0 {
		fmt.Fprintf(&b, "\nRejected tokens (impossible SSID): %d\n", len(summary.Rejected))
		for _, token := range summary.Rejected {
			fmt.Fprintf(&b, "  %s\n", token)
		}
	}

	return io.WriteString(w.output, b.String())
}

package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/kd9lsv/packetmap/internal/model"
)

// MarkdownWriter outputs run summaries as Markdown, the format packet
// groups paste into their club wikis and mailing lists.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the summary as Markdown.
func (w *MarkdownWriter) Write(summary *model.RunSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Packet Network Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Mode", string(summary.Mode)},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", summary.Duration().Round(time.Second).String()},
			{"Status", statusText(summary)},
			{"Nodes known", strconv.Itoa(summary.NodesKnown)},
			{"Edges known", strconv.Itoa(summary.EdgesKnown)},
		},
	})
	md.PlainText("")

	w.writeVisited(md, summary)
	w.writeFailed(md, summary)
	w.writeSkipped(md, summary)
	w.writeRejected(md, summary)

	return len(md.String()), md.Build()
}

// statusText renders the run's end state.
func statusText(summary *model.RunSummary) string {
	if summary.Interrupted {
		return "interrupted, partial results saved"
	}
	return "complete"
}

// writeVisited writes the successful interrogations table.
func (w *MarkdownWriter) writeVisited(md *markdown.Markdown, summary *model.RunSummary) {
	md.H2("Visited Nodes (" + strconv.Itoa(len(summary.Visited)) + ")")
	md.PlainText("")

	if len(summary.Visited) == 0 {
		md.PlainText("No nodes were visited this run.")
		md.PlainText("")
		return
	}

	rows := make([][]string, 0, len(summary.Visited))
	for _, v := range summary.Visited {
		rows = append(rows, []string{
			"`" + v.Call + "`",
			strconv.Itoa(v.Hops),
			v.Elapsed.Round(time.Second).String(),
			v.Software.String(),
			strconv.Itoa(v.NewNeighbors),
		})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Node", "Hops", "Session", "Software", "New Neighbors"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFailed writes the unreachable-this-run table.
func (w *MarkdownWriter) writeFailed(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Failed) == 0 {
		return
	}

	md.H2("Unreachable This Run (" + strconv.Itoa(len(summary.Failed)) + ")")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Failed))
	for _, f := range summary.Failed {
		rows = append(rows, []string{"`" + f.Call + "`", strconv.Itoa(f.PathsTried), f.Detail})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Node", "Paths Tried", "Last Failure"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeSkipped writes the deliberate non-attempts table.
func (w *MarkdownWriter) writeSkipped(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Skipped) == 0 {
		return
	}

	md.H2("Skipped (" + strconv.Itoa(len(summary.Skipped)) + ")")
	md.PlainText("")

	rows := make([][]string, 0, len(summary.Skipped))
	for _, s := range summary.Skipped {
		age := ""
		if s.Age > 0 {
			age = s.Age.Round(time.Minute).String()
		}
		rows = append(rows, []string{"`" + s.Call + "`", string(s.Reason), age, s.Detail})
	}
	md.Table(markdown.TableSet{
		Header: []string{"Node", "Reason", "Last Heard", "Detail"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRejected lists tokens discarded for impossible SSIDs.
func (w *MarkdownWriter) writeRejected(md *markdown.Markdown, summary *model.RunSummary) {
	if len(summary.Rejected) == 0 {
		return
	}

	md.H2("Rejected Tokens (" + strconv.Itoa(len(summary.Rejected)) + ")")
	md.PlainText("")
	md.PlainText("These tokens carried SSIDs outside 0-15 and were logged, never dialed.")
	md.PlainText("")
	md.BulletList(summary.Rejected...)
	md.PlainText("")
}

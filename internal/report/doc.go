// Package report renders crawl run summaries for people and tools: plain
// text for the terminal, JSON for scripting, Markdown for club wikis.
//
// All writers consume the same model.RunSummary; the choice of format
// never changes what is reported. In particular every skipped node and
// every rejected token appears in every format.
package report

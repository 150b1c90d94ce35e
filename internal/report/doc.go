// Package report renders the outcome of a run.
//
// A Run gathers the crawl summary, the assembly result and the per-fund
// coverage of the merged dataset. Writers render it as plain text for the
// terminal, as Markdown for sharing, or as JSON for other tools.
package report

// Package crawl runs the export of a sequence of month windows, strictly
// one after another, through a single Exporter.
//
// A failed window is recorded and the crawl moves on; only cancellation of
// the run context stops it, and only between two windows.
package crawl

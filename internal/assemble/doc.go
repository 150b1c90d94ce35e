// Package assemble merges the per-month export files of a download
// directory into one deduplicated tab-separated dataset.
//
// The portal's ".xls" exports are HTML documents holding a single table.
// Each file is decoded, parsed and reduced to its first table; files that
// cannot be reduced are logged and skipped. The surviving tables are
// merged in iteration order into a column union, exact duplicate rows are
// dropped, and the result is written atomically so that re-running over
// the same directory produces a byte-identical artifact.
package assemble

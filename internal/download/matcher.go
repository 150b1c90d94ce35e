package download

import (
	"io/fs"
	"strings"
	"time"
)

// Matcher decides whether a file in the download directory is the export
// the caller is waiting for.
type Matcher func(entry fs.DirEntry, info fs.FileInfo) bool

// NameContains matches files whose name contains any of the substrings.
func NameContains(substrings ...string) Matcher {
	return func(entry fs.DirEntry, _ fs.FileInfo) bool {
		for _, s := range substrings {
			if strings.Contains(entry.Name(), s) {
				return true
			}
		}
		return false
	}
}

// DefaultMatcher matches the portal's default export naming.
func DefaultMatcher() Matcher {
	return NameContains("Open-End", "Open - End")
}

// ModifiedSince matches files written at or after t.
// It keeps stale exports from an earlier window from being claimed.
// t is truncated to whole seconds since some filesystems store coarse
// modification times.
func ModifiedSince(t time.Time) Matcher {
	threshold := t.Truncate(time.Second)
	return func(_ fs.DirEntry, info fs.FileInfo) bool {
		return !info.ModTime().Before(threshold)
	}
}

// NonEmpty matches files with at least one byte.
func NonEmpty() Matcher {
	return func(_ fs.DirEntry, info fs.FileInfo) bool {
		return info.Size() > 0
	}
}

// All matches when every matcher matches.
func All(matchers ...Matcher) Matcher {
	return func(entry fs.DirEntry, info fs.FileInfo) bool {
		for _, m := range matchers {
			if !m(entry, info) {
				return false
			}
		}
		return true
	}
}

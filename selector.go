package zipsift

import "strings"

// macOS archive artifacts excluded by default: Finder zips duplicate every
// file under __MACOSX/ as a resource fork and drop .DS_Store metadata into
// directories.
const (
	macResourceFork = "__MACOSX"
	macFinderStore  = ".DS_Store"
)

// Selector is the entry selection policy applied to each name before any
// decoding work happens. The zero value matches every non-directory,
// non-artifact entry; DefaultSelector returns the stock JSON policy.
//
// Selection operates on raw archive names. Names are matched as stored,
// never resolved against a filesystem.
type Selector struct {
	// Suffix restricts matches to names ending with it. Empty disables the
	// check.
	Suffix string

	// PathContains restricts matches to names containing at least one of
	// its elements. Empty means no constraint.
	PathContains []string

	// ExcludeContains rejects any name containing one of its elements,
	// regardless of the other fields.
	ExcludeContains []string

	// DirectoryEntries includes names ending in "/" when true.
	DirectoryEntries bool

	// PlatformArtifacts includes macOS metadata entries when true.
	PlatformArtifacts bool
}

// DefaultSelector matches non-directory, non-artifact entries named *.json.
func DefaultSelector() Selector {
	return Selector{Suffix: ".json"}
}

// Match reports whether an entry name passes the policy.
func (s Selector) Match(name string) bool {
	if !s.DirectoryEntries && strings.HasSuffix(name, "/") {
		return false
	}
	if !s.PlatformArtifacts && isPlatformArtifact(name) {
		return false
	}
	for _, sub := range s.ExcludeContains {
		if strings.Contains(name, sub) {
			return false
		}
	}
	if s.Suffix != "" && !strings.HasSuffix(name, s.Suffix) {
		return false
	}
	if len(s.PathContains) == 0 {
		return true
	}
	for _, sub := range s.PathContains {
		if strings.Contains(name, sub) {
			return true
		}
	}
	return false
}

func isPlatformArtifact(name string) bool {
	return strings.Contains(name, macResourceFork) || strings.HasSuffix(name, macFinderStore)
}

// Package manifest parses dependency-manifest files into normalized
// package references.
//
// Two formats are supported: the JSON package.json manifest (npm) and the
// line-oriented requirements.txt manifest (pip). Both parsers are tolerant by
// contract: a missing or malformed manifest yields an empty package list, and
// entries repeated across dependency groups are kept as separate references.
package manifest

import (
	"os"

	"github.com/nsanches/depcheck/pkg/vuln"
)

// PackageRef is one declared dependency: a package name and the version
// constraint it was declared with, already stripped of range operators.
// Version may be empty when the manifest pins no version.
type PackageRef struct {
	Name    string
	Version string
}

// Parser reads dependency information from a local manifest file.
type Parser interface {
	// Parse reads the manifest at path and returns the declared packages.
	// Expected failure modes (missing file, malformed content) return an
	// empty list together with the underlying error so callers can log it;
	// the error is informational and never aborts a scan.
	Parse(path string) ([]PackageRef, error)
	// Supports reports whether this parser handles the given filename.
	// Detect consults it for every entry of the scanned directory.
	Supports(filename string) bool
	// Ecosystem returns the package ecosystem this manifest belongs to.
	Ecosystem() vuln.Ecosystem
}

// Match pairs a parser with a manifest filename it recognized in a directory.
type Match struct {
	Parser   Parser
	Filename string
}

// Detect lists dir and returns a match for every file some parser supports,
// grouped in the order the parsers were given and alphabetical within a
// parser. A directory that is missing or unreadable yields no matches.
func Detect(dir string, parsers ...Parser) []Match {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var matches []Match
	for _, p := range parsers {
		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			if p.Supports(entry.Name()) {
				matches = append(matches, Match{Parser: p, Filename: entry.Name()})
			}
		}
	}
	return matches
}

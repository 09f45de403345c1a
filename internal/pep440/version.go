// Package pep440 parses and orders Python package versions on top of
// github.com/aquasecurity/go-pep440-version, keeping the version as it was
// written alongside the parsed form.
package pep440

import (
	"fmt"
	"strings"

	version "github.com/aquasecurity/go-pep440-version"
)

// Version is a parsed release identifier. The zero value is not meaningful;
// use Parse.
type Version struct {
	v        version.Version
	original string
}

// Parse parses s. Leading/trailing whitespace and case are ignored.
func Parse(s string) (Version, error) {
	v, err := version.Parse(strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	return Version{v: v, original: s}, nil
}

// MustParse is like Parse but panics on error. Intended for tests and constants.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the version as it was written.
func (v Version) String() string {
	return v.original
}

// IsPrerelease reports whether v is an alpha, beta, release candidate or
// development release.
func (v Version) IsPrerelease() bool {
	return v.v.IsPreRelease()
}

// Base returns the final release v belongs to: its epoch and release
// segments without pre, post, dev or local parts.
func (v Version) Base() Version {
	base := v.v.BaseVersion()
	return MustParse(base)
}

// Compare returns -1, 0 or 1 as a is older than, equal to, or newer than b.
func Compare(a, b Version) int {
	return a.v.Compare(b.v)
}

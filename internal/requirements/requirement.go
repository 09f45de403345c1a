package requirements

import (
	"context"
	"fmt"
	"strings"

	"github.com/frederic-klein/requp/internal/pep440"
)

// VersionSource lists the known releases of a project, newest first.
// Names are matched case-insensitively. An unknown project yields an empty
// list, not an error; errors are reserved for failed lookups.
type VersionSource interface {
	VersionsFor(ctx context.Context, name string) ([]string, error)
}

// Requirement is one parsed requirement line. It is not modified after
// parsing; updating a version produces new line text instead.
type Requirement struct {
	Name       string   // as written, casing preserved
	Extras     []string // names inside [...] after the project name
	Specs      []Clause // empty when loose
	Filter     Filter   // nil when absent
	Marker     string   // environment marker after ';', if any
	LineNumber int      // 0-based index into the owning file's lines
	Line       string   // the original line

	nameEnd      int // end of name and extras
	specEnd      int // end of the version specifier, trailing space excluded
	commentStart int // index of the first '#', or len(Line)
	markers      markerSet
}

// IsPinned reports whether the requirement is constrained to exactly one
// version by a single "==" clause. The pinned version need not be valid
// PEP 440; a "==X.*" wildcard is a range, not a pin.
func (r *Requirement) IsPinned() bool {
	if len(r.Specs) != 1 || r.Specs[0].Op != pep440.OpEqual {
		return false
	}
	return !strings.HasSuffix(r.Specs[0].Version, ".*")
}

// IsLoose reports whether the requirement has no version constraint.
func (r *Requirement) IsLoose() bool {
	return len(r.Specs) == 0
}

// IsRanged reports whether the requirement is constrained but not pinned.
func (r *Requirement) IsRanged() bool {
	return !r.IsLoose() && !r.IsPinned()
}

// PinnedVersion returns the version of a pinned requirement.
func (r *Requirement) PinnedVersion() (string, bool) {
	if !r.IsPinned() {
		return "", false
	}
	return r.Specs[0].Version, true
}

// Prereleases reports whether any spec version carries a prerelease marker,
// in which case prereleases become upgrade candidates.
func (r *Requirement) Prereleases() bool {
	markers := r.markers
	if markers == nil {
		markers = defaultParser.markers
	}
	for _, c := range r.Specs {
		if markers.matches(c.Version) {
			return true
		}
	}
	return false
}

// SpecString renders the specs as they would appear in a manifest.
func (r *Requirement) SpecString() string {
	return formatClauses(r.Specs)
}

func (r *Requirement) String() string {
	return r.Name + r.SpecString()
}

// LatestVersion returns the newest release regardless of specs and filter.
// Prereleases are only considered when the requirement itself pins one.
func (r *Requirement) LatestVersion(versions []string) (string, bool) {
	return latest(nil, versions, r.Prereleases())
}

// LatestVersionWithinSpecs returns the newest release satisfying the filter
// when one is present, otherwise the requirement's own specs. A pin is what
// an update moves away from, so a pinned requirement without a filter is
// treated as unconstrained.
func (r *Requirement) LatestVersionWithinSpecs(versions []string) (string, bool) {
	return LatestWithinSpecs(r.activeClauses(), versions, r.Prereleases())
}

// Version returns the version the requirement currently stands for: the pin
// itself when pinned, else the newest release within specs, else the newest
// release at all.
func (r *Requirement) Version(versions []string) (string, bool) {
	if v, ok := r.PinnedVersion(); ok {
		return v, true
	}
	if v, ok := r.LatestVersionWithinSpecs(versions); ok {
		return v, true
	}
	return r.LatestVersion(versions)
}

func (r *Requirement) activeClauses() []Clause {
	switch {
	case len(r.Filter) > 0:
		return r.Filter
	case r.IsPinned():
		return nil
	default:
		return r.Specs
	}
}

// Resolution is a requirement evaluated against one snapshot of its
// project's releases. Empty strings mean no acceptable version.
type Resolution struct {
	Versions          []string
	Latest            string
	LatestWithinSpecs string
	Version           string
}

// Resolve looks the requirement up in src and evaluates it.
func (r *Requirement) Resolve(ctx context.Context, src VersionSource) (Resolution, error) {
	versions, err := src.VersionsFor(ctx, r.Name)
	if err != nil {
		return Resolution{}, fmt.Errorf("listing versions of %s: %w", r.Name, err)
	}
	res := Resolution{Versions: versions}
	res.Latest, _ = r.LatestVersion(versions)
	res.LatestWithinSpecs, _ = r.LatestVersionWithinSpecs(versions)
	res.Version, _ = r.Version(versions)
	return res, nil
}

// LatestWithinSpecs returns the newest of versions that satisfies every
// clause. Prereleases are skipped unless prereleases is set or an inclusive
// clause names a prerelease itself. Unparseable versions are never selected.
func LatestWithinSpecs(clauses []Clause, versions []string, prereleases bool) (string, bool) {
	for _, c := range clauses {
		switch c.Op {
		case pep440.OpNotEqual, pep440.OpLess, pep440.OpGreater:
			continue
		}
		if v, err := pep440.Parse(c.Version); err == nil && v.IsPrerelease() {
			prereleases = true
			break
		}
	}
	return latest(clauses, versions, prereleases)
}

// latest picks the newest acceptable entry of versions, which are listed
// newest first. A prerelease and the plain final release it leads up to rank
// equal, and the one listed first is kept.
func latest(clauses []Clause, versions []string, prereleases bool) (string, bool) {
	var (
		best    string
		bestVer pep440.Version
		found   bool
	)
	for _, s := range versions {
		v, err := pep440.Parse(s)
		if err != nil {
			continue
		}
		if v.IsPrerelease() && !prereleases {
			continue
		}
		if !Satisfies(clauses, s) {
			continue
		}
		if !found || outranks(v, bestVer) {
			best, bestVer, found = s, v, true
		}
	}
	return best, found
}

func outranks(v, best pep440.Version) bool {
	if candidateOf(v, best) || candidateOf(best, v) {
		return false
	}
	return pep440.Compare(v, best) > 0
}

// candidateOf reports whether pre is a prerelease of final, where final is
// a plain release with no post, dev or local part.
func candidateOf(pre, final pep440.Version) bool {
	if !pre.IsPrerelease() || final.IsPrerelease() {
		return false
	}
	return pep440.Compare(pre, final) < 0 && pep440.Compare(pre.Base(), final) == 0
}

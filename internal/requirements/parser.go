// Package requirements parses pip requirements files and rewrites their
// version pins in place.
//
// Parsing never fails: lines that are not requirements are classified and
// skipped, malformed filter directives are dropped, and unparseable specs
// leave a requirement unconstrained. Nothing here performs I/O; version lists
// come from a VersionSource and file contents are handed in by the caller.
package requirements

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultPrereleaseMarkers are the tokens that mark a pinned version as a
// prerelease, for example "rc" in "1.9rc1" or "alpha" in "1.9-alpha1".
var DefaultPrereleaseMarkers = []string{"a", "b", "c", "rc", "alpha", "beta", "pre", "preview", "dev"}

type lineKind int

const (
	lineIgnored lineKind = iota
	lineRequirement
	lineReference
)

var (
	referenceRe = regexp.MustCompile(`^(?:-r|--requirement)(?:\s*=\s*|\s+)(.*)$`)
	nameRe      = regexp.MustCompile(`^\s*([A-Za-z0-9](?:[A-Za-z0-9._-]*[A-Za-z0-9])?)(\s*\[([^\]]*)\])?`)
	vcsPrefixes = []string{"git+", "hg+", "svn+", "bzr+"}
)

// Parser parses requirement lines and files.
type Parser struct {
	markers markerSet
}

// NewParser creates a parser. With no markers DefaultPrereleaseMarkers is used.
func NewParser(prereleaseMarkers ...string) *Parser {
	if len(prereleaseMarkers) == 0 {
		prereleaseMarkers = DefaultPrereleaseMarkers
	}
	p := &Parser{markers: make(markerSet, len(prereleaseMarkers))}
	for _, m := range prereleaseMarkers {
		p.markers[strings.ToLower(strings.TrimSpace(m))] = true
	}
	return p
}

var defaultParser = NewParser()

// Parse parses one manifest line using the default parser. It returns nil
// when the line does not declare a requirement.
func Parse(line string, lineNumber int) *Requirement {
	return defaultParser.ParseRequirement(line, lineNumber)
}

// ParseRequirement parses one manifest line. It returns nil for blank lines,
// comments, option lines, file references, URLs and anything else that does
// not start with a project name.
func (p *Parser) ParseRequirement(line string, lineNumber int) *Requirement {
	if classify(line) != lineRequirement {
		return nil
	}

	commentStart := strings.IndexByte(line, '#')
	if commentStart < 0 {
		commentStart = len(line)
	}
	body := line[:commentStart]

	m := nameRe.FindStringSubmatchIndex(body)
	if m == nil {
		return nil
	}

	r := &Requirement{
		Name:         body[m[2]:m[3]],
		LineNumber:   lineNumber,
		Line:         line,
		nameEnd:      m[1],
		commentStart: commentStart,
		markers:      p.markers,
	}
	if m[6] >= 0 {
		for _, extra := range strings.Split(body[m[6]:m[7]], ",") {
			if extra = strings.TrimSpace(extra); extra != "" {
				r.Extras = append(r.Extras, extra)
			}
		}
	}

	rest := body[r.nameEnd:]
	specText := rest
	if i := strings.IndexByte(rest, ';'); i >= 0 {
		specText = rest[:i]
		r.Marker = strings.TrimSpace(rest[i+1:])
	}
	r.specEnd = r.nameEnd + len(strings.TrimRightFunc(specText, unicode.IsSpace))

	if strings.TrimSpace(specText) != "" {
		if clauses, err := ParseClauses(specText); err == nil {
			r.Specs = clauses
		}
	}
	if commentStart < len(line) {
		r.Filter = ParseFilter(line[commentStart:])
	}
	return r
}

// ParseFile parses a whole manifest. See NewFile.
func (p *Parser) ParseFile(path, content string) *File {
	f := &File{Path: path, Content: content}
	for i, line := range strings.Split(content, "\n") {
		switch classify(line) {
		case lineRequirement:
			if r := p.ParseRequirement(line, i); r != nil {
				f.Requirements = append(f.Requirements, r)
			}
		case lineReference:
			if ref, ok := ResolveFile(path, line); ok {
				f.OtherFiles = append(f.OtherFiles, ref)
			}
		}
	}
	return f
}

func classify(line string) lineKind {
	trimmed := strings.TrimSpace(line)
	switch {
	case trimmed == "" || trimmed[0] == '#':
		return lineIgnored
	case referenceRe.MatchString(trimmed):
		return lineReference
	case trimmed[0] == '-':
		// -e, -f, -i, --index-url, --no-index, -Z and any other pip option.
		return lineIgnored
	case strings.Contains(trimmed, "://"):
		return lineIgnored
	}
	for _, prefix := range vcsPrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return lineIgnored
		}
	}
	return lineRequirement
}

// referencePath returns the path named by a -r/--requirement line with any
// trailing comment removed.
func referencePath(line string) (string, bool) {
	m := referenceRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", false
	}
	ref := m[1]
	if i := strings.IndexByte(ref, '#'); i >= 0 {
		ref = ref[:i]
	}
	ref = strings.TrimSpace(ref)
	return ref, ref != ""
}

type markerSet map[string]bool

// matches reports whether any alphabetic run of version is a marker.
func (s markerSet) matches(version string) bool {
	tokens := strings.FieldsFunc(strings.ToLower(version), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	for _, tok := range tokens {
		if s[tok] {
			return true
		}
	}
	return false
}

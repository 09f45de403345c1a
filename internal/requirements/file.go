package requirements

import (
	"path"
	"strings"
)

// File is a parsed requirements manifest.
type File struct {
	Path         string
	Content      string
	Requirements []*Requirement // in file order, duplicates kept
	OtherFiles   []string       // resolved -r/--requirement targets, first seen first
}

// NewFile parses content with the default parser.
func NewFile(path, content string) *File {
	return defaultParser.ParseFile(path, content)
}

// ResolveFile returns the path a -r/--requirement line refers to, relative to
// the directory of basePath. Paths are slash separated. ok is false when line
// is not a file reference.
func ResolveFile(basePath, line string) (resolved string, ok bool) {
	ref, ok := referencePath(line)
	if !ok {
		return "", false
	}
	if strings.Contains(ref, "://") || path.IsAbs(ref) {
		return ref, true
	}
	return path.Join(path.Dir(basePath), ref), true
}

// UpdateContent returns the file's content with req's line pinned to version.
func (f *File) UpdateContent(req *Requirement, version string) (string, error) {
	return spliceLine(f.Content, req, version)
}

// Lookup returns the requirements whose name matches name case-insensitively.
func (f *File) Lookup(name string) []*Requirement {
	var out []*Requirement
	for _, r := range f.Requirements {
		if strings.EqualFold(r.Name, name) {
			out = append(out, r)
		}
	}
	return out
}

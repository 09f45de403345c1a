package resolver

import (
	"fmt"

	"github.com/frederic-klein/requp/internal/dist"
	"github.com/frederic-klein/requp/internal/requirements"
)

// Apply rewrites the bundle's files with updates and returns the new content
// of every file that changed, keyed by path. The bundle is not modified.
//
// Each update must still describe its line: the requirement parsed at
// update.Line must have update.Old as its text. Updates from a stale plan are
// rejected with requirements.ErrLineMismatch.
func Apply(bundle *requirements.Bundle, updates []dist.Update) (map[string]string, error) {
	contents := make(map[string]string)
	for _, u := range updates {
		f := bundle.File(u.Path)
		if f == nil {
			return nil, fmt.Errorf("applying %s: file %s not in bundle", u.Name, u.Path)
		}

		req := findRequirement(f, u)
		if req == nil {
			return nil, fmt.Errorf("applying %s to %s:%d: %w", u.Name, u.Path, u.Line, requirements.ErrLineMismatch)
		}

		content, ok := contents[u.Path]
		if !ok {
			content = f.Content
		}
		updated, err := req.UpdateContent(content, u.Target)
		if err != nil {
			return nil, fmt.Errorf("applying %s to %s: %w", u.Name, u.Path, err)
		}
		contents[u.Path] = updated
	}
	return contents, nil
}

func findRequirement(f *requirements.File, u dist.Update) *requirements.Requirement {
	for _, req := range f.Requirements {
		if req.LineNumber == u.Line && req.Line == u.Old {
			return req
		}
	}
	for _, req := range f.Lookup(u.Name) {
		if req.Line == u.Old {
			return req
		}
	}
	return nil
}

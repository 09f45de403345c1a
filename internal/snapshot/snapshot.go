// Package snapshot reads and writes update plans. A plan records the line
// rewrites a check decided on so that they can be reviewed and applied later.
package snapshot

import "github.com/frederic-klein/requp/internal/dist"

// FormatVersion is the plan format written by Emitter.
const FormatVersion = 1

const header = "# requp plan format: version 1\n"

// Plan is the content of a plan file.
type Plan struct {
	Version int           `yaml:"version"`
	Updates []dist.Update `yaml:"updates"`
	Skipped []dist.Skip   `yaml:"skipped,omitempty"`
}

// Paths returns the distinct files the plan touches, first seen first.
func (p *Plan) Paths() []string {
	seen := make(map[string]bool)
	var paths []string
	for _, u := range p.Updates {
		if !seen[u.Path] {
			seen[u.Path] = true
			paths = append(paths, u.Path)
		}
	}
	return paths
}

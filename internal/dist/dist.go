// Package dist holds the records passed between the resolver, the plan
// snapshot and the CLI.
package dist

// Kind classifies how a requirement constrains its version.
type Kind string

const (
	KindPinned Kind = "pinned"
	KindRanged Kind = "ranged"
	KindLoose  Kind = "loose"
)

// Package is a project as known to an index.
type Package struct {
	Name     string
	Versions []string // newest first
}

// Update is a pending rewrite of one requirement line.
type Update struct {
	Path    string `yaml:"path"`
	Line    int    `yaml:"line"` // 0-based
	Name    string `yaml:"name"`
	Kind    Kind   `yaml:"kind"`
	Current string `yaml:"current,omitempty"` // pinned version, empty unless pinned
	Target  string `yaml:"target"`
	Old     string `yaml:"old"`
	New     string `yaml:"new"`
}

// Skip records a requirement that was left alone, with the reason.
type Skip struct {
	Path   string `yaml:"path"`
	Line   int    `yaml:"line"`
	Name   string `yaml:"name"`
	Reason string `yaml:"reason"`
}

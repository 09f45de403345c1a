package index

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/requp/internal/dist"
)

// Static is an in-memory index, used offline and in tests.
type Static struct {
	packages map[string]dist.Package
}

type staticFile struct {
	Packages map[string][]string `yaml:"packages"`
}

// NewStatic creates an index holding pkgs. Version lists are re-sorted newest
// first.
func NewStatic(pkgs ...dist.Package) *Static {
	s := &Static{packages: make(map[string]dist.Package, len(pkgs))}
	for _, p := range pkgs {
		s.Add(p)
	}
	return s
}

// LoadStatic reads an index file of the form
//
//	packages:
//	  django: ["1.4", "1.5"]
func LoadStatic(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}

	var f staticFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing index %s: %w", path, err)
	}

	s := NewStatic()
	for name, versions := range f.Packages {
		s.Add(dist.Package{Name: name, Versions: versions})
	}
	return s, nil
}

// Add registers or replaces a package.
func (s *Static) Add(p dist.Package) {
	versions := append([]string(nil), p.Versions...)
	SortNewestFirst(versions)
	s.packages[NormalizeName(p.Name)] = dist.Package{Name: p.Name, Versions: versions}
}

// Lookup returns the package known under name.
func (s *Static) Lookup(name string) (dist.Package, bool) {
	p, ok := s.packages[NormalizeName(name)]
	return p, ok
}

// VersionsFor returns the versions of name, newest first.
func (s *Static) VersionsFor(ctx context.Context, name string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p, ok := s.Lookup(name)
	if !ok {
		return nil, nil
	}
	return append([]string(nil), p.Versions...), nil
}

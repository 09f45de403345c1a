package requirements

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/frederic-klein/requp/internal/pep440"
)

// Clause is a single "operator version" constraint such as ">=1.4".
type Clause struct {
	Op      string
	Version string
}

func (c Clause) String() string {
	return c.Op + c.Version
}

var clauseRe = regexp.MustCompile(`^(===|~=|==|!=|<=|>=|<|>)\s*([A-Za-z0-9][A-Za-z0-9._*+!-]*)$`)

// ParseClauses parses a comma separated clause list like ">=1.4, <1.5".
// Any malformed clause fails the whole list.
func ParseClauses(s string) ([]Clause, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty clause list")
	}

	var clauses []Clause
	for _, part := range strings.Split(s, ",") {
		m := clauseRe.FindStringSubmatch(strings.TrimSpace(part))
		if m == nil {
			return nil, fmt.Errorf("invalid clause %q", part)
		}
		clauses = append(clauses, Clause{Op: m[1], Version: m[2]})
	}
	return clauses, nil
}

// Satisfies reports whether version meets every clause. An empty clause list
// is unconstrained.
func Satisfies(clauses []Clause, version string) bool {
	for _, c := range clauses {
		if !pep440.Match(c.Op, version, c.Version) {
			return false
		}
	}
	return true
}

func formatClauses(clauses []Clause) string {
	parts := make([]string, len(clauses))
	for i, c := range clauses {
		parts[i] = c.String()
	}
	return strings.Join(parts, ",")
}

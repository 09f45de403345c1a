package requirements

import (
	"regexp"
	"strings"
)

// Filter narrows the versions a requirement may move to. It is written as a
// trailing comment:
//
//	Django==1.4.1  # rq.filter: >=1.4,<1.5
//
// A nil Filter means no directive was found or its body did not parse.
type Filter []Clause

var filterRe = regexp.MustCompile(`#\s*rq\.filter\s*:([^#]*)`)

// ParseFilter extracts the filter directive from a comment or a full line.
// Malformed or empty directive bodies yield nil rather than an error.
func ParseFilter(comment string) Filter {
	m := filterRe.FindStringSubmatch(comment)
	if m == nil {
		return nil
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return nil
	}
	clauses, err := ParseClauses(body)
	if err != nil {
		return nil
	}
	return Filter(clauses)
}

func (f Filter) String() string {
	return formatClauses(f)
}

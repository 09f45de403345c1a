package pep440

import (
	"strings"

	version "github.com/aquasecurity/go-pep440-version"
)

// Operators understood by Match.
const (
	OpArbitrary  = "==="
	OpEqual      = "=="
	OpNotEqual   = "!="
	OpLess       = "<"
	OpLessEq     = "<="
	OpGreater    = ">"
	OpGreaterEq  = ">="
	OpCompatible = "~="
)

// Match reports whether candidate satisfies the clause "op target".
//
// A clause whose target cannot be parsed never matches, and neither does an
// unparseable candidate, except under "===" which compares strings.
// Prereleases are not excluded here; callers decide whether to offer them.
func Match(op, candidate, target string) bool {
	target = strings.TrimSpace(target)
	switch op {
	case OpArbitrary:
		return strings.EqualFold(strings.TrimSpace(candidate), target)
	case OpEqual, OpNotEqual:
		if _, err := Parse(strings.TrimSuffix(target, ".*")); err != nil {
			return false
		}
	case OpLess, OpLessEq, OpGreater, OpGreaterEq, OpCompatible:
		if _, err := Parse(target); err != nil {
			return false
		}
	default:
		return false
	}

	c, err := Parse(candidate)
	if err != nil {
		return false
	}
	specs, err := version.NewSpecifiers(op+strings.ToLower(target), version.WithPreRelease(true))
	if err != nil {
		return false
	}
	return specs.Check(c.v)
}

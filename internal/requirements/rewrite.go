package requirements

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

var (
	// ErrLineOutOfRange is returned when a requirement's line number does not
	// exist in the content being updated.
	ErrLineOutOfRange = errors.New("line number out of range")
	// ErrLineMismatch is returned when the content at a requirement's line
	// number is not the line the requirement was parsed from.
	ErrLineMismatch = errors.New("line does not match requirement")
)

// UpdateLine returns the requirement's original line pinned to version.
//
// The name and extras keep their casing, the specifier (if any) becomes
// "==version", an environment marker is kept verbatim, and a trailing
// comment is reattached after exactly one space. Leading whitespace is kept.
func (r *Requirement) UpdateLine(version string) string {
	line := r.Line
	var b strings.Builder
	b.Grow(len(line) + len(version) + 2)
	b.WriteString(line[:r.nameEnd])
	b.WriteString("==")
	b.WriteString(version)

	between := line[r.specEnd:r.commentStart]
	if r.commentStart == len(line) {
		b.WriteString(between)
		return b.String()
	}
	b.WriteString(strings.TrimRightFunc(between, unicode.IsSpace))
	b.WriteByte(' ')
	b.WriteString(line[r.commentStart:])
	return b.String()
}

// UpdateContent rewrites the requirement's line inside content, which is
// either the original line or the full text of the file it came from. When
// the line has moved, a single identical line elsewhere is rewritten instead.
func (r *Requirement) UpdateContent(content, version string) (string, error) {
	if content == r.Line {
		return r.UpdateLine(version), nil
	}
	return spliceLine(content, r, version)
}

func spliceLine(content string, r *Requirement, version string) (string, error) {
	lines := strings.Split(content, "\n")
	if r.LineNumber < 0 || r.LineNumber >= len(lines) {
		return "", fmt.Errorf("%w: %s at line %d", ErrLineOutOfRange, r.Name, r.LineNumber)
	}
	at := r.LineNumber
	if lines[at] != r.Line {
		at = -1
		for i, l := range lines {
			if l != r.Line {
				continue
			}
			if at >= 0 {
				at = -1
				break
			}
			at = i
		}
		if at < 0 {
			return "", fmt.Errorf("%w: %s at line %d", ErrLineMismatch, r.Name, r.LineNumber)
		}
	}
	lines[at] = r.UpdateLine(version)
	return strings.Join(lines, "\n"), nil
}

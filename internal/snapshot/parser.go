package snapshot

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Parser reads plan files.
type Parser struct {
	r io.Reader
}

// NewParser creates a new plan parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse reads a plan. An empty input is an empty plan.
func (p *Parser) Parse() (*Plan, error) {
	var plan Plan
	if err := yaml.NewDecoder(p.r).Decode(&plan); err != nil {
		if errors.Is(err, io.EOF) {
			return &Plan{Version: FormatVersion}, nil
		}
		return nil, fmt.Errorf("reading plan: %w", err)
	}

	if plan.Version != FormatVersion {
		return nil, fmt.Errorf("unsupported plan format version %d", plan.Version)
	}
	for i, u := range plan.Updates {
		if u.Path == "" || u.Target == "" || u.Old == "" {
			return nil, fmt.Errorf("update %d (%s): path, target and old line are required", i, u.Name)
		}
	}
	return &plan, nil
}

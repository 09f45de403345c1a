package snapshot

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/requp/internal/dist"
)

// Emitter writes plan files.
type Emitter struct {
	w io.Writer
}

// NewEmitter creates a new plan emitter.
func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit writes updates and skips sorted by path, then line.
func (e *Emitter) Emit(updates []dist.Update, skips []dist.Skip) error {
	plan := Plan{
		Version: FormatVersion,
		Updates: make([]dist.Update, len(updates)),
		Skipped: make([]dist.Skip, len(skips)),
	}
	copy(plan.Updates, updates)
	copy(plan.Skipped, skips)

	sort.SliceStable(plan.Updates, func(i, j int) bool {
		a, b := plan.Updates[i], plan.Updates[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})
	sort.SliceStable(plan.Skipped, func(i, j int) bool {
		a, b := plan.Skipped[i], plan.Skipped[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		return a.Line < b.Line
	})

	if _, err := fmt.Fprint(e.w, header); err != nil {
		return err
	}

	enc := yaml.NewEncoder(e.w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	return enc.Close()
}

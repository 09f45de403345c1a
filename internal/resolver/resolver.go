// Package resolver loads a bundle of requirements files, works out which
// requirement lines should change, and applies those changes.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/frederic-klein/requp/internal/dist"
	"github.com/frederic-klein/requp/internal/downloader"
	"github.com/frederic-klein/requp/internal/loader"
	"github.com/frederic-klein/requp/internal/pep440"
	"github.com/frederic-klein/requp/internal/requirements"
)

// Skip reasons.
const (
	ReasonUpToDate     = "up to date"
	ReasonNoRelease    = "no acceptable release"
	ReasonRanged       = "ranged requirement"
	ReasonLookupFailed = "lookup failed"
)

// Options tune the update policy.
type Options struct {
	// UpdateRanged pins ranged requirements to the newest release within
	// their specs. When false they are reported as skipped.
	UpdateRanged bool
}

// prefetcher is implemented by version sources that can warm a cache for
// many projects at once.
type prefetcher interface {
	Prefetch(ctx context.Context, names []string) []downloader.Result
}

// Resolver loads bundles and plans updates.
type Resolver struct {
	loader    loader.Loader
	source    requirements.VersionSource
	parser    *requirements.Parser
	logger    *log.Logger
	opts      Options
	resolving map[string]bool
}

// NewResolver creates a resolver. A nil parser uses the default prerelease
// markers and a nil logger discards output.
func NewResolver(l loader.Loader, src requirements.VersionSource, parser *requirements.Parser, logger *log.Logger, opts Options) *Resolver {
	if parser == nil {
		parser = requirements.NewParser()
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Resolver{
		loader:    l,
		source:    src,
		parser:    parser,
		logger:    logger,
		opts:      opts,
		resolving: make(map[string]bool),
	}
}

// Load parses roots and every file they reference, depth first. A missing
// root is an error; a missing referenced file is logged and skipped.
func (r *Resolver) Load(ctx context.Context, roots ...string) (*requirements.Bundle, error) {
	bundle := requirements.NewBundle()
	for _, root := range roots {
		if err := r.loadFile(ctx, bundle, root, true); err != nil {
			return nil, err
		}
	}
	return bundle, nil
}

func (r *Resolver) loadFile(ctx context.Context, bundle *requirements.Bundle, path string, root bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if r.resolving[path] {
		r.logger.Debug("Skipping circular reference", "file", path)
		return nil
	}
	if bundle.HasFile(path) {
		return nil
	}
	if strings.Contains(path, "://") {
		r.logger.Warn("Skipping remote requirements file", "file", path)
		return nil
	}

	content, err := r.loader.Load(path)
	if err != nil {
		if !root && errors.Is(err, loader.ErrNotFound) {
			r.logger.Warn("Referenced file not found", "file", path)
			return nil
		}
		return fmt.Errorf("loading %s: %w", path, err)
	}

	r.resolving[path] = true
	defer delete(r.resolving, path)

	f := r.parser.ParseFile(path, content)
	bundle.Add(f)
	r.logger.Debug("Loaded", "file", path, "requirements", len(f.Requirements))

	for _, other := range f.OtherFiles {
		if err := r.loadFile(ctx, bundle, other, false); err != nil {
			return err
		}
	}
	return nil
}

// Plan resolves every requirement of the bundle and returns the line
// rewrites to perform along with the requirements left alone.
func (r *Resolver) Plan(ctx context.Context, bundle *requirements.Bundle) ([]dist.Update, []dist.Skip, error) {
	r.prefetch(ctx, bundle)

	var updates []dist.Update
	var skips []dist.Skip
	for _, f := range bundle.Files() {
		for _, req := range f.Requirements {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			res, err := req.Resolve(ctx, r.source)
			if err != nil {
				if ctx.Err() != nil {
					return nil, nil, ctx.Err()
				}
				r.logger.Warn("Version lookup failed", "name", req.Name, "err", err)
				skips = append(skips, skipOf(f, req, ReasonLookupFailed))
				continue
			}

			u, reason := r.decide(f, req, res)
			if reason != "" {
				r.logger.Debug("Skipping", "name", req.Name, "file", f.Path, "reason", reason)
				skips = append(skips, skipOf(f, req, reason))
				continue
			}
			r.logger.Debug("Update", "name", req.Name, "from", req.SpecString(), "to", u.Target)
			updates = append(updates, u)
		}
	}
	return updates, skips, nil
}

func (r *Resolver) prefetch(ctx context.Context, bundle *requirements.Bundle) {
	p, ok := r.source.(prefetcher)
	if !ok {
		return
	}
	var names []string
	for _, req := range bundle.Requirements() {
		names = append(names, req.Name)
	}
	for _, res := range p.Prefetch(ctx, names) {
		if res.Error != nil && !errors.Is(res.Error, downloader.ErrNotFound) {
			r.logger.Debug("Prefetch failed", "name", res.Job.Name, "err", res.Error)
		}
	}
}

func (r *Resolver) decide(f *requirements.File, req *requirements.Requirement, res requirements.Resolution) (dist.Update, string) {
	u := dist.Update{
		Path: f.Path,
		Line: req.LineNumber,
		Name: req.Name,
		Old:  req.Line,
	}

	switch {
	case req.IsPinned():
		u.Kind = dist.KindPinned
		u.Current, _ = req.PinnedVersion()
		u.Target = res.LatestWithinSpecs
		if u.Target == "" {
			return u, ReasonNoRelease
		}
		if !newer(u.Target, u.Current) {
			return u, ReasonUpToDate
		}
	case req.IsLoose():
		// A filter on a loose line still bounds the version it is pinned to.
		u.Kind = dist.KindLoose
		u.Target = res.LatestWithinSpecs
		if u.Target == "" {
			return u, ReasonNoRelease
		}
	default:
		u.Kind = dist.KindRanged
		if !r.opts.UpdateRanged {
			return u, ReasonRanged
		}
		u.Target = res.LatestWithinSpecs
		if u.Target == "" {
			return u, ReasonNoRelease
		}
	}

	u.New = req.UpdateLine(u.Target)
	if u.New == u.Old {
		return u, ReasonUpToDate
	}
	return u, ""
}

func newer(candidate, current string) bool {
	c, err := pep440.Parse(candidate)
	if err != nil {
		return false
	}
	p, err := pep440.Parse(current)
	if err != nil {
		return false
	}
	return pep440.Compare(c, p) > 0
}

func skipOf(f *requirements.File, req *requirements.Requirement, reason string) dist.Skip {
	return dist.Skip{Path: f.Path, Line: req.LineNumber, Name: req.Name, Reason: reason}
}

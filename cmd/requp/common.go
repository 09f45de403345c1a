package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/frederic-klein/requp/internal/config"
	"github.com/frederic-klein/requp/internal/dist"
	"github.com/frederic-klein/requp/internal/downloader"
	"github.com/frederic-klein/requp/internal/index"
	"github.com/frederic-klein/requp/internal/loader"
	"github.com/frederic-klein/requp/internal/requirements"
	"github.com/frederic-klein/requp/internal/resolver"
)

const defaultManifest = "requirements.txt"

// newSource picks the offline index when one is configured, PyPI otherwise.
func newSource(cfg config.Config) (requirements.VersionSource, error) {
	if cfg.IndexFile != "" {
		s, err := index.LoadStatic(cfg.IndexFile)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	dl := downloader.NewDownloader(cfg.Workers, nil)
	return index.NewPyPI(cfg.IndexURL, cfg.CacheDir, cfg.CacheTTL, dl), nil
}

func newResolver(ctx context.Context, l loader.Loader) (*resolver.Resolver, error) {
	cfg := configFromContext(ctx)
	src, err := newSource(cfg)
	if err != nil {
		return nil, err
	}
	parser := requirements.NewParser(cfg.PrereleaseMarkers...)
	opts := resolver.Options{UpdateRanged: cfg.UpdateRanged}
	return resolver.NewResolver(l, src, parser, loggerFromContext(ctx), opts), nil
}

// roots turns command-line paths into bundle paths, which are slash
// separated.
func roots(args []string) []string {
	if len(args) == 0 {
		return []string{defaultManifest}
	}
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = filepath.ToSlash(filepath.Clean(a))
	}
	return out
}

type planResult struct {
	bundle  *requirements.Bundle
	updates []dist.Update
	skips   []dist.Skip
}

func loadAndPlan(ctx context.Context, l loader.Loader, paths []string) (*planResult, error) {
	r, err := newResolver(ctx, l)
	if err != nil {
		return nil, err
	}
	bundle, err := r.Load(ctx, paths...)
	if err != nil {
		return nil, err
	}
	updates, skips, err := r.Plan(ctx, bundle)
	if err != nil {
		return nil, fmt.Errorf("planning updates: %w", err)
	}
	return &planResult{bundle: bundle, updates: updates, skips: skips}, nil
}

// writeContents writes new file contents back through dir, keeping each
// file's permissions.
func writeContents(dir *loader.Dir, contents map[string]string) error {
	for path, content := range contents {
		full := dir.Path(path)
		mode := os.FileMode(0644)
		if info, err := os.Stat(full); err == nil {
			mode = info.Mode().Perm()
		}
		if err := os.WriteFile(full, []byte(content), mode); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

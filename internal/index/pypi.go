// Package index provides version sources: the PyPI JSON API with an on-disk
// cache, and a static index read from YAML.
package index

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/frederic-klein/requp/internal/dist"
	"github.com/frederic-klein/requp/internal/downloader"
	"github.com/frederic-klein/requp/internal/pep440"
)

const (
	// DefaultURL is the PyPI JSON API base.
	DefaultURL = "https://pypi.org/pypi"
	// DefaultTTL is how long a cached project document is trusted.
	DefaultTTL = time.Hour
)

var separatorRe = regexp.MustCompile(`[-_.]+`)

// NormalizeName returns the PEP 503 form of a project name.
func NormalizeName(name string) string {
	return separatorRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
}

// PyPI looks up release lists through the PyPI JSON API.
type PyPI struct {
	baseURL  string
	cacheDir string
	ttl      time.Duration
	dl       *downloader.Downloader
}

// NewPyPI creates a PyPI index that caches project documents in cacheDir.
func NewPyPI(baseURL, cacheDir string, ttl time.Duration, dl *downloader.Downloader) *PyPI {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if dl == nil {
		dl = downloader.NewDownloader(1, nil)
	}
	return &PyPI{
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		cacheDir: cacheDir,
		ttl:      ttl,
		dl:       dl,
	}
}

// VersionsFor returns the project's releases, newest first. Unknown projects
// yield an empty list.
func (p *PyPI) VersionsFor(ctx context.Context, name string) ([]string, error) {
	pkg, err := p.Package(ctx, name)
	if errors.Is(err, downloader.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return pkg.Versions, nil
}

// Package fetches (or reads from cache) the project's document.
func (p *PyPI) Package(ctx context.Context, name string) (*dist.Package, error) {
	job := p.job(name)
	if err := p.dl.Fetch(ctx, job); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", name, err)
	}
	pkg, err := p.parseCache(job.DestPath)
	if err != nil {
		// A corrupt document would otherwise stick around until it expires.
		_ = os.Remove(job.DestPath)
		return nil, err
	}
	return pkg, nil
}

// Prefetch warms the cache for names in parallel. Failures are returned per
// project and also surface again from VersionsFor.
func (p *PyPI) Prefetch(ctx context.Context, names []string) []downloader.Result {
	seen := make(map[string]bool)
	var jobs []downloader.Job
	for _, name := range names {
		job := p.job(name)
		if seen[job.DestPath] || downloader.Fresh(job.DestPath, job.MaxAge) {
			continue
		}
		seen[job.DestPath] = true
		jobs = append(jobs, job)
	}
	if len(jobs) == 0 {
		return nil
	}
	return p.dl.Download(ctx, jobs)
}

// CachePath returns where the document for name is cached.
func (p *PyPI) CachePath(name string) string {
	return filepath.Join(p.cacheDir, "pypi", NormalizeName(name)+".json")
}

func (p *PyPI) job(name string) downloader.Job {
	norm := NormalizeName(name)
	return downloader.Job{
		Name:     norm,
		URL:      fmt.Sprintf("%s/%s/json", p.baseURL, norm),
		DestPath: p.CachePath(norm),
		MaxAge:   p.ttl,
	}
}

type apiResponse struct {
	Info struct {
		Name string `json:"name"`
	} `json:"info"`
	Releases map[string][]apiFile `json:"releases"`
}

type apiFile struct {
	Yanked bool `json:"yanked"`
}

func (p *PyPI) parseCache(path string) (*dist.Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening cache file: %w", err)
	}

	var resp apiResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	versions := make([]string, 0, len(resp.Releases))
	for v, files := range resp.Releases {
		if allYanked(files) {
			continue
		}
		versions = append(versions, v)
	}
	SortNewestFirst(versions)

	return &dist.Package{Name: resp.Info.Name, Versions: versions}, nil
}

func allYanked(files []apiFile) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if !f.Yanked {
			return false
		}
	}
	return true
}

// SortNewestFirst orders versions by PEP 440, newest first. Unparseable
// versions go last, sorted as strings.
func SortNewestFirst(versions []string) {
	parsed := make(map[string]pep440.Version, len(versions))
	for _, s := range versions {
		if v, err := pep440.Parse(s); err == nil {
			parsed[s] = v
		}
	}
	sort.SliceStable(versions, func(i, j int) bool {
		a, aok := parsed[versions[i]]
		b, bok := parsed[versions[j]]
		switch {
		case aok && bok:
			return pep440.Compare(a, b) > 0
		case aok != bok:
			return aok
		default:
			return versions[i] < versions[j]
		}
	})
}

// Package downloader fetches index documents into a cache directory using a
// pool of workers.
package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNotFound is returned for an HTTP 404.
var ErrNotFound = errors.New("not found")

// UserAgent is sent with every request.
const UserAgent = "requp (+https://github.com/frederic-klein/requp)"

// Job is one document to fetch.
type Job struct {
	Name     string // project the document describes
	URL      string
	DestPath string
	// MaxAge keeps an existing DestPath younger than this. Zero keeps any
	// existing file.
	MaxAge time.Duration
}

// Result is the outcome of a Job.
type Result struct {
	Job    Job
	Cached bool
	Error  error
}

// Downloader handles parallel HTTP downloads.
type Downloader struct {
	workers int
	client  *http.Client
}

// NewDownloader creates a downloader with the given number of workers.
func NewDownloader(workers int, client *http.Client) *Downloader {
	if workers < 1 {
		workers = 1
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Downloader{workers: workers, client: client}
}

// Download fetches jobs in parallel. Results come back in completion order.
func (d *Downloader) Download(ctx context.Context, jobs []Job) []Result {
	jobChan := make(chan Job, len(jobs))
	resultChan := make(chan Result, len(jobs))

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				cached, err := d.downloadOne(ctx, job)
				resultChan <- Result{Job: job, Cached: cached, Error: err}
			}
		}()
	}

	for _, job := range jobs {
		jobChan <- job
	}
	close(jobChan)

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]Result, 0, len(jobs))
	for result := range resultChan {
		results = append(results, result)
	}

	return results
}

// Fetch downloads a single job.
func (d *Downloader) Fetch(ctx context.Context, job Job) error {
	_, err := d.downloadOne(ctx, job)
	return err
}

// Fresh reports whether path exists and is younger than maxAge.
func Fresh(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return maxAge == 0 || time.Since(info.ModTime()) < maxAge
}

func (d *Downloader) downloadOne(ctx context.Context, job Job) (bool, error) {
	if Fresh(job.DestPath, job.MaxAge) {
		return true, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}

	if err := os.MkdirAll(filepath.Dir(job.DestPath), 0755); err != nil {
		return false, fmt.Errorf("creating directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, job.URL, nil)
	if err != nil {
		return false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("downloading %s: %w", job.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return false, fmt.Errorf("downloading %s: %w", job.URL, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("downloading %s: HTTP %d", job.URL, resp.StatusCode)
	}

	// Write to a temp file first so readers never see a partial document.
	tmp, err := os.CreateTemp(filepath.Dir(job.DestPath), filepath.Base(job.DestPath)+".*.tmp")
	if err != nil {
		return false, fmt.Errorf("creating file: %w", err)
	}
	tmpPath := tmp.Name()

	_, err = io.Copy(tmp, resp.Body)
	tmp.Close()
	if err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("writing file: %w", err)
	}

	if err := os.Rename(tmpPath, job.DestPath); err != nil {
		os.Remove(tmpPath)
		return false, fmt.Errorf("renaming file: %w", err)
	}

	return false, nil
}

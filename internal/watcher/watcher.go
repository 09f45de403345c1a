// Package watcher reports changes to a set of requirements files.
package watcher

import (
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a file must be quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

const minTick = time.Millisecond

// Watcher monitors files through their parent directories, so that editors
// which replace a file on save are still seen. Bursts of events are collapsed
// into one batch on Changes.
type Watcher struct {
	Changes <-chan []string // changed paths, sorted

	changes  chan []string
	debounce time.Duration
	stop     chan struct{}
	done     chan struct{}
	watcher  *fsnotify.Watcher

	mu    sync.Mutex
	files map[string]string // absolute path -> path as given
	dirs  map[string]bool
}

// NewWatcher creates a watcher. A debounce of zero uses DefaultDebounce.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ch := make(chan []string, 4)
	return &Watcher{
		Changes:  ch,
		changes:  ch,
		debounce: debounce,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		watcher:  fw,
		files:    make(map[string]string),
		dirs:     make(map[string]bool),
	}, nil
}

// Add starts watching files. Files already watched are ignored.
func (w *Watcher) Add(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		if _, ok := w.files[abs]; ok {
			continue
		}
		dir := filepath.Dir(abs)
		if !w.dirs[dir] {
			if err := w.watcher.Add(dir); err != nil {
				return err
			}
			w.dirs[dir] = true
		}
		w.files[abs] = f
	}
	return nil
}

// Start begins delivering changes.
func (w *Watcher) Start() {
	go w.loop()
}

// Stop closes the watcher and the Changes channel. Start must have been
// called.
func (w *Watcher) Stop() {
	close(w.stop)
	w.watcher.Close()
	<-w.done
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(tickInterval(w.debounce))
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			name, watched := w.lookup(event.Name)
			if !watched {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[name] = time.Now()
			}

		case <-ticker.C:
			if len(pending) == 0 {
				continue
			}
			now := time.Now()
			quiet := true
			for _, t := range pending {
				if now.Sub(t) < w.debounce {
					quiet = false
					break
				}
			}
			if !quiet {
				continue
			}
			batch := make([]string, 0, len(pending))
			for name := range pending {
				batch = append(batch, name)
			}
			sort.Strings(batch)
			pending = make(map[string]time.Time)
			select {
			case w.changes <- batch:
			case <-w.stop:
				return
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

// tickInterval is how often pending changes are checked for quiet.
func tickInterval(debounce time.Duration) time.Duration {
	return max(debounce/2, minTick)
}

func (w *Watcher) lookup(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[abs]
	return f, ok
}

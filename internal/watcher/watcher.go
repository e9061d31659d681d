// Package watcher reports debounced batches of file changes under a source
// tree. It drives `pith context --watch`.
package watcher

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period before a batch is delivered.
const DefaultDebounce = 500 * time.Millisecond

// Filter decides whether a changed file is interesting.
type Filter func(path string) bool

// Options configures a Watcher.
type Options struct {
	Debounce time.Duration // default DefaultDebounce
	Filter   Filter        // nil accepts every file
	// IncludeHidden watches directories whose name starts with a dot.
	IncludeHidden bool
}

// Watcher watches a directory tree recursively.
type Watcher struct {
	watcher       *fsnotify.Watcher
	root          string
	opts          Options
	callback      func(files []string)
	ctx           context.Context
	cancel        context.CancelFunc
	accumulated   map[string]bool
	accumulatedMu sync.Mutex
	debounceTimer *time.Timer
	timerMu       sync.Mutex
	stopOnce      sync.Once
	doneCh        chan struct{}
}

// New creates a watcher for root. It fails when root cannot be watched.
func New(root string, opts Options) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:     fsw,
		root:        root,
		opts:        opts,
		accumulated: make(map[string]bool),
		doneCh:      make(chan struct{}),
	}
	if err := w.addRecursive(root); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Start delivers batches of changed paths, sorted, to callback until ctx is
// cancelled or Stop is called. callback runs on the watch goroutine, so
// events arriving while it runs form the next batch.
func (w *Watcher) Start(ctx context.Context, callback func(files []string)) error {
	if callback == nil {
		return nil
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.watch()
	return nil
}

// Stop stops watching and releases the fsnotify handle. It is idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
	})
	return err
}

// Done is closed when the watch goroutine has exited.
func (w *Watcher) Done() <-chan struct{} {
	return w.doneCh
}

func (w *Watcher) watch() {
	defer close(w.doneCh)

	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopDebounceTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addRecursive(event.Name); err != nil {
						log.Printf("Warning: failed to watch new directory %s: %v", event.Name, err)
					}
					continue
				}
			}

			if !w.interesting(event) {
				continue
			}

			w.accumulatedMu.Lock()
			w.accumulated[event.Name] = true
			w.accumulatedMu.Unlock()

			w.resetDebounceTimer(fire)

		case <-fire:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Warning: file watcher error: %v", err)
		}
	}
}

func (w *Watcher) flush() {
	w.accumulatedMu.Lock()
	if len(w.accumulated) == 0 {
		w.accumulatedMu.Unlock()
		return
	}
	files := make([]string, 0, len(w.accumulated))
	for file := range w.accumulated {
		files = append(files, file)
	}
	w.accumulated = make(map[string]bool)
	w.accumulatedMu.Unlock()

	sort.Strings(files)
	w.callback(files)
}

func (w *Watcher) resetDebounceTimer(fire chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.opts.Debounce, func() {
		select {
		case fire <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopDebounceTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
		w.debounceTimer = nil
	}
}

func (w *Watcher) interesting(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	if !w.opts.IncludeHidden && strings.HasPrefix(filepath.Base(event.Name), ".") {
		return false
	}
	return w.opts.Filter == nil || w.opts.Filter(event.Name)
}

// skipDir reports directories never worth watching.
func (w *Watcher) skipDir(path, name string) bool {
	if path == w.root {
		return false
	}
	if name == ".git" {
		return true
	}
	return !w.opts.IncludeHidden && strings.HasPrefix(name, ".")
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			log.Printf("Warning: error accessing %s: %v", path, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if w.skipDir(path, d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("Warning: failed to watch directory %s: %v", path, err)
		}
		return nil
	})
}

// Package watch re-runs generation when input files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is the quiet period before a change triggers a run.
const DefaultDelay = 150 * time.Millisecond

// Watcher watches a fixed set of files. Their parent directories are
// watched so editors that replace files through a rename are still seen.
type Watcher struct {
	watcher *fsnotify.Watcher
	targets map[string]struct{}
	dirs    []string
	delay   time.Duration
	log     *zap.Logger
}

// New creates a watcher for files. A zero delay means DefaultDelay.
func New(files []string, delay time.Duration, log *zap.Logger) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("watch: no files to watch")
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &Watcher{watcher: fw, targets: make(map[string]struct{}, len(files)), delay: delay, log: log}
	seen := map[string]bool{}
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: resolve %s: %w", f, err)
		}
		w.targets[abs] = struct{}{}
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the changed files
// after each quiet period. Calls never overlap; an error from onChange is
// logged and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, files []string) error) error {
	defer w.watcher.Close()
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		w.log.Debug("watching directory", zap.String("dir", dir))
	}

	batches := make(chan []string, 1)
	debouncer := NewDebouncer(w.delay, func(files []string) {
		select {
		case batches <- files:
		case <-ctx.Done():
		}
	})
	defer debouncer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			w.log.Debug("file changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			debouncer.Add(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error", zap.Error(err))
		case files := <-batches:
			if err := onChange(ctx, files); err != nil {
				w.log.Warn("regeneration failed", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	_, ok := w.targets[abs]
	return ok
}

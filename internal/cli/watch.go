package cli

import (
	"context"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the bursts of events editors emit on save.
const watchDebounce = 100 * time.Millisecond

// fileWatcher reports changes to a fixed set of files. It watches their
// parent directories so editors that save by rename are still seen.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	targets map[string]bool
	logger  *log.Logger
}

// newFileWatcher watches paths.
func newFileWatcher(logger *log.Logger, paths ...string) (*fileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	fw := &fileWatcher{watcher: w, targets: make(map[string]bool), logger: logger}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = w.Close()
			return nil, err
		}
		fw.targets[abs] = true
		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
		dirs[dir] = true
	}
	return fw, nil
}

// Close stops watching.
func (fw *fileWatcher) Close() error {
	return fw.watcher.Close()
}

// Run calls fn with the last changed target once events have been quiet
// for debounce. It returns nil when ctx is cancelled.
func (fw *fileWatcher) Run(ctx context.Context, debounce time.Duration, fn func(changed string)) error {
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	var pending string
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(event.Name)
			if err != nil || !fw.targets[name] {
				continue
			}
			fw.logger.Debug("file changed", "path", name, "op", event.Op.String())
			pending = name
			timer.Reset(debounce)
		case <-timer.C:
			if pending != "" {
				fn(pending)
				pending = ""
			}
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", "err", err)
		}
	}
}

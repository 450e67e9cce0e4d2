// Package watch re-runs a function when a file changes on disk.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses the burst of events a single save produces.
const DefaultDebounce = 300 * time.Millisecond

// File calls onChange every time path is written, created or renamed into
// place, until ctx is done. The parent directory is watched because
// spreadsheet apps save by replacing the file. Errors from onChange are
// logged and do not stop the watch.
func File(ctx context.Context, path string, debounce time.Duration, onChange func() error) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.S().Warnf("watch %s: %v", abs, err)
		case <-timer.C:
			zap.S().Infof("%s changed", filepath.Base(abs))
			if err := onChange(); err != nil {
				zap.S().Errorf("re-render after change failed: %v", err)
			}
		}
	}
}

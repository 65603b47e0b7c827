package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// ReloadFunc receives a freshly loaded configuration, or the error that
// prevented loading it.
type ReloadFunc[T any] func(cfg *T, err error)

// Watch reloads filename whenever it changes and passes the result to fn
// until ctx is cancelled. Each reload starts from newTarget(), so defaults
// apply to keys missing from the file.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save are still observed.
func Watch[T any](ctx context.Context, filename string, newTarget func() *T, fn ReloadFunc[T]) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	defer w.Close()

	abs, err := filepath.Abs(filename)
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		timer  *time.Timer
		reload <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-reload:
			reload = nil
			target := newTarget()
			if err := Load(abs, target); err != nil {
				fn(nil, err)
				continue
			}
			fn(target, nil)

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			reload = timer.C

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fn(nil, fmt.Errorf("config watcher: %w", err))
		}
	}
}

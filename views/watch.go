package views

import (
	"context"
	"errors"
	"fmt"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
)

const reloadOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watch reloads the store whenever a file in its directory is created, written, removed or
// renamed. Bursts of events within the debounce window trigger a single reload.
// Watch blocks until ctx is cancelled or the watcher fails.
func (s *Store) Watch(ctx context.Context) error {
	if len(s.dir) == 0 {
		return errors.New("cannot watch a store without a template directory")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.dir); err != nil {
		return fmt.Errorf("cannot watch template directory %q: %w", s.dir, err)
	}
	s.logger.Debug("Watching template directory", "dir", s.dir, "debounce", s.debounce)

	debounced := debounce.New(s.debounce)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&reloadOps == 0 {
				continue
			}
			s.logger.Debug("Template directory changed", "file", event.Name, "op", event.Op.String())
			debounced(func() {
				if ctx.Err() != nil {
					return
				}
				_, _ = s.Reload()
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Template watcher error", "error", err)
		case <-ctx.Done():
			return nil
		}
	}
}

package gamedata

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events an editor produces on save.
const reloadDebounce = 150 * time.Millisecond

// WatchCatalog watches dir for changes to its JSON files and delivers a
// freshly loaded catalog after each change. A change that does not load is
// logged and skipped; the previous catalog stays in effect. The channel holds
// at most one pending catalog and is closed when ctx is done.
func WatchCatalog(ctx context.Context, dir string, logger *slog.Logger) (<-chan *Catalog, error) {
	if logger == nil {
		logger = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, err
	}

	out := make(chan *Catalog, 1)
	go func() {
		defer close(out)
		defer w.Close()

		var pending <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return

			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
					continue
				}
				if !strings.EqualFold(filepath.Ext(ev.Name), ".json") {
					continue
				}
				pending = time.After(reloadDebounce)

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("catalog watch error", "dir", dir, "err", err)

			case <-pending:
				pending = nil
				catalog, err := LoadCatalogFS(os.DirFS(dir))
				if err != nil {
					logger.Warn("catalog reload failed; keeping previous", "dir", dir, "err", err)
					continue
				}
				logger.Info("catalog reloaded", "dir", dir,
					"skills", catalog.Skills.Count(), "enemies", catalog.Enemies.Count())
				// Replace an undelivered catalog with the newer one.
				select {
				case <-out:
				default:
				}
				out <- catalog
			}
		}
	}()
	return out, nil
}

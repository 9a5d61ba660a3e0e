package aliases

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce coalesces editor save bursts into one reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher reloads the alias file whenever it changes on disk.
type Watcher struct {
	loader   *Loader
	debounce time.Duration
	logger   *zap.Logger
}

// NewWatcher creates a watcher for the loader's file.
func NewWatcher(l *Loader, debounce time.Duration, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{loader: l, debounce: debounce, logger: logger}
}

// Run watches until ctx is canceled. The parent directory is watched so that
// atomic replace-by-rename is picked up.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	target := filepath.Clean(w.loader.Path())
	if err := fsw.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}
	w.logger.Info("Watching brand aliases", zap.String("path", target))

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !relevant(ev.Op) {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Alias watcher error", zap.Error(err))
		case <-timer.C:
			// Errors are logged and counted by Reload; the old map stays active.
			_, _ = w.loader.Reload(ctx)
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Create) || op.Has(fsnotify.Write) || op.Has(fsnotify.Rename)
}

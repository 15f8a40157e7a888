package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	m "pyskel.dev/pkg/pyskel/internal/model"
)

// DefaultWatchDebounce coalesces the burst of events an editor emits on save.
const DefaultWatchDebounce = 100 * time.Millisecond

// SourceWatcher reports changes to a single source file.
type SourceWatcher interface {
	// Watch blocks until ctx is done, calling onChange after every settled
	// write to path.
	Watch(ctx context.Context, path m.Path, onChange func(context.Context)) error
}

// LocalSourceWatcher is the fsnotify-backed SourceWatcher.
type LocalSourceWatcher struct {
	debounce time.Duration
}

// NewLocalSourceWatcher creates a LocalSourceWatcher. A non-positive debounce
// uses DefaultWatchDebounce.
func NewLocalSourceWatcher(debounce time.Duration) *LocalSourceWatcher {
	if debounce <= 0 {
		debounce = DefaultWatchDebounce
	}

	return &LocalSourceWatcher{debounce: debounce}
}

// Watch observes the parent directory so that editors replacing the file
// through a rename are still noticed.
func (w *LocalSourceWatcher) Watch(ctx context.Context, path m.Path, onChange func(context.Context)) error {
	target, err := filepath.Abs(string(path))
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(target), err)
	}

	var settle <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target || event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			slog.DebugContext(ctx, "source changed", "path", target, "op", event.Op.String())

			settle = time.After(w.debounce)

		case <-settle:
			settle = nil

			onChange(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			slog.WarnContext(ctx, "watcher error", "path", target, "error", err)
		}
	}
}

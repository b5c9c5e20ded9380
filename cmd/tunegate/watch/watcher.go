package watchcmder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange once on start and again after project files change.
type Watcher struct {
	// Dir is the project directory. Its data/ subdirectory is watched too
	// when present.
	Dir string

	// Debounce collapses bursts of events into one call.
	Debounce time.Duration

	OnChange func(ctx context.Context) error
	Logger   *slog.Logger
}

// Run blocks until ctx is done or OnChange fails.
func (w *Watcher) Run(ctx context.Context) error {
	if w.OnChange == nil {
		return errors.New("watch: OnChange is required")
	}
	logger := w.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating project watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.Dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.Dir, err)
	}
	dataDir := filepath.Join(w.Dir, "data")
	if info, err := os.Stat(dataDir); err == nil && info.IsDir() {
		if err := watcher.Add(dataDir); err != nil {
			return fmt.Errorf("watching %s: %w", dataDir, err)
		}
	}

	if err := w.OnChange(ctx); err != nil {
		return err
	}

	// pending fires once the debounce window after the last event closes.
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isProjectFile(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			logger.Debug("project file changed", "path", event.Name, "op", event.Op.String())
			pending = time.After(debounce)

		case <-pending:
			pending = nil
			if err := w.OnChange(ctx); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("project watcher error: %w", err)
		}
	}
}

func isProjectFile(path string) bool {
	switch filepath.Ext(path) {
	case ".yml", ".yaml":
		return true
	default:
		return false
	}
}

package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/five82/shelf/internal/library"
	"github.com/five82/shelf/internal/logger"
)

// Watch monitors the seed file at path and calls onChange with the newly
// loaded Seed each time it is written or replaced. It runs until ctx is
// cancelled.
//
// The parent directory is watched so saves that rename a temp file over path
// keep being seen.
//
// A file that fails to load or validate is logged and skipped; onChange is
// not called and the previous seed stays active.
func Watch(ctx context.Context, path string, log *logger.Logger, onChange func(library.Seed)) error {
	if log == nil {
		log = logger.Nop()
	}

	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", path, err)
	}

	log.Info().Str("path", path).Msg("watching seed file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			seed, err := library.LoadSeed(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("seed reload failed, keeping previous seed")
				continue
			}

			log.Info().Str("path", path).Int("clients", len(seed.Clients)).Msg("seed reloaded")
			onChange(seed)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error().Err(err).Msg("seed watcher error")
		}
	}
}

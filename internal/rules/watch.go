package rules

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watch reloads path whenever it is written or replaced and passes the new
// rules to onChange. A file that fails to load is logged and skipped, leaving
// the previous rules active. Watch returns when ctx is cancelled.
//
// The parent directory is watched rather than the file, so editors that save
// by writing a temporary file and renaming it over path are picked up.
func Watch(ctx context.Context, path string, logger zerolog.Logger, onChange func(*Rules)) error {
	target := filepath.Clean(path)
	if _, err := os.Stat(target); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return err
	}
	logger.Info().Str("path", path).Msg("watching rules file")

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isRulesChange(event, target) {
				continue
			}

			r, err := Load(target)
			if err != nil {
				logger.Error().Err(err).Str("path", path).Msg("rules reload failed, keeping previous rules")
				continue
			}
			logger.Info().Str("path", path).Str("op", event.Op.String()).Msg("rules reloaded")
			onChange(r)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("rules watcher error")
		}
	}
}

// isRulesChange reports whether event leaves new content at target. A rename
// onto target surfaces as Create on the target name.
func isRulesChange(event fsnotify.Event, target string) bool {
	if filepath.Clean(event.Name) != target {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

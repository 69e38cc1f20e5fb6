package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads a project file when it or its schema changes.
type Watcher struct {
	cfg     *Config
	logger  zerolog.Logger
	watcher *fsnotify.Watcher

	// files are the absolute paths that trigger a reload.
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher starts watching cfg.Path and cfg.Schema. Directories are
// watched rather than files so editors that save by rename are seen.
func NewWatcher(cfg *Config, logger zerolog.Logger) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		cfg:     cfg,
		logger:  logger,
		watcher: watcher,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
	if err := w.track(cfg); err != nil {
		watcher.Close()
		return nil, err
	}
	return w, nil
}

// track adds the config file and its schema to the watch set.
func (w *Watcher) track(cfg *Config) error {
	for _, path := range []string{cfg.Path, cfg.Schema} {
		w.files[path] = true
		dir := filepath.Dir(path)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watch directory: %w", err)
		}
		w.dirs[dir] = true
		w.logger.Debug().Str("dir", dir).Msg("watching directory")
	}
	return nil
}

// Run calls onChange with the reloaded config after each relevant change
// until ctx is done. A config that fails to load is logged and skipped; the
// previous one stays in effect. onChange runs on the calling goroutine.
func (w *Watcher) Run(ctx context.Context, onChange func(*Config)) error {
	defer w.watcher.Close()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			w.logger.Debug().
				Str("event", event.Op.String()).
				Str("file", event.Name).
				Msg("file changed")

			cfg, err := Load(w.cfg.Path)
			if err != nil {
				w.logger.Error().Err(err).Msg("config reload failed, keeping old config")
				cfg = w.cfg
			} else if err := w.track(cfg); err != nil {
				w.logger.Error().Err(err).Msg("watch new schema")
			}
			w.cfg = cfg
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error().Err(err).Msg("file watcher error")

		case <-ctx.Done():
			return nil
		}
	}
}

package config

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/textvault/textvault/internal/logger"
)

// Watcher reloads the configuration when the file changes and hands
// each valid new Config to the callback. Invalid or unreadable edits
// are logged and skipped; the previous configuration stays in effect.
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	done    chan struct{}
}

// Watch starts watching path. The callback runs on the watcher
// goroutine, so it must be cheap or hand off itself.
func Watch(path string, onChange func(Config)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	// Watch the directory: editors replace files rather than writing
	// in place, which would drop a watch on the file itself.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watching config directory: %w", err)
	}

	w := &Watcher{
		watcher: fw,
		path:    path,
		done:    make(chan struct{}),
	}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func(Config)) {
	defer close(w.done)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(w.path)
			if err != nil {
				logger.Warn("Config reload skipped: %v", err)
				continue
			}
			logger.Info("Config reloaded from %s", w.path)
			onChange(cfg)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("Config watcher error: %v", err)
		}
	}
}

// Close stops the watcher and waits for the goroutine to exit.
func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}

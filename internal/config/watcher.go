package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher reloads settings when the config file changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
	log     zerolog.Logger
}

// Watch observes path and invokes onChange with the reloaded settings after
// every write to the file. Editors that overwrite via rename trigger Create
// events, so both are handled. Reload errors are logged, not delivered.
func Watch(path string, onChange func(Settings), log zerolog.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory, not the file: the file may not exist yet, and
	// rename-based saves replace the watched inode.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		watcher: fw,
		done:    make(chan struct{}),
		log:     log,
	}
	go w.run(onChange)
	return w, nil
}

func (w *Watcher) run(onChange func(Settings)) {
	base := filepath.Base(w.path)
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			s, err := Load(w.path)
			if err != nil {
				w.log.Warn().Err(err).Str("path", w.path).Msg("config reload failed")
				continue
			}
			w.log.Debug().Str("path", w.path).Msg("config reloaded")
			onChange(s)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("config watcher error")
		case <-w.done:
			return
		}
	}
}

// Close stops watching. Safe to call once.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}

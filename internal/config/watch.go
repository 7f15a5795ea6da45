package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"vawter.tech/stopper"
)

// Watch calls fn with the re-read file configuration whenever the file at
// path is written or created. The parent directory is watched so atomic
// replacements (renameio, editors) are seen. Watching ends when
// sctx stops.
func Watch(sctx *stopper.Context, path string, fn func(*Config, error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return err
	}

	name := filepath.Clean(path)
	sctx.Go(func(sctx *stopper.Context) error {
		defer watcher.Close()
		for {
			select {
			case <-sctx.Stopping():
				return nil
			case ev, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if filepath.Clean(ev.Name) != name {
					continue
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				fn(ReadFile(path))
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				fn(nil, err)
			}
		}
	})
	return nil
}

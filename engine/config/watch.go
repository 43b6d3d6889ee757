package config

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/core"
)

// Watch reloads the config file whenever it is written and sends each valid
// result on the returned channel. Invalid edits are reported on the error
// channel and the previous settings stay in effect. Both channels are closed
// once ctx is done.
func Watch(ctx context.Context, path string) (<-chan *Config, <-chan error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	// editors replace files on save, so watch the directory and filter by name
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	configs := make(chan *Config)
	errs := make(chan error)
	target := filepath.Clean(path)

	go func() {
		defer close(errs)
		defer close(configs)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					core.LogWarn("config reload of %s failed: %s", path, err)
					select {
					case errs <- err:
					case <-ctx.Done():
						return
					}
					continue
				}
				core.LogInfo("config %s reloaded", path)
				select {
				case configs <- cfg:
				case <-ctx.Done():
					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return configs, errs, nil
}

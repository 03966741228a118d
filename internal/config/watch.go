package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	appLog "coursecal/internal/log"
)

// Watch starts a background goroutine that reloads the config file
// whenever it changes and hands the fresh config to onChange. A reload
// that fails to parse keeps the previous config in effect. Call the
// returned stop function to clean up.
func Watch(path string, onChange func(*Config)) (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", path, err)
	}

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(path)
				if err != nil {
					appLog.Error("config reload failed, keeping previous", err, "path", path)
					continue
				}
				appLog.Info("config reloaded", "path", path)
				onChange(cfg)
			case werr, ok := <-w.Errors:
				if !ok {
					return
				}
				appLog.Error("config watcher error", werr, "path", path)
			case <-done:
				return
			}
		}
	}()

	return func() { close(done) }, nil
}

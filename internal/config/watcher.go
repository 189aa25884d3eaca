package config

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	appLog "homecal/internal/log"
)

// Watcher reloads the config file whenever it changes on disk and hands the
// fresh Config to the onChange callback. The parent directory is watched
// rather than the file itself so that editors and atomic saves (temp file +
// rename, as done by Save) are picked up.
type Watcher struct {
	path     string
	onChange func(*Config)
	fs       *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts watching path. onChange is invoked from a background
// goroutine with the reloaded config; it must not block for long.
func Watch(path string, onChange func(*Config)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:     abs,
		onChange: onChange,
		fs:       fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	// Debounce rapid event bursts (editors often emit several writes).
	var pending *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(250*time.Millisecond, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case <-fire:
			w.reload()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			appLog.Error("config watch error", err, "path", w.path)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		appLog.Error("config reload failed; keeping previous config", err, "path", w.path)
		return
	}
	appLog.Info("config reloaded", "path", w.path, "sources", len(cfg.Sources))
	w.onChange(cfg)
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.fs.Close()
}

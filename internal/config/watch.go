package config

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-batch/internal/logger"
)

// Watcher reloads a config file whenever it changes on disk and delivers
// the new Config on Updates. The engine is single-threaded, so the main
// loop drains Updates between frames instead of receiving a callback.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan *Config
	done    chan struct{}
	once    sync.Once
	wg      sync.WaitGroup
}

// Watch starts watching path. The parent directory is watched so editors
// that save by rename are still seen.
func Watch(path string) (*Watcher, error) {
	if path == "" {
		return nil, errors.New("config watch: empty path")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		fs:      fsw,
		updates: make(chan *Config, 1),
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Updates delivers reloaded configs. Only the newest pending config is
// kept; an older undelivered one is dropped.
func (w *Watcher) Updates() <-chan *Config {
	return w.updates
}

// Close stops the watcher and closes Updates.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.updates)
	})
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	log := logger.Named("config")

	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
				continue
			}
			cfg, err := LoadFile(w.path)
			if err != nil {
				// Half-written files are common mid-save; the next event retries.
				log.Warn("config reload failed", zap.String("path", w.path), zap.Error(err))
				continue
			}
			log.Info("config reloaded", zap.String("path", w.path))
			w.deliver(cfg)

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Error("config watch error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) deliver(cfg *Config) {
	for {
		select {
		case w.updates <- cfg:
			return
		case <-w.done:
			return
		default:
		}
		// Drop the stale pending config and retry.
		select {
		case <-w.updates:
		default:
		}
	}
}

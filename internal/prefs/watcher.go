package prefs

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/piwi3910/fitsview/internal/model"
)

// Watcher reloads the config file whenever it is written and hands the
// result to a callback. The callback runs on the watcher goroutine.
// Writes made through Save are not reported back.
type Watcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	onChange func(model.AppConfig)
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool

	// saved holds the bytes of the last Save.
	saved []byte
}

// NewWatcher creates a watcher for the config file at path.
func NewWatcher(path string, onChange func(model.AppConfig), logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if path == "" {
		path = DefaultConfigPath()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  watcher,
		filePath: path,
		onChange: onChange,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching. The parent directory is watched rather than the
// file itself so editors that replace the file on save are still seen.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	go w.watch()
	w.logger.Debug("config watcher started", "path", w.filePath)
	return nil
}

func (w *Watcher) watch() {
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.reload()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Save writes config to the watched file and remembers the content so the
// resulting events do not trigger a reload.
func (w *Watcher) Save(config model.AppConfig) error {
	data, err := encodeAppConfig(w.filePath, config)
	if err != nil {
		return err
	}
	w.mu.Lock()
	w.saved = data
	w.mu.Unlock()
	return writeConfigFile(w.filePath, data)
}

func (w *Watcher) reload() {
	data, err := os.ReadFile(w.filePath)
	if err != nil {
		w.logger.Warn("failed to reload config", "path", w.filePath, "error", err)
		return
	}
	// WriteFile truncates before writing; the next event carries the content.
	if len(bytes.TrimSpace(data)) == 0 {
		return
	}
	w.mu.Lock()
	own := w.saved != nil && bytes.Equal(data, w.saved)
	w.mu.Unlock()
	if own {
		return
	}

	config, err := decodeAppConfig(w.filePath, data)
	if err != nil {
		w.logger.Warn("failed to reload config", "path", w.filePath, "error", err)
		return
	}
	w.logger.Debug("config reloaded", "path", w.filePath)
	if w.onChange != nil {
		w.onChange(config)
	}
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}

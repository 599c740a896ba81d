package director

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads scenes when their files change. Events are collected and
// flushed once per debounce tick so an editor's write-rename-chmod burst
// causes a single reload.
type Watcher struct {
	director *Director
	debounce time.Duration
	log      *zap.Logger
	fsw      *fsnotify.Watcher

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	// OnReload, when set, is called after each successful reload.
	OnReload func(*Scene)
}

// NewWatcher watches d.Dir.
func NewWatcher(d *Director, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(d.Dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		director: d,
		debounce: debounce,
		log:      log,
		fsw:      fsw,
		pending:  make(map[string]fsnotify.Op),
	}, nil
}

// Run processes events until ctx is cancelled, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	w.log.Info("scene watcher started", zap.String("dir", w.director.Dir), zap.Duration("debounce", w.debounce))
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !isSceneFile(event.Name) {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] |= event.Op
			w.pendingMu.Unlock()

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Error("watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	batch := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	for path, op := range batch {
		// Editors save through rename; only a file that is really gone
		// drops its page.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			page := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			w.director.Remove(page)
			w.log.Info("scene removed", zap.String("path", path), zap.String("op", op.String()))
			continue
		}
		sc, err := w.director.Load(path)
		if err != nil {
			w.log.Warn("scene reload failed, keeping previous version", zap.String("path", path), zap.Error(err))
			continue
		}
		if w.OnReload != nil {
			w.OnReload(sc)
		}
	}
}

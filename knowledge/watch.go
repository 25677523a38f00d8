package knowledge

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/trigtutor/tutor/common/logger"
)

const defaultDebounce = 250 * time.Millisecond

// ReloadFunc builds a fresh Base, typically by calling LoadFile.
type ReloadFunc func(ctx context.Context) (*Base, error)

// Watcher reloads the knowledge base when its file changes. A failed reload
// keeps the previous base.
type Watcher struct {
	path     string
	holder   *Holder
	reload   ReloadFunc
	debounce time.Duration
	watcher  *fsnotify.Watcher

	// OnReload, if set, is called after every successful swap.
	OnReload func(*Base)
}

func NewWatcher(path string, holder *Holder, reload ReloadFunc) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directory: editors and build-index replace the file by rename
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		holder:   holder,
		reload:   reload,
		debounce: defaultDebounce,
		watcher:  w,
	}, nil
}

// Run blocks until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnf("knowledge: watcher error: %v", err)
		case <-timer.C:
			w.apply(ctx)
		}
	}
}

func (w *Watcher) apply(ctx context.Context) {
	b, err := w.reload(ctx)
	if err != nil {
		logger.Errorf("knowledge: reload of %s failed, keeping previous base: %v", w.path, err)
		return
	}
	w.holder.Store(b)
	logger.Infof("knowledge: reloaded %d entries from %s", b.Len(), w.path)
	if w.OnReload != nil {
		w.OnReload(b)
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}

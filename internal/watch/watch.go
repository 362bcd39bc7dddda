// Package watch batches filesystem change notifications for the serve
// command's rebuild loop. Rapid bursts of writes (editor saves, git
// checkouts) collapse into a single rebuild trigger.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/agentic-research/sidetree/internal/ctxlog"
)

// Watcher watches the sidebar inputs and delivers debounced batches of
// changed paths on C.
type Watcher struct {
	C <-chan []string

	fw      *fsnotify.Watcher
	delay   time.Duration
	out     chan []string
	mu      sync.Mutex
	pending map[string]bool
	timer   *time.Timer
}

// New creates a watcher with the given debounce delay.
func New(delay time.Duration) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	out := make(chan []string, 8)
	return &Watcher{
		C:       out,
		fw:      fw,
		delay:   delay,
		out:     out,
		pending: make(map[string]bool),
	}, nil
}

// Add watches a single file or directory.
func (w *Watcher) Add(path string) error {
	return w.fw.Add(path)
}

// AddRecursive watches a directory tree.
func (w *Watcher) AddRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return w.fw.Add(path)
		}
		return nil
	})
}

// Run consumes fsnotify events until the context is canceled. Changes to
// the same path inside one debounce window are reported once.
func (w *Watcher) Run(ctx context.Context) {
	log := ctxlog.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.record(event.Name)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			log.Warn("watch error", "error", err)
		}
	}
}

// Close stops the watcher. Pending batches are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.fw.Close()
}

func (w *Watcher) record(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.delay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if len(w.pending) == 0 {
		return
	}
	batch := make([]string, 0, len(w.pending))
	for path := range w.pending {
		batch = append(batch, path)
	}
	w.pending = make(map[string]bool)

	select {
	case w.out <- batch:
	default:
	}
}

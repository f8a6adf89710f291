// Package watch follows an obsForge root for newly arriving cycles and
// hands each complete one to a processing callback.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/obsforge/obsvalidate/log"
	"github.com/obsforge/obsvalidate/types"
)

// cycleDirPattern matches dated cycle directories at the root level.
var cycleDirPattern = regexp.MustCompile(`^(gdas|gfs)\.(\d{8})$`)

// Handler processes one newly observed cycle.
type Handler func(ctx context.Context, id types.CycleIdentity)

// Watcher follows the root directory tree with fsnotify and reports each
// cycle hour directory once, debounced so a cycle is handed off only
// after its files stop arriving.
type Watcher struct {
	root     string
	settle   time.Duration
	logger   *log.Logger
	handler  Handler
	fsw      *fsnotify.Watcher
	mu       sync.Mutex
	closed   bool
	seen     map[types.CycleIdentity]bool
	pending  map[types.CycleIdentity]*time.Timer
	handlers sync.WaitGroup
}

// New creates a watcher over root. Each cycle is handed off settle after
// its last observed write.
func New(root string, settle time.Duration, handler Handler, logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("cannot create filesystem watcher: %w", err)
	}
	if err := fsw.Add(root); err != nil {
		_ = fsw.Close()
		return nil, fmt.Errorf("cannot watch %s: %w", root, err)
	}

	return &Watcher{
		root:    root,
		settle:  settle,
		logger:  logger,
		handler: handler,
		fsw:     fsw,
		seen:    make(map[types.CycleIdentity]bool),
		pending: make(map[types.CycleIdentity]*time.Timer),
	}, nil
}

// Run consumes filesystem events until the context is cancelled. It
// returns after all in-flight handlers have finished.
func (w *Watcher) Run(ctx context.Context) error {
	defer func() {
		_ = w.fsw.Close()
		w.stopPending()
		w.handlers.Wait()
	}()

	w.logger.Info("watching for cycles", map[string]any{"root": w.root})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watch error", map[string]any{"error": err.Error()})
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}

	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return
	}
	parts := splitPath(rel)
	if len(parts) == 0 || !cycleDirPattern.MatchString(parts[0]) {
		return
	}

	// New cycle directory at the root: watch into it so the hour
	// directories and their files generate events too.
	if len(parts) <= 2 && event.Has(fsnotify.Create) {
		if err := w.fsw.Add(event.Name); err != nil {
			w.logger.Warn("cannot extend watch", map[string]any{
				"path":  event.Name,
				"error": err.Error(),
			})
		}
	}

	id, ok := cycleFromPath(parts)
	if !ok {
		return
	}
	w.schedule(ctx, id)
}

// stopPending disarms every settle timer so no handler starts after Run
// has begun shutting down. A timer that already fired and is waiting on
// the mutex observes closed and returns without starting a handler.
func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.closed = true
	for id, timer := range w.pending {
		timer.Stop()
		delete(w.pending, id)
	}
}

// schedule arms (or re-arms) the settle timer for a cycle. The handler
// runs once per cycle, after the timer fires without further events.
func (w *Watcher) schedule(ctx context.Context, id types.CycleIdentity) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed || w.seen[id] {
		return
	}
	if timer, ok := w.pending[id]; ok {
		timer.Reset(w.settle)
		return
	}

	w.pending[id] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, id)
		if w.closed || w.seen[id] {
			w.mu.Unlock()
			return
		}
		w.seen[id] = true
		w.mu.Unlock()

		w.logger.WithCycle(id).Info("new cycle observed", nil)
		w.handlers.Add(1)
		go func() {
			defer w.handlers.Done()
			w.handler(ctx, id)
		}()
	})
}

// cycleFromPath decomposes a root-relative path into a cycle identity.
// It accepts "<family>.<date>/<hour>" and anything beneath.
func cycleFromPath(parts []string) (types.CycleIdentity, bool) {
	if len(parts) < 2 {
		return types.CycleIdentity{}, false
	}
	m := cycleDirPattern.FindStringSubmatch(parts[0])
	if m == nil {
		return types.CycleIdentity{}, false
	}
	hour, err := strconv.Atoi(parts[1])
	if err != nil || hour < 0 || hour > 23 {
		return types.CycleIdentity{}, false
	}
	return types.CycleIdentity{
		Family: types.Family(m[1]),
		Date:   m[2],
		Hour:   hour,
	}, true
}

func splitPath(rel string) []string {
	if rel == "" || rel == "." {
		return nil
	}
	return strings.Split(filepath.ToSlash(rel), "/")
}

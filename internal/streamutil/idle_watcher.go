package streamutil

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// IdleWatcher flags streams that stop making progress. A single sweep
// goroutine checks every watched stream on a fixed interval, so each stream
// costs one map entry instead of its own timer goroutines.
type IdleWatcher struct {
	mu      sync.RWMutex
	entries map[uint64]*idleEntry
	nextID  atomic.Uint64
	stop    chan struct{}
	done    sync.WaitGroup
}

type idleEntry struct {
	lastTouch atomic.Int64
	timeout   time.Duration
	onIdle    func()
	fired     atomic.Bool
}

// NewIdleWatcher starts a watcher sweeping at the given interval.
func NewIdleWatcher(interval time.Duration) *IdleWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	w := &IdleWatcher{
		entries: make(map[uint64]*idleEntry),
		stop:    make(chan struct{}),
	}
	w.done.Add(1)
	go w.sweep(interval)
	return w
}

// Handle identifies one watched stream.
type Handle struct {
	watcher *IdleWatcher
	entry   *idleEntry
	id      uint64
	stopCtx func() bool
	once    sync.Once
}

// Watch registers a stream. onIdle runs at most once, when no Touch arrives
// within timeout. The returned handle must be released with Done. A
// non-positive timeout disables idle detection but still ties cleanup to
// ctx.
func (w *IdleWatcher) Watch(ctx context.Context, timeout time.Duration, onIdle func()) *Handle {
	id := w.nextID.Add(1)
	e := &idleEntry{timeout: timeout, onIdle: onIdle}
	e.lastTouch.Store(time.Now().UnixNano())

	w.mu.Lock()
	w.entries[id] = e
	w.mu.Unlock()

	h := &Handle{watcher: w, entry: e, id: id}
	h.stopCtx = context.AfterFunc(ctx, h.Done)
	return h
}

// Touch records read activity on the stream.
func (h *Handle) Touch() {
	h.entry.lastTouch.Store(time.Now().UnixNano())
}

// Done removes the stream from the watcher. It is safe to call more than
// once.
func (h *Handle) Done() {
	h.once.Do(func() {
		h.watcher.mu.Lock()
		delete(h.watcher.entries, h.id)
		h.watcher.mu.Unlock()
		if h.stopCtx != nil {
			h.stopCtx()
		}
	})
}

func (w *IdleWatcher) sweep(interval time.Duration) {
	defer w.done.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-w.stop:
			return
		case now := <-ticker.C:
			w.check(now.UnixNano())
		}
	}
}

func (w *IdleWatcher) check(nowNano int64) {
	w.mu.RLock()
	stale := make([]*idleEntry, 0, len(w.entries))
	for _, e := range w.entries {
		if e.timeout <= 0 {
			continue
		}
		if time.Duration(nowNano-e.lastTouch.Load()) > e.timeout {
			stale = append(stale, e)
		}
	}
	w.mu.RUnlock()

	// Callbacks run outside the lock, once per entry.
	for _, e := range stale {
		if e.onIdle != nil && e.fired.CompareAndSwap(false, true) {
			e.onIdle()
		}
	}
}

// ActiveCount reports how many streams are currently watched.
func (w *IdleWatcher) ActiveCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.entries)
}

// Stop halts the sweep goroutine. Outstanding handles become inert.
func (w *IdleWatcher) Stop() {
	close(w.stop)
	w.done.Wait()
	w.mu.Lock()
	w.entries = make(map[uint64]*idleEntry)
	w.mu.Unlock()
}

var sharedWatcher = sync.OnceValue(func() *IdleWatcher {
	return NewIdleWatcher(5 * time.Second)
})

// SharedIdleWatcher returns the process-wide watcher used by sessions.
func SharedIdleWatcher() *IdleWatcher {
	return sharedWatcher()
}

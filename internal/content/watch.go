package content

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"tagpeek/internal/tags"
)

// registration is the watch bookkeeping for one target path. Multiple
// occurrences, possibly across documents, share one registration; the watch
// and the cache entry are released when the count reaches zero.
type registration struct {
	refs   int
	nextID int
	subs   map[int]func()
}

// Subscription is one subscriber's handle on a path watch. Release is
// idempotent.
type Subscription struct {
	resolver *Resolver
	path     string
	id       int
	once     sync.Once
}

// Path returns the normalized path this subscription watches.
func (s *Subscription) Path() string {
	return s.path
}

// Release drops this subscriber. When the last subscriber for a path is
// released, the underlying watch is disposed and the cache entry dropped.
func (s *Subscription) Release() {
	s.once.Do(func() {
		s.resolver.release(s.path, s.id)
	})
}

// Subscribe registers onChange to run whenever path is created, modified or
// deleted. The underlying watch is shared and reference-counted per path.
func (r *Resolver) Subscribe(path string, onChange func()) (*Subscription, error) {
	path = tags.Normalize(path)

	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.watches[path]
	if !ok {
		if err := r.watcher.add(filepath.Dir(path)); err != nil {
			return nil, fmt.Errorf("failed to watch %s: %w", path, err)
		}
		reg = &registration{subs: make(map[int]func())}
		r.watches[path] = reg
	}

	reg.refs++
	reg.nextID++
	id := reg.nextID
	reg.subs[id] = onChange

	return &Subscription{resolver: r, path: path, id: id}, nil
}

func (r *Resolver) release(path string, id int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg, ok := r.watches[path]
	if !ok {
		return
	}
	if _, ok := reg.subs[id]; !ok {
		return
	}
	delete(reg.subs, id)
	reg.refs--

	if reg.refs <= 0 {
		delete(r.watches, path)
		delete(r.cache, path)
		r.watcher.remove(filepath.Dir(path))
	}
}

// dirWatcher wraps fsnotify with per-directory reference counting. fsnotify
// watches directories; events are filtered back down to the subscribed file
// paths by the resolver.
type dirWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	dirRefs  map[string]int
	onChange func(path string)
	done     chan struct{}
	closed   bool
}

func newDirWatcher(onChange func(path string)) (*dirWatcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &dirWatcher{
		watcher:  fw,
		dirRefs:  make(map[string]int),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *dirWatcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.onChange(tags.Normalize(event.Name))
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; affected paths re-stat on
			// the next read anyway.
		case <-w.done:
			return
		}
	}
}

func (w *dirWatcher) add(dir string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("watcher closed")
	}
	if w.dirRefs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirRefs[dir]++
	return nil
}

func (w *dirWatcher) remove(dir string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || w.dirRefs[dir] == 0 {
		return
	}
	w.dirRefs[dir]--
	if w.dirRefs[dir] == 0 {
		delete(w.dirRefs, dir)
		w.watcher.Remove(dir)
	}
}

func (w *dirWatcher) close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true
	close(w.done)
	return w.watcher.Close()
}

// Package content resolves marker targets on disk. It owns the process-wide
// content cache and the reference-counted file watch table; both are keyed by
// normalized absolute path.
package content

import (
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"tagpeek/internal/tags"
)

type cacheEntry struct {
	modTime time.Time
	content string
}

// Resolver reads and caches target file content. Cached content is only
// trusted while the file's modification time is unchanged; staleness is
// rechecked on every read, never assumed.
type Resolver struct {
	mu      sync.Mutex
	cache   map[string]cacheEntry
	watches map[string]*registration
	watcher *dirWatcher
}

// NewResolver creates a resolver with an active file watcher. The caller
// must Close it to release the watch handles.
func NewResolver() (*Resolver, error) {
	r := &Resolver{
		cache:   make(map[string]cacheEntry),
		watches: make(map[string]*registration),
	}
	watcher, err := newDirWatcher(r.handleChange)
	if err != nil {
		return nil, err
	}
	r.watcher = watcher
	return r, nil
}

// Close releases the underlying watcher. Idempotent.
func (r *Resolver) Close() error {
	return r.watcher.close()
}

// Exists reports whether path refers to an existing regular file. Any stat
// failure counts as non-existence.
func (r *Resolver) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Read returns the file's content truncated to maxBytes, consulting the
// cache first. Every failure mode (missing file, permission denied, a file
// deleted mid-read) degrades to the empty string.
func (r *Resolver) Read(path string, maxBytes int) string {
	path = tags.Normalize(path)

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		r.invalidate(path)
		return ""
	}
	modTime := info.ModTime()

	r.mu.Lock()
	if entry, ok := r.cache[path]; ok && entry.modTime.Equal(modTime) {
		r.mu.Unlock()
		return entry.content
	}
	r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		r.invalidate(path)
		return ""
	}
	content := truncate(data, maxBytes)

	r.mu.Lock()
	r.cache[path] = cacheEntry{modTime: modTime, content: content}
	r.mu.Unlock()

	return content
}

// InvalidateAll drops every cache entry. Used when configuration changes
// alter how content is derived (maxBytes, joiner).
func (r *Resolver) InvalidateAll() {
	r.mu.Lock()
	r.cache = make(map[string]cacheEntry)
	r.mu.Unlock()
}

func (r *Resolver) invalidate(path string) {
	r.mu.Lock()
	delete(r.cache, path)
	r.mu.Unlock()
}

// handleChange is invoked by the watcher for create/modify/delete of a
// watched path. The cache entry is dropped and all subscribers notified.
func (r *Resolver) handleChange(path string) {
	r.mu.Lock()
	delete(r.cache, path)
	reg := r.watches[path]
	var fns []func()
	if reg != nil {
		fns = make([]func(), 0, len(reg.subs))
		for _, fn := range reg.subs {
			fns = append(fns, fn)
		}
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// truncate bounds content to max bytes, rounding down to a UTF-8 rune
// boundary so a multi-byte character is never split.
func truncate(data []byte, max int) string {
	if max <= 0 || len(data) <= max {
		return string(data)
	}
	data = data[:max]
	for len(data) > 0 && !utf8.RuneStart(data[len(data)-1]) {
		data = data[:len(data)-1]
	}
	if len(data) > 0 {
		if r, size := utf8.DecodeLastRune(data); r == utf8.RuneError && size <= 1 {
			data = data[:len(data)-1]
		}
	}
	return string(data)
}

// Package fstree is the read-only file tree shown beside every tab.
//
// One Index per session caches directory listings and watches them for changes; each tab borrows it through its own
// Tree, which only holds expand/collapse and selection state.
package fstree

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
)

// Entry is a file or directory in a listing.
type Entry struct {
	Name  string
	Path  string // absolute
	IsDir bool
}

// Index caches directory listings. It is not safe for concurrent use: the watcher only delivers events on
// Events(), and the owner applies them with Handle from the same goroutine that reads listings.
type Index struct {
	cache   map[string][]Entry
	watcher *fsnotify.Watcher
}

// NewIndex returns an empty index. If no watcher can be created the index still works, it only misses changes made
// by other programs until Refresh is called.
func NewIndex() (*Index, error) {
	ix := &Index{cache: map[string][]Entry{}}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return ix, errors.Wrap(err, "watch file tree")
	}
	ix.watcher = w
	return ix, nil
}

// Entries returns the listing of dir: directories first, then files, each sorted by name.
func (ix *Index) Entries(dir string) ([]Entry, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if entries, ok := ix.cache[abs]; ok {
		return entries, nil
	}

	des, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(des))
	for _, de := range des {
		isDir := de.IsDir()
		if de.Type()&os.ModeSymlink != 0 {
			if info, err := os.Stat(filepath.Join(abs, de.Name())); err == nil {
				isDir = info.IsDir()
			}
		}
		entries = append(entries, Entry{
			Name:  de.Name(),
			Path:  filepath.Join(abs, de.Name()),
			IsDir: isDir,
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return entries[i].Name < entries[j].Name
	})

	ix.cache[abs] = entries
	if ix.watcher != nil {
		// unwatchable directories are still listed
		_ = ix.watcher.Add(abs)
	}
	return entries, nil
}

// Refresh drops the cached listing of dir.
func (ix *Index) Refresh(dir string) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return
	}
	delete(ix.cache, abs)
}

// Events returns the watcher's event channel, nil without a watcher.
func (ix *Index) Events() <-chan fsnotify.Event {
	if ix.watcher == nil {
		return nil
	}
	return ix.watcher.Events
}

// Errors returns the watcher's error channel, nil without a watcher.
func (ix *Index) Errors() <-chan error {
	if ix.watcher == nil {
		return nil
	}
	return ix.watcher.Errors
}

// Handle applies a watcher event. It reports whether a cached listing was dropped.
func (ix *Index) Handle(ev fsnotify.Event) bool {
	if ev.Op == fsnotify.Chmod || ev.Op == fsnotify.Write {
		return false // listings hold names only
	}
	dir := filepath.Dir(ev.Name)
	_, listed := ix.cache[dir]
	delete(ix.cache, dir)
	if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
		if _, ok := ix.cache[ev.Name]; ok {
			delete(ix.cache, ev.Name)
			listed = true
		}
	}
	return listed
}

// Close stops watching.
func (ix *Index) Close() error {
	if ix.watcher == nil {
		return nil
	}
	return ix.watcher.Close()
}

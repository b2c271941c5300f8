package editor

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/prodhe/coder/fstree"
)

// Tab is one editing surface: a buffer it owns and the directory its file tree shows. The tree root is a path into
// the session's shared index, not an index of its own.
type Tab struct {
	buf      *Buffer
	treeRoot string
}

// Buffer returns the tab's document.
func (t *Tab) Buffer() *Buffer { return t.buf }

// Title returns the tab label.
func (t *Tab) Title() string { return t.buf.Title() }

// TreeRoot returns the directory shown in the tab's file tree.
func (t *Tab) TreeRoot() string { return t.treeRoot }

// Options configures a session.
type Options struct {
	AutoSaveInterval time.Duration
	TreeRoot         string // initial file tree directory, working directory if empty
	Run              RunConfig
	Logger           *log.Logger
}

// Session is the tab container: an ordered list of tabs with one active, the shared file index and the auto-save
// timer. It is not safe for concurrent use; every call is expected from the UI loop.
type Session struct {
	notifier
	tabs     []*Tab
	active   int
	ended    bool
	lastDir  string
	index    *fstree.Index
	autosave *AutoSaver
	finder   Finder
	runner   *Runner
	log      *log.Logger
}

// NewSession returns a session without tabs.
func NewSession(opts Options) *Session {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	root := opts.TreeRoot
	if root == "" {
		root = "."
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}

	ix, err := fstree.NewIndex()
	if err != nil {
		logger.Printf("file tree: %v", err)
	}

	return &Session{
		active:   -1,
		lastDir:  root,
		index:    ix,
		autosave: NewAutoSaver(opts.AutoSaveInterval),
		runner:   NewRunner(opts.Run, logger),
		log:      logger,
	}
}

// Close releases the file index and stops auto-save.
func (s *Session) Close() error {
	s.autosave.stop()
	return s.index.Close()
}

// Index returns the file index shared by all tabs.
func (s *Session) Index() *fstree.Index { return s.index }

// AutoSaver returns the session's auto-save timer.
func (s *Session) AutoSaver() *AutoSaver { return s.autosave }

// Logger returns the session logger.
func (s *Session) Logger() *log.Logger { return s.log }

// Len returns number of tabs.
func (s *Session) Len() int { return len(s.tabs) }

// Tabs returns the tabs in order.
func (s *Session) Tabs() []*Tab { return s.tabs }

// Ended reports whether the last tab was closed.
func (s *Session) Ended() bool { return s.ended }

// ActiveIndex returns the index of the active tab, -1 when there are none.
func (s *Session) ActiveIndex() int { return s.active }

// Active returns the active tab or nil.
func (s *Session) Active() *Tab {
	if s.active < 0 || s.active >= len(s.tabs) {
		return nil
	}
	return s.tabs[s.active]
}

// ActiveBuffer returns the buffer of the active tab.
func (s *Session) ActiveBuffer() (*Buffer, error) {
	tab := s.Active()
	if tab == nil {
		return nil, errors.WithStack(ErrNoTabs)
	}
	return tab.buf, nil
}

// NewTab appends an empty "New File" tab and activates it. The buffer starts dirty since it was never saved.
func (s *Session) NewTab() *Tab {
	buf := NewBuffer()
	buf.MarkModified()
	return s.add(buf)
}

// OpenInNewTab loads path into a new tab and activates it. If the file cannot be loaded no tab is added and the
// error (ErrNotFound, ErrEncoding or ErrIO) is returned.
func (s *Session) OpenInNewTab(path string) (*Tab, error) {
	buf := NewBuffer()
	if err := buf.Load(path); err != nil {
		return nil, err
	}
	s.lastDir = buf.WorkDir()
	s.log.Printf("file %s opened", path)
	return s.add(buf), nil
}

func (s *Session) add(buf *Buffer) *Tab {
	tab := &Tab{buf: buf, treeRoot: s.lastDir}
	s.tabs = append(s.tabs, tab)
	s.emit(Notice{Event: EventTabAdded, Tab: tab, Buffer: buf})
	s.SetActive(len(s.tabs) - 1)
	return tab
}

// FileSelected handles a selection in a file tree: regular files open in a new tab, anything else is ignored.
func (s *Session) FileSelected(path string) (*Tab, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fileError("open", path, err)
	}
	if !info.Mode().IsRegular() {
		return nil, nil
	}
	return s.OpenInNewTab(path)
}

// SetActive activates tab i. Out of range indexes are ignored.
func (s *Session) SetActive(i int) {
	if i < 0 || i >= len(s.tabs) {
		return
	}
	s.active = i
	s.finder.Reset()
	s.emit(Notice{Event: EventTabActivated, Tab: s.tabs[i], Buffer: s.tabs[i].buf})
}

// Next activates the tab to the right, wrapping around.
func (s *Session) Next() {
	if len(s.tabs) > 0 {
		s.SetActive((s.active + 1) % len(s.tabs))
	}
}

// Prev activates the tab to the left, wrapping around.
func (s *Session) Prev() {
	if len(s.tabs) > 0 {
		s.SetActive((s.active - 1 + len(s.tabs)) % len(s.tabs))
	}
}

// CloseTab removes tab i without asking to save it. The active tab stays the same if it was not the one closed;
// otherwise its neighbour to the left takes over, or the new first tab. Closing the last tab ends the session.
func (s *Session) CloseTab(i int) {
	if i < 0 || i >= len(s.tabs) {
		return
	}
	tab := s.tabs[i]
	s.tabs = append(s.tabs[:i], s.tabs[i+1:]...)
	s.emit(Notice{Event: EventTabClosed, Tab: tab, Buffer: tab.buf})

	if len(s.tabs) == 0 {
		s.active = -1
		s.ended = true
		s.autosave.stop()
		s.emit(Notice{Event: EventSessionEnded})
		return
	}

	switch {
	case i < s.active:
		s.active--
	case i == s.active:
		if s.active > 0 {
			s.active--
		}
		s.SetActive(s.active)
	}
}

// RenameActiveTab sets the label of the active tab.
func (s *Session) RenameActiveTab(title string) {
	tab := s.Active()
	if tab == nil {
		return
	}
	tab.buf.SetTitle(title)
	s.emit(Notice{Event: EventTabRenamed, Tab: tab, Buffer: tab.buf})
}

// SaveActive saves the active buffer. ErrNoPath means the buffer needs SaveActiveAs.
func (s *Session) SaveActive() error {
	buf, err := s.ActiveBuffer()
	if err != nil {
		return err
	}
	if buf.ChangedOnDisk() {
		s.log.Printf("%s was changed on disk, overwriting", buf.Path())
	}
	if err := buf.Save(); err != nil {
		s.log.Printf("save: %v", err)
		return err
	}
	s.log.Printf("file %s saved", buf.Path())
	return nil
}

// SaveActiveAs saves the active buffer under name, completing the extension from filter, renames the tab after the
// new file and moves the tree to its directory. It returns the path written.
func (s *Session) SaveActiveAs(name string, filter Filter) (string, error) {
	tab := s.Active()
	if tab == nil {
		return "", errors.WithStack(ErrNoTabs)
	}
	path, err := tab.buf.SaveAs(name, filter)
	if err != nil {
		s.log.Printf("save as: %v", err)
		return "", err
	}
	s.log.Printf("file saved as %s", path)
	s.RenameActiveTab(filepath.Base(path))
	s.lastDir = tab.buf.WorkDir()
	tab.treeRoot = s.lastDir
	return path, nil
}

// EnableAutoSave starts the auto-save timer. The active buffer must have a file.
func (s *Session) EnableAutoSave() error {
	buf, err := s.ActiveBuffer()
	if err != nil {
		return err
	}
	if buf.Path() == "" {
		return errors.Wrap(ErrNoPath, "save the file before enabling auto-save")
	}
	s.autosave.start()
	s.emit(Notice{Event: EventAutoSave, Buffer: buf})
	return nil
}

// DisableAutoSave stops the auto-save timer.
func (s *Session) DisableAutoSave() {
	s.autosave.stop()
	s.emit(Notice{Event: EventAutoSave})
}

// ToggleAutoSave flips the auto-save timer and reports whether it is now enabled.
func (s *Session) ToggleAutoSave() (bool, error) {
	if s.autosave.Enabled() {
		s.DisableAutoSave()
		return false, nil
	}
	if err := s.EnableAutoSave(); err != nil {
		return false, err
	}
	return true, nil
}

// AutoSaveTick saves the active buffer if it is dirty and has a file. Failures are logged and leave the buffer dirty.
func (s *Session) AutoSaveTick() {
	buf, err := s.ActiveBuffer()
	if err != nil {
		return
	}
	saved, err := buf.AutoSaveTick()
	switch {
	case err != nil:
		s.log.Printf("auto-save: %v", err)
	case saved:
		s.log.Printf("auto-save: file %s saved", buf.Path())
	}
}

// Find selects the next occurrence of query in the active buffer.
func (s *Session) Find(query string) (q0, q1 int, ok bool) {
	buf, err := s.ActiveBuffer()
	if err != nil {
		return 0, 0, false
	}
	q0, q1, ok = s.finder.Next(buf, query)
	if !ok {
		s.log.Printf("string %q not found", query)
	}
	return q0, q1, ok
}

// RunActive saves the active buffer and hands it to the run action. A buffer without a file yields ErrNoPath.
func (s *Session) RunActive() error {
	buf, err := s.ActiveBuffer()
	if err != nil {
		return err
	}
	if buf.Path() == "" {
		return errors.WithStack(ErrNoPath)
	}
	if buf.Dirty() {
		if err := s.SaveActive(); err != nil {
			return err
		}
	}
	if err := s.runner.Run(buf.Path(), buf.Title(), buf.String()); err != nil {
		s.log.Printf("run: %v", err)
		return err
	}
	return nil
}

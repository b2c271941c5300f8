package editor

import (
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/pkg/errors"
	"github.com/prodhe/coder/gapbuffer"
)

// TitleNewFile is the title of buffers that have never been saved.
const TitleNewFile = "New File"

// Buffer is a document buffer for editing. It uses an underlying gap buffer for storage and manages the text, the
// dot (selection), undo/redo and the relation to its file on disk.
//
// Although the underlying buffer is a pure byte slice, Buffer only works with runes and UTF-8.
type Buffer struct {
	notifier
	buf     *gapbuffer.Buffer
	file    *file
	title   string
	dirty   bool
	q0, q1  int     // dot/cursor
	runeBuf []byte  // temp buf to read rune at a time from gap buffer
	history History // undo/redo stack
}

// NewBuffer returns an empty buffer without a file.
func NewBuffer() *Buffer {
	return &Buffer{buf: &gapbuffer.Buffer{}, title: TitleNewFile}
}

// initBuffer initializes a zero Buffer.
func (b *Buffer) initBuffer() {
	if b.buf == nil {
		b.buf = &gapbuffer.Buffer{}
	}
	if b.title == "" {
		b.title = TitleNewFile
	}
}

// Load replaces the content with the file at path. The file must exist and hold UTF-8 text. On success the buffer is
// bound to path and clean; on failure the buffer is left untouched.
func (b *Buffer) Load(path string) error {
	b.initBuffer()

	content, err := os.ReadFile(path)
	if err != nil {
		return fileError("open", path, err)
	}
	if !utf8.Valid(content) {
		return &FileError{Op: "open", Path: path, Kind: ErrEncoding}
	}

	b.buf.Destroy()
	b.buf.Write(content)
	b.q0, b.q1 = 0, 0
	b.history = History{}

	b.file = &file{path: path}
	b.file.stamp(content)
	b.title = filepath.Base(path)
	b.dirty = false

	b.emit(Notice{Event: EventChanged, Buffer: b})
	b.emit(Notice{Event: EventLoaded, Buffer: b})
	return nil
}

// Save writes the content to the buffer's file. Without a file ErrNoPath is returned and SaveAs has to be used.
// A failed write leaves the buffer dirty.
func (b *Buffer) Save() error {
	b.initBuffer()

	if b.file == nil {
		return errors.WithStack(ErrNoPath)
	}
	content := b.buf.Bytes()
	if err := b.write(b.file.path, content); err != nil {
		return err
	}
	b.file.stamp(content)
	b.dirty = false
	b.emit(Notice{Event: EventSaved, Buffer: b})
	return nil
}

// SaveAs writes the content to name, appending the extension of filter if name has none, and binds the buffer to the
// resulting path. It returns the path written.
func (b *Buffer) SaveAs(name string, filter Filter) (string, error) {
	b.initBuffer()

	if name == "" {
		return "", errors.WithStack(ErrNoPath)
	}
	path := filter.WithExtension(name)
	content := b.buf.Bytes()
	if err := b.write(path, content); err != nil {
		return "", err
	}

	changed := b.file == nil || b.file.path != path
	b.file = &file{path: path}
	b.file.stamp(content)
	b.title = filepath.Base(path)
	b.dirty = false

	if changed {
		b.emit(Notice{Event: EventPathChanged, Buffer: b})
	}
	b.emit(Notice{Event: EventSaved, Buffer: b})
	return path, nil
}

func (b *Buffer) write(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0644); err != nil {
		err = &FileError{Op: "save", Path: path, Kind: ErrIO, Err: err}
		b.emit(Notice{Event: EventSaveFailed, Buffer: b, Err: err})
		return err
	}
	return nil
}

// MarkModified flags the buffer as changed since the last load or save.
func (b *Buffer) MarkModified() {
	b.dirty = true
}

// AutoSaveTick saves the buffer if it is dirty and has a file. It reports whether a save was attempted.
func (b *Buffer) AutoSaveTick() (bool, error) {
	if !b.dirty || b.file == nil {
		return false, nil
	}
	return true, b.Save()
}

// ChangedOnDisk reports whether the buffer's file was modified outside of the editor since it was last read or
// written.
func (b *Buffer) ChangedOnDisk() bool {
	return b.file != nil && b.file.changedOnDisk()
}

// Path returns the file path of the buffer, or an empty string if the buffer has no disk counterpart.
func (b *Buffer) Path() string {
	if b.file == nil {
		return ""
	}
	return b.file.path
}

// WorkDir returns the directory of the buffer's file, or an empty string.
func (b *Buffer) WorkDir() string {
	if b.file == nil {
		return ""
	}
	abs, err := filepath.Abs(b.file.path)
	if err != nil {
		return filepath.Dir(b.file.path)
	}
	return filepath.Dir(abs)
}

// Title returns the label used for the buffer's tab.
func (b *Buffer) Title() string {
	b.initBuffer()
	return b.title
}

// SetTitle changes the label used for the buffer's tab.
func (b *Buffer) SetTitle(title string) {
	b.title = title
}

// Dirty returns true if the buffer has changed since last load or save.
func (b *Buffer) Dirty() bool {
	return b.dirty
}

// Len returns the number of bytes in buffer.
func (b *Buffer) Len() int {
	b.initBuffer()
	return b.buf.Len()
}

// String returns the entire text buffer as a string.
func (b *Buffer) String() string {
	b.initBuffer()
	return string(b.buf.Bytes())
}

// Lines returns the number of lines.
func (b *Buffer) Lines() int {
	b.initBuffer()
	return b.buf.Lines()
}

// Line returns line n without its newline. Out of range lines are empty.
func (b *Buffer) Line(n int) string {
	b.initBuffer()
	p, _ := b.buf.Line(n)
	return string(p)
}

// LineStart returns the byte offset of line n, clamped to the buffer.
func (b *Buffer) LineStart(n int) int {
	b.initBuffer()
	if n <= 0 {
		return 0
	}
	if n >= b.buf.Lines() {
		n = b.buf.Lines() - 1
	}
	off, _ := b.buf.LineStart(n)
	return off
}

// LineAt returns the line number of the byte at offset.
func (b *Buffer) LineAt(offset int) int {
	b.initBuffer()
	return b.buf.LineAt(offset)
}

// Write implements io.Writer, with the side effect of storing written data into a history stack for undo/redo.
//
// If dot has content, it will be replaced by an initial deletion before inserting the bytes.
func (b *Buffer) Write(p []byte) (int, error) {
	b.initBuffer()

	if len(p) == 0 {
		return 0, nil
	}

	// handle replace
	if b.q0 != b.q1 {
		b.Delete()
	}

	c := Change{b.q0, HInsert, append([]byte(nil), p...)}
	n, err := b.commit(c)
	if err != nil {
		return n, err
	}
	b.history.Do(c)
	b.SetDot(b.q0+n, b.q0+n)
	return n, nil
}

// Delete removes current selection in dot. If dot is empty, it deletes the rune before it.
func (b *Buffer) Delete() (int, error) {
	b.initBuffer()

	if b.q0 == b.q1 {
		if b.q0 <= 0 {
			return 0, nil
		}
		_, size, err := b.ReadRuneAt(b.q0 - 1)
		if err != nil {
			return 0, err
		}
		b.q0 -= size
	}
	return b.deleteDot()
}

// DeleteForward removes current selection in dot, or the rune after it if dot is empty.
func (b *Buffer) DeleteForward() (int, error) {
	b.initBuffer()

	if b.q0 == b.q1 {
		if b.q1 >= b.buf.Len() {
			return 0, nil
		}
		_, size, err := b.ReadRuneAt(b.q1)
		if err != nil {
			return 0, err
		}
		b.q1 += size
	}
	return b.deleteDot()
}

func (b *Buffer) deleteDot() (int, error) {
	c := Change{b.q0, HDelete, []byte(b.ReadDot())}
	n, err := b.commit(c)
	if err != nil {
		return n, err
	}
	b.history.Do(c)
	b.SetDot(b.q0, b.q0)
	return n, nil
}

// ReadRuneAt returns the rune and its size at offset. If the given offset (in byte count) is not a valid rune, it
// will back up until it finds a valid starting point for a rune and return that one.
func (b *Buffer) ReadRuneAt(offset int) (r rune, size int, err error) {
	b.initBuffer()

	var c byte
	c, err = b.buf.ByteAt(offset)
	if err != nil {
		return 0, 0, err
	}
	for !utf8.RuneStart(c) {
		offset--
		c, err = b.buf.ByteAt(offset)
		if err != nil {
			return 0, 0, err
		}
	}

	if c < utf8.RuneSelf {
		return rune(c), 1, nil
	}

	if cap(b.runeBuf) < utf8.UTFMax {
		b.runeBuf = make([]byte, utf8.UTFMax)
	}
	n, err := b.buf.ReadAt(b.runeBuf[:utf8.UTFMax], offset)
	if err != nil && err != io.EOF {
		return 0, 0, err
	}
	r, size = utf8.DecodeRune(b.runeBuf[:n])
	return r, size, nil
}

// ReadDot returns content of current dot.
func (b *Buffer) ReadDot() string {
	b.initBuffer()

	if b.q0 == b.q1 {
		return ""
	}
	p := make([]byte, b.q1-b.q0)
	if _, err := b.buf.ReadAt(p, b.q0); err != nil {
		return ""
	}
	return string(p)
}

// Dot returns current offsets for dot.
func (b *Buffer) Dot() (int, int) {
	return b.q0, b.q1
}

// SetDot sets both ends of the dot into an absolute position. It will check the given offsets and adjust them
// accordingly, so they are not out of bounds or on an invalid rune start. It returns the final offsets.
func (b *Buffer) SetDot(q0, q1 int) (int, int) {
	b.initBuffer()

	if q0 > q1 {
		q0, q1 = q1, q0
	}
	b.q0, b.q1 = b.clamp(q0), b.clamp(q1)
	return b.q0, b.q1
}

func (b *Buffer) clamp(q int) int {
	if q < 0 {
		return 0
	}
	if q > b.buf.Len() {
		return b.buf.Len()
	}
	// set only to valid rune start
	for q > 0 {
		c, err := b.buf.ByteAt(q)
		if err != nil || utf8.RuneStart(c) {
			break
		}
		q--
	}
	return q
}

// Undo reverts the last change and selects the affected text.
func (b *Buffer) Undo() error {
	c, err := b.history.Undo()
	if err != nil {
		return errors.Wrap(err, "undo")
	}
	if _, err := b.commit(c); err != nil {
		return errors.Wrap(err, "undo")
	}

	if c.action == HDelete {
		b.SetDot(c.offset, c.offset)
	} else {
		b.SetDot(c.offset, c.offset+len(c.content))
	}
	return nil
}

// Redo applies the last undone change again.
func (b *Buffer) Redo() error {
	c, err := b.history.Redo()
	if err != nil {
		return errors.Wrap(err, "redo")
	}
	if _, err := b.commit(c); err != nil {
		return errors.Wrap(err, "redo")
	}

	if c.action == HDelete {
		b.SetDot(c.offset, c.offset)
	} else {
		b.SetDot(c.offset+len(c.content), c.offset+len(c.content))
	}
	return nil
}

// commit applies a change to the storage. Every commit marks the buffer modified and notifies subscribers.
func (b *Buffer) commit(c Change) (int, error) {
	b.initBuffer()

	var n int
	switch c.action {
	case HInsert:
		b.buf.Seek(c.offset) // sync gap buffer
		n, _ = b.buf.Write(c.content)
	case HDelete:
		n = len(c.content)
		b.buf.Seek(c.offset + n) // sync gap buffer
		for i := n; i > 0; i-- {
			b.buf.Delete() // gap buffer deletes one byte at a time
		}
	default:
		return 0, errors.New("invalid action in change")
	}

	b.MarkModified()
	b.emit(Notice{Event: EventChanged, Buffer: b})
	return n, nil
}

/* History */
type HistoryAction uint8

const (
	HInsert HistoryAction = iota
	HDelete
)

type Change struct {
	offset  int
	action  HistoryAction
	content []byte
}

type History struct {
	done   []Change
	recall []Change
}

func (h *History) Do(c Change) {
	h.done = append(h.done, c)
	h.recall = nil // clear old recall stack on new do
}

func (h *History) Undo() (Change, error) {
	if len(h.done) == 0 {
		return Change{}, errors.New("no history")
	}
	lastdone := h.done[len(h.done)-1]
	h.recall = append(h.recall, lastdone)
	h.done = h.done[:len(h.done)-1]

	// Reverse the done action so the returned change can be applied directly.
	switch lastdone.action {
	case HInsert:
		lastdone.action = HDelete
	case HDelete:
		lastdone.action = HInsert
	}

	return lastdone, nil
}

func (h *History) Redo() (Change, error) {
	if len(h.recall) == 0 {
		return Change{}, errors.New("no recall history")
	}
	lastrecall := h.recall[len(h.recall)-1]
	h.done = append(h.done, lastrecall)
	h.recall = h.recall[:len(h.recall)-1]
	return lastrecall, nil
}

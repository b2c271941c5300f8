package gapbuffer

import (
	"bytes"
	"errors"
	"io"
)

// ErrOutOfRange is returned when given position is out of range for the buffer.
var ErrOutOfRange = errors.New("index out of range")

const minGrow = 64

// Buffer is a byte gap buffer. Besides storage it keeps count of the newlines it holds, so line queries for the
// gutter and the text view do not need to rescan the whole content.
type Buffer struct {
	buf      []byte
	start    int // gap start, is considered empty
	end      int // gap end, holds next byte counting from before the gap
	newlines int
}

// Bytes returns a copy of the content without the gap.
func (b *Buffer) Bytes() []byte {
	p := make([]byte, 0, b.Len())
	p = append(p, b.buf[:b.start]...)
	return append(p, b.buf[b.end:]...)
}

// Destroy will erase the Buffer content while keeping the allocated memory.
func (b *Buffer) Destroy() {
	b.start = 0
	b.end = len(b.buf)
	b.newlines = 0
}

// ByteAt returns the byte at the given offset, ignoring and hiding the gap.
func (b *Buffer) ByteAt(offset int) (byte, error) {
	if offset < 0 {
		return 0, ErrOutOfRange
	}
	if offset >= b.start {
		offset += b.gapLen()
	}
	if offset >= len(b.buf) {
		return 0, io.EOF
	}
	return b.buf[offset], nil
}

// gapLen returns the length of the gap.
func (b *Buffer) gapLen() int {
	return b.end - b.start
}

// Len returns the length of actual data.
func (b *Buffer) Len() int {
	return len(b.buf) - b.gapLen()
}

// Cap returns the capacity of the Buffer, including the gap.
func (b *Buffer) Cap() int {
	return cap(b.buf)
}

// Pos returns the current start position of the gap. This is where next write will appear.
func (b *Buffer) Pos() int {
	return b.start
}

// Seek moves the gap to the given offset, clamped to the content.
func (b *Buffer) Seek(newpos int) {
	if newpos < 0 {
		newpos = 0
	}
	if newpos > b.Len() {
		newpos = b.Len()
	}

	switch {
	case newpos < b.start: // move backwards
		n := b.start - newpos
		copy(b.buf[b.end-n:b.end], b.buf[newpos:b.start])
		b.start -= n
		b.end -= n
	case newpos > b.start: // move forward
		n := newpos - b.start
		copy(b.buf[b.start:b.start+n], b.buf[b.end:b.end+n])
		b.start += n
		b.end += n
	}
}

// Delete will expand the gap by 1, deleting the byte before the gap. Returns the byte that was deleted.
func (b *Buffer) Delete() byte {
	if b.start <= 0 {
		return 0
	}
	b.start--
	c := b.buf[b.start]
	if c == '\n' {
		b.newlines--
	}
	return c
}

// grow makes room for at least n more bytes in the gap.
func (b *Buffer) grow(n int) {
	if b.gapLen() >= n {
		return
	}
	size := 2*len(b.buf) + n
	if size < minGrow {
		size = minGrow
	}
	nb := make([]byte, size)
	copy(nb, b.buf[:b.start])
	tail := len(b.buf) - b.end
	copy(nb[size-tail:], b.buf[b.end:])
	b.end = size - tail
	b.buf = nb
}

// Write writes p into the Buffer at current gap position. This is the only time any new memory allocation is done.
//
// It will never return any other error than nil.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	b.grow(len(p))
	copy(b.buf[b.start:], p)
	b.start += len(p)
	b.newlines += bytes.Count(p, []byte{'\n'})
	return len(p), nil
}

// ReadAt fills p with bytes starting at offset from the Buffer, ignoring the gap. Returns number of bytes and an error.
func (b *Buffer) ReadAt(p []byte, offset int) (n int, err error) {
	if offset < 0 {
		return 0, ErrOutOfRange
	}
	if offset >= b.Len() {
		return 0, io.EOF
	}

	for n = 0; n < len(p) && offset < b.Len(); n++ {
		c, err := b.ByteAt(offset)
		if err != nil {
			return n, err
		}
		p[n] = c
		offset++
	}

	return n, nil
}

// Lines returns the number of lines. An empty buffer has one (empty) line, and a trailing newline opens a new one.
func (b *Buffer) Lines() int {
	return b.newlines + 1
}

// LineStart returns the byte offset where line n (0-based) begins.
func (b *Buffer) LineStart(n int) (int, error) {
	if n < 0 || n >= b.Lines() {
		return 0, ErrOutOfRange
	}
	if n == 0 {
		return 0, nil
	}
	seen := 0
	for i := 0; i < b.Len(); i++ {
		c, _ := b.ByteAt(i)
		if c == '\n' {
			seen++
			if seen == n {
				return i + 1, nil
			}
		}
	}
	return b.Len(), nil
}

// LineAt returns the 0-based line number containing the byte at offset. Offsets past the end count as the last line.
func (b *Buffer) LineAt(offset int) int {
	if offset > b.Len() {
		offset = b.Len()
	}
	line := 0
	for i := 0; i < offset; i++ {
		c, _ := b.ByteAt(i)
		if c == '\n' {
			line++
		}
	}
	return line
}

// Line returns the content of line n without its terminating newline.
func (b *Buffer) Line(n int) ([]byte, error) {
	start, err := b.LineStart(n)
	if err != nil {
		return nil, err
	}
	var p []byte
	for i := start; i < b.Len(); i++ {
		c, _ := b.ByteAt(i)
		if c == '\n' {
			break
		}
		p = append(p, c)
	}
	return p, nil
}

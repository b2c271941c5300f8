package editor

import "strings"

// Finder searches a buffer forward from the end of its previous match.
type Finder struct {
	pos int
}

// Next selects the next occurrence of query in buf at or after the previous match. When nothing is found the search
// position goes back to the start of the buffer, so the following call wraps around.
func (f *Finder) Next(buf *Buffer, query string) (q0, q1 int, ok bool) {
	if query == "" {
		return 0, 0, false
	}
	text := buf.String()
	if f.pos > len(text) {
		f.pos = 0
	}
	i := strings.Index(text[f.pos:], query)
	if i < 0 {
		f.pos = 0
		return 0, 0, false
	}
	q0 = f.pos + i
	q1 = q0 + len(query)
	buf.SetDot(q0, q1)
	f.pos = q1
	return q0, q1, true
}

// Reset starts the next search at the beginning of the buffer.
func (f *Finder) Reset() {
	f.pos = 0
}

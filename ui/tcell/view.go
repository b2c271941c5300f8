package uitcell

import (
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	tcell "github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/prodhe/coder/editor"
)

const ClickThreshold = 500 // in milliseconds to count as double click

// View is a soft wrapping text area over a buffer. It scrolls by whole lines: top is the first line shown. The view
// is the viewport of a window's gutter, so every scroll is reported through onScroll in rows.
type View struct {
	x, y, w, h   int
	style        tcell.Style
	cursorStyle  tcell.Style
	hilightStyle tcell.Style
	text         *editor.Buffer
	top          int // first visible line
	tabstop      int
	focused      bool
	onScroll     func(dy int) // rows the content moved, positive is downwards
	mclicktime   time.Time    // last mouse click in time
	mclickpos    int          // byte offset accounting for runes
	mpressed     bool
}

func (v *View) Write(p []byte) (int, error) {
	n, err := v.text.Write(p)
	if err != nil {
		return 0, err
	}
	v.ScrollToCursor()
	return n, err
}

func (v *View) Resize(x, y, w, h int) {
	v.x, v.y, v.w, v.h = x, y, w, h
}

// BlockCount returns the number of lines.
func (v *View) BlockCount() int {
	return v.text.Lines()
}

// FirstVisibleBlock returns the line at the top of the view.
func (v *View) FirstVisibleBlock() int {
	v.clampTop()
	return v.top
}

// BlockHeight returns the number of rows line n takes when wrapped to the view width.
func (v *View) BlockHeight(n int) int {
	rows, _, _ := v.layout(v.text.Line(n), nil)
	return rows
}

func (v *View) clampTop() {
	if v.top >= v.text.Lines() {
		v.top = v.text.Lines() - 1
	}
	if v.top < 0 {
		v.top = 0
	}
}

// cellWidth returns the cells r takes when it starts at column col.
func (v *View) cellWidth(r rune, col int) int {
	if r == '\t' {
		tabstop := v.tabstop
		if tabstop < 1 {
			tabstop = 1
		}
		return tabstop - col%tabstop
	}
	rw := RuneWidth(r)
	if rw == 0 {
		rw = 1
	}
	return rw
}

// layout wraps a single line (without its newline) to the view width. fn, if not nil, is called for every rune with
// its byte offset in the line, its row and column inside the line and its width in cells. It returns the number of
// rows used and the row and column just past the last rune, where a cursor at the end of the line goes.
func (v *View) layout(line string, fn func(off, row, col, cw int, r rune)) (rows, erow, ecol int) {
	row, col := 0, 0
	for off, r := range line {
		cw := v.cellWidth(r, col)
		if col > 0 && col+cw > v.w {
			row++
			col = 0
			cw = v.cellWidth(r, col)
		}
		if fn != nil {
			fn(off, row, col, cw, r)
		}
		col += cw
	}
	if v.w > 0 && col >= v.w {
		row++
		col = 0
	}
	return row + 1, row, col
}

// locate returns the row and column inside line of the byte offset off.
func (v *View) locate(line string, off int) (row, col int) {
	found := false
	_, erow, ecol := v.layout(line, func(o, r, c, _ int, _ rune) {
		if !found && o >= off {
			row, col, found = r, c, true
		}
	})
	if !found {
		return erow, ecol
	}
	return row, col
}

// cursorRow returns the row of the start of dot counted from the top of the view. Lines above the view give a
// negative row.
func (v *View) cursorRow() int {
	q0, _ := v.text.Dot()
	return v.rowOf(q0)
}

func (v *View) rowOf(offset int) int {
	v.clampTop()
	line := v.text.LineAt(offset)
	row := 0
	if line < v.top {
		for l := line; l < v.top; l++ {
			row -= v.BlockHeight(l)
		}
	} else {
		for l := v.top; l < line; l++ {
			row += v.BlockHeight(l)
		}
	}
	r, _ := v.locate(v.text.Line(line), offset-v.text.LineStart(line))
	return row + r
}

// Scroll moves the visible part of the buffer n lines. Negative means upwards.
func (v *View) Scroll(n int) {
	v.clampTop()
	top := v.top + n
	if top > v.text.Lines()-1 {
		top = v.text.Lines() - 1
	}
	if top < 0 {
		top = 0
	}
	if top == v.top {
		return
	}

	dy := 0
	if top > v.top {
		for l := v.top; l < top; l++ {
			dy -= v.BlockHeight(l)
		}
	} else {
		for l := top; l < v.top; l++ {
			dy += v.BlockHeight(l)
		}
	}
	v.top = top
	if v.onScroll != nil {
		v.onScroll(dy)
	}
}

// ScrollToCursor scrolls the least number of lines needed to show the start of dot.
func (v *View) ScrollToCursor() {
	q0, _ := v.text.Dot()
	line := v.text.LineAt(q0)
	v.clampTop()
	if line < v.top {
		v.Scroll(line - v.top)
		return
	}
	for v.top < line && v.cursorRow() >= v.h {
		v.Scroll(1)
	}
}

// XYToOffset translates screen coordinates to the byte offset under them, accounting for rune length, width, soft
// wraps and tabstops.
func (v *View) XYToOffset(x, y int) int {
	v.clampTop()
	cx, cy := x-v.x, y-v.y
	if cy < 0 {
		return v.text.LineStart(v.top)
	}

	line := v.top
	for ; line < v.text.Lines(); line++ {
		h := v.BlockHeight(line)
		if cy < h {
			break
		}
		cy -= h
	}
	if line >= v.text.Lines() {
		return v.text.Len()
	}

	s := v.text.Line(line)
	pos := -1
	_, erow, _ := v.layout(s, func(off, row, col, cw int, r rune) {
		if row != cy || col > cx {
			return
		}
		pos = off
		if cx >= col+cw {
			pos = off + utf8.RuneLen(r)
		}
	})
	switch {
	case cy > erow:
		pos = len(s)
	case pos < 0:
		pos = 0
	}
	return v.text.LineStart(line) + pos
}

func (v *View) Draw() {
	for y := v.y; y < v.y+v.h; y++ {
		for x := v.x; x < v.x+v.w; x++ {
			screen.SetContent(x, y, ' ', nil, v.style)
		}
	}

	v.clampTop()
	q0, q1 := v.text.Dot()
	cx, cy := -1, -1

	y := v.y
	for line := v.top; line < v.text.Lines() && y < v.y+v.h; line++ {
		start := v.text.LineStart(line)
		s := v.text.Line(line)

		rows, erow, ecol := v.layout(s, func(off, row, col, cw int, r rune) {
			pos := start + off
			if pos == q0 {
				cx, cy = v.x+col, y+row
			}
			sy := y + row
			if sy >= v.y+v.h {
				return
			}

			style := v.style
			if pos >= q0 && pos < q1 {
				style = v.hilightStyle
			}

			x := v.x + col
			switch {
			case r == '\t': // show tab until next tabstop
				for i := 0; i < cw; i++ {
					screen.SetContent(x+i, sy, ' ', nil, style)
				}
			case RuneWidth(r) == 0: // control characters
				screen.SetContent(x, sy, RuneWidthZero, nil, unprintableStyle)
			default:
				screen.SetContent(x, sy, r, nil, style)
			}
		})

		end := start + len(s)
		if end == q0 {
			cx, cy = v.x+ecol, y+erow
		}
		// selected new line
		if end >= q0 && end < q1 && y+erow < v.y+v.h {
			screen.SetContent(v.x+ecol, y+erow, ' ', nil, v.hilightStyle)
		}
		y += rows
	}

	if v.focused && q0 == q1 && cy >= v.y && cy < v.y+v.h {
		screen.SetContent(cx, cy, ' ', nil, v.cursorStyle)
		if r, _, err := v.text.ReadRuneAt(q0); err == nil && r != '\n' && r != '\t' && RuneWidth(r) > 0 {
			screen.SetContent(cx, cy, r, nil, v.cursorStyle)
		}
		screen.ShowCursor(cx, cy)
	}
}

// moveLine moves dot n lines, keeping the rune column where the line is long enough.
func (v *View) moveLine(n int) {
	q0, _ := v.text.Dot()
	line := v.text.LineAt(q0)
	cur := v.text.Line(line)
	off := q0 - v.text.LineStart(line)
	if off > len(cur) {
		off = len(cur)
	}
	col := utf8.RuneCountInString(cur[:off])

	target := line + n
	if target < 0 {
		target = 0
	}
	if target > v.text.Lines()-1 {
		target = v.text.Lines() - 1
	}
	s := v.text.Line(target)
	pos := len(s)
	for i := range s {
		if col == 0 {
			pos = i
			break
		}
		col--
	}
	q := v.text.LineStart(target) + pos
	v.text.SetDot(q, q)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// selectWord sets dot to the word around offset.
func (v *View) selectWord(offset int) {
	q0, q1 := offset, offset
	for q0 > 0 {
		r, size, err := v.text.ReadRuneAt(q0 - 1)
		if err != nil || !isWordRune(r) {
			break
		}
		q0 -= size
	}
	for q1 < v.text.Len() {
		r, size, err := v.text.ReadRuneAt(q1)
		if err != nil || !isWordRune(r) {
			break
		}
		q1 += size
	}
	v.text.SetDot(q0, q1)
}

func (v *View) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		mx, my := ev.Position()

		switch btn := ev.Buttons(); btn {
		case tcell.ButtonNone: // on button release
			if v.mpressed {
				v.mpressed = false
			}
		case tcell.ButtonPrimary:
			pos := v.XYToOffset(mx, my)
			if v.mpressed { // select text via click-n-drag
				v.text.SetDot(v.mclickpos, pos)
				return
			}

			v.mpressed = true
			v.mclickpos = pos

			elapsed := ev.When().Sub(v.mclicktime) / time.Millisecond
			if elapsed < ClickThreshold {
				// double click
				v.selectWord(pos)
			} else {
				// single click
				v.text.SetDot(pos, pos)
			}
			v.mclicktime = ev.When()
		case tcell.WheelUp: // scrollup
			v.Scroll(-1)
		case tcell.WheelDown: // scrolldown
			v.Scroll(1)
		}
	case *tcell.EventKey:
		q0, q1 := v.text.Dot()

		switch ev.Key() {
		case tcell.KeyEnter: // use unix style 0x0A (\n) for new lines
			v.Write([]byte{'\n'})
		case tcell.KeyTab:
			v.Write([]byte{'\t'})
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			v.text.Delete()
		case tcell.KeyDelete:
			v.text.DeleteForward()
		case tcell.KeyRight:
			if q0 == q1 {
				_, size, err := v.text.ReadRuneAt(q1)
				if err == nil {
					q1 += size
				}
			}
			v.text.SetDot(q1, q1)
		case tcell.KeyLeft:
			if q0 == q1 && q0 > 0 {
				_, size, _ := v.text.ReadRuneAt(q0 - 1)
				q0 -= size
			}
			v.text.SetDot(q0, q0)
		case tcell.KeyDown:
			v.moveLine(1)
		case tcell.KeyUp:
			v.moveLine(-1)
		case tcell.KeyPgDn:
			v.Scroll(v.h - 1)
			v.moveLine(v.h - 1)
		case tcell.KeyPgUp:
			v.Scroll(-(v.h - 1))
			v.moveLine(-(v.h - 1))
		case tcell.KeyHome: // line start
			q := v.text.LineStart(v.text.LineAt(q0))
			v.text.SetDot(q, q)
		case tcell.KeyEnd: // line end
			line := v.text.LineAt(q0)
			q := v.text.LineStart(line) + len(v.text.Line(line))
			v.text.SetDot(q, q)
		case tcell.KeyCtrlA: // select all
			v.text.SetDot(0, v.text.Len())
		case tcell.KeyCtrlZ:
			v.text.Undo()
		case tcell.KeyCtrlY:
			v.text.Redo()
		case tcell.KeyCtrlC: // copy to clipboard
			str := v.text.ReadDot()
			if str == "" {
				return
			}
			if err := clipboard.WriteAll(str); err != nil {
				printMsg("%s", err)
			}
			return
		case tcell.KeyCtrlX: // cut to clipboard
			str := v.text.ReadDot()
			if str == "" {
				return
			}
			if err := clipboard.WriteAll(str); err != nil {
				printMsg("%s", err)
				return
			}
			v.text.Delete()
		case tcell.KeyCtrlV: // paste from clipboard
			s, err := clipboard.ReadAll()
			if err != nil {
				printMsg("%s", err)
				return
			}
			v.Write([]byte(s))
		case tcell.KeyRune:
			v.Write([]byte(string(ev.Rune())))
		default:
			return
		}
		v.ScrollToCursor()
	}
}

func RuneWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

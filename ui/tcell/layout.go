package uitcell

import (
	"fmt"
	"unicode/utf8"

	tcell "github.com/gdamore/tcell/v2"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/prodhe/coder/editor"
)

const (
	RuneVerticalLine = '\u2502' // \u007c = |, \u23b8, \u2502
)

// Workspace is the whole screen: the tab bar on the first row, the window of the active tab and the status line on
// the last row. Prompts and alerts take over the status line and the middle of the screen.
type Workspace struct {
	x, y, w, h int
	windows    []*Window // one per tab, in tab order
	tabpos     []int     // right edge of every tab label in the tab bar
	msg        string
	prompt     *Prompt
	alert      *Alert
}

// AddWindow adds a window for a new tab and sizes it.
func (wrk *Workspace) AddWindow(win *Window) {
	wrk.windows = append(wrk.windows, win)
	win.Resize(wrk.x, wrk.y+1, wrk.w, wrk.h-2)
}

// CloseWindow removes and closes the window of tab.
func (wrk *Workspace) CloseWindow(tab *editor.Tab) {
	var j int
	for _, win := range wrk.windows {
		if win.tab == tab {
			win.Close()
			if CurWin == win {
				CurWin = nil
			}
			continue
		}
		wrk.windows[j] = win
		j++
	}
	wrk.windows = wrk.windows[:j]
}

// Window returns the window of tab or nil.
func (wrk *Workspace) Window(tab *editor.Tab) *Window {
	for _, win := range wrk.windows {
		if win.tab == tab {
			return win
		}
	}
	return nil
}

func (wrk *Workspace) Resize(x, y, w, h int) {
	wrk.x, wrk.y, wrk.w, wrk.h = x, y, w, h
	for _, win := range wrk.windows {
		win.Resize(x, y+1, w, h-2)
	}
}

// TabAt returns the index of the tab label at column x in the tab bar, or -1.
func (wrk *Workspace) TabAt(x int) int {
	left := wrk.x
	for i, right := range wrk.tabpos {
		if x >= left && x < right {
			return i
		}
		left = right
	}
	return -1
}

func (wrk *Workspace) Draw() {
	screen.HideCursor()

	wrk.drawTabs()
	if CurWin != nil {
		CurWin.Draw()
	} else {
		for y := wrk.y + 1; y < wrk.y+wrk.h-1; y++ {
			drawString(wrk.x, y, wrk.w, "", bodyStyle)
		}
	}
	wrk.drawStatus()

	if wrk.alert != nil {
		wrk.alert.Draw(wrk.x, wrk.y, wrk.w, wrk.h)
	}
}

func (wrk *Workspace) drawTabs() {
	wrk.tabpos = wrk.tabpos[:0]
	x := wrk.x
	for i, tab := range session.Tabs() {
		flag := ' '
		if tab.Buffer().Dirty() {
			flag = '\''
		}
		label := fmt.Sprintf("%c%s ", flag, tab.Title())

		style := tabStyle
		if i == session.ActiveIndex() {
			style = tabActiveStyle
		}
		n := runewidth.StringWidth(label)
		if x+n > wrk.x+wrk.w {
			n = wrk.x + wrk.w - x
		}
		drawString(x, wrk.y, n, label, style)
		x += n
		wrk.tabpos = append(wrk.tabpos, x)
	}
	drawString(x, wrk.y, wrk.x+wrk.w-x, "", tabStyle)
}

func (wrk *Workspace) drawStatus() {
	y := wrk.y + wrk.h - 1

	if p := wrk.prompt; p != nil {
		x := drawString(wrk.x, y, wrk.w, p.label, statusHilightStyle)
		right := ""
		if p.filters != nil {
			right = " " + p.filters[p.filter].String() + " "
		}
		rw := runewidth.StringWidth(right)
		p.view.Resize(x, y, wrk.x+wrk.w-x-rw, 1)
		p.view.Draw()
		drawString(wrk.x+wrk.w-rw, y, rw, right, statusHilightStyle)
		return
	}

	left := wrk.msg
	if left == "" && CurWin != nil {
		left = CurWin.tab.Buffer().Path()
		if left == "" {
			left = CurWin.Title()
		}
	}
	right := ""
	if CurWin != nil {
		line, col := position(CurWin.tab.Buffer())
		right = fmt.Sprintf(" Ln %d, Col %d ", line, col)
		if session.AutoSaver().Enabled() {
			right = " auto-save" + right
		}
	}
	rw := runewidth.StringWidth(right)
	drawString(wrk.x, y, wrk.w-rw, " "+left, statusStyle)
	drawString(wrk.x+wrk.w-rw, y, rw, right, statusStyle)
}

// position returns the 1-based line and column of dot.
func position(buf *editor.Buffer) (int, int) {
	q0, _ := buf.Dot()
	line := buf.LineAt(q0)
	s := buf.Line(line)
	off := q0 - buf.LineStart(line)
	if off > len(s) {
		off = len(s)
	}
	return line + 1, utf8.RuneCountInString(s[:off]) + 1
}

// drawString draws s from x, clipped to w cells, and fills the rest of the w cells with spaces. It returns the
// column after the last drawn rune.
func drawString(x, y, w int, s string, style tcell.Style) int {
	end := x + w
	for _, r := range s {
		rw := RuneWidth(r)
		if rw == 0 {
			rw = 1
			r = RuneWidthZero
		}
		if x+rw > end {
			break
		}
		screen.SetContent(x, y, r, nil, style)
		for i := 1; i < rw; i++ {
			screen.SetContent(x+i, y, ' ', nil, style)
		}
		x += rw
	}
	next := x
	for ; x < end; x++ {
		screen.SetContent(x, y, ' ', nil, style)
	}
	return next
}

// Alert is a modal box the user dismisses with any key or click.
type Alert struct {
	title string
	lines []string
}

func (a *Alert) Draw(x, y, w, h int) {
	bw := runewidth.StringWidth(a.title) + 4
	for _, l := range a.lines {
		if lw := runewidth.StringWidth(l) + 4; lw > bw {
			bw = lw
		}
	}
	if bw < 24 {
		bw = 24
	}
	if bw > w {
		bw = w
	}
	bh := len(a.lines) + 4
	bx, by := x+(w-bw)/2, y+(h-bh)/2

	for i := 0; i < bh; i++ {
		drawString(bx, by+i, bw, "", alertStyle)
	}
	for i := 1; i < bw-1; i++ {
		screen.SetContent(bx+i, by, tcell.RuneHLine, nil, alertStyle)
		screen.SetContent(bx+i, by+bh-1, tcell.RuneHLine, nil, alertStyle)
	}
	for i := 1; i < bh-1; i++ {
		screen.SetContent(bx, by+i, tcell.RuneVLine, nil, alertStyle)
		screen.SetContent(bx+bw-1, by+i, tcell.RuneVLine, nil, alertStyle)
	}
	screen.SetContent(bx, by, tcell.RuneULCorner, nil, alertStyle)
	screen.SetContent(bx+bw-1, by, tcell.RuneURCorner, nil, alertStyle)
	screen.SetContent(bx, by+bh-1, tcell.RuneLLCorner, nil, alertStyle)
	screen.SetContent(bx+bw-1, by+bh-1, tcell.RuneLRCorner, nil, alertStyle)

	drawString(bx+2, by, runewidth.StringWidth(a.title), a.title, alertStyle.Bold(true))
	for i, l := range a.lines {
		drawString(bx+2, by+1+i, bw-4, l, alertStyle)
	}
	ok := "[ OK ]"
	drawString(bx+(bw-len(ok))/2, by+bh-2, len(ok), ok, alertStyle.Reverse(true))
}

// Prompt reads one line of input on the status line. With filters set, Tab cycles through them and the chosen one
// is passed along with the input.
type Prompt struct {
	label   string
	view    *View
	filters []editor.Filter
	filter  int
	keep    bool // stay open after Enter
	done    func(input string, filter editor.Filter)
}

func newPrompt(label, input string, done func(string, editor.Filter)) *Prompt {
	p := &Prompt{
		label: label,
		view: &View{
			text:         editor.NewBuffer(),
			style:        statusStyle,
			cursorStyle:  statusHilightStyle,
			hilightStyle: statusHilightStyle,
			tabstop:      conf.Editor.Tabstop,
			focused:      true,
			h:            1,
		},
		done: done,
	}
	p.view.text.Write([]byte(input))
	return p
}

func (p *Prompt) HandleEvent(ev tcell.Event) {
	if ev, ok := ev.(*tcell.EventKey); ok {
		switch ev.Key() {
		case tcell.KeyEscape:
			workspace.prompt = nil
			return
		case tcell.KeyEnter:
			if !p.keep {
				workspace.prompt = nil
			}
			filter := editor.AllFiles
			if p.filters != nil {
				filter = p.filters[p.filter]
			}
			p.done(p.view.text.String(), filter)
			return
		case tcell.KeyTab:
			if p.filters != nil {
				p.filter = (p.filter + 1) % len(p.filters)
			}
			return
		}
	}
	p.view.HandleEvent(ev)
}

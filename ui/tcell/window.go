package uitcell

import (
	tcell "github.com/gdamore/tcell/v2"
	"github.com/prodhe/coder/editor"
	"github.com/prodhe/coder/fstree"
	"github.com/prodhe/coder/gutter"
)

// Window is the editing surface of one tab: the file tree, the line number gutter and the body. It is created when
// the tab is added and closed with it, so the gutter lives exactly as long as its tab.
type Window struct {
	x, y, w, h  int
	tab         *editor.Tab
	body        *View
	gutter      *gutter.Gutter
	tree        *TreeView
	treeFocused bool
	qcnt        int      // quit count
	cancel      []func() // buffer subscriptions
}

// NewWindow returns a window over the given tab and subscribes it to the changes of the tab's buffer.
func NewWindow(tab *editor.Tab) *Window {
	win := &Window{
		tab: tab,
		body: &View{
			text:         tab.Buffer(),
			style:        bodyStyle,
			cursorStyle:  bodyCursorStyle,
			hilightStyle: bodyHilightStyle,
			tabstop:      conf.Editor.Tabstop,
			focused:      true,
		},
		tree: &TreeView{
			tree: fstree.NewTree(session.Index(), tab.TreeRoot()),
		},
	}
	win.gutter = gutter.New(win.body, conf.Editor.GutterPadding)
	win.body.onScroll = func(dy int) {
		win.gutter.Update(gutter.Rect{W: win.gutter.Width(), H: win.gutter.Height()}, dy)
	}

	buf := tab.Buffer()
	win.cancel = append(win.cancel,
		buf.Subscribe(editor.EventChanged, win.changed),
		buf.Subscribe(editor.EventLoaded, func(editor.Notice) {
			win.body.top = 0
			win.relayout()
		}),
		buf.Subscribe(editor.EventSaveFailed, func(n editor.Notice) {
			printMsg("%s: save failed: %v", n.Buffer.Title(), n.Err)
		}),
	)

	return win
}

// changed marks every gutter row as stale, and lays the window out again when the number of digits changed. Undo and
// redo apply changes away from the cursor, and a change in wrapping moves the labels above it as well.
func (win *Window) changed(editor.Notice) {
	r := gutter.Rect{W: win.gutter.Width(), H: win.gutter.Height()}
	if win.gutter.Update(r, 0) {
		win.relayout()
	}
}

func (win *Window) relayout() {
	win.Resize(win.x, win.y, win.w, win.h)
}

// Resize will set new values for position and width height. Meant to be used on a resize event for proper recalculation during the Draw().
func (win *Window) Resize(x, y, w, h int) {
	win.x, win.y, win.w, win.h = x, y, w, h

	treew := conf.Editor.TreeWidth
	if w < treew*2 {
		treew = 0
	}
	win.tree.Resize(x, y, treew, h)
	if treew > 0 {
		treew++ // vertical line
	}

	gw := win.gutter.Width()
	win.body.Resize(x+treew+gw, y, w-treew-gw, h)
	win.gutter.Resize(h)
}

// Dir returns the directory shown in the file tree.
func (win *Window) Dir() string {
	return win.tab.TreeRoot()
}

func (win *Window) Title() string {
	return win.tab.Title()
}

// SetTreeFocus moves keyboard focus between the file tree and the body.
func (win *Window) SetTreeFocus(focus bool) {
	if win.tree.w == 0 {
		focus = false
	}
	win.treeFocused = focus
	win.tree.focused = focus
	win.body.focused = !focus
}

func (win *Window) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		mx, _ := ev.Position()
		if ev.Buttons() != tcell.ButtonNone {
			win.SetTreeFocus(mx < win.tree.x+win.tree.w)
		}
	}

	// Pass along the event down to current view.
	if win.treeFocused {
		win.tree.HandleEvent(ev)
	} else {
		win.body.HandleEvent(ev)
	}
}

func (win *Window) Draw() {
	win.tree.tree.SetRoot(win.Dir())
	win.tree.Draw()
	if win.tree.w > 0 {
		for y := win.y; y < win.y+win.h; y++ {
			screen.SetContent(win.tree.x+win.tree.w, y, RuneVerticalLine, nil, vertlineStyle)
		}
	}

	gx := win.body.x - win.gutter.Width()
	win.gutter.Paint(gutter.Rect{W: win.gutter.Width(), H: win.h}, func(y int, label string) {
		drawString(gx, win.y+y, win.gutter.Width(), label, gutterStyle)
	})

	win.body.Draw()
}

// CanClose reports whether the tab may be closed. A modified buffer is refused once with a message, the next try
// succeeds.
func (win *Window) CanClose() bool {
	ok := (!win.tab.Buffer().Dirty() || win.qcnt > 0)
	if !ok {
		printMsg("%s modified", win.Title())
		win.qcnt++
	}
	return ok
}

// Close releases the window's subscriptions. The tab itself is closed by the session.
func (win *Window) Close() {
	for _, cancel := range win.cancel {
		cancel()
	}
	win.cancel = nil
}

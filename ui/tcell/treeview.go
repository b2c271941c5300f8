package uitcell

import (
	"strings"

	tcell "github.com/gdamore/tcell/v2"
	"github.com/prodhe/coder/fstree"
)

const (
	RuneDirClosed = '▸'
	RuneDirOpen   = '▾'
)

// TreeView draws a tab's file tree and opens the files selected in it.
type TreeView struct {
	x, y, w, h int
	tree       *fstree.Tree
	first      int // row index drawn at the top
	focused    bool
	mpressed   bool
}

func (tv *TreeView) Resize(x, y, w, h int) {
	tv.x, tv.y, tv.w, tv.h = x, y, w, h
}

func (tv *TreeView) Draw() {
	if tv.w <= 0 {
		return
	}
	rows, first := tv.tree.Visible(tv.h)
	tv.first = first

	for i := 0; i < tv.h; i++ {
		if i >= len(rows) {
			drawString(tv.x, tv.y+i, tv.w, "", treeStyle)
			continue
		}
		row := rows[i]
		style := treeStyle
		if first+i == tv.tree.Selected() && tv.focused {
			style = treeSelectedStyle
		}

		marker := "  "
		if row.IsDir {
			marker = string(RuneDirClosed) + " "
			if row.Expanded {
				marker = string(RuneDirOpen) + " "
			}
		}
		drawString(tv.x, tv.y+i, tv.w, strings.Repeat("  ", row.Depth)+marker+row.Name, style)
	}
}

func (tv *TreeView) open(path string) {
	if path == "" {
		return
	}
	if _, err := session.FileSelected(path); err != nil {
		alert(err)
	}
}

func (tv *TreeView) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventMouse:
		_, my := ev.Position()
		switch ev.Buttons() {
		case tcell.ButtonNone:
			tv.mpressed = false
		case tcell.ButtonPrimary:
			if tv.mpressed {
				return
			}
			tv.mpressed = true
			tv.open(tv.tree.Select(tv.first + my - tv.y))
		case tcell.WheelUp:
			tv.tree.Move(-1)
		case tcell.WheelDown:
			tv.tree.Move(1)
		}
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyUp:
			tv.tree.Move(-1)
		case tcell.KeyDown:
			tv.tree.Move(1)
		case tcell.KeyPgUp:
			tv.tree.Move(-tv.h)
		case tcell.KeyPgDn:
			tv.tree.Move(tv.h)
		case tcell.KeyLeft:
			tv.tree.Collapse()
		case tcell.KeyEnter, tcell.KeyRight:
			tv.open(tv.tree.Activate())
		}
	}
}

package fstree

import (
	"path/filepath"
)

// Row is one visible line of a tree.
type Row struct {
	Entry
	Depth    int
	Expanded bool
}

// Tree is the per-tab view state of the file tree: its root, which directories are expanded and which row is
// selected. The listings themselves come from the shared Index.
type Tree struct {
	ix       *Index
	root     string
	expanded map[string]bool
	selected int
	scroll   int
}

// NewTree returns a tree over ix rooted at root.
func NewTree(ix *Index, root string) *Tree {
	t := &Tree{ix: ix, expanded: map[string]bool{}}
	t.SetRoot(root)
	return t
}

// Root returns the absolute root directory.
func (t *Tree) Root() string {
	return t.root
}

// SetRoot moves the tree to another directory and resets the selection.
func (t *Tree) SetRoot(root string) {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	if root == t.root {
		return
	}
	t.root = root
	t.selected = 0
	t.scroll = 0
}

// Rows lists the visible rows, walking expanded directories depth first. Unreadable directories show no children.
func (t *Tree) Rows() []Row {
	var rows []Row
	var walk func(dir string, depth int)
	walk = func(dir string, depth int) {
		entries, err := t.ix.Entries(dir)
		if err != nil {
			return
		}
		for _, e := range entries {
			open := e.IsDir && t.expanded[e.Path]
			rows = append(rows, Row{Entry: e, Depth: depth, Expanded: open})
			if open {
				walk(e.Path, depth+1)
			}
		}
	}
	walk(t.root, 0)
	return rows
}

// Refresh drops the cached listings of the root and every expanded directory, so the next Rows reads the disk.
func (t *Tree) Refresh() {
	t.ix.Refresh(t.root)
	for dir, open := range t.expanded {
		if open {
			t.ix.Refresh(dir)
		}
	}
}

// Selected returns the index of the selected row.
func (t *Tree) Selected() int {
	return t.selected
}

// Move moves the selection by n rows, clamped to the visible rows.
func (t *Tree) Move(n int) {
	t.setSelected(t.selected+n, len(t.Rows()))
}

func (t *Tree) setSelected(i, count int) {
	if i >= count {
		i = count - 1
	}
	if i < 0 {
		i = 0
	}
	t.selected = i
}

// Select selects row i. A directory is expanded or collapsed and "" is returned; a file's path is returned so the
// caller can open it.
func (t *Tree) Select(i int) string {
	rows := t.Rows()
	if i < 0 || i >= len(rows) {
		return ""
	}
	t.selected = i
	row := rows[i]
	if row.IsDir {
		t.expanded[row.Path] = !t.expanded[row.Path]
		return ""
	}
	return row.Path
}

// Activate selects the currently selected row again, see Select.
func (t *Tree) Activate() string {
	return t.Select(t.selected)
}

// Collapse closes the selected directory, or the directory containing the selected file, selecting it.
func (t *Tree) Collapse() {
	rows := t.Rows()
	if t.selected >= len(rows) {
		return
	}
	row := rows[t.selected]
	if row.IsDir && t.expanded[row.Path] {
		t.expanded[row.Path] = false
		return
	}
	parent := filepath.Dir(row.Path)
	if parent == t.root {
		return
	}
	t.expanded[parent] = false
	for i, r := range t.Rows() {
		if r.Path == parent {
			t.selected = i
			return
		}
	}
}

// Visible returns the rows that fit in height h, scrolling so the selection stays in view, and the index of the
// first returned row.
func (t *Tree) Visible(h int) ([]Row, int) {
	rows := t.Rows()
	if h <= 0 || len(rows) == 0 {
		return nil, 0
	}
	t.setSelected(t.selected, len(rows))

	if t.selected < t.scroll {
		t.scroll = t.selected
	}
	if t.selected >= t.scroll+h {
		t.scroll = t.selected - h + 1
	}
	maxScroll := len(rows) - h
	if maxScroll < 0 {
		maxScroll = 0
	}
	if t.scroll > maxScroll {
		t.scroll = maxScroll
	}
	if t.scroll < 0 {
		t.scroll = 0
	}

	end := t.scroll + h
	if end > len(rows) {
		end = len(rows)
	}
	return rows[t.scroll:end], t.scroll
}

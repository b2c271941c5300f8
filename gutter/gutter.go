// Package gutter renders the line-number column beside a scrollable text viewport.
//
// The gutter never stores line numbers on its own; it derives them from the viewport's blocks (text lines) on every
// paint and keeps only a per-row cache of rendered labels, which is shifted on scroll instead of recomputed.
package gutter

import (
	"strconv"

	runewidth "github.com/mattn/go-runewidth"
)

// DefaultPadding is the number of blank cells kept to the right of the widest number.
const DefaultPadding = 1

// Viewport is the text view a gutter is bound to. Blocks are text lines; a block taller than one row is a soft
// wrapped line. BlockHeight reports 0 for blocks that are not visible (folded).
type Viewport interface {
	BlockCount() int
	FirstVisibleBlock() int
	BlockHeight(block int) int
}

// Rect is a rectangle in gutter-local cell coordinates.
type Rect struct {
	X, Y, W, H int
}

// Gutter is a line-number column bound 1:1 to a viewport.
type Gutter struct {
	vp      Viewport
	padding int
	width   int
	rows    []string // rendered label per row, "" for blank rows
	valid   []bool   // false means the row must be recomputed on the next paint
}

// New returns a gutter bound to vp with the given right padding in cells.
func New(vp Viewport, padding int) *Gutter {
	if padding < 0 {
		padding = 0
	}
	g := &Gutter{vp: vp, padding: padding}
	g.LineCountChanged()
	return g
}

// Digits returns the number of decimal digits needed to print n. Anything below 1 still takes one digit.
func Digits(n int) int {
	d := 1
	for n >= 10 {
		n /= 10
		d++
	}
	return d
}

// Width returns the current width in cells.
func (g *Gutter) Width() int {
	return g.width
}

// Height returns the number of rows the gutter caches.
func (g *Gutter) Height() int {
	return len(g.rows)
}

// LineCountChanged recomputes the width from the viewport's block count. It reports whether the width changed, in
// which case the owner has to lay itself out again.
func (g *Gutter) LineCountChanged() bool {
	w := runewidth.RuneWidth('9')*Digits(g.vp.BlockCount()) + g.padding
	if w == g.width {
		return false
	}
	g.width = w
	g.invalidate(0, len(g.rows))
	return true
}

// Resize sets the number of rows. Every row is invalidated.
func (g *Gutter) Resize(h int) {
	if h < 0 {
		h = 0
	}
	g.rows = make([]string, h)
	g.valid = make([]bool, h)
}

// Update handles an update request from the viewport. A nonzero dy means the viewport content moved dy rows
// (positive is downwards): cached rows are shifted and only the rows that scrolled into view are invalidated.
// Otherwise only the rows covered by r are invalidated.
func (g *Gutter) Update(r Rect, dy int) bool {
	if dy != 0 {
		g.scroll(dy)
	} else {
		g.invalidate(r.Y, r.Y+r.H)
	}
	return g.LineCountChanged()
}

func (g *Gutter) scroll(dy int) {
	h := len(g.rows)
	if dy >= h || -dy >= h {
		g.invalidate(0, h)
		return
	}
	if dy > 0 {
		copy(g.rows[dy:], g.rows[:h-dy])
		copy(g.valid[dy:], g.valid[:h-dy])
		g.invalidate(0, dy)
		return
	}
	copy(g.rows, g.rows[-dy:])
	copy(g.valid, g.valid[-dy:])
	g.invalidate(h+dy, h)
}

func (g *Gutter) invalidate(from, to int) {
	if from < 0 {
		from = 0
	}
	if to > len(g.valid) {
		to = len(g.valid)
	}
	for i := from; i < to; i++ {
		g.valid[i] = false
	}
}

// Dirty reports whether row y waits to be recomputed.
func (g *Gutter) Dirty(y int) bool {
	if y < 0 || y >= len(g.valid) {
		return false
	}
	return !g.valid[y]
}

// Paint recomputes the invalid rows inside region by walking the viewport's blocks from the first visible one, then
// calls draw for every row of region with its label right aligned to the gutter width.
func (g *Gutter) Paint(region Rect, draw func(y int, label string)) {
	top, bottom := region.Y, region.Y+region.H
	if top < 0 {
		top = 0
	}
	if bottom > len(g.rows) {
		bottom = len(g.rows)
	}

	if g.stale(top, bottom) {
		g.walk(top, bottom)
	}

	if draw == nil {
		return
	}
	for y := top; y < bottom; y++ {
		draw(y, g.rows[y])
	}
}

func (g *Gutter) stale(top, bottom int) bool {
	for y := top; y < bottom; y++ {
		if !g.valid[y] {
			return true
		}
	}
	return false
}

// walk fills the rows between top and bottom.
func (g *Gutter) walk(top, bottom int) {
	count := g.vp.BlockCount()
	block := g.vp.FirstVisibleBlock()
	if block < 0 {
		block = 0
	}

	y := 0
	for block < count && y < bottom {
		h := g.vp.BlockHeight(block)
		if h > 0 && y+h > top {
			for row := y; row < y+h && row < bottom; row++ {
				if row < top || g.valid[row] {
					continue
				}
				g.rows[row] = ""
				if row == y {
					g.rows[row] = g.label(block + 1)
				}
				g.valid[row] = true
			}
		}
		y += h
		block++
	}

	// rows below the last block
	for row := y; row < bottom; row++ {
		if row >= top {
			g.rows[row] = ""
			g.valid[row] = true
		}
	}
}

func (g *Gutter) label(n int) string {
	s := strconv.Itoa(n)
	pad := g.width - g.padding - runewidth.StringWidth(s)
	for ; pad > 0; pad-- {
		s = " " + s
	}
	return s
}

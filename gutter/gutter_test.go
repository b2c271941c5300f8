package gutter_test

import (
	"testing"

	"github.com/prodhe/coder/gutter"
)

// fakeView is a viewport with explicit block heights.
type fakeView struct {
	heights []int
	first   int
	calls   int
}

func (v *fakeView) BlockCount() int        { return len(v.heights) }
func (v *fakeView) FirstVisibleBlock() int { return v.first }
func (v *fakeView) BlockHeight(i int) int {
	v.calls++
	return v.heights[i]
}

func lines(n int) *fakeView {
	v := &fakeView{}
	for i := 0; i < n; i++ {
		v.heights = append(v.heights, 1)
	}
	return v
}

func paint(g *gutter.Gutter) []string {
	out := make([]string, g.Height())
	g.Paint(gutter.Rect{H: g.Height()}, func(y int, label string) {
		out[y] = label
	})
	return out
}

func TestDigits(t *testing.T) {
	var tt = []struct {
		n, want int
	}{
		{0, 1}, {1, 1}, {9, 1}, {10, 2}, {99, 2}, {100, 3}, {12345, 5},
	}
	for _, tc := range tt {
		if got := gutter.Digits(tc.n); got != tc.want {
			t.Errorf("Digits(%d): expected %d, got %d", tc.n, tc.want, got)
		}
	}
}

func TestWidthFollowsLineCount(t *testing.T) {
	v := lines(9)
	g := gutter.New(v, gutter.DefaultPadding)
	if g.Width() != 1+gutter.DefaultPadding {
		t.Fatalf("9 lines: expected width %d, got %d", 1+gutter.DefaultPadding, g.Width())
	}

	v.heights = append(v.heights, 1)
	if !g.LineCountChanged() {
		t.Error("10 lines: expected width change to be reported")
	}
	if g.Width() != 2+gutter.DefaultPadding {
		t.Errorf("10 lines: expected width %d, got %d", 2+gutter.DefaultPadding, g.Width())
	}
	if g.LineCountChanged() {
		t.Error("unchanged line count reported a width change")
	}
}

func TestPaintNumbersVisibleBlocks(t *testing.T) {
	v := lines(12)
	v.first = 8
	g := gutter.New(v, 1)
	g.Resize(6)

	got := paint(g)
	want := []string{" 9", "10", "11", "12", "", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPaintWrappedAndHiddenBlocks(t *testing.T) {
	v := &fakeView{heights: []int{1, 3, 0, 1, 2}}
	g := gutter.New(v, 0)
	g.Resize(7)

	got := paint(g)
	want := []string{"1", "2", "", "", "4", "5", ""}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestPaintStopsBelowRegion(t *testing.T) {
	v := lines(1000)
	g := gutter.New(v, 1)
	g.Resize(5)
	paint(g)
	if v.calls > 5 {
		t.Errorf("expected at most 5 block queries for 5 rows, got %d", v.calls)
	}
}

func TestUpdateScrollKeepsRows(t *testing.T) {
	v := lines(20)
	g := gutter.New(v, 1)
	g.Resize(4)
	paint(g)

	// content moves up two rows
	v.first = 2
	g.Update(gutter.Rect{H: 4}, -2)
	for y := 0; y < 2; y++ {
		if g.Dirty(y) {
			t.Errorf("row %d was shifted and should stay valid", y)
		}
	}
	for y := 2; y < 4; y++ {
		if !g.Dirty(y) {
			t.Errorf("row %d scrolled into view and should be dirty", y)
		}
	}

	got := paint(g)
	want := []string{" 3", " 4", " 5", " 6"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("row %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestUpdateWithoutScrollInvalidatesRect(t *testing.T) {
	v := lines(3)
	g := gutter.New(v, 1)
	g.Resize(4)
	paint(g)

	g.Update(gutter.Rect{Y: 1, H: 2}, 0)
	var tt = []struct {
		row   int
		dirty bool
	}{
		{0, false}, {1, true}, {2, true}, {3, false},
	}
	for _, tc := range tt {
		if g.Dirty(tc.row) != tc.dirty {
			t.Errorf("row %d: expected dirty=%v", tc.row, tc.dirty)
		}
	}
}

func TestPaintEmptyViewport(t *testing.T) {
	g := gutter.New(&fakeView{}, 1)
	g.Resize(3)
	for i, label := range paint(g) {
		if label != "" {
			t.Errorf("row %d: expected blank, got %q", i, label)
		}
	}
}

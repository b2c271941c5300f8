package uitcell

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tcell "github.com/gdamore/tcell/v2"
	"github.com/prodhe/coder/config"
	"github.com/prodhe/coder/editor"
)

// setup starts the interface on an 80x25 simulation screen over a fresh session.
func setup(t *testing.T) (*Tcell, tcell.SimulationScreen, *editor.Session) {
	t.Helper()
	sim := tcell.NewSimulationScreen("")
	newScreen = func() (tcell.Screen, error) { return sim, nil }

	s := editor.NewSession(editor.Options{TreeRoot: t.TempDir()})
	ui := New(config.Default())
	if err := ui.Init(s); err != nil {
		t.Fatal(err)
	}
	sim.SetSize(80, 25)
	handleEvent(tcell.NewEventResize(80, 25))

	t.Cleanup(func() {
		ui.Close()
		s.Close()
	})
	return ui, sim, s
}

func writeLines(t *testing.T, n int) string {
	t.Helper()
	var lines []string
	for i := 1; i <= n; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	path := filepath.Join(t.TempDir(), "lines.txt")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

// cells returns the runes shown on row y between columns x0 and x1.
func cells(ui *Tcell, sim tcell.SimulationScreen, y, x0, x1 int) string {
	ui.redraw()
	cs, w, _ := sim.GetContents()
	var s []rune
	for x := x0; x < x1; x++ {
		c := cs[y*w+x]
		if len(c.Runes) == 0 {
			s = append(s, ' ')
			continue
		}
		s = append(s, c.Runes[0])
	}
	return string(s)
}

func key(k tcell.Key) {
	handleEvent(tcell.NewEventKey(k, 0, tcell.ModNone))
}

func typeString(s string) {
	for _, r := range s {
		handleEvent(tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
}

func TestGutterNumbers(t *testing.T) {
	ui, sim, s := setup(t)
	if _, err := s.OpenInNewTab(writeLines(t, 12)); err != nil {
		t.Fatal(err)
	}

	// tree 24 cells, a vertical line, then a gutter of 2 digits and 1 padding
	gx := conf.Editor.TreeWidth + 1
	var tt = []struct {
		y    int
		want string
	}{
		{1, " 1 line 1"},
		{9, " 9 line 9"},
		{12, "12 line 12"},
		{13, "          "},
	}
	for _, tc := range tt {
		got := cells(ui, sim, tc.y, gx, gx+len(tc.want))
		if got != tc.want {
			t.Errorf("row %d: expected %q, got %q", tc.y, tc.want, got)
		}
	}
}

func TestGutterFollowsScroll(t *testing.T) {
	ui, sim, s := setup(t)
	s.OpenInNewTab(writeLines(t, 40))
	gx := conf.Editor.TreeWidth + 1

	cells(ui, sim, 1, gx, gx+3)
	CurWin.body.Scroll(5)
	if got := cells(ui, sim, 1, gx, gx+3); got != " 6 " {
		t.Errorf("after scrolling 5 lines expected line 6 on top, got %q", got)
	}
	CurWin.body.Scroll(-2)
	if got := cells(ui, sim, 23, gx, gx+3); got != "26 " {
		t.Errorf("expected line 26 on the last row, got %q", got)
	}
}

func TestGutterWidensWithLineCount(t *testing.T) {
	_, _, s := setup(t)
	tab, _ := s.OpenInNewTab(writeLines(t, 9))
	if CurWin.gutter.Width() != 2 {
		t.Fatalf("9 lines: expected width 2, got %d", CurWin.gutter.Width())
	}
	bx := CurWin.body.x

	buf := tab.Buffer()
	buf.SetDot(buf.Len(), buf.Len())
	key(tcell.KeyEnter)
	if CurWin.gutter.Width() != 3 || CurWin.body.x != bx+1 {
		t.Errorf("10 lines: expected width 3 and body moved right, got %d at %d", CurWin.gutter.Width(), CurWin.body.x)
	}
}

// gutterRows returns the gutter labels of the first n window rows.
func gutterRows(ui *Tcell, sim tcell.SimulationScreen, n int) []string {
	gx := conf.Editor.TreeWidth + 1
	var rows []string
	for y := 1; y <= n; y++ {
		rows = append(rows, cells(ui, sim, y, gx, gx+CurWin.gutter.Width()))
	}
	return rows
}

func TestGutterAfterUndoRedo(t *testing.T) {
	ui, sim, s := setup(t)
	tab, _ := s.OpenInNewTab(writeLines(t, 5))
	buf := tab.Buffer()

	// line 1 wraps onto a second row
	buf.SetDot(6, 6)
	buf.Write([]byte(strings.Repeat("x", 80)))
	wrapped := []string{"1 ", "  ", "2 ", "3 ", "4 ", "5 "}
	if got := gutterRows(ui, sim, 6); !equal(got, wrapped) {
		t.Fatalf("after the paste expected %q, got %q", wrapped, got)
	}

	// the edits happen on line 1 while the cursor sits on line 5
	buf.SetDot(buf.Len(), buf.Len())
	key(tcell.KeyCtrlZ)
	want := []string{"1 ", "2 ", "3 ", "4 ", "5 ", "  "}
	if got := gutterRows(ui, sim, 6); !equal(got, want) {
		t.Errorf("after undo expected %q, got %q", want, got)
	}

	buf.SetDot(buf.Len(), buf.Len())
	key(tcell.KeyCtrlY)
	if got := gutterRows(ui, sim, 6); !equal(got, wrapped) {
		t.Errorf("after redo expected %q, got %q", wrapped, got)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestRefreshTree(t *testing.T) {
	ui, sim, s := setup(t)
	path := writeLines(t, 2)
	s.OpenInNewTab(path)

	if got := cells(ui, sim, 1, 0, 11); got != "  lines.txt" {
		t.Fatalf("expected the file in the tree, got %q", got)
	}
	os.WriteFile(filepath.Join(filepath.Dir(path), "a.txt"), nil, 0644)
	if got := cells(ui, sim, 1, 0, 11); got != "  lines.txt" {
		t.Fatalf("listing should stay cached until refreshed, got %q", got)
	}
	key(tcell.KeyCtrlL)
	if got := cells(ui, sim, 1, 0, 11); got != "  a.txt    " {
		t.Errorf("expected a.txt on top after refresh, got %q", got)
	}
}

func TestTabBar(t *testing.T) {
	ui, sim, s := setup(t)
	s.NewTab()
	s.OpenInNewTab(writeLines(t, 1))

	bar := cells(ui, sim, 0, 0, 80)
	if !strings.HasPrefix(bar, "'"+editor.TitleNewFile+"  lines.txt ") {
		t.Errorf("unexpected tab bar %q", bar)
	}

	i := workspace.TabAt(2)
	if i != 0 {
		t.Fatalf("expected first tab under column 2, got %d", i)
	}
	handleEvent(tcell.NewEventMouse(2, 0, tcell.ButtonPrimary, tcell.ModNone))
	if s.ActiveIndex() != 0 || CurWin.tab != s.Tabs()[0] {
		t.Errorf("click did not activate the first tab")
	}
}

func TestCloseModifiedTab(t *testing.T) {
	_, _, s := setup(t)
	s.NewTab()
	s.NewTab()

	key(tcell.KeyCtrlW)
	if s.Len() != 2 || !strings.Contains(workspace.msg, "modified") {
		t.Fatalf("first close of a modified tab should warn, have %d tabs and %q", s.Len(), workspace.msg)
	}
	key(tcell.KeyCtrlW)
	if s.Len() != 1 || len(workspace.windows) != 1 {
		t.Errorf("second close should close, have %d tabs and %d windows", s.Len(), len(workspace.windows))
	}
	if CurWin == nil || CurWin.tab != s.Active() {
		t.Error("current window does not follow the active tab")
	}
}

func TestCloseLastTabQuits(t *testing.T) {
	_, _, s := setup(t)
	s.OpenInNewTab(writeLines(t, 3))

	key(tcell.KeyCtrlW)
	if !s.Ended() {
		t.Fatal("session should have ended")
	}
	select {
	case <-quit:
	default:
		t.Error("closing the last tab did not quit")
	}
}

func TestSaveAsWithFilter(t *testing.T) {
	_, _, s := setup(t)
	tab := s.NewTab()
	typeString("print(1)")

	key(tcell.KeyCtrlQ)
	if workspace.prompt == nil {
		t.Fatal("expected the save as prompt")
	}
	key(tcell.KeyTab) // Python
	typeString("prog")
	key(tcell.KeyEnter)

	path := filepath.Join(tab.TreeRoot(), "prog.py")
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "print(1)" {
		t.Errorf("expected typed text on disk, got %q", got)
	}
	if tab.Title() != "prog.py" || tab.Buffer().Dirty() {
		t.Errorf("unexpected tab state %q dirty=%v", tab.Title(), tab.Buffer().Dirty())
	}
}

func TestOpenMissingAlerts(t *testing.T) {
	_, _, s := setup(t)
	s.NewTab()

	key(tcell.KeyCtrlO)
	typeString("missing.txt")
	key(tcell.KeyEnter)
	if workspace.alert == nil || workspace.alert.title != "File not found" {
		t.Fatalf("expected a file not found alert, got %+v", workspace.alert)
	}
	if s.Len() != 1 {
		t.Errorf("failed open added a tab")
	}

	typeString("x") // dismiss
	if workspace.alert != nil {
		t.Error("alert not dismissed")
	}
	if buf, _ := s.ActiveBuffer(); buf.Len() != 0 {
		t.Error("the dismissing key reached the buffer")
	}
}

func TestFindPrompt(t *testing.T) {
	_, _, s := setup(t)
	tab, _ := s.OpenInNewTab(writeLines(t, 30))

	key(tcell.KeyCtrlF)
	typeString("line 2")
	key(tcell.KeyEnter)
	if q0, q1 := tab.Buffer().Dot(); tab.Buffer().ReadDot() != "line 2" {
		t.Errorf("expected line 2 selected, got %d,%d", q0, q1)
	}
	key(tcell.KeyEnter) // next: "line 20"
	q0, _ := tab.Buffer().Dot()
	if line := tab.Buffer().LineAt(q0); line != 19 {
		t.Errorf("expected the match on line 20, got %d", line+1)
	}
	key(tcell.KeyEscape)
	if workspace.prompt != nil {
		t.Error("escape should close the prompt")
	}
}

func TestAbout(t *testing.T) {
	ui, sim, _ := setup(t)
	key(tcell.KeyF1)

	var found bool
	for y := 0; y < 25; y++ {
		if strings.Contains(cells(ui, sim, y, 0, 80), "Author: OrgInfoTech") {
			found = true
		}
	}
	if !found {
		t.Error("about box not drawn")
	}
}

func TestTreeClickOpensFile(t *testing.T) {
	ui, sim, s := setup(t)
	path := writeLines(t, 2)
	s.OpenInNewTab(path)

	if got := cells(ui, sim, 1, 0, 11); got != "  lines.txt" {
		t.Fatalf("expected the file in the tree, got %q", got)
	}
	handleEvent(tcell.NewEventMouse(3, 1, tcell.ButtonPrimary, tcell.ModNone))
	if s.Len() != 2 || s.Active().Buffer().Path() != path {
		t.Errorf("clicking the file should open it in a new tab, have %d tabs", s.Len())
	}
}

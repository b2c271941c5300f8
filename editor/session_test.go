package editor

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
)

func newSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession(Options{TreeRoot: t.TempDir(), Run: DefaultRunConfig()})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewTab(t *testing.T) {
	s := newSession(t)
	if _, err := s.ActiveBuffer(); !errors.Is(err, ErrNoTabs) {
		t.Errorf("empty session: expected ErrNoTabs, got %v", err)
	}

	tab := s.NewTab()
	if s.Len() != 1 || s.ActiveIndex() != 0 || s.Active() != tab {
		t.Fatalf("expected one active tab, got len %d active %d", s.Len(), s.ActiveIndex())
	}
	if tab.Title() != TitleNewFile {
		t.Errorf("expected title %q, got %q", TitleNewFile, tab.Title())
	}
	if !tab.Buffer().Dirty() {
		t.Error("a new file starts modified")
	}
}

func TestOpenInNewTabMissing(t *testing.T) {
	s := newSession(t)
	s.NewTab()
	var added int
	s.Subscribe(EventTabAdded, func(Notice) { added++ })

	tab, err := s.OpenInNewTab(filepath.Join(t.TempDir(), "missing.py"))
	if !errors.Is(err, ErrNotFound) || tab != nil {
		t.Errorf("expected ErrNotFound and no tab, got %v %v", tab, err)
	}
	if s.Len() != 1 || added != 0 {
		t.Errorf("failed open left %d tabs (%d added)", s.Len(), added)
	}
}

func TestOpenInNewTab(t *testing.T) {
	s := newSession(t)
	path := writeFile(t, "script.py", "print(1)\n")

	tab, err := s.OpenInNewTab(path)
	if err != nil {
		t.Fatal(err)
	}
	if tab.Title() != "script.py" || tab.Buffer().Dirty() {
		t.Errorf("unexpected tab state: %q dirty=%v", tab.Title(), tab.Buffer().Dirty())
	}
	if tab.TreeRoot() != filepath.Dir(path) {
		t.Errorf("tree root: expected %s, got %s", filepath.Dir(path), tab.TreeRoot())
	}
	if buf, _ := s.ActiveBuffer(); buf != tab.Buffer() {
		t.Error("opened tab is not active")
	}
}

func TestCloseTabAdjustsActive(t *testing.T) {
	var tt = []struct {
		name       string
		tabs       int
		active     int
		close      int
		wantActive int
	}{
		{"before active", 3, 2, 0, 1},
		{"after active", 3, 0, 2, 0},
		{"active middle", 3, 1, 1, 0},
		{"active first", 3, 0, 0, 0},
		{"out of range", 2, 1, 5, 1},
	}

	for _, tc := range tt {
		s := newSession(t)
		for i := 0; i < tc.tabs; i++ {
			s.NewTab()
		}
		s.SetActive(tc.active)
		s.CloseTab(tc.close)
		if s.ActiveIndex() != tc.wantActive {
			t.Errorf("%s: expected active %d, got %d", tc.name, tc.wantActive, s.ActiveIndex())
		}
	}
}

func TestCloseLastTabEndsSession(t *testing.T) {
	s := newSession(t)
	s.NewTab()
	var ended bool
	s.Subscribe(EventSessionEnded, func(Notice) { ended = true })

	s.CloseTab(0)
	if !ended || !s.Ended() || s.Len() != 0 || s.ActiveIndex() != -1 {
		t.Errorf("expected ended session, got ended=%v len=%d active=%d", s.Ended(), s.Len(), s.ActiveIndex())
	}
}

func TestNextPrevWrap(t *testing.T) {
	s := newSession(t)
	s.NewTab()
	s.NewTab()
	s.NewTab()
	s.Next()
	if s.ActiveIndex() != 0 {
		t.Errorf("next from last: expected 0, got %d", s.ActiveIndex())
	}
	s.Prev()
	if s.ActiveIndex() != 2 {
		t.Errorf("prev from first: expected 2, got %d", s.ActiveIndex())
	}
}

func TestSaveActiveAsRenames(t *testing.T) {
	s := newSession(t)
	tab := s.NewTab()
	tab.Buffer().Write([]byte("<p>hi</p>"))
	var renamed string
	s.Subscribe(EventTabRenamed, func(n Notice) { renamed = n.Tab.Title() })

	dir := t.TempDir()
	path, err := s.SaveActiveAs(filepath.Join(dir, "page"), ParseFilter("HTML"))
	if err != nil {
		t.Fatal(err)
	}
	if path != filepath.Join(dir, "page.html") || renamed != "page.html" {
		t.Errorf("expected page.html, got path %s renamed %q", path, renamed)
	}
	if tab.TreeRoot() != dir {
		t.Errorf("tree root should follow the saved file, got %s", tab.TreeRoot())
	}
	if err := s.SaveActive(); err != nil {
		t.Errorf("save after save as: %v", err)
	}
}

func TestAutoSaveLifecycle(t *testing.T) {
	s := newSession(t)
	s.NewTab()
	if err := s.EnableAutoSave(); !errors.Is(err, ErrNoPath) {
		t.Errorf("enabling on a new file: expected ErrNoPath, got %v", err)
	}
	if s.AutoSaver().Enabled() || s.AutoSaver().C() != nil {
		t.Error("timer started for a pathless buffer")
	}

	path := writeFile(t, "notes.txt", "a")
	tab, _ := s.OpenInNewTab(path)
	on, err := s.ToggleAutoSave()
	if !on || err != nil || s.AutoSaver().C() == nil {
		t.Fatalf("expected auto-save on, got %v %v", on, err)
	}

	tab.Buffer().SetDot(1, 1)
	tab.Buffer().Write([]byte("b"))
	s.AutoSaveTick()
	if got, _ := os.ReadFile(path); string(got) != "ab" {
		t.Errorf("expected ab on disk, got %q", got)
	}
	if tab.Buffer().Dirty() {
		t.Error("dirty after auto-save")
	}

	if on, _ := s.ToggleAutoSave(); on || s.AutoSaver().Enabled() {
		t.Error("expected auto-save off")
	}
}

func TestFileSelected(t *testing.T) {
	s := newSession(t)
	dir := t.TempDir()
	if tab, err := s.FileSelected(dir); tab != nil || err != nil {
		t.Errorf("directory selection should be ignored, got %v %v", tab, err)
	}
	path := writeFile(t, "a.txt", "a")
	if tab, err := s.FileSelected(path); tab == nil || err != nil {
		t.Errorf("file selection should open a tab, got %v %v", tab, err)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 tab, got %d", s.Len())
	}
}

func TestFindWraps(t *testing.T) {
	s := newSession(t)
	s.NewTab().Buffer().Write([]byte("foo bar foo"))

	var tt = []struct {
		q0 int
		ok bool
	}{
		{0, true}, {8, true}, {0, false}, {0, true},
	}
	for i, tc := range tt {
		q0, _, ok := s.Find("foo")
		if ok != tc.ok || (ok && q0 != tc.q0) {
			t.Errorf("search %d: expected %d %v, got %d %v", i, tc.q0, tc.ok, q0, ok)
		}
	}
	buf, _ := s.ActiveBuffer()
	if buf.ReadDot() != "foo" {
		t.Errorf("match should be selected, got %q", buf.ReadDot())
	}
}

func TestRunActive(t *testing.T) {
	s := newSession(t)
	var started [][]string
	s.runner.start = func(cmd *exec.Cmd) error {
		started = append(started, cmd.Args)
		return nil
	}
	var opened string
	s.runner.openBrowser = func(path string) error {
		opened = path
		return nil
	}
	s.runner.cfg.HTMLFile = filepath.Join(t.TempDir(), "run.html")

	s.NewTab()
	if err := s.RunActive(); !errors.Is(err, ErrNoPath) {
		t.Errorf("pathless run: expected ErrNoPath, got %v", err)
	}

	py := writeFile(t, "hello.py", "print('hi')")
	tab, _ := s.OpenInNewTab(py)
	tab.Buffer().Write([]byte("# edited\n"))
	if err := s.RunActive(); err != nil {
		t.Fatal(err)
	}
	if tab.Buffer().Dirty() {
		t.Error("run did not save first")
	}
	want := []string{"xterm", "-hold", "-e", "python3", py}
	if len(started) != 1 || !equalArgs(started[0], want) {
		t.Errorf("python: expected %v, got %v", want, started)
	}

	cpp := writeFile(t, "prog.cpp", "int main(){}")
	s.OpenInNewTab(cpp)
	s.RunActive()
	exe := filepath.Join(filepath.Dir(cpp), "prog")
	if len(started) != 2 {
		t.Fatalf("c++: expected a second command, got %v", started)
	}
	last := started[1]
	if last[len(last)-1] != exe || last[len(last)-2] != cpp || last[len(last)-3] != "g++" {
		t.Errorf("c++: names must be positional arguments, got %v", last)
	}

	html := writeFile(t, "page.html", "<h1>x</h1>")
	s.OpenInNewTab(html)
	if err := s.RunActive(); err != nil {
		t.Fatal(err)
	}
	if got, _ := os.ReadFile(opened); string(got) != "<h1>x</h1>" {
		t.Errorf("html: expected buffer in %s, got %q", opened, got)
	}

	css := writeFile(t, "style.css", "body{}")
	s.OpenInNewTab(css)
	if err := s.RunActive(); !errors.Is(err, ErrRunUnsupported) {
		t.Errorf("css: expected ErrRunUnsupported, got %v", err)
	}
}

func TestRunElevated(t *testing.T) {
	cfg := DefaultRunConfig()
	cfg.Elevate = true
	cfg.Terminal = ""
	r := NewRunner(cfg, nil)
	var args []string
	r.start = func(cmd *exec.Cmd) error {
		args = cmd.Args
		return nil
	}
	r.Run("/tmp/x.py", "x.py", "")
	if !equalArgs(args, []string{"sudo", "python3", "/tmp/x.py"}) {
		t.Errorf("expected sudo python3, got %v", args)
	}
}

func equalArgs(a, b []string) bool {
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

package uitcell

import (
	"fmt"
	"path/filepath"
	"strings"

	tcell "github.com/gdamore/tcell/v2"
	"github.com/pkg/errors"
	"github.com/prodhe/coder/config"
	"github.com/prodhe/coder/editor"
)

const (
	RuneWidthZero = '?'
	Version       = "1.1.0"
)

var (
	screen    tcell.Screen
	session   *editor.Session
	conf      config.Config
	workspace *Workspace
	CurWin    *Window

	keycmds   map[tcell.Key]commandFunc
	lastQuery string

	quit   chan bool
	events chan tcell.Event

	// newScreen is replaced by tests with a simulation screen.
	newScreen = tcell.NewScreen
)

type commandFunc func()

// Tcell is the full screen terminal interface.
type Tcell struct {
	cfg    config.Config
	cancel []func()
}

// New returns a terminal interface styled by cfg.
func New(cfg config.Config) *Tcell {
	return &Tcell{cfg: cfg}
}

func (t *Tcell) Init(s *editor.Session) error {
	session = s
	conf = t.cfg

	if err := initStyles(conf); err != nil {
		return err
	}

	if err := initScreen(); err != nil {
		return err
	}

	if err := initWorkspace(); err != nil {
		return err
	}

	initCommands()

	quit = make(chan bool, 1)
	events = make(chan tcell.Event, 100)

	t.subscribe()

	for _, tab := range session.Tabs() {
		workspace.AddWindow(NewWindow(tab))
	}
	if tab := session.Active(); tab != nil {
		CurWin = workspace.Window(tab)
	}

	return nil
}

func (t *Tcell) Close() {
	for _, cancel := range t.cancel {
		cancel()
	}
	t.cancel = nil
	if screen == nil {
		return
	}
	screen.DisableMouse()
	screen.Fini()
	screen = nil
}

// Alert shows err in a box the user has to dismiss.
func (t *Tcell) Alert(err error) {
	alert(err)
}

func alert(err error) {
	title := "Error"
	switch {
	case errors.Is(err, editor.ErrNotFound):
		title = "File not found"
	case errors.Is(err, editor.ErrEncoding):
		title = "Cannot read file"
	case errors.Is(err, editor.ErrIO):
		title = "Input/output error"
	case errors.Is(err, editor.ErrNoPath):
		title = "No file name"
	case errors.Is(err, editor.ErrRunUnsupported):
		title = "Cannot run"
	}
	workspace.alert = &Alert{title: title, lines: strings.Split(err.Error(), "\n")}
}

// printMsg shows a message on the status line until the next key press.
func printMsg(format string, a ...interface{}) {
	if workspace == nil {
		return
	}
	workspace.msg = strings.TrimRight(fmt.Sprintf(format, a...), "\n")
}

func initScreen() error {
	var err error
	screen, err = newScreen()
	if err != nil {
		return err
	}
	if err = screen.Init(); err != nil {
		return err
	}
	screen.SetStyle(bodyStyle)
	screen.EnableMouse()
	screen.Sync()
	return nil
}

func initWorkspace() error {
	workspace = &Workspace{}
	CurWin = nil
	w, h := screen.Size()
	workspace.Resize(0, 0, w, h)
	return nil
}

func initCommands() {
	keycmds = map[tcell.Key]commandFunc{
		tcell.KeyCtrlN: CmdNew,
		tcell.KeyCtrlO: CmdOpen,
		tcell.KeyCtrlS: CmdSave,
		tcell.KeyCtrlQ: CmdSaveAs,
		tcell.KeyCtrlE: CmdAutoSave,
		tcell.KeyCtrlF: CmdFind,
		tcell.KeyCtrlR: CmdRun,
		tcell.KeyCtrlW: CmdClose,
		tcell.KeyCtrlT: CmdFocusTree,
		tcell.KeyF1:    CmdAbout,
		tcell.KeyF10:   CmdExit,
	}
}

// subscribe keeps the windows in step with the session's tabs.
func (t *Tcell) subscribe() {
	t.cancel = append(t.cancel,
		session.Subscribe(editor.EventTabAdded, func(n editor.Notice) {
			workspace.AddWindow(NewWindow(n.Tab))
		}),
		session.Subscribe(editor.EventTabClosed, func(n editor.Notice) {
			workspace.CloseWindow(n.Tab)
		}),
		session.Subscribe(editor.EventTabActivated, func(n editor.Notice) {
			CurWin = workspace.Window(n.Tab)
		}),
		session.Subscribe(editor.EventSessionEnded, func(editor.Notice) {
			exit()
		}),
	)
}

func (t *Tcell) redraw() {
	workspace.Draw()
	screen.Show()
}

func (t *Tcell) Listen() {
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil { // screen finalized
				return
			}
			events <- ev
		}
	}()

	for {
		// draw
		t.redraw()

		var event tcell.Event

		select {
		case <-quit:
			return
		case event = <-events:
		case <-session.AutoSaver().C():
			session.AutoSaveTick()
			continue
		case ev := <-session.Index().Events():
			session.Index().Handle(ev)
			continue
		case err := <-session.Index().Errors():
			printMsg("file tree: %s", err)
			continue
		}

		for event != nil {
			handleEvent(event)

			select {
			case event = <-events:
			default:
				event = nil
			}
		}
	}
}

func handleEvent(event tcell.Event) {
	switch e := event.(type) {
	case *tcell.EventResize:
		w, h := screen.Size()
		workspace.Resize(0, 0, w, h)
		screen.Clear()
		screen.Sync()
	case *tcell.EventKey:
		if workspace.alert != nil { // any key dismisses
			workspace.alert = nil
			return
		}
		workspace.msg = ""
		if workspace.prompt != nil {
			workspace.prompt.HandleEvent(e)
			return
		}

		// system wide shortcuts
		switch {
		case e.Key() == tcell.KeyCtrlL: // refresh terminal and file tree
			if CurWin != nil {
				CurWin.tree.tree.Refresh()
			}
			screen.Clear()
			screen.Sync()
			return
		case e.Modifiers()&tcell.ModAlt != 0 && e.Key() == tcell.KeyLeft,
			e.Modifiers()&tcell.ModCtrl != 0 && e.Key() == tcell.KeyPgUp:
			session.Prev()
			return
		case e.Modifiers()&tcell.ModAlt != 0 && e.Key() == tcell.KeyRight,
			e.Modifiers()&tcell.ModCtrl != 0 && e.Key() == tcell.KeyPgDn:
			session.Next()
			return
		}
		if fn, ok := keycmds[e.Key()]; ok {
			fn()
			return
		}

		// let the focused window handle event
		if CurWin != nil {
			CurWin.HandleEvent(e)
		}
	case *tcell.EventMouse:
		mx, my := e.Position()
		pressed := e.Buttons()&tcell.ButtonPrimary != 0

		if workspace.alert != nil {
			if pressed {
				workspace.alert = nil
			}
			return
		}

		switch {
		case my == workspace.y:
			if pressed {
				if i := workspace.TabAt(mx); i >= 0 {
					session.SetActive(i)
				}
			}
		case my == workspace.y+workspace.h-1:
			if workspace.prompt != nil {
				workspace.prompt.view.HandleEvent(e)
			}
		case CurWin != nil:
			CurWin.HandleEvent(e)
		}
	}
}

func exit() {
	select {
	case quit <- true:
	default:
	}
}

// resolve makes a typed in name absolute, relative to the directory of the current window.
func resolve(name string) string {
	name = strings.TrimSpace(name)
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	dir := "."
	if CurWin != nil {
		dir = CurWin.Dir()
	}
	return filepath.Join(dir, name)
}

func currentDir() string {
	if CurWin == nil {
		return ""
	}
	return CurWin.Dir() + string(filepath.Separator)
}

func CmdNew() {
	session.NewTab()
}

func CmdOpen() {
	workspace.prompt = newPrompt("Open: ", currentDir(), func(input string, _ editor.Filter) {
		path := resolve(input)
		if path == "" {
			return
		}
		if _, err := session.OpenInNewTab(path); err != nil {
			alert(err)
		}
	})
}

func CmdSave() {
	err := session.SaveActive()
	switch {
	case errors.Is(err, editor.ErrNoPath):
		CmdSaveAs()
	case err != nil:
		alert(err)
	default:
		if buf, err := session.ActiveBuffer(); err == nil {
			printMsg("%s saved", buf.Path())
		}
	}
}

func CmdSaveAs() {
	if session.Active() == nil {
		return
	}
	p := newPrompt("Save as: ", currentDir(), func(input string, filter editor.Filter) {
		name := resolve(input)
		if name == "" || strings.HasSuffix(input, string(filepath.Separator)) {
			return
		}
		path, err := session.SaveActiveAs(name, filter)
		if err != nil {
			alert(err)
			return
		}
		printMsg("%s saved", path)
	})
	p.filters = editor.Filters
	workspace.prompt = p
}

func CmdAutoSave() {
	on, err := session.ToggleAutoSave()
	if err != nil {
		alert(err)
		return
	}
	if on {
		printMsg("auto-save on")
	} else {
		printMsg("auto-save off")
	}
}

func CmdFind() {
	p := newPrompt("Find: ", lastQuery, func(input string, _ editor.Filter) {
		lastQuery = input
		if _, _, ok := session.Find(input); !ok {
			printMsg("%q not found", input)
			return
		}
		if CurWin != nil {
			CurWin.body.ScrollToCursor()
		}
	})
	p.keep = true
	workspace.prompt = p
}

func CmdRun() {
	err := session.RunActive()
	switch {
	case errors.Is(err, editor.ErrNoPath):
		printMsg("save the file before running it")
		CmdSaveAs()
	case err != nil:
		alert(err)
	default:
		printMsg("running %s", CurWin.Title())
	}
}

func CmdClose() {
	if CurWin == nil || !CurWin.CanClose() {
		return
	}
	session.CloseTab(session.ActiveIndex())
}

func CmdFocusTree() {
	if CurWin != nil {
		CurWin.SetTreeFocus(!CurWin.treeFocused)
	}
}

func CmdAbout() {
	workspace.alert = &Alert{
		title: "About",
		lines: []string{"Coder", "Version: " + Version, "Author: OrgInfoTech"},
	}
}

func CmdExit() {
	ok := true
	for _, win := range workspace.windows {
		if !win.CanClose() {
			ok = false
		}
	}
	if ok {
		exit()
	}
}

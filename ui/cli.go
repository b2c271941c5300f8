package ui

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prodhe/coder/editor"
)

// Cli implements ui.Interface with simple line driven user actions, one command per line:
//
//	n            new tab            e path       open in new tab
//	f            list tabs          b index      activate tab
//	a text       append a line      p            print buffer
//	w            save               w path [filter]  save as
//	x [index]    close tab          / text       find next
//	r            run                t            toggle auto-save
//	l            list file tree     o index      open file tree row
//	q            quit
type Cli struct {
	s      *editor.Session
	in     io.Reader
	out    io.Writer
	warned *editor.Tab // tab whose close was refused once because it is modified
}

func (c *Cli) Init(s *editor.Session) error {
	c.s = s
	return nil
}

func (c *Cli) Close() {
}

func (c *Cli) Alert(err error) {
	fmt.Fprintf(c.out, "error: %v\n", err)
}

func (c *Cli) printf(format string, a ...interface{}) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *Cli) Listen() {
	lines := make(chan string)
	done := make(chan struct{})
	defer close(done)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(c.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-done:
				return
			}
		}
	}()

	for !c.s.Ended() {
		select {
		case line, ok := <-lines:
			if !ok {
				return
			}
			if !c.exec(line) {
				return
			}
		case <-c.s.AutoSaver().C():
			c.s.AutoSaveTick()
		case ev := <-c.s.Index().Events():
			c.s.Index().Handle(ev)
		}
	}
}

// exec runs one command line. It returns false when the user quits.
func (c *Cli) exec(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return true
	}
	cmd, arg := line[:1], strings.TrimSpace(line[1:])

	switch cmd {
	case "q":
		return false
	case "n":
		c.s.NewTab()
	case "e":
		if _, err := c.s.OpenInNewTab(arg); err != nil {
			c.Alert(err)
		}
	case "f":
		for i, tab := range c.s.Tabs() {
			c.printf("%s\n", c.tabLine(i, tab))
		}
	case "b":
		i, err := strconv.Atoi(arg)
		if err != nil || i < 0 || i >= c.s.Len() {
			c.printf("?\n")
			break
		}
		c.s.SetActive(i)
	case "a":
		buf, err := c.s.ActiveBuffer()
		if err != nil {
			c.Alert(err)
			break
		}
		buf.SetDot(buf.Len(), buf.Len())
		buf.Write([]byte(arg + "\n"))
	case "p":
		if buf, err := c.s.ActiveBuffer(); err == nil {
			c.printf("%s", buf.String())
		}
	case "w":
		c.save(arg)
	case "x":
		c.closeTab(arg)
	case "/":
		if q0, q1, ok := c.s.Find(arg); ok {
			c.printf("#%d,#%d\n", q0, q1)
		} else {
			c.printf("string %q not found\n", arg)
		}
	case "r":
		if err := c.s.RunActive(); err != nil {
			c.Alert(err)
		}
	case "t":
		on, err := c.s.ToggleAutoSave()
		if err != nil {
			c.Alert(err)
			break
		}
		c.printf("auto-save %v\n", on)
	case "l":
		c.listTree()
	case "o":
		c.openTreeRow(arg)
	default:
		c.printf("?\n")
	}
	return true
}

func (c *Cli) tabLine(i int, tab *editor.Tab) string {
	mark := ' '
	if i == c.s.ActiveIndex() {
		mark = '*'
	}
	flag := ' '
	if tab.Buffer().Dirty() {
		flag = '\''
	}
	return fmt.Sprintf("%c%c %d %s", mark, flag, i, tab.Title())
}

func (c *Cli) save(arg string) {
	if arg == "" {
		if err := c.s.SaveActive(); err != nil {
			c.Alert(err)
		}
		return
	}
	name, filter := arg, editor.AllFiles
	if i := strings.IndexByte(arg, ' '); i >= 0 {
		name, filter = arg[:i], editor.ParseFilter(arg[i+1:])
	}
	path, err := c.s.SaveActiveAs(name, filter)
	if err != nil {
		c.Alert(err)
		return
	}
	c.printf("%s\n", path)
}

func (c *Cli) closeTab(arg string) {
	if c.s.Len() == 0 {
		c.printf("?\n")
		return
	}
	i := c.s.ActiveIndex()
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 0 || n >= c.s.Len() {
			c.printf("?\n")
			return
		}
		i = n
	}
	tab := c.s.Tabs()[i]
	if tab.Buffer().Dirty() && c.warned != tab {
		c.warned = tab
		c.printf("%s modified\n", tab.Title())
		return
	}
	c.warned = nil
	c.s.CloseTab(i)
}

func (c *Cli) listTree() {
	tab := c.s.Active()
	if tab == nil {
		return
	}
	entries, err := c.s.Index().Entries(tab.TreeRoot())
	if err != nil {
		c.Alert(err)
		return
	}
	for i, e := range entries {
		suffix := ""
		if e.IsDir {
			suffix = "/"
		}
		c.printf("%d %s%s\n", i, e.Name, suffix)
	}
}

func (c *Cli) openTreeRow(arg string) {
	tab := c.s.Active()
	if tab == nil {
		return
	}
	entries, err := c.s.Index().Entries(tab.TreeRoot())
	i, aerr := strconv.Atoi(arg)
	if err != nil || aerr != nil || i < 0 || i >= len(entries) {
		c.printf("?\n")
		return
	}
	if _, err := c.s.FileSelected(entries[i].Path); err != nil {
		c.Alert(err)
	}
}

package ui

import (
	"io"

	"github.com/prodhe/coder/config"
	"github.com/prodhe/coder/editor"
	uitcell "github.com/prodhe/coder/ui/tcell"
)

type Interface interface {
	// Init initializes the user interface over the session.
	Init(s *editor.Session) error

	// Close will close and clean up any resources held by the UI.
	Close()

	// Listen loops for events and acts upon the session until it ends or the user exits. Keyboard input in the
	// terminal implementation, lines of commands in the CLI one.
	Listen()

	// Alert shows an error the user has to acknowledge.
	Alert(err error)
}

func NewTcell(cfg config.Config) Interface {
	return uitcell.New(cfg)
}

func NewCli(in io.Reader, out io.Writer) Interface {
	return &Cli{in: in, out: out}
}

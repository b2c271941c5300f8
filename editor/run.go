package editor

import (
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/browser"
	"github.com/pkg/errors"
)

// RunConfig describes the external programs used by the run action.
type RunConfig struct {
	Terminal     string   // terminal emulator the program is shown in; empty runs it without one
	TerminalArgs []string // arguments placed before the command, e.g. -hold -e
	Python       string
	Compiler     string
	Elevate      bool   // prefix the program with sudo
	HTMLFile     string // fixed file HTML buffers are written to before opening
}

// DefaultRunConfig returns the programs used when nothing is configured.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Terminal:     "xterm",
		TerminalArgs: []string{"-hold", "-e"},
		Python:       "python3",
		Compiler:     "g++",
		HTMLFile:     filepath.Join(os.TempDir(), "coder-run.html"),
	}
}

// Runner starts the program matching a file's extension. Processes are not waited for by the caller; their output
// goes to the terminal window they run in.
type Runner struct {
	cfg         RunConfig
	log         *log.Logger
	start       func(cmd *exec.Cmd) error
	openBrowser func(path string) error
}

// NewRunner returns a runner for cfg logging to logger.
func NewRunner(cfg RunConfig, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	r := &Runner{cfg: cfg, log: logger, openBrowser: browser.OpenFile}
	r.start = r.startDetached
	return r
}

// Run runs the saved file at path. The title is the tab's label and decides the kind of program; text is the
// buffer content, used for HTML.
func (r *Runner) Run(path, title, text string) error {
	ext := filepath.Ext(title)
	if ext == "" {
		ext = filepath.Ext(path)
	}

	switch strings.ToLower(ext) {
	case ".py":
		return r.start(r.terminal(r.elevate(r.cfg.Python, path)))
	case ".cpp":
		exe := filepath.Join(filepath.Dir(path), strings.TrimSuffix(title, ext))
		// names are passed as positional parameters and never become part of the script
		script := `"$1" "$2" -o "$3" && "$3"`
		if r.cfg.Elevate {
			script = `"$1" "$2" -o "$3" && sudo "$3"`
		}
		return r.start(r.terminal([]string{"sh", "-c", script, "sh", r.cfg.Compiler, path, exe}))
	case ".html":
		if err := os.WriteFile(r.cfg.HTMLFile, []byte(text), 0644); err != nil {
			return &FileError{Op: "run", Path: r.cfg.HTMLFile, Kind: ErrIO, Err: err}
		}
		return errors.Wrap(r.openBrowser(r.cfg.HTMLFile), "open browser")
	default:
		return errors.Wrap(ErrRunUnsupported, title)
	}
}

func (r *Runner) elevate(argv ...string) []string {
	if r.cfg.Elevate {
		return append([]string{"sudo"}, argv...)
	}
	return argv
}

func (r *Runner) terminal(argv []string) *exec.Cmd {
	if r.cfg.Terminal == "" {
		return exec.Command(argv[0], argv[1:]...)
	}
	args := append(append([]string(nil), r.cfg.TerminalArgs...), argv...)
	return exec.Command(r.cfg.Terminal, args...)
}

func (r *Runner) startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return errors.Wrapf(err, "run %s", cmd.Path)
	}
	r.log.Printf("run: started %v (pid %d)", cmd.Args, cmd.Process.Pid)
	go func() {
		if err := cmd.Wait(); err != nil {
			r.log.Printf("run: %v: %v", cmd.Args, err)
		}
	}()
	return nil
}

package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"github.com/prodhe/coder/config"
	"github.com/prodhe/coder/editor"
	"github.com/prodhe/coder/ui"
	"golang.org/x/term"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [file]\n", os.Args[0])
	}
	flag.Parse()
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load(config.Path())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger, closeLog, err := newLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	defer closeLog()

	opts := cfg.SessionOptions()
	opts.Logger = logger
	session := editor.NewSession(opts)
	defer session.Close()

	var iface ui.Interface
	switch cfg.Interface {
	case "cli":
		iface = ui.NewCli(os.Stdin, os.Stdout)
	case "tcell":
		iface = ui.NewTcell(cfg)
	default:
		if term.IsTerminal(int(os.Stdin.Fd())) {
			iface = ui.NewTcell(cfg)
		} else {
			iface = ui.NewCli(os.Stdin, os.Stdout)
		}
	}

	if err := iface.Init(session); err != nil {
		iface.Close()
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	// proper closing and terminal cleanup on exit and error message on a possible panic
	defer func() {
		iface.Close()
		if err := recover(); err != nil {
			buf := make([]byte, 1<<16)
			n := runtime.Stack(buf, true)
			fmt.Println("coder error:", err)
			fmt.Printf("%s", buf[:n])
			os.Exit(1)
		}
	}()

	if flag.NArg() == 1 {
		if _, err := session.OpenInNewTab(flag.Arg(0)); err != nil {
			logger.Printf("open %s: %v", flag.Arg(0), err)
			iface.Alert(err)
		}
	}
	if session.Len() == 0 {
		session.NewTab()
	}
	if cfg.AutoSave.Enabled {
		if err := session.EnableAutoSave(); err != nil {
			logger.Printf("auto-save: %v", err)
		}
	}

	iface.Listen()
}

// newLogger returns a logger appending to path, or one that discards everything when path is empty.
func newLogger(path string) (*log.Logger, func(), error) {
	if path == "" {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	return log.New(f, "coder: ", log.LstdFlags), func() { f.Close() }, nil
}

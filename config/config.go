// Package config reads the editor's TOML configuration.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/prodhe/coder/editor"
)

// EnvPath names the environment variable that overrides the config file location.
const EnvPath = "CODER_CONFIG"

type ColorPair struct {
	FG string `toml:"fg"`
	BG string `toml:"bg"`
}

type Config struct {
	Interface string `toml:"interface"` // "tcell", "cli" or empty to decide by the terminal
	Log       string `toml:"log"`

	Editor struct {
		Tabstop       int    `toml:"tabstop"`
		GutterPadding int    `toml:"gutter_padding"`
		TreeWidth     int    `toml:"tree_width"`
		TreeRoot      string `toml:"tree_root"`
	} `toml:"editor"`

	AutoSave struct {
		IntervalMS int  `toml:"interval_ms"`
		Enabled    bool `toml:"enabled"`
	} `toml:"autosave"`

	Run struct {
		Terminal     string   `toml:"terminal"`
		TerminalArgs []string `toml:"terminal_args"`
		Python       string   `toml:"python"`
		Compiler     string   `toml:"compiler"`
		Elevate      bool     `toml:"elevate"`
		HTMLFile     string   `toml:"html_file"`
	} `toml:"run"`

	Colors struct {
		Body      ColorPair `toml:"body"`
		Gutter    ColorPair `toml:"gutter"`
		Tabs      ColorPair `toml:"tabs"`
		TabActive ColorPair `toml:"tab_active"`
		Tree      ColorPair `toml:"tree"`
		Status    ColorPair `toml:"status"`
		Alert     ColorPair `toml:"alert"`
	} `toml:"colors"`
}

// Default returns the configuration used for everything the file does not set.
func Default() Config {
	var c Config
	c.Editor.Tabstop = 4
	c.Editor.GutterPadding = 1
	c.Editor.TreeWidth = 24
	c.Editor.TreeRoot = "."

	c.AutoSave.IntervalMS = int(editor.DefaultAutoSaveInterval / time.Millisecond)

	run := editor.DefaultRunConfig()
	c.Run.Terminal = run.Terminal
	c.Run.TerminalArgs = run.TerminalArgs
	c.Run.Python = run.Python
	c.Run.Compiler = run.Compiler
	c.Run.HTMLFile = run.HTMLFile

	c.Colors.Body = ColorPair{FG: "black", BG: "#ffffea"}
	c.Colors.Gutter = ColorPair{FG: "black", BG: "lightgray"}
	c.Colors.Tabs = ColorPair{FG: "black", BG: "#eaffff"}
	c.Colors.TabActive = ColorPair{FG: "black", BG: "#8888cc"}
	c.Colors.Tree = ColorPair{FG: "black", BG: "#eaffff"}
	c.Colors.Status = ColorPair{FG: "black", BG: "#eaea9e"}
	c.Colors.Alert = ColorPair{FG: "white", BG: "#aa0000"}
	return c
}

// Path returns the config file location: $CODER_CONFIG, or coder/config.toml in the user config directory.
func Path() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "coder", "config.toml")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Write stores cfg at path, creating its directory.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}

// SessionOptions translates the configuration into session options.
func (c Config) SessionOptions() editor.Options {
	run := editor.RunConfig{
		Terminal:     c.Run.Terminal,
		TerminalArgs: c.Run.TerminalArgs,
		Python:       c.Run.Python,
		Compiler:     c.Run.Compiler,
		Elevate:      c.Run.Elevate,
		HTMLFile:     c.Run.HTMLFile,
	}
	return editor.Options{
		AutoSaveInterval: time.Duration(c.AutoSave.IntervalMS) * time.Millisecond,
		TreeRoot:         c.Editor.TreeRoot,
		Run:              run,
	}
}

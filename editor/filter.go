package editor

import (
	"path/filepath"
	"strings"
)

// Filter is a save dialog file type. An empty Ext matches all files and implies no extension.
type Filter struct {
	Name string
	Ext  string
}

// Filters lists the types offered when saving, in the order they are cycled through.
var Filters = []Filter{
	{"All Files", ""},
	{"Python", ".py"},
	{"C++", ".cpp"},
	{"HTML", ".html"},
	{"CSS", ".css"},
	{"Text file", ".txt"},
	{"Windows batch", ".bat"},
}

// AllFiles is the filter that never adds an extension.
var AllFiles = Filters[0]

func (f Filter) String() string {
	if f.Ext == "" {
		return f.Name + " (*)"
	}
	return f.Name + " (*" + f.Ext + ")"
}

// ParseFilter finds the filter whose label starts the given string, so both "Text file" and
// "Text file (*.txt)" select the text filter. Unknown labels select AllFiles.
func ParseFilter(s string) Filter {
	s = strings.TrimSpace(s)
	if s == "" {
		return AllFiles
	}
	for _, f := range Filters[1:] {
		if strings.HasPrefix(s, f.Name) {
			return f
		}
	}
	return AllFiles
}

// WithExtension appends the filter's extension to name if name has no extension of its own.
func (f Filter) WithExtension(name string) string {
	if f.Ext == "" || filepath.Ext(name) != "" {
		return name
	}
	return name + f.Ext
}

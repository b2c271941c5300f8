package uitcell

import (
	tcell "github.com/gdamore/tcell/v2"
	"github.com/prodhe/coder/config"
)

var (
	// body is the main editing buffer
	bodyStyle        tcell.Style
	bodyCursorStyle  tcell.Style
	bodyHilightStyle tcell.Style

	// gutter is the line number column left of the body
	gutterStyle tcell.Style

	// tab bar on top of the screen
	tabStyle       tcell.Style
	tabActiveStyle tcell.Style

	// file tree panel
	treeStyle         tcell.Style
	treeSelectedStyle tcell.Style

	// status line and prompt at the bottom
	statusStyle        tcell.Style
	statusHilightStyle tcell.Style

	alertStyle tcell.Style

	// vertline separates the tree from the text
	vertlineStyle tcell.Style

	// unprintable rune
	unprintableStyle tcell.Style
)

func pair(c config.ColorPair) tcell.Style {
	return tcell.StyleDefault.
		Foreground(tcell.GetColor(c.FG)).
		Background(tcell.GetColor(c.BG))
}

// initStyles initializes the different styles (colors for background/foreground) from the configured colors.
func initStyles(colors config.Config) error {
	c := colors.Colors

	bodyStyle = pair(c.Body)
	bodyCursorStyle = bodyStyle.
		Background(tcell.NewHexColor(0xeaea9e))
	bodyHilightStyle = bodyStyle.
		Background(tcell.NewHexColor(0xa6a65a))
	unprintableStyle = bodyStyle.
		Foreground(tcell.ColorRed)

	gutterStyle = pair(c.Gutter)

	tabStyle = pair(c.Tabs)
	tabActiveStyle = pair(c.TabActive).Bold(true)

	treeStyle = pair(c.Tree)
	treeSelectedStyle = treeStyle.Reverse(true)

	statusStyle = pair(c.Status)
	statusHilightStyle = statusStyle.Reverse(true)

	alertStyle = pair(c.Alert)

	vertlineStyle = treeStyle

	return nil
}

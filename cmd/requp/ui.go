package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"github.com/frederic-klein/requp/internal/dist"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorWhite  = lipgloss.Color("255")
	colorDim    = lipgloss.Color("240")

	styleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	styleName    = lipgloss.NewStyle().Foreground(colorWhite)
	styleDim     = lipgloss.NewStyle().Foreground(colorDim)
	styleOld     = lipgloss.NewStyle().Foreground(colorRed)
	styleNew     = lipgloss.NewStyle().Foreground(colorGreen)
	styleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconArrow   = "→"
)

func printSuccess(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleIconSuccess.Render(iconSuccess)+" "+fmt.Sprintf(format, args...))
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styleWarning.Render(iconWarning)+" "+styleWarning.Render(fmt.Sprintf(format, args...)))
}

// printUpdates lists updates grouped by file, in the order given.
func printUpdates(w io.Writer, updates []dist.Update) {
	path := ""
	for _, u := range updates {
		if u.Path != path {
			path = u.Path
			fmt.Fprintln(w, styleTitle.Render(path))
		}
		from := u.Current
		if from == "" {
			from = string(u.Kind)
		}
		fmt.Fprintf(w, "  %s %s %s %s\n",
			styleName.Render(u.Name), styleDim.Render(from), styleDim.Render(iconArrow), styleNew.Render(u.Target))
	}
}

// printDiff shows each rewritten line as a removed and an added line.
func printDiff(w io.Writer, updates []dist.Update) {
	for _, u := range updates {
		fmt.Fprintln(w, styleDim.Render(fmt.Sprintf("%s:%d", u.Path, u.Line+1)))
		fmt.Fprintln(w, styleOld.Render("- "+u.Old))
		fmt.Fprintln(w, styleNew.Render("+ "+u.New))
	}
}

func printSkips(w io.Writer, skips []dist.Skip) {
	for _, s := range skips {
		fmt.Fprintf(w, "  %s %s\n", styleDim.Render(s.Name), styleDim.Render("("+s.Reason+")"))
	}
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

package tui

import (
	"fmt"
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{`     _         _`, "#34d399"},
	{`    / \   _ __| |__   ___  _ __`, "#10b981"},
	{`   / _ \ | '__| '_ \ / _ \| '__|`, "#059669"},
	{`  / ___ \| |  | |_) | (_) | |`, "#65a30d"},
	{` /_/   \_\_|  |_.__/ \___/|_|`, "#a16207"},
}

// PrintBanner writes the arbor ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Canopy to trunk: greens fading into bark brown
	fmt.Fprintln(w)
	for _, line := range bannerLines {
		fmt.Fprintln(w, termenv.String(line.text).Foreground(p.Color(line.color)))
	}
	fmt.Fprintln(w)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

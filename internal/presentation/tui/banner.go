package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the MLN banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.EnvColorProfile()
	lines := []struct {
		text, color string
	}{
		{"  __  __ _      _  _ ", "#34d399"},
		{" |  \\/  | |    | \\| |", "#2dd4bf"},
		{" | |\\/| | |__  | .` |", "#22d3ee"},
		{" |_|  |_|____| |_|\\_|", "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}

package tui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"

	"github.com/aretw0/mln/pkg/domain"
)

// Renderer prints inference output. On a terminal it renders Markdown with
// glamour; otherwise it writes the plain engine result format.
type Renderer struct {
	out      io.Writer
	markdown func(string) (string, error)
}

// NewRenderer returns a renderer for out. Glamour is only used when out is
// a terminal and plain is false.
func NewRenderer(out io.Writer, plain bool) *Renderer {
	r := &Renderer{out: out}
	if !plain && IsTerminal(out) {
		r.markdown = newMarkdown()
	}
	return r
}

func newMarkdown() func(string) (string, error) {
	gr, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(0),
	)
	if err != nil {
		return nil
	}
	return gr.Render
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Result prints the atom probabilities of res in atom order.
func (r *Renderer) Result(title string, res domain.Result) error {
	if r.markdown == nil {
		_, err := io.WriteString(r.out, PlainResult(res))
		return err
	}
	return r.render(ResultMarkdown(title, res))
}

// Options prints a list of selectable option names, marking the current one.
func (r *Renderer) Options(title string, names []string, current string) error {
	if r.markdown == nil {
		var b strings.Builder
		for _, n := range names {
			marker := " "
			if n == current {
				marker = "*"
			}
			fmt.Fprintf(&b, "%s %s\n", marker, n)
		}
		_, err := io.WriteString(r.out, b.String())
		return err
	}
	return r.render(OptionsMarkdown(title, names, current))
}

func (r *Renderer) render(md string) error {
	out, err := r.markdown(md)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	_, err = io.WriteString(r.out, out)
	return err
}

// PlainResult formats res the way the engine writes result files: one
// "probability  atom" line per atom.
func PlainResult(res domain.Result) string {
	var b strings.Builder
	for i, atom := range res.Atoms {
		fmt.Fprintf(&b, "%8.3f  %s\n", res.Probabilities[i], atom)
	}
	return b.String()
}

// ResultMarkdown builds a Markdown table for res.
func ResultMarkdown(title string, res domain.Result) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "## %s\n\n", title)
	}
	if len(res.Atoms) == 0 {
		b.WriteString("_No atoms matched the queries._\n")
		return b.String()
	}
	b.WriteString("| Atom | Probability | |\n|---|---:|---|\n")
	for i, atom := range res.Atoms {
		p := res.Probabilities[i]
		fmt.Fprintf(&b, "| `%s` | %.3f | %s |\n", atom, p, bar(p))
	}
	return b.String()
}

// OptionsMarkdown builds a Markdown list of option names.
func OptionsMarkdown(title string, names []string, current string) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "## %s\n\n", title)
	}
	for _, n := range names {
		if n == current {
			fmt.Fprintf(&b, "- **%s** (selected)\n", n)
			continue
		}
		fmt.Fprintf(&b, "- %s\n", n)
	}
	return b.String()
}

const barWidth = 20

func bar(p float64) string {
	n := int(p*barWidth + 0.5)
	return strings.Repeat("█", n) + strings.Repeat("░", barWidth-n)
}

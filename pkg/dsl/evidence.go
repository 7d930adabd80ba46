package dsl

import (
	"strconv"
	"strings"
)

// SectionSeparator separates databases within one evidence text.
const SectionSeparator = "---"

type fact struct {
	atom   string
	negate bool
	degree *float64
}

// Evidence accumulates ground atoms, optionally split into several databases.
type Evidence struct {
	sections [][]fact
}

// NewEvidence creates an evidence builder with one empty database.
func NewEvidence() *Evidence {
	return &Evidence{sections: [][]fact{nil}}
}

// True asserts a ground atom.
func (e *Evidence) True(pred string, args ...string) *Evidence {
	return e.add(fact{atom: Atom(pred, args...)})
}

// False asserts the negation of a ground atom.
func (e *Evidence) False(pred string, args ...string) *Evidence {
	return e.add(fact{atom: Atom(pred, args...), negate: true})
}

// Soft asserts a ground atom with a truth degree in [0,1].
func (e *Evidence) Soft(degree float64, pred string, args ...string) *Evidence {
	return e.add(fact{atom: Atom(pred, args...), degree: &degree})
}

// Next starts a new database.
func (e *Evidence) Next() *Evidence {
	e.sections = append(e.sections, nil)
	return e
}

func (e *Evidence) add(f fact) *Evidence {
	last := len(e.sections) - 1
	e.sections[last] = append(e.sections[last], f)
	return e
}

// String renders the evidence.
func (e *Evidence) String() string {
	var sb strings.Builder
	for i, section := range e.sections {
		if i > 0 {
			sb.WriteString(SectionSeparator + "\n")
		}
		for _, f := range section {
			switch {
			case f.degree != nil:
				sb.WriteString(strconv.FormatFloat(*f.degree, 'g', -1, 64) + " " + f.atom)
			case f.negate:
				sb.WriteString("!" + f.atom)
			default:
				sb.WriteString(f.atom)
			}
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// Atom formats a ground atom or query, e.g. Atom("Friends", "Anna", "Bob").
func Atom(pred string, args ...string) string {
	return pred + "(" + strings.Join(args, ",") + ")"
}

package dsl

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	identPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)
	usePattern   = regexp.MustCompile(`([A-Za-z_]\w*)\s*\(`)
)

type predicate struct {
	name  string
	types []string
}

type formula struct {
	weight float64
	hard   bool
	text   string
}

// Model accumulates predicate declarations and formulas.
type Model struct {
	preds    []predicate
	formulas []formula
}

// NewModel creates an empty model builder.
func NewModel() *Model {
	return &Model{}
}

// Predicate declares a predicate with the given argument types.
func (m *Model) Predicate(name string, types ...string) *Model {
	m.preds = append(m.preds, predicate{name: name, types: types})
	return m
}

// Formula adds a weighted formula.
func (m *Model) Formula(weight float64, text string) *Model {
	m.formulas = append(m.formulas, formula{weight: weight, text: text})
	return m
}

// Hard adds a hard constraint.
func (m *Model) Hard(text string) *Model {
	m.formulas = append(m.formulas, formula{hard: true, text: text})
	return m
}

// Build validates the model and renders it.
func (m *Model) Build() (string, error) {
	if err := m.validate(); err != nil {
		return "", err
	}
	return m.String(), nil
}

func (m *Model) validate() error {
	if len(m.preds) == 0 {
		return errors.New("model declares no predicates")
	}

	declared := make(map[string]bool, len(m.preds))
	for _, p := range m.preds {
		if !identPattern.MatchString(p.name) {
			return fmt.Errorf("invalid predicate name %q", p.name)
		}
		if declared[p.name] {
			return fmt.Errorf("predicate %s declared twice", p.name)
		}
		if len(p.types) == 0 {
			return fmt.Errorf("predicate %s has no arguments", p.name)
		}
		for _, t := range p.types {
			if !identPattern.MatchString(strings.TrimSuffix(t, "!")) {
				return fmt.Errorf("predicate %s: invalid type %q", p.name, t)
			}
		}
		declared[p.name] = true
	}

	for _, f := range m.formulas {
		uses := usePattern.FindAllStringSubmatch(f.text, -1)
		if len(uses) == 0 {
			return fmt.Errorf("formula %q uses no predicates", f.text)
		}
		for _, u := range uses {
			if !declared[u[1]] {
				return fmt.Errorf("formula %q uses undeclared predicate %s", f.text, u[1])
			}
		}
	}
	return nil
}

// String renders the model without validating it.
func (m *Model) String() string {
	var sb strings.Builder
	for _, p := range m.preds {
		fmt.Fprintf(&sb, "%s(%s)\n", p.name, strings.Join(p.types, ", "))
	}
	if len(m.formulas) > 0 && len(m.preds) > 0 {
		sb.WriteString("\n")
	}
	for _, f := range m.formulas {
		if f.hard {
			fmt.Fprintf(&sb, "%s.\n", strings.TrimSuffix(f.text, "."))
			continue
		}
		fmt.Fprintf(&sb, "%s %s\n", strconv.FormatFloat(f.weight, 'g', -1, 64), f.text)
	}
	return sb.String()
}

// Package validator holds the shared struct validator used for query
// configuration files and stored projects.
package validator

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	playground "github.com/go-playground/validator/v10"

	"github.com/aretw0/mln/pkg/adapters/loam"
	"github.com/aretw0/mln/pkg/domain"
)

var validate *playground.Validate

// queryPattern accepts a predicate name or a ground atom, e.g. "Smokes" or
// "Smokes(Anna)".
var queryPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*(\([^()]+\))?$`)

func init() {
	validate = playground.New(playground.WithRequiredStructEnabled())
	_ = validate.RegisterValidation("mln_logic", oneOfNames(domain.LogicNames()))
	_ = validate.RegisterValidation("mln_grammar", oneOfNames(domain.GrammarNames()))
	_ = validate.RegisterValidation("mln_query", func(fl playground.FieldLevel) bool {
		return queryPattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
}

func oneOfNames(names []string) playground.Func {
	return func(fl playground.FieldLevel) bool {
		return slices.Contains(names, fl.Field().String())
	}
}

// Struct validates v against its `validate` tags and flattens failures into
// a single readable error.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs playground.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("%w: %s", domain.ErrInvalidOption, strings.Join(msgs, "; "))
}

func describe(fe playground.FieldError) string {
	field := fe.Namespace()
	if i := strings.IndexByte(field, '.'); i >= 0 {
		field = field[i+1:]
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "mln_logic":
		return fmt.Sprintf("%s: unknown logic %q", field, fe.Value())
	case "mln_grammar":
		return fmt.Sprintf("%s: unknown grammar %q", field, fe.Value())
	case "mln_query":
		return fmt.Sprintf("%s: malformed query %q", field, fe.Value())
	case "file":
		return fmt.Sprintf("%s: no such file %q", field, fe.Value())
	case "excluded_with":
		return fmt.Sprintf("%s cannot be combined with %s", field, fe.Param())
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}

type projectRules struct {
	Model    string   `validate:"required"`
	Database string   `validate:"required"`
	File     string   `validate:"omitempty,file"`
	Logic    string   `validate:"omitempty,mln_logic"`
	Grammar  string   `validate:"omitempty,mln_grammar"`
	Queries  []string `validate:"required,min=1,dive,mln_query"`
	CWPreds  []string `validate:"dive,required"`
	MaxSteps int      `validate:"gte=0"`
	Chains   int      `validate:"gte=0"`
}

// Project checks that a stored project can be applied to a controller
// without touching the engine. Method names are not checked here because
// they are only known after discovery.
func Project(p *loam.Project) error {
	rules := projectRules{
		Model:    strings.TrimSpace(p.Model),
		Database: p.Database,
		Logic:    p.Logic,
		Grammar:  p.Grammar,
		Queries:  p.Queries,
		CWPreds:  p.ClosedWorldPredicates,
		MaxSteps: p.MaxSteps,
		Chains:   p.Chains,
	}
	if p.DatabaseIsFile {
		rules.File = p.Database
	}
	if err := Struct(rules); err != nil {
		return fmt.Errorf("project %s: %w", p.ID, err)
	}
	return nil
}

package loam

import (
	"context"
	"fmt"

	"github.com/aretw0/mln/pkg/domain"
)

// Project is a stored inference configuration: a model, its evidence and
// the parameters to query it with.
type Project struct {
	ID          string
	Name        string
	Description string

	Model          string
	Database       string
	DatabaseIsFile bool

	Method  string
	Logic   string
	Grammar string

	Queries               []string
	ClosedWorldPredicates []string
	MaxSteps              int
	Chains                int
	MultiCore             bool
	Verbose               bool
	MergeDatabases        bool
}

// Target is the part of a controller a Project configures.
type Target interface {
	SelectMethod(ctx context.Context, name string) (bool, error)
	SelectLogic(name string) (bool, error)
	SelectGrammar(name string) (bool, error)
	SetModel(text string) error
	SetDatabase(ref string, isFile bool) error
	SetQuery(queries []string) error
	SetClosedWorldPredicates(preds []string) error
	SetMaxSteps(n int) error
	SetNumChains(n int) error
	SetUseMultiCore(on bool) error
	SetVerbose(on bool) error
	SetMergeDatabases(on bool) error
}

// Apply configures an initialized controller with the project.
// Empty method, logic and grammar keep the controller's current selection.
func (p *Project) Apply(ctx context.Context, t Target) error {
	if p.Method != "" {
		if err := selectOption("method", p.Method, func(name string) (bool, error) {
			return t.SelectMethod(ctx, name)
		}); err != nil {
			return err
		}
	}
	if p.Logic != "" {
		if err := selectOption("logic", p.Logic, t.SelectLogic); err != nil {
			return err
		}
	}
	if p.Grammar != "" {
		if err := selectOption("grammar", p.Grammar, t.SelectGrammar); err != nil {
			return err
		}
	}

	steps := []func() error{
		func() error { return t.SetModel(p.Model) },
		func() error { return t.SetDatabase(p.Database, p.DatabaseIsFile) },
		func() error { return t.SetQuery(p.Queries) },
		func() error { return t.SetClosedWorldPredicates(p.ClosedWorldPredicates) },
		func() error { return t.SetMaxSteps(p.MaxSteps) },
		func() error { return t.SetNumChains(p.Chains) },
		func() error { return t.SetUseMultiCore(p.MultiCore) },
		func() error { return t.SetVerbose(p.Verbose) },
		func() error { return t.SetMergeDatabases(p.MergeDatabases) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("apply project %s: %w", p.ID, err)
		}
	}
	return nil
}

func selectOption(kind, name string, sel func(string) (bool, error)) error {
	ok, err := sel(name)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unknown %s %q", domain.ErrInvalidOption, kind, name)
	}
	return nil
}

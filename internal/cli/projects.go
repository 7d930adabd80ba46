package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/aretw0/mln/internal/validator"
	"github.com/aretw0/mln/pkg/adapters/loam"
)

type projectJSON struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Method  string   `json:"method,omitempty"`
	Queries []string `json:"queries"`
}

// ListProjects prints the projects stored in dir.
func (a *App) ListProjects(ctx context.Context, dir string) error {
	loader, err := loam.Open(dir)
	if err != nil {
		return err
	}
	projects, err := loader.List(ctx)
	if err != nil {
		return err
	}

	if a.opts.JSON {
		out := make([]projectJSON, len(projects))
		for i, p := range projects {
			out[i] = projectJSON{ID: p.ID, Name: p.Name, Method: p.Method, Queries: p.Queries}
		}
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tMETHOD\tQUERIES")
	for _, p := range projects {
		method := p.Method
		if method == "" {
			method = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, method, strings.Join(p.Queries, ", "))
	}
	return w.Flush()
}

// CheckProjects validates every project in dir and reports all failures.
func (a *App) CheckProjects(ctx context.Context, dir string) error {
	loader, err := loam.Open(dir)
	if err != nil {
		return err
	}
	projects, err := loader.List(ctx)
	if err != nil {
		return err
	}

	var errs []error
	for _, p := range projects {
		if err := validator.Project(p); err != nil {
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(a.out, "ok  %s\n", p.ID)
	}
	return errors.Join(errs...)
}

// RunProject runs the stored project id from dir.
func (a *App) RunProject(ctx context.Context, dir, id string) error {
	loader, err := loam.Open(dir)
	if err != nil {
		return err
	}
	project, err := loader.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := validator.Project(project); err != nil {
		return err
	}
	choice, err := a.resolveEngine(nil)
	if err != nil {
		return err
	}
	return a.run(ctx, choice, project)
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aretw0/mln"
	"github.com/aretw0/mln/internal/config"
	"github.com/aretw0/mln/pkg/adapters/loam"
	"github.com/aretw0/mln/pkg/domain"
)

type atomJSON struct {
	Atom        string  `json:"atom"`
	Probability float64 `json:"probability"`
}

type resultJSON struct {
	Session string     `json:"session"`
	Project string     `json:"project"`
	Method  string     `json:"method"`
	Atoms   []atomJSON `json:"atoms"`
}

// Infer runs the query file at path, with o applied on top, and prints its
// result. An empty path runs o alone.
func (a *App) Infer(ctx context.Context, path string, o config.Overrides) error {
	cfg, err := config.LoadWithOverrides(path, o)
	if err != nil {
		return err
	}
	project, err := cfg.Project()
	if err != nil {
		return err
	}
	choice, err := a.resolveEngine(cfg)
	if err != nil {
		return err
	}
	return a.run(ctx, choice, project)
}

// run applies project to a fresh session and infers once.
func (a *App) run(ctx context.Context, choice engineChoice, project *loam.Project) error {
	svc, err := createService(choice, a.logger)
	if err != nil {
		return err
	}
	mgr := a.newManager(svc, project.Name)

	id := a.opts.SessionID
	if id == "" {
		id = project.ID
	}
	if _, err := mgr.Open(ctx, id); err != nil {
		return err
	}
	defer mgr.Close(id)

	var (
		res    domain.Result
		method string
	)
	err = mgr.WithSession(ctx, id, func(ctx context.Context, ctl *mln.Controller) error {
		if err := project.Apply(ctx, ctl); err != nil {
			return err
		}
		if method, err = ctl.Method(); err != nil {
			return err
		}
		a.logger.Info("running inference", "project", project.ID, "method", method, "queries", project.Queries)
		res, err = ctl.Infer(ctx)
		return err
	})
	if err != nil {
		return err
	}
	return a.printResult(id, project, method, res)
}

func (a *App) printResult(sessionID string, project *loam.Project, method string, res domain.Result) error {
	if !a.opts.JSON {
		return a.renderer.Result(fmt.Sprintf("%s (%s)", project.Name, method), res)
	}
	out := resultJSON{
		Session: sessionID,
		Project: project.ID,
		Method:  method,
		Atoms:   make([]atomJSON, len(res.Atoms)),
	}
	for i, atom := range res.Atoms {
		out.Atoms[i] = atomJSON{Atom: atom, Probability: res.Probabilities[i]}
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

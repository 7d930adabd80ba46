package cli

import (
	"context"
	"encoding/json"

	"github.com/aretw0/mln"
)

type optionsJSON struct {
	Methods  []string `json:"methods"`
	Logics   []string `json:"logics"`
	Grammars []string `json:"grammars"`
	Default  string   `json:"default_method"`
}

// Methods initializes the configured engine and lists what it offers.
func (a *App) Methods(ctx context.Context) error {
	choice, err := a.resolveEngine(nil)
	if err != nil {
		return err
	}
	svc, err := createService(choice, a.logger)
	if err != nil {
		return err
	}
	ctl, err := mln.New(svc, append(a.controllerOptions(""), mln.WithLogger(a.logger))...)
	if err != nil {
		return err
	}
	if err := ctl.Initialize(ctx); err != nil {
		return err
	}

	var out optionsJSON
	if out.Methods, err = ctl.Methods(); err != nil {
		return err
	}
	if out.Default, err = ctl.Method(); err != nil {
		return err
	}
	if out.Logics, err = ctl.Logics(); err != nil {
		return err
	}
	if out.Grammars, err = ctl.Grammars(); err != nil {
		return err
	}
	logic, _ := ctl.Logic()
	grammar, _ := ctl.Grammar()

	if a.opts.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	if err := a.renderer.Options("Methods", out.Methods, out.Default); err != nil {
		return err
	}
	if err := a.renderer.Options("Logics", out.Logics, logic); err != nil {
		return err
	}
	return a.renderer.Options("Grammars", out.Grammars, grammar)
}

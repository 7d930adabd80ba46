/*
Package mln is a stateful controller for Markov Logic Network inference engines.

A Controller holds a model, an evidence database and inference parameters for one
session. It compiles the model and the evidence into engine artifacts lazily, only
when their inputs changed, dispatches the selected inference method, and returns
the ground atom probabilities sorted by atom name.

# Concept

The engine is reached only through ports.InferenceService. Two implementations
ship with the module:

  - pkg/adapters/memory: an in-process engine for tests and dry runs.
  - pkg/adapters/process: a bridge to an external engine (for example pracmln)
    that exchanges one JSON document per call over stdin/stdout.

# Usage

	engine := memory.New()
	ctl, err := mln.New(engine)
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	if err := ctl.Initialize(ctx); err != nil {
		log.Fatal(err)
	}

	ctl.SetModel(modelText)
	ctl.SetDatabase("smokers.db", true)
	ctl.SetQuery([]string{"Cancer"})
	ctl.SelectMethod(ctx, "MCSAT")

	res, err := ctl.Infer(ctx)
	for i, atom := range res.Atoms {
		fmt.Println(atom, res.Probabilities[i])
	}

# Invalidation

Setting the model, or changing the logic or grammar, invalidates both compiled
artifacts. Setting the database invalidates only the database artifact.
Parameter changes and method selection never trigger recompilation.

# Errors

Every operation other than Initialize fails with domain.ErrUninitialized until
initialization succeeded. Compilation failures wrap domain.ErrCompilation and
engine failures during inference wrap domain.ErrInference.
*/
package mln

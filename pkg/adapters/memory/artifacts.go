package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

type methodHandle struct {
	id     string
	engine *Engine
}

func (h *methodHandle) ID() string { return h.id }

type model struct {
	engine   *Engine
	logic    string
	grammar  string
	preds    map[string]int
	formulas int
}

// Fingerprint lists the declared predicates, the formula count, logic and grammar.
func (m *model) Fingerprint() string {
	names := make([]string, 0, len(m.preds))
	for name, arity := range m.preds {
		names = append(names, fmt.Sprintf("%s/%d", name, arity))
	}
	sort.Strings(names)
	return fmt.Sprintf("%s;%s;%s;formulas=%d", strings.Join(names, ","), m.logic, m.grammar, m.formulas)
}

type database struct {
	model    *model
	source   string
	index    int
	evidence evidence
}

func (d *database) Fingerprint() string {
	return fmt.Sprintf("%s#%d(%d atoms)", d.source, d.index, len(d.evidence))
}

type resultHandle struct {
	engine    *Engine
	probs     map[string]float64
	executed  bool
	persisted bool
}

func (r *resultHandle) Execute(ctx context.Context) error {
	if err := r.engine.enter(OpExecute); err != nil {
		return err
	}
	r.executed = true
	return nil
}

func (r *resultHandle) Persist(ctx context.Context) error {
	if err := r.engine.enter(OpPersist); err != nil {
		return err
	}
	if !r.executed {
		return fmt.Errorf("persist before execute")
	}
	r.persisted = true
	return nil
}

func (r *resultHandle) AtomProbabilities() (map[string]float64, error) {
	if err := r.engine.enter(OpResults); err != nil {
		return nil, err
	}
	if !r.executed {
		return nil, fmt.Errorf("results requested before execute")
	}
	out := make(map[string]float64, len(r.probs))
	for k, v := range r.probs {
		out[k] = v
	}
	return out, nil
}

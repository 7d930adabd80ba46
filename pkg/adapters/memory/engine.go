// Package memory provides an in-process inference engine for tests, examples
// and dry runs. It understands just enough MLN syntax to validate models and
// evidence, and answers queries from the evidence instead of sampling.
package memory

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
)

// DefaultMethods mirrors the method registry of pracmln.
var DefaultMethods = []string{"GibbsSampler", "MCSAT", "EnumerationAsk", "WCSPInference", "SAMaxWalkSAT"}

// Prior is reported for queried atoms that have no evidence.
const Prior = 0.5

// Op names an engine call for counting and failure injection.
type Op string

const (
	OpDiscover         Op = "discover"
	OpInstantiate      Op = "instantiate"
	OpLoadModel        Op = "load_model"
	OpLoadDatabaseFile Op = "load_database_file"
	OpParseDatabase    Op = "parse_database"
	OpRun              Op = "run"
	OpExecute          Op = "execute"
	OpPersist          Op = "persist"
	OpResults          Op = "results"
)

// Engine implements ports.InferenceService in memory.
// Safe for concurrent use.
type Engine struct {
	mu sync.Mutex

	methods  []string
	results  map[string]float64
	calls    map[Op]int
	failures map[Op]error
	last     *ports.InferenceRequest

	noDatabases bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithMethods replaces the discoverable method identifiers.
func WithMethods(ids ...string) Option {
	return func(e *Engine) {
		e.methods = append([]string(nil), ids...)
	}
}

// WithResults makes every inference report exactly these probabilities,
// regardless of queries and evidence. Values are not validated.
func WithResults(probs map[string]float64) Option {
	return func(e *Engine) {
		e.results = make(map[string]float64, len(probs))
		for k, v := range probs {
			e.results[k] = v
		}
	}
}

// WithoutDatabases makes every database load succeed with zero databases.
func WithoutDatabases() Option {
	return func(e *Engine) {
		e.noDatabases = true
	}
}

// New creates an in-memory engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		methods:  append([]string(nil), DefaultMethods...),
		calls:    make(map[Op]int),
		failures: make(map[Op]error),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fail makes every subsequent call of op return err. A nil err clears it.
func (e *Engine) Fail(op Op, err error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err == nil {
		delete(e.failures, op)
		return
	}
	e.failures[op] = err
}

// Calls returns how many times op was invoked, failed calls included.
func (e *Engine) Calls(op Op) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[op]
}

// LastRequest returns the most recent RunInference request.
func (e *Engine) LastRequest() (ports.InferenceRequest, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return ports.InferenceRequest{}, false
	}
	return *e.last, true
}

func (e *Engine) enter(op Op) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls[op]++
	return e.failures[op]
}

// DiscoverMethods implements ports.InferenceService.
func (e *Engine) DiscoverMethods(ctx context.Context) ([]string, error) {
	if err := e.enter(OpDiscover); err != nil {
		return nil, err
	}
	return append([]string(nil), e.methods...), nil
}

// InstantiateMethod implements ports.InferenceService.
func (e *Engine) InstantiateMethod(ctx context.Context, id string) (ports.MethodHandle, error) {
	if err := e.enter(OpInstantiate); err != nil {
		return nil, err
	}
	for _, m := range e.methods {
		if m == id {
			return &methodHandle{id: id, engine: e}, nil
		}
	}
	return nil, fmt.Errorf("unknown inference method %q", id)
}

// LoadModel implements ports.InferenceService.
func (e *Engine) LoadModel(ctx context.Context, text, logic, grammar string) (ports.ModelArtifact, error) {
	if err := e.enter(OpLoadModel); err != nil {
		return nil, err
	}
	if !contains(domain.LogicNames(), logic) {
		return nil, fmt.Errorf("unsupported logic %q", logic)
	}
	if !contains(domain.GrammarNames(), grammar) {
		return nil, fmt.Errorf("unsupported grammar %q", grammar)
	}
	preds, formulas, err := parseModel(text)
	if err != nil {
		return nil, err
	}
	return &model{
		engine:   e,
		logic:    logic,
		grammar:  grammar,
		preds:    preds,
		formulas: formulas,
	}, nil
}

// LoadDatabaseFile implements ports.InferenceService.
func (e *Engine) LoadDatabaseFile(ctx context.Context, m ports.ModelArtifact, path string) ([]ports.DatabaseArtifact, error) {
	if err := e.enter(OpLoadDatabaseFile); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read database: %w", err)
	}
	return e.databases(m, string(data), path)
}

// ParseDatabase implements ports.InferenceService.
func (e *Engine) ParseDatabase(ctx context.Context, m ports.ModelArtifact, text string) ([]ports.DatabaseArtifact, error) {
	if err := e.enter(OpParseDatabase); err != nil {
		return nil, err
	}
	return e.databases(m, text, "inline")
}

func (e *Engine) databases(m ports.ModelArtifact, text, source string) ([]ports.DatabaseArtifact, error) {
	mdl, err := e.ownModel(m)
	if err != nil {
		return nil, err
	}
	if e.noDatabases {
		return []ports.DatabaseArtifact{}, nil
	}
	parsed, err := parseEvidence(text, mdl.preds)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	out := make([]ports.DatabaseArtifact, len(parsed))
	for i, ev := range parsed {
		out[i] = &database{model: mdl, source: source, index: i, evidence: ev}
	}
	return out, nil
}

// RunInference implements ports.InferenceService.
func (e *Engine) RunInference(ctx context.Context, req ports.InferenceRequest) (ports.ResultHandle, error) {
	if err := e.enter(OpRun); err != nil {
		return nil, err
	}

	e.mu.Lock()
	r := req
	r.Settings = req.Settings.Clone()
	e.last = &r
	e.mu.Unlock()

	mdl, err := e.ownModel(req.Model)
	if err != nil {
		return nil, err
	}
	db, ok := req.Database.(*database)
	if !ok || db == nil {
		return nil, fmt.Errorf("database artifact was not created by this engine")
	}
	if db.model != mdl {
		return nil, fmt.Errorf("database %s was built against a different model", db.Fingerprint())
	}
	if h, ok := req.Method.(*methodHandle); !ok || h == nil || h.engine != e {
		return nil, fmt.Errorf("method handle was not created by this engine")
	}

	probs := e.fixedResults()
	if probs == nil {
		probs, err = answer(mdl, db.evidence, req.Settings)
		if err != nil {
			return nil, err
		}
	}
	return &resultHandle{engine: e, probs: probs}, nil
}

func (e *Engine) fixedResults() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.results == nil {
		return nil
	}
	out := make(map[string]float64, len(e.results))
	for k, v := range e.results {
		out[k] = v
	}
	return out
}

func (e *Engine) ownModel(m ports.ModelArtifact) (*model, error) {
	mdl, ok := m.(*model)
	if !ok || mdl == nil || mdl.engine != e {
		return nil, fmt.Errorf("model artifact was not created by this engine")
	}
	return mdl, nil
}

// answer resolves each query against the evidence. A query is either a
// ground atom or a bare predicate name standing for all of its known atoms.
// Unknown atoms get 0 under the closed-world assumption and Prior otherwise.
func answer(mdl *model, ev evidence, settings domain.Settings) (map[string]float64, error) {
	closed := make(map[string]bool, len(settings.ClosedWorldPredicates))
	for _, p := range settings.ClosedWorldPredicates {
		closed[p] = true
	}

	probs := make(map[string]float64)
	for _, q := range settings.Queries {
		q = strings.TrimSpace(q)
		if name, args, ok := splitAtom(q); ok {
			if err := checkArity(name, len(args), mdl.preds); err != nil {
				return nil, fmt.Errorf("query %q: %w", q, err)
			}
			atom := canonicalAtom(name, args)
			switch p, known := ev[atom]; {
			case known:
				probs[atom] = p
			case closed[name]:
				probs[atom] = 0
			default:
				probs[atom] = Prior
			}
			continue
		}

		if _, ok := mdl.preds[q]; !ok {
			return nil, fmt.Errorf("query %q: undeclared predicate", q)
		}
		for atom, p := range ev {
			if strings.HasPrefix(atom, q+"(") {
				probs[atom] = p
			}
		}
	}
	return probs, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

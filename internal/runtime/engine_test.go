package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mln/internal/runtime"
	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = `
Smokes(person)
Cancer(person)
Friends(person, person)

1.5 Smokes(x) => Cancer(x)
1.1 Friends(x, y) => (Smokes(x) <=> Smokes(y))
`

const evidence = `
Smokes(Anna)
!Smokes(Bob)
Friends(Anna, Bob)
`

func newReady(t *testing.T, opts ...memory.Option) (*runtime.Session, *memory.Engine) {
	t.Helper()
	engine := memory.New(opts...)
	s := runtime.NewSession(engine)
	require.NoError(t, s.Initialize(context.Background()))
	return s, engine
}

func TestSession_Initialize(t *testing.T) {
	ctx := context.Background()
	s, engine := newReady(t)

	assert.Equal(t, domain.StatusReady, s.Status())
	assert.NotEmpty(t, s.ID())

	methods, err := s.Methods()
	require.NoError(t, err)
	assert.Equal(t, memory.DefaultMethods, methods)

	method, err := s.Method()
	require.NoError(t, err)
	assert.Equal(t, "EnumerationAsk", method)

	logic, _ := s.Logic()
	grammar, _ := s.Grammar()
	assert.Equal(t, "FirstOrderLogic", logic)
	assert.Equal(t, "StandardGrammar", grammar)

	logics, _ := s.Logics()
	grammars, _ := s.Grammars()
	assert.Equal(t, []string{"FirstOrderLogic", "FuzzyLogic"}, logics)
	assert.Equal(t, []string{"StandardGrammar", "PRACGrammar"}, grammars)

	settings, err := s.Settings()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings(), settings)

	t.Run("Idempotent", func(t *testing.T) {
		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, 1, engine.Calls(memory.OpDiscover))
		assert.Equal(t, 1, engine.Calls(memory.OpInstantiate))
	})
}

func TestSession_InitializeFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("engine unavailable")
	engine := memory.New()
	engine.Fail(memory.OpDiscover, boom)

	s := runtime.NewSession(engine, runtime.WithSessionID("s-1"))
	err := s.Initialize(ctx)
	require.ErrorIs(t, err, domain.ErrInitialization)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, domain.StatusFailed, s.Status())
	assert.Equal(t, "s-1", s.ID())

	t.Run("Retry succeeds", func(t *testing.T) {
		engine.Fail(memory.OpDiscover, nil)
		require.NoError(t, s.Initialize(ctx))
		assert.Equal(t, domain.StatusReady, s.Status())
	})
}

func TestSession_InitializeTooFewMethods(t *testing.T) {
	s := runtime.NewSession(memory.New(memory.WithMethods("GibbsSampler", "MCSAT")))
	err := s.Initialize(context.Background())
	assert.ErrorIs(t, err, domain.ErrInitialization)
	assert.Equal(t, domain.StatusFailed, s.Status())
}

func TestSession_DefaultMethodInstantiationFails(t *testing.T) {
	engine := memory.New()
	engine.Fail(memory.OpInstantiate, errors.New("no such class"))
	s := runtime.NewSession(engine)
	assert.ErrorIs(t, s.Initialize(context.Background()), domain.ErrInitialization)
}

func TestSession_Uninitialized(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	s := runtime.NewSession(engine)

	checks := map[string]func() error{
		"SelectMethod":             func() error { _, err := s.SelectMethod(ctx, "MCSAT"); return err },
		"SelectLogic":              func() error { _, err := s.SelectLogic("FuzzyLogic"); return err },
		"SelectGrammar":            func() error { _, err := s.SelectGrammar("PRACGrammar"); return err },
		"Method":                   func() error { _, err := s.Method(); return err },
		"Logic":                    func() error { _, err := s.Logic(); return err },
		"Grammar":                  func() error { _, err := s.Grammar(); return err },
		"Methods":                  func() error { _, err := s.Methods(); return err },
		"Logics":                   func() error { _, err := s.Logics(); return err },
		"Grammars":                 func() error { _, err := s.Grammars(); return err },
		"SetModel":                 func() error { return s.SetModel(model) },
		"Model":                    func() error { _, err := s.Model(); return err },
		"SetDatabase":              func() error { return s.SetDatabase(evidence, false) },
		"Database":                 func() error { _, _, err := s.Database(); return err },
		"Dirty":                    func() error { _, _, err := s.Dirty(); return err },
		"SetClosedWorldPredicates": func() error { return s.SetClosedWorldPredicates([]string{"Friends"}) },
		"ClosedWorldPredicates":    func() error { _, err := s.ClosedWorldPredicates(); return err },
		"SetQuery":                 func() error { return s.SetQuery([]string{"Smokes"}) },
		"Queries":                  func() error { _, err := s.Queries(); return err },
		"SetMaxSteps":              func() error { return s.SetMaxSteps(10) },
		"MaxSteps":                 func() error { _, err := s.MaxSteps(); return err },
		"SetNumChains":             func() error { return s.SetNumChains(2) },
		"NumChains":                func() error { _, err := s.NumChains(); return err },
		"SetUseMultiCore":          func() error { return s.SetUseMultiCore(true) },
		"UseMultiCore":             func() error { _, err := s.UseMultiCore(); return err },
		"SetVerbose":               func() error { return s.SetVerbose(true) },
		"Verbose":                  func() error { _, err := s.Verbose(); return err },
		"SetMergeDatabases":        func() error { return s.SetMergeDatabases(true) },
		"MergeDatabases":           func() error { _, err := s.MergeDatabases(); return err },
		"Settings":                 func() error { _, err := s.Settings(); return err },
		"Infer":                    func() error { _, err := s.Infer(ctx); return err },
	}
	for name, call := range checks {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, call(), domain.ErrUninitialized)
		})
	}

	assert.Zero(t, engine.Calls(memory.OpDiscover))
	assert.Zero(t, engine.Calls(memory.OpLoadModel))
	assert.Zero(t, engine.Calls(memory.OpRun))
}

func TestSession_Hooks(t *testing.T) {
	ctx := context.Background()
	var compiled []domain.ArtifactKind
	var inferred []*domain.InferEvent
	var changes []*domain.MethodEvent

	engine := memory.New()
	s := runtime.NewSession(engine,
		runtime.WithSessionID("hooked"),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnCompile:      func(_ context.Context, e *domain.CompileEvent) { compiled = append(compiled, e.Artifact) },
			OnInfer:        func(_ context.Context, e *domain.InferEvent) { inferred = append(inferred, e) },
			OnMethodChange: func(_ context.Context, e *domain.MethodEvent) { changes = append(changes, e) },
		}),
	)
	require.NoError(t, s.Initialize(ctx))
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase(evidence, false))
	require.NoError(t, s.SetQuery([]string{"Smokes"}))

	_, err := s.Infer(ctx)
	require.NoError(t, err)
	_, err = s.Infer(ctx)
	require.NoError(t, err)

	ok, err := s.SelectMethod(ctx, "MCSAT")
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []domain.ArtifactKind{domain.ArtifactModel, domain.ArtifactDatabase}, compiled)
	require.Len(t, inferred, 2)
	assert.Equal(t, "EnumerationAsk", inferred[0].Method)
	assert.Equal(t, 2, inferred[0].Atoms)
	assert.Equal(t, "hooked", inferred[0].SessionID)

	require.Len(t, changes, 2)
	assert.Equal(t, "", changes[0].From)
	assert.Equal(t, "EnumerationAsk", changes[0].To)
	assert.Equal(t, "EnumerationAsk", changes[1].From)
	assert.Equal(t, "MCSAT", changes[1].To)
}

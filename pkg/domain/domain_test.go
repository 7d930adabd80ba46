package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_CloneIsDeep(t *testing.T) {
	s := DefaultSettings()
	s.Queries = []string{"Smokes"}
	s.MaxSteps = PositiveOrNil(100)

	c := s.Clone()
	c.Queries[0] = "Cancer"
	*c.MaxSteps = 5

	assert.Equal(t, "Smokes", s.Queries[0])
	assert.Equal(t, 100, *s.MaxSteps)
	assert.Nil(t, c.NumChains)
	assert.NotNil(t, c.ClosedWorldPredicates)
}

func TestPositiveOrNil(t *testing.T) {
	assert.Nil(t, PositiveOrNil(0))
	assert.Nil(t, PositiveOrNil(-3))
	require.NotNil(t, PositiveOrNil(7))
	assert.Equal(t, 7, *PositiveOrNil(7))

	assert.Equal(t, Unset, ValueOrUnset(nil))
	assert.Equal(t, 7, ValueOrUnset(PositiveOrNil(7)))
}

func TestResult_Probability(t *testing.T) {
	r := Result{
		Atoms:         []string{"Cancer(Anna)", "Smokes(Anna)"},
		Probabilities: []float64{0.25, 1},
	}
	assert.Equal(t, 2, r.Len())

	p, ok := r.Probability("Smokes(Anna)")
	assert.True(t, ok)
	assert.Equal(t, 1.0, p)

	_, ok = r.Probability("Smokes(Bob)")
	assert.False(t, ok)
}

func TestOptionNames(t *testing.T) {
	assert.Equal(t, "FuzzyLogic", LogicFuzzy.String())
	assert.Equal(t, "Logic(?)", Logic(9).String())
	assert.Equal(t, "PRACGrammar", GrammarPRAC.String())
	assert.Equal(t, "Grammar(?)", Grammar(-1).String())

	names := LogicNames()
	names[0] = "mutated"
	assert.Equal(t, "FirstOrderLogic", LogicNames()[0])
}

func TestArtifactState_String(t *testing.T) {
	assert.Equal(t, "dirty", Dirty.String())
	assert.Equal(t, "clean", Clean.String())
}

func TestMerge(t *testing.T) {
	var calls []string
	a := LifecycleHooks{OnInfer: func(context.Context, *InferEvent) { calls = append(calls, "a") }}
	b := LifecycleHooks{
		OnInfer:   func(context.Context, *InferEvent) { calls = append(calls, "b") },
		OnCompile: func(context.Context, *CompileEvent) { calls = append(calls, "compile") },
	}

	h := Merge(a, b)
	h.OnInfer(context.Background(), &InferEvent{})
	h.OnCompile(context.Background(), &CompileEvent{})
	h.OnMethodChange(context.Background(), &MethodEvent{})

	assert.Equal(t, []string{"a", "b", "compile"}, calls)
}

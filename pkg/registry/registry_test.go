package registry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticMethods struct {
	ids []string
	err error
}

func (s staticMethods) DiscoverMethods(ctx context.Context) ([]string, error) {
	return s.ids, s.err
}

func TestOptions_Lookup(t *testing.T) {
	opts, err := registry.NewOptions[domain.Method]([]string{"A", "B", "C"})
	require.NoError(t, err)

	t.Run("Exact Match", func(t *testing.T) {
		for i, name := range []string{"A", "B", "C"} {
			tag, ok := opts.Lookup(name)
			assert.True(t, ok)
			assert.Equal(t, domain.Method(i), tag)
			assert.Equal(t, name, opts.Name(tag))
		}
	})

	t.Run("No Case Folding Or Prefix", func(t *testing.T) {
		for _, name := range []string{"a", "", "A ", "AB"} {
			_, ok := opts.Lookup(name)
			assert.False(t, ok, "%q must not match", name)
		}
	})

	t.Run("Out Of Range Name", func(t *testing.T) {
		assert.Equal(t, "", opts.Name(-1))
		assert.Equal(t, "", opts.Name(3))
	})

	t.Run("Names Is A Copy", func(t *testing.T) {
		names := opts.Names()
		names[0] = "mutated"
		assert.Equal(t, "A", opts.Name(0))
	})
}

func TestNewOptions_Rejects(t *testing.T) {
	_, err := registry.NewOptions[domain.Logic](nil)
	assert.Error(t, err)

	_, err = registry.NewOptions[domain.Logic]([]string{"X", "X"})
	assert.Error(t, err)
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()

	t.Run("Preserves Engine Order", func(t *testing.T) {
		ids := []string{"GibbsSampler", "MCSAT", "EnumerationAsk", "WCSPInference", "SAMaxWalkSAT"}
		cat, err := registry.Discover(ctx, staticMethods{ids: ids})
		require.NoError(t, err)
		assert.Equal(t, ids, cat.Methods.Names())
		assert.Equal(t, []string{"FirstOrderLogic", "FuzzyLogic"}, cat.Logics.Names())
		assert.Equal(t, []string{"StandardGrammar", "PRACGrammar"}, cat.Grammars.Names())
	})

	t.Run("Engine Error", func(t *testing.T) {
		boom := errors.New("import failed")
		_, err := registry.Discover(ctx, staticMethods{err: boom})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("Too Few Methods For Default", func(t *testing.T) {
		_, err := registry.Discover(ctx, staticMethods{ids: []string{"A", "B"}})
		assert.Error(t, err)
	})
}

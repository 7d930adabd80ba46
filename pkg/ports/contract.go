package ports

import (
	"context"
	"testing"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContractFixture provides engine inputs an adapter under test is expected to accept.
type ContractFixture struct {
	Model    string
	Database string
	Queries  []string
}

// RunInferenceServiceContract runs a suite of tests to verify that an
// InferenceService implementation adheres to the interface contract.
func RunInferenceServiceContract(t *testing.T, svc InferenceService, fx ContractFixture) {
	t.Helper()
	ctx := context.Background()

	var methods []string

	t.Run("DiscoverMethods", func(t *testing.T) {
		var err error
		methods, err = svc.DiscoverMethods(ctx)
		require.NoError(t, err)
		require.Greater(t, len(methods), int(domain.DefaultMethod), "engine must report the default method")

		again, err := svc.DiscoverMethods(ctx)
		require.NoError(t, err)
		assert.Equal(t, methods, again, "method order must be stable")
	})

	t.Run("InstantiateMethod", func(t *testing.T) {
		for _, id := range methods {
			h, err := svc.InstantiateMethod(ctx, id)
			require.NoError(t, err, "method %s", id)
			assert.Equal(t, id, h.ID())
		}

		_, err := svc.InstantiateMethod(ctx, "no-such-method")
		assert.Error(t, err)
	})

	t.Run("Load and Infer", func(t *testing.T) {
		model, err := svc.LoadModel(ctx, fx.Model, domain.LogicFirstOrder.String(), domain.GrammarStandard.String())
		require.NoError(t, err)
		require.NotNil(t, model)

		dbs, err := svc.ParseDatabase(ctx, model, fx.Database)
		require.NoError(t, err)
		require.NotEmpty(t, dbs)

		method, err := svc.InstantiateMethod(ctx, methods[domain.DefaultMethod])
		require.NoError(t, err)

		settings := domain.DefaultSettings()
		settings.Queries = fx.Queries

		res, err := svc.RunInference(ctx, InferenceRequest{
			Model:    model,
			Database: dbs[0],
			Method:   method,
			Settings: settings,
		})
		require.NoError(t, err)
		require.NoError(t, res.Execute(ctx))
		require.NoError(t, res.Persist(ctx))

		probs, err := res.AtomProbabilities()
		require.NoError(t, err)
		for atom, p := range probs {
			assert.NotEmpty(t, atom)
			assert.GreaterOrEqual(t, p, 0.0, atom)
			assert.LessOrEqual(t, p, 1.0, atom)
		}
	})
}

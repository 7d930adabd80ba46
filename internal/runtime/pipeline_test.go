package runtime_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Invalidation(t *testing.T) {
	ctx := context.Background()
	s, engine := newReady(t)

	m, d, err := s.Dirty()
	require.NoError(t, err)
	assert.True(t, m, "nothing compiled yet")
	assert.True(t, d)

	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase(evidence, false))
	_, err = s.Infer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Calls(memory.OpLoadModel))
	assert.Equal(t, 1, engine.Calls(memory.OpParseDatabase))

	t.Run("Clean state skips compilation", func(t *testing.T) {
		_, err := s.Infer(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, engine.Calls(memory.OpLoadModel))
		assert.Equal(t, 1, engine.Calls(memory.OpParseDatabase))
		assert.Equal(t, 2, engine.Calls(memory.OpRun))
	})

	t.Run("Database change rebuilds only the database", func(t *testing.T) {
		require.NoError(t, s.SetDatabase("Smokes(Carl)", false))
		m, d, _ := s.Dirty()
		assert.False(t, m)
		assert.True(t, d)

		_, err := s.Infer(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, engine.Calls(memory.OpLoadModel))
		assert.Equal(t, 2, engine.Calls(memory.OpParseDatabase))
	})

	t.Run("Model change rebuilds both", func(t *testing.T) {
		require.NoError(t, s.SetModel(model))
		m, d, _ := s.Dirty()
		assert.True(t, m)
		assert.True(t, d)

		_, err := s.Infer(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, engine.Calls(memory.OpLoadModel))
		assert.Equal(t, 3, engine.Calls(memory.OpParseDatabase))
	})

	t.Run("Getters return the inputs", func(t *testing.T) {
		text, err := s.Model()
		require.NoError(t, err)
		assert.Equal(t, model, text)
		ref, isFile, err := s.Database()
		require.NoError(t, err)
		assert.Equal(t, "Smokes(Carl)", ref)
		assert.False(t, isFile)
	})
}

func TestSession_ModelCompilationFailure(t *testing.T) {
	ctx := context.Background()
	s, engine := newReady(t)
	require.NoError(t, s.SetModel("Smokes(person)\n1.0 Smokes(x) => Cancer(x)"))
	require.NoError(t, s.SetDatabase(evidence, false))

	res, err := s.Infer(ctx)
	require.ErrorIs(t, err, domain.ErrCompilation)
	assert.Zero(t, res.Len())
	assert.Zero(t, engine.Calls(memory.OpParseDatabase), "database never built against a stale model")
	assert.Zero(t, engine.Calls(memory.OpRun))

	m, d, _ := s.Dirty()
	assert.True(t, m)
	assert.True(t, d)

	t.Run("Recovers after the model is fixed", func(t *testing.T) {
		require.NoError(t, s.SetModel(model))
		_, err := s.Infer(ctx)
		require.NoError(t, err)
		m, d, _ := s.Dirty()
		assert.False(t, m)
		assert.False(t, d)
	})
}

func TestSession_DatabaseCompilationFailure(t *testing.T) {
	ctx := context.Background()
	s, engine := newReady(t)
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase("Unknown(Anna)", false))

	_, err := s.Infer(ctx)
	require.ErrorIs(t, err, domain.ErrCompilation)
	m, d, _ := s.Dirty()
	assert.False(t, m, "model rebuilt successfully")
	assert.True(t, d)
	assert.Zero(t, engine.Calls(memory.OpRun))

	require.NoError(t, s.SetDatabase(evidence, false))
	_, err = s.Infer(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Calls(memory.OpLoadModel))
}

func TestSession_EngineLoadFailure(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("engine crashed")
	s, engine := newReady(t)
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase(evidence, false))

	engine.Fail(memory.OpLoadModel, boom)
	_, err := s.Infer(ctx)
	require.ErrorIs(t, err, domain.ErrCompilation)
	assert.ErrorIs(t, err, boom)
}

func TestSession_ZeroDatabases(t *testing.T) {
	s, engine := newReady(t, memory.WithoutDatabases())
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase(evidence, false))

	_, err := s.Infer(context.Background())
	assert.ErrorIs(t, err, domain.ErrCompilation)
	assert.ErrorContains(t, err, "no databases")
	assert.Zero(t, engine.Calls(memory.OpRun))

	modelDirty, dbDirty, err := s.Dirty()
	require.NoError(t, err)
	assert.False(t, modelDirty)
	assert.True(t, dbDirty)
}

func TestSession_BlankInlineDatabase(t *testing.T) {
	s, _ := newReady(t)
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase("   \n", false))
	require.NoError(t, s.SetQuery([]string{"Smokes(Anna)"}))

	res, err := s.Infer(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Smokes(Anna)"}, res.Atoms)
}

func TestSession_FirstDatabaseWins(t *testing.T) {
	s, _ := newReady(t)
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase("Smokes(Anna)\n---\n!Smokes(Anna)\n", false))
	require.NoError(t, s.SetQuery([]string{"Smokes(Anna)"}))

	res, err := s.Infer(context.Background())
	require.NoError(t, err)
	p, ok := res.Probability("Smokes(Anna)")
	require.True(t, ok)
	assert.Equal(t, 1.0, p)
}

func TestSession_DatabaseFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "smokers.db")
	require.NoError(t, os.WriteFile(path, []byte(evidence), 0o644))

	s, engine := newReady(t)
	require.NoError(t, s.SetModel(model))
	require.NoError(t, s.SetDatabase(path, true))
	require.NoError(t, s.SetQuery([]string{"Smokes"}))

	res, err := s.Infer(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Smokes(Anna)", "Smokes(Bob)"}, res.Atoms)
	assert.Equal(t, 1, engine.Calls(memory.OpLoadDatabaseFile))
	assert.Zero(t, engine.Calls(memory.OpParseDatabase))

	t.Run("Missing file", func(t *testing.T) {
		require.NoError(t, s.SetDatabase(filepath.Join(t.TempDir(), "nope.db"), true))
		_, err := s.Infer(ctx)
		assert.ErrorIs(t, err, domain.ErrCompilation)
	})
}

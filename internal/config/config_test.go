package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/mln/pkg/adapters/process"
	"github.com/aretw0/mln/pkg/domain"
)

const smokers = `Smokes(person)
Cancer(person)
1.5 Smokes(x) => Cancer(x)
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "smokers.mln", smokers)
	writeFile(t, dir, "smokers.db", "Smokes(Anna)\n")
	path := writeFile(t, dir, "query.yaml", `
name: smokers
method: MC-SAT
logic: FirstOrderLogic
model: smokers.mln
database: smokers.db
queries: [Cancer, "Smokes(Bob)"]
cw_preds: [Smokes]
max_steps: 500
chains: 2
engine:
  kind: memory
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "smokers.mln"), cfg.Model)
	assert.Equal(t, filepath.Join(dir, "smokers.db"), cfg.Database)
	assert.Equal(t, EngineMemory, cfg.Engine.Kind)

	p, err := cfg.Project()
	require.NoError(t, err)
	assert.Equal(t, "smokers", p.ID)
	assert.Equal(t, smokers, p.Model)
	assert.True(t, p.DatabaseIsFile)
	assert.Equal(t, []string{"Cancer", "Smokes(Bob)"}, p.Queries)
	assert.Equal(t, 500, p.MaxSteps)
	assert.Equal(t, 2, p.Chains)
}

func TestLoad_InlineEvidence(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "smokers.mln", smokers)
	path := writeFile(t, dir, "query.yaml", `
model: smokers.mln
evidence: |
  Smokes(Anna)
queries: [Cancer]
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, EngineProcess, cfg.Engine.Kind, "process is the default engine")

	p, err := cfg.Project()
	require.NoError(t, err)
	assert.False(t, p.DatabaseIsFile)
	assert.Equal(t, "Smokes(Anna)\n", p.Database)
	assert.Equal(t, "smokers.mln", p.Name)
}

func TestParse_Rejections(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "model: a.mln\nevidence: x\nqueries: [A]\ncolour: red\n", "colour"},
		{"no model", "evidence: x\nqueries: [A]\n", "Model is required"},
		{"no evidence", "model: a.mln\nqueries: [A]\n", "Database failed required_without"},
		{"both evidence sources", "model: a.mln\ndatabase: a.db\nevidence: x\nqueries: [A]\n", "Database cannot be combined with Evidence"},
		{"no queries", "model: a.mln\nevidence: x\n", "Queries is required"},
		{"bad logic", "model: a.mln\nevidence: x\nqueries: [A]\nlogic: Modal\n", "unknown logic"},
		{"bad engine", "model: a.mln\nevidence: x\nqueries: [A]\nengine: {kind: gpu}\n", "Engine.Kind failed oneof"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParse_ValidationErrorsAreInvalidOption(t *testing.T) {
	_, err := Parse([]byte("model: a.mln\nevidence: x\nqueries: [\"Smokes(\"]\n"))
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestProject_MissingDatabaseFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "smokers.mln", smokers)
	path := writeFile(t, dir, "query.yaml", "model: smokers.mln\ndatabase: gone.db\nqueries: [Cancer]\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	_, err = cfg.Project()
	assert.ErrorContains(t, err, "no such file")
}

func TestBridgeConfig(t *testing.T) {
	fallback := process.Config{Command: "python3", Args: []string{"bridge.py"}}
	dir := t.TempDir()
	writeFile(t, dir, "smokers.mln", smokers)

	t.Run("fallback", func(t *testing.T) {
		cfg, err := Load(writeFile(t, dir, "q1.yaml", "model: smokers.mln\nevidence: x\nqueries: [A]\n"))
		require.NoError(t, err)
		got, err := cfg.BridgeConfig(fallback)
		require.NoError(t, err)
		assert.Equal(t, fallback, got)
	})

	t.Run("inline", func(t *testing.T) {
		cfg, err := Load(writeFile(t, dir, "q2.yaml", `
model: smokers.mln
evidence: x
queries: [A]
engine:
  bridge:
    command: /opt/pracmln/bin/bridge
    timeout_seconds: 30
`))
		require.NoError(t, err)
		got, err := cfg.BridgeConfig(fallback)
		require.NoError(t, err)
		assert.Equal(t, "/opt/pracmln/bin/bridge", got.Command)
		assert.Equal(t, 30, got.TimeoutSeconds)
		assert.Equal(t, dir, got.Dir)
	})

	t.Run("file", func(t *testing.T) {
		writeFile(t, dir, "bridge.yaml", "bridge:\n  command: pracmln-bridge\n")
		cfg, err := Load(writeFile(t, dir, "q3.yaml", "model: smokers.mln\nevidence: x\nqueries: [A]\nengine:\n  bridge_file: bridge.yaml\n"))
		require.NoError(t, err)
		got, err := cfg.BridgeConfig(fallback)
		require.NoError(t, err)
		assert.Equal(t, "pracmln-bridge", got.Command)
	})
}

func TestLoadWithOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "smokers.mln", smokers)
	writeFile(t, dir, "smokers.db", "Smokes(Anna)\n")
	path := writeFile(t, dir, "query.yaml", "model: smokers.mln\nevidence: Smokes(Bob)\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "Queries is required")

	cfg, err := LoadWithOverrides(path, Overrides{
		Queries:   []string{"Cancer"},
		Database:  filepath.Join(dir, "smokers.db"),
		Method:    "MCSAT",
		MaxSteps:  10,
		MultiCore: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Cancer"}, cfg.Queries)
	assert.Empty(t, cfg.Evidence, "a database override replaces inline evidence")
	assert.Equal(t, "MCSAT", cfg.Method)
	assert.Equal(t, 10, cfg.MaxSteps)
	assert.True(t, cfg.MultiCore)
}

func TestLoadWithOverrides_NoFile(t *testing.T) {
	dir := t.TempDir()
	model := writeFile(t, dir, "smokers.mln", smokers)

	cfg, err := LoadWithOverrides("", Overrides{
		Model:    model,
		Evidence: "Smokes(Anna)",
		Queries:  []string{"Smokes"},
	})
	require.NoError(t, err)
	assert.Equal(t, EngineProcess, cfg.Engine.Kind)

	p, err := cfg.Project()
	require.NoError(t, err)
	assert.Equal(t, "Smokes(Anna)", p.Database)

	_, err = LoadWithOverrides("", Overrides{Queries: []string{"Smokes"}})
	assert.ErrorContains(t, err, "Model is required")
}

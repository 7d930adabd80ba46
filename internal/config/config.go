// Package config loads query files: YAML documents naming a model, its
// evidence, the inference parameters and the engine to run them on.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/mln/internal/input"
	"github.com/aretw0/mln/internal/validator"
	"github.com/aretw0/mln/pkg/adapters/loam"
	"github.com/aretw0/mln/pkg/adapters/process"
)

// Engine kinds.
const (
	EngineMemory  = "memory"
	EngineProcess = "process"
)

// Config is a query file.
type Config struct {
	Name string `yaml:"name"`

	Method  string `yaml:"method"`
	Logic   string `yaml:"logic" validate:"omitempty,mln_logic"`
	Grammar string `yaml:"grammar" validate:"omitempty,mln_grammar"`

	// Model is a path to the model file.
	Model string `yaml:"model" validate:"required"`
	// Database is a path to an evidence file.
	Database string `yaml:"database" validate:"required_without=Evidence,excluded_with=Evidence"`
	// Evidence is inline evidence text.
	Evidence string `yaml:"evidence"`

	Queries               []string `yaml:"queries" validate:"required,min=1,dive,mln_query"`
	ClosedWorldPredicates []string `yaml:"cw_preds" validate:"dive,required"`
	MaxSteps              int      `yaml:"max_steps" validate:"gte=0"`
	Chains                int      `yaml:"chains" validate:"gte=0"`
	MultiCore             bool     `yaml:"multicore"`
	Verbose               bool     `yaml:"verbose"`
	MergeDatabases        bool     `yaml:"merge_dbs"`

	Engine Engine `yaml:"engine"`
}

// Engine selects the inference backend.
type Engine struct {
	Kind string `yaml:"kind" validate:"omitempty,oneof=memory process"`
	// BridgeFile points at a bridge.yaml and wins over an inline Bridge.
	BridgeFile string          `yaml:"bridge_file"`
	Bridge     *process.Config `yaml:"bridge"`
}

// Overrides are command-line values that replace those of a query file.
// Empty strings, empty lists, zero numbers and false flags keep the file's
// value.
type Overrides struct {
	Method  string
	Logic   string
	Grammar string

	Model    string
	Database string
	Evidence string

	Queries               []string
	ClosedWorldPredicates []string
	MaxSteps              int
	Chains                int
	MultiCore             bool
	Verbose               bool
	MergeDatabases        bool
}

// Load reads and validates a query file. Relative paths inside it are
// resolved against the file's directory.
func Load(path string) (*Config, error) {
	return LoadWithOverrides(path, Overrides{})
}

// LoadWithOverrides reads the query file at path, applies o and validates
// the result. An empty path builds the configuration from o alone.
func LoadWithOverrides(path string, o Overrides) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read query file: %w", err)
		}
		if cfg, err = decode(data); err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		cfg.resolve(filepath.Dir(path))
	}
	cfg.override(o)
	if err := cfg.Validate(); err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		return nil, err
	}
	return cfg, nil
}

// Parse decodes and validates a query file without resolving paths.
// Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if c.Engine.Kind == "" {
		c.Engine.Kind = EngineProcess
	}
	return validator.Struct(c)
}

func decode(data []byte) (*Config, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg Config
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	return &cfg, nil
}

func (c *Config) override(o Overrides) {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&c.Method, o.Method)
	set(&c.Logic, o.Logic)
	set(&c.Grammar, o.Grammar)
	set(&c.Model, o.Model)
	if o.Database != "" {
		c.Database, c.Evidence = o.Database, ""
	}
	if o.Evidence != "" {
		c.Evidence, c.Database = o.Evidence, ""
	}
	if len(o.Queries) > 0 {
		c.Queries = o.Queries
	}
	if len(o.ClosedWorldPredicates) > 0 {
		c.ClosedWorldPredicates = o.ClosedWorldPredicates
	}
	if o.MaxSteps > 0 {
		c.MaxSteps = o.MaxSteps
	}
	if o.Chains > 0 {
		c.Chains = o.Chains
	}
	c.MultiCore = c.MultiCore || o.MultiCore
	c.Verbose = c.Verbose || o.Verbose
	c.MergeDatabases = c.MergeDatabases || o.MergeDatabases
}

func (c *Config) resolve(base string) {
	join := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	c.Model = join(c.Model)
	c.Database = join(c.Database)
	c.Engine.BridgeFile = join(c.Engine.BridgeFile)
	if c.Engine.Bridge != nil && c.Engine.Bridge.Dir == "" {
		c.Engine.Bridge.Dir = base
	}
}

// BridgeConfig returns the process bridge configuration, falling back to
// the given default when the file names none.
func (c *Config) BridgeConfig(fallback process.Config) (process.Config, error) {
	switch {
	case c.Engine.BridgeFile != "":
		return process.LoadConfig(c.Engine.BridgeFile)
	case c.Engine.Bridge != nil:
		if c.Engine.Bridge.Command == "" {
			return process.Config{}, fmt.Errorf("engine.bridge.command is required")
		}
		return *c.Engine.Bridge, nil
	}
	return fallback, nil
}

// Project reads the model file and turns the query file into a project
// that can be applied to a controller.
func (c *Config) Project() (*loam.Project, error) {
	model, err := input.ReadFile(c.Model)
	if err != nil {
		return nil, fmt.Errorf("failed to read model: %w", err)
	}
	queries, err := input.Queries(c.Queries)
	if err != nil {
		return nil, err
	}
	evidence, err := input.Sanitize(c.Evidence)
	if err != nil {
		return nil, fmt.Errorf("evidence: %w", err)
	}

	name := c.Name
	if name == "" {
		name = filepath.Base(c.Model)
	}
	p := &loam.Project{
		ID:                    name,
		Name:                  name,
		Model:                 model,
		Method:                c.Method,
		Logic:                 c.Logic,
		Grammar:               c.Grammar,
		Queries:               queries,
		ClosedWorldPredicates: c.ClosedWorldPredicates,
		MaxSteps:              c.MaxSteps,
		Chains:                c.Chains,
		MultiCore:             c.MultiCore,
		Verbose:               c.Verbose,
		MergeDatabases:        c.MergeDatabases,
	}
	if c.Database != "" {
		p.Database, p.DatabaseIsFile = c.Database, true
	} else {
		p.Database = evidence
	}
	if err := validator.Project(p); err != nil {
		return nil, err
	}
	return p, nil
}

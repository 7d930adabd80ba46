package mln

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/mln/internal/logging"
	"github.com/aretw0/mln/internal/runtime"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
)

// Controller is the high-level entry point of the library.
// It wraps the internal runtime session and exposes the controller API.
// A Controller is safe for concurrent use, but it does not serialize calls
// into an engine shared with other controllers; see pkg/session for that.
type Controller struct {
	session *runtime.Session
	service ports.InferenceService
	hooks   []domain.LifecycleHooks
	logger  *slog.Logger
	id      string
	Name    string
}

// Option defines a functional option for configuring the Controller.
type Option func(*Controller)

// WithLifecycleHooks registers observability hooks. It may be given more
// than once; all registered hooks are called.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = append(c.hooks, hooks)
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithSessionID fixes the session ID instead of generating one.
func WithSessionID(id string) Option {
	return func(c *Controller) {
		c.id = id
	}
}

// WithName labels the controller in logs, e.g. with a project name.
func WithName(name string) Option {
	return func(c *Controller) {
		c.Name = name
	}
}

// New creates an uninitialized controller bound to an inference engine.
// Call Initialize before anything else.
func New(service ports.InferenceService, opts ...Option) (*Controller, error) {
	if service == nil {
		return nil, fmt.Errorf("inference service is required")
	}

	c := &Controller{service: service}
	for _, opt := range opts {
		opt(c)
	}

	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if c.Name != "" {
		c.logger = c.logger.With("controller", c.Name)
	}

	runtimeOpts := []runtime.SessionOption{
		runtime.WithLogger(c.logger),
		runtime.WithSessionID(c.id),
	}
	if len(c.hooks) > 0 {
		runtimeOpts = append(runtimeOpts, runtime.WithLifecycleHooks(domain.Merge(c.hooks...)))
	}
	c.session = runtime.NewSession(service, runtimeOpts...)
	return c, nil
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.session.ID()
}

// Status returns the initialization state.
func (c *Controller) Status() domain.Status {
	return c.session.Status()
}

// Service returns the engine the controller talks to.
func (c *Controller) Service() ports.InferenceService {
	return c.service
}

// Initialize discovers the engine's methods and installs the defaults.
// Calling it on an initialized controller does nothing.
func (c *Controller) Initialize(ctx context.Context) error {
	return c.session.Initialize(ctx)
}

// Methods returns the inference methods reported by the engine, in order.
func (c *Controller) Methods() ([]string, error) { return c.session.Methods() }

// Logics returns the supported logics.
func (c *Controller) Logics() ([]string, error) { return c.session.Logics() }

// Grammars returns the supported grammars.
func (c *Controller) Grammars() ([]string, error) { return c.session.Grammars() }

// SelectMethod selects an inference method by exact name. It reports false
// for unknown names.
func (c *Controller) SelectMethod(ctx context.Context, name string) (bool, error) {
	return c.session.SelectMethod(ctx, name)
}

// SelectLogic selects a logic by exact name. It reports false for unknown names.
func (c *Controller) SelectLogic(name string) (bool, error) { return c.session.SelectLogic(name) }

// SelectGrammar selects a grammar by exact name. It reports false for unknown names.
func (c *Controller) SelectGrammar(name string) (bool, error) { return c.session.SelectGrammar(name) }

// Method returns the selected inference method.
func (c *Controller) Method() (string, error) { return c.session.Method() }

// Logic returns the selected logic.
func (c *Controller) Logic() (string, error) { return c.session.Logic() }

// Grammar returns the selected grammar.
func (c *Controller) Grammar() (string, error) { return c.session.Grammar() }

// SetModel replaces the MLN model text.
func (c *Controller) SetModel(text string) error { return c.session.SetModel(text) }

// Model returns the MLN model text.
func (c *Controller) Model() (string, error) { return c.session.Model() }

// SetDatabase replaces the evidence: a file path when isFile is true,
// inline evidence text otherwise.
func (c *Controller) SetDatabase(ref string, isFile bool) error {
	return c.session.SetDatabase(ref, isFile)
}

// Database returns the evidence reference and whether it is a file path.
func (c *Controller) Database() (string, bool, error) { return c.session.Database() }

// Dirty reports which artifacts the next Infer will rebuild.
func (c *Controller) Dirty() (model, database bool, err error) { return c.session.Dirty() }

// SetClosedWorldPredicates sets the predicates under the closed-world assumption.
func (c *Controller) SetClosedWorldPredicates(preds []string) error {
	return c.session.SetClosedWorldPredicates(preds)
}

// ClosedWorldPredicates returns the closed-world predicates.
func (c *Controller) ClosedWorldPredicates() ([]string, error) {
	return c.session.ClosedWorldPredicates()
}

// SetQuery sets the queries.
func (c *Controller) SetQuery(queries []string) error { return c.session.SetQuery(queries) }

// Queries returns the queries.
func (c *Controller) Queries() ([]string, error) { return c.session.Queries() }

// SetMaxSteps sets the step limit. Non-positive values unset it.
func (c *Controller) SetMaxSteps(n int) error { return c.session.SetMaxSteps(n) }

// MaxSteps returns the step limit or domain.Unset.
func (c *Controller) MaxSteps() (int, error) { return c.session.MaxSteps() }

// SetNumChains sets the number of chains. Non-positive values unset it.
func (c *Controller) SetNumChains(n int) error { return c.session.SetNumChains(n) }

// NumChains returns the number of chains or domain.Unset.
func (c *Controller) NumChains() (int, error) { return c.session.NumChains() }

// SetUseMultiCore toggles multi-core inference.
func (c *Controller) SetUseMultiCore(on bool) error { return c.session.SetUseMultiCore(on) }

// UseMultiCore reports whether multi-core inference is on.
func (c *Controller) UseMultiCore() (bool, error) { return c.session.UseMultiCore() }

// SetVerbose toggles engine verbosity.
func (c *Controller) SetVerbose(on bool) error { return c.session.SetVerbose(on) }

// Verbose reports whether engine verbosity is on.
func (c *Controller) Verbose() (bool, error) { return c.session.Verbose() }

// SetMergeDatabases toggles engine-side merging of evidence databases.
func (c *Controller) SetMergeDatabases(on bool) error { return c.session.SetMergeDatabases(on) }

// MergeDatabases reports whether evidence databases are merged.
func (c *Controller) MergeDatabases() (bool, error) { return c.session.MergeDatabases() }

// Settings returns a copy of all inference parameters.
func (c *Controller) Settings() (domain.Settings, error) { return c.session.Settings() }

// Infer recompiles what changed, runs the selected method and returns the
// atom probabilities sorted by atom name.
func (c *Controller) Infer(ctx context.Context) (domain.Result, error) {
	return c.session.Infer(ctx)
}

package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/mln/internal/logging"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
	"github.com/aretw0/mln/pkg/registry"
	"github.com/google/uuid"
)

// Session is the controller core. It owns the configuration of one
// inference session, the artifacts compiled from it, and dispatches
// inference to the engine.
type Session struct {
	mu sync.Mutex

	id      string
	service ports.InferenceService
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	status  domain.Status
	catalog *registry.Catalog

	method       domain.Method
	methodHandle ports.MethodHandle
	logic        domain.Logic
	grammar      domain.Grammar

	model          string
	database       string
	databaseIsFile bool

	tracker   tracker
	settings  settingsStore
	artifacts artifacts
}

type artifacts struct {
	model    ports.ModelArtifact
	database ports.DatabaseArtifact
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) SessionOption {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(s *Session) {
		if id != "" {
			s.id = id
		}
	}
}

// NewSession creates an uninitialized session bound to an engine.
func NewSession(service ports.InferenceService, opts ...SessionOption) *Session {
	s := &Session{
		id:      uuid.NewString(),
		service: service,
		logger:  logging.NewNop(),
		status:  domain.StatusUninitialized,
		tracker: newTracker(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("session_id", s.id)
	return s
}

// ID returns the session identifier used in logs, events and lock keys.
func (s *Session) ID() string {
	return s.id
}

// Status returns the initialization state.
func (s *Session) Status() domain.Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Initialize discovers the engine's registries and installs the defaults.
// It is a no-op on a ready session. On failure the session is marked failed
// and may be initialized again later.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == domain.StatusReady {
		return nil
	}

	if err := s.initialize(ctx); err != nil {
		s.status = domain.StatusFailed
		s.catalog = nil
		s.methodHandle = nil
		s.logger.Error("initialization failed", "err", err)
		return fmt.Errorf("%w: %w", domain.ErrInitialization, err)
	}

	s.status = domain.StatusReady
	s.logger.Info("session initialized",
		"methods", s.catalog.Methods.Len(),
		"method", s.catalog.Methods.Name(s.method),
	)
	return nil
}

func (s *Session) initialize(ctx context.Context) error {
	if s.service == nil {
		return fmt.Errorf("no inference service configured")
	}

	catalog, err := registry.Discover(ctx, s.service)
	if err != nil {
		return err
	}
	s.catalog = catalog

	s.logic = domain.LogicFirstOrder
	s.grammar = domain.GrammarStandard
	s.methodHandle = nil
	if err := s.useMethod(ctx, domain.DefaultMethod); err != nil {
		return err
	}

	s.settings = newSettingsStore()
	return nil
}

// ready enforces the precondition shared by every operation but Initialize.
// Callers must hold s.mu.
func (s *Session) ready() error {
	if s.status != domain.StatusReady {
		return fmt.Errorf("%w (status: %s)", domain.ErrUninitialized, s.status)
	}
	return nil
}

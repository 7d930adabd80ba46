package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/mln"
	"github.com/aretw0/mln/internal/logging"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// EngineLockKey is the distributed lock key guarding the engine.
const EngineLockKey = "engine"

const defaultLockTTL = 5 * time.Minute

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager owns named controllers bound to one engine and serializes engine access.
// It uses reference counting to garbage collect unused session locks.
type Manager struct {
	engine ports.InferenceService
	opts   []mln.Option

	mu          sync.Mutex // guards controllers and locks
	controllers map[string]*mln.Controller
	locks       map[string]*lockEntry

	engineMu sync.Mutex
	locker   ports.Locker
	lockTTL  time.Duration
	logger   *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker additionally guards the engine with a distributed lock.
func WithLocker(locker ports.Locker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of the distributed engine lock.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager and its controllers.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithControllerOptions are applied to every controller the Manager opens.
func WithControllerOptions(opts ...mln.Option) Option {
	return func(m *Manager) {
		m.opts = append(m.opts, opts...)
	}
}

// NewManager creates a manager for controllers of engine.
func NewManager(engine ports.InferenceService, opts ...Option) *Manager {
	m := &Manager{
		engine:      engine,
		controllers: make(map[string]*mln.Controller),
		locks:       make(map[string]*lockEntry),
		lockTTL:     defaultLockTTL,
		logger:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Open returns the controller for sessionID, creating and initializing it on
// first use. A controller whose initialization failed is not kept.
func (m *Manager) Open(ctx context.Context, sessionID string) (*mln.Controller, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session id is required")
	}

	var ctl *mln.Controller
	err := m.withSessionLock(sessionID, func() error {
		if existing, ok := m.lookup(sessionID); ok {
			ctl = existing
			return nil
		}

		opts := append([]mln.Option{
			mln.WithSessionID(sessionID),
			mln.WithLogger(m.logger),
		}, m.opts...)
		created, err := mln.New(m.engine, opts...)
		if err != nil {
			return err
		}
		if err := m.withEngineLock(ctx, func(ctx context.Context) error {
			return created.Initialize(ctx)
		}); err != nil {
			return err
		}

		m.mu.Lock()
		m.controllers[sessionID] = created
		m.mu.Unlock()
		ctl = created
		m.logger.Info("session opened", "session_id", sessionID)
		return nil
	})
	return ctl, err
}

// Get returns an open controller.
func (m *Manager) Get(sessionID string) (*mln.Controller, error) {
	ctl, ok := m.lookup(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	return ctl, nil
}

func (m *Manager) lookup(sessionID string) (*mln.Controller, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ctl, ok := m.controllers[sessionID]
	return ctl, ok
}

// Close forgets a session. Closing an unknown session is not an error.
func (m *Manager) Close(sessionID string) {
	_ = m.withSessionLock(sessionID, func() error {
		m.mu.Lock()
		delete(m.controllers, sessionID)
		m.mu.Unlock()
		return nil
	})
}

// List returns the open session IDs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.controllers))
	for id := range m.controllers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// WithSession runs fn on an open controller while holding its session lock
// and the engine lock. Anything fn does with the controller is serialized
// against every other engine call made through the Manager.
func (m *Manager) WithSession(ctx context.Context, sessionID string, fn func(context.Context, *mln.Controller) error) error {
	return m.withSessionLock(sessionID, func() error {
		ctl, err := m.Get(sessionID)
		if err != nil {
			return err
		}
		return m.withEngineLock(ctx, func(ctx context.Context) error {
			return fn(ctx, ctl)
		})
	})
}

// Infer runs inference for sessionID under the Manager's locks.
func (m *Manager) Infer(ctx context.Context, sessionID string) (domain.Result, error) {
	var res domain.Result
	err := m.WithSession(ctx, sessionID, func(ctx context.Context, ctl *mln.Controller) error {
		var err error
		res, err = ctl.Infer(ctx)
		return err
	})
	return res, err
}

func (m *Manager) withSessionLock(sessionID string, fn func() error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()
	return fn()
}

func (m *Manager) withEngineLock(ctx context.Context, fn func(context.Context) error) error {
	m.engineMu.Lock()
	defer m.engineMu.Unlock()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, EngineLockKey, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire engine lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("failed to release engine lock (will expire via TTL)", "err", err)
			}
		}()
	}

	return fn(ctx)
}

package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/mln"
	"github.com/aretw0/mln/pkg/adapters/memory"
	"github.com/aretw0/mln/pkg/adapters/redis"
	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
	"github.com/aretw0/mln/pkg/session"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const model = "Smokes(person)\nCancer(person)\n1.5 Smokes(x) => Cancer(x)\n"

// exclusiveEngine fails the test if two engine calls overlap.
type exclusiveEngine struct {
	*memory.Engine
	t        *testing.T
	inFlight atomic.Int32
	calls    atomic.Int32
}

func (e *exclusiveEngine) enter() func() {
	if n := e.inFlight.Add(1); n > 1 {
		e.t.Errorf("engine entered concurrently (%d calls in flight)", n)
	}
	e.calls.Add(1)
	time.Sleep(2 * time.Millisecond)
	return func() { e.inFlight.Add(-1) }
}

func (e *exclusiveEngine) LoadModel(ctx context.Context, text, logic, grammar string) (ports.ModelArtifact, error) {
	defer e.enter()()
	return e.Engine.LoadModel(ctx, text, logic, grammar)
}

func (e *exclusiveEngine) RunInference(ctx context.Context, req ports.InferenceRequest) (ports.ResultHandle, error) {
	defer e.enter()()
	return e.Engine.RunInference(ctx, req)
}

func configure(ctx context.Context, ctl *mln.Controller, person string) error {
	if err := ctl.SetModel(model); err != nil {
		return err
	}
	if err := ctl.SetDatabase("Smokes("+person+")", false); err != nil {
		return err
	}
	return ctl.SetQuery([]string{"Smokes"})
}

func TestManager_OpenAndList(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	mgr := session.NewManager(engine)

	a, err := mgr.Open(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", a.ID())
	assert.Equal(t, domain.StatusReady, a.Status())

	again, err := mgr.Open(ctx, "a")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, engine.Calls(memory.OpDiscover))

	_, err = mgr.Open(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, mgr.List())

	mgr.Close("a")
	_, err = mgr.Get("a")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
	assert.Equal(t, []string{"b"}, mgr.List())

	_, err = mgr.Open(ctx, "")
	assert.Error(t, err)
}

func TestManager_OpenFailureIsNotKept(t *testing.T) {
	ctx := context.Background()
	engine := memory.New()
	engine.Fail(memory.OpDiscover, errors.New("engine down"))
	mgr := session.NewManager(engine)

	_, err := mgr.Open(ctx, "a")
	require.ErrorIs(t, err, domain.ErrInitialization)
	assert.Empty(t, mgr.List())

	engine.Fail(memory.OpDiscover, nil)
	_, err = mgr.Open(ctx, "a")
	require.NoError(t, err)
}

func TestManager_SerializesEngine(t *testing.T) {
	ctx := context.Background()
	engine := &exclusiveEngine{Engine: memory.New(), t: t}
	mgr := session.NewManager(engine)

	const sessions = 8
	for i := 0; i < sessions; i++ {
		id := fmt.Sprintf("s%d", i)
		ctl, err := mgr.Open(ctx, id)
		require.NoError(t, err)
		require.NoError(t, configure(ctx, ctl, fmt.Sprintf("P%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < sessions; i++ {
		for j := 0; j < 3; j++ {
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				res, err := mgr.Infer(ctx, id)
				if assert.NoError(t, err) {
					assert.Equal(t, 1, res.Len())
				}
			}(fmt.Sprintf("s%d", i))
		}
	}
	wg.Wait()

	// One model build per session, one run per Infer.
	assert.Equal(t, int32(sessions+sessions*3), engine.calls.Load())
}

func TestManager_UnknownSession(t *testing.T) {
	mgr := session.NewManager(memory.New())
	_, err := mgr.Infer(context.Background(), "ghost")
	assert.ErrorIs(t, err, session.ErrSessionNotFound)
}

func TestManager_LockLifecycle(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.New())

	for i := 0; i < 1000; i++ {
		sid := fmt.Sprintf("session-%d", i)
		_, err := mgr.Open(ctx, sid)
		require.NoError(t, err)
		_ = mgr.WithSession(ctx, sid, func(context.Context, *mln.Controller) error { return nil })
		mgr.Close(sid)
	}
	assert.Zero(t, session.LockCount(mgr), "session locks leaked")
	assert.Empty(t, mgr.List())
}

func TestManager_DistributedLock(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	locker := redis.NewLocker(client, redis.WithPollInterval(5*time.Millisecond))

	mgr := session.NewManager(memory.New(), session.WithLocker(locker), session.WithLockTTL(time.Minute))
	ctl, err := mgr.Open(ctx, "a")
	require.NoError(t, err)
	require.NoError(t, configure(ctx, ctl, "Anna"))

	t.Run("Released after use", func(t *testing.T) {
		_, err := mgr.Infer(ctx, "a")
		require.NoError(t, err)
		assert.False(t, mr.Exists(locker.Key(session.EngineLockKey)))
	})

	t.Run("Held elsewhere blocks", func(t *testing.T) {
		unlock, err := locker.Lock(ctx, session.EngineLockKey, time.Minute)
		require.NoError(t, err)
		defer func() { _ = unlock(ctx) }()

		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		_, err = mgr.Infer(waitCtx, "a")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("Observed inside the callback", func(t *testing.T) {
		err := mgr.WithSession(ctx, "a", func(ctx context.Context, ctl *mln.Controller) error {
			assert.True(t, mr.Exists(locker.Key(session.EngineLockKey)))
			return nil
		})
		require.NoError(t, err)
	})
}

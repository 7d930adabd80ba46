package runtime

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
)

// Infer recompiles stale artifacts, runs the selected method and returns the
// atom probabilities sorted by atom name. On failure the returned Result is
// zero and the error wraps domain.ErrCompilation or domain.ErrInference.
func (s *Session) Infer(ctx context.Context) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return domain.Result{}, err
	}

	if err := s.compile(ctx); err != nil {
		return domain.Result{}, err
	}

	start := time.Now()
	method := s.catalog.Methods.Name(s.method)
	res, err := s.dispatch(ctx)
	s.emitInfer(ctx, &domain.InferEvent{
		EventBase: s.eventBase(domain.EventInfer, start),
		Method:    method,
		Atoms:     res.Len(),
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		s.logger.Error("inference failed", "method", method, "err", err)
		return domain.Result{}, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}

	s.logger.Debug("inference finished", "method", method, "atoms", res.Len())
	return res, nil
}

func (s *Session) dispatch(ctx context.Context) (domain.Result, error) {
	handle, err := s.service.RunInference(ctx, ports.InferenceRequest{
		Model:    s.artifacts.model,
		Database: s.artifacts.database,
		Method:   s.methodHandle,
		Settings: s.settings.snapshot(),
	})
	if err != nil {
		return domain.Result{}, fmt.Errorf("run inference: %w", err)
	}

	if err := handle.Execute(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("execute: %w", err)
	}
	if err := handle.Persist(ctx); err != nil {
		return domain.Result{}, fmt.Errorf("persist: %w", err)
	}

	probs, err := handle.AtomProbabilities()
	if err != nil {
		return domain.Result{}, fmt.Errorf("read results: %w", err)
	}
	return sortedResult(probs)
}

// sortedResult flattens the engine's atom -> probability mapping into
// parallel slices ordered by atom name.
func sortedResult(probs map[string]float64) (domain.Result, error) {
	atoms := make([]string, 0, len(probs))
	for atom := range probs {
		atoms = append(atoms, atom)
	}
	sort.Strings(atoms)

	values := make([]float64, len(atoms))
	for i, atom := range atoms {
		p := probs[atom]
		if math.IsNaN(p) || p < 0 || p > 1 {
			return domain.Result{}, fmt.Errorf("atom %q: probability %v outside [0,1]", atom, p)
		}
		values[i] = p
	}
	return domain.Result{Atoms: atoms, Probabilities: values}, nil
}

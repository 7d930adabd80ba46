package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/mln/pkg/domain"
)

// SelectMethod selects an inference method by its exact display name.
// Unknown names report false and leave the selection untouched. A new
// engine-side method object is created only when the selection changes.
func (s *Session) SelectMethod(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}

	tag, ok := s.catalog.Methods.Lookup(name)
	if !ok {
		s.logger.Debug("unknown method", "method", name)
		return false, nil
	}
	if err := s.useMethod(ctx, tag); err != nil {
		s.logger.Error("method instantiation failed", "method", name, "err", err)
		return false, fmt.Errorf("%w: %w", domain.ErrInference, err)
	}
	return true, nil
}

// useMethod instantiates the method behind tag unless it is already active.
// The selection only moves once the engine produced a handle.
// Callers must hold s.mu.
func (s *Session) useMethod(ctx context.Context, tag domain.Method) error {
	if s.methodHandle != nil && s.method == tag {
		return nil
	}

	id := s.catalog.Methods.Name(tag)
	handle, err := s.service.InstantiateMethod(ctx, id)
	if err != nil {
		return fmt.Errorf("instantiate method %q: %w", id, err)
	}

	from := ""
	if s.methodHandle != nil {
		from = s.catalog.Methods.Name(s.method)
	}
	s.method = tag
	s.methodHandle = handle
	s.logger.Debug("method selected", "method", id)
	s.emitMethodChange(ctx, &domain.MethodEvent{
		EventBase: s.eventBase(domain.EventMethodChange, time.Now()),
		From:      from,
		To:        id,
	})
	return nil
}

// SelectLogic selects the logic used to interpret the model.
// A change invalidates both compiled artifacts.
func (s *Session) SelectLogic(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}

	tag, ok := s.catalog.Logics.Lookup(name)
	if !ok {
		return false, nil
	}
	if tag != s.logic {
		s.logic = tag
		s.tracker.modelChanged()
	}
	return true, nil
}

// SelectGrammar selects the grammar used to parse the model.
// A change invalidates both compiled artifacts.
func (s *Session) SelectGrammar(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, err
	}

	tag, ok := s.catalog.Grammars.Lookup(name)
	if !ok {
		return false, nil
	}
	if tag != s.grammar {
		s.grammar = tag
		s.tracker.modelChanged()
	}
	return true, nil
}

// Method returns the display name of the selected method.
func (s *Session) Method() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", err
	}
	return s.catalog.Methods.Name(s.method), nil
}

// Logic returns the display name of the selected logic.
func (s *Session) Logic() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", err
	}
	return s.catalog.Logics.Name(s.logic), nil
}

// Grammar returns the display name of the selected grammar.
func (s *Session) Grammar() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", err
	}
	return s.catalog.Grammars.Name(s.grammar), nil
}

// Methods returns the discovered method names in engine order.
func (s *Session) Methods() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Methods.Names(), nil
}

// Logics returns the supported logic names.
func (s *Session) Logics() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Logics.Names(), nil
}

// Grammars returns the supported grammar names.
func (s *Session) Grammars() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.catalog.Grammars.Names(), nil
}

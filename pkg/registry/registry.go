package registry

import (
	"context"
	"fmt"

	"github.com/aretw0/mln/pkg/domain"
)

// Options is an ordered, immutable list of display names.
// The tag of a name is its position; the name -> tag table is built once.
type Options[T ~int] struct {
	names []string
	index map[string]T
}

// NewOptions builds an option list. Names must be non-empty and unique.
func NewOptions[T ~int](names []string) (*Options[T], error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("option list is empty")
	}
	o := &Options[T]{
		names: make([]string, len(names)),
		index: make(map[string]T, len(names)),
	}
	for i, name := range names {
		if _, dup := o.index[name]; dup {
			return nil, fmt.Errorf("duplicate option: %q", name)
		}
		o.names[i] = name
		o.index[name] = T(i)
	}
	return o, nil
}

// Lookup returns the tag of an exact (case-sensitive) match.
func (o *Options[T]) Lookup(name string) (T, bool) {
	tag, ok := o.index[name]
	return tag, ok
}

// Name returns the display name of a tag, or "" if it is out of range.
func (o *Options[T]) Name(tag T) string {
	if !o.Contains(tag) {
		return ""
	}
	return o.names[tag]
}

// Contains reports whether tag is a valid position.
func (o *Options[T]) Contains(tag T) bool {
	return tag >= 0 && int(tag) < len(o.names)
}

// Names returns a copy of the display names in registry order.
func (o *Options[T]) Names() []string {
	return append([]string(nil), o.names...)
}

// Len returns the number of options.
func (o *Options[T]) Len() int {
	return len(o.names)
}

// MethodDiscoverer is the part of the engine the registry needs.
type MethodDiscoverer interface {
	DiscoverMethods(ctx context.Context) ([]string, error)
}

// Catalog groups the capability registries of a session.
type Catalog struct {
	Methods  *Options[domain.Method]
	Logics   *Options[domain.Logic]
	Grammars *Options[domain.Grammar]
}

// Discover asks the engine for its inference methods and combines them with
// the fixed logic and grammar lists.
func Discover(ctx context.Context, engine MethodDiscoverer) (*Catalog, error) {
	ids, err := engine.DiscoverMethods(ctx)
	if err != nil {
		return nil, fmt.Errorf("discover methods: %w", err)
	}

	methods, err := NewOptions[domain.Method](ids)
	if err != nil {
		return nil, fmt.Errorf("methods: %w", err)
	}
	if !methods.Contains(domain.DefaultMethod) {
		return nil, fmt.Errorf("engine reported %d methods, default needs at least %d", methods.Len(), int(domain.DefaultMethod)+1)
	}

	logics, err := NewOptions[domain.Logic](domain.LogicNames())
	if err != nil {
		return nil, fmt.Errorf("logics: %w", err)
	}
	grammars, err := NewOptions[domain.Grammar](domain.GrammarNames())
	if err != nil {
		return nil, fmt.Errorf("grammars: %w", err)
	}

	return &Catalog{
		Methods:  methods,
		Logics:   logics,
		Grammars: grammars,
	}, nil
}

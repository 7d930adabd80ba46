package domain

// Unset is returned by getters of optional numeric settings that have no value.
const Unset = -1

// Settings holds the inference parameters of a session.
// Optional parameters are nil when unset, meaning the engine default applies.
type Settings struct {
	ClosedWorldPredicates []string
	Queries               []string

	MaxSteps  *int
	NumChains *int

	UseMultiCore   bool
	Verbose        bool
	MergeDatabases bool
}

// DefaultSettings returns the settings installed by a successful initialization.
func DefaultSettings() Settings {
	return Settings{
		ClosedWorldPredicates: []string{},
		Queries:               []string{},
	}
}

// Clone returns a deep copy so callers cannot alias the session's slices or pointers.
func (s Settings) Clone() Settings {
	c := s
	c.ClosedWorldPredicates = cloneStrings(s.ClosedWorldPredicates)
	c.Queries = cloneStrings(s.Queries)
	if s.MaxSteps != nil {
		v := *s.MaxSteps
		c.MaxSteps = &v
	}
	if s.NumChains != nil {
		v := *s.NumChains
		c.NumChains = &v
	}
	return c
}

// PositiveOrNil returns a pointer to n when n > 0, otherwise nil.
// Non-positive values unset a numeric parameter.
func PositiveOrNil(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

// ValueOrUnset dereferences p, or returns Unset when p is nil.
func ValueOrUnset(p *int) int {
	if p == nil {
		return Unset
	}
	return *p
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

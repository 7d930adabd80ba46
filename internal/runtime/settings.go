package runtime

import (
	"github.com/aretw0/mln/pkg/domain"
)

// settingsStore holds the session's inference parameters.
// Changing a parameter never invalidates compiled artifacts.
type settingsStore struct {
	values domain.Settings
}

func newSettingsStore() settingsStore {
	return settingsStore{values: domain.DefaultSettings()}
}

// snapshot returns an unaliased copy for an engine request.
func (st *settingsStore) snapshot() domain.Settings {
	return st.values.Clone()
}

func copyStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

// SetClosedWorldPredicates sets the predicates treated under the closed-world assumption.
func (s *Session) SetClosedWorldPredicates(preds []string) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.ClosedWorldPredicates = copyStrings(preds)
	})
}

// SetQuery sets the query atoms or predicates to infer.
func (s *Session) SetQuery(queries []string) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.Queries = copyStrings(queries)
	})
}

// SetMaxSteps sets the step limit. A non-positive value unsets it.
func (s *Session) SetMaxSteps(n int) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.MaxSteps = domain.PositiveOrNil(n)
	})
}

// SetNumChains sets the number of sampling chains. A non-positive value unsets it.
func (s *Session) SetNumChains(n int) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.NumChains = domain.PositiveOrNil(n)
	})
}

// SetUseMultiCore enables or disables multi-core inference.
func (s *Session) SetUseMultiCore(on bool) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.UseMultiCore = on
	})
}

// SetVerbose toggles engine verbosity.
func (s *Session) SetVerbose(on bool) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.Verbose = on
	})
}

// SetMergeDatabases toggles merging of multiple evidence databases engine side.
func (s *Session) SetMergeDatabases(on bool) error {
	return s.updateSettings(func(v *domain.Settings) {
		v.MergeDatabases = on
	})
}

// ClosedWorldPredicates returns a copy of the closed-world predicates.
func (s *Session) ClosedWorldPredicates() ([]string, error) {
	v, err := s.readSettings()
	return v.ClosedWorldPredicates, err
}

// Queries returns a copy of the queries.
func (s *Session) Queries() ([]string, error) {
	v, err := s.readSettings()
	return v.Queries, err
}

// MaxSteps returns the step limit, or domain.Unset.
func (s *Session) MaxSteps() (int, error) {
	v, err := s.readSettings()
	if err != nil {
		return domain.Unset, err
	}
	return domain.ValueOrUnset(v.MaxSteps), nil
}

// NumChains returns the chain count, or domain.Unset.
func (s *Session) NumChains() (int, error) {
	v, err := s.readSettings()
	if err != nil {
		return domain.Unset, err
	}
	return domain.ValueOrUnset(v.NumChains), nil
}

// UseMultiCore reports whether multi-core inference is enabled.
func (s *Session) UseMultiCore() (bool, error) {
	v, err := s.readSettings()
	return v.UseMultiCore, err
}

// Verbose reports whether engine verbosity is enabled.
func (s *Session) Verbose() (bool, error) {
	v, err := s.readSettings()
	return v.Verbose, err
}

// MergeDatabases reports whether evidence databases are merged engine side.
func (s *Session) MergeDatabases() (bool, error) {
	v, err := s.readSettings()
	return v.MergeDatabases, err
}

// Settings returns a copy of all parameters.
func (s *Session) Settings() (domain.Settings, error) {
	return s.readSettings()
}

func (s *Session) updateSettings(fn func(*domain.Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	fn(&s.settings.values)
	return nil
}

func (s *Session) readSettings() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return domain.Settings{}, err
	}
	return s.settings.snapshot(), nil
}

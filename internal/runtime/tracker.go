package runtime

import (
	"github.com/aretw0/mln/pkg/domain"
)

// tracker records which compiled artifacts are stale.
// A database artifact is built against a model artifact, so anything that
// invalidates the model invalidates the database too.
type tracker struct {
	model    domain.ArtifactState
	database domain.ArtifactState
}

// newTracker starts with nothing compiled, so both artifacts are stale.
func newTracker() tracker {
	return tracker{model: domain.Dirty, database: domain.Dirty}
}

func (t *tracker) modelChanged() {
	t.model = domain.Dirty
	t.database = domain.Dirty
}

func (t *tracker) databaseChanged() {
	t.database = domain.Dirty
}

func (t *tracker) modelBuilt() {
	t.model = domain.Clean
}

func (t *tracker) databaseBuilt() {
	t.database = domain.Clean
}

// SetModel replaces the model text. Nothing is compiled until the next Infer.
func (s *Session) SetModel(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.model = text
	s.tracker.modelChanged()
	return nil
}

// SetDatabase replaces the evidence reference: a file path when isFile is
// true, inline evidence text otherwise.
func (s *Session) SetDatabase(ref string, isFile bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return err
	}
	s.database = ref
	s.databaseIsFile = isFile
	s.tracker.databaseChanged()
	return nil
}

// Model returns the current model text.
func (s *Session) Model() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", err
	}
	return s.model, nil
}

// Database returns the current evidence reference and whether it is a path.
func (s *Session) Database() (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return "", false, err
	}
	return s.database, s.databaseIsFile, nil
}

// Dirty reports which artifacts will be rebuilt by the next Infer.
func (s *Session) Dirty() (model, database bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.ready(); err != nil {
		return false, false, err
	}
	return s.tracker.model == domain.Dirty, s.tracker.database == domain.Dirty, nil
}

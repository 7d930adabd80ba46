package runtime

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/mln/pkg/domain"
	"github.com/aretw0/mln/pkg/ports"
)

// compile rebuilds the stale artifacts. The model is rebuilt before the
// database, and a failed model rebuild skips the database step so a database
// artifact is never built against an outdated model. A flag is only cleared
// after its artifact was rebuilt successfully.
// Callers must hold s.mu.
func (s *Session) compile(ctx context.Context) error {
	if s.tracker.model == domain.Dirty {
		if err := s.compileModel(ctx); err != nil {
			return err
		}
	}
	if s.tracker.database == domain.Dirty {
		if err := s.compileDatabase(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) compileModel(ctx context.Context) error {
	start := time.Now()
	logic := s.catalog.Logics.Name(s.logic)
	grammar := s.catalog.Grammars.Name(s.grammar)

	model, err := s.service.LoadModel(ctx, s.model, logic, grammar)
	s.emitCompile(ctx, &domain.CompileEvent{
		EventBase: s.eventBase(domain.EventCompile, start),
		Artifact:  domain.ArtifactModel,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		s.logger.Error("model compilation failed", "artifact", domain.ArtifactModel, "logic", logic, "grammar", grammar, "err", err)
		return fmt.Errorf("%w: load model: %w", domain.ErrCompilation, err)
	}

	s.artifacts.model = model
	s.tracker.modelBuilt()
	s.logger.Debug("model compiled", "artifact", domain.ArtifactModel, "logic", logic, "grammar", grammar)
	return nil
}

func (s *Session) compileDatabase(ctx context.Context) error {
	start := time.Now()
	db, err := s.loadDatabase(ctx)
	s.emitCompile(ctx, &domain.CompileEvent{
		EventBase: s.eventBase(domain.EventCompile, start),
		Artifact:  domain.ArtifactDatabase,
		Duration:  time.Since(start),
		Err:       err,
	})
	if err != nil {
		s.logger.Error("database compilation failed", "artifact", domain.ArtifactDatabase, "file", s.databaseIsFile, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrCompilation, err)
	}

	s.artifacts.database = db
	s.tracker.databaseBuilt()
	s.logger.Debug("database compiled", "artifact", domain.ArtifactDatabase, "file", s.databaseIsFile)
	return nil
}

// loadDatabase builds the evidence against the current model artifact and
// keeps only the first database the engine returns.
func (s *Session) loadDatabase(ctx context.Context) (db ports.DatabaseArtifact, err error) {
	var dbs []ports.DatabaseArtifact
	if s.databaseIsFile {
		dbs, err = s.service.LoadDatabaseFile(ctx, s.artifacts.model, s.database)
	} else {
		dbs, err = s.service.ParseDatabase(ctx, s.artifacts.model, s.database)
	}
	if err != nil {
		return nil, fmt.Errorf("load database: %w", err)
	}
	if len(dbs) == 0 {
		return nil, fmt.Errorf("load database: engine returned no databases")
	}
	if len(dbs) > 1 {
		s.logger.Debug("discarding extra databases", "artifact", domain.ArtifactDatabase, "count", len(dbs)-1)
	}
	return dbs[0], nil
}

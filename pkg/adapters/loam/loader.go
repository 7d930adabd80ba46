// Package loam stores MLN query projects as Markdown documents with YAML
// frontmatter, using the Loam document repository.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
)

// ProjectLoader reads query projects from a Loam repository.
type ProjectLoader struct {
	Repo *loam.TypedRepository[ProjectMetadata]
	root string
}

// New creates a loader over an existing typed repository.
// root resolves relative database paths.
func New(repo *loam.TypedRepository[ProjectMetadata], root string) *ProjectLoader {
	return &ProjectLoader{
		Repo: repo,
		root: root,
	}
}

// Open initializes a read-only Loam repository at path.
func Open(path string) (*ProjectLoader, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	// Strict mode keeps numbers as json.Number across formats.
	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[ProjectMetadata](repo), absPath), nil
}

// Get loads a project by document ID (with or without extension).
func (l *ProjectLoader) Get(ctx context.Context, id string) (*Project, error) {
	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}
	return l.project(doc.ID, doc.Data, doc.Content)
}

// List returns all projects sorted by ID.
func (l *ProjectLoader) List(ctx context.Context) ([]*Project, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	projects := make([]*Project, 0, len(docs))
	for _, doc := range docs {
		p, err := l.project(doc.ID, doc.Data, doc.Content)
		if err != nil {
			return nil, err
		}
		if existing, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("collision detected: project '%s' is defined in both '%s' and '%s'", p.ID, existing, doc.ID)
		}
		seen[p.ID] = doc.ID
		projects = append(projects, p)
	}

	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (l *ProjectLoader) project(docID string, meta ProjectMetadata, content string) (*Project, error) {
	id := trimExtension(docID)
	model := extractModel(content)
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("project %s has no model", id)
	}

	p := &Project{
		ID:                    id,
		Name:                  meta.Name,
		Description:           meta.Description,
		Model:                 model,
		Method:                meta.Method,
		Logic:                 meta.Logic,
		Grammar:               meta.Grammar,
		Queries:               meta.Queries,
		ClosedWorldPredicates: meta.ClosedWorldPredicates,
		MaxSteps:              meta.MaxSteps,
		Chains:                meta.Chains,
		MultiCore:             meta.MultiCore,
		Verbose:               meta.Verbose,
		MergeDatabases:        meta.MergeDatabases,
	}
	if p.Name == "" {
		p.Name = id
	}

	switch {
	case meta.Database != "" && meta.Evidence != "":
		return nil, fmt.Errorf("project %s: database and evidence are mutually exclusive", id)
	case meta.Database != "":
		p.Database = meta.Database
		if !filepath.IsAbs(p.Database) && l.root != "" {
			p.Database = filepath.Join(l.root, p.Database)
		}
		p.DatabaseIsFile = true
	default:
		p.Database = meta.Evidence
	}
	return p, nil
}

// extractModel returns the first fenced code block of a document body, or
// the whole body when it has none.
func extractModel(content string) string {
	start := strings.Index(content, "```")
	if start < 0 {
		return content
	}
	rest := content[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:] // skip the info string
	}
	if end := strings.Index(rest, "```"); end >= 0 {
		return rest[:end]
	}
	return rest
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}

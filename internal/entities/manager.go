// Package entities provides per-run memoized lookup-or-create resolution
// for the entities many articles share (sections, issues, categories),
// plus the tracked-entities list used for compensating rollback when one
// article version fails mid-import.
package entities

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/openjournals/backissue/internal/model"
	"github.com/openjournals/backissue/internal/repo"
)

// Entity kinds as recorded in the tracked list.
const (
	kindSection     = "section"
	kindIssue       = "issue"
	kindCategory    = "category"
	kindSubmission  = "submission"
	kindPublication = "publication"
)

type tracked struct {
	kind string
	key  string // cache key, empty for per-article entities
	id   int64
}

// Manager memoizes entity resolution for one import run. The cache is
// shared across all parser invocations of the run, so at most one entity
// is created per natural key per run; the tracked list belongs to the
// current invocation only and is cleared by Commit or Rollback.
//
// Not safe for concurrent use: the pipeline processes one article version
// at a time.
type Manager struct {
	repo    repo.Repository
	journal *model.Journal
	log     *slog.Logger

	sections   map[string]*model.Section
	issues     map[string]*model.Issue
	categories map[string]*model.Category

	tracked []tracked
}

// NewManager creates a Manager bound to one journal for one run.
func NewManager(r repo.Repository, journal *model.Journal, log *slog.Logger) *Manager {
	if log == nil {
		log = slog.Default()
	}
	return &Manager{
		repo:       r,
		journal:    journal,
		log:        log,
		sections:   make(map[string]*model.Section),
		issues:     make(map[string]*model.Issue),
		categories: make(map[string]*model.Category),
	}
}

func sectionKey(title, locale string) string { return title + "\x00" + locale }

func issueKey(volume int, number string) string {
	return strconv.Itoa(volume) + "\x00" + number
}

// Section resolves or creates the section with the given natural key.
// build supplies the entity to insert when neither the cache nor the
// store has it.
func (m *Manager) Section(ctx context.Context, title, locale string, build func() *model.Section) (*model.Section, error) {
	key := sectionKey(title, locale)
	if s, ok := m.sections[key]; ok {
		return s, nil
	}

	s, err := m.repo.FindSection(ctx, m.journal.ID, title, locale)
	if err != nil {
		return nil, fmt.Errorf("resolving section %q: %w", title, err)
	}
	if s == nil {
		s = build()
		if err := m.repo.CreateSection(ctx, s); err != nil {
			return nil, fmt.Errorf("creating section %q: %w", title, err)
		}
		m.tracked = append(m.tracked, tracked{kind: kindSection, key: key, id: s.ID})
	}
	m.sections[key] = s
	return s, nil
}

// Issue resolves or creates the issue with the given natural key.
func (m *Manager) Issue(ctx context.Context, volume int, number string, build func() *model.Issue) (*model.Issue, error) {
	key := issueKey(volume, number)
	if is, ok := m.issues[key]; ok {
		return is, nil
	}

	is, err := m.repo.FindIssue(ctx, m.journal.ID, volume, number)
	if err != nil {
		return nil, fmt.Errorf("resolving issue %d(%s): %w", volume, number, err)
	}
	if is == nil {
		is = build()
		if err := m.repo.CreateIssue(ctx, is); err != nil {
			return nil, fmt.Errorf("creating issue %d(%s): %w", volume, number, err)
		}
		m.tracked = append(m.tracked, tracked{kind: kindIssue, key: key, id: is.ID})
	}
	m.issues[key] = is
	return is, nil
}

// Category resolves or creates the category with the given path.
func (m *Manager) Category(ctx context.Context, path string, build func() *model.Category) (*model.Category, error) {
	if c, ok := m.categories[path]; ok {
		return c, nil
	}

	c, err := m.repo.FindCategory(ctx, m.journal.ID, path)
	if err != nil {
		return nil, fmt.Errorf("resolving category %q: %w", path, err)
	}
	if c == nil {
		c = build()
		if err := m.repo.CreateCategory(ctx, c); err != nil {
			return nil, fmt.Errorf("creating category %q: %w", path, err)
		}
		m.tracked = append(m.tracked, tracked{kind: kindCategory, key: path, id: c.ID})
	}
	m.categories[path] = c
	return c, nil
}

// TrackSubmission records a submission created by the current invocation.
func (m *Manager) TrackSubmission(id int64) {
	m.tracked = append(m.tracked, tracked{kind: kindSubmission, id: id})
}

// TrackPublication records a publication created by the current
// invocation. Needed when the submission itself was created by an earlier
// version's invocation and is no longer tracked.
func (m *Manager) TrackPublication(id int64) {
	m.tracked = append(m.tracked, tracked{kind: kindPublication, id: id})
}

// Tracked returns the number of entities the current invocation created.
func (m *Manager) Tracked() int {
	return len(m.tracked)
}

// Commit clears the tracked list after a successful invocation, keeping
// the created entities.
func (m *Manager) Commit() {
	m.tracked = nil
}

// Rollback deletes every entity the current invocation created and
// evicts them from the cache so a later invocation can recreate them.
// Deletion is best-effort: individual failures are logged and skipped so
// rollback never masks the original failure. The tracked list is cleared
// either way.
func (m *Manager) Rollback(ctx context.Context) {
	for i := len(m.tracked) - 1; i >= 0; i-- {
		t := m.tracked[i]
		var err error
		switch t.kind {
		case kindSection:
			err = m.repo.DeleteSection(ctx, t.id)
			delete(m.sections, t.key)
		case kindIssue:
			err = m.repo.DeleteIssue(ctx, t.id)
			delete(m.issues, t.key)
		case kindCategory:
			err = m.repo.DeleteCategory(ctx, t.id)
			delete(m.categories, t.key)
		case kindSubmission:
			err = m.repo.DeleteSubmission(ctx, t.id)
		case kindPublication:
			err = m.repo.DeletePublication(ctx, t.id)
		}
		if err != nil {
			m.log.Warn("rollback deletion failed",
				"kind", t.kind, "id", t.id, "error", err)
		}
	}
	m.tracked = nil
}

// Package importer orchestrates a batch import run: it walks the
// directory tree, dispatches each article version to a metadata parser,
// writes the resulting entities into the content store, and tallies the
// outcome per version. A failed version is rolled back and never aborts
// the run.
package importer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/openjournals/backissue/internal/entities"
	"github.com/openjournals/backissue/internal/entry"
	"github.com/openjournals/backissue/internal/model"
	"github.com/openjournals/backissue/internal/parser"
	"github.com/openjournals/backissue/internal/repo"
)

// Options configures an import run.
type Options struct {
	// DefaultAuthor is the username of the account that owns imported
	// submissions and stands in when a document names no contributors.
	DefaultAuthor string
	// DefaultEditor is the username of the assigned editor. The account
	// must hold the editor role.
	DefaultEditor string
	// Email is the contact address recorded for contributors whose
	// documents carry none.
	Email string

	// GenerateHTML produces an HTML galley from the article body when the
	// metadata grammar carries one and no HTML file already exists.
	GenerateHTML bool
	// CoverStem is the filename stem identifying cover images.
	CoverStem string
	// ParserOrder lists metadata parsers by name in probe priority order.
	ParserOrder []string

	// Out receives one status line per processed version. Required.
	Out io.Writer
	// Log receives diagnostics. Defaults to slog.Default().
	Log *slog.Logger
}

// Summary tallies one import run.
type Summary struct {
	Discovered int // article entries found in the tree
	Imported   int
	Skipped    int
	Failed     int
	// Locales lists the distinct publication locales seen, sorted.
	Locales []string
}

// Runner executes import runs against one journal.
type Runner struct {
	repo    repo.Repository
	journal *model.Journal
	author  *model.User
	editor  *model.User

	dispatcher *parser.Dispatcher
	entities   *entities.Manager

	generateHTML bool
	coverStem    string
	email        string

	out io.Writer
	log *slog.Logger

	locales map[string]bool
}

// NewRunner resolves the journal and user context for an import run.
// Unresolvable context is fatal: nothing has been imported yet, so
// failing fast is safe.
func NewRunner(ctx context.Context, r repo.Repository, journalPath string, opts Options) (*Runner, error) {
	journal, err := r.JournalByPath(ctx, journalPath)
	if err != nil {
		return nil, fmt.Errorf("resolving journal %q: %w", journalPath, err)
	}
	if journal == nil {
		return nil, fmt.Errorf("journal %q not found", journalPath)
	}

	author, err := r.UserByUsername(ctx, opts.DefaultAuthor)
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", opts.DefaultAuthor, err)
	}
	if author == nil {
		return nil, fmt.Errorf("user %q not found", opts.DefaultAuthor)
	}

	editor, err := r.UserByUsername(ctx, opts.DefaultEditor)
	if err != nil {
		return nil, fmt.Errorf("resolving user %q: %w", opts.DefaultEditor, err)
	}
	if editor == nil {
		return nil, fmt.Errorf("user %q not found", opts.DefaultEditor)
	}
	if !editor.HasRole(model.RoleEditor) {
		return nil, fmt.Errorf("user %q does not hold the %s role", opts.DefaultEditor, model.RoleEditor)
	}

	dispatcher, err := buildDispatcher(opts.ParserOrder)
	if err != nil {
		return nil, err
	}

	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	if opts.CoverStem == "" {
		opts.CoverStem = "cover"
	}

	return &Runner{
		repo:         r,
		journal:      journal,
		author:       author,
		editor:       editor,
		dispatcher:   dispatcher,
		entities:     entities.NewManager(r, journal, log),
		generateHTML: opts.GenerateHTML,
		coverStem:    opts.CoverStem,
		email:        opts.Email,
		out:          opts.Out,
		log:          log,
		locales:      make(map[string]bool),
	}, nil
}

// Run imports every article version found under root and returns the
// tally. Per-version failures are recorded and compensated, never
// propagated; only a broken walk aborts the run.
func (r *Runner) Run(ctx context.Context, root string) (*Summary, error) {
	sum := &Summary{}

	err := entry.Walk(root, func(e *entry.Entry) error {
		sum.Discovered++
		r.processEntry(ctx, e, sum)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	if sum.Imported > 0 {
		if err := ResequenceIssues(ctx, r.repo, r.journal.ID); err != nil {
			return nil, fmt.Errorf("resequencing issues: %w", err)
		}
	}

	for loc := range r.locales {
		sum.Locales = append(sum.Locales, loc)
	}
	sort.Strings(sum.Locales)
	return sum, nil
}

// processEntry imports all versions of one article entry, oldest first.
func (r *Runner) processEntry(ctx context.Context, e *entry.Entry, sum *Summary) {
	versions, err := e.Versions()
	if err != nil {
		sum.Failed++
		fmt.Fprintf(r.out, "failed  %s: %v\n", e.Label(), err)
		return
	}
	if len(versions) == 0 {
		sum.Skipped++
		fmt.Fprintf(r.out, "skipped %s: %v\n", e.Label(), parser.ErrNoVersions)
		return
	}

	state := &entryState{}
	for _, v := range versions {
		switch err := r.importVersion(ctx, v, state); {
		case err == nil:
			sum.Imported++
			fmt.Fprintf(r.out, "imported %s\n", v.Label())
		case parser.IsSkip(err):
			sum.Skipped++
			fmt.Fprintf(r.out, "skipped %s: %v\n", v.Label(), err)
		default:
			sum.Failed++
			fmt.Fprintf(r.out, "failed  %s: %v\n", v.Label(), err)
		}
	}
}

package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openjournals/backissue/internal/entry"
	"github.com/openjournals/backissue/internal/galley"
	"github.com/openjournals/backissue/internal/htmlgen"
	"github.com/openjournals/backissue/internal/locale"
	"github.com/openjournals/backissue/internal/model"
	"github.com/openjournals/backissue/internal/parser"
)

// defaultSectionTitle is used when the metadata names no section.
const defaultSectionTitle = "Articles"

// generatedHTMLName is the filename of a generated HTML galley.
const generatedHTMLName = "article.html"

// entryState carries per-article context across the versions of one
// entry, so later versions attach to the submission the first version
// created.
type entryState struct {
	submission *model.Submission
}

// importVersion runs the full pipeline for one article version. On any
// error after the first store mutation, everything this invocation
// created is rolled back before returning.
func (r *Runner) importVersion(ctx context.Context, v *entry.Version, state *entryState) error {
	fs, err := entry.LoadFileSet(v.Dir(), r.coverStem)
	if err != nil {
		return err
	}

	doc, err := parser.LoadDocument(fs.Metadata())
	if err != nil {
		return err
	}

	p, err := r.dispatcher.Match(doc)
	if err != nil {
		return err
	}

	md, err := p.Extract(doc)
	if err != nil {
		return fmt.Errorf("%s: %w", p.Name(), err)
	}
	if md.Title == "" {
		return fmt.Errorf("%s: %w", doc.Path, parser.ErrMissingTitle)
	}
	if md.Date == nil {
		return fmt.Errorf("%s: %w", doc.Path, parser.ErrMissingDate)
	}

	loc := r.resolveLocale(md.Language)

	pubIDs := r.collectPubIDs(md, fs)
	if state.submission == nil {
		if err := r.checkDuplicates(ctx, v, pubIDs); err != nil {
			return err
		}
	}

	createdSubmission := state.submission == nil
	if err := r.store(ctx, v, fs, doc, p, md, loc, pubIDs, state); err != nil {
		r.entities.Rollback(ctx)
		if createdSubmission {
			// The rollback deleted any submission this invocation
			// created; later versions must not attach to it.
			state.submission = nil
		}
		return err
	}
	r.entities.Commit()
	r.locales[loc] = true
	return nil
}

// resolveLocale maps the document's language tag onto a publication
// locale, falling back to the journal locale when the tag is unusable.
func (r *Runner) resolveLocale(raw string) string {
	loc, err := locale.Resolve(raw, r.journal.Locale)
	if err != nil {
		r.log.Warn("unresolvable language tag, using journal locale",
			"tag", raw, "locale", r.journal.Locale)
		return r.journal.Locale
	}
	return loc
}

// collectPubIDs merges the document's identifiers with a DOI probed from
// the PDF galley when the document itself carries none.
func (r *Runner) collectPubIDs(md *parser.Metadata, fs *entry.FileSet) map[string]string {
	pubIDs := make(map[string]string, len(md.PubIDs))
	for k, v := range md.PubIDs {
		pubIDs[k] = v
	}

	if pubIDs[model.PubIDDOI] == "" && fs.Galley() != "" {
		doi, err := galley.ExtractDOI(fs.Galley())
		if err != nil {
			r.log.Warn("DOI probe of PDF galley failed", "path", fs.Galley(), "error", err)
		} else if doi != "" {
			pubIDs[model.PubIDDOI] = doi
		}
	}
	return pubIDs
}

// checkDuplicates looks every identifier up in the store. A hit on the
// primary identifier excludes the article; hits on secondary identifiers
// are only reported.
func (r *Runner) checkDuplicates(ctx context.Context, v *entry.Version, pubIDs map[string]string) error {
	for idType, value := range pubIDs {
		if value == "" {
			continue
		}
		existing, err := r.repo.FindSubmissionByPubID(ctx, r.journal.ID, idType, value)
		if err != nil {
			return fmt.Errorf("looking up %s %q: %w", idType, value, err)
		}
		if existing == nil {
			continue
		}
		if idType == model.PubIDPublisher {
			return fmt.Errorf("%w: %s %q", parser.ErrAlreadyExists, idType, value)
		}
		r.log.Warn("secondary identifier already known, importing anyway",
			"entry", v.Label(), "type", idType, "value", value)
	}
	return nil
}

// store writes the version's entities into the content store. All
// mutations happen here so the caller has a single rollback point.
func (r *Runner) store(ctx context.Context, v *entry.Version, fs *entry.FileSet, doc *parser.Document, p parser.Parser, md *parser.Metadata, loc string, pubIDs map[string]string, state *entryState) error {
	section, err := r.resolveSection(ctx, md, loc)
	if err != nil {
		return err
	}

	issue, err := r.resolveIssue(ctx, v, md)
	if err != nil {
		return err
	}
	if err := r.attachCover(ctx, v, fs, issue); err != nil {
		return err
	}

	categoryIDs, err := r.resolveCategories(ctx, md)
	if err != nil {
		return err
	}

	carried := state.submission != nil
	if !carried {
		sub := &model.Submission{
			Journal: r.journal.ID,
			Section: section.ID,
			Status:  model.StatusQueued,
			PubIDs:  pubIDs,
		}
		if err := r.repo.CreateSubmission(ctx, sub); err != nil {
			return fmt.Errorf("creating submission: %w", err)
		}
		r.entities.TrackSubmission(sub.ID)
		state.submission = sub
	}

	pub := &model.Publication{
		Submission: state.submission.ID,
		Issue:      issue.ID,
		Version:    v.Number,
		Title:      md.Title,
		Abstract:   md.Abstract,
		Locale:     loc,
		Pages:      md.Pages,
		DatePub:    md.Date.Format("2006-01-02"),
		Copyright:  md.CopyrightHolder,
		Licence:    md.LicenceURL,
		Keywords:   md.Keywords,
	}
	if err := r.repo.CreatePublication(ctx, pub); err != nil {
		return fmt.Errorf("creating publication: %w", err)
	}
	if carried {
		// The submission belongs to an earlier invocation; only this
		// publication must be compensated on failure.
		r.entities.TrackPublication(pub.ID)
	}

	if err := r.addAuthors(ctx, pub, md); err != nil {
		return err
	}
	if err := r.addFiles(ctx, pub, fs, doc, p, md); err != nil {
		return err
	}
	if len(categoryIDs) > 0 {
		if err := r.repo.AssignCategories(ctx, pub.ID, categoryIDs); err != nil {
			return fmt.Errorf("assigning categories: %w", err)
		}
	}

	if err := r.repo.SetSubmissionStatus(ctx, state.submission.ID, model.StatusPublished); err != nil {
		return fmt.Errorf("publishing submission: %w", err)
	}
	return nil
}

func (r *Runner) resolveSection(ctx context.Context, md *parser.Metadata, loc string) (*model.Section, error) {
	title := md.SectionTitle
	if title == "" {
		title = defaultSectionTitle
	}
	return r.entities.Section(ctx, title, loc, func() *model.Section {
		return &model.Section{Journal: r.journal.ID, Title: title, Locale: loc}
	})
}

func (r *Runner) resolveIssue(ctx context.Context, v *entry.Version, md *parser.Metadata) (*model.Issue, error) {
	volume := md.Volume
	if volume == 0 {
		volume = v.Entry().Volume
	}
	number := md.IssueNumber
	if number == "" {
		number = v.Entry().Issue
	}
	year := md.IssueYear
	if year == 0 {
		year = md.Date.Year()
	}
	return r.entities.Issue(ctx, volume, number, func() *model.Issue {
		return &model.Issue{
			Journal:   r.journal.ID,
			Volume:    volume,
			Number:    number,
			Year:      year,
			Published: true,
		}
	})
}

// attachCover sets the issue cover from the version directory or, failing
// that, from an image sitting beside the article directories. The first
// cover wins; later versions never replace it.
func (r *Runner) attachCover(ctx context.Context, v *entry.Version, fs *entry.FileSet, issue *model.Issue) error {
	if issue.CoverPath != "" {
		return nil
	}
	cover := fs.Cover()
	if cover == "" {
		found, err := entry.FindCover(v.Entry().IssueDir(), r.coverStem)
		if err != nil {
			return err
		}
		cover = found
	}
	if cover == "" {
		return nil
	}
	if err := r.repo.SetIssueCover(ctx, issue.ID, cover); err != nil {
		return fmt.Errorf("setting issue cover: %w", err)
	}
	issue.CoverPath = cover
	return nil
}

func (r *Runner) resolveCategories(ctx context.Context, md *parser.Metadata) ([]int64, error) {
	var ids []int64
	for _, path := range md.Categories {
		c, err := r.entities.Category(ctx, path, func() *model.Category {
			return &model.Category{
				Journal: r.journal.ID,
				Path:    path,
				Title:   filepath.Base(path),
			}
		})
		if err != nil {
			return nil, err
		}
		ids = append(ids, c.ID)
	}
	return ids, nil
}

// addAuthors records the document's contributors, or the default author
// account when the document names none.
func (r *Runner) addAuthors(ctx context.Context, pub *model.Publication, md *parser.Metadata) error {
	authors := md.Authors
	if len(authors) == 0 {
		authors = []parser.AuthorMeta{{
			FamilyName: r.author.Username,
			Email:      r.author.Email,
		}}
	}
	for i, am := range authors {
		email := am.Email
		if email == "" {
			email = r.email
		}
		a := &model.Author{
			Publication: pub.ID,
			GivenName:   am.GivenName,
			FamilyName:  am.FamilyName,
			Email:       email,
			Affiliation: am.Affiliation,
			ORCID:       am.ORCID,
			Seq:         i + 1,
		}
		if err := r.repo.AddAuthor(ctx, a); err != nil {
			return fmt.Errorf("adding author %s: %w", am.FamilyName, err)
		}
	}
	return nil
}

// addFiles attaches the version's galleys and supplementary files,
// generating an HTML galley first when enabled and none exists.
func (r *Runner) addFiles(ctx context.Context, pub *model.Publication, fs *entry.FileSet, doc *parser.Document, p parser.Parser, md *parser.Metadata) error {
	if r.generateHTML && len(fs.HTML()) == 0 {
		if err := r.generateHTMLGalley(fs, doc, p, md); err != nil {
			return err
		}
	}

	add := func(kind model.FileKind, path string) error {
		f := &model.FileAttachment{
			Publication: pub.ID,
			Kind:        kind,
			Name:        filepath.Base(path),
			Path:        path,
		}
		if err := r.repo.AddFile(ctx, f); err != nil {
			return fmt.Errorf("adding %s file %s: %w", kind, f.Name, err)
		}
		return nil
	}

	if fs.Galley() != "" {
		if err := add(model.FilePDF, fs.Galley()); err != nil {
			return err
		}
	}
	for _, h := range fs.HTML() {
		if err := add(model.FileHTML, h); err != nil {
			return err
		}
	}
	for _, s := range fs.Supplementary() {
		if err := add(model.FileSupplementary, s); err != nil {
			return err
		}
	}
	return nil
}

// generateHTMLGalley writes an HTML rendition next to the metadata file
// and reloads the file set so it is picked up as a galley. Grammars
// without a body are silently left without an HTML rendition.
func (r *Runner) generateHTMLGalley(fs *entry.FileSet, doc *parser.Document, p parser.Parser, md *parser.Metadata) error {
	bp, ok := p.(parser.BodyProvider)
	if !ok {
		return nil
	}
	body, err := bp.Body(doc)
	if err != nil {
		return fmt.Errorf("extracting article body: %w", err)
	}
	if body == nil {
		return nil
	}

	html, err := htmlgen.Generate(md.Title, body)
	if err != nil {
		return fmt.Errorf("generating HTML rendition: %w", err)
	}
	path := filepath.Join(fs.Dir(), generatedHTMLName)
	if err := os.WriteFile(path, html, 0o644); err != nil {
		return fmt.Errorf("writing HTML rendition: %w", err)
	}
	return fs.Reload()
}

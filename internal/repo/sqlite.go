package repo

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/openjournals/backissue/internal/model"
	_ "modernc.org/sqlite"
)

// DB is the SQLite-backed Repository implementation.
type DB struct {
	db *sql.DB
}

var _ Repository = (*DB)(nil)

// Open opens or creates a SQLite content store at the given path.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes; the pipeline is strictly
	// sequential anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the store schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS journals (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			locale TEXT NOT NULL,
			current_issue_id INTEGER
		);

		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS user_roles (
			user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			role TEXT NOT NULL,
			UNIQUE(user_id, role)
		);

		CREATE TABLE IF NOT EXISTS sections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journal_id INTEGER NOT NULL REFERENCES journals(id),
			title TEXT NOT NULL,
			locale TEXT NOT NULL,
			seq INTEGER NOT NULL DEFAULT 0,
			UNIQUE(journal_id, title, locale)
		);

		CREATE TABLE IF NOT EXISTS issues (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journal_id INTEGER NOT NULL REFERENCES journals(id),
			volume INTEGER NOT NULL,
			number TEXT NOT NULL,
			year INTEGER,
			published INTEGER NOT NULL DEFAULT 0,
			seq INTEGER NOT NULL DEFAULT 0,
			cover_path TEXT,
			UNIQUE(journal_id, volume, number)
		);

		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journal_id INTEGER NOT NULL REFERENCES journals(id),
			path TEXT NOT NULL,
			title TEXT NOT NULL,
			UNIQUE(journal_id, path)
		);

		CREATE TABLE IF NOT EXISTS submissions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			journal_id INTEGER NOT NULL REFERENCES journals(id),
			section_id INTEGER,
			status TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS submission_ids (
			submission_id INTEGER NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			id_type TEXT NOT NULL,
			id_value TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_submission_ids_lookup
			ON submission_ids(id_type, id_value);

		CREATE TABLE IF NOT EXISTS publications (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			submission_id INTEGER NOT NULL REFERENCES submissions(id) ON DELETE CASCADE,
			issue_id INTEGER,
			version INTEGER NOT NULL,
			title TEXT NOT NULL,
			abstract TEXT,
			locale TEXT NOT NULL,
			pages TEXT,
			date_published TEXT,
			copyright TEXT,
			licence_url TEXT,
			keywords_json TEXT
		);

		CREATE TABLE IF NOT EXISTS authors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
			given_name TEXT,
			family_name TEXT,
			email TEXT,
			affiliation TEXT,
			orcid TEXT,
			seq INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS publication_categories (
			publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			UNIQUE(publication_id, category_id)
		);

		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			publication_id INTEGER NOT NULL REFERENCES publications(id) ON DELETE CASCADE,
			kind TEXT NOT NULL,
			name TEXT NOT NULL,
			path TEXT NOT NULL
		);
	`
	_, err := db.Exec(schema)
	return err
}

// CreateJournal inserts a journal. Used by store provisioning and tests,
// not by the import pipeline itself.
func (d *DB) CreateJournal(ctx context.Context, j *model.Journal) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO journals (path, title, locale) VALUES (?, ?, ?)",
		j.Path, j.Title, j.Locale)
	if err != nil {
		return fmt.Errorf("inserting journal: %w", err)
	}
	j.ID, err = res.LastInsertId()
	return err
}

// CreateUser inserts a user with the given roles.
func (d *DB) CreateUser(ctx context.Context, u *model.User) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO users (username, email) VALUES (?, ?)", u.Username, u.Email)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	for _, role := range u.Roles {
		if _, err := d.db.ExecContext(ctx,
			"INSERT INTO user_roles (user_id, role) VALUES (?, ?)", u.ID, role); err != nil {
			return fmt.Errorf("inserting role %s: %w", role, err)
		}
	}
	return nil
}

// JournalByPath implements Repository.
func (d *DB) JournalByPath(ctx context.Context, path string) (*model.Journal, error) {
	var j model.Journal
	var current sql.NullInt64
	err := d.db.QueryRowContext(ctx,
		"SELECT id, path, title, locale, current_issue_id FROM journals WHERE path = ?", path).
		Scan(&j.ID, &j.Path, &j.Title, &j.Locale, &current)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying journal: %w", err)
	}
	j.Current = current.Int64
	return &j, nil
}

// UserByUsername implements Repository.
func (d *DB) UserByUsername(ctx context.Context, username string) (*model.User, error) {
	var u model.User
	err := d.db.QueryRowContext(ctx,
		"SELECT id, username, email FROM users WHERE username = ?", username).
		Scan(&u.ID, &u.Username, &u.Email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	rows, err := d.db.QueryContext(ctx,
		"SELECT role FROM user_roles WHERE user_id = ?", u.ID)
	if err != nil {
		return nil, fmt.Errorf("querying roles: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, err
		}
		u.Roles = append(u.Roles, role)
	}
	return &u, rows.Err()
}

// FindSection implements Repository.
func (d *DB) FindSection(ctx context.Context, journalID int64, title, locale string) (*model.Section, error) {
	var s model.Section
	err := d.db.QueryRowContext(ctx,
		"SELECT id, journal_id, title, locale, seq FROM sections WHERE journal_id = ? AND title = ? AND locale = ?",
		journalID, title, locale).
		Scan(&s.ID, &s.Journal, &s.Title, &s.Locale, &s.Seq)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying section: %w", err)
	}
	return &s, nil
}

// CreateSection implements Repository.
func (d *DB) CreateSection(ctx context.Context, s *model.Section) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO sections (journal_id, title, locale, seq) VALUES (?, ?, ?, ?)",
		s.Journal, s.Title, s.Locale, s.Seq)
	if err != nil {
		return fmt.Errorf("inserting section: %w", err)
	}
	s.ID, err = res.LastInsertId()
	return err
}

// DeleteSection implements Repository.
func (d *DB) DeleteSection(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM sections WHERE id = ?", id)
	return err
}

// FindIssue implements Repository.
func (d *DB) FindIssue(ctx context.Context, journalID int64, volume int, number string) (*model.Issue, error) {
	row := d.db.QueryRowContext(ctx,
		"SELECT id, journal_id, volume, number, year, published, seq, cover_path FROM issues WHERE journal_id = ? AND volume = ? AND number = ?",
		journalID, volume, number)
	return scanIssue(row)
}

func scanIssue(row *sql.Row) (*model.Issue, error) {
	var is model.Issue
	var year sql.NullInt64
	var cover sql.NullString
	err := row.Scan(&is.ID, &is.Journal, &is.Volume, &is.Number, &year, &is.Published, &is.Seq, &cover)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying issue: %w", err)
	}
	is.Year = int(year.Int64)
	is.CoverPath = cover.String
	return &is, nil
}

// CreateIssue implements Repository.
func (d *DB) CreateIssue(ctx context.Context, issue *model.Issue) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO issues (journal_id, volume, number, year, published, seq, cover_path) VALUES (?, ?, ?, ?, ?, ?, ?)",
		issue.Journal, issue.Volume, issue.Number, issue.Year, issue.Published, issue.Seq, issue.CoverPath)
	if err != nil {
		return fmt.Errorf("inserting issue: %w", err)
	}
	issue.ID, err = res.LastInsertId()
	return err
}

// DeleteIssue implements Repository.
func (d *DB) DeleteIssue(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM issues WHERE id = ?", id)
	return err
}

// SetIssueCover implements Repository.
func (d *DB) SetIssueCover(ctx context.Context, issueID int64, coverPath string) error {
	_, err := d.db.ExecContext(ctx, "UPDATE issues SET cover_path = ? WHERE id = ?", coverPath, issueID)
	return err
}

// PublishedIssues implements Repository.
func (d *DB) PublishedIssues(ctx context.Context, journalID int64) ([]*model.Issue, error) {
	rows, err := d.db.QueryContext(ctx,
		"SELECT id, journal_id, volume, number, year, published, seq, cover_path FROM issues WHERE journal_id = ? AND published = 1 ORDER BY id",
		journalID)
	if err != nil {
		return nil, fmt.Errorf("querying published issues: %w", err)
	}
	defer rows.Close()

	var issues []*model.Issue
	for rows.Next() {
		var is model.Issue
		var year sql.NullInt64
		var cover sql.NullString
		if err := rows.Scan(&is.ID, &is.Journal, &is.Volume, &is.Number, &year, &is.Published, &is.Seq, &cover); err != nil {
			return nil, err
		}
		is.Year = int(year.Int64)
		is.CoverPath = cover.String
		issues = append(issues, &is)
	}
	return issues, rows.Err()
}

// UpdateIssueOrder implements Repository.
func (d *DB) UpdateIssueOrder(ctx context.Context, issueID int64, seq int) error {
	_, err := d.db.ExecContext(ctx, "UPDATE issues SET seq = ? WHERE id = ?", seq, issueID)
	return err
}

// SetCurrentIssue implements Repository.
func (d *DB) SetCurrentIssue(ctx context.Context, journalID, issueID int64) error {
	_, err := d.db.ExecContext(ctx,
		"UPDATE journals SET current_issue_id = ? WHERE id = ?", issueID, journalID)
	return err
}

// FindCategory implements Repository.
func (d *DB) FindCategory(ctx context.Context, journalID int64, path string) (*model.Category, error) {
	var c model.Category
	err := d.db.QueryRowContext(ctx,
		"SELECT id, journal_id, path, title FROM categories WHERE journal_id = ? AND path = ?",
		journalID, path).
		Scan(&c.ID, &c.Journal, &c.Path, &c.Title)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}
	return &c, nil
}

// CreateCategory implements Repository.
func (d *DB) CreateCategory(ctx context.Context, c *model.Category) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO categories (journal_id, path, title) VALUES (?, ?, ?)",
		c.Journal, c.Path, c.Title)
	if err != nil {
		return fmt.Errorf("inserting category: %w", err)
	}
	c.ID, err = res.LastInsertId()
	return err
}

// DeleteCategory implements Repository.
func (d *DB) DeleteCategory(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	return err
}

// FindSubmissionByPubID implements Repository.
func (d *DB) FindSubmissionByPubID(ctx context.Context, journalID int64, idType, value string) (*model.Submission, error) {
	var s model.Submission
	var section sql.NullInt64
	err := d.db.QueryRowContext(ctx, `
		SELECT s.id, s.journal_id, s.section_id, s.status
		FROM submissions s
		JOIN submission_ids si ON si.submission_id = s.id
		WHERE s.journal_id = ? AND si.id_type = ? AND si.id_value = ?`,
		journalID, idType, value).
		Scan(&s.ID, &s.Journal, &section, &s.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying submission by %s: %w", idType, err)
	}
	s.Section = section.Int64
	return &s, nil
}

// CreateSubmission implements Repository, inserting the submission and
// its public identifiers.
func (d *DB) CreateSubmission(ctx context.Context, s *model.Submission) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO submissions (journal_id, section_id, status) VALUES (?, ?, ?)",
		s.Journal, s.Section, s.Status)
	if err != nil {
		return fmt.Errorf("inserting submission: %w", err)
	}
	if s.ID, err = res.LastInsertId(); err != nil {
		return err
	}
	for idType, value := range s.PubIDs {
		if _, err := d.db.ExecContext(ctx,
			"INSERT INTO submission_ids (submission_id, id_type, id_value) VALUES (?, ?, ?)",
			s.ID, idType, value); err != nil {
			return fmt.Errorf("inserting submission id %s: %w", idType, err)
		}
	}
	return nil
}

// DeleteSubmission implements Repository. Publications, authors, files,
// and identifiers cascade.
func (d *DB) DeleteSubmission(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM submissions WHERE id = ?", id)
	return err
}

// SetSubmissionStatus implements Repository.
func (d *DB) SetSubmissionStatus(ctx context.Context, id int64, status model.SubmissionStatus) error {
	_, err := d.db.ExecContext(ctx, "UPDATE submissions SET status = ? WHERE id = ?", status, id)
	return err
}

// CreatePublication implements Repository.
func (d *DB) CreatePublication(ctx context.Context, p *model.Publication) error {
	keywords, err := json.Marshal(p.Keywords)
	if err != nil {
		return fmt.Errorf("encoding keywords: %w", err)
	}
	res, err := d.db.ExecContext(ctx, `
		INSERT INTO publications
			(submission_id, issue_id, version, title, abstract, locale, pages, date_published, copyright, licence_url, keywords_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.Submission, p.Issue, p.Version, p.Title, p.Abstract, p.Locale, p.Pages,
		p.DatePub, p.Copyright, p.Licence, string(keywords))
	if err != nil {
		return fmt.Errorf("inserting publication: %w", err)
	}
	p.ID, err = res.LastInsertId()
	return err
}

// DeletePublication implements Repository.
func (d *DB) DeletePublication(ctx context.Context, id int64) error {
	_, err := d.db.ExecContext(ctx, "DELETE FROM publications WHERE id = ?", id)
	return err
}

// AddAuthor implements Repository.
func (d *DB) AddAuthor(ctx context.Context, a *model.Author) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO authors (publication_id, given_name, family_name, email, affiliation, orcid, seq) VALUES (?, ?, ?, ?, ?, ?, ?)",
		a.Publication, a.GivenName, a.FamilyName, a.Email, a.Affiliation, a.ORCID, a.Seq)
	if err != nil {
		return fmt.Errorf("inserting author: %w", err)
	}
	a.ID, err = res.LastInsertId()
	return err
}

// AddFile implements Repository.
func (d *DB) AddFile(ctx context.Context, f *model.FileAttachment) error {
	res, err := d.db.ExecContext(ctx,
		"INSERT INTO files (publication_id, kind, name, path) VALUES (?, ?, ?, ?)",
		f.Publication, f.Kind, f.Name, f.Path)
	if err != nil {
		return fmt.Errorf("inserting file: %w", err)
	}
	f.ID, err = res.LastInsertId()
	return err
}

// AssignCategories implements Repository.
func (d *DB) AssignCategories(ctx context.Context, publicationID int64, categoryIDs []int64) error {
	for _, id := range categoryIDs {
		if _, err := d.db.ExecContext(ctx,
			"INSERT OR IGNORE INTO publication_categories (publication_id, category_id) VALUES (?, ?)",
			publicationID, id); err != nil {
			return fmt.Errorf("assigning category %d: %w", id, err)
		}
	}
	return nil
}

// CountRows returns the number of rows in a table. Intended for tests and
// store diagnostics.
func (d *DB) CountRows(ctx context.Context, table string) (int, error) {
	switch table {
	case "journals", "users", "sections", "issues", "categories",
		"submissions", "submission_ids", "publications", "authors",
		"publication_categories", "files":
	default:
		return 0, fmt.Errorf("unknown table %q", table)
	}
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n)
	return n, err
}

// PublicationsBySubmission returns a submission's publications ordered by
// version.
func (d *DB) PublicationsBySubmission(ctx context.Context, submissionID int64) ([]*model.Publication, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, submission_id, issue_id, version, title, abstract, locale, pages, date_published, copyright, licence_url, keywords_json
		FROM publications WHERE submission_id = ? ORDER BY version`, submissionID)
	if err != nil {
		return nil, fmt.Errorf("querying publications: %w", err)
	}
	defer rows.Close()

	var pubs []*model.Publication
	for rows.Next() {
		var p model.Publication
		var issue sql.NullInt64
		var keywords sql.NullString
		if err := rows.Scan(&p.ID, &p.Submission, &issue, &p.Version, &p.Title, &p.Abstract,
			&p.Locale, &p.Pages, &p.DatePub, &p.Copyright, &p.Licence, &keywords); err != nil {
			return nil, err
		}
		p.Issue = issue.Int64
		if keywords.String != "" {
			if err := json.Unmarshal([]byte(keywords.String), &p.Keywords); err != nil {
				return nil, fmt.Errorf("decoding keywords: %w", err)
			}
		}
		pubs = append(pubs, &p)
	}
	return pubs, rows.Err()
}

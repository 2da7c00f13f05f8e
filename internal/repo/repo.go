// Package repo defines the content-store contract the import pipeline
// writes into, and a SQLite-backed implementation of it. Each call is
// individually durable; the pipeline does not wrap an import in an outer
// transaction and instead compensates with tracked-entity deletion on
// failure.
package repo

import (
	"context"

	"github.com/openjournals/backissue/internal/model"
)

// Repository is the content store consumed by the import pipeline. Find
// methods return (nil, nil) when no matching row exists; Create methods
// fill in the entity's ID.
type Repository interface {
	JournalByPath(ctx context.Context, path string) (*model.Journal, error)
	UserByUsername(ctx context.Context, username string) (*model.User, error)

	FindSection(ctx context.Context, journalID int64, title, locale string) (*model.Section, error)
	CreateSection(ctx context.Context, s *model.Section) error
	DeleteSection(ctx context.Context, id int64) error

	FindIssue(ctx context.Context, journalID int64, volume int, number string) (*model.Issue, error)
	CreateIssue(ctx context.Context, issue *model.Issue) error
	DeleteIssue(ctx context.Context, id int64) error
	SetIssueCover(ctx context.Context, issueID int64, coverPath string) error
	PublishedIssues(ctx context.Context, journalID int64) ([]*model.Issue, error)
	UpdateIssueOrder(ctx context.Context, issueID int64, seq int) error
	SetCurrentIssue(ctx context.Context, journalID, issueID int64) error

	FindCategory(ctx context.Context, journalID int64, path string) (*model.Category, error)
	CreateCategory(ctx context.Context, c *model.Category) error
	DeleteCategory(ctx context.Context, id int64) error

	FindSubmissionByPubID(ctx context.Context, journalID int64, idType, value string) (*model.Submission, error)
	CreateSubmission(ctx context.Context, s *model.Submission) error
	DeleteSubmission(ctx context.Context, id int64) error
	SetSubmissionStatus(ctx context.Context, id int64, status model.SubmissionStatus) error

	CreatePublication(ctx context.Context, p *model.Publication) error
	DeletePublication(ctx context.Context, id int64) error
	AddAuthor(ctx context.Context, a *model.Author) error
	AddFile(ctx context.Context, f *model.FileAttachment) error
	AssignCategories(ctx context.Context, publicationID int64, categoryIDs []int64) error
}

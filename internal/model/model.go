// Package model defines the core domain types for journal content.
package model

// Journal represents the target journal context for an import run.
type Journal struct {
	ID      int64  `json:"id"`
	Path    string `json:"path"` // URL path segment, the natural key
	Title   string `json:"title"`
	Locale  string `json:"locale"` // Primary locale, e.g. "en_US"
	Current int64  `json:"current_issue_id,omitempty"`
}

// User represents an account in the content store.
type User struct {
	ID       int64    `json:"id"`
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Roles    []string `json:"roles"`
}

// RoleEditor is the role required of the configured default editor.
const RoleEditor = "editor"

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Section represents a journal section (e.g. "Research Articles").
// Natural key: title + locale within a journal.
type Section struct {
	ID      int64  `json:"id"`
	Journal int64  `json:"journal_id"`
	Title   string `json:"title"`
	Locale  string `json:"locale"`
	Seq     int    `json:"seq,omitempty"`
}

// Issue represents a journal issue. Natural key: volume + number within
// a journal. Number is a string because many journals use labels like
// "3-4" or "S1".
type Issue struct {
	ID        int64  `json:"id"`
	Journal   int64  `json:"journal_id"`
	Volume    int    `json:"volume"`
	Number    string `json:"number"`
	Year      int    `json:"year,omitempty"`
	Published bool   `json:"published"`
	Current   bool   `json:"current"`
	Seq       int    `json:"seq,omitempty"`
	CoverPath string `json:"cover_path,omitempty"`
}

// Category represents a hierarchical subject category. Natural key: the
// slash-separated path within a journal.
type Category struct {
	ID      int64  `json:"id"`
	Journal int64  `json:"journal_id"`
	Path    string `json:"path"`
	Title   string `json:"title"`
}

// Submission represents one article across all of its publication versions.
type Submission struct {
	ID      int64             `json:"id"`
	Journal int64             `json:"journal_id"`
	Section int64             `json:"section_id,omitempty"`
	Status  SubmissionStatus  `json:"status"`
	PubIDs  map[string]string `json:"pub_ids,omitempty"` // identifier type -> value
}

// SubmissionStatus enumerates submission lifecycle states.
type SubmissionStatus string

const (
	StatusQueued    SubmissionStatus = "queued"
	StatusPublished SubmissionStatus = "published"
)

// Identifier types attached to submissions. PubIDPublisher is the primary
// deduplication key; everything else is secondary.
const (
	PubIDPublisher = "publisher-id"
	PubIDDOI       = "doi"
)

// Publication represents one published version of a submission.
type Publication struct {
	ID         int64            `json:"id"`
	Submission int64            `json:"submission_id"`
	Issue      int64            `json:"issue_id,omitempty"`
	Version    int              `json:"version"`
	Title      string           `json:"title"`
	Abstract   string           `json:"abstract,omitempty"`
	Locale     string           `json:"locale"`
	Pages      string           `json:"pages,omitempty"` // e.g. "101-118"
	DatePub    string           `json:"date_published,omitempty"`
	Copyright  string           `json:"copyright,omitempty"`
	Licence    string           `json:"licence_url,omitempty"`
	Keywords   []string         `json:"keywords,omitempty"`
	Authors    []Author         `json:"authors,omitempty"`
	Categories []int64          `json:"category_ids,omitempty"`
	Files      []FileAttachment `json:"files,omitempty"`
}

// Author represents a publication contributor.
type Author struct {
	ID          int64  `json:"id"`
	Publication int64  `json:"publication_id"`
	GivenName   string `json:"given_name"`
	FamilyName  string `json:"family_name"`
	Email       string `json:"email,omitempty"`
	Affiliation string `json:"affiliation,omitempty"`
	ORCID       string `json:"orcid,omitempty"`
	Seq         int    `json:"seq"`
}

// FileKind classifies a file attached to a publication.
type FileKind string

const (
	FilePDF           FileKind = "pdf"
	FileHTML          FileKind = "html"
	FileSupplementary FileKind = "supplementary"
)

// FileAttachment represents a galley or supplementary file attached to a
// publication. Path is the source path on disk at import time.
type FileAttachment struct {
	ID          int64    `json:"id"`
	Publication int64    `json:"publication_id"`
	Kind        FileKind `json:"kind"`
	Name        string   `json:"name"`
	Path        string   `json:"path"`
}

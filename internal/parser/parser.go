package parser

import "time"

// MatchResult reports whether a dialect recognizes a document. Probing is
// an explicit result, never an error: a mismatch just means the dispatcher
// tries the next parser.
type MatchResult struct {
	Matched bool
	// Reason describes why the probe matched or not, for diagnostics.
	Reason string
}

// Matched returns a positive MatchResult.
func Matched(reason string) MatchResult {
	return MatchResult{Matched: true, Reason: reason}
}

// NotMatched returns a negative MatchResult.
func NotMatched(reason string) MatchResult {
	return MatchResult{Matched: false, Reason: reason}
}

// Parser extracts bibliographic metadata from one source grammar.
// Implementations are stateless; all per-document state lives in the
// Document and the returned Metadata.
type Parser interface {
	// Name returns the grammar identifier (e.g. "aplusplus", "jats").
	Name() string

	// Probe reports whether this parser can handle the document, by
	// structural inspection or declared-DOCTYPE comparison.
	Probe(doc *Document) MatchResult

	// Extract decodes the document into dialect-neutral metadata. It is
	// only called after a positive Probe; extraction failures are
	// terminal for the version and are never retried under another
	// grammar.
	Extract(doc *Document) (*Metadata, error)
}

// BodyProvider is implemented by parsers whose documents carry a full-text
// body suitable for HTML generation.
type BodyProvider interface {
	// Body returns the raw XML of the document body, or nil if absent.
	Body(doc *Document) ([]byte, error)
}

// Metadata is the dialect-neutral extraction result consumed by the
// import pipeline.
type Metadata struct {
	// Language is the raw language tag declared by the document, prior
	// to locale resolution.
	Language string

	Title    string
	Abstract string

	Volume      int
	IssueNumber string
	IssueYear   int

	SectionTitle string
	Pages        string

	// Date is the derived publication date, nil when no date source in
	// the document produced a calendar-valid date.
	Date *time.Time

	Keywords   []string
	Categories []string // slash-separated category paths

	Authors []AuthorMeta

	// PubIDs maps identifier type (publisher-id, doi, ...) to value.
	PubIDs map[string]string

	CopyrightHolder string
	LicenceURL      string
}

// AuthorMeta is one extracted contributor.
type AuthorMeta struct {
	GivenName   string
	FamilyName  string
	Email       string
	Affiliation string
	ORCID       string
}

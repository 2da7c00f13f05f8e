package parser

import "errors"

// Errors raised while selecting and running parsers. Skip-class errors
// exclude one article version from the import without counting as a
// failure; everything else is fatal for the version but never for the run.
var (
	// ErrNoSuitableParser indicates no registered parser recognized the
	// document's doctype or structure. Skip-class.
	ErrNoSuitableParser = errors.New("no suitable parser for document")

	// ErrAlreadyExists indicates a submission with the same primary
	// public identifier already exists in the journal. Skip-class.
	ErrAlreadyExists = errors.New("submission already exists")

	// ErrNoVersions indicates an article directory yielded zero
	// versions. Skip-class.
	ErrNoVersions = errors.New("article has no versions")

	// ErrMalformedXML indicates the metadata file could not be parsed.
	ErrMalformedXML = errors.New("malformed XML document")

	// ErrMissingTitle indicates the document carries no article title.
	ErrMissingTitle = errors.New("missing article title")

	// ErrMissingDate indicates no valid publication date could be
	// derived from any of the document's date sources.
	ErrMissingDate = errors.New("missing or invalid publication date")
)

// IsSkip reports whether err excludes a version from import without being
// a failure.
func IsSkip(err error) bool {
	return errors.Is(err, ErrNoSuitableParser) ||
		errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrNoVersions)
}

// Package locale resolves document language tags into the journal's
// locale space. Source documents declare languages inconsistently
// (two-letter, three-letter, mixed case); resolution canonicalizes them
// and prefers the journal's own locale when the base language matches, so
// an "fr" document in an fr_CA journal lands on fr_CA rather than
// creating a near-duplicate plain-fr variant.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Resolve maps a raw language tag from a document to a locale. It returns
// journalLocale when the tag is empty or its base language matches the
// journal's, and the canonical base tag otherwise. ISO 639-2/3 codes
// ("eng", "fra") are folded to their ISO 639-1 equivalents where one
// exists.
func Resolve(raw, journalLocale string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return journalLocale, nil
	}

	tag, err := language.Parse(strings.ToLower(strings.ReplaceAll(raw, "_", "-")))
	if err != nil {
		return "", fmt.Errorf("unrecognized language tag %q: %w", raw, err)
	}
	base, _ := tag.Base()

	jbase, err := Base(journalLocale)
	if err != nil {
		return "", err
	}
	if base == jbase {
		return journalLocale, nil
	}
	return base.String(), nil
}

// Base returns the base language of a locale in the journal's underscore
// convention (e.g. "fr_CA" -> fr).
func Base(loc string) (language.Base, error) {
	tag, err := language.Parse(strings.ReplaceAll(loc, "_", "-"))
	if err != nil {
		return language.Base{}, fmt.Errorf("invalid locale %q: %w", loc, err)
	}
	base, _ := tag.Base()
	return base, nil
}

// ISO3 returns the three-letter ISO 639 code for a locale, used in
// reporting alongside whatever the source documents declared.
func ISO3(loc string) (string, error) {
	base, err := Base(loc)
	if err != nil {
		return "", err
	}
	return base.ISO3(), nil
}

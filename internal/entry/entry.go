package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// Entry identifies one logical article by its volume/issue/article
// directory triple. Identity is fixed at discovery time; versions are
// discovered lazily on first use.
type Entry struct {
	// Volume is the numeric volume, or 0 when the directory name is not
	// numeric. VolumeLabel always carries the raw directory name.
	Volume      int
	VolumeLabel string
	Issue       string
	Article     string

	dir      string
	issueDir string
	versions []*Version
}

// Label returns a short human-readable identifier like "3/2/5".
func (e *Entry) Label() string {
	return fmt.Sprintf("%s/%s/%s", e.VolumeLabel, e.Issue, e.Article)
}

// Dir returns the article directory.
func (e *Entry) Dir() string { return e.dir }

// IssueDir returns the parent issue directory, for issue-level assets.
func (e *Entry) IssueDir() string { return e.issueDir }

// Versions discovers and returns the article's versions, oldest first.
// If the article directory has numeric subdirectories those are the
// versions; otherwise the article directory itself is implicit version 1.
// The result is cached on first call.
func (e *Entry) Versions() ([]*Version, error) {
	if e.versions != nil {
		return e.versions, nil
	}

	entries, err := os.ReadDir(e.dir)
	if err != nil {
		return nil, fmt.Errorf("reading article directory: %w", err)
	}

	var versions []*Version
	hasFiles := false
	for _, de := range entries {
		if !de.IsDir() {
			hasFiles = true
			continue
		}
		n, err := strconv.Atoi(de.Name())
		if err != nil || n < 1 {
			// Non-numeric subdirectories (e.g. supplementary) belong to
			// the implicit version, not the version list.
			hasFiles = true
			continue
		}
		versions = append(versions, &Version{
			Number: n,
			dir:    filepath.Join(e.dir, de.Name()),
			entry:  e,
		})
	}

	if len(versions) == 0 {
		if !hasFiles {
			e.versions = []*Version{}
			return e.versions, nil
		}
		versions = []*Version{{Number: 1, dir: e.dir, entry: e}}
	}

	sort.Slice(versions, func(i, j int) bool { return versions[i].Number < versions[j].Number })
	e.versions = versions
	return e.versions, nil
}

// Version identifies one revision of an article and owns its directory.
type Version struct {
	Number int

	dir   string
	entry *Entry
}

// Dir returns the version directory.
func (v *Version) Dir() string { return v.dir }

// Entry returns the article entry this version belongs to.
func (v *Version) Entry() *Entry { return v.entry }

// Label returns a short human-readable identifier like "3/2/5 v1".
func (v *Version) Label() string {
	return fmt.Sprintf("%s v%d", v.entry.Label(), v.Number)
}

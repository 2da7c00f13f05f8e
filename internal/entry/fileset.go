// Package entry models the import directory convention: a four-level
// volume/issue/article[/version] tree where each version directory holds
// one metadata XML file plus optional galleys and assets.
package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// SupplementaryDir is the subdirectory holding supplementary files.
const SupplementaryDir = "supplementary"

// coverExtensions are the image extensions accepted for cover files.
var coverExtensions = map[string]bool{
	".tif":  true,
	".tiff": true,
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

// MetadataCountError reports a version directory with an unexpected number
// of metadata XML files. Exactly one is required.
type MetadataCountError struct {
	Dir   string
	Count int
}

func (e *MetadataCountError) Error() string {
	return fmt.Sprintf("expected exactly one metadata XML file in %s, found %d", e.Dir, e.Count)
}

// GalleyCountError reports a version directory with more than one PDF galley.
type GalleyCountError struct {
	Dir   string
	Count int
}

func (e *GalleyCountError) Error() string {
	return fmt.Sprintf("expected at most one PDF galley in %s, found %d", e.Dir, e.Count)
}

// CoverCountError reports a directory with more than one cover image.
type CoverCountError struct {
	Dir   string
	Count int
}

func (e *CoverCountError) Error() string {
	return fmt.Sprintf("expected at most one cover image in %s, found %d", e.Dir, e.Count)
}

// FileSet classifies the files of one version directory by role.
// Classification is a pure snapshot of the directory contents; call Reload
// after the directory has been mutated (e.g. after writing a generated
// HTML rendition) to pick up new files.
type FileSet struct {
	dir       string
	coverStem string

	metadata      string
	pdf           string
	html          []string
	cover         string
	supplementary []string
}

// LoadFileSet scans dir and classifies its files. coverStem is the
// filename stem (without extension) that identifies a cover image.
func LoadFileSet(dir, coverStem string) (*FileSet, error) {
	fs := &FileSet{dir: dir, coverStem: coverStem}
	if err := fs.Reload(); err != nil {
		return nil, err
	}
	return fs, nil
}

// Reload re-scans the directory and rebuilds the classification.
func (fs *FileSet) Reload() error {
	entries, err := os.ReadDir(fs.dir)
	if err != nil {
		return fmt.Errorf("reading version directory: %w", err)
	}

	var metadata, pdfs, html, covers []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		path := filepath.Join(fs.dir, name)
		switch {
		case isCoverName(name, fs.coverStem):
			covers = append(covers, path)
		case hasSuffixFold(name, ".xml"):
			metadata = append(metadata, path)
		case hasSuffixFold(name, ".pdf"):
			pdfs = append(pdfs, path)
		case hasSuffixFold(name, ".html"), hasSuffixFold(name, ".htm"):
			html = append(html, path)
		}
	}

	if len(metadata) != 1 {
		return &MetadataCountError{Dir: fs.dir, Count: len(metadata)}
	}
	if len(pdfs) > 1 {
		return &GalleyCountError{Dir: fs.dir, Count: len(pdfs)}
	}
	if len(covers) > 1 {
		return &CoverCountError{Dir: fs.dir, Count: len(covers)}
	}

	supplementary, err := listSupplementary(filepath.Join(fs.dir, SupplementaryDir))
	if err != nil {
		return err
	}

	fs.metadata = metadata[0]
	fs.pdf = ""
	if len(pdfs) == 1 {
		fs.pdf = pdfs[0]
	}
	fs.cover = ""
	if len(covers) == 1 {
		fs.cover = covers[0]
	}
	fs.html = html
	fs.supplementary = supplementary
	return nil
}

// Dir returns the directory this file set was loaded from.
func (fs *FileSet) Dir() string { return fs.dir }

// Metadata returns the path of the single metadata XML file.
func (fs *FileSet) Metadata() string { return fs.metadata }

// Galley returns the path of the PDF galley, or "" if there is none.
func (fs *FileSet) Galley() string { return fs.pdf }

// HTML returns the paths of all HTML renditions.
func (fs *FileSet) HTML() []string { return fs.html }

// Cover returns the path of the cover image, or "" if there is none.
func (fs *FileSet) Cover() string { return fs.cover }

// Supplementary returns the paths of the files under the supplementary
// subdirectory, if it exists.
func (fs *FileSet) Supplementary() []string { return fs.supplementary }

// FindCover looks for a cover image directly inside dir. It returns "" if
// none exists, and a CoverCountError if more than one matches. Used for
// the issue-folder cover convention, where the cover sits beside the
// article directories rather than inside them.
func FindCover(dir, stem string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading directory: %w", err)
	}
	var covers []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isCoverName(e.Name(), stem) {
			covers = append(covers, filepath.Join(dir, e.Name()))
		}
	}
	if len(covers) > 1 {
		return "", &CoverCountError{Dir: dir, Count: len(covers)}
	}
	if len(covers) == 1 {
		return covers[0], nil
	}
	return "", nil
}

func listSupplementary(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading supplementary directory: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

func isCoverName(name, stem string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if !coverExtensions[ext] {
		return false
	}
	return strings.EqualFold(strings.TrimSuffix(name, filepath.Ext(name)), stem)
}

func hasSuffixFold(name, suffix string) bool {
	return strings.HasSuffix(strings.ToLower(name), suffix)
}

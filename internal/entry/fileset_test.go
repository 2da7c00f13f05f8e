package entry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates empty files with the given names under dir.
func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
}

func TestLoadFileSetClassification(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"article.xml",
		"article.pdf",
		"article.html",
		"article-fr.htm",
		"cover.png",
		"supplementary/data.csv",
		"supplementary/appendix.pdf",
	)

	fs, err := LoadFileSet(dir, "cover")
	if err != nil {
		t.Fatalf("LoadFileSet: %v", err)
	}

	if got := filepath.Base(fs.Metadata()); got != "article.xml" {
		t.Errorf("Metadata = %s, want article.xml", got)
	}
	if got := filepath.Base(fs.Galley()); got != "article.pdf" {
		t.Errorf("Galley = %s, want article.pdf", got)
	}
	if len(fs.HTML()) != 2 {
		t.Errorf("HTML count = %d, want 2", len(fs.HTML()))
	}
	if got := filepath.Base(fs.Cover()); got != "cover.png" {
		t.Errorf("Cover = %s, want cover.png", got)
	}
	if len(fs.Supplementary()) != 2 {
		t.Errorf("Supplementary count = %d, want 2", len(fs.Supplementary()))
	}
}

func TestLoadFileSetCaseInsensitiveSuffixes(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "Article.XML", "Article.PDF")

	fs, err := LoadFileSet(dir, "cover")
	if err != nil {
		t.Fatalf("LoadFileSet: %v", err)
	}
	if fs.Metadata() == "" || fs.Galley() == "" {
		t.Errorf("uppercase suffixes not classified: metadata=%q galley=%q", fs.Metadata(), fs.Galley())
	}
}

func TestLoadFileSetMetadataCount(t *testing.T) {
	t.Run("zero", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "article.pdf")

		_, err := LoadFileSet(dir, "cover")
		var mce *MetadataCountError
		if !errors.As(err, &mce) {
			t.Fatalf("error = %v, want MetadataCountError", err)
		}
		if mce.Count != 0 {
			t.Errorf("Count = %d, want 0", mce.Count)
		}
	})

	t.Run("two", func(t *testing.T) {
		dir := t.TempDir()
		writeFiles(t, dir, "a.xml", "b.xml")

		_, err := LoadFileSet(dir, "cover")
		var mce *MetadataCountError
		if !errors.As(err, &mce) {
			t.Fatalf("error = %v, want MetadataCountError", err)
		}
		if mce.Count != 2 {
			t.Errorf("Count = %d, want 2", mce.Count)
		}
	})
}

func TestLoadFileSetGalleyCount(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "article.xml", "a.pdf", "b.pdf")

	_, err := LoadFileSet(dir, "cover")
	var gce *GalleyCountError
	if !errors.As(err, &gce) {
		t.Fatalf("error = %v, want GalleyCountError", err)
	}
	if gce.Count != 2 {
		t.Errorf("Count = %d, want 2", gce.Count)
	}
}

func TestLoadFileSetNoGalleyIsValid(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "article.xml")

	fs, err := LoadFileSet(dir, "cover")
	if err != nil {
		t.Fatalf("LoadFileSet: %v", err)
	}
	if fs.Galley() != "" {
		t.Errorf("Galley = %q, want empty", fs.Galley())
	}
}

func TestLoadFileSetCoverCount(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "article.xml", "cover.png", "cover.jpg")

	_, err := LoadFileSet(dir, "cover")
	var cce *CoverCountError
	if !errors.As(err, &cce) {
		t.Fatalf("error = %v, want CoverCountError", err)
	}
}

func TestFileSetReload(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "article.xml")

	fs, err := LoadFileSet(dir, "cover")
	if err != nil {
		t.Fatalf("LoadFileSet: %v", err)
	}
	if len(fs.HTML()) != 0 {
		t.Fatalf("HTML count = %d before reload, want 0", len(fs.HTML()))
	}

	// Simulate the pipeline writing a generated rendition into the
	// directory, then invalidating the snapshot.
	writeFiles(t, dir, "article.html")
	if err := fs.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if len(fs.HTML()) != 1 {
		t.Errorf("HTML count = %d after reload, want 1", len(fs.HTML()))
	}
}

func TestFindCover(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "cover.tif", "article.xml")

	path, err := FindCover(dir, "cover")
	if err != nil {
		t.Fatalf("FindCover: %v", err)
	}
	if filepath.Base(path) != "cover.tif" {
		t.Errorf("FindCover = %s, want cover.tif", path)
	}

	empty := t.TempDir()
	path, err = FindCover(empty, "cover")
	if err != nil || path != "" {
		t.Errorf("FindCover on empty dir = (%q, %v), want (\"\", nil)", path, err)
	}
}

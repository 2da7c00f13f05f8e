package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeDoc(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing document: %v", err)
	}
	return path
}

func TestLoadDocumentRootAndDoctype(t *testing.T) {
	path := writeDoc(t, `<?xml version="1.0"?>
<!DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.1 20151215//EN" "JATS-journalpublishing1.dtd">
<article><front/></article>`)

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Root != "article" {
		t.Errorf("Root = %q, want article", doc.Root)
	}
	if doc.Doctype == nil {
		t.Fatal("Doctype = nil")
	}
	if doc.Doctype.Name != "article" {
		t.Errorf("Doctype.Name = %q", doc.Doctype.Name)
	}
	if doc.Doctype.PublicID != "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.1 20151215//EN" {
		t.Errorf("Doctype.PublicID = %q", doc.Doctype.PublicID)
	}
	if doc.Doctype.SystemID != "JATS-journalpublishing1.dtd" {
		t.Errorf("Doctype.SystemID = %q", doc.Doctype.SystemID)
	}
}

func TestLoadDocumentSystemOnlyDoctype(t *testing.T) {
	path := writeDoc(t, `<!DOCTYPE Publisher SYSTEM "A++V2.4.dtd">
<Publisher/>`)

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Doctype == nil {
		t.Fatal("Doctype = nil")
	}
	if doc.Doctype.PublicID != "" {
		t.Errorf("PublicID = %q, want empty", doc.Doctype.PublicID)
	}
	if doc.Doctype.SystemID != "A++V2.4.dtd" {
		t.Errorf("SystemID = %q", doc.Doctype.SystemID)
	}
}

func TestLoadDocumentNoDoctype(t *testing.T) {
	path := writeDoc(t, `<Publisher><Journal/></Publisher>`)

	doc, err := LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	if doc.Root != "Publisher" {
		t.Errorf("Root = %q, want Publisher", doc.Root)
	}
	if doc.Doctype != nil {
		t.Errorf("Doctype = %+v, want nil", doc.Doctype)
	}
}

func TestLoadDocumentMalformed(t *testing.T) {
	path := writeDoc(t, `<article><front></article>`)

	_, err := LoadDocument(path)
	if !errors.Is(err, ErrMalformedXML) {
		t.Errorf("error = %v, want ErrMalformedXML", err)
	}

	path = writeDoc(t, ``)
	_, err = LoadDocument(path)
	if !errors.Is(err, ErrMalformedXML) {
		t.Errorf("error for empty file = %v, want ErrMalformedXML", err)
	}
}

func TestParseDoctypeInternalSubset(t *testing.T) {
	id := parseDoctype(`DOCTYPE article [ <!ENTITY x "y"> ]`)
	if id == nil || id.Name != "article" {
		t.Fatalf("parseDoctype = %+v", id)
	}
	if id.PublicID != "" || id.SystemID != "" {
		t.Errorf("identifiers = (%q, %q), want empty", id.PublicID, id.SystemID)
	}
}

func TestFlatten(t *testing.T) {
	got := Flatten([]byte("An <italic>Example</italic>\n  Title"))
	if got != "An Example Title" {
		t.Errorf("Flatten = %q, want %q", got, "An Example Title")
	}
	if got := Flatten(nil); got != "" {
		t.Errorf("Flatten(nil) = %q, want empty", got)
	}
}

package jats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/openjournals/backissue/internal/parser"
)

const fixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.1 20151215//EN" "JATS-journalpublishing1.dtd">
<article xmlns:xlink="http://www.w3.org/1999/xlink" xml:lang="en">
  <front>
    <journal-meta>
      <journal-title-group><journal-title>Acta Exemplaria</journal-title></journal-title-group>
      <issn>1234-5678</issn>
    </journal-meta>
    <article-meta>
      <article-id pub-id-type="publisher-id">ae-2019-0042</article-id>
      <article-id pub-id-type="doi">10.1234/ae.2019.0042</article-id>
      <article-categories>
        <subj-group subj-group-type="heading"><subject>Research Articles</subject></subj-group>
        <subj-group subj-group-type="categories">
          <subject>Biology</subject>
          <subj-group><subject>Genomics</subject></subj-group>
        </subj-group>
      </article-categories>
      <title-group><article-title>An <italic>Example</italic> Study</article-title></title-group>
      <contrib-group>
        <contrib contrib-type="author">
          <contrib-id contrib-id-type="orcid">0000-0002-1825-0097</contrib-id>
          <name><surname>Curie</surname><given-names>Marie</given-names></name>
          <email>curie@example.org</email>
          <aff>Example University</aff>
        </contrib>
        <contrib contrib-type="author">
          <name><surname>Darwin</surname><given-names>Charles</given-names></name>
        </contrib>
      </contrib-group>
      <pub-date pub-type="ppub"><month>6</month><year>2019</year></pub-date>
      <pub-date pub-type="epub"><day>14</day><month>5</month><year>2019</year></pub-date>
      <volume>3</volume>
      <issue>2</issue>
      <fpage>101</fpage>
      <lpage>118</lpage>
      <permissions>
        <copyright-holder>Acta Exemplaria Press</copyright-holder>
        <copyright-year>2019</copyright-year>
        <license xlink:href="https://creativecommons.org/licenses/by/4.0/"/>
      </permissions>
      <abstract><p>We study an <bold>example</bold>.</p></abstract>
      <kwd-group xml:lang="en"><kwd>genomics</kwd><kwd>examples</kwd></kwd-group>
    </article-meta>
  </front>
  <body>
    <sec><title>Introduction</title><p>First paragraph.</p></sec>
  </body>
</article>`

func loadFixture(t *testing.T, content string) *parser.Document {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.xml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	doc, err := parser.LoadDocument(path)
	if err != nil {
		t.Fatalf("LoadDocument: %v", err)
	}
	return doc
}

func TestProbeKnownDoctypes(t *testing.T) {
	doc := loadFixture(t, fixture)
	p := New()
	if res := p.Probe(doc); !res.Matched {
		t.Errorf("Probe did not match journal-publishing doctype: %s", res.Reason)
	}

	// System identifier given as a path still matches by base name.
	archiving := `<!DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD v1.0 20120330//EN" "http://jats.nlm.nih.gov/archiving/1.0/JATS-archivearticle1.dtd">
<article><front/></article>`
	doc = loadFixture(t, archiving)
	if res := p.Probe(doc); !res.Matched {
		t.Errorf("Probe did not match archiving doctype with path system id: %s", res.Reason)
	}
}

func TestProbeRejectsUnknownDoctype(t *testing.T) {
	p := New()

	doc := loadFixture(t, `<!DOCTYPE article PUBLIC "-//OTHER//DTD Something//EN" "other.dtd">
<article/>`)
	if res := p.Probe(doc); res.Matched {
		t.Error("Probe matched unknown public identifier")
	}

	doc = loadFixture(t, `<article/>`)
	if res := p.Probe(doc); res.Matched {
		t.Error("Probe matched document without DOCTYPE")
	}
}

func TestExtract(t *testing.T) {
	doc := loadFixture(t, fixture)
	md, err := New().Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if md.Title != "An Example Study" {
		t.Errorf("Title = %q", md.Title)
	}
	if md.Abstract != "We study an example." {
		t.Errorf("Abstract = %q", md.Abstract)
	}
	if md.Language != "en" {
		t.Errorf("Language = %q", md.Language)
	}
	if md.Volume != 3 || md.IssueNumber != "2" {
		t.Errorf("issue = (%d, %q), want (3, \"2\")", md.Volume, md.IssueNumber)
	}
	if md.Pages != "101-118" {
		t.Errorf("Pages = %q", md.Pages)
	}
	if md.SectionTitle != "Research Articles" {
		t.Errorf("SectionTitle = %q", md.SectionTitle)
	}

	if md.PubIDs["publisher-id"] != "ae-2019-0042" {
		t.Errorf("publisher-id = %q", md.PubIDs["publisher-id"])
	}
	if md.PubIDs["doi"] != "10.1234/ae.2019.0042" {
		t.Errorf("doi = %q", md.PubIDs["doi"])
	}

	// epub preferred over ppub.
	if md.Date == nil {
		t.Fatal("Date = nil")
	}
	if md.Date.Year() != 2019 || int(md.Date.Month()) != 5 || md.Date.Day() != 14 {
		t.Errorf("Date = %v, want 2019-05-14", md.Date)
	}
	if md.IssueYear != 2019 {
		t.Errorf("IssueYear = %d", md.IssueYear)
	}

	if len(md.Authors) != 2 {
		t.Fatalf("author count = %d, want 2", len(md.Authors))
	}
	first := md.Authors[0]
	if first.FamilyName != "Curie" || first.GivenName != "Marie" {
		t.Errorf("first author = %+v", first)
	}
	if first.Email != "curie@example.org" || first.ORCID != "0000-0002-1825-0097" {
		t.Errorf("first author contact = %+v", first)
	}
	if first.Affiliation != "Example University" {
		t.Errorf("first author affiliation = %q", first.Affiliation)
	}

	if len(md.Keywords) != 2 || md.Keywords[0] != "genomics" {
		t.Errorf("Keywords = %v", md.Keywords)
	}
	if len(md.Categories) != 2 || md.Categories[0] != "Biology" || md.Categories[1] != "Biology/Genomics" {
		t.Errorf("Categories = %v", md.Categories)
	}

	if md.CopyrightHolder != "Acta Exemplaria Press" {
		t.Errorf("CopyrightHolder = %q", md.CopyrightHolder)
	}
	if md.LicenceURL != "https://creativecommons.org/licenses/by/4.0/" {
		t.Errorf("LicenceURL = %q", md.LicenceURL)
	}
}

func TestExtractDateFallsBackToCopyrightYear(t *testing.T) {
	doc := loadFixture(t, `<!DOCTYPE article PUBLIC "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.1 20151215//EN" "JATS-journalpublishing1.dtd">
<article>
  <front><article-meta>
    <title-group><article-title>T</article-title></title-group>
    <permissions><copyright-year>2015</copyright-year></permissions>
  </article-meta></front>
</article>`)
	md, err := New().Extract(doc)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if md.Date == nil || md.Date.Year() != 2015 {
		t.Errorf("Date = %v, want 2015-01-01", md.Date)
	}
}

func TestBody(t *testing.T) {
	doc := loadFixture(t, fixture)
	body, err := New().Body(doc)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if len(body) == 0 {
		t.Fatal("Body = empty")
	}
	if got := parser.Flatten(body); got != "Introduction First paragraph." {
		t.Errorf("flattened body = %q", got)
	}

	doc = loadFixture(t, `<article><front/></article>`)
	body, err = New().Body(doc)
	if err != nil {
		t.Fatalf("Body: %v", err)
	}
	if body != nil {
		t.Errorf("Body = %q for document without body, want nil", body)
	}
}

// Package jats parses JATS-family article documents (EDP Publishing, NLM
// Archiving and Interchange, NLM/JATS Journal Publishing). Documents are
// recognized by their declared DOCTYPE external-identifier triple.
package jats

import (
	"encoding/xml"
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/openjournals/backissue/internal/parser"
)

// signatures are the supported DOCTYPE triples.
var signatures = []parser.DoctypeID{
	{
		Name:     "article",
		PublicID: "-//EDP//DTD EDP Publishing JATS v1.0 20130606//EN",
		SystemID: "JATS-edppublishing1.dtd",
	},
	{
		Name:     "article",
		PublicID: "-//NLM//DTD JATS (Z39.96) Journal Archiving and Interchange DTD v1.0 20120330//EN",
		SystemID: "JATS-archivearticle1.dtd",
	},
	{
		Name:     "article",
		PublicID: "-//NLM//DTD JATS (Z39.96) Journal Publishing DTD v1.1 20151215//EN",
		SystemID: "JATS-journalpublishing1.dtd",
	},
}

// Parser implements parser.Parser and parser.BodyProvider for JATS.
type Parser struct{}

// New returns a JATS parser.
func New() *Parser { return &Parser{} }

// Name implements parser.Parser.
func (p *Parser) Name() string { return "jats" }

// Probe matches the document's declared DOCTYPE against the supported
// triples. System identifiers are compared by base name so that relative
// or absolute DTD paths still match.
func (p *Parser) Probe(doc *parser.Document) parser.MatchResult {
	if doc.Doctype == nil {
		return parser.NotMatched("no DOCTYPE declaration")
	}
	for _, sig := range signatures {
		if doc.Doctype.Name != sig.Name || doc.Doctype.PublicID != sig.PublicID {
			continue
		}
		if doc.Doctype.SystemID == sig.SystemID || path.Base(doc.Doctype.SystemID) == sig.SystemID {
			return parser.Matched("doctype " + sig.PublicID)
		}
	}
	return parser.NotMatched("unknown DOCTYPE " + doc.Doctype.PublicID)
}

// Extract implements parser.Parser.
func (p *Parser) Extract(doc *parser.Document) (*parser.Metadata, error) {
	var ad articleDoc
	if err := xml.Unmarshal(doc.Raw, &ad); err != nil {
		return nil, fmt.Errorf("decoding JATS document: %w", err)
	}
	am := &ad.Front.ArticleMeta

	md := &parser.Metadata{
		Language:    ad.Lang,
		Title:       parser.Flatten(am.TitleGroup.Title.XML),
		Abstract:    parser.Flatten(am.Abstract.XML),
		IssueNumber: strings.TrimSpace(am.Issue),
		PubIDs:      map[string]string{},
	}
	md.Volume, _ = strconv.Atoi(strings.TrimSpace(am.Volume))

	for _, id := range am.IDs {
		value := strings.TrimSpace(id.Value)
		if id.Type != "" && value != "" {
			md.PubIDs[id.Type] = value
		}
	}

	md.Date = deriveDate(am)
	if md.Date != nil {
		md.IssueYear = md.Date.Year()
	}

	if am.FPage != "" {
		md.Pages = strings.TrimSpace(am.FPage)
		if am.LPage != "" {
			md.Pages += "-" + strings.TrimSpace(am.LPage)
		}
	}

	for _, sg := range am.SubjGroups {
		switch sg.Type {
		case "heading":
			if md.SectionTitle == "" && len(sg.Subjects) > 0 {
				md.SectionTitle = strings.TrimSpace(sg.Subjects[0])
			}
		case "categories":
			md.Categories = append(md.Categories, categoryPaths(sg, "")...)
		}
	}

	for _, kg := range am.KwdGroups {
		for _, kwd := range kg.Kwds {
			if kw := parser.Flatten(kwd.XML); kw != "" {
				md.Keywords = append(md.Keywords, kw)
			}
		}
	}

	for _, c := range am.Contribs {
		if c.Type != "" && c.Type != "author" {
			continue
		}
		author := parser.AuthorMeta{
			GivenName:  strings.TrimSpace(c.GivenNames),
			FamilyName: strings.TrimSpace(c.Surname),
			Email:      strings.TrimSpace(c.Email),
		}
		for _, cid := range c.IDs {
			if cid.Type == "orcid" {
				author.ORCID = strings.TrimSpace(cid.Value)
			}
		}
		if len(c.Affs) > 0 {
			author.Affiliation = parser.Flatten(c.Affs[0].XML)
		}
		md.Authors = append(md.Authors, author)
	}

	perm := &am.Permissions
	md.CopyrightHolder = strings.TrimSpace(perm.CopyrightHolder)
	if md.CopyrightHolder == "" {
		md.CopyrightHolder = strings.TrimSpace(perm.CopyrightStatement)
	}
	if len(perm.Licenses) > 0 {
		md.LicenceURL = strings.TrimSpace(perm.Licenses[0].Href)
	}

	return md, nil
}

// Body implements parser.BodyProvider, returning the raw <body> subtree
// for HTML generation, or nil when the document has no body.
func (p *Parser) Body(doc *parser.Document) ([]byte, error) {
	var ad struct {
		Body struct {
			XML []byte `xml:",innerxml"`
		} `xml:"body"`
	}
	if err := xml.Unmarshal(doc.Raw, &ad); err != nil {
		return nil, fmt.Errorf("decoding JATS body: %w", err)
	}
	if len(ad.Body.XML) == 0 {
		return nil, nil
	}
	return ad.Body.XML, nil
}

// deriveDate tries the document's date sources in preference order:
// electronic publication date, print publication date, any remaining
// pub-date, then the copyright year.
func deriveDate(am *articleMeta) *time.Time {
	byType := func(typ string) *time.Time {
		for _, pd := range am.PubDates {
			if pd.Type == typ {
				if d := pd.date(); d != nil {
					return d
				}
			}
		}
		return nil
	}
	if d := byType("epub"); d != nil {
		return d
	}
	if d := byType("ppub"); d != nil {
		return d
	}
	for _, pd := range am.PubDates {
		if d := pd.date(); d != nil {
			return d
		}
	}
	if year, err := strconv.Atoi(strings.TrimSpace(am.Permissions.CopyrightYear)); err == nil {
		return parser.DateFromParts(year, 0, 0)
	}
	return nil
}

// categoryPaths flattens a possibly nested subject group into
// slash-separated category paths.
func categoryPaths(sg subjGroup, prefix string) []string {
	var paths []string
	for _, s := range sg.Subjects {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if prefix != "" {
			s = prefix + "/" + s
		}
		paths = append(paths, s)
	}
	for _, nested := range sg.Groups {
		parent := prefix
		if len(paths) > 0 {
			parent = paths[len(paths)-1]
		}
		paths = append(paths, categoryPaths(nested, parent)...)
	}
	return paths
}

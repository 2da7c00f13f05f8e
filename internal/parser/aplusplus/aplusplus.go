// Package aplusplus parses the legacy Springer A++ publisher format. A++
// documents carry no reliable DOCTYPE, so recognition is structural: the
// fixed Publisher/Journal/Volume/Issue/Article element path must exist.
package aplusplus

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/openjournals/backissue/internal/parser"
)

// Parser implements parser.Parser for A++.
type Parser struct{}

// New returns an A++ parser.
func New() *Parser { return &Parser{} }

// Name implements parser.Parser.
func (p *Parser) Name() string { return "aplusplus" }

// Probe checks the fixed element path. The root-name test is a cheap
// pre-filter; the decode confirms the full nesting.
func (p *Parser) Probe(doc *parser.Document) parser.MatchResult {
	if doc.Root != "Publisher" {
		return parser.NotMatched("root element " + doc.Root)
	}
	var probe struct {
		Journal struct {
			Volume struct {
				Issue struct {
					Article *struct{} `xml:"Article"`
				} `xml:"Issue"`
			} `xml:"Volume"`
		} `xml:"Journal"`
	}
	if err := xml.Unmarshal(doc.Raw, &probe); err != nil {
		return parser.NotMatched("not decodable as A++")
	}
	if probe.Journal.Volume.Issue.Article == nil {
		return parser.NotMatched("missing Publisher/Journal/Volume/Issue/Article path")
	}
	return parser.Matched("element path Publisher/Journal/Volume/Issue/Article")
}

// Extract implements parser.Parser.
func (p *Parser) Extract(doc *parser.Document) (*parser.Metadata, error) {
	var pub publisherDoc
	if err := xml.Unmarshal(doc.Raw, &pub); err != nil {
		return nil, fmt.Errorf("decoding A++ document: %w", err)
	}

	volume := &pub.Journal.Volume
	issue := &volume.Issue
	article := &issue.Article
	info := &article.Info
	header := &article.Header

	md := &parser.Metadata{
		Language:     strings.ToLower(strings.TrimSpace(info.Title.Language)),
		Title:        parser.Flatten(info.Title.XML),
		IssueNumber:  strings.TrimSpace(issue.Info.ID),
		SectionTitle: strings.TrimSpace(info.Category),
		PubIDs:       map[string]string{},
	}
	md.Volume, _ = strconv.Atoi(strings.TrimSpace(volume.Info.ID))

	if id := strings.TrimSpace(info.ID); id != "" {
		md.PubIDs["publisher-id"] = id
	}
	if doi := strings.TrimSpace(info.DOI); doi != "" {
		md.PubIDs["doi"] = doi
	}

	md.Date = deriveDate(info, &issue.Info)
	if md.Date != nil {
		md.IssueYear = md.Date.Year()
	}
	if y := issue.Info.History.CoverDate.year(); y > 0 {
		md.IssueYear = y
	}

	if info.FirstPage != "" {
		md.Pages = strings.TrimSpace(info.FirstPage)
		if info.LastPage != "" {
			md.Pages += "-" + strings.TrimSpace(info.LastPage)
		}
	}

	var paras []string
	for _, para := range header.Abstract.Paras {
		if text := parser.Flatten(para.XML); text != "" {
			paras = append(paras, text)
		}
	}
	md.Abstract = strings.Join(paras, " ")

	for _, kw := range header.Keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			md.Keywords = append(md.Keywords, kw)
		}
	}
	for _, subject := range info.SubjectCollection {
		if s := strings.TrimSpace(subject); s != "" {
			md.Categories = append(md.Categories, s)
		}
	}

	md.Authors = extractAuthors(&header.AuthorGroup)

	if holder := strings.TrimSpace(info.Copyright.Holder); holder != "" {
		md.CopyrightHolder = holder
	}

	return md, nil
}

// deriveDate prefers the article's online date, then its cover date, then
// the issue cover date.
func deriveDate(info *articleInfo, issueInfo *issueInfo) *time.Time {
	if d := info.History.OnlineDate.date(); d != nil {
		return d
	}
	if d := info.History.CoverDate.date(); d != nil {
		return d
	}
	return issueInfo.History.CoverDate.date()
}

// extractAuthors resolves author affiliation references against the
// group's affiliation list.
func extractAuthors(group *authorGroup) []parser.AuthorMeta {
	affs := map[string]string{}
	for _, aff := range group.Affiliations {
		affs[aff.ID] = strings.TrimSpace(aff.OrgName)
	}

	var authors []parser.AuthorMeta
	for _, a := range group.Authors {
		author := parser.AuthorMeta{
			GivenName:  strings.TrimSpace(strings.Join(a.Name.Given, " ")),
			FamilyName: strings.TrimSpace(a.Name.Family),
			Email:      strings.TrimSpace(a.Contact.Email),
		}
		// AffiliationIDS may reference several affiliations; the first
		// resolvable one is recorded.
		for _, id := range strings.Fields(a.AffiliationIDs) {
			if aff, ok := affs[id]; ok {
				author.Affiliation = aff
				break
			}
		}
		authors = append(authors, author)
	}
	return authors
}

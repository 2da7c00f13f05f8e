package aplusplus

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/openjournals/backissue/internal/parser"
)

// Decoding targets for the A++ grammar. The format nests the whole
// Publisher/Journal/Volume/Issue hierarchy around a single article.

type publisherDoc struct {
	XMLName xml.Name      `xml:"Publisher"`
	Info    publisherInfo `xml:"PublisherInfo"`
	Journal journal       `xml:"Journal"`
}

type publisherInfo struct {
	Name string `xml:"PublisherName"`
}

type journal struct {
	Info   journalInfo `xml:"JournalInfo"`
	Volume volume      `xml:"Volume"`
}

type journalInfo struct {
	ID    string `xml:"JournalID"`
	Title string `xml:"JournalTitle"`
}

type volume struct {
	Info  volumeInfo `xml:"VolumeInfo"`
	Issue issueElem  `xml:"Issue"`
}

type volumeInfo struct {
	ID string `xml:"VolumeIDStart"`
}

type issueElem struct {
	Info    issueInfo `xml:"IssueInfo"`
	Article article   `xml:"Article"`
}

type issueInfo struct {
	ID      string  `xml:"IssueIDStart"`
	History history `xml:"IssueHistory"`
}

type article struct {
	Info   articleInfo   `xml:"ArticleInfo"`
	Header articleHeader `xml:"ArticleHeader"`
}

type articleInfo struct {
	ID                string       `xml:"ArticleID"`
	DOI               string       `xml:"ArticleDOI"`
	Title             articleTitle `xml:"ArticleTitle"`
	Category          string       `xml:"ArticleCategory"`
	FirstPage         string       `xml:"ArticleFirstPage"`
	LastPage          string       `xml:"ArticleLastPage"`
	History           history      `xml:"ArticleHistory"`
	Copyright         copyright    `xml:"ArticleCopyright"`
	SubjectCollection []string     `xml:"ArticleSubjectCollection>Subject"`
}

type articleTitle struct {
	Language string `xml:"Language,attr"`
	XML      []byte `xml:",innerxml"`
}

type history struct {
	OnlineDate dateParts `xml:"OnlineDate"`
	CoverDate  dateParts `xml:"CoverDate"`
}

type dateParts struct {
	Year  string `xml:"Year"`
	Month string `xml:"Month"`
	Day   string `xml:"Day"`
}

func (d dateParts) year() int {
	y, _ := strconv.Atoi(strings.TrimSpace(d.Year))
	return y
}

// date derives a calendar-checked date from the parts.
func (d dateParts) date() *time.Time {
	month, _ := strconv.Atoi(strings.TrimSpace(d.Month))
	day, _ := strconv.Atoi(strings.TrimSpace(d.Day))
	return parser.DateFromParts(d.year(), month, day)
}

type copyright struct {
	Holder string `xml:"CopyrightHolderName"`
	Year   string `xml:"CopyrightYear"`
}

type articleHeader struct {
	AuthorGroup authorGroup `xml:"AuthorGroup"`
	Abstract    abstract    `xml:"Abstract"`
	Keywords    []string    `xml:"KeywordGroup>Keyword"`
}

type authorGroup struct {
	Authors      []author      `xml:"Author"`
	Affiliations []affiliation `xml:"Affiliation"`
}

type author struct {
	AffiliationIDs string     `xml:"AffiliationIDS,attr"`
	Name           authorName `xml:"AuthorName"`
	Contact        contact    `xml:"Contact"`
}

type authorName struct {
	Given  []string `xml:"GivenName"`
	Family string   `xml:"FamilyName"`
}

type contact struct {
	Email string `xml:"Email"`
}

type affiliation struct {
	ID      string `xml:"ID,attr"`
	OrgName string `xml:"OrgName"`
}

type abstract struct {
	Heading string        `xml:"Heading"`
	Paras   []abstractPar `xml:"Para"`
}

type abstractPar struct {
	XML []byte `xml:",innerxml"`
}

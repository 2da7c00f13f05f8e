package jats

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"

	"github.com/openjournals/backissue/internal/parser"
)

// Decoding targets for the JATS front matter. Only the fields the import
// pipeline consumes are mapped; everything else is ignored.

type articleDoc struct {
	XMLName xml.Name     `xml:"article"`
	Lang    string       `xml:"lang,attr"`
	Front   articleFront `xml:"front"`
}

type articleFront struct {
	JournalMeta journalMeta `xml:"journal-meta"`
	ArticleMeta articleMeta `xml:"article-meta"`
}

type journalMeta struct {
	Titles []string `xml:"journal-title-group>journal-title"`
	ISSNs  []string `xml:"issn"`
}

type articleMeta struct {
	IDs         []articleID `xml:"article-id"`
	SubjGroups  []subjGroup `xml:"article-categories>subj-group"`
	TitleGroup  titleGroup  `xml:"title-group"`
	Contribs    []contrib   `xml:"contrib-group>contrib"`
	PubDates    []pubDate   `xml:"pub-date"`
	Volume      string      `xml:"volume"`
	Issue       string      `xml:"issue"`
	FPage       string      `xml:"fpage"`
	LPage       string      `xml:"lpage"`
	Abstract    rawFragment `xml:"abstract"`
	KwdGroups   []kwdGroup  `xml:"kwd-group"`
	Permissions permissions `xml:"permissions"`
}

type titleGroup struct {
	Title rawFragment `xml:"article-title"`
}

// rawFragment keeps the inner XML of mixed-content elements so inline
// markup can be flattened or transcoded later.
type rawFragment struct {
	XML []byte `xml:",innerxml"`
}

type articleID struct {
	Type  string `xml:"pub-id-type,attr"`
	Value string `xml:",chardata"`
}

type subjGroup struct {
	Type     string      `xml:"subj-group-type,attr"`
	Subjects []string    `xml:"subject"`
	Groups   []subjGroup `xml:"subj-group"`
}

type contrib struct {
	Type       string        `xml:"contrib-type,attr"`
	Surname    string        `xml:"name>surname"`
	GivenNames string        `xml:"name>given-names"`
	Email      string        `xml:"email"`
	IDs        []contribID   `xml:"contrib-id"`
	Affs       []rawFragment `xml:"aff"`
}

type contribID struct {
	Type  string `xml:"contrib-id-type,attr"`
	Value string `xml:",chardata"`
}

type pubDate struct {
	Type  string `xml:"pub-type,attr"`
	Day   string `xml:"day"`
	Month string `xml:"month"`
	Year  string `xml:"year"`
}

// date derives a calendar-checked date from the pub-date parts.
func (pd pubDate) date() *time.Time {
	year, _ := strconv.Atoi(strings.TrimSpace(pd.Year))
	month, _ := strconv.Atoi(strings.TrimSpace(pd.Month))
	day, _ := strconv.Atoi(strings.TrimSpace(pd.Day))
	return parser.DateFromParts(year, month, day)
}

type kwdGroup struct {
	Lang string        `xml:"lang,attr"`
	Kwds []rawFragment `xml:"kwd"`
}

type permissions struct {
	CopyrightStatement string    `xml:"copyright-statement"`
	CopyrightHolder    string    `xml:"copyright-holder"`
	CopyrightYear      string    `xml:"copyright-year"`
	Licenses           []license `xml:"license"`
}

type license struct {
	Href string `xml:"href,attr"`
}

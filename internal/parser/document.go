// Package parser selects and runs metadata parsers for article version
// directories. Each supported grammar registers a Parser; the Dispatcher
// probes them in priority order and the first that recognizes a document
// extracts its metadata.
package parser

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
)

// DoctypeID is a declared DOCTYPE external-identifier triple.
type DoctypeID struct {
	Name     string
	PublicID string
	SystemID string
}

// Document is a loaded, well-formed metadata XML file. Raw holds the
// original bytes for dialect-specific decoding; Root and Doctype carry the
// cheap signals used for parser probing.
type Document struct {
	Path    string
	Raw     []byte
	Root    string // local name of the root element
	Doctype *DoctypeID
}

// LoadDocument reads and checks the metadata XML at path. Any
// well-formedness failure is reported as ErrMalformedXML; the caller must
// treat it as fatal for the version, not as a probe mismatch.
func LoadDocument(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}

	doc := &Document{Path: path, Raw: raw}
	dec := xml.NewDecoder(bytes.NewReader(raw))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrMalformedXML, path, err)
		}
		switch t := tok.(type) {
		case xml.Directive:
			if doc.Root == "" && doc.Doctype == nil {
				doc.Doctype = parseDoctype(string(t))
			}
		case xml.StartElement:
			if doc.Root == "" {
				doc.Root = t.Name.Local
			}
		}
	}
	if doc.Root == "" {
		return nil, fmt.Errorf("%w: %s: no root element", ErrMalformedXML, path)
	}
	return doc, nil
}

// parseDoctype extracts the external-identifier triple from a DOCTYPE
// directive like:
//
//	DOCTYPE article PUBLIC "-//NLM//..." "JATS-archivearticle1.dtd"
//
// SYSTEM-only declarations yield an empty PublicID. Returns nil for
// non-DOCTYPE directives.
func parseDoctype(directive string) *DoctypeID {
	fields := splitDirective(directive)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "DOCTYPE") {
		return nil
	}

	id := &DoctypeID{Name: fields[1]}
	rest := fields[2:]
	if len(rest) == 0 {
		return id
	}
	switch strings.ToUpper(rest[0]) {
	case "PUBLIC":
		if len(rest) > 1 {
			id.PublicID = rest[1]
		}
		if len(rest) > 2 {
			id.SystemID = rest[2]
		}
	case "SYSTEM":
		if len(rest) > 1 {
			id.SystemID = rest[1]
		}
	}
	return id
}

// splitDirective tokenizes a directive body, honoring double and single
// quoted strings and stopping at an internal subset ("[").
func splitDirective(s string) []string {
	var fields []string
	var cur strings.Builder
	var quote byte

	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			if c == quote {
				fields = append(fields, cur.String())
				cur.Reset()
				quote = 0
				continue
			}
			cur.WriteByte(c)
			continue
		}
		switch {
		case c == '"' || c == '\'':
			flush()
			quote = c
		case c == '[':
			flush()
			return fields
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush()
		default:
			cur.WriteByte(c)
		}
	}
	flush()
	return fields
}

// Flatten decodes an XML fragment and returns its concatenated character
// data with whitespace collapsed. Used to reduce mixed-content fields
// (titles, abstracts) to plain text.
func Flatten(fragment []byte) string {
	dec := xml.NewDecoder(bytes.NewReader(fragment))
	var b strings.Builder
	for {
		tok, err := dec.Token()
		if err != nil {
			break
		}
		if cd, ok := tok.(xml.CharData); ok {
			b.Write(cd)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Package htmlgen renders a JATS <body> subtree as a standalone HTML
// document. The transform is deterministic: the same input bytes always
// produce the same output bytes, so renditions can be regenerated and
// compared.
package htmlgen

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tagMap maps JATS element names to HTML element names. Elements not in
// the map are unwrapped: their children are rendered without a wrapper.
var tagMap = map[string]string{
	"sec":        "section",
	"title":      "h2",
	"p":          "p",
	"italic":     "em",
	"bold":       "strong",
	"underline":  "u",
	"sup":        "sup",
	"sub":        "sub",
	"monospace":  "code",
	"preformat":  "pre",
	"break":      "br",
	"list":       "ul",
	"list-item":  "li",
	"disp-quote": "blockquote",
	"table-wrap": "figure",
	"table":      "table",
	"thead":      "thead",
	"tbody":      "tbody",
	"tr":         "tr",
	"th":         "th",
	"td":         "td",
	"fig":        "figure",
	"caption":    "figcaption",
	"graphic":    "img",
	"xref":       "a",
	"ext-link":   "a",
}

// Generate transcodes a JATS body fragment into a complete HTML document
// with the given title.
func Generate(title string, body []byte) ([]byte, error) {
	bodyNode := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	if err := transcode(body, bodyNode); err != nil {
		return nil, err
	}

	doc := buildDocument(title, bodyNode)
	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, fmt.Errorf("rendering HTML: %w", err)
	}
	return buf.Bytes(), nil
}

// transcode walks the XML fragment and appends converted nodes to parent.
func transcode(fragment []byte, parent *html.Node) error {
	dec := xml.NewDecoder(bytes.NewReader(fragment))
	stack := []*html.Node{parent}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("decoding body fragment: %w", err)
		}

		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			name, ok := tagMap[t.Name.Local]
			if !ok {
				// Unknown element: keep its children in place.
				stack = append(stack, top)
				continue
			}
			node := &html.Node{
				Type:     html.ElementNode,
				Data:     name,
				DataAtom: atom.Lookup([]byte(name)),
			}
			applyAttrs(node, t)
			top.AppendChild(node)
			stack = append(stack, node)
		case xml.EndElement:
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
		case xml.CharData:
			text := string(t)
			if strings.TrimSpace(text) == "" && top.Type == html.ElementNode && isStructural(top.Data) {
				continue
			}
			top.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		}
	}
	return nil
}

// applyAttrs carries the link target of graphics and external links over
// to the HTML node.
func applyAttrs(node *html.Node, el xml.StartElement) {
	for _, attr := range el.Attr {
		if attr.Name.Local != "href" {
			continue
		}
		switch node.Data {
		case "img":
			node.Attr = append(node.Attr, html.Attribute{Key: "src", Val: attr.Value})
		case "a":
			node.Attr = append(node.Attr, html.Attribute{Key: "href", Val: attr.Value})
		}
	}
	if node.Data == "a" && len(node.Attr) == 0 {
		// Internal cross references have no target after transcoding.
		node.Data = "span"
		node.DataAtom = atom.Span
	}
}

// isStructural reports whether whitespace-only text inside the element is
// formatting noise rather than content.
func isStructural(name string) bool {
	switch name {
	case "body", "section", "ul", "table", "thead", "tbody", "tr", "figure", "blockquote":
		return true
	}
	return false
}

// buildDocument wraps the body in a minimal html/head/body skeleton.
func buildDocument(title string, body *html.Node) *html.Node {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := &html.Node{Type: html.ElementNode, Data: "html", DataAtom: atom.Html}
	doc.AppendChild(root)

	head := &html.Node{Type: html.ElementNode, Data: "head", DataAtom: atom.Head}
	meta := &html.Node{
		Type: html.ElementNode, Data: "meta", DataAtom: atom.Meta,
		Attr: []html.Attribute{{Key: "charset", Val: "utf-8"}},
	}
	head.AppendChild(meta)
	titleNode := &html.Node{Type: html.ElementNode, Data: "title", DataAtom: atom.Title}
	titleNode.AppendChild(&html.Node{Type: html.TextNode, Data: title})
	head.AppendChild(titleNode)
	root.AppendChild(head)

	root.AppendChild(body)
	return doc
}

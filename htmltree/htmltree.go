// Package htmltree is a thin CSS/XPath selector wrapper over an HTML or
// XML document body. It carries no scraper policy of its own: callers
// build their own structural-assumption errors from the counts it
// reports.
package htmltree

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xmlquery"
	"golang.org/x/net/html"
)

// ------------------------------------------------------------------------

// Node wraps one position in a parsed HTML or XML document, dispatching
// CSS selection to goquery for HTML and XPath selection to htmlquery or
// xmlquery depending on which kind the document was parsed as.
type Node struct {
	html *html.Node
	xml  *xmlquery.Node
}

// ------------------------------------------------------------------------

// Parse parses text as HTML unless contentType names an XML media type.
func Parse(text string, contentType string) (*Node, error) {
	if isXML(contentType) {
		root, err := xmlquery.Parse(strings.NewReader(text))
		if err != nil {
			return nil, err
		}

		return &Node{xml: root}, nil
	}

	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, err
	}

	return &Node{html: root}, nil
}

func isXML(contentType string) bool {
	ct := strings.ToLower(contentType)

	return strings.Contains(ct, "xml") && !strings.Contains(ct, "xhtml")
}

// ------------------------------------------------------------------------

// IsXML reports whether n wraps an XML document.
func (n *Node) IsXML() bool {
	return n.xml != nil
}

// ------------------------------------------------------------------------

// CSS runs a goquery CSS selector against the document. It is only
// meaningful for HTML documents; called on an XML-backed Node it
// returns nil.
func (n *Node) CSS(selector string) []*Node {
	if n.html == nil {
		return nil
	}

	sel := goquery.NewDocumentFromNode(n.html).Find(selector)

	out := make([]*Node, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		if len(s.Nodes) > 0 {
			out = append(out, &Node{html: s.Nodes[0]})
		}
	})

	return out
}

// ------------------------------------------------------------------------

// XPath runs an XPath expression against the document, via htmlquery
// for HTML documents and xmlquery for XML documents.
func (n *Node) XPath(expr string) ([]*Node, error) {
	if n.xml != nil {
		matches, err := xmlquery.QueryAll(n.xml, expr)
		if err != nil {
			return nil, err
		}

		out := make([]*Node, 0, len(matches))
		for _, m := range matches {
			out = append(out, &Node{xml: m})
		}

		return out, nil
	}

	matches, err := htmlquery.QueryAll(n.html, expr)
	if err != nil {
		return nil, err
	}

	out := make([]*Node, 0, len(matches))
	for _, m := range matches {
		out = append(out, &Node{html: m})
	}

	return out, nil
}

// ------------------------------------------------------------------------

// Text returns the node's inner text.
func (n *Node) Text() string {
	if n.xml != nil {
		return n.xml.InnerText()
	}

	return htmlquery.InnerText(n.html)
}

// ------------------------------------------------------------------------

// Attr returns the named attribute's value and whether it was present.
func (n *Node) Attr(name string) (string, bool) {
	if n.xml != nil {
		for _, a := range n.xml.Attr {
			if a.Name.Local == name {
				return a.Value, true
			}
		}

		return "", false
	}

	for _, a := range n.html.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}

	return "", false
}

// ------------------------------------------------------------------------

// Count is a convenience for building *HTMLStructuralAssumptionException
// values: run selector (CSS for HTML, XPath for either) and return how
// many nodes matched.
func (n *Node) Count(selectorType string, selector string) (int, error) {
	if selectorType == "css" {
		return len(n.CSS(selector)), nil
	}

	matches, err := n.XPath(selector)
	if err != nil {
		return 0, err
	}

	return len(matches), nil
}

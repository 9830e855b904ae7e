package parser

import (
	"net/url"
)

// ------------------------------------------------------------------------

type simpleParser struct {
	parser func(string) (*url.URL, error)
}

// ------------------------------------------------------------------------

// NewSimpleParser returns a pointer to a newly created simple URL parser.
// The returned parser wraps net/url.Parse; it has no ParseRef method, so
// it does not satisfy the root package's URLResolver interface.
func NewSimpleParser() *simpleParser {
	return &simpleParser{
		parser: url.Parse,
	}
}

// ------------------------------------------------------------------------

// Parse parses a raw url into a URL structure.
func (p *simpleParser) Parse(rawURL string) (*url.URL, error) {
	return p.parser(rawURL)
}

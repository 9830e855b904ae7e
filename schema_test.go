package juriscraper

import (
	"iter"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// ------------------------------------------------------------------------

// TestEntriesDocumentDescribesParams confirms the generated document
// carries one entry covering both a primitive and a schema-backed
// parameter, with the schema-backed one resolving to the registered
// *openapi3.Schema rather than a generated placeholder.
func TestEntriesDocumentDescribesParams(t *testing.T) {
	s := NewBaseScraper("docgen")

	type caseParams struct {
		Docket string `json:"docket"`
	}
	if err := s.Schema().RegisterType("case", caseParams{}); err != nil {
		t.Fatalf("RegisterType: %v", err)
	}

	s.RegisterEntry("lookup", map[string]ParamSpec{
		"court": {Kind: ParamString},
		"case":  {Kind: ParamSchema, SchemaName: "case"},
	}, func(params map[string]any) iter.Seq[*Request] {
		return func(yield func(*Request) bool) {}
	}, false)

	doc, err := EntriesDocument(s)
	if err != nil {
		t.Fatalf("EntriesDocument: %v", err)
	}

	entries, ok := doc["entries"].(map[string]any)
	if !ok {
		t.Fatalf("expected an \"entries\" map, got %T", doc["entries"])
	}

	lookup, ok := entries["lookup"].(map[string]any)
	if !ok {
		t.Fatalf("expected a \"lookup\" entry, got %v", entries)
	}

	props, ok := lookup["properties"].(map[string]any)
	if !ok {
		t.Fatalf("expected properties, got %v", lookup)
	}

	if _, ok := props["court"].(*openapi3.Schema); !ok {
		t.Fatalf("expected court's generated schema, got %T", props["court"])
	}

	caseSchema, ok := props["case"].(*openapi3.Schema)
	if !ok {
		t.Fatalf("expected case's registered schema, got %T", props["case"])
	}

	registered, _ := s.Schema().Get("case")
	if caseSchema != registered {
		t.Fatalf("expected the case parameter to reference the exact registered schema")
	}
}

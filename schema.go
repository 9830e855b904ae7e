package juriscraper

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

// ------------------------------------------------------------------------

// SchemaRegistry holds the JSON-Schema descriptors a Scraper's entries
// and DeferredValidation payloads are checked against. It is built once
// at scraper-construction time and treated as read-only during a run,
// the way the scraper instance itself is.
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]*openapi3.Schema
}

// NewSchemaRegistry returns a pointer to a newly created, empty registry.
func NewSchemaRegistry() *SchemaRegistry {
	return &SchemaRegistry{
		schemas: map[string]*openapi3.Schema{},
	}
}

// ------------------------------------------------------------------------

// Register associates name with schema, overwriting any prior schema
// registered under the same name.
func (r *SchemaRegistry) Register(name string, schema *openapi3.Schema) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.schemas[name] = schema
}

// ------------------------------------------------------------------------

// RegisterType generates a schema for a Go value's shape via
// openapi3gen and registers it under name.
func (r *SchemaRegistry) RegisterType(name string, sample any) error {
	schemaRef, err := openapi3gen.NewSchemaRefForValue(sample, nil)
	if err != nil {
		return fmt.Errorf("generating schema for %q: %w", name, err)
	}

	r.Register(name, schemaRef.Value)

	return nil
}

// ------------------------------------------------------------------------

// Get returns the schema registered under name, if any.
func (r *SchemaRegistry) Get(name string) (*openapi3.Schema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, present := r.schemas[name]

	return s, present
}

// ------------------------------------------------------------------------

// Validate checks doc against the schema registered under name. On
// success it returns doc unchanged. On failure it returns a
// *DataFormatAssumptionException describing each violation.
func (r *SchemaRegistry) Validate(name string, doc map[string]any, url string) (any, error) {
	r.mu.RLock()
	schema, present := r.schemas[name]
	r.mu.RUnlock()

	if !present {
		return doc, nil
	}

	if err := schema.VisitJSON(doc); err != nil {
		return nil, &DataFormatAssumptionException{
			Errors:     schemaErrorsOf(err),
			Document:   doc,
			SchemaName: name,
			URL:        url,
		}
	}

	return doc, nil
}

// ------------------------------------------------------------------------

// schemaErrorsOf flattens a kin-openapi validation error (which may be
// a *openapi3.SchemaError or a MultiError wrapping several) into the
// field-level list DataFormatAssumptionException carries.
func schemaErrorsOf(err error) []FieldValidationError {
	if me, ok := err.(openapi3.MultiError); ok {
		out := make([]FieldValidationError, 0, len(me))
		for _, e := range me {
			out = append(out, fieldErrorOf(e))
		}

		return out
	}

	return []FieldValidationError{fieldErrorOf(err)}
}

func fieldErrorOf(err error) FieldValidationError {
	if se, ok := err.(*openapi3.SchemaError); ok {
		return FieldValidationError{
			Field:   jsonPathOf(se),
			Message: se.Reason,
		}
	}

	return FieldValidationError{Field: "", Message: err.Error()}
}

func jsonPathOf(se *openapi3.SchemaError) string {
	path := se.JSONPointer()
	if len(path) == 0 {
		return ""
	}

	out := path[0]
	for _, p := range path[1:] {
		out = out + "." + p
	}

	return out
}

// ------------------------------------------------------------------------

// EntriesDocument builds a JSON-Schema document describing every entry
// s exposes: one object schema per entry name, with one property per
// declared parameter. A ParamSchema parameter embeds the schema
// already registered under its SchemaName; primitive kinds get a
// schema generated on the fly via openapi3gen.
func EntriesDocument(s Scraper) (map[string]any, error) {
	reg := s.Schema()
	entries := map[string]any{}

	for _, e := range s.ListEntries() {
		props := map[string]any{}

		for param, kind := range e.ParamTypes {
			if name, isSchema := strings.CutPrefix(kind, "schema:"); isSchema {
				sch, present := reg.Get(name)
				if !present {
					return nil, fmt.Errorf("entry %q: parameter %q references unregistered schema %q", e.Name, param, name)
				}

				props[param] = sch

				continue
			}

			schemaRef, err := openapi3gen.NewSchemaRefForValue(zeroValueForKind(kind), nil)
			if err != nil {
				return nil, fmt.Errorf("entry %q: parameter %q: %w", e.Name, param, err)
			}

			props[param] = schemaRef.Value
		}

		entries[e.Name] = map[string]any{
			"type":        "object",
			"properties":  props,
			"returns":     e.ReturnType,
			"speculative": e.Speculative,
		}
	}

	return map[string]any{
		"title":   s.Name(),
		"entries": entries,
	}, nil
}

func zeroValueForKind(kind string) any {
	switch kind {
	case "integer":
		return 0
	case "date":
		return time.Time{}
	default:
		return ""
	}
}

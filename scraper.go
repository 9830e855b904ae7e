package juriscraper

import (
	"fmt"
	"iter"
	"strconv"
	"time"
)

// ------------------------------------------------------------------------

// ParamKind tags an entry parameter's expected shape for coercion:
// primitives are coerced, anything else validates against a
// registered schema.
type ParamKind int

const (
	ParamString ParamKind = iota
	ParamInteger
	ParamDate
	ParamSchema
)

// ------------------------------------------------------------------------

// ParamSpec declares one entry parameter.
type ParamSpec struct {
	Kind       ParamKind
	SchemaName string // used when Kind == ParamSchema
}

// ------------------------------------------------------------------------

// EntryFunc is a registered entry's body: it receives already-coerced
// parameters and returns a finite lazy sequence of requests.
type EntryFunc func(params map[string]any) iter.Seq[*Request]

// ------------------------------------------------------------------------

type entryReg struct {
	params      map[string]ParamSpec
	fn          EntryFunc
	speculative bool
}

type stepReg struct {
	fn       Continuation
	priority int
	encoding string
}

type speculatorReg struct {
	meta SpeculatorMetadata
	fn   func(id int) *Request
}

// ------------------------------------------------------------------------

// BaseScraper is a registration-driven Scraper implementation: a user
// builds one with NewBaseScraper, then calls RegisterEntry/
// RegisterStep/RegisterSpeculator at construction time, before the
// scraper is ever handed to a Driver.
type BaseScraper struct {
	name        string
	entries     map[string]*entryReg
	steps       map[string]*stepReg
	speculators map[string]*speculatorReg
	schema      *SchemaRegistry
}

// ------------------------------------------------------------------------

// NewBaseScraper returns a pointer to a newly created, empty scraper
// registry named name.
func NewBaseScraper(name string) *BaseScraper {
	return &BaseScraper{
		name:        name,
		entries:     map[string]*entryReg{},
		steps:       map[string]*stepReg{},
		speculators: map[string]*speculatorReg{},
		schema:      NewSchemaRegistry(),
	}
}

// ------------------------------------------------------------------------

// RegisterEntry declares a typed entry point.
func (s *BaseScraper) RegisterEntry(name string, params map[string]ParamSpec, fn EntryFunc, speculative bool) {
	s.entries[name] = &entryReg{params: params, fn: fn, speculative: speculative}
}

// RegisterStep declares a continuation. priority defaults to
// DefaultPriority when 0.
func (s *BaseScraper) RegisterStep(name string, fn Continuation, priority int, encoding string) {
	if priority == 0 {
		priority = DefaultPriority
	}

	s.steps[name] = &stepReg{fn: fn, priority: priority, encoding: encoding}
}

// RegisterSpeculator declares a speculator.
func (s *BaseScraper) RegisterSpeculator(name string, highestObserved, largestObservedGap int, observationDate string, fn func(id int) *Request) {
	if highestObserved <= 0 {
		highestObserved = 1
	}
	if largestObservedGap < 0 {
		largestObservedGap = 10
	}

	s.speculators[name] = &speculatorReg{
		meta: SpeculatorMetadata{
			Name:               name,
			HighestObserved:    highestObserved,
			ObservationDate:    observationDate,
			LargestObservedGap: largestObservedGap,
		},
		fn: fn,
	}
}

// ------------------------------------------------------------------------

func (s *BaseScraper) Name() string { return s.name }

// ------------------------------------------------------------------------

// InitialSeed dispatches each invocation to its entry, coercing its
// parameters against the entry's declared ParamSpecs, and concatenates
// their lazy request streams into one flat lazy stream.
func (s *BaseScraper) InitialSeed(invocations []EntryInvocation) (iter.Seq[*Request], error) {
	type bound struct {
		fn     EntryFunc
		params map[string]any
	}

	calls := make([]bound, 0, len(invocations))

	for _, inv := range invocations {
		entry, present := s.entries[inv.Entry]
		if !present {
			return nil, fmt.Errorf("unknown entry %q", inv.Entry)
		}

		coerced, err := coerceParams(entry.params, inv.Params, s.schema)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", inv.Entry, err)
		}

		calls = append(calls, bound{fn: entry.fn, params: coerced})
	}

	return func(yield func(*Request) bool) {
		for _, c := range calls {
			for req := range c.fn(c.params) {
				if !yield(req) {
					return
				}
			}
		}
	}, nil
}

// ------------------------------------------------------------------------

func coerceParams(specs map[string]ParamSpec, given map[string]any, schema *SchemaRegistry) (map[string]any, error) {
	out := make(map[string]any, len(specs))

	for name, spec := range specs {
		v, present := given[name]
		if !present {
			return nil, fmt.Errorf("missing parameter %q", name)
		}

		coerced, err := coerceOne(spec, v, schema)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}

		out[name] = coerced
	}

	return out, nil
}

func coerceOne(spec ParamSpec, v any, schema *SchemaRegistry) (any, error) {
	switch spec.Kind {
	case ParamString:
		switch t := v.(type) {
		case string:
			return t, nil
		default:
			return fmt.Sprintf("%v", t), nil
		}
	case ParamInteger:
		switch t := v.(type) {
		case int:
			return t, nil
		case float64:
			return int(t), nil
		case string:
			n, err := strconv.Atoi(t)
			if err != nil {
				return nil, fmt.Errorf("not an integer: %v", v)
			}

			return n, nil
		default:
			return nil, fmt.Errorf("not an integer: %v", v)
		}
	case ParamDate:
		switch t := v.(type) {
		case time.Time:
			return t, nil
		case string:
			d, err := time.Parse(time.RFC3339, t)
			if err != nil {
				d, err = time.Parse("2006-01-02", t)
			}
			if err != nil {
				return nil, fmt.Errorf("not an ISO date: %v", v)
			}

			return d, nil
		default:
			return nil, fmt.Errorf("not an ISO date: %v", v)
		}
	case ParamSchema:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("expected an object for schema %q, got %T", spec.SchemaName, v)
		}

		return schema.Validate(spec.SchemaName, m, "")
	default:
		return v, nil
	}
}

// ------------------------------------------------------------------------

func (s *BaseScraper) GetContinuation(name string) (Continuation, bool) {
	step, present := s.steps[name]
	if !present {
		return nil, false
	}

	return step.fn, true
}

// ------------------------------------------------------------------------

func (s *BaseScraper) ListEntries() []EntryMetadata {
	out := make([]EntryMetadata, 0, len(s.entries))
	for name, e := range s.entries {
		params := make(map[string]string, len(e.params))
		for p, spec := range e.params {
			if spec.Kind == ParamSchema {
				params[p] = "schema:" + spec.SchemaName
			} else {
				params[p] = paramKindName(spec.Kind)
			}
		}

		out = append(out, EntryMetadata{
			Name: name,
			// An entry's EntryFunc always yields iter.Seq[*Request]; there
			// is no other return shape to report.
			ReturnType:  "request",
			ParamTypes:  params,
			Speculative: e.speculative,
		})
	}

	return out
}

func paramKindName(k ParamKind) string {
	switch k {
	case ParamString:
		return "string"
	case ParamInteger:
		return "integer"
	case ParamDate:
		return "date"
	case ParamSchema:
		return "schema"
	default:
		return "unknown"
	}
}

// ------------------------------------------------------------------------

func (s *BaseScraper) ListSpeculators() []SpeculatorMetadata {
	out := make([]SpeculatorMetadata, 0, len(s.speculators))
	for _, sp := range s.speculators {
		out = append(out, sp.meta)
	}

	return out
}

// ------------------------------------------------------------------------

func (s *BaseScraper) ListSteps() []StepMetadata {
	out := make([]StepMetadata, 0, len(s.steps))
	for name, st := range s.steps {
		out = append(out, StepMetadata{Name: name, Priority: st.priority, Encoding: st.encoding})
	}

	return out
}

// ------------------------------------------------------------------------

func (s *BaseScraper) Schema() *SchemaRegistry {
	return s.schema
}

// ------------------------------------------------------------------------

// StepPriority returns the registered priority for a continuation
// name, or DefaultPriority if unregistered. It applies to any request
// a step yields that does not itself set a priority.
func (s *BaseScraper) StepPriority(name string) int {
	if st, present := s.steps[name]; present {
		return st.priority
	}

	return DefaultPriority
}

// ------------------------------------------------------------------------

// Speculators exposes the registered speculator functions for the
// speculation engine (speculation.go), keyed by name.
func (s *BaseScraper) Speculators() map[string]func(id int) *Request {
	out := make(map[string]func(id int) *Request, len(s.speculators))
	for name, sp := range s.speculators {
		out[name] = sp.fn
	}

	return out
}

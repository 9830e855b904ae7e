package juriscraper

import (
	"crypto/tls"
	"iter"
)

// ------------------------------------------------------------------------

// EntryInvocation is one `{entry_name: {param_name: value, ...}}`
// typed-entry call the driver seeds a run from.
type EntryInvocation struct {
	Entry  string
	Params map[string]any
}

// ------------------------------------------------------------------------

// EntryMetadata describes one of a Scraper's typed entry points.
type EntryMetadata struct {
	Name        string
	ReturnType  string
	ParamTypes  map[string]string
	Speculative bool
}

// ------------------------------------------------------------------------

// StepMetadata describes one registered continuation.
type StepMetadata struct {
	Name     string
	Priority int
	Encoding string
}

// ------------------------------------------------------------------------

// SpeculatorMetadata describes one registered speculator.
type SpeculatorMetadata struct {
	Name               string
	HighestObserved    int
	ObservationDate    string
	LargestObservedGap int
}

// ------------------------------------------------------------------------

// Scraper is the surface the driver consumes. A user-written
// scraper implements it directly, or embeds *BaseScraper (scraper.go)
// which supplies ListEntries/ListSteps/ListSpeculators/Schema/
// GetContinuation from registrations made at construction time.
type Scraper interface {
	Name() string

	// InitialSeed dispatches invocations to their entry methods and
	// returns the flattened, lazily-produced stream of requests they yield.
	InitialSeed(invocations []EntryInvocation) (iter.Seq[*Request], error)

	// GetContinuation resolves a continuation name to its bound step function.
	GetContinuation(name string) (Continuation, bool)

	ListEntries() []EntryMetadata
	ListSpeculators() []SpeculatorMetadata
	ListSteps() []StepMetadata

	// Schema returns the registry backing DeferredValidation.Confirm.
	Schema() *SchemaRegistry
}

// ------------------------------------------------------------------------

// SoftFailureDetector is optionally implemented by a Scraper to detect
// soft-404s: a response with a successful HTTP status whose body still
// indicates "not found".
type SoftFailureDetector interface {
	FailsSuccessfully(resp *Response) bool
}

// ------------------------------------------------------------------------

// SSLContextProvider is optionally implemented by a Scraper to supply a
// custom TLS configuration to the Request Manager.
type SSLContextProvider interface {
	GetSSLContext() *tls.Config
}

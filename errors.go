package juriscraper

import (
	"errors"
	"fmt"
)

// ------------------------------------------------------------------------

// Driver-level sentinel errors.
var (
	ErrNoScraper      = errors.New("driver: no scraper was given")
	ErrAlreadyRunning = errors.New("driver: run() was already called")
	ErrQueueClosed    = errors.New("driver: queue is closed")
	ErrUnknownStep    = errors.New("driver: continuation references an unregistered step")
)

// ------------------------------------------------------------------------

// ErrTransient is the marker every transient (retry-worthy) failure wraps.
// Callers test for it with errors.Is.
var ErrTransient = errors.New("transient failure")

// ErrPermanent is the marker every permanent (non-retry-worthy) failure wraps.
var ErrPermanent = errors.New("permanent failure")

// ------------------------------------------------------------------------

// ScraperAssumptionException is the base of the permanent error family: a
// constraint the scraper author expressed about the target that the
// response violated.
type ScraperAssumptionException struct {
	Message string
	URL     string
	Context map[string]string
}

func (e *ScraperAssumptionException) Error() string {
	return fmt.Sprintf("scraper assumption failed for %s: %s", e.URL, e.Message)
}

func (e *ScraperAssumptionException) Unwrap() error {
	return ErrPermanent
}

// ------------------------------------------------------------------------

// HTMLStructuralAssumptionException signals that a selector over a
// response's HTML/XML body matched an unexpected number of nodes.
type HTMLStructuralAssumptionException struct {
	Selector     string
	SelectorType string // "xpath" or "css"; "json" or "html" when injection could not parse the body
	Description  string
	ExpectedMin  int
	ExpectedMax  int
	ActualCount  int
	URL          string
}

func (e *HTMLStructuralAssumptionException) Error() string {
	return fmt.Sprintf(
		"structural assumption failed for %s: %s selector %q matched %d nodes, expected [%d,%d]: %s",
		e.URL, e.SelectorType, e.Selector, e.ActualCount, e.ExpectedMin, e.ExpectedMax, e.Description,
	)
}

func (e *HTMLStructuralAssumptionException) Unwrap() error {
	return ErrPermanent
}

// ------------------------------------------------------------------------

// FieldValidationError describes one field-level failure inside a
// DataFormatAssumptionException.
type FieldValidationError struct {
	Field   string
	Message string
}

// DataFormatAssumptionException signals that a DeferredValidation's raw
// document failed schema validation.
type DataFormatAssumptionException struct {
	Errors     []FieldValidationError
	Document   map[string]any
	SchemaName string
	URL        string
}

func (e *DataFormatAssumptionException) Error() string {
	return fmt.Sprintf("data-format assumption failed for %s against schema %q (%d field errors)",
		e.URL, e.SchemaName, len(e.Errors))
}

func (e *DataFormatAssumptionException) Unwrap() error {
	return ErrPermanent
}

// ------------------------------------------------------------------------

// TransientException is the base of the transient error family: a
// transport failure that may succeed if retried.
type TransientException struct {
	Message string
	URL     string
}

func (e *TransientException) Error() string {
	return fmt.Sprintf("transient failure for %s: %s", e.URL, e.Message)
}

func (e *TransientException) Unwrap() error {
	return ErrTransient
}

// ------------------------------------------------------------------------

// HTMLResponseAssumptionException signals a 5xx or 429 response.
type HTMLResponseAssumptionException struct {
	Status        int
	ExpectedCodes []int
	URL           string
}

func (e *HTMLResponseAssumptionException) Error() string {
	return fmt.Sprintf("unexpected status %d for %s (expected one of %v)", e.Status, e.URL, e.ExpectedCodes)
}

func (e *HTMLResponseAssumptionException) Unwrap() error {
	return ErrTransient
}

// ------------------------------------------------------------------------

// RequestTimeoutException signals a transport timeout.
type RequestTimeoutException struct {
	URL            string
	TimeoutSeconds float64
}

func (e *RequestTimeoutException) Error() string {
	return fmt.Sprintf("request to %s timed out after %.1fs", e.URL, e.TimeoutSeconds)
}

func (e *RequestTimeoutException) Unwrap() error {
	return ErrTransient
}

// ------------------------------------------------------------------------

// RequestFailedHalt and RequestFailedSkip are driver control-flow
// sentinels, distinct from the data taxonomy above: they carry no retry
// semantics, only "stop the run" or "drop this one request and
// continue." Nothing in the driver returns or checks them; the
// OnStructuralError and OnTransientException callbacks signal
// continue/stop through their bool result.
var (
	ErrRequestFailedHalt = errors.New("driver: request failure halts the run")
	ErrRequestFailedSkip = errors.New("driver: request failure skips this request")
)

// ------------------------------------------------------------------------

// IsTransient reports whether err (or anything it wraps) is a transient failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransient)
}

// IsPermanent reports whether err (or anything it wraps) is a permanent failure.
func IsPermanent(err error) bool {
	return errors.Is(err, ErrPermanent)
}

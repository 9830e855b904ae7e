package juriscraper

// ------------------------------------------------------------------------

// Callbacks groups the driver's recognized lifecycle and per-event
// hooks. Any field may be left nil; the driver's default
// behavior in the absence of a callback is to re-raise and terminate
// the run.
type Callbacks struct {
	OnRunStart    func(scraperName string)
	OnRunComplete func(scraperName string, status string, err error)

	OnData        func(validated any)
	OnInvalidData func(dv *DeferredValidation)

	// OnStructuralError and OnTransientException return whether the run
	// should continue (true) or stop (false).
	OnStructuralError     func(err error) bool
	OnTransientException  func(err error) bool

	// OnArchive substitutes the default file sink.
	OnArchive func(body []byte, url string, expectedType string, storageDir string) (string, error)

	// DuplicateCheck substitutes the default in-memory seen-set. It
	// returns true to enqueue, false to skip.
	DuplicateCheck func(dedupKey string) (bool, error)
}

// ------------------------------------------------------------------------

const (
	RunStatusCompleted = "completed"
	RunStatusError     = "error"
)

package juriscraper

import (
	"context"
	"crypto/tls"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/navindex/juriscraper/logger"
	"github.com/navindex/juriscraper/parser"
)

// ------------------------------------------------------------------------

// requestExecutor is satisfied by both *Manager and *RetryManager, the
// two layering options for turning a Request into a Response.
type requestExecutor interface {
	Execute(ctx context.Context, req *Request) (*Response, error)
}

// ------------------------------------------------------------------------

// Driver owns the request queue and runs the fetch-and-dispatch cycle.
// Driver is the serial variant; ParallelDriver shares the same queue,
// manager, and dispatch logic across a worker pool.
type Driver struct {
	ID uuid.UUID

	scraper     Scraper
	config      *DriverConfig
	queue       *PriorityQueue
	manager     requestExecutor
	dedup       dedupChecker
	urlResolver URLResolver

	speculation   *SpeculationEngine
	specOverrides map[string]SpeculationOverride
}

// ------------------------------------------------------------------------

// dedupChecker is the subset of storage.DuplicateChecker (or a
// Callbacks.DuplicateCheck substitute) the driver actually calls.
type dedupChecker interface {
	Seen(key string) (bool, error)
	Mark(key string) error
}

// ------------------------------------------------------------------------

// NewDriver returns a pointer to a newly created serial Driver.
func NewDriver(scraper Scraper, config *DriverConfig) *Driver {
	if config == nil {
		config = NewDriverConfig(scraper.Name())
	}

	base := NewManager(config.HTTPTimeout, sslConfigFor(scraper))

	var exec requestExecutor = base
	if config.RetryPolicy.BaseDelay > 0 {
		exec = NewRetryManager(base, config.RetryPolicy)
	}

	return &Driver{
		ID:          uuid.New(),
		scraper:     scraper,
		config:      config,
		queue:       NewPriorityQueue(),
		manager:     exec,
		dedup:       config.DuplicateChecker,
		urlResolver: parser.NewWHATWGParser(),
	}
}

func sslConfigFor(scraper Scraper) *tls.Config {
	if p, ok := scraper.(SSLContextProvider); ok {
		return p.GetSSLContext()
	}

	return nil
}

// ------------------------------------------------------------------------

// Run seeds the queue and processes it to completion. It returns only
// when the queue empties, cancellation is observed, or a fatal error
// propagates past every callback.
func (d *Driver) Run(ctx context.Context, invocations []EntryInvocation, specOverrides map[string]SpeculationOverride) (err error) {
	d.specOverrides = specOverrides

	d.logEvent(logger.INFO_LEVEL, d.ID, "run.start", nil)
	if d.config.Callbacks.OnRunStart != nil {
		d.config.Callbacks.OnRunStart(d.scraper.Name())
	}

	defer func() {
		status := RunStatusCompleted
		if err != nil {
			status = RunStatusError
		}

		if d.config.Callbacks.OnRunComplete != nil {
			d.config.Callbacks.OnRunComplete(d.scraper.Name(), status, err)
		}

		d.logEvent(logger.INFO_LEVEL, d.ID, "run.complete", map[string]string{"status": status})
	}()

	if err = d.seed(invocations); err != nil {
		return err
	}

	return d.mainCycle(ctx)
}

// ------------------------------------------------------------------------

func (d *Driver) seed(invocations []EntryInvocation) error {
	seeds, err := d.scraper.InitialSeed(invocations)
	if err != nil {
		return err
	}

	for req := range seeds {
		req.Priority = d.resolvedPriority(req, "")
		d.enqueue(req)
	}

	metas := d.scraper.ListSpeculators()
	if len(metas) == 0 {
		return nil
	}

	fns := speculatorFns(d.scraper)
	d.speculation = NewSpeculationEngine(metas, fns, d.specOverrides)

	for _, req := range d.speculation.Seed(metas, d.specOverrides) {
		req.Priority = d.resolvedPriority(req, "")
		d.enqueue(req)
	}

	return nil
}

func speculatorFns(s Scraper) map[string]func(int) *Request {
	if b, ok := s.(*BaseScraper); ok {
		return b.Speculators()
	}

	return map[string]func(int) *Request{}
}

// resolvedPriority applies req's own priority if set, otherwise the
// priority registered for yieldingStep, otherwise this request kind's
// default. yieldingStep is "" for entry- and speculator-seeded
// requests, which have no yielding step to inherit from.
func (d *Driver) resolvedPriority(req *Request, yieldingStep string) int {
	if req.Priority != 0 {
		return req.Priority
	}

	if p, ok := d.stepPriority(yieldingStep); ok {
		return p
	}

	if req.Archive {
		return DefaultArchivePriority
	}

	return DefaultPriority
}

func (d *Driver) stepPriority(continuation string) (priority int, ok bool) {
	if continuation == "" {
		return 0, false
	}

	if b, ok := d.scraper.(*BaseScraper); ok {
		if st, present := b.steps[continuation]; present {
			return st.priority, true
		}

		return 0, false
	}

	for _, s := range d.scraper.ListSteps() {
		if s.Name == continuation {
			return s.Priority, true
		}
	}

	return 0, false
}

// ------------------------------------------------------------------------

// enqueue applies the deduplication filter before pushing
// req onto the queue. Marking happens at enqueue time regardless of
// outcome, and a SkipDedup key always bypasses the check.
func (d *Driver) enqueue(req *Request) {
	if req == nil {
		return
	}

	key := req.DeduplicationKeyFor()
	if key == SkipDedup {
		d.queue.Push(req)

		return
	}

	seen, enqueueAllowed := d.checkDuplicate(key)
	if seen && !enqueueAllowed {
		d.logEvent(logger.DEBUG_LEVEL, d.ID, "request.deduplicated", map[string]string{"key": key})

		return
	}

	d.markSeen(key)
	d.queue.Push(req)
}

func (d *Driver) checkDuplicate(key string) (seen bool, mayEnqueue bool) {
	if d.config.Callbacks.DuplicateCheck != nil {
		allowed, err := d.config.Callbacks.DuplicateCheck(key)
		if err != nil {
			return true, false
		}

		return !allowed, allowed
	}

	wasSeen, err := d.dedup.Seen(key)
	if err != nil {
		return false, true
	}

	return wasSeen, !wasSeen
}

func (d *Driver) markSeen(key string) {
	if d.config.Callbacks.DuplicateCheck != nil {
		return
	}

	d.dedup.Mark(key)
}

// ------------------------------------------------------------------------

func (d *Driver) logEvent(level logger.Level, id uuid.UUID, eventType string, values map[string]string) {
	if level < d.config.LogLevel {
		return
	}

	logEvent(d.config.Logger, level, id, id, eventType, values)
}

// ------------------------------------------------------------------------

// mainCycle repeats pop-fetch-dispatch until the queue empties; the
// serial variant drains the queue immediately on cancellation.
func (d *Driver) mainCycle(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.queue.Drain()

			return nil
		case <-d.config.CancelSignal:
			d.queue.Drain()

			return nil
		default:
		}

		req, ok := d.queue.Pop()
		if !ok {
			return nil
		}

		if err := d.processOne(ctx, req); err != nil {
			return err
		}
	}
}

// ------------------------------------------------------------------------

func (d *Driver) processOne(ctx context.Context, req *Request) error {
	resp, err := d.manager.Execute(ctx, req)
	if err != nil {
		if IsTransient(err) {
			return d.handleTransient(err)
		}

		return err
	}

	return d.dispatchResponse(req, resp)
}

func (d *Driver) handleTransient(err error) error {
	if d.config.Callbacks.OnTransientException == nil {
		return err
	}

	if d.config.Callbacks.OnTransientException(err) {
		return nil // continue with the next request
	}

	return err // stop the driver: the error propagates out of Run
}

// ------------------------------------------------------------------------

func (d *Driver) dispatchResponse(req *Request, resp *Response) error {
	var archivedResp *Response = resp
	var localFilepath string

	if req.Archive {
		path, err := d.archiveBody(resp)
		if err != nil {
			return err
		}

		localFilepath = path
	}

	continuation, present := d.scraper.GetContinuation(req.Continuation)
	if !present {
		return fmt.Errorf("%w: %q", ErrUnknownStep, req.Continuation)
	}

	var previous *Request
	if n := len(req.PreviousRequests); n > 0 {
		previous = req.PreviousRequests[n-1]
	}

	seq, err := Invoke(continuation, &InjectionContext{
		Response:      archivedResp,
		PreviousReq:   previous,
		LocalFilepath: localFilepath,
	})
	if err != nil {
		return d.handleStructuralError(err)
	}

	if err := d.rangeDispatch(seq, archivedResp); err != nil {
		return err
	}

	if req.IsSpeculative {
		d.trackSpeculation(req, resp)
	}

	return nil
}

// ------------------------------------------------------------------------

// rangeDispatch pulls items from seq one at a time, dispatching each
// before pulling the next. A continuation body is free to panic with
// an error partway through a lazy sequence when a structural assumption
// fails mid-iteration; that panic is recovered here and routed through
// the same OnStructuralError path as an injection-time failure.
func (d *Driver) rangeDispatch(seq iter.Seq[Item], resp *Response) (err error) {
	defer func() {
		if r := recover(); r != nil {
			structErr, ok := r.(error)
			if !ok {
				panic(r)
			}

			err = d.handleStructuralError(structErr)
		}
	}()

	for item := range seq {
		if dispatchErr := d.dispatchItem(item, resp); dispatchErr != nil {
			return dispatchErr
		}
	}

	return nil
}

// ------------------------------------------------------------------------

func (d *Driver) handleStructuralError(err error) error {
	if d.config.Callbacks.OnStructuralError == nil {
		return err
	}

	if d.config.Callbacks.OnStructuralError(err) {
		return nil
	}

	return err
}

// ------------------------------------------------------------------------

func (d *Driver) archiveBody(resp *Response) (string, error) {
	sink := DefaultArchiveSink
	if d.config.Callbacks.OnArchive != nil {
		sink = d.config.Callbacks.OnArchive
	}

	return sink(resp.Body, resp.FinalURL.String(), resp.Request.ExpectedType, d.config.StorageDir)
}

// ------------------------------------------------------------------------

func (d *Driver) trackSpeculation(req *Request, resp *Response) {
	if d.speculation == nil {
		return
	}

	name, id, ok := speculativeIdentity(req)
	if !ok {
		return
	}

	success := resp.IsSuccess()
	if success {
		if detector, ok := d.scraper.(SoftFailureDetector); ok && detector.FailsSuccessfully(resp) {
			success = false
		}
	}

	next, extend := d.speculation.Track(name, id, success)
	if !extend {
		return
	}

	next.Priority = d.resolvedPriority(next, "")
	d.enqueue(next)
}

// speculativeIdentity reports the speculator name and probed ID that
// produced req, as stamped by SpeculationEngine.Seed/Track.
func speculativeIdentity(req *Request) (name string, id int, ok bool) {
	if !req.IsSpeculative || req.SpeculatorName == "" {
		return "", 0, false
	}

	return req.SpeculatorName, req.SpeculatorID, true
}

package juriscraper

import (
	"context"
	"sync"

	"github.com/navindex/juriscraper/logger"
)

// ------------------------------------------------------------------------

// ParallelDriver runs config.Workers goroutines against one shared
// PriorityQueue and one shared request executor. Unlike the serial
// Driver, cancellation does not drain the queue: each worker finishes
// its in-flight fetch and dispatch, then exits, leaving whatever
// remains in the queue intact.
type ParallelDriver struct {
	*Driver
}

// ------------------------------------------------------------------------

// NewParallelDriver returns a pointer to a newly created ParallelDriver
// built on the same construction logic as NewDriver.
func NewParallelDriver(scraper Scraper, config *DriverConfig) *ParallelDriver {
	return &ParallelDriver{Driver: NewDriver(scraper, config)}
}

// ------------------------------------------------------------------------

// Run seeds the shared queue exactly as the serial driver does, then
// fans out config.Workers goroutines to drain it cooperatively. It
// returns once every worker has exited, either because the queue
// emptied or because one worker's error halted the whole run.
func (d *ParallelDriver) Run(ctx context.Context, invocations []EntryInvocation, specOverrides map[string]SpeculationOverride) (err error) {
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

	workers := d.config.Workers
	if workers < 1 {
		workers = 1
	}

	var (
		wg       sync.WaitGroup
		firstErr error
		errOnce  sync.Once
	)

	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	for i := 0; i < workers; i++ {
		wg.Add(1)

		go func(workerID int) {
			defer wg.Done()

			if werr := d.workerLoop(workerCtx, workerID); werr != nil {
				errOnce.Do(func() {
					firstErr = werr
					cancel() // stop sibling workers; their in-flight fetch still completes
				})
			}
		}(i)
	}

	wg.Wait()

	return firstErr
}

// ------------------------------------------------------------------------

// workerLoop pops and processes requests until the queue is empty, the
// context is cancelled or config.CancelSignal fires, or processOne
// returns a fatal error. Unlike the
// serial driver's mainCycle, a cancelled context here does not drain the
// queue: remaining items are left for a future run.
func (d *ParallelDriver) workerLoop(ctx context.Context, workerID int) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.config.CancelSignal:
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

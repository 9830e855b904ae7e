package juriscraper

import (
	"context"
	"iter"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// ------------------------------------------------------------------------

// TestParallelDriverDrainsSharedQueue seeds N independent pages directly
// onto the shared queue and checks every one is eventually collected by
// some worker, regardless of which.
func TestParallelDriverDrainsSharedQueue(t *testing.T) {
	var mu sync.Mutex
	hits := map[string]bool{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits[r.URL.Path] = true
		mu.Unlock()
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	scraper := NewBaseScraper("parallel-check")
	scraper.RegisterStep("noop", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {}
	}, DefaultPriority, "utf-8")

	cfg := NewDriverConfig("parallel-check", WithWorkerCount(4))
	d := NewParallelDriver(scraper, cfg)

	paths := []string{"/a", "/b", "/c", "/d", "/e", "/f"}
	for _, p := range paths {
		d.enqueue(NewRequest(NewRequestParams{URL: srv.URL + p, Continuation: "noop"}))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, nil, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	for _, p := range paths {
		if !hits[p] {
			t.Fatalf("expected %s to have been fetched by some worker", p)
		}
	}
}

// ------------------------------------------------------------------------

// TestParallelDriverCancellationLeavesQueueIntact confirms the parallel
// driver's workers stop without draining the queue on cancellation,
// unlike the serial driver.
func TestParallelDriverCancellationLeavesQueueIntact(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
		w.Write([]byte("ok"))
	}))
	defer srv.Close()
	defer close(block)

	scraper := NewBaseScraper("parallel-cancel-check")
	scraper.RegisterStep("noop", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {}
	}, DefaultPriority, "utf-8")

	cfg := NewDriverConfig("parallel-cancel-check", WithWorkerCount(1))
	d := NewParallelDriver(scraper, cfg)

	d.enqueue(NewRequest(NewRequestParams{URL: srv.URL + "/slow", Continuation: "noop"}))
	d.enqueue(NewRequest(NewRequestParams{URL: srv.URL + "/queued", Continuation: "noop", DeduplicationKey: SkipDedup}))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	d.Run(ctx, nil, nil)

	if _, ok := d.queue.Pop(); !ok {
		t.Fatalf("expected the second request to remain queued after cancellation")
	}
}

package juriscraper

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"
)

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("parsing %q: %v", raw, err)
	}

	return u
}

// ------------------------------------------------------------------------

// singlePageScraper registers one entry ("start") that seeds the test
// server's root page, and one step ("collect") that yields the two data
// items a single-page scrape should produce.
func singlePageScraper(serverURL string) *BaseScraper {
	s := NewBaseScraper("single-page")

	s.RegisterEntry("start", nil, func(params map[string]any) iter.Seq[*Request] {
		return func(yield func(*Request) bool) {
			yield(NewRequest(NewRequestParams{URL: serverURL + "/", Continuation: "collect"}))
		}
	}, false)

	s.RegisterStep("collect", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {
			if !yield(ParsedData("A")) {
				return
			}
			yield(ParsedData("B"))
		}
	}, DefaultPriority, "utf-8")

	return s
}

func TestDriverSinglePageScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	scraper := singlePageScraper(srv.URL)

	var collected []string
	cfg := NewDriverConfig("single-page", WithCallbacks(Callbacks{
		OnData: func(v any) { collected = append(collected, v.(string)) },
	}))

	d := NewDriver(scraper, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, []EntryInvocation{{Entry: "start"}}, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(collected) != 2 || collected[0] != "A" || collected[1] != "B" {
		t.Fatalf("expected [A B], got %v", collected)
	}
}

// ------------------------------------------------------------------------

// TestDriverPriorityOrdering seeds three requests at priorities 9, 1, 9
// directly (bypassing entries) and checks the queue, not the network,
// drains them low-number-first, FIFO within a tie.
func TestDriverPriorityOrdering(t *testing.T) {
	scraper := NewBaseScraper("priority-check")

	d := NewDriver(scraper, NewDriverConfig("priority-check"))

	order := []int{9, 1, 9}
	for _, p := range order {
		d.enqueue(NewRequest(NewRequestParams{URL: "http://example.invalid/x", Priority: p, DeduplicationKey: SkipDedup}))
	}

	var got []int
	for {
		req, ok := d.queue.Pop()
		if !ok {
			break
		}
		got = append(got, req.Priority)
	}

	want := []int{1, 9, 9}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

// ------------------------------------------------------------------------

// TestDriverPriorityInheritsFromYieldingStep confirms a request yielded
// by a step with a non-default registered priority, and which does not
// set its own priority, inherits the yielding step's priority rather
// than the default or its own target step's registered priority.
func TestDriverPriorityInheritsFromYieldingStep(t *testing.T) {
	scraper := NewBaseScraper("priority-inherit")
	scraper.RegisterStep("harvest", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {}
	}, 3, "utf-8")
	scraper.RegisterStep("leaf", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {}
	}, 7, "utf-8")

	d := NewDriver(scraper, NewDriverConfig("priority-inherit"))

	parent := NewRequest(NewRequestParams{URL: "http://example.invalid/parent", Continuation: "harvest"})
	resp := &Response{FinalURL: mustParseURL(t, "http://example.invalid/parent"), Request: parent}

	child := NewRequest(NewRequestParams{URL: "/child", Continuation: "leaf"})
	if err := d.dispatchRequest(child, resp); err != nil {
		t.Fatalf("dispatchRequest: %v", err)
	}

	got, ok := d.queue.Pop()
	if !ok {
		t.Fatalf("expected one request in the queue")
	}
	if got.Priority != 3 {
		t.Fatalf("expected priority inherited from yielding step 'harvest' (3), got %d", got.Priority)
	}
}

// ------------------------------------------------------------------------

// TestDriverDeduplicatesRepeatedURL enqueues the same URL twice and
// expects only one survivor in the queue.
func TestDriverDeduplicatesRepeatedURL(t *testing.T) {
	scraper := NewBaseScraper("dedup-check")
	d := NewDriver(scraper, NewDriverConfig("dedup-check"))

	d.enqueue(NewRequest(NewRequestParams{URL: "http://example.invalid/same"}))
	d.enqueue(NewRequest(NewRequestParams{URL: "http://example.invalid/same"}))

	count := 0
	for {
		if _, ok := d.queue.Pop(); !ok {
			break
		}
		count++
	}

	if count != 1 {
		t.Fatalf("expected 1 surviving request after dedup, got %d", count)
	}
}

// ------------------------------------------------------------------------

// TestDriverSkipDedupBypassesFilter confirms the SkipDedup sentinel lets
// an otherwise-identical request through every time.
func TestDriverSkipDedupBypassesFilter(t *testing.T) {
	scraper := NewBaseScraper("skip-dedup-check")
	d := NewDriver(scraper, NewDriverConfig("skip-dedup-check"))

	for i := 0; i < 3; i++ {
		d.enqueue(NewRequest(NewRequestParams{URL: "http://example.invalid/same", DeduplicationKey: SkipDedup}))
	}

	count := 0
	for {
		if _, ok := d.queue.Pop(); !ok {
			break
		}
		count++
	}

	if count != 3 {
		t.Fatalf("expected 3 surviving requests with SkipDedup, got %d", count)
	}
}

// ------------------------------------------------------------------------

// TestDriverStructuralErrorRecovery confirms a continuation that panics
// with a structural exception is routed to OnStructuralError, and the
// run continues when the callback returns true.
func TestDriverStructuralErrorRecovery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	scraper := NewBaseScraper("structural-recovery")
	scraper.RegisterEntry("start", nil, func(params map[string]any) iter.Seq[*Request] {
		return func(yield func(*Request) bool) {
			yield(NewRequest(NewRequestParams{URL: srv.URL + "/", Continuation: "broken"}))
		}
	}, false)
	scraper.RegisterStep("broken", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {
			panic(&HTMLStructuralAssumptionException{Description: "missing expected element", URL: resp.FinalURL.String()})
		}
	}, DefaultPriority, "utf-8")

	var sawStructuralError bool
	cfg := NewDriverConfig("structural-recovery", WithCallbacks(Callbacks{
		OnStructuralError: func(err error) bool {
			sawStructuralError = true

			return true
		},
	}))

	d := NewDriver(scraper, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, []EntryInvocation{{Entry: "start"}}, nil); err != nil {
		t.Fatalf("Run returned error despite a recovering callback: %v", err)
	}

	if !sawStructuralError {
		t.Fatalf("expected OnStructuralError to be invoked")
	}
}

// ------------------------------------------------------------------------

// TestDriverSpeculationExtendsPastDefiniteRange drives a speculator
// through the Driver end to end: highest_observed=2, largest_observed_gap=1
// means the engine probes ID 3 right away, and since it succeeds,
// extends to ID 4. ID 4 fails, which immediately exhausts the tolerance
// of 1, so ID 5 must never be requested.
func TestDriverSpeculationExtendsPastDefiniteRange(t *testing.T) {
	var mu sync.Mutex
	requested := map[int]bool{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id int
		fmt.Sscanf(r.URL.Path, "/item/%d", &id)

		mu.Lock()
		requested[id] = true
		mu.Unlock()

		if id <= 3 {
			w.Write([]byte("ok"))

			return
		}

		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	scraper := NewBaseScraper("speculation-extend")
	scraper.RegisterStep("collect", func(resp *Response) iter.Seq[Item] {
		return func(yield func(Item) bool) {}
	}, DefaultPriority, "utf-8")
	scraper.RegisterSpeculator("cases", 2, 1, "", func(id int) *Request {
		return NewRequest(NewRequestParams{URL: fmt.Sprintf("%s/item/%d", srv.URL, id), Continuation: "collect"})
	})

	d := NewDriver(scraper, NewDriverConfig("speculation-extend"))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, nil, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()

	for _, id := range []int{1, 2, 3, 4} {
		if !requested[id] {
			t.Fatalf("expected ID %d to have been requested, requested=%v", id, requested)
		}
	}
	if requested[5] {
		t.Fatalf("expected the engine to stop after ID 4's failure, but ID 5 was requested")
	}
}

// ------------------------------------------------------------------------

// TestDriverTransientRetrySucceeds fails the first request, then
// succeeds, and expects the retrying manager to mask the failure from
// OnTransientException entirely (base delay is tiny so the test stays fast).
func TestDriverTransientRetrySucceeds(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)

			return
		}
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	scraper := singlePageScraper(srv.URL)

	var collected []string
	cfg := NewDriverConfig("transient-retry",
		WithCallbacks(Callbacks{OnData: func(v any) { collected = append(collected, v.(string)) }}),
		WithRetryPolicy(RetryPolicy{BaseDelay: time.Millisecond, MaxBackoff: time.Second, Jitter: 0}),
	)

	d := NewDriver(scraper, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := d.Run(ctx, []EntryInvocation{{Entry: "start"}}, nil); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if len(collected) != 2 {
		t.Fatalf("expected the retried request to eventually succeed, got %v", collected)
	}
}

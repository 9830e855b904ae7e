package juriscraper

import "testing"

// ------------------------------------------------------------------------

func TestPriorityQueueOrdering(t *testing.T) {
	q := NewPriorityQueue()

	r1 := NewRequest(NewRequestParams{URL: "/a", Priority: 9})
	r2 := NewRequest(NewRequestParams{URL: "/b", Priority: 1})
	r3 := NewRequest(NewRequestParams{URL: "/c", Priority: 9})

	q.Push(r1)
	q.Push(r2)
	q.Push(r3)

	got, _ := q.Pop()
	if got != r2 {
		t.Fatalf("expected the priority-1 request first, got URL %q", got.RawURL)
	}

	got, _ = q.Pop()
	if got != r1 {
		t.Fatalf("expected the first-enqueued priority-9 request next, got URL %q", got.RawURL)
	}

	got, _ = q.Pop()
	if got != r3 {
		t.Fatalf("expected the second-enqueued priority-9 request last, got URL %q", got.RawURL)
	}

	if _, ok := q.Pop(); ok {
		t.Fatalf("expected the queue to be empty")
	}
}

// ------------------------------------------------------------------------

func TestPriorityQueueDrain(t *testing.T) {
	q := NewPriorityQueue()
	q.Push(NewRequest(NewRequestParams{URL: "/a"}))
	q.Push(NewRequest(NewRequestParams{URL: "/b"}))

	q.Drain()

	if n := q.Len(); n != 0 {
		t.Fatalf("expected length 0 after drain, got %d", n)
	}
}

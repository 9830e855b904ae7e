package juriscraper

import "testing"

// ------------------------------------------------------------------------

// TestSpeculationScenario drives a speculator with highest_observed=3,
// largest_observed_gap=2 where outcomes are success for 1,2,3,5 and
// failure for 4,6,7. The engine must enqueue exactly {1..7} and then stop.
func TestSpeculationScenario(t *testing.T) {
	outcomes := map[int]bool{1: true, 2: true, 3: true, 4: false, 5: true, 6: false, 7: false}

	makeReq := func(id int) *Request {
		return NewRequest(NewRequestParams{URL: "/case"})
	}

	metas := []SpeculatorMetadata{{Name: "cases", HighestObserved: 3, LargestObservedGap: 2}}
	fns := map[string]func(int) *Request{"cases": makeReq}

	engine := NewSpeculationEngine(metas, fns, nil)

	enqueued := map[int]bool{}
	seeded := engine.Seed(metas, nil)
	for range seeded {
		// definite range 1..3 plus the first extension probe (4)
	}
	for i := 1; i <= 3; i++ {
		enqueued[i] = true
	}
	enqueued[4] = true

	id := 4
	for {
		success, present := outcomes[id]
		if !present {
			break
		}

		next, ok := engine.Track("cases", id, success)
		if !ok {
			break
		}

		enqueued[id+1] = true
		_ = next
		id++
	}

	want := map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	if len(enqueued) != len(want) {
		t.Fatalf("expected %d enqueued IDs, got %d: %v", len(want), len(enqueued), enqueued)
	}
	for k := range want {
		if !enqueued[k] {
			t.Fatalf("expected ID %d to have been enqueued", k)
		}
	}
	if enqueued[8] {
		t.Fatalf("expected the engine to stop before enqueueing ID 8")
	}
}

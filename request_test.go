package juriscraper

import "testing"

// ------------------------------------------------------------------------

func TestDeduplicationKeyStable(t *testing.T) {
	r1 := NewRequest(NewRequestParams{URL: "http://example.com/x?b=2&a=1"})
	r2 := NewRequest(NewRequestParams{URL: "http://example.com/x?a=1&b=2"})

	if r1.DeduplicationKeyFor() != r2.DeduplicationKeyFor() {
		t.Fatalf("expected query-order-independent dedup keys to match")
	}
}

// ------------------------------------------------------------------------

func TestDeduplicationKeyExplicitAndSkip(t *testing.T) {
	r := NewRequest(NewRequestParams{URL: "http://example.com/x", DeduplicationKey: "custom"})
	if r.DeduplicationKeyFor() != "custom" {
		t.Fatalf("expected explicit dedup key to be used as-is")
	}

	r2 := NewRequest(NewRequestParams{URL: "http://example.com/x", DeduplicationKey: SkipDedup})
	if r2.DeduplicationKeyFor() != SkipDedup {
		t.Fatalf("expected skip-dedup sentinel to pass through unchanged")
	}
}

// ------------------------------------------------------------------------

func TestDeepCopyPreventsSiblingContamination(t *testing.T) {
	m := map[string]any{"docket": "A", "nested": map[string]any{"n": float64(1)}}

	r := NewRequest(NewRequestParams{URL: "http://example.com/x", AccumulatedData: m})

	m["docket"] = "MUTATED"
	nested := m["nested"].(map[string]any)
	nested["n"] = float64(999)

	if r.AccumulatedData["docket"] != "A" {
		t.Fatalf("expected request's copy to be unaffected by later mutation of the source map")
	}

	rn := r.AccumulatedData["nested"].(map[string]any)
	if rn["n"] != float64(1) {
		t.Fatalf("expected nested map to be deep-copied too")
	}
}

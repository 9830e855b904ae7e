package juriscraper

import "sync"

// ------------------------------------------------------------------------

// SpeculationOverride holds a run's optional per-speculator overrides.
type SpeculationOverride struct {
	DefiniteRange *[2]int // nil: use (1, highest_observed)
	Plus          *int    // nil: use largest_observed_gap
}

// ------------------------------------------------------------------------

type specRuntime struct {
	mu sync.Mutex

	fn   func(id int) *Request
	name string

	rangeEnd            int
	tolerance           int
	consecutiveFailures int
	nextExtendID        int
	stopped             bool
}

// ------------------------------------------------------------------------

// SpeculationEngine drives each registered speculator through its ID
// range, per speculator independently.
type SpeculationEngine struct {
	specs map[string]*specRuntime
}

// ------------------------------------------------------------------------

// NewSpeculationEngine builds a runtime for each of metas/fns, applying
// overrides where given.
func NewSpeculationEngine(metas []SpeculatorMetadata, fns map[string]func(id int) *Request, overrides map[string]SpeculationOverride) *SpeculationEngine {
	e := &SpeculationEngine{specs: map[string]*specRuntime{}}

	for _, meta := range metas {
		fn, present := fns[meta.Name]
		if !present {
			continue
		}

		rangeStart, rangeEnd := 1, meta.HighestObserved
		tolerance := meta.LargestObservedGap

		if ov, present := overrides[meta.Name]; present {
			if ov.DefiniteRange != nil {
				rangeStart, rangeEnd = ov.DefiniteRange[0], ov.DefiniteRange[1]
			}
			if ov.Plus != nil {
				tolerance = *ov.Plus
			}
		}

		if rangeStart < 1 {
			rangeStart = 1
		}

		e.specs[meta.Name] = &specRuntime{
			fn:           fn,
			name:         meta.Name,
			rangeEnd:     rangeEnd,
			tolerance:    tolerance,
			nextExtendID: rangeEnd + 1,
		}

		_ = rangeStart
	}

	return e
}

// ------------------------------------------------------------------------

// Seed returns the full definite-range batch for every speculator plus
// the first speculative probe past each range's end, each tagged
// IsSpeculative. Requests are returned, not enqueued directly, so the
// caller can still apply priority assignment and deduplication before
// pushing.
func (e *SpeculationEngine) Seed(metas []SpeculatorMetadata, overrides map[string]SpeculationOverride) []*Request {
	var out []*Request

	for _, meta := range metas {
		rt, present := e.specs[meta.Name]
		if !present {
			continue
		}

		rangeStart := 1
		if ov, present := overrides[meta.Name]; present && ov.DefiniteRange != nil {
			rangeStart = ov.DefiniteRange[0]
		}
		if rangeStart < 1 {
			rangeStart = 1
		}

		for id := rangeStart; id <= rt.rangeEnd; id++ {
			out = append(out, markSpeculative(rt.fn(id), rt.name, id))
		}

		out = append(out, markSpeculative(rt.fn(rt.nextExtendID), rt.name, rt.nextExtendID))
		rt.nextExtendID++
	}

	return out
}

// markSpeculative stamps req with the speculator identity that produced
// it, so trackSpeculation can report its outcome back to Track without
// the caller having to do anything extra.
func markSpeculative(req *Request, name string, id int) *Request {
	if req == nil {
		return nil
	}

	req.IsSpeculative = true
	req.SpeculatorName = name
	req.SpeculatorID = id

	return req
}

// ------------------------------------------------------------------------

// Track records a speculative request's outcome and returns the next
// request to probe, if extension continues. ok is false once the
// speculator has stopped, or id fell inside the definite range (whose
// outcome never affects the counter).
func (e *SpeculationEngine) Track(name string, id int, success bool) (next *Request, ok bool) {
	rt, present := e.specs[name]
	if !present {
		return nil, false
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.stopped || id <= rt.rangeEnd {
		return nil, false
	}

	if success {
		rt.consecutiveFailures = 0
	} else {
		rt.consecutiveFailures++
		if rt.consecutiveFailures >= rt.tolerance {
			rt.stopped = true

			return nil, false
		}
	}

	nextID := rt.nextExtendID
	rt.nextExtendID++

	return markSpeculative(rt.fn(nextID), rt.name, nextID), true
}

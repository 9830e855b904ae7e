package juriscraper

import "fmt"

// ------------------------------------------------------------------------

// classify is the three-way split used to route a yielded Request:
// navigating, non-navigating, or archive.
func (r *Request) classify() (navigating, nonNavigating, archive bool) {
	if r.Archive {
		return false, false, true
	}
	if r.NonNavigating {
		return false, true, false
	}

	return true, false, false
}

// ------------------------------------------------------------------------

// dispatchItem routes one yielded Item to the appropriate handler. resp
// is the response the producing continuation was invoked with.
func (d *Driver) dispatchItem(item Item, resp *Response) error {
	switch v := item.(type) {
	case DataItem:
		return d.dispatchData(v.Payload, resp)
	case RequestItem:
		return d.dispatchRequest(v.Req, resp)
	default:
		return nil // None / absent yield: ignored
	}
}

// ------------------------------------------------------------------------

func (d *Driver) dispatchData(payload any, resp *Response) error {
	dv, isDeferred := payload.(*DeferredValidation)
	if !isDeferred {
		d.invokeOnData(payload)

		return nil
	}

	validated, err := dv.Confirm(d.scraper.Schema())
	if err == nil {
		d.invokeOnData(validated)

		return nil
	}

	if d.config.Callbacks.OnInvalidData != nil {
		d.config.Callbacks.OnInvalidData(dv)

		return nil
	}

	return err
}

func (d *Driver) invokeOnData(datum any) {
	if d.config.Callbacks.OnData != nil {
		d.config.Callbacks.OnData(datum)
	}
}

// ------------------------------------------------------------------------

func (d *Driver) dispatchRequest(req *Request, resp *Response) error {
	navigating, nonNavigating, archive := req.classify()

	var resolved *Request
	var err error

	switch {
	case navigating, archive:
		resolved, err = req.ResolveFrom(resp, d.urlResolver)
	case nonNavigating:
		resolved, err = req.ResolveFrom(resp.Request, d.urlResolver)
	default:
		return fmt.Errorf("request is neither navigating, non-navigating, nor archive")
	}

	if err != nil {
		return err
	}

	resolved.Priority = d.resolvedPriority(resolved, resp.Request.Continuation)

	d.enqueue(resolved)

	return nil
}

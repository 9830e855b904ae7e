package juriscraper

// ------------------------------------------------------------------------

// Item is one value yielded by a continuation's lazy sequence. It is a
// closed set of two kinds — DataItem and RequestItem — discriminated
// by a type switch at dispatch time, the same closed-set style Request
// uses for navigating/non-navigating/archive.
type Item interface {
	isItem()
}

// ------------------------------------------------------------------------

// DataItem carries a ParsedData payload, either already-validated or
// wrapped in a DeferredValidation.
type DataItem struct {
	Payload any
}

func (DataItem) isItem() {}

// ParsedData wraps payload as a DataItem, ready to dispatch to OnData.
func ParsedData(payload any) Item {
	return DataItem{Payload: payload}
}

// ------------------------------------------------------------------------

// RequestItem carries a Request a continuation wants enqueued.
type RequestItem struct {
	Req *Request
}

func (RequestItem) isItem() {}

// YieldRequest wraps req as a RequestItem.
func YieldRequest(req *Request) Item {
	return RequestItem{Req: req}
}

// ------------------------------------------------------------------------

// DeferredValidation wraps a raw, not-yet-validated document plus the
// name of the schema it must satisfy. Confirm runs schema
// validation (schema.go, kin-openapi-backed) and returns either the
// validated datum or a *DataFormatAssumptionException.
type DeferredValidation struct {
	Document   map[string]any
	SchemaName string
	URL        string
}

// Confirm validates d.Document against the named schema in reg. On
// success it returns d.Document unchanged as the validated datum; on
// failure it returns a *DataFormatAssumptionException.
func (d *DeferredValidation) Confirm(reg *SchemaRegistry) (any, error) {
	if reg == nil {
		return d.Document, nil
	}

	return reg.Validate(d.SchemaName, d.Document, d.URL)
}

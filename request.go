package juriscraper

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/url"
	"sort"

	"github.com/google/uuid"
)

// ------------------------------------------------------------------------

// SkipDedup is the DeduplicationKey sentinel meaning "never deduplicate
// this request".
const SkipDedup = "\x00skip-dedup\x00"

// Default priorities.
const (
	DefaultPriority        = 9
	DefaultArchivePriority = 1
)

// ------------------------------------------------------------------------

// Body is the payload of a Request: either raw bytes, a form, or absent
// (a nil Body). Request presents a closed set of payload kinds rather
// than a type hierarchy, mirroring how it presents navigating /
// non-navigating / archive modes via booleans.
type Body struct {
	Raw  []byte
	Form url.Values
}

// IsEmpty reports whether the body carries no payload.
func (b *Body) IsEmpty() bool {
	return b == nil || (len(b.Raw) == 0 && len(b.Form) == 0)
}

// ------------------------------------------------------------------------

// Permanent holds per-ancestry-chain headers and cookies that propagate
// from a request to all its descendants unless overridden.
type Permanent struct {
	Headers map[string]string
	Cookies map[string]string
}

// merge returns a new Permanent with child's keys taking precedence
// over parent's.
func (p Permanent) merge(child Permanent) Permanent {
	out := Permanent{
		Headers: map[string]string{},
		Cookies: map[string]string{},
	}

	for k, v := range p.Headers {
		out.Headers[k] = v
	}
	for k, v := range child.Headers {
		out.Headers[k] = v
	}

	for k, v := range p.Cookies {
		out.Cookies[k] = v
	}
	for k, v := range child.Cookies {
		out.Cookies[k] = v
	}

	return out
}

func (p Permanent) clone() Permanent {
	return Permanent{
		Headers: cloneStringMap(p.Headers),
		Cookies: cloneStringMap(p.Cookies),
	}
}

// ------------------------------------------------------------------------

// Request is a record of one planned HTTP interaction. Before a
// request is enqueued, the driver assigns its Priority and the
// speculation engine stamps IsSpeculative, SpeculatorName and
// SpeculatorID on the request object it was given (not on a copy); no
// field is changed after enqueue. Descendants are produced via
// ResolveFrom, never by editing a Request in place.
type Request struct {
	ID     uuid.UUID
	Method string
	RawURL string // as-given, possibly relative; absolute once set by ResolveFrom
	Headers map[string]string
	Body    *Body

	Continuation string

	CurrentLocation *url.URL

	PreviousRequests []*Request

	AccumulatedData map[string]any
	AuxData         map[string]any
	Permanent       Permanent

	Priority      int
	NonNavigating bool
	Archive       bool
	ExpectedType  string
	IsSpeculative bool

	// SpeculatorName and SpeculatorID identify which speculator produced
	// this request and which ID it probed, so the driver can report the
	// outcome back to SpeculationEngine.Track without relying on AuxData.
	// Both are zero on a non-speculative request.
	SpeculatorName string
	SpeculatorID   int

	// DeduplicationKey is "" to mean "compute by hashing", SkipDedup to
	// mean "never deduplicate", or an explicit key otherwise.
	DeduplicationKey string
}

// ------------------------------------------------------------------------

// NewRequestParams groups NewRequest's inputs; it exists so call sites
// name their arguments instead of threading a long positional list.
type NewRequestParams struct {
	Method          string
	URL             string
	Headers         map[string]string
	Body            *Body
	Continuation    string
	AccumulatedData map[string]any
	AuxData         map[string]any
	Permanent       Permanent
	// Priority is 0 to mean "unset": the driver resolves it from the
	// yielding step's registered priority (or this request's kind
	// default) at enqueue time, never here.
	Priority int
	NonNavigating   bool
	Archive         bool
	ExpectedType    string
	DeduplicationKey string
}

// NewRequest constructs a Request with no ancestry (an entry-point
// request). AccumulatedData, AuxData, and Permanent are deep-copied so
// the caller's originals are never aliased.
func NewRequest(p NewRequestParams) *Request {
	method := p.Method
	if method == "" {
		method = "GET"
	}

	return &Request{
		ID:               uuid.New(),
		Method:           method,
		RawURL:           p.URL,
		Headers:          cloneStringMap(p.Headers),
		Body:             p.Body,
		Continuation:     p.Continuation,
		PreviousRequests: nil,
		AccumulatedData:  deepCopyMap(p.AccumulatedData),
		AuxData:          deepCopyMap(p.AuxData),
		Permanent:        p.Permanent.clone(),
		Priority:         p.Priority,
		NonNavigating:    p.NonNavigating,
		Archive:          p.Archive,
		ExpectedType:     p.ExpectedType,
		DeduplicationKey: p.DeduplicationKey,
	}
}

// ------------------------------------------------------------------------

// ResolveFrom produces a descendant of p resolved against ctx. ctx is
// either a *Response (the usual case: a continuation yielding a new
// Request) or a *Request (a prior request, used when resolving
// non-navigating children against their parent).
func (p *Request) ResolveFrom(ctx any, parser URLResolver) (*Request, error) {
	var base *url.URL
	var ancestry []*Request

	switch c := ctx.(type) {
	case *Response:
		base = c.FinalURL
		ancestry = append(append([]*Request{}, c.Request.PreviousRequests...), c.Request)
		if !p.NonNavigating && !p.Archive {
			// navigating: descendants resolve against the new response's URL
		} else {
			// non-navigating / archive: current_location carries forward
			base = c.Request.CurrentLocation
		}
	case *Request:
		base = c.CurrentLocation
		ancestry = append(append([]*Request{}, c.PreviousRequests...), c)
	default:
		base = p.CurrentLocation
	}

	resolved, err := parser.ParseRef(base.String(), p.RawURL)
	if err != nil {
		return nil, err
	}

	out := *p
	out.ID = uuid.New()
	out.PreviousRequests = ancestry
	out.CurrentLocation = resolved
	if resp, ok := ctx.(*Response); ok {
		out.Permanent = resp.Request.Permanent.merge(p.Permanent)
	} else if req, ok := ctx.(*Request); ok {
		out.Permanent = req.Permanent.merge(p.Permanent)
	}
	out.RawURL = resolved.String()

	return &out, nil
}

// URLResolver resolves a reference URL against a base, per RFC 3986
// urljoin semantics with percent-escape normalization.
type URLResolver interface {
	Parse(rawURL string) (*url.URL, error)
	ParseRef(rawURL string, ref string) (*url.URL, error)
}

// ------------------------------------------------------------------------

// DeduplicationKeyFor computes r's effective dedup key: the explicit
// key if set, SkipDedup if set, or the deterministic hash of URL +
// sorted query + canonical body (the method is not part of the hash).
func (r *Request) DeduplicationKeyFor() string {
	if r.DeduplicationKey != "" {
		return r.DeduplicationKey
	}

	u, err := url.Parse(r.RawURL)
	if err != nil {
		// Hash the raw string; an unparsable URL is still a stable key.
		return hashParts(r.RawURL, "", canonicalBody(r.Body))
	}

	q := u.Query()
	keys := make([]string, 0, len(q))
	for k := range q {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	sortedQuery := url.Values{}
	for _, k := range keys {
		vs := append([]string{}, q[k]...)
		sort.Strings(vs)
		sortedQuery[k] = vs
	}

	base := *u
	base.RawQuery = ""

	return hashParts(base.String(), sortedQuery.Encode(), canonicalBody(r.Body))
}

func hashParts(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}

	return hex.EncodeToString(h.Sum(nil))
}

func canonicalBody(b *Body) string {
	if b.IsEmpty() {
		return ""
	}
	if len(b.Form) > 0 {
		keys := make([]string, 0, len(b.Form))
		for k := range b.Form {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		v := url.Values{}
		for _, k := range keys {
			vs := append([]string{}, b.Form[k]...)
			sort.Strings(vs)
			v[k] = vs
		}

		return v.Encode()
	}

	return string(b.Raw)
}

// ------------------------------------------------------------------------

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}

	return out
}

// deepCopyMap deep-copies m so a request built from it never observes
// later mutation of the original, down through nested maps and slices.
// It goes through JSON so arbitrary user-supplied values (the common
// case: results of decoding a prior response) are safely copied
// without reflecting over every possible concrete type.
func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	b, err := json.Marshal(m)
	if err != nil {
		// Fall back to a shallow copy; non-JSON-able values (e.g. a
		// user's custom struct with unexported fields) are rare and
		// sibling contamination on them is an acceptable degradation.
		out := make(map[string]any, len(m))
		for k, v := range m {
			out[k] = v
		}

		return out
	}

	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return map[string]any{}
	}

	return out
}

package juriscraper

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ------------------------------------------------------------------------

// Manager executes one HTTP request, applying a timeout and converting
// transport outcomes into the framework's typed errors. A
// single Manager's *http.Client is shared across parallel-driver workers
// for connection pooling.
type Manager struct {
	client  *http.Client
	timeout time.Duration
}

// ------------------------------------------------------------------------

// NewManager returns a pointer to a newly created Manager. sslConfig may
// be nil to use the default transport TLS configuration.
func NewManager(timeout time.Duration, sslConfig *tls.Config) *Manager {
	transport := &http.Transport{}
	if sslConfig != nil {
		transport.TLSClientConfig = sslConfig
	}

	return &Manager{
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return nil // follow redirects; FinalURL reflects the last hop
			},
		},
		timeout: timeout,
	}
}

// ------------------------------------------------------------------------

// Execute performs req's HTTP interaction and returns the resulting
// Response, or a transient *TransientException, *HTMLResponseAssumption-
// Exception, or *RequestTimeoutException.
func (m *Manager) Execute(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := m.buildHTTPRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	httpResp, err := m.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeoutErr(err) {
			return nil, &RequestTimeoutException{URL: req.RawURL, TimeoutSeconds: m.timeout.Seconds()}
		}

		return nil, &TransientException{Message: err.Error(), URL: req.RawURL}
	}

	if httpResp.StatusCode >= 500 || httpResp.StatusCode == 429 {
		io.Copy(io.Discard, httpResp.Body)
		httpResp.Body.Close()

		return nil, &HTMLResponseAssumptionException{
			Status:        httpResp.StatusCode,
			ExpectedCodes: []int{200},
			URL:           req.RawURL,
		}
	}

	return NewResponse(httpResp, req)
}

// ------------------------------------------------------------------------

func (m *Manager) buildHTTPRequest(ctx context.Context, req *Request) (*http.Request, error) {
	var body io.Reader

	if req.Body != nil {
		if len(req.Body.Form) > 0 {
			body = bytes.NewReader([]byte(req.Body.Form.Encode()))
		} else if len(req.Body.Raw) > 0 {
			body = bytes.NewReader(req.Body.Raw)
		}
	}

	target := req.RawURL
	if req.CurrentLocation != nil {
		target = req.CurrentLocation.String()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	// Permanent-data propagation: a permanent header is applied only
	// where the request does not already set a header of the same name
	// (the request's own header wins); permanent cookies are all added.
	for k, v := range req.Permanent.Headers {
		if httpReq.Header.Get(k) == "" {
			httpReq.Header.Set(k, v)
		}
	}
	for k, v := range req.Permanent.Cookies {
		httpReq.AddCookie(&http.Cookie{Name: k, Value: v})
	}

	if req.Body != nil && len(req.Body.Form) > 0 && httpReq.Header.Get("Content-Type") == "" {
		httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	return httpReq, nil
}

// ------------------------------------------------------------------------

func isTimeoutErr(err error) bool {
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

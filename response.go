package juriscraper

import (
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// ------------------------------------------------------------------------

// Response bundles one HTTP interaction's outcome with a back-reference
// to the Request that produced it.
type Response struct {
	Status  int
	Header  http.Header
	Body    []byte
	Text    string
	FinalURL *url.URL
	Request *Request
}

// ------------------------------------------------------------------------

// NewResponse builds a Response from a raw *http.Response, decoding its
// body to text via charset detection: trust a declared Content-Type
// charset, otherwise sniff with chardet.
func NewResponse(resp *http.Response, req *Request) (*Response, error) {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()

	text, err := decodeText(raw, resp.Header.Get("Content-Type"))
	if err != nil {
		text = string(raw)
	}

	final := resp.Request.URL
	if final == nil {
		final = req.CurrentLocation
	}

	return &Response{
		Status:   resp.StatusCode,
		Header:   resp.Header,
		Body:     raw,
		Text:     text,
		FinalURL: final,
		Request:  req,
	}, nil
}

// ------------------------------------------------------------------------

// decodeText transcodes raw bytes to UTF-8 text. It first tries the
// charset declared on contentType via golang.org/x/net/html/charset;
// if none is declared, it falls back to chardet's statistical sniffer.
func decodeText(raw []byte, contentType string) (string, error) {
	if contentType != "" {
		r, err := charset.NewReader(strings.NewReader(string(raw)), contentType)
		if err == nil {
			decoded, err := io.ReadAll(r)
			if err == nil {
				return string(decoded), nil
			}
		}
	}

	det := chardet.NewTextDetector()
	result, err := det.DetectBest(raw)
	if err != nil || result == nil || strings.EqualFold(result.Charset, "utf-8") {
		return string(raw), nil
	}

	r, err := charset.NewReaderLabel(result.Charset, strings.NewReader(string(raw)))
	if err != nil {
		return string(raw), nil
	}

	decoded, err := io.ReadAll(r)
	if err != nil {
		return string(raw), nil
	}

	return string(decoded), nil
}

// ------------------------------------------------------------------------

// IsSuccess reports whether the response's status is in [200, 299], the
// success range the speculation engine tests.
func (r *Response) IsSuccess() bool {
	return r.Status >= 200 && r.Status <= 299
}

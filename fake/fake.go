// Package fake provides an in-memory HTTP transport for testing ogimage clients.
//
// Use fake.NewClient() in unit tests to avoid network calls. The transport
// records every request it receives, so tests can assert that validation
// failures never reach the network.
package fake

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	ogimage "github.com/chimerakang/ogimage-go"
)

// Test credentials used by NewClient.
const (
	Secret = "sk_test_0123456789abcdef"
	Issuer = "example.com"
)

// HandlerFunc produces the response for one request.
type HandlerFunc func(req *http.Request) (*http.Response, error)

// Transport implements ogimage.Doer with a programmable handler.
type Transport struct {
	mu      sync.Mutex
	handler HandlerFunc
	calls   []*http.Request
	aborted int
}

// compile-time check
var _ ogimage.Doer = (*Transport)(nil)

// Option configures the fake transport.
type Option func(*Transport)

// WithHandler sets a custom response handler.
func WithHandler(h HandlerFunc) Option {
	return func(t *Transport) { t.handler = h }
}

// WithResponse answers every request with status, headers and body.
func WithResponse(status int, header http.Header, body string) Option {
	return func(t *Transport) {
		t.handler = func(req *http.Request) (*http.Response, error) {
			return Response(req, status, header, body), nil
		}
	}
}

// WithRedirect answers every request with 302 Found and a Location header.
func WithRedirect(location string) Option {
	return WithResponse(http.StatusFound, http.Header{"Location": {location}}, "")
}

// WithJSON answers every request with status and a JSON body.
func WithJSON(status int, body string) Option {
	return WithResponse(status, http.Header{"Content-Type": {"application/json"}}, body)
}

// WithError fails every request with err, as a network failure would.
func WithError(err error) Option {
	return WithHandler(func(req *http.Request) (*http.Response, error) {
		return nil, &url.Error{Op: req.Method, URL: req.URL.String(), Err: err}
	})
}

// WithHang never answers; it blocks until the request context is done and
// counts the abort.
func WithHang() Option {
	return func(t *Transport) {
		t.handler = func(req *http.Request) (*http.Response, error) {
			<-req.Context().Done()
			t.mu.Lock()
			t.aborted++
			t.mu.Unlock()
			return nil, &url.Error{Op: req.Method, URL: req.URL.String(), Err: req.Context().Err()}
		}
	}
}

// NewTransport creates a fake transport. By default it answers 200 with an
// empty body.
func NewTransport(opts ...Option) *Transport {
	t := &Transport{}
	WithResponse(http.StatusOK, nil, "")(t)
	for _, o := range opts {
		o(t)
	}
	return t
}

// Do records req and returns the programmed response.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	t.mu.Lock()
	t.calls = append(t.calls, req)
	h := t.handler
	t.mu.Unlock()
	return h(req)
}

// Calls returns the number of requests received.
func (t *Transport) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.calls)
}

// Requests returns the received requests in order.
func (t *Transport) Requests() []*http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*http.Request, len(t.calls))
	copy(out, t.calls)
	return out
}

// LastRequest returns the most recent request, or nil.
func (t *Transport) LastRequest() *http.Request {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.calls) == 0 {
		return nil
	}
	return t.calls[len(t.calls)-1]
}

// Aborted returns how many hanging requests observed their context ending.
func (t *Transport) Aborted() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aborted
}

// Response builds an *http.Response for req the way net/http would.
func Response(req *http.Request, status int, header http.Header, body string) *http.Response {
	if header == nil {
		header = http.Header{}
	}
	return &http.Response{
		Status:        http.StatusText(status),
		StatusCode:    status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header.Clone(),
		Body:          io.NopCloser(strings.NewReader(body)),
		ContentLength: int64(len(body)),
		Request:       req,
	}
}

// NewConfig returns a config with test credentials wired to t.
func NewConfig(t *Transport, opts ...ogimage.ConfigOption) *ogimage.Config {
	base := []ogimage.ConfigOption{
		ogimage.WithSecret(Secret),
		ogimage.WithIssuer(Issuer),
		ogimage.WithOrigin("https://images.test"),
		ogimage.WithTransport(t),
	}
	return ogimage.NewConfig(append(base, opts...)...)
}

// NewClient creates an *ogimage.Client with test credentials wired to a
// fake transport built from opts.
func NewClient(opts ...Option) (*ogimage.Client, *Transport) {
	t := NewTransport(opts...)
	c, _ := ogimage.NewClient(NewConfig(t))
	return c, t
}

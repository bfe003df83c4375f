package kratosmw

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/chimerakang/ogimage-go/fake"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
)

// mockTransport implements transport.Transporter
type mockTransport struct {
	headers map[string]string
	op      string
	kind    transport.Kind
}

func (m *mockTransport) Kind() transport.Kind             { return m.kind }
func (m *mockTransport) Endpoint() string                 { return "mock://test" }
func (m *mockTransport) Operation() string                { return m.op }
func (m *mockTransport) RequestHeader() transport.Header  { return &mockHeader{headers: m.headers} }
func (m *mockTransport) ReplyHeader() transport.Header    { return &mockHeader{headers: make(map[string]string)} }

// mockHTTPTransport implements khttp.Transporter
type mockHTTPTransport struct {
	mockTransport
	req *http.Request
}

func (m *mockHTTPTransport) Request() *http.Request { return m.req }
func (m *mockHTTPTransport) PathTemplate() string   { return m.op }

type mockHeader struct {
	headers map[string]string
}

func (h *mockHeader) Get(key string) string      { return h.headers[key] }
func (h *mockHeader) Set(key, value string)      { h.headers[key] = value }
func (h *mockHeader) Add(key, value string)      { h.headers[key] = value }
func (h *mockHeader) Values(key string) []string { return []string{h.headers[key]} }
func (h *mockHeader) Keys() []string {
	keys := make([]string, 0, len(h.headers))
	for k := range h.headers {
		keys = append(keys, k)
	}
	return keys
}

func runPath(t *testing.T, ctx context.Context) string {
	t.Helper()
	client, _ := fake.NewClient()

	var captured string
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		captured = ogimage.PathFromContext(ctx)
		return "ok", nil
	}

	result, err := Path(client)(middleware.Handler(handler))(ctx, nil)
	if err != nil {
		t.Fatalf("middleware returned error: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected ok, got %v", result)
	}
	return captured
}

func TestPath_HTTPTransportUsesURLPath(t *testing.T) {
	tr := &mockHTTPTransport{
		mockTransport: mockTransport{op: "/blog/{slug}", kind: transport.KindHTTP},
		req:           httptest.NewRequest(http.MethodGet, "/blog/hello.html?x=1", nil),
	}
	ctx := transport.NewServerContext(context.Background(), tr)

	if got := runPath(t, ctx); got != "/blog/hello" {
		t.Errorf("path = %q, want /blog/hello", got)
	}
}

func TestPath_GRPCTransportUsesOperation(t *testing.T) {
	tr := &mockTransport{op: "/pages.v1.Pages/Get", kind: transport.KindGRPC}
	ctx := transport.NewServerContext(context.Background(), tr)

	// operation names keep their dots as the last segment has no extension
	if got := runPath(t, ctx); got != "/pages.v1.Pages/Get" {
		t.Errorf("path = %q, want /pages.v1.Pages/Get", got)
	}
}

func TestPath_NoTransport(t *testing.T) {
	if got := runPath(t, context.Background()); got != "" {
		t.Errorf("path = %q, want empty", got)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", &ogimage.ValidationError{Field: "title", Err: ogimage.ErrMissingTitle}, kerrors.IsBadRequest},
		{"config", &ogimage.ConfigError{Err: ogimage.ErrMissingSecret}, kerrors.IsInternalServer},
		{"timeout", &ogimage.RequestError{Timeout: true, Err: context.DeadlineExceeded}, kerrors.IsGatewayTimeout},
		{"upstream", &ogimage.RequestError{StatusCode: 500, Body: "boom"}, kerrors.IsServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromError(tt.err); !tt.check(got) {
				t.Errorf("FromError() = %v", got)
			}
		})
	}

	if got := kerrors.FromError(FromError(&ogimage.RequestError{StatusCode: 502})); got.Metadata["upstream_status"] != "502" {
		t.Errorf("metadata = %v, want upstream_status=502", got.Metadata)
	}

	plain := errors.New("plain")
	if FromError(plain) != plain {
		t.Error("unrelated errors should pass through")
	}
}

func TestErrors_Middleware(t *testing.T) {
	client, _ := fake.NewClient()
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return client.CreateImage(ctx, ogimage.Params{}, ogimage.CreateOptions{})
	}

	_, err := Errors()(middleware.Handler(handler))(context.Background(), nil)
	if !kerrors.IsBadRequest(err) {
		t.Fatalf("expected BadRequest, got %v", err)
	}
	if !errors.Is(err, ogimage.ErrMissingTitle) {
		t.Error("cause should be preserved")
	}
}

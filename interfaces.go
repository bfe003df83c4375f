package ogimage

import (
	"context"
	"net/http"
)

// Doer sends an HTTP request. *http.Client satisfies it.
// Implementations: DefaultTransport, fake.Transport (testing).
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// DoerFunc adapts a function to Doer.
type DoerFunc func(req *http.Request) (*http.Response, error)

// Do calls f(req).
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// DefaultTransport is used when a Config has no Transport. It never follows
// redirects so that the service's 3xx Location stays observable.
// Setting it to nil makes unconfigured clients fail with ErrNoTransport.
var DefaultTransport Doer = &http.Client{CheckRedirect: stopRedirects}

func stopRedirects(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }

// withoutRedirects returns d with redirect following disabled when d is an
// *http.Client that would otherwise follow them.
func withoutRedirects(d Doer) Doer {
	hc, ok := d.(*http.Client)
	if !ok || hc.CheckRedirect != nil {
		return d
	}
	cp := *hc
	cp.CheckRedirect = stopRedirects
	return &cp
}

// RequestObserver receives one event per CreateImage call.
// Implementations: metrics.Metrics, audit.Logger. Must not block.
type RequestObserver interface {
	ObserveImageRequest(ctx context.Context, ev RequestEvent)
}

// MultiObserver fans an event out to several observers.
type MultiObserver []RequestObserver

// ObserveImageRequest forwards ev to every non-nil observer.
func (m MultiObserver) ObserveImageRequest(ctx context.Context, ev RequestEvent) {
	for _, o := range m {
		if o != nil {
			o.ObserveImageRequest(ctx, ev)
		}
	}
}

// PathProvider resolves the path of the page currently being rendered.
// The client never calls it; callers copy the result into Params[ClaimPath].
type PathProvider interface {
	CurrentPath(ctx context.Context) (string, bool)
}

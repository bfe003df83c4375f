package metrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/chimerakang/ogimage-go/fake"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestMetrics(t *testing.T) *Metrics {
	t.Helper()
	return NewWithRegisterer(prometheus.NewRegistry())
}

func TestMetricsDisabled(t *testing.T) {
	m := New(false)
	if m == nil {
		t.Fatal("metrics should not be nil (noop)")
	}

	// Should not panic even though it's noop
	m.ObserveImageRequest(context.Background(), ogimage.RequestEvent{Outcome: ogimage.OutcomeSuccess})
}

func TestObserve_Success(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveImageRequest(context.Background(), ogimage.RequestEvent{
		Outcome:    ogimage.OutcomeSuccess,
		Template:   "blog",
		StatusCode: http.StatusFound,
		Duration:   15 * time.Millisecond,
	})

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(ogimage.OutcomeSuccess, "blog")); got != 1 {
		t.Errorf("requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.responsesTotal.WithLabelValues("302")); got != 1 {
		t.Errorf("responses_total{302} = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.requestDuration); got != 1 {
		t.Errorf("duration series = %d, want 1", got)
	}
}

func TestObserve_TimeoutAndConfigError(t *testing.T) {
	m := newTestMetrics(t)
	m.ObserveImageRequest(context.Background(), ogimage.RequestEvent{Outcome: ogimage.OutcomeTimeout})
	m.ObserveImageRequest(context.Background(), ogimage.RequestEvent{Outcome: ogimage.OutcomeConfigError})

	if got := testutil.ToFloat64(m.timeoutsTotal); got != 1 {
		t.Errorf("timeouts_total = %v, want 1", got)
	}
	// no status code, no response series
	if got := testutil.CollectAndCount(m.responsesTotal); got != 0 {
		t.Errorf("responses series = %d, want 0", got)
	}
}

func TestObserve_WiredToClient(t *testing.T) {
	m := newTestMetrics(t)
	tr := fake.NewTransport(fake.WithResponse(http.StatusInternalServerError, nil, "boom"))
	client, err := ogimage.NewClient(fake.NewConfig(tr), ogimage.WithObserver(m))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, _ = client.CreateImage(context.Background(), ogimage.Params{"title": "x"}, ogimage.CreateOptions{})

	if got := testutil.ToFloat64(m.requestsTotal.WithLabelValues(ogimage.OutcomeHTTPError, "")); got != 1 {
		t.Errorf("requests_total{http_error} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.responsesTotal.WithLabelValues("500")); got != 1 {
		t.Errorf("responses_total{500} = %v, want 1", got)
	}
}

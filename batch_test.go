package ogimage_test

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/chimerakang/ogimage-go/fake"
	"github.com/chimerakang/ogimage-go/token"
)

func TestCreateImages_PreservesOrder(t *testing.T) {
	tr := fake.NewTransport(fake.WithHandler(func(req *http.Request) (*http.Response, error) {
		claims, err := token.Verify(req.URL.Query().Get("token"), fake.Secret)
		if err != nil {
			return nil, err
		}
		loc := "https://example.com/" + claims.String("title") + ".png"
		return fake.Response(req, http.StatusFound, http.Header{"Location": {loc}}, ""), nil
	}))
	client, _ := ogimage.NewClient(fake.NewConfig(tr))

	batch := []ogimage.Params{{"title": "a"}, {"title": "b"}, {"title": "c"}, {"title": "d"}, {"title": "e"}}
	results, err := client.CreateImages(context.Background(), batch, ogimage.CreateOptions{}, 2)
	if err != nil {
		t.Fatalf("CreateImages() error: %v", err)
	}
	for i, want := range []string{"a", "b", "c", "d", "e"} {
		if results[i].Location != "https://example.com/"+want+".png" {
			t.Errorf("results[%d].Location = %q, want %s.png", i, results[i].Location, want)
		}
	}
	if tr.Calls() != len(batch) {
		t.Errorf("transport called %d times, want %d", tr.Calls(), len(batch))
	}
}

func TestCreateImages_RespectsLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	tr := fake.NewTransport(fake.WithHandler(func(req *http.Request) (*http.Response, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		inFlight.Add(-1)
		return fake.Response(req, http.StatusOK, nil, ""), nil
	}))
	client, _ := ogimage.NewClient(fake.NewConfig(tr))

	batch := make([]ogimage.Params, 8)
	for i := range batch {
		batch[i] = ogimage.Params{"title": "x"}
	}
	if _, err := client.CreateImages(context.Background(), batch, ogimage.CreateOptions{}, 3); err != nil {
		t.Fatalf("CreateImages() error: %v", err)
	}
	if peak.Load() > 3 {
		t.Errorf("peak concurrency = %d, want <= 3", peak.Load())
	}
}

func TestCreateImages_FirstErrorReturned(t *testing.T) {
	client, _ := fake.NewClient(fake.WithRedirect("https://example.com/img.png"))

	batch := []ogimage.Params{{"title": "ok"}, {}}
	_, err := client.CreateImages(context.Background(), batch, ogimage.CreateOptions{}, 1)
	if !errors.Is(err, ogimage.ErrMissingTitle) {
		t.Fatalf("err = %v, want ErrMissingTitle", err)
	}
}

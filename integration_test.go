//go:build integration

package ogimage_test

import (
	"context"
	"os"
	"testing"
	"time"

	ogimage "github.com/chimerakang/ogimage-go"
)

// These tests call the hosted image service.
// To run them, use: OGIMAGE_SECRET=... OGIMAGE_ISSUER=... go test -tags=integration ./...

func integrationClient(t *testing.T) *ogimage.Client {
	t.Helper()
	if os.Getenv(ogimage.EnvSecret) == "" || os.Getenv(ogimage.EnvIssuer) == "" {
		t.Skip("Skipping integration test (OGIMAGE_SECRET or OGIMAGE_ISSUER not set)")
	}
	opts := []ogimage.ConfigOption{}
	if origin := os.Getenv("OGIMAGE_ORIGIN"); origin != "" {
		opts = append(opts, ogimage.WithOrigin(origin))
	}
	client, err := ogimage.NewClient(ogimage.NewConfig(opts...))
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return client
}

func TestIntegration_CreateImage(t *testing.T) {
	client := integrationClient(t)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := client.CreateImage(ctx, ogimage.Params{
		ogimage.ClaimTitle: "Integration test",
		ogimage.ClaimPath:  "/integration",
	}, ogimage.CreateOptions{})
	if err != nil {
		t.Fatalf("CreateImage() error: %v", err)
	}
	if res.Location == "" {
		t.Error("expected an image location")
	}
	t.Logf("image: %s", res.Location)
}

func TestIntegration_CreateImageJSON(t *testing.T) {
	client := integrationClient(t)

	res, err := client.CreateImage(context.Background(), ogimage.Params{
		ogimage.ClaimTitle: "Integration test",
	}, ogimage.CreateOptions{JSON: true})
	if err != nil {
		t.Fatalf("CreateImage() error: %v", err)
	}
	if res.JSON == nil {
		t.Error("expected a decoded JSON body")
	}
}

func TestIntegration_BadSecret(t *testing.T) {
	client := integrationClient(t)
	cfg := *client.Config()
	cfg.Secret = "not-the-real-secret"
	bad, err := ogimage.NewClient(&cfg)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}

	_, err = bad.CreateImage(context.Background(), ogimage.Params{ogimage.ClaimTitle: "x"}, ogimage.CreateOptions{})
	if !ogimage.IsRequestError(err) {
		t.Fatalf("err = %v, want *RequestError", err)
	}
}

package ogimage_test

import (
	"context"
	"testing"
	"time"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/chimerakang/ogimage-go/fake"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv(ogimage.EnvSecret, "")
	t.Setenv(ogimage.EnvIssuer, "")

	c := ogimage.NewConfig()
	if c.Origin != ogimage.DefaultOrigin {
		t.Errorf("Origin = %q, want %q", c.Origin, ogimage.DefaultOrigin)
	}
	if c.OpenTimeout != 5*time.Second {
		t.Errorf("OpenTimeout = %v, want 5s", c.OpenTimeout)
	}
	if c.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", c.ReadTimeout)
	}
	if c.Timeout() != 15*time.Second {
		t.Errorf("Timeout() = %v, want 15s", c.Timeout())
	}
	if !c.StripExtensions {
		t.Error("StripExtensions should default to true")
	}
	if c.Transport != nil {
		t.Error("Transport should default to nil")
	}
	if c.Secret != "" || c.Issuer != "" {
		t.Errorf("Secret/Issuer = %q/%q, want empty without environment", c.Secret, c.Issuer)
	}
}

func TestNewConfig_Environment(t *testing.T) {
	t.Setenv(ogimage.EnvSecret, "sk_env_secret")
	t.Setenv(ogimage.EnvIssuer, "env.example.com")

	c := ogimage.NewConfig()
	if c.Secret != "sk_env_secret" {
		t.Errorf("Secret = %q, want sk_env_secret", c.Secret)
	}
	if c.Issuer != "env.example.com" {
		t.Errorf("Issuer = %q, want env.example.com", c.Issuer)
	}

	c = ogimage.NewConfig(ogimage.WithSecret("sk_explicit"), ogimage.WithIssuer("explicit.com"))
	if c.Secret != "sk_explicit" || c.Issuer != "explicit.com" {
		t.Errorf("explicit options should win over environment, got %q/%q", c.Secret, c.Issuer)
	}
}

func TestConfig_Timeout(t *testing.T) {
	tests := []struct {
		name       string
		open, read time.Duration
		want       time.Duration
	}{
		{"both", time.Second, 2 * time.Second, 3 * time.Second},
		{"open only", time.Second, 0, time.Second},
		{"read only", 0, 2 * time.Second, 2 * time.Second},
		{"neither", 0, 0, 0},
		{"negative disables", -time.Second, time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ogimage.NewConfig(ogimage.WithOpenTimeout(tt.open), ogimage.WithReadTimeout(tt.read))
			if got := c.Timeout(); got != tt.want {
				t.Errorf("Timeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigure_UpdatesLiveInstance(t *testing.T) {
	ogimage.ResetConfig()
	before := ogimage.DefaultConfig()

	got := ogimage.Configure(func(c *ogimage.Config) { c.Issuer = "configured.com" })
	if got != before {
		t.Error("Configure() should return the live instance")
	}
	if ogimage.DefaultConfig().Issuer != "configured.com" {
		t.Errorf("Issuer = %q, want configured.com", ogimage.DefaultConfig().Issuer)
	}
}

func TestResetConfig_DoesNotAffectExistingClients(t *testing.T) {
	tr := fake.NewTransport()
	ogimage.ResetConfig(ogimage.WithSecret(fake.Secret), ogimage.WithIssuer("before.com"), ogimage.WithTransport(tr))

	client, err := ogimage.NewClient(nil)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	bound := client.Config()

	ogimage.ResetConfig(ogimage.WithIssuer("after.com"))

	if client.Config() != bound {
		t.Error("client config reference changed after reset")
	}
	if client.Config().Issuer != "before.com" {
		t.Errorf("Issuer = %q, want before.com", client.Config().Issuer)
	}
	if ogimage.DefaultConfig() == bound {
		t.Error("DefaultConfig() should be a fresh instance after reset")
	}

	fresh, _ := ogimage.NewClient(nil)
	if fresh.Config().Issuer != "after.com" {
		t.Errorf("new client Issuer = %q, want after.com", fresh.Config().Issuer)
	}
	ogimage.ResetConfig()
}

func TestPackageCreateImage_UsesDefaultConfig(t *testing.T) {
	tr := fake.NewTransport(fake.WithRedirect("https://cdn.test/default.png"))
	ogimage.ResetConfig(ogimage.WithSecret(fake.Secret), ogimage.WithIssuer(fake.Issuer), ogimage.WithTransport(tr))
	defer ogimage.ResetConfig()

	res, err := ogimage.CreateImage(context.Background(), ogimage.Params{"title": "x"}, ogimage.CreateOptions{})
	if err != nil {
		t.Fatalf("CreateImage() error: %v", err)
	}
	if res.Location != "https://cdn.test/default.png" {
		t.Errorf("Location = %q", res.Location)
	}
	if tr.Calls() != 1 {
		t.Errorf("transport called %d times, want 1", tr.Calls())
	}
}

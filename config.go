package ogimage

import (
	"os"
	"sync"
	"time"
)

const (
	// DefaultOrigin is the image service used when no origin is configured.
	DefaultOrigin = "https://ogimage.dev"

	// DefaultOpenTimeout is the connection budget applied by NewConfig.
	DefaultOpenTimeout = 5 * time.Second

	// DefaultReadTimeout is the response budget applied by NewConfig.
	DefaultReadTimeout = 10 * time.Second

	// EnvSecret names the environment variable read when no secret is supplied.
	EnvSecret = "OGIMAGE_SECRET"

	// EnvIssuer names the environment variable read when no issuer is supplied.
	EnvIssuer = "OGIMAGE_ISSUER"
)

// Config holds credentials and transport behavior for image requests.
//
// Build one with NewConfig so that every field receives its default. A Config
// is not synchronized: callers that mutate a shared instance while requests
// are in flight get last-writer-visible semantics.
type Config struct {
	// Secret is the API key used to sign tokens. Its first 8 characters
	// become the default subject claim.
	Secret string

	// Issuer identifies the calling domain and becomes the default iss claim.
	Issuer string

	// Origin is the base URL of the image service, e.g. "https://ogimage.dev".
	Origin string

	// OpenTimeout is the connection budget. Zero or negative disables it.
	OpenTimeout time.Duration

	// ReadTimeout is the response budget. Zero or negative disables it.
	ReadTimeout time.Duration

	// Transport overrides the HTTP transport. If nil, DefaultTransport is used.
	Transport Doer

	// StripExtensions removes file extensions from request paths captured
	// by the path middleware ("/blog/post.html" becomes "/blog/post").
	StripExtensions bool
}

// ConfigOption configures a Config built by NewConfig.
type ConfigOption func(*Config)

// WithSecret sets the signing secret.
func WithSecret(secret string) ConfigOption {
	return func(c *Config) { c.Secret = secret }
}

// WithIssuer sets the issuer claim default.
func WithIssuer(issuer string) ConfigOption {
	return func(c *Config) { c.Issuer = issuer }
}

// WithOrigin sets the image service base URL.
func WithOrigin(origin string) ConfigOption {
	return func(c *Config) { c.Origin = origin }
}

// WithOpenTimeout sets the connection budget. Pass 0 for no timeout.
func WithOpenTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.OpenTimeout = d }
}

// WithReadTimeout sets the response budget. Pass 0 for no timeout.
func WithReadTimeout(d time.Duration) ConfigOption {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithTransport overrides the HTTP transport.
func WithTransport(d Doer) ConfigOption {
	return func(c *Config) { c.Transport = d }
}

// WithStripExtensions toggles extension stripping for captured paths.
func WithStripExtensions(strip bool) ConfigOption {
	return func(c *Config) { c.StripExtensions = strip }
}

// NewConfig creates a Config. Fields not set by an option fall back to the
// environment (secret, issuer) or to the package defaults.
func NewConfig(opts ...ConfigOption) *Config {
	c := &Config{
		Secret:          os.Getenv(EnvSecret),
		Issuer:          os.Getenv(EnvIssuer),
		Origin:          DefaultOrigin,
		OpenTimeout:     DefaultOpenTimeout,
		ReadTimeout:     DefaultReadTimeout,
		StripExtensions: true,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Timeout returns the combined request deadline (open + read).
// It is zero only when both components are disabled.
func (c *Config) Timeout() time.Duration {
	var d time.Duration
	if c.OpenTimeout > 0 {
		d += c.OpenTimeout
	}
	if c.ReadTimeout > 0 {
		d += c.ReadTimeout
	}
	return d
}

func (c *Config) origin() string {
	if c.Origin == "" {
		return DefaultOrigin
	}
	return c.Origin
}

var (
	defaultMu     sync.Mutex
	defaultConfig *Config
)

// DefaultConfig returns the process-wide configuration, creating it with
// NewConfig on first use.
func DefaultConfig() *Config {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConfig == nil {
		defaultConfig = NewConfig()
	}
	return defaultConfig
}

// Configure applies fn to the live process-wide configuration and returns it.
func Configure(fn func(*Config)) *Config {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultConfig == nil {
		defaultConfig = NewConfig()
	}
	fn(defaultConfig)
	return defaultConfig
}

// ResetConfig replaces the process-wide configuration with a fresh one.
// Clients created earlier keep the instance they were bound to.
func ResetConfig(opts ...ConfigOption) *Config {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	defaultConfig = NewConfig(opts...)
	return defaultConfig
}

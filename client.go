// Package ogimage is a server-side client for a hosted image-generation API.
//
// Each request is a stateless, signed token: the caller's parameters become
// JWT claims (with iss, sub and iat filled in from configuration), the claims
// are signed with HMAC-SHA256 using the caller's secret, and the token is sent
// as the only query parameter of GET <origin>/api/v1/images. The service
// answers with a redirect to the rendered image or, on request, a JSON body.
//
// Example usage:
//
//	client, err := ogimage.NewClient(ogimage.NewConfig(
//	    ogimage.WithSecret(os.Getenv("OGIMAGE_SECRET")),
//	    ogimage.WithIssuer("example.com"),
//	))
//	res, err := client.CreateImage(ctx, ogimage.Params{"title": "Hello"}, ogimage.CreateOptions{})
//	fmt.Println(res.Location)
package ogimage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/chimerakang/ogimage-go/token"
)

// ImagesPath is the service endpoint, relative to the configured origin.
const ImagesPath = "/api/v1/images"

// maxErrorRead bounds how much of an error response body is read.
const maxErrorRead = 64 << 10

// Client signs and submits image requests.
// A Client holds a direct reference to its Config; ResetConfig does not
// affect clients that already exist.
type Client struct {
	config   *Config
	logger   *slog.Logger
	signer   *token.Signer
	observer RequestObserver
}

// Option configures the Client.
type Option func(*Client)

// WithLogger sets a structured logger for the client.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithSigner sets the token signer. Default: HS256.
func WithSigner(s *token.Signer) Option {
	return func(c *Client) { c.signer = s }
}

// WithObserver sets an observer notified after every CreateImage call.
func WithObserver(o RequestObserver) Option {
	return func(c *Client) { c.observer = o }
}

// NewClient creates a client bound to cfg. A nil cfg binds the current
// process-wide configuration.
func NewClient(cfg *Config, opts ...Option) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Client{
		config: cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		signer: token.NewSigner(),
	}
	for _, o := range opts {
		o(c)
	}
	if err := c.signer.Available(); err != nil {
		return nil, fmt.Errorf("ogimage: %w", err)
	}
	return c, nil
}

// Config returns the configuration the client is bound to.
func (c *Client) Config() *Config { return c.config }

// BuildClaims returns the claim set CreateImage would sign for params.
func (c *Client) BuildClaims(params Params, opts CreateOptions) (*token.Claims, error) {
	return buildClaims(c.config, params, opts)
}

// SignedURL returns the request URL for params without calling the service.
func (c *Client) SignedURL(params Params, opts CreateOptions) (string, error) {
	claims, err := buildClaims(c.config, params, opts)
	if err != nil {
		return "", err
	}
	return c.signedURL(claims)
}

// SignedToken returns the signed token CreateImage would send for params.
func (c *Client) SignedToken(params Params, opts CreateOptions) (string, error) {
	claims, err := buildClaims(c.config, params, opts)
	if err != nil {
		return "", err
	}
	return c.sign(claims)
}

func (c *Client) sign(claims *token.Claims) (string, error) {
	signed, err := c.signer.Sign(claims, c.config.Secret)
	if err != nil {
		return "", fmt.Errorf("ogimage: %w", err)
	}
	return signed, nil
}

func (c *Client) signedURL(claims *token.Claims) (string, error) {
	signed, err := c.sign(claims)
	if err != nil {
		return "", err
	}
	return requestURL(c.config.origin(), signed)
}

func requestURL(origin, signed string) (string, error) {
	base, err := url.Parse(origin)
	if err != nil {
		return "", &ConfigError{Err: fmt.Errorf("invalid origin %q: %w", origin, err)}
	}
	u := base.ResolveReference(&url.URL{Path: ImagesPath})
	u.RawQuery = url.Values{"token": {signed}}.Encode()
	return u.String(), nil
}

// CreateImage signs params and requests an image. It returns the image
// location, or the decoded body when opts.JSON is set.
//
// Errors are *ConfigError and *ValidationError (before any network I/O) or
// *RequestError (status >= 400, transport failure, timeout). A malformed JSON
// body on a successful response is returned as the raw decode error.
func (c *Client) CreateImage(ctx context.Context, params Params, opts CreateOptions) (*Result, error) {
	start := time.Now()
	ev := RequestEvent{JSON: opts.JSON}
	if p, ok := params[ClaimPath].(string); ok {
		ev.Path = p
	}
	if t, ok := params[ClaimTemplate].(string); ok {
		ev.Template = t
	}

	res, err := c.createImage(ctx, params, opts, &ev)

	ev.Duration = time.Since(start)
	ev.Err = err
	ev.Outcome = outcomeOf(err)
	if res != nil {
		ev.StatusCode = res.StatusCode
	}
	if c.observer != nil {
		c.observer.ObserveImageRequest(ctx, ev)
	}
	return res, err
}

func (c *Client) createImage(ctx context.Context, params Params, opts CreateOptions, ev *RequestEvent) (*Result, error) {
	claims, err := buildClaims(c.config, params, opts)
	if err != nil {
		return nil, err
	}
	ev.Issuer = claims.String(ClaimIssuer)
	ev.Subject = claims.String(ClaimSubject)

	transport := c.config.Transport
	if transport == nil {
		transport = DefaultTransport
	}
	if transport == nil {
		return nil, &ConfigError{Err: ErrNoTransport}
	}
	transport = withoutRedirects(transport)

	reqURL, err := c.signedURL(claims)
	if err != nil {
		return nil, err
	}

	log := c.logger.With("iss", ev.Issuer, "sub", ev.Subject, "path", ev.Path)
	log.Debug("requesting image", "claims", claims.Len(), "json", opts.JSON)

	parent := ctx
	if d := c.config.Timeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &RequestError{URL: redact(reqURL), Err: err}
	}
	if opts.JSON {
		req.Header.Set("Accept", "application/json")
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := transport.Do(req)
	if err != nil {
		rerr := &RequestError{URL: redact(reqURL), Err: err, Timeout: timedOut(parent, ctx)}
		log.Warn("image request failed", "error", err, "timeout", rerr.Timeout)
		return nil, rerr
	}
	defer func() { _ = resp.Body.Close() }()
	ev.StatusCode = resp.StatusCode

	if resp.StatusCode >= http.StatusBadRequest {
		// A body that fails to read is reported as empty.
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorRead))
		if err != nil {
			body = nil
		}
		log.Warn("image service returned error", "status", resp.StatusCode)
		return nil, &RequestError{
			StatusCode: resp.StatusCode,
			Body:       string(body),
			URL:        redact(reqURL),
		}
	}

	if opts.JSON {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &RequestError{
				StatusCode: resp.StatusCode,
				URL:        redact(reqURL),
				Err:        err,
				Timeout:    timedOut(parent, ctx),
			}
		}
		var v any
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return &Result{JSON: v, StatusCode: resp.StatusCode}, nil
	}

	loc := resp.Header.Get("Location")
	if loc == "" && resp.Request != nil && resp.Request.URL != nil {
		loc = resp.Request.URL.String()
	}
	if loc == "" {
		loc = reqURL
	}
	log.Debug("image ready", "status", resp.StatusCode)
	return &Result{Location: loc, StatusCode: resp.StatusCode}, nil
}

// CreateTemplateImage renders params with the named template.
func (c *Client) CreateTemplateImage(ctx context.Context, template string, params Params, opts CreateOptions) (*Result, error) {
	p := params.Clone()
	p[ClaimTemplate] = template
	return c.CreateImage(ctx, p, opts)
}

// CreateImage requests an image with a client bound to the current
// process-wide configuration.
func CreateImage(ctx context.Context, params Params, opts CreateOptions) (*Result, error) {
	c, err := NewClient(nil)
	if err != nil {
		return nil, err
	}
	return c.CreateImage(ctx, params, opts)
}

// timedOut reports whether ctx hit the client's own deadline. A parent that
// was already cancelled or expired is the caller's doing, not a timeout.
func timedOut(parent, ctx context.Context) bool {
	return parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func outcomeOf(err error) string {
	if err == nil {
		return OutcomeSuccess
	}
	var (
		ce *ConfigError
		ve *ValidationError
		re *RequestError
	)
	switch {
	case errors.As(err, &ce), errors.Is(err, token.ErrNoSigningMethod):
		return OutcomeConfigError
	case errors.As(err, &ve):
		return OutcomeValidationError
	case errors.As(err, &re):
		switch {
		case re.Timeout:
			return OutcomeTimeout
		case re.StatusCode >= http.StatusBadRequest:
			return OutcomeHTTPError
		default:
			return OutcomeTransportError
		}
	default:
		return OutcomeDecodeError
	}
}

// redact drops the token from a request URL so it can be logged or kept in
// errors without leaking claims.
func redact(raw string) string {
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		return raw[:i] + "?token=REDACTED"
	}
	return raw
}

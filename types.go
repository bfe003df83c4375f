package ogimage

import "time"

// Claim keys with meaning to the client or the image service.
const (
	ClaimTitle    = "title"
	ClaimTemplate = "template"
	ClaimPath     = "path"
	ClaimIssuer   = "iss"
	ClaimSubject  = "sub"
	ClaimIssuedAt = "iat"
)

// Params are the caller-supplied claims of an image request, e.g. title,
// template, colors, image URLs, and path.
type Params map[string]any

// Clone returns a shallow copy of p.
func (p Params) Clone() Params {
	out := make(Params, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// CreateOptions tune a single CreateImage call.
type CreateOptions struct {
	// JSON requests a JSON response body instead of the image location.
	JSON bool

	// IssuedAt sets the iat claim. Accepts time.Time, integer and float
	// kinds (seconds, or milliseconds above 1e11), json.Number, and
	// RFC 3339 strings.
	IssuedAt any

	// Headers are applied after Accept and may overwrite it.
	Headers map[string]string
}

// Result is the outcome of a successful CreateImage call.
type Result struct {
	// Location is the image URL. Empty when JSON was requested.
	Location string

	// JSON is the decoded response body when JSON was requested.
	JSON any

	StatusCode int
}

// Request outcomes reported in RequestEvent.Outcome.
const (
	OutcomeSuccess         = "success"
	OutcomeHTTPError       = "http_error"
	OutcomeTimeout         = "timeout"
	OutcomeTransportError  = "transport_error"
	OutcomeConfigError     = "config_error"
	OutcomeValidationError = "validation_error"
	OutcomeDecodeError     = "decode_error"
)

// RequestEvent describes one CreateImage call for observers.
type RequestEvent struct {
	Issuer     string
	Subject    string
	Path       string
	Template   string
	JSON       bool
	StatusCode int
	Outcome    string
	Duration   time.Duration
	Err        error
}

// Package token signs and verifies the compact credentials sent to the
// image service.
//
// A token is three base64url segments without padding: a fixed header
// naming the scheme, the JSON claims, and an HMAC-SHA256 signature over
// "<header>.<claims>" keyed with the caller's secret. The keyed-hash
// primitive is injected as a jwt.SigningMethod so that its absence is a
// construction-time error rather than a runtime probe.
package token

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoSigningMethod is returned when no keyed-hash primitive is available.
var ErrNoSigningMethod = errors.New("token: no signing method available")

// Signer produces signed tokens with an injected signing method.
type Signer struct {
	method jwt.SigningMethod
}

// Option configures the Signer.
type Option func(*Signer)

// WithSigningMethod sets the keyed-hash method. Default: HS256.
func WithSigningMethod(m jwt.SigningMethod) Option {
	return func(s *Signer) { s.method = m }
}

// NewSigner creates a Signer.
func NewSigner(opts ...Option) *Signer {
	s := &Signer{method: jwt.SigningMethodHS256}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Method returns the configured signing method, or nil.
func (s *Signer) Method() jwt.SigningMethod {
	if s == nil {
		return nil
	}
	return s.method
}

// Available reports whether the signer can produce signatures.
func (s *Signer) Available() error {
	m := s.Method()
	if m == nil {
		return ErrNoSigningMethod
	}
	if hm, ok := m.(*jwt.SigningMethodHMAC); ok && !hm.Hash.Available() {
		return fmt.Errorf("%w: %s hash not linked", ErrNoSigningMethod, hm.Name)
	}
	return nil
}

// Sign encodes claims into a signed token keyed with secret.
// Identical claims (including key order) and secret yield identical tokens.
func (s *Signer) Sign(claims jwt.Claims, secret string) (string, error) {
	if err := s.Available(); err != nil {
		return "", err
	}
	t := jwt.NewWithClaims(s.method, claims)
	signed, err := t.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

var defaultSigner = NewSigner()

// Sign signs claims with HS256.
func Sign(claims jwt.Claims, secret string) (string, error) {
	return defaultSigner.Sign(claims, secret)
}

// Verify checks an HS256 token against secret and returns its claims in
// document order.
func Verify(tokenString, secret string) (*Claims, error) {
	claims := NewClaims()
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	t, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token: verify: %w", err)
	}
	if !t.Valid {
		return nil, fmt.Errorf("token: verify: invalid token")
	}
	return claims, nil
}

package token

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is an insertion-ordered claims mapping. Its JSON form lists keys
// in the order they were first set, so identical construction sequences
// yield identical tokens.
type Claims struct {
	keys   []string
	values map[string]any
}

// compile-time check
var _ jwt.Claims = (*Claims)(nil)

// NewClaims returns an empty claims mapping.
func NewClaims() *Claims {
	return &Claims{values: make(map[string]any)}
}

// Set stores value under key. Re-setting a key keeps its original position.
func (c *Claims) Set(key string, value any) {
	if c.values == nil {
		c.values = make(map[string]any)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Get returns the value stored under key.
func (c *Claims) Get(key string) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// String returns the value under key if it is a string, else "".
func (c *Claims) String(key string) string {
	s, _ := c.values[key].(string)
	return s
}

// Has reports whether key is set.
func (c *Claims) Has(key string) bool {
	_, ok := c.values[key]
	return ok
}

// Delete removes key.
func (c *Claims) Delete(key string) {
	if _, ok := c.values[key]; !ok {
		return
	}
	delete(c.values, key)
	for i, k := range c.keys {
		if k == key {
			c.keys = append(c.keys[:i], c.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the keys in insertion order.
func (c *Claims) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Len returns the number of claims.
func (c *Claims) Len() int { return len(c.keys) }

// Map returns an unordered copy of the claims.
func (c *Claims) Map() map[string]any {
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the claims as a JSON object in insertion order.
func (c *Claims) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range c.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(c.values[k])
		if err != nil {
			return nil, fmt.Errorf("claim %q: %w", k, err)
		}
		buf.Write(kb)
		buf.WriteByte(':')
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the document's key order.
// Integral numbers decode as int64, others as float64.
func (c *Claims) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("token: claims must be a JSON object")
	}

	*c = Claims{values: make(map[string]any)}
	for dec.More() {
		kt, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := kt.(string)
		if !ok {
			return fmt.Errorf("token: unexpected claim key %v", kt)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("token: claim %q: %w", key, err)
		}
		c.Set(key, fromJSONNumber(v))
	}
	_, err = dec.Token()
	return err
}

func fromJSONNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	f, _ := n.Float64()
	return f
}

// GetIssuer implements jwt.Claims.
func (c *Claims) GetIssuer() (string, error) { return c.String("iss"), nil }

// GetSubject implements jwt.Claims.
func (c *Claims) GetSubject() (string, error) { return c.String("sub"), nil }

// GetIssuedAt implements jwt.Claims.
func (c *Claims) GetIssuedAt() (*jwt.NumericDate, error) { return c.numericDate("iat") }

// GetExpirationTime implements jwt.Claims.
func (c *Claims) GetExpirationTime() (*jwt.NumericDate, error) { return c.numericDate("exp") }

// GetNotBefore implements jwt.Claims.
func (c *Claims) GetNotBefore() (*jwt.NumericDate, error) { return c.numericDate("nbf") }

// GetAudience implements jwt.Claims.
func (c *Claims) GetAudience() (jwt.ClaimStrings, error) {
	switch v := c.values["aud"].(type) {
	case nil:
		return nil, nil
	case string:
		return jwt.ClaimStrings{v}, nil
	case []string:
		return jwt.ClaimStrings(v), nil
	case []any:
		out := make(jwt.ClaimStrings, 0, len(v))
		for _, a := range v {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("%w: aud", jwt.ErrInvalidType)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: aud", jwt.ErrInvalidType)
	}
}

func (c *Claims) numericDate(key string) (*jwt.NumericDate, error) {
	switch v := c.values[key].(type) {
	case nil:
		return nil, nil
	case int64:
		return jwt.NewNumericDate(time.Unix(v, 0)), nil
	case int:
		return jwt.NewNumericDate(time.Unix(int64(v), 0)), nil
	case float64:
		sec, frac := math.Modf(v)
		return jwt.NewNumericDate(time.Unix(int64(sec), int64(frac*1e9))), nil
	default:
		return nil, fmt.Errorf("%w: %s", jwt.ErrInvalidType, key)
	}
}

package ogimage

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/chimerakang/ogimage-go/token"
	"github.com/samber/lo"
)

// millisThreshold separates second and millisecond epoch values.
const millisThreshold = 100_000_000_000

// subjectLen is the number of secret characters used as the default subject.
const subjectLen = 8

// NormalizeIssuedAt converts v to whole Unix seconds. Dates convert via
// their millisecond epoch; numbers above 1e11 are treated as milliseconds.
func NormalizeIssuedAt(v any) (int64, error) {
	switch t := v.(type) {
	case time.Time:
		return floorDiv(t.UnixMilli(), 1000), nil
	case *time.Time:
		if t == nil {
			return 0, fmt.Errorf("%w: nil time", ErrInvalidIssuedAt)
		}
		return floorDiv(t.UnixMilli(), 1000), nil
	case int:
		return fromInt(int64(t)), nil
	case int8:
		return fromInt(int64(t)), nil
	case int16:
		return fromInt(int64(t)), nil
	case int32:
		return fromInt(int64(t)), nil
	case int64:
		return fromInt(t), nil
	case uint:
		return fromUint(uint64(t)), nil
	case uint8:
		return fromInt(int64(t)), nil
	case uint16:
		return fromInt(int64(t)), nil
	case uint32:
		return fromInt(int64(t)), nil
	case uint64:
		return fromUint(t), nil
	case float32:
		return fromFloat(float64(t))
	case float64:
		return fromFloat(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return fromInt(i), nil
		}
		f, err := t.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidIssuedAt, err)
		}
		return fromFloat(f)
	case string:
		ts, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrInvalidIssuedAt, err)
		}
		return floorDiv(ts.UnixMilli(), 1000), nil
	default:
		return 0, fmt.Errorf("%w: unsupported type %T", ErrInvalidIssuedAt, v)
	}
}

func fromInt(v int64) int64 {
	if v > millisThreshold {
		return floorDiv(v, 1000)
	}
	return v
}

// fromUint scales with integer division, so values above MaxInt64 keep
// their precision and always fit once read as milliseconds.
func fromUint(v uint64) int64 {
	if v > millisThreshold {
		v /= 1000
	}
	return int64(v)
}

func fromFloat(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidIssuedAt, v)
	}
	if v > millisThreshold {
		v /= 1000
	}
	v = math.Floor(v)
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit.
	if v >= math.MaxInt64 || v < math.MinInt64 {
		return 0, fmt.Errorf("%w: %v out of range", ErrInvalidIssuedAt, v)
	}
	return int64(v), nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// buildClaims derives the signed claim set from params and cfg.
//
// Params are copied in sorted key order, followed by iat, iss and sub when
// they were not supplied, so that token bytes are reproducible.
func buildClaims(cfg *Config, params Params, opts CreateOptions) (*token.Claims, error) {
	// sub defaulting reads the secret, and signing needs it anyway.
	if cfg.Secret == "" {
		return nil, &ConfigError{Err: ErrMissingSecret}
	}

	claims := token.NewClaims()
	keys := lo.Keys(params)
	slices.Sort(keys)
	for _, k := range keys {
		claims.Set(k, params[k])
	}

	switch {
	case opts.IssuedAt != nil:
		iat, err := NormalizeIssuedAt(opts.IssuedAt)
		if err != nil {
			return nil, &ValidationError{Field: ClaimIssuedAt, Err: err}
		}
		claims.Set(ClaimIssuedAt, iat)
	case claims.Has(ClaimIssuedAt):
		raw, _ := claims.Get(ClaimIssuedAt)
		iat, err := NormalizeIssuedAt(raw)
		if err != nil {
			return nil, &ValidationError{Field: ClaimIssuedAt, Err: err}
		}
		claims.Set(ClaimIssuedAt, iat)
	}

	// Supplied iss and sub are kept whatever their type; only absent or
	// empty values take the configured defaults.
	if !hasClaim(claims, ClaimIssuer) {
		if cfg.Issuer == "" {
			return nil, &ConfigError{Err: ErrMissingIssuer}
		}
		claims.Set(ClaimIssuer, cfg.Issuer)
	}
	if !hasClaim(claims, ClaimSubject) {
		claims.Set(ClaimSubject, lo.Substring(cfg.Secret, 0, subjectLen))
	}

	if !hasClaim(claims, ClaimIssuer) {
		return nil, &ConfigError{Err: ErrMissingIssuer}
	}
	if !hasClaim(claims, ClaimSubject) {
		return nil, &ConfigError{Err: ErrMissingSubject}
	}
	if !hasClaim(claims, ClaimTitle) {
		return nil, &ValidationError{Field: ClaimTitle, Err: ErrMissingTitle}
	}
	return claims, nil
}

func hasClaim(claims *token.Claims, key string) bool {
	v, ok := claims.Get(key)
	return ok && !isEmptyClaim(v)
}

func isEmptyClaim(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

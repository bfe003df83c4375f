// Package kratosmw provides Kratos framework middleware for ogimage integration.
//
// Works with both Kratos HTTP and gRPC transports: HTTP requests contribute
// their URL path, other transports their operation name.
package kratosmw

import (
	"context"
	"errors"
	"strconv"

	ogimage "github.com/chimerakang/ogimage-go"
	kerrors "github.com/go-kratos/kratos/v2/errors"
	"github.com/go-kratos/kratos/v2/middleware"
	"github.com/go-kratos/kratos/v2/transport"
	khttp "github.com/go-kratos/kratos/v2/transport/http"
)

// Path returns Kratos middleware that stores the normalized page path in the
// context (retrievable via ogimage.PathFromContext).
func Path(client *ogimage.Client) middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			tr, ok := transport.FromServerContext(ctx)
			if !ok {
				return handler(ctx, req)
			}

			raw := tr.Operation()
			if ht, ok := tr.(khttp.Transporter); ok && ht.Request() != nil {
				raw = ht.Request().URL.Path
			}
			if raw == "" {
				return handler(ctx, req)
			}

			p := ogimage.NormalizePath(raw, client.Config().StripExtensions)
			return handler(ogimage.WithPath(ctx, p), req)
		}
	}
}

// Errors returns Kratos middleware that converts ogimage errors returned by
// the handler into Kratos errors with matching HTTP and gRPC codes.
func Errors() middleware.Middleware {
	return func(handler middleware.Handler) middleware.Handler {
		return func(ctx context.Context, req interface{}) (interface{}, error) {
			reply, err := handler(ctx, req)
			if err != nil {
				return reply, FromError(err)
			}
			return reply, nil
		}
	}
}

// FromError maps an ogimage error to a Kratos error. Other errors are
// returned unchanged.
func FromError(err error) error {
	var (
		ve *ogimage.ValidationError
		ce *ogimage.ConfigError
		re *ogimage.RequestError
	)
	switch {
	case errors.As(err, &ve):
		return kerrors.BadRequest("INVALID_IMAGE_PARAMS", ve.Error()).WithCause(err)
	case errors.As(err, &ce):
		return kerrors.InternalServer("IMAGE_CLIENT_MISCONFIGURED", "image client misconfigured").WithCause(err)
	case errors.Is(err, ogimage.ErrTimeout):
		return kerrors.GatewayTimeout("IMAGE_TIMEOUT", "image service timed out").WithCause(err)
	case errors.As(err, &re):
		return kerrors.ServiceUnavailable("IMAGE_SERVICE_ERROR", "image service unavailable").
			WithCause(err).
			WithMetadata(map[string]string{"upstream_status": statusText(re.StatusCode)})
	default:
		return err
	}
}

func statusText(code int) string {
	if code == 0 {
		return "none"
	}
	return strconv.Itoa(code)
}

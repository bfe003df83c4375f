// Package grpcmw provides pure gRPC interceptors for ogimage integration.
//
// Use this package for gRPC services that do NOT use Kratos.
// For Kratos-based services, use kratosmw instead; Kratos middleware
// handles both HTTP and gRPC transports transparently.
package grpcmw

import (
	"context"
	"errors"

	ogimage "github.com/chimerakang/ogimage-go"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// PathMetadataKey is the incoming metadata key carrying the page path.
const PathMetadataKey = "x-ogimage-path"

// UnaryPath returns a gRPC unary server interceptor that stores the page
// path in the context (retrievable via ogimage.PathFromContext). The path
// comes from PathMetadataKey, falling back to the full method name.
func UnaryPath(client *ogimage.Client) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		return handler(withPath(ctx, client, info.FullMethod), req)
	}
}

// StreamPath returns a gRPC stream server interceptor that stores the page
// path in the stream context.
func StreamPath(client *ogimage.Client) grpc.StreamServerInterceptor {
	return func(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		ctx := withPath(ss.Context(), client, info.FullMethod)
		wrapped := &wrappedStream{ServerStream: ss, ctx: ctx}
		return handler(srv, wrapped)
	}
}

// UnaryErrors returns a gRPC unary server interceptor that converts ogimage
// errors into gRPC status errors.
func UnaryErrors() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return resp, StatusError(err)
		}
		return resp, nil
	}
}

// StatusError maps an ogimage error to a gRPC status error. Other errors are
// returned unchanged.
func StatusError(err error) error {
	var re *ogimage.RequestError
	switch {
	case ogimage.IsValidationError(err):
		return status.Error(codes.InvalidArgument, err.Error())
	case ogimage.IsConfigError(err):
		return status.Error(codes.Internal, "image client misconfigured")
	case errors.Is(err, ogimage.ErrTimeout):
		return status.Error(codes.DeadlineExceeded, "image service timed out")
	case errors.As(err, &re):
		return status.Error(codes.Unavailable, "image service unavailable")
	default:
		return err
	}
}

// --- internal helpers ---

func withPath(ctx context.Context, client *ogimage.Client, fullMethod string) context.Context {
	raw := fullMethod
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get(PathMetadataKey); len(vals) > 0 && vals[0] != "" {
			raw = vals[0]
		}
	}
	if raw == "" {
		return ctx
	}
	return ogimage.WithPath(ctx, ogimage.NormalizePath(raw, client.Config().StripExtensions))
}

// wrappedStream wraps grpc.ServerStream to override Context().
type wrappedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *wrappedStream) Context() context.Context {
	return w.ctx
}

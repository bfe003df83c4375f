// Package middleware provides net/http middleware for ogimage integration.
//
// Framework-specific variants live in the ginmw, kratosmw and grpcmw
// sub-packages.
package middleware

import (
	"net/http"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/chimerakang/ogimage-go/audit"
	"github.com/rs/xid"
)

// RequestIDHeader carries the request ID in and out of the service.
const RequestIDHeader = "X-Request-ID"

// Path returns middleware that stores the normalized request path in the
// request context, where ogimage.PathFromContext can read it. Extensions are
// stripped when the client's config has StripExtensions set.
func Path(client *ogimage.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := ogimage.NormalizePath(r.URL.Path, client.Config().StripExtensions)
			next.ServeHTTP(w, r.WithContext(ogimage.WithPath(r.Context(), p)))
		})
	}
}

// RequestID stores the incoming X-Request-ID, or a new one, in the request
// context where audit events pick it up. The ID is echoed in the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = xid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(audit.WithRequestID(r.Context(), id)))
	})
}

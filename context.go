package ogimage

import (
	"context"
	"path"
	"strings"
)

type ctxKey string

const ctxKeyPath ctxKey = "ogimage_path"

// WithPath stores the current page path in the context.
func WithPath(ctx context.Context, p string) context.Context {
	return context.WithValue(ctx, ctxKeyPath, p)
}

// PathFromContext extracts the current page path from the context.
func PathFromContext(ctx context.Context) string {
	v, _ := ctx.Value(ctxKeyPath).(string)
	return v
}

// ContextPathProvider implements PathProvider on top of WithPath.
type ContextPathProvider struct{}

// CurrentPath returns the path stored by WithPath, if any.
func (ContextPathProvider) CurrentPath(ctx context.Context) (string, bool) {
	p := PathFromContext(ctx)
	return p, p != ""
}

// NormalizePath cleans a request path and, when strip is set, drops the file
// extension of its last segment. Dot-files such as "/.well-known" are kept.
func NormalizePath(p string, strip bool) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	p = path.Clean(p)
	if !strip {
		return p
	}
	base := path.Base(p)
	ext := path.Ext(base)
	if ext == "" || ext == base {
		return p
	}
	return strings.TrimSuffix(p, ext)
}

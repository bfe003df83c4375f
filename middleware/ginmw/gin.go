// Package ginmw provides Gin HTTP middleware and handlers for ogimage.
//
// Path records the page path being served so that image parameters can carry
// it; Redirect serves a generated image by redirecting to its location.
package ginmw

import (
	"errors"
	"net/http"

	ogimage "github.com/chimerakang/ogimage-go"
	"github.com/gin-gonic/gin"
)

// KeyPath is the gin.Context key holding the normalized page path.
const KeyPath = "ogimage_path"

// Path returns Gin middleware that stores the normalized request path in
// both the Gin context (see GetPath) and the request context (see
// ogimage.PathFromContext).
func Path(client *ogimage.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := ogimage.NormalizePath(c.Request.URL.Path, client.Config().StripExtensions)
		c.Set(KeyPath, p)
		c.Request = c.Request.WithContext(ogimage.WithPath(c.Request.Context(), p))
		c.Next()
	}
}

// GetPath returns the page path stored by Path, or "" if Path did not run.
func GetPath(c *gin.Context) string {
	v, _ := c.Get(KeyPath)
	s, _ := v.(string)
	return s
}

// ParamsFunc builds image parameters for the current request.
type ParamsFunc func(c *gin.Context) ogimage.Params

// Redirect returns a Gin handler that generates an image from build's
// parameters and answers 302 Found with the image location. The page path
// from Path is added under "path" unless build already set it.
//
// Validation failures answer 400, timeouts 504, other service failures 502,
// and configuration errors 500.
func Redirect(client *ogimage.Client, build ParamsFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		params := build(c)
		if params == nil {
			params = ogimage.Params{}
		}
		if _, ok := params[ogimage.ClaimPath]; !ok {
			if p := GetPath(c); p != "" {
				params[ogimage.ClaimPath] = p
			}
		}

		res, err := client.CreateImage(c.Request.Context(), params, ogimage.CreateOptions{})
		if err != nil {
			c.AbortWithStatusJSON(statusFor(err), gin.H{"error": errorText(err)})
			return
		}
		c.Redirect(http.StatusFound, res.Location)
	}
}

func statusFor(err error) int {
	var re *ogimage.RequestError
	switch {
	case ogimage.IsValidationError(err):
		return http.StatusBadRequest
	case errors.Is(err, ogimage.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &re):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// errorText keeps configuration details out of responses.
func errorText(err error) string {
	switch statusFor(err) {
	case http.StatusBadRequest:
		return err.Error()
	case http.StatusGatewayTimeout:
		return "image service timed out"
	case http.StatusBadGateway:
		return "image service unavailable"
	default:
		return "image client misconfigured"
	}
}

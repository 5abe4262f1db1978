package httpapi

import (
	"time"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/dmitrijs2005/recipekeeper/internal/logging"
	"github.com/dmitrijs2005/recipekeeper/internal/server/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
	identityKey     = "identity"
)

// RequestID tags every request with a fresh id, echoed in X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.New().String()
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// AccessLog logs one line per request after it completes.
func AccessLog(l logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		l.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"request_id", c.GetString(requestIDKey),
		)
	}
}

// Authenticate resolves the session cookie. On success the identity is put
// on both the gin context and the request context. A cookie naming no live
// session is cleared. The request always continues; handlers decide whether
// an identity is required.
func Authenticate(a *auth.Authenticator, cookies *CookieManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, _ := c.Cookie(common.SessionCookieName)

		res := a.Authenticate(c.Request.Context(), token)
		if res.ClearToken {
			cookies.Clear(c)
		}
		if res.Identity != nil {
			c.Set(identityKey, res.Identity)
			c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), res.Identity))
		}

		c.Next()
	}
}

func identityFrom(c *gin.Context) (*auth.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	id, ok := v.(*auth.Identity)
	return id, ok && id != nil
}

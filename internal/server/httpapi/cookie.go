package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/recipekeeper/internal/common"
	"github.com/gin-gonic/gin"
)

// CookieManager writes and clears the session cookie. The cookie is always
// HttpOnly, SameSite=Lax and scoped to "/".
type CookieManager struct {
	Domain string
	Secure bool
	MaxAge int
}

func NewCookieManager(domain string, secure bool, maxAge int) *CookieManager {
	return &CookieManager{Domain: domain, Secure: secure, MaxAge: maxAge}
}

func (m *CookieManager) Set(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, sessionID, m.MaxAge, "/", m.Domain, m.Secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(common.SessionCookieName, "", -1, "/", m.Domain, m.Secure, true)
}

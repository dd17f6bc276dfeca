package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/devroom/checkout/internal/config"
)

const DefaultCookieName = "_checkout"

// CookieManager binds a checkout session to the browser for the lifetime of
// one page load, so form posts land on the state the page was rendered from.
type CookieManager struct {
	cookieName string
	secure     bool
	ttl        time.Duration
}

func NewCookieManager(cfg config.Config) *CookieManager {
	name := cfg.SessionCookieName
	if name == "" {
		name = DefaultCookieName
	}
	return &CookieManager{
		cookieName: name,
		secure:     cfg.CookieSecure,
		ttl:        cfg.SessionTTL,
	}
}

func (m *CookieManager) CookieName() string {
	return m.cookieName
}

func (m *CookieManager) ReadSessionID(c *gin.Context) (string, bool) {
	id, err := c.Cookie(m.cookieName)
	if err != nil {
		return "", false
	}
	if strings.TrimSpace(id) == "" {
		return "", false
	}
	return id, true
}

func (m *CookieManager) Set(c *gin.Context, sessionID string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, sessionID, int(m.ttl.Seconds()), "/", "", m.secure, true)
}

func (m *CookieManager) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(m.cookieName, "", -1, "/", "", m.secure, true)
}

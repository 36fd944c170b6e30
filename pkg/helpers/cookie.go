package helpers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// TokenCookie is the name of the cookie carrying the session token.
const TokenCookie = "token"

type Manager struct {
	Domain   string
	Secure   bool
	SameSite http.SameSite
	// Now is the clock max ages are measured against; defaults to time.Now.
	Now func() time.Time
}

// NewCookie builds a Manager. sameSite is one of lax, strict or none; anything
// else falls back to lax. SameSite=None is only honored by browsers on secure
// cookies, so it is downgraded when secure is off.
func NewCookie(domain string, secure bool, sameSite string) *Manager {
	mode := http.SameSiteLaxMode
	switch strings.ToLower(sameSite) {
	case "strict":
		mode = http.SameSiteStrictMode
	case "none":
		if secure {
			mode = http.SameSiteNoneMode
		}
	}
	return &Manager{Domain: domain, Secure: secure, SameSite: mode, Now: time.Now}
}

// SetToken stores the session token as an HTTP-only cookie that expires with it.
func (m *Manager) SetToken(c *gin.Context, token string, exp time.Time) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(TokenCookie, token, m.maxAgeFrom(exp), "/", m.Domain, m.Secure, true)
}

// Clear instructs the client to drop the session token.
func (m *Manager) Clear(c *gin.Context) {
	c.SetSameSite(m.SameSite)
	c.SetCookie(TokenCookie, "", -1, "/", m.Domain, m.Secure, true)
}

// TokenFromRequest reads the session cookie, falling back to an Authorization
// bearer header for non-browser clients.
func TokenFromRequest(c *gin.Context) string {
	if t, err := c.Cookie(TokenCookie); err == nil && t != "" {
		return t
	}
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func (m *Manager) maxAgeFrom(exp time.Time) int {
	now := time.Now
	if m.Now != nil {
		now = m.Now
	}
	sec := int(exp.Sub(now()).Seconds())
	if sec < 0 {
		return 0
	}
	return sec
}

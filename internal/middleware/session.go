package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-booking/internal/service"
)

// ContextSessionKey is the gin context key storing the browser session.
const ContextSessionKey = "userSession"

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return "booking_session"
	}
	return c.Name
}

// Session attaches the browser session named by the cookie, when one exists. It never
// creates sessions; sign-in does.
func Session(sessions *service.SessionService, cookie CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(cookie.name())
		if err != nil || id == "" {
			c.Next()
			return
		}
		us, err := sessions.Lookup(c.Request.Context(), id)
		if err != nil {
			ClearSessionCookie(c, cookie)
			c.Next()
			return
		}
		sessions.Refresh(c.Request.Context(), us)
		c.Set(ContextSessionKey, us)
		c.Next()
	}
}

// CurrentSession returns the session attached by Session, or nil.
func CurrentSession(c *gin.Context) *service.UserSession {
	value, ok := c.Get(ContextSessionKey)
	if !ok {
		return nil
	}
	us, _ := value.(*service.UserSession)
	return us
}

// SetSessionCookie issues the session cookie and attaches us to the request.
func SetSessionCookie(c *gin.Context, cookie CookieConfig, us *service.UserSession) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.name(), us.ID, int(cookie.TTL.Seconds()), "/", "", cookie.Secure, true)
	c.Set(ContextSessionKey, us)
}

// ClearSessionCookie expires the session cookie.
func ClearSessionCookie(c *gin.Context, cookie CookieConfig) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(cookie.name(), "", -1, "/", "", cookie.Secure, true)
}

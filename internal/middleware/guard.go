package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// Guards only read the cached session; the data service authorises every call itself.

// RequireSession sends visitors without a signed-in session to loginPath. API callers
// get 401 instead of a redirect.
func RequireSession(loginPath, apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		us := CurrentSession(c)
		if us != nil && us.Auth.IsAuthenticated() {
			c.Next()
			return
		}
		if wantsJSON(c, apiPrefix) {
			response.Error(c, appErrors.ErrUnauthenticated)
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, loginPath)
		c.Abort()
	}
}

// RequireAdmin sends anyone but an admin to dashboardPath. API callers get 401 or 403.
func RequireAdmin(dashboardPath, apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		us := CurrentSession(c)
		if us != nil && us.Auth.IsAdmin() {
			c.Next()
			return
		}
		if wantsJSON(c, apiPrefix) {
			if us == nil || !us.Auth.IsAuthenticated() {
				response.Error(c, appErrors.ErrUnauthenticated)
			} else {
				response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "admin role required"))
			}
			c.Abort()
			return
		}
		c.Redirect(http.StatusFound, dashboardPath)
		c.Abort()
	}
}

func wantsJSON(c *gin.Context, apiPrefix string) bool {
	if apiPrefix != "" && strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
		return true
	}
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

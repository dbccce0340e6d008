package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-booking/internal/dto"
	"github.com/noah-isme/appointment-booking/internal/middleware"
	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/service"
	appErrors "github.com/noah-isme/appointment-booking/pkg/errors"
	"github.com/noah-isme/appointment-booking/pkg/response"
)

// AuthHandler serves the login view and session actions.
type AuthHandler struct {
	auth          *service.AuthService
	views         *service.ViewService
	cookie        middleware.CookieConfig
	loginPath     string
	dashboardPath string
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(auth *service.AuthService, views *service.ViewService, cookie middleware.CookieConfig, loginPath, dashboardPath string) *AuthHandler {
	return &AuthHandler{
		auth:          auth,
		views:         views,
		cookie:        cookie,
		loginPath:     loginPath,
		dashboardPath: dashboardPath,
	}
}

// LoginPage godoc
// @Summary Login view
// @Description Reports whether the browser session is already signed in
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.LoginView}
// @Router /login [get]
func (h *AuthHandler) LoginPage(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.views.Login(middleware.CurrentSession(c), h.dashboardPath))
}

// Login godoc
// @Summary Sign in
// @Description Sign in with email and password and start a browser session
// @Tags Authentication
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param payload body models.SignInRequest true "Credentials"
// @Success 200 {object} response.Envelope{data=dto.LoginView}
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 429 {object} response.Envelope
// @Router /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}

	us, err := h.auth.SignIn(c.Request.Context(), middleware.CurrentSession(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetSessionCookie(c, h.cookie, us)
	response.JSON(c, http.StatusOK, h.views.Login(us, h.dashboardPath))
}

// Logout godoc
// @Summary Sign out
// @Description Revoke the remote session and forget the browser session
// @Tags Authentication
// @Produce json
// @Success 200 {object} response.Envelope{data=dto.MutationResponse}
// @Router /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.auth.SignOut(c.Request.Context(), middleware.CurrentSession(c))
	middleware.ClearSessionCookie(c, h.cookie)

	res := dto.MutationResponse{Status: "signed_out", Redirect: h.loginPath}
	if err != nil {
		message := appErrors.FromError(err).Message
		res.Error = &message
	}
	response.JSON(c, http.StatusOK, res)
}

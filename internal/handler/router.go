package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-booking/internal/middleware"
	"github.com/noah-isme/appointment-booking/internal/service"
)

// Page paths the guards redirect to.
const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

// Routes bundles everything RegisterRoutes wires.
type Routes struct {
	APIPrefix    string
	Sessions     *service.SessionService
	Cookie       middleware.CookieConfig
	LoginLimiter *middleware.RateLimiter

	Auth         *AuthHandler
	Views        *ViewHandler
	Appointments *AppointmentHandler
	Admin        *AdminHandler
	Store        *StoreHandler
	Metrics      *MetricsHandler
}

// RegisterRoutes mounts the page views and the API on r.
func RegisterRoutes(r *gin.Engine, routes Routes) {
	r.GET("/health", routes.Metrics.Health)
	r.GET("/ready", routes.Metrics.Ready)
	r.GET("/metrics", routes.Metrics.Prometheus)

	app := r.Group("/")
	app.Use(middleware.Session(routes.Sessions, routes.Cookie))

	requireSession := middleware.RequireSession(LoginPath, routes.APIPrefix)
	requireAdmin := middleware.RequireAdmin(DashboardPath, routes.APIPrefix)

	app.GET(LoginPath, routes.Auth.LoginPage)
	app.POST(LoginPath, middleware.RateLimit(routes.LoginLimiter), routes.Auth.Login)
	app.POST("/logout", routes.Auth.Logout)

	pages := app.Group("/", requireSession)
	pages.GET(DashboardPath, routes.Views.Dashboard)
	pages.GET("/calendar", routes.Views.Calendar)
	pages.GET("/appointments", routes.Views.Appointments)
	pages.GET("/admin", requireAdmin, routes.Views.Admin)

	api := app.Group(routes.APIPrefix, requireSession)
	api.GET("/store/events", routes.Store.Events)
	api.POST("/appointments", routes.Appointments.Book)
	api.POST("/appointments/:id/cancel", routes.Appointments.Cancel)
	api.POST("/slots/refresh", routes.Appointments.RefreshSlots)

	admin := api.Group("/admin", requireAdmin)
	admin.POST("/slots/generate", routes.Admin.Generate)
	admin.DELETE("/slots/:id", routes.Admin.DeleteSlot)
	admin.GET("/slots/export", routes.Admin.Export)
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/appointment-booking/internal/models"
	"github.com/noah-isme/appointment-booking/internal/service"
)

var testCookie = CookieConfig{Name: "sid", TTL: time.Hour}

func guardedRouter(sessions *service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Session(sessions, testCookie))
	router.GET("/dashboard", RequireSession("/login", "/api/v1"), func(c *gin.Context) {
		c.String(http.StatusOK, "dashboard")
	})
	router.GET("/admin", RequireSession("/login", "/api/v1"), RequireAdmin("/dashboard", "/api/v1"), func(c *gin.Context) {
		c.String(http.StatusOK, "admin")
	})
	router.POST("/api/v1/admin/slots/generate", RequireSession("/login", "/api/v1"), RequireAdmin("/dashboard", "/api/v1"), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return router
}

func sessionWithRole(sessions *service.SessionService, role models.UserRole) *service.UserSession {
	us := sessions.Open()
	us.Auth.SetSession(&models.Session{
		ID:          "s",
		User:        models.User{ID: "u", Email: "u@example.com", Role: role},
		AccessToken: "token",
	})
	return us
}

func serve(router *gin.Engine, method, path, sessionID, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: testCookie.Name, Value: sessionID})
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestRequireSessionRedirectsToLogin(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)

	recorder := serve(router, http.MethodGet, "/dashboard", "", "")
	if recorder.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if got := recorder.Header().Get("Location"); got != "/login" {
		t.Fatalf("unexpected redirect: %s", got)
	}

	anonymous := sessions.Open()
	recorder = serve(router, http.MethodGet, "/dashboard", anonymous.ID, "")
	if recorder.Code != http.StatusFound {
		t.Fatalf("anonymous session should redirect, got %d", recorder.Code)
	}
}

func TestRequireSessionAllowsSignedIn(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)
	us := sessionWithRole(sessions, models.RoleUser)

	recorder := serve(router, http.MethodGet, "/dashboard", us.ID, "")
	if recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestRequireSessionJSONForAPIClients(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)

	recorder := serve(router, http.MethodGet, "/dashboard", "", "application/json")
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), "User not authenticated") {
		t.Fatalf("unexpected body: %s", recorder.Body.String())
	}
}

func TestRequireAdminRedirectsNonAdmin(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)
	us := sessionWithRole(sessions, models.RoleUser)

	recorder := serve(router, http.MethodGet, "/admin", us.ID, "")
	if recorder.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if got := recorder.Header().Get("Location"); got != "/dashboard" {
		t.Fatalf("unexpected redirect: %s", got)
	}

	recorder = serve(router, http.MethodPost, "/api/v1/admin/slots/generate", us.ID, "")
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for API call, got %d", recorder.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)
	us := sessionWithRole(sessions, models.RoleAdmin)

	if recorder := serve(router, http.MethodGet, "/admin", us.ID, ""); recorder.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if recorder := serve(router, http.MethodPost, "/api/v1/admin/slots/generate", us.ID, ""); recorder.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
}

func TestSessionClearsUnknownCookie(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{})
	router := guardedRouter(sessions)

	recorder := serve(router, http.MethodGet, "/dashboard", "stale-id", "")
	if recorder.Code != http.StatusFound {
		t.Fatalf("unexpected status: %d", recorder.Code)
	}
	if got := recorder.Header().Get("Set-Cookie"); !strings.Contains(got, "sid=;") {
		t.Fatalf("expected cookie to be cleared, got %q", got)
	}
}

func TestRateLimitRejectsBurst(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/login", RateLimit(NewRateLimiter(0.001, 2)), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		recorder := serve(router, http.MethodPost, "/login", "", "")
		codes = append(codes, recorder.Code)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusNoContent {
		t.Fatalf("burst should pass: %v", codes)
	}
	if codes[2] != http.StatusTooManyRequests {
		t.Fatalf("third request should be limited: %v", codes)
	}
}

func TestRateLimiterCleanupDropsStaleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	base := time.Now()
	rl.now = func() time.Time { return base }
	rl.get("10.0.0.1")

	rl.now = func() time.Time { return base.Add(staleClientAfter + time.Second) }
	rl.cleanup()
	if len(rl.clients) != 0 {
		t.Fatalf("expected stale client removal, have %d", len(rl.clients))
	}
}

type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (r *requestLog) ObserveHTTPRequest(method, path string, status int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, method+" "+path+" "+http.StatusText(status))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := &requestLog{}
	router := gin.New()
	router.Use(Metrics(log))
	router.DELETE("/slots/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	serve(router, http.MethodDelete, "/slots/abc", "", "")
	serve(router, http.MethodGet, "/nowhere", "", "")

	want := []string{"DELETE /slots/:id No Content", "GET unmatched Not Found"}
	if len(log.paths) != len(want) {
		t.Fatalf("unexpected observations: %v", log.paths)
	}
	for i := range want {
		if log.paths[i] != want[i] {
			t.Fatalf("observation %d: got %q want %q", i, log.paths[i], want[i])
		}
	}
}

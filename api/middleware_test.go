package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestParseOrigins(t *testing.T) {
	t.Parallel()

	if set := parseOrigins(""); !set.empty() {
		t.Errorf("parseOrigins(empty): got %#v want empty set", set)
	}
	if set := parseOrigins(" , ,"); !set.empty() {
		t.Errorf("parseOrigins(blanks): got %#v want empty set", set)
	}

	set := parseOrigins("https://a.example.com, https://b.example.com")
	if set.all || set.empty() {
		t.Fatalf("parseOrigins(list): got %#v", set)
	}
	if !set.allows("https://a.example.com") || set.allows("https://evil.example.com") {
		t.Errorf("allows: wrong membership for %#v", set)
	}

	set = parseOrigins("https://a.example.com, *")
	if !set.all || !set.allows("https://anything.example.com") {
		t.Errorf("parseOrigins(wildcard): got %#v", set)
	}
}

func TestRegisterRoutes_AuthRequired(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CODE_SOLVER_API_KEY", "")
	t.Setenv("CODE_SOLVER_DISABLE_AUTH", "")

	s := &Server{router: gin.New(), runs: &fakeRunReader{}}
	err := s.registerRoutes()
	if err == nil {
		t.Fatal("expected error without auth configuration")
	}
	if !strings.Contains(err.Error(), "CODE_SOLVER_API_KEY") {
		t.Errorf("err = %v, want mention of CODE_SOLVER_API_KEY", err)
	}
}

func TestAPIKeyAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CODE_SOLVER_API_KEY", "sekret")
	t.Setenv("CODE_SOLVER_DISABLE_AUTH", "")

	s := &Server{router: gin.New(), runs: &fakeRunReader{}}
	if err := s.registerRoutes(); err != nil {
		t.Fatalf("registerRoutes: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("no key: status got %d want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-API-Key", "wrong")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: status got %d want %d", rec.Code, http.StatusUnauthorized)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-API-Key", "sekret")
	rec = httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("valid key: status got %d want %d", rec.Code, http.StatusOK)
	}
}

func TestCORSMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CODE_SOLVER_CORS_ORIGINS", "https://app.example.com")

	r := gin.New()
	r.Use(corsMiddleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Errorf("allow-origin: got %q want %q", got, "https://app.example.com")
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got header %q", got)
	}

	req = httptest.NewRequest(http.MethodOptions, "/ping", nil)
	req.Header.Set("Origin", "https://app.example.com")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("preflight: status got %d want %d", rec.Code, http.StatusNoContent)
	}
}

func TestNewServer_AndRunGuards(t *testing.T) {
	gin.SetMode(gin.TestMode)
	t.Setenv("CODE_SOLVER_API_KEY", "")
	t.Setenv("CODE_SOLVER_DISABLE_AUTH", "true")

	s, err := NewServer(nil, &fakeRunReader{})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	if s.router == nil {
		t.Fatal("router not set")
	}

	var nilServer *Server
	if err := nilServer.Run(":0"); err == nil {
		t.Error("expected error running nil server")
	}
}

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/atelierhq/storefront_api/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestJWTMiddleware(t *testing.T) {
	utils.SetJWTSecret("test-secret", time.Hour)
	token, err := utils.GenerateJWT(7, "owner@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT: %v", err)
	}

	r := gin.New()
	r.GET("/admin", NewJWTMiddleware().Handle(), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", UserID(c))
	})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.status {
				t.Errorf("status = %d, want %d", w.Code, tt.status)
			}
			if tt.status == http.StatusOK && w.Body.String() != "7" {
				t.Errorf("user id = %q, want 7", w.Body.String())
			}
		})
	}
}

func TestInvalidAuthRateLimiter(t *testing.T) {
	rl := NewInvalidAuthRateLimiter(2, time.Minute)
	defer rl.Stop()
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	r := gin.New()
	r.POST("/login", rl.Handle(), func(c *gin.Context) {
		if c.Query("ok") == "1" {
			c.Status(http.StatusOK)
			return
		}
		c.Status(http.StatusUnauthorized)
	})
	do := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w.Code
	}

	if got := do("/login?ok=1"); got != http.StatusOK {
		t.Fatalf("success status = %d", got)
	}
	for i := 0; i < 2; i++ {
		if got := do("/login"); got != http.StatusUnauthorized {
			t.Fatalf("attempt %d status = %d, want 401", i, got)
		}
	}
	if got := do("/login?ok=1"); got != http.StatusTooManyRequests {
		t.Errorf("blocked status = %d, want 429", got)
	}

	now = now.Add(2 * time.Minute)
	if got := do("/login?ok=1"); got != http.StatusOK {
		t.Errorf("status after window = %d, want 200", got)
	}
}

func TestCORSMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"shop.example.com"}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		origin string
		want   string
	}{
		{"https://shop.example.com", "https://shop.example.com"},
		{"https://shop.example.com:443/", "https://shop.example.com:443"},
		{"https://evil.example.com", ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Origin", tt.origin)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
			t.Errorf("origin %q: allow = %q, want %q", tt.origin, got, tt.want)
		}
	}

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("preflight status = %d, want 204", w.Code)
	}
}

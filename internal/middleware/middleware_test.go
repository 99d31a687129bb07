package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func newLimitedRouter(limit time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(NewRateLimiter(limit).Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func get(r *gin.Engine, clientID string) int {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	if clientID != "" {
		req.Header.Set("X-Client-ID", clientID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimiterBlocksRapidRequests(t *testing.T) {
	r := newLimitedRouter(time.Minute)

	if code := get(r, "c1"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	if code := get(r, "c1"); code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", code)
	}
	// Other clients are unaffected.
	if code := get(r, "c2"); code != http.StatusOK {
		t.Fatalf("other client = %d", code)
	}
}

func TestRateLimiterAllowsAfterInterval(t *testing.T) {
	r := newLimitedRouter(10 * time.Millisecond)

	if code := get(r, "c1"); code != http.StatusOK {
		t.Fatalf("first request = %d", code)
	}
	time.Sleep(20 * time.Millisecond)
	if code := get(r, "c1"); code != http.StatusOK {
		t.Fatalf("request after interval = %d", code)
	}
}

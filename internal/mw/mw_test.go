package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestResponseCache(t *testing.T) {
	rc := NewResponseCache(time.Minute)
	calls := 0

	r := gin.New()
	r.Use(rc.Middleware())
	r.GET("/api/locations", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})
	r.POST("/api/locations", func(c *gin.Context) {
		calls++
		c.Status(http.StatusNoContent)
	})
	r.GET("/missing", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusNotFound, gin.H{"error": "nope"})
	})

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	first := get("/api/locations")
	second := get("/api/locations")
	assert.Equal(t, 1, calls)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "HIT", second.Header().Get(CacheHeader))
	assert.Equal(t, "application/json; charset=utf-8", second.Header().Get("Content-Type"))
	assert.Equal(t, 1, rc.Len())

	rc.Flush()
	third := get("/api/locations")
	assert.Equal(t, 2, calls)
	assert.Empty(t, third.Header().Get(CacheHeader))
	assert.JSONEq(t, `{"calls":2}`, third.Body.String())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/locations", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/api/locations", nil))
	assert.Equal(t, 4, calls, "non-GET requests bypass the cache")

	get("/missing")
	get("/missing")
	assert.Equal(t, 6, calls, "errors are not cached")
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(RateLimiter(1, 2, ClientKey("X-Forwarded-For")))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	do := func(client string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Forwarded-For", client)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2"))
	// A spoofed first hop does not earn a fresh limiter.
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.7, 10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, do("198.51.100.8, 10.0.0.1"))
}

func TestClientKey(t *testing.T) {
	newCtx := func(header, value string) *gin.Context {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.RemoteAddr = "192.0.2.10:5555"
		if header != "" {
			c.Request.Header.Set(header, value)
		}
		return c
	}

	assert.Equal(t, "203.0.113.5", ClientKey("X-Real-IP")(newCtx("X-Real-IP", "203.0.113.5")))
	assert.Equal(t, "10.0.0.1", ClientKey("X-Forwarded-For")(newCtx("X-Forwarded-For", " 203.0.113.5 , 10.0.0.1 ")))
	assert.Equal(t, "192.0.2.10", ClientKey("X-Real-IP")(newCtx("", "")))
	assert.Equal(t, "192.0.2.10", ClientKey("")(newCtx("X-Client-ID", "abc")))
}

package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCache_ServesRepeatedGet(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/items", Cache(store, time.Minute, nil), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"calls": calls})
	})

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"calls":1}`, w.Body.String())
		assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	}
	assert.Equal(t, 1, calls)

	store.Flush()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
	assert.JSONEq(t, `{"calls":2}`, w.Body.String())
}

func TestCache_KeysByVariant(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	state := "hidden"
	calls := 0

	r := gin.New()
	variant := func(*gin.Context) string { return state }
	r.GET("/items", Cache(store, time.Minute, variant), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"state": state})
	})

	get := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
		return w
	}

	assert.JSONEq(t, `{"state":"hidden"}`, get().Body.String())
	w := get()
	assert.JSONEq(t, `{"state":"hidden"}`, w.Body.String())
	assert.Equal(t, "HIT", w.Header().Get(CacheHeader))

	state = "published"
	w = get()
	assert.JSONEq(t, `{"state":"published"}`, w.Body.String())
	assert.Empty(t, w.Header().Get(CacheHeader))
	assert.Equal(t, 2, calls)
}

func TestCache_SkipsErrors(t *testing.T) {
	store := cache.New(time.Minute, time.Minute)
	calls := 0

	r := gin.New()
	r.GET("/items", Cache(store, time.Minute, nil), func(c *gin.Context) {
		calls++
		c.Status(http.StatusServiceUnavailable)
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/items", nil))
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.GET("/", RateLimiter(1, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuth(t *testing.T) {
	testCases := []struct {
		name   string
		key    string
		header string
		want   int
	}{
		{"correct key", "secret", "secret", http.StatusOK},
		{"wrong key", "secret", "nope", http.StatusUnauthorized},
		{"missing header", "secret", "", http.StatusUnauthorized},
		{"no key configured", "", "", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/", AdminAuth(tc.key), func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(AdminKeyHeader, tc.header)
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

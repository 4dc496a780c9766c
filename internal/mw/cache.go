package mw

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// CacheHeader marks responses replayed from the cache.
const CacheHeader = "X-Cache"

// VariantFunc returns server-side state a cached response depends on. A
// response is only replayed while the variant it was stored under is current.
type VariantFunc func(c *gin.Context) string

type cachedResponse struct {
	status  int
	headers http.Header
	body    []byte
}

func (r cachedResponse) replay(c *gin.Context) {
	for k, v := range r.headers {
		c.Writer.Header()[k] = v
	}
	c.Writer.Header().Set(CacheHeader, "HIT")
	c.Writer.WriteHeader(r.status)
	_, _ = c.Writer.Write(r.body)
}

// recorder copies everything the handler writes.
type recorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w recorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w recorder) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Cache serves repeated GET requests for the same URI and variant from
// memory. variant may be nil. Handlers that change the underlying data call
// store.Flush.
func Cache(store *cache.Cache, ttl time.Duration, variant VariantFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet {
			c.Next()
			return
		}

		key := c.Request.RequestURI
		if variant != nil {
			key += "|" + variant(c)
		}
		if hit, found := store.Get(key); found {
			hit.(cachedResponse).replay(c)
			c.Abort()
			return
		}

		rec := recorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = rec
		c.Next()

		if status := rec.Status(); status >= 200 && status < 300 {
			store.Set(key, cachedResponse{
				status:  status,
				headers: rec.Header().Clone(),
				body:    rec.body.Bytes(),
			}, ttl)
		}
	}
}

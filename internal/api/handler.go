package api

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"

	"carshow-backend/config"
	"carshow-backend/internal/blob"
	"carshow-backend/internal/ledger"
	"carshow-backend/internal/publication"
	"carshow-backend/internal/registration"
	"carshow-backend/internal/store"
	"carshow-backend/internal/voter"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	store        store.Store
	ledger       *ledger.Ledger
	scheduler    *publication.Scheduler
	registration *registration.Service
	voters       *voter.Resolver
	cache        *cache.Cache
	cfg          *config.Config
	now          func() time.Time
}

// NewHandler wires the services behind the API. notifier may be nil.
func NewHandler(s store.Store, blobs blob.Store, cfg *config.Config, notifier publication.Notifier) *Handler {
	ttl := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	return &Handler{
		store:        s,
		ledger:       ledger.New(s),
		scheduler:    publication.NewScheduler(s, notifier),
		registration: registration.NewService(s, blobs, cfg.Registration, cfg.Storage.Prefix),
		voters:       voter.NewResolver(cfg.Voting),
		cache:        cache.New(ttl, 2*ttl),
		cfg:          cfg,
		now:          time.Now,
	}
}

// invalidate drops cached listings after a write that changes them.
func (h *Handler) invalidate() {
	h.cache.Flush()
}

// publicationVariant keys cached listings by whether results are public, so
// publication by the sweeper or by the deadline passing takes effect at once.
func (h *Handler) publicationVariant(c *gin.Context) string {
	if h.scheduler.Status(c.Request.Context()).ArePublished {
		return "published"
	}
	return "hidden"
}

func paramID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

// storeError writes the response for a failed store call: 404 for missing
// rows and 503 for everything else.
func storeError(c *gin.Context, what string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": what + " not found"})
		return
	}
	log.Printf("Store error (%s): %v", what, err)
	c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
}

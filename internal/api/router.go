package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"carshow-backend/config"
	"carshow-backend/internal/blob"
	"carshow-backend/internal/mw"
	"carshow-backend/internal/publication"
	"carshow-backend/internal/store"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(s store.Store, blobs blob.Store, cfg *config.Config, notifier publication.Notifier) *gin.Engine {
	r := gin.Default()
	h := NewHandler(s, blobs, cfg, notifier)
	return h.routes(r)
}

func (h *Handler) routes(r *gin.Engine) *gin.Engine {
	rateLimiter := mw.RateLimiter(rate.Limit(h.cfg.Server.RateLimitPerSec), h.cfg.Server.RateLimitBurst)
	caching := mw.Cache(h.cache, time.Duration(h.cfg.Server.CacheTTLSeconds)*time.Second, h.publicationVariant)

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/vehicles", caching, h.ListVehicles)
		api.GET("/vehicles/:id", h.GetVehicle)
		api.GET("/vehicles/:id/votes", h.GetVehicleVotes)
		api.POST("/vehicles", h.RegisterVehicle)
		api.POST("/uploads", h.UploadPhoto)

		voters := h.voters.Middleware()
		api.GET("/votes/me", voters, h.GetMyVote)
		api.POST("/votes", voters, h.CastVote)

		api.GET("/publication", h.GetPublication)
		api.GET("/results", h.GetResults)
		api.GET("/awards", h.GetAwards)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	admin := api.Group("/admin")
	admin.Use(mw.AdminAuth(h.cfg.Admin.APIKey))
	{
		admin.GET("/votes", h.GetAdminVotes)
		admin.GET("/results", h.GetAdminResults)
		admin.GET("/schedule", h.GetSchedule)
		admin.PUT("/schedule", h.UpdateSchedule)
		admin.GET("/vehicles/:id/votes", h.GetAdminVehicleVotes)
		admin.POST("/vehicles/:id/check-in", h.CheckInVehicle)
		admin.PUT("/vehicles/:id/approval", h.SetVehicleApproval)
		admin.GET("/awards", h.GetAdminAwards)
		admin.POST("/awards", h.AssignAward)
		admin.POST("/awards/publish", h.PublishAward)
		admin.DELETE("/awards", h.RemoveAward)
	}

	return r
}

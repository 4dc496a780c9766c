package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshow-backend/internal/model"
	"carshow-backend/internal/publication"
)

type publicationResponse struct {
	publication.Status
	VotingStatus publication.VotingState `json:"voting_status"`
}

// GetPublication handles GET /api/publication. It first promotes a publication
// whose scheduled time has passed.
func (h *Handler) GetPublication(c *gin.Context) {
	ctx := c.Request.Context()
	if h.scheduler.CheckAndUpdate(ctx) {
		h.invalidate()
	}
	c.JSON(http.StatusOK, publicationResponse{
		Status:       h.scheduler.Status(ctx),
		VotingStatus: h.scheduler.VotingState(ctx),
	})
}

// GetResults handles GET /api/results.
func (h *Handler) GetResults(c *gin.Context) {
	if !h.scheduler.Status(c.Request.Context()).ArePublished {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Results have not been published yet"})
		return
	}
	h.writeResults(c)
}

// GetAdminResults handles GET /api/admin/results, which ignores publication.
func (h *Handler) GetAdminResults(c *gin.Context) {
	h.writeResults(c)
}

func (h *Handler) writeResults(c *gin.Context) {
	standings, err := h.ledger.Standings(c.Request.Context())
	if err != nil {
		storeError(c, "results", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"category_id": model.BestInShowCategoryID, "results": standings})
}

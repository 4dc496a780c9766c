package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carshow-backend/internal/ledger"
	"carshow-backend/internal/publication"
	"carshow-backend/internal/voter"
)

type castVoteRequest struct {
	VehicleID int64 `json:"vehicle_id" binding:"required"`
}

// GetMyVote handles GET /api/votes/me.
func (h *Handler) GetMyVote(c *gin.Context) {
	vote := h.ledger.CurrentVote(c.Request.Context(), voter.FromContext(c))
	c.JSON(http.StatusOK, gin.H{"has_voted": vote != nil, "vote": vote})
}

// CastVote handles POST /api/votes.
func (h *Handler) CastVote(c *gin.Context) {
	var req castVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.VehicleID <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "vehicle_id is required"})
		return
	}
	ctx := c.Request.Context()

	if state := h.scheduler.VotingState(ctx); state != publication.VotingOpen {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Voting is not open", "voting_status": state})
		return
	}

	v, err := h.store.GetVehicle(ctx, req.VehicleID)
	if err != nil {
		storeError(c, "vehicle", err)
		return
	}
	if !v.CheckedIn {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Vehicle is not checked in"})
		return
	}

	res := h.ledger.CastVote(ctx, req.VehicleID, voter.FromContext(c))
	switch res.Outcome {
	case ledger.Created:
		h.invalidate()
		c.JSON(http.StatusCreated, gin.H{"success": true, "vote_id": res.VoteID})
	case ledger.AlreadyVoted:
		c.JSON(http.StatusConflict, gin.H{
			"success":       false,
			"already_voted": true,
			"vote_id":       res.VoteID,
			"message":       res.Reason,
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": res.Reason})
	}
}

package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"carshow-backend/internal/publication"
	"carshow-backend/internal/store"
)

// GetAdminVotes handles GET /api/admin/votes.
func (h *Handler) GetAdminVotes(c *gin.Context) {
	votes := h.ledger.AllVotes(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"votes": votes, "total": len(votes)})
}

// GetAdminVehicleVotes handles GET /api/admin/vehicles/:id/votes.
func (h *Handler) GetAdminVehicleVotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle_id": id, "vote_count": h.ledger.VoteCount(c.Request.Context(), id)})
}

// CheckInVehicle handles POST /api/admin/vehicles/:id/check-in.
func (h *Handler) CheckInVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.store.CheckInVehicle(c.Request.Context(), id, h.now().UTC())
	if err != nil {
		storeError(c, "vehicle", err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, v)
}

type approvalRequest struct {
	Approved *bool `json:"approved" binding:"required"`
}

// SetVehicleApproval handles PUT /api/admin/vehicles/:id/approval.
func (h *Handler) SetVehicleApproval(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var req approvalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "approved is required"})
		return
	}
	v, err := h.store.SetVehicleApproved(c.Request.Context(), id, *req.Approved)
	if err != nil {
		storeError(c, "vehicle", err)
		return
	}
	h.invalidate()
	c.JSON(http.StatusOK, v)
}

type scheduleResponse struct {
	VotingOpen         bool                    `json:"voting_open"`
	ResultsPublished   bool                    `json:"results_published"`
	ResultsPublishTime *time.Time              `json:"results_publish_time"`
	VotingStartTime    *time.Time              `json:"voting_start_time"`
	VotingEndTime      *time.Time              `json:"voting_end_time"`
	Status             publication.Status      `json:"status"`
	VotingStatus       publication.VotingState `json:"voting_status"`
}

// GetSchedule handles GET /api/admin/schedule.
func (h *Handler) GetSchedule(c *gin.Context) {
	sched, err := h.scheduler.Schedule(c.Request.Context())
	if err != nil {
		storeError(c, "schedule", err)
		return
	}
	now := h.now()
	c.JSON(http.StatusOK, scheduleResponse{
		VotingOpen:         sched.VotingOpen,
		ResultsPublished:   sched.ResultsPublished,
		ResultsPublishTime: sched.ResultsPublishTime,
		VotingStartTime:    sched.VotingStartTime,
		VotingEndTime:      sched.VotingEndTime,
		Status:             publication.Evaluate(sched, now),
		VotingStatus:       publication.VotingStateAt(sched, now),
	})
}

type updateScheduleRequest struct {
	VotingOpen         *bool      `json:"voting_open"`
	PublishNow         bool       `json:"publish_now"`
	ResultsPublishTime *time.Time `json:"results_publish_time"`
	ClearPublishTime   bool       `json:"clear_publish_time"`
	VotingStartTime    *time.Time `json:"voting_start_time"`
	VotingEndTime      *time.Time `json:"voting_end_time"`
}

// UpdateSchedule handles PUT /api/admin/schedule.
func (h *Handler) UpdateSchedule(c *gin.Context) {
	var req updateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid schedule"})
		return
	}
	if req.VotingStartTime != nil && req.VotingEndTime != nil && !req.VotingEndTime.After(*req.VotingStartTime) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "voting_end_time must be after voting_start_time"})
		return
	}

	_, err := h.scheduler.Update(c.Request.Context(), store.ScheduleUpdate{
		VotingOpen:         req.VotingOpen,
		PublishNow:         req.PublishNow,
		ResultsPublishTime: req.ResultsPublishTime,
		ClearPublishTime:   req.ClearPublishTime,
		VotingStartTime:    req.VotingStartTime,
		VotingEndTime:      req.VotingEndTime,
	})
	if err != nil {
		storeError(c, "schedule", err)
		return
	}
	h.invalidate()
	h.GetSchedule(c)
}

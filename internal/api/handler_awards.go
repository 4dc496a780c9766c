package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carshow-backend/internal/model"
	"carshow-backend/internal/store"
)

// GetAwards handles GET /api/awards, listing published awards only.
func (h *Handler) GetAwards(c *gin.Context) {
	awards, err := h.store.ListAwards(c.Request.Context(), true)
	if err != nil {
		storeError(c, "awards", err)
		return
	}
	for i := range awards {
		if v := awards[i].Vehicle; v != nil {
			v.OwnerEmail = ""
			v.OwnerPhone = nil
		}
	}
	c.JSON(http.StatusOK, awards)
}

// GetAdminAwards handles GET /api/admin/awards. Every category is listed;
// categories nobody has been assigned to come back as empty placeholders.
func (h *Handler) GetAdminAwards(c *gin.Context) {
	awards, err := h.store.ListAwards(c.Request.Context(), false)
	if err != nil {
		storeError(c, "awards", err)
		return
	}
	byCategory := make(map[string]model.AdminAward, len(awards))
	for _, a := range awards {
		byCategory[a.CategoryName] = a
	}

	out := make([]model.AdminAward, 0, len(model.SpecialAwardCategories))
	for _, name := range model.SpecialAwardCategories {
		if a, ok := byCategory[name]; ok {
			out = append(out, a)
			continue
		}
		out = append(out, model.AdminAward{CategoryName: name})
	}
	c.JSON(http.StatusOK, out)
}

type assignAwardRequest struct {
	Category  string  `json:"category" binding:"required"`
	VehicleID int64   `json:"vehicle_id" binding:"required"`
	AwardedBy string  `json:"awarded_by"`
	Notes     *string `json:"notes"`
}

// AssignAward handles POST /api/admin/awards.
func (h *Handler) AssignAward(c *gin.Context) {
	var req assignAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "category and vehicle_id are required"})
		return
	}
	if !model.IsSpecialAwardCategory(req.Category) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unknown award category"})
		return
	}
	ctx := c.Request.Context()
	if _, err := h.store.GetVehicle(ctx, req.VehicleID); err != nil {
		storeError(c, "vehicle", err)
		return
	}

	awardedBy := strings.TrimSpace(req.AwardedBy)
	if awardedBy == "" {
		awardedBy = "admin"
	}
	err := h.store.AssignAward(ctx, store.AwardAssignment{
		Category:  req.Category,
		VehicleID: req.VehicleID,
		AwardedBy: awardedBy,
		Notes:     req.Notes,
	}, h.now().UTC())
	if err != nil {
		storeError(c, "award", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type publishAwardRequest struct {
	Category  string `json:"category" binding:"required"`
	Published *bool  `json:"published" binding:"required"`
}

// PublishAward handles POST /api/admin/awards/publish.
func (h *Handler) PublishAward(c *gin.Context) {
	var req publishAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "category and published are required"})
		return
	}
	if err := h.store.PublishAward(c.Request.Context(), req.Category, *req.Published, h.now().UTC()); err != nil {
		storeError(c, "award", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

type removeAwardRequest struct {
	Category string `json:"category" binding:"required"`
}

// RemoveAward handles DELETE /api/admin/awards.
func (h *Handler) RemoveAward(c *gin.Context) {
	var req removeAwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "category is required"})
		return
	}
	if err := h.store.RemoveAward(c.Request.Context(), req.Category, h.now().UTC()); err != nil {
		storeError(c, "award", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

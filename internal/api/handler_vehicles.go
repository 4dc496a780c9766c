package api

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"carshow-backend/internal/model"
	"carshow-backend/internal/registration"
	"carshow-backend/internal/store"
)

// vehicleResponse is the public view of a vehicle. Contact details are
// withheld and the vote count is only shown once results are published.
type vehicleResponse struct {
	model.Vehicle
	ImageURL  string `json:"image_url"`
	VoteCount *int64 `json:"vote_count,omitempty"`
}

func publicVehicle(v model.Vehicle, votes int64, showVotes bool) vehicleResponse {
	v.OwnerEmail = ""
	v.OwnerPhone = nil
	resp := vehicleResponse{Vehicle: v, ImageURL: v.PrimaryImageURL()}
	if showVotes {
		resp.VoteCount = &votes
	}
	return resp
}

// ListVehicles handles GET /api/vehicles. With featured=true it returns
// checked-in vehicles capped by limit (default 6), ordered by votes once
// results are published and newest first before that.
func (h *Handler) ListVehicles(c *gin.Context) {
	published := h.scheduler.Status(c.Request.Context()).ArePublished

	filter := store.VehicleFilter{}
	if c.Query("featured") == "true" {
		filter.CheckedInOnly = true
		filter.ByVotes = published
		filter.Limit = 6
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		filter.Limit = n
	}

	rows, err := h.store.ListVehicles(c.Request.Context(), filter)
	if err != nil {
		storeError(c, "vehicles", err)
		return
	}

	out := make([]vehicleResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, publicVehicle(r.Vehicle, r.VoteCount, published))
	}
	c.JSON(http.StatusOK, out)
}

// GetVehicle handles GET /api/vehicles/:id.
func (h *Handler) GetVehicle(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	v, err := h.store.GetVehicle(c.Request.Context(), id)
	if err != nil {
		storeError(c, "vehicle", err)
		return
	}

	published := h.scheduler.Status(c.Request.Context()).ArePublished
	var votes int64
	if published {
		votes = h.ledger.VoteCount(c.Request.Context(), id)
	}
	c.JSON(http.StatusOK, publicVehicle(*v, votes, published))
}

// GetVehicleVotes handles GET /api/vehicles/:id/votes. Counts stay hidden
// until results are published.
func (h *Handler) GetVehicleVotes(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if !h.scheduler.Status(c.Request.Context()).ArePublished {
		c.JSON(http.StatusOK, gin.H{"vehicle_id": id, "vote_count": nil, "results_published": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"vehicle_id":        id,
		"vote_count":        h.ledger.VoteCount(c.Request.Context(), id),
		"results_published": true,
	})
}

// RegisterVehicle handles the multipart POST /api/vehicles.
func (h *Handler) RegisterVehicle(c *gin.Context) {
	// Room for one photo past the cap so an oversized batch is still parsed
	// and rejected by count.
	limit := int64(h.cfg.Registration.MaxPhotos+1)*h.cfg.Registration.MaxPhotoBytes + 1<<20
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)

	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "Upload too large"})
			return
		}
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid form data"})
		return
	}

	var req registration.Request
	if err := binding.MapFormWithTag(&req, form.Value, "form"); err != nil {
		// Every text field maps as-is; only a non-numeric year fails here.
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	for _, fh := range form.File["photos"] {
		req.Photos = append(req.Photos, registration.Photo{
			Filename: fh.Filename,
			Size:     fh.Size,
			Open:     openFileHeader(fh),
		})
	}
	if raw := formValue(form, "photo_urls"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.PhotoURLs); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid photo_urls"})
			return
		}
	}

	v, err := h.registration.Register(c.Request.Context(), req)
	var verr *registration.ValidationError
	switch {
	case err == nil:
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Message})
		return
	case errors.Is(err, registration.ErrRegistrationClosed):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": registration.ClosedMessage, "registration_closed": true})
		return
	case errors.Is(err, registration.ErrUnavailable):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
		return
	case errors.Is(err, registration.ErrPhotoUpload):
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload photos. Please try again."})
		return
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Registration failed. Please try again."})
		return
	}

	h.invalidate()
	c.JSON(http.StatusCreated, gin.H{
		"success":      true,
		"vehicle":      v,
		"entry_number": v.EntryNumber,
		"profile_url":  v.ProfileURL,
	})
}

// UploadPhoto handles POST /api/uploads?filename=, storing the raw request body.
func (h *Handler) UploadPhoto(c *gin.Context) {
	obj, err := h.registration.Upload(c.Request.Context(), c.Query("filename"), c.Request.Body)
	if err != nil {
		var verr *registration.ValidationError
		if errors.As(err, &verr) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": verr.Message})
			return
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, obj)
}

func formValue(form *multipart.Form, key string) string {
	if vs := form.Value[key]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func openFileHeader(fh *multipart.FileHeader) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return fh.Open()
	}
}

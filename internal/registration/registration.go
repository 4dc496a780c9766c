// Package registration runs vehicle sign-up: validate, create the vehicle,
// upload its photos, then attach them. A failure after the vehicle row exists
// undoes the earlier steps.
package registration

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"carshow-backend/config"
	"carshow-backend/internal/blob"
	"carshow-backend/internal/model"
	"carshow-backend/internal/parse"
	"carshow-backend/internal/store"
)

var (
	// ErrRegistrationClosed is returned once the entry cap is reached.
	ErrRegistrationClosed = errors.New("registration is closed")
	// ErrPhotoUpload wraps a failed upload after compensation ran.
	ErrPhotoUpload = errors.New("photo upload failed")
	// ErrUnavailable is returned when the entry count cannot be read.
	ErrUnavailable = errors.New("registration store unavailable")
)

// ClosedMessage is shown when the entry cap has been reached.
const ClosedMessage = "Registration is now closed. We have reached the maximum number of vehicle entries for this show."

var allowedTypes = []string{"image/jpeg", "image/png", "image/webp"}

// maxEntryAttempts bounds retries on entry number collisions.
const maxEntryAttempts = 10

// ValidationError is a user-facing rejection raised before any write.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Photo is an uploaded file. Open may be called more than once.
type Photo struct {
	Filename string
	Size     int64
	Open     func() (io.ReadCloser, error)
}

// Request is a registration submission. Either Photos or PhotoURLs (already
// uploaded through the upload endpoint) must be set.
type Request struct {
	FullName    string   `form:"full_name" binding:"required,min=2,max=100"`
	Email       string   `form:"email" binding:"required,email,max=255"`
	Phone       string   `form:"phone"`
	City        string   `form:"city" binding:"required"`
	State       string   `form:"state" binding:"required"`
	Make        string   `form:"make" binding:"required"`
	Model       string   `form:"model" binding:"required"`
	Year        int      `form:"year" binding:"required,gte=1900,modelyear"`
	Description string   `form:"description"`
	Photos      []Photo  `form:"-"`
	PhotoURLs   []string `form:"-"`
}

// fieldMessages maps a failed field to its rejection message, in the order
// the checks are reported. A missing required field outranks all of them.
var fieldMessages = []struct {
	field   string
	message string
}{
	{"Email", "Invalid email address"},
	{"Year", "Invalid year"},
	{"FullName", "Name must be between 2 and 100 characters"},
}

// Service registers vehicles.
type Service struct {
	store    store.Store
	blobs    blob.Store
	cfg      config.RegistrationConfig
	prefix   string
	validate *validator.Validate
	now      func() time.Time
	entry    func() int
}

// NewService creates a registration Service.
func NewService(s store.Store, blobs blob.Store, cfg config.RegistrationConfig, prefix string) *Service {
	svc := &Service{
		store:  s,
		blobs:  blobs,
		cfg:    cfg,
		prefix: prefix,
		now:    time.Now,
		entry:  func() int { return rand.Intn(9000) + 1000 },
	}

	svc.validate = validator.New()
	svc.validate.SetTagName("binding")
	// modelyear accepts next year's models but nothing later.
	_ = svc.validate.RegisterValidation("modelyear", func(fl validator.FieldLevel) bool {
		return fl.Field().Int() <= int64(svc.now().Year()+1)
	})
	return svc
}

type checkedPhoto struct {
	Photo
	contentType string
	ext         string
}

// Register validates req and creates the vehicle with its photos.
func (s *Service) Register(ctx context.Context, req Request) (*model.Vehicle, error) {
	if err := s.checkCapacity(ctx); err != nil {
		return nil, err
	}

	req = sanitize(req)
	if err := s.validateFields(req); err != nil {
		return nil, err
	}

	var photos []checkedPhoto
	if len(req.Photos) > 0 {
		var err error
		if photos, err = s.validatePhotos(req.Photos); err != nil {
			return nil, err
		}
	} else if err := s.validatePhotoURLs(req.PhotoURLs); err != nil {
		return nil, err
	}

	vehicle := newVehicle(req)
	if len(photos) == 0 {
		vehicle.SetPhotos(req.PhotoURLs)
	}
	if err := s.createWithEntryNumber(ctx, vehicle); err != nil {
		return nil, err
	}
	log.Printf("Vehicle %d created with entry number %d", vehicle.ID, vehicle.EntryNumber)

	if len(photos) == 0 {
		return vehicle, nil
	}

	urls, err := s.uploadPhotos(ctx, vehicle.ID, photos)
	if err != nil {
		s.compensate(ctx, vehicle.ID, urls)
		return nil, err
	}

	if err := s.store.AttachPhotos(ctx, vehicle.ID, urls); err != nil {
		s.compensate(ctx, vehicle.ID, urls)
		return nil, fmt.Errorf("attach photos: %w", err)
	}
	vehicle.SetPhotos(urls)
	return vehicle, nil
}

func (s *Service) checkCapacity(ctx context.Context) error {
	n, err := s.store.CountCheckedIn(ctx)
	if err != nil {
		log.Printf("Error counting checked-in vehicles: %v", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if n >= int64(s.cfg.MaxEntries) {
		log.Printf("Registration limit reached (%d); rejecting new registration", n)
		return ErrRegistrationClosed
	}
	return nil
}

func sanitize(req Request) Request {
	req.FullName = parse.SanitizeString(req.FullName)
	req.Email = parse.SanitizeString(req.Email)
	req.Phone = parse.SanitizeString(req.Phone)
	req.City = parse.SanitizeString(req.City)
	req.State = parse.SanitizeString(req.State)
	req.Make = parse.SanitizeString(req.Make)
	req.Model = parse.SanitizeString(req.Model)
	req.Description = parse.SanitizeString(req.Description)
	return req
}

func (s *Service) validateFields(req Request) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate registration: %w", err)
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return invalid("Missing required fields")
		}
		failed[fe.StructField()] = true
	}
	for _, fm := range fieldMessages {
		if failed[fm.field] {
			return invalid("%s", fm.message)
		}
	}
	return invalid("Invalid registration")
}

func (s *Service) validatePhotoCount(n int) error {
	if n == 0 {
		return invalid("At least one photo is required")
	}
	if n > s.cfg.MaxPhotos {
		return invalid("Maximum %d photos allowed", s.cfg.MaxPhotos)
	}
	return nil
}

func (s *Service) validatePhotos(photos []Photo) ([]checkedPhoto, error) {
	if err := s.validatePhotoCount(len(photos)); err != nil {
		return nil, err
	}
	out := make([]checkedPhoto, 0, len(photos))
	for _, p := range photos {
		if p.Size > s.cfg.MaxPhotoBytes {
			return nil, invalid("File %q is too large. Maximum size is %dMB", p.Filename, s.cfg.MaxPhotoBytes>>20)
		}
		contentType, err := detectImage(p)
		if err != nil {
			return nil, invalid("File %q is not a supported image type", p.Filename)
		}
		out = append(out, checkedPhoto{Photo: p, contentType: contentType, ext: parse.Extension(p.Filename, "jpg")})
	}
	return out, nil
}

func (s *Service) validatePhotoURLs(urls []string) error {
	if err := s.validatePhotoCount(len(urls)); err != nil {
		return err
	}
	for _, u := range urls {
		if !s.blobs.Owns(u) {
			return invalid("Invalid photo URL")
		}
	}
	return nil
}

func newVehicle(req Request) *model.Vehicle {
	v := &model.Vehicle{
		OwnerName:    req.FullName,
		OwnerEmail:   req.Email,
		City:         req.City,
		State:        req.State,
		VehicleYear:  req.Year,
		VehicleMake:  req.Make,
		VehicleModel: req.Model,
		Photos:       []string{},
	}
	if req.Phone != "" {
		v.OwnerPhone = &req.Phone
	}
	if req.Description != "" {
		v.VehicleDescription = &req.Description
	}
	return v
}

// createWithEntryNumber inserts v, drawing a new random entry number whenever
// the previous one is taken.
func (s *Service) createWithEntryNumber(ctx context.Context, v *model.Vehicle) error {
	for attempt := 0; attempt < maxEntryAttempts; attempt++ {
		v.EntryNumber = s.entry()
		v.ProfileURL = parse.ProfileSlug(v.VehicleMake, v.VehicleModel, v.EntryNumber)
		err := s.store.CreateVehicle(ctx, v)
		if err == nil {
			return nil
		}
		if !errors.Is(err, store.ErrDuplicate) {
			return err
		}
		log.Printf("Entry number %d already taken, retrying", v.EntryNumber)
	}
	return fmt.Errorf("no free entry number after %d attempts", maxEntryAttempts)
}

// uploadPhotos stores each photo. On failure it returns the URLs uploaded so
// far together with the error.
func (s *Service) uploadPhotos(ctx context.Context, vehicleID int64, photos []checkedPhoto) ([]string, error) {
	urls := make([]string, 0, len(photos))
	for i, p := range photos {
		key := fmt.Sprintf("%s/vehicle-%d-%d-%d.%s", s.prefix, vehicleID, i+1, s.now().UnixMilli(), p.ext)
		obj, err := s.putPhoto(ctx, key, p)
		if err != nil {
			log.Printf("Error uploading photo %d for vehicle %d: %v", i+1, vehicleID, err)
			return urls, fmt.Errorf("%w: photo %d: %v", ErrPhotoUpload, i+1, err)
		}
		urls = append(urls, obj.URL)
	}
	return urls, nil
}

func (s *Service) putPhoto(ctx context.Context, key string, p checkedPhoto) (blob.Object, error) {
	rc, err := p.Open()
	if err != nil {
		return blob.Object{}, err
	}
	defer rc.Close()
	return s.blobs.Put(ctx, key, rc, p.Size, p.contentType, blob.PutOptions{})
}

// compensate removes uploaded photos and the vehicle row. Failures are logged;
// there is nothing further to roll back to.
func (s *Service) compensate(ctx context.Context, vehicleID int64, urls []string) {
	for _, u := range urls {
		if err := s.blobs.Delete(ctx, u); err != nil {
			log.Printf("Error deleting photo %s during rollback: %v", u, err)
		}
	}
	if err := s.store.DeleteVehicle(ctx, vehicleID); err != nil {
		log.Printf("Error deleting vehicle %d during rollback: %v", vehicleID, err)
		return
	}
	log.Printf("Rolled back registration of vehicle %d", vehicleID)
}

// Upload stores a single photo sent to the upload endpoint under a randomised
// name and returns where it landed.
func (s *Service) Upload(ctx context.Context, filename string, body io.Reader) (blob.Object, error) {
	if filename == "" {
		return blob.Object{}, invalid("Filename is required")
	}
	if !parse.ValidFilename(filename) {
		return blob.Object{}, invalid("Invalid filename format")
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return blob.Object{}, fmt.Errorf("read upload: %w", err)
	}
	if len(data) == 0 {
		return blob.Object{}, invalid("No file data received")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return blob.Object{}, invalid("File size exceeds %dMB limit", s.cfg.MaxUploadBytes>>20)
	}
	contentType, ok := imageType(mimetype.Detect(data))
	if !ok {
		return blob.Object{}, invalid("Only JPEG, PNG, and WebP images are allowed")
	}

	key := s.prefix + "/" + filename
	return s.blobs.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType, blob.PutOptions{RandomSuffix: true})
}

func detectImage(p Photo) (string, error) {
	rc, err := p.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	mt, err := mimetype.DetectReader(rc)
	if err != nil {
		return "", err
	}
	contentType, ok := imageType(mt)
	if !ok {
		return "", fmt.Errorf("unsupported type %s", mt.String())
	}
	return contentType, nil
}

func imageType(mt *mimetype.MIME) (string, bool) {
	for _, t := range allowedTypes {
		if mt.Is(t) {
			return t, true
		}
	}
	return "", false
}

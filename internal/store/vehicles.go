package store

import (
	"context"
	"fmt"
	"time"

	"carshow-backend/internal/model"
)

// CreateVehicle inserts a vehicle row. A clash on entry_number yields ErrDuplicate.
func (s *gormStore) CreateVehicle(ctx context.Context, v *model.Vehicle) error {
	if v.Photos == nil {
		v.Photos = []string{}
	}
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("create vehicle: %w", ErrDuplicate)
		}
		return fmt.Errorf("create vehicle: %w", err)
	}
	return nil
}

// DeleteVehicle hard-deletes a vehicle. Only used to roll back a failed registration.
func (s *gormStore) DeleteVehicle(ctx context.Context, id int64) error {
	if err := s.db.WithContext(ctx).Delete(&model.Vehicle{}, id).Error; err != nil {
		return fmt.Errorf("delete vehicle %d: %w", id, err)
	}
	return nil
}

// AttachPhotos stores the uploaded photo URLs on the vehicle.
func (s *gormStore) AttachPhotos(ctx context.Context, id int64, urls []string) error {
	v := model.Vehicle{UpdatedAt: time.Now()}
	v.SetPhotos(urls)
	res := s.db.WithContext(ctx).Model(&model.Vehicle{ID: id}).
		Select("photos", "image_url_1", "image_url_2", "image_url_3", "image_url_4", "image_url_5", "updated_at").
		Updates(&v)
	if res.Error != nil {
		return fmt.Errorf("attach photos to vehicle %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetVehicle fetches a vehicle by id.
func (s *gormStore) GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error) {
	var v model.Vehicle
	if err := s.db.WithContext(ctx).First(&v, id).Error; err != nil {
		return nil, notFound(err)
	}
	return &v, nil
}

// ListVehicles returns vehicles with their Best in Show vote counts.
func (s *gormStore) ListVehicles(ctx context.Context, filter VehicleFilter) ([]VehicleWithVotes, error) {
	q := s.db.WithContext(ctx).
		Model(&model.Vehicle{}).
		Select("vehicles.*, COUNT(votes.id) AS vote_count").
		Joins("LEFT JOIN votes ON votes.vehicle_id = vehicles.id AND votes.category_id = ?", model.BestInShowCategoryID).
		Group("vehicles.id")

	if filter.CheckedInOnly {
		q = q.Where("vehicles.checked_in = ?", true)
	}
	if filter.ByVotes {
		q = q.Order("vote_count DESC")
	}
	q = q.Order("vehicles.created_at DESC")
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var rows []VehicleWithVotes
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	return rows, nil
}

// CountCheckedIn counts vehicles marked as checked in.
func (s *gormStore) CountCheckedIn(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&model.Vehicle{}).Where("checked_in = ?", true).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count checked-in vehicles: %w", err)
	}
	return n, nil
}

// CheckInVehicle marks a vehicle present at the show.
func (s *gormStore) CheckInVehicle(ctx context.Context, id int64, at time.Time) (*model.Vehicle, error) {
	res := s.db.WithContext(ctx).Model(&model.Vehicle{ID: id}).
		Updates(map[string]any{"checked_in": true, "check_in_time": at})
	if res.Error != nil {
		return nil, fmt.Errorf("check in vehicle %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetVehicle(ctx, id)
}

// SetVehicleApproved flips the approved flag.
func (s *gormStore) SetVehicleApproved(ctx context.Context, id int64, approved bool) (*model.Vehicle, error) {
	res := s.db.WithContext(ctx).Model(&model.Vehicle{ID: id}).Update("approved", approved)
	if res.Error != nil {
		return nil, fmt.Errorf("approve vehicle %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetVehicle(ctx, id)
}

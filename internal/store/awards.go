package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"carshow-backend/internal/model"
)

// ListAwards returns stored admin awards with their vehicles, ordered by category.
func (s *gormStore) ListAwards(ctx context.Context, publishedOnly bool) ([]model.AdminAward, error) {
	q := s.db.WithContext(ctx).Preload("Vehicle").Order("category_name")
	if publishedOnly {
		q = q.Where("is_published = ? AND vehicle_id IS NOT NULL", true)
	}
	var awards []model.AdminAward
	if err := q.Find(&awards).Error; err != nil {
		return nil, fmt.Errorf("list admin awards: %w", err)
	}
	return awards, nil
}

// AssignAward creates or replaces the award for a category. A reassigned award
// goes back to unpublished.
func (s *gormStore) AssignAward(ctx context.Context, a AwardAssignment, now time.Time) error {
	awardedBy := a.AwardedBy
	vehicleID := a.VehicleID
	award := model.AdminAward{
		CategoryName: a.Category,
		VehicleID:    &vehicleID,
		AwardedBy:    &awardedBy,
		AwardedAt:    now,
		Notes:        a.Notes,
		IsPublished:  false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "category_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"vehicle_id", "awarded_by", "awarded_at", "notes", "is_published", "updated_at"}),
	}).Create(&award).Error
	if err != nil {
		return fmt.Errorf("assign award %q: %w", a.Category, err)
	}
	return nil
}

// PublishAward sets the publish flag on a category's award.
func (s *gormStore) PublishAward(ctx context.Context, category string, published bool, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.AdminAward{}).
		Where("category_name = ?", category).
		Updates(map[string]any{"is_published": published, "updated_at": now})
	if res.Error != nil {
		return fmt.Errorf("publish award %q: %w", category, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveAward clears the vehicle from a category's award.
func (s *gormStore) RemoveAward(ctx context.Context, category string, now time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.AdminAward{}).
		Where("category_name = ?", category).
		Updates(map[string]any{
			"vehicle_id":   nil,
			"awarded_by":   nil,
			"notes":        nil,
			"is_published": false,
			"awarded_at":   now,
			"updated_at":   now,
		})
	if res.Error != nil {
		return fmt.Errorf("remove award %q: %w", category, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

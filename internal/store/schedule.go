package store

import (
	"context"
	"fmt"
	"time"

	"carshow-backend/internal/model"
)

// GetSchedule loads the singleton voting schedule row.
func (s *gormStore) GetSchedule(ctx context.Context) (*model.VotingSchedule, error) {
	var sched model.VotingSchedule
	if err := s.db.WithContext(ctx).First(&sched, model.ScheduleID).Error; err != nil {
		return nil, notFound(err)
	}
	return &sched, nil
}

// UpdateSchedule applies an admin change to the schedule and returns the new row.
// Publication is one-way: nothing here can clear results_published.
func (s *gormStore) UpdateSchedule(ctx context.Context, upd ScheduleUpdate, now time.Time) (*model.VotingSchedule, error) {
	changes := map[string]any{"updated_at": now}
	if upd.VotingOpen != nil {
		changes["voting_open"] = *upd.VotingOpen
	}
	if upd.PublishNow {
		changes["results_published"] = true
	}
	if upd.ClearPublishTime {
		changes["results_publish_time"] = nil
	} else if upd.ResultsPublishTime != nil {
		changes["results_publish_time"] = upd.ResultsPublishTime.UTC()
	}
	if upd.VotingStartTime != nil {
		changes["voting_start_time"] = upd.VotingStartTime.UTC()
	}
	if upd.VotingEndTime != nil {
		changes["voting_end_time"] = upd.VotingEndTime.UTC()
	}

	res := s.db.WithContext(ctx).Model(&model.VotingSchedule{ID: model.ScheduleID}).Updates(changes)
	if res.Error != nil {
		return nil, fmt.Errorf("update voting schedule: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.GetSchedule(ctx)
}

// PromoteScheduledPublication flips results_published once the publish time has
// passed. It reports whether this call performed the transition.
func (s *gormStore) PromoteScheduledPublication(ctx context.Context, now time.Time) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.VotingSchedule{}).
		Where("id = ? AND results_published = ? AND results_publish_time IS NOT NULL AND results_publish_time <= ?",
			model.ScheduleID, false, now.UTC()).
		Updates(map[string]any{"results_published": true, "updated_at": now})
	if res.Error != nil {
		return false, fmt.Errorf("promote scheduled publication: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

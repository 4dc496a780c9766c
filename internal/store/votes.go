package store

import (
	"context"
	"fmt"
	"time"

	"carshow-backend/internal/model"
)

// voteRow is the flat shape of a vote joined with its vehicle.
type voteRow struct {
	ID           int64
	VehicleID    int64
	VoterIP      string
	VoterSession string
	CategoryID   int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	EntryNumber  *int
	Make         *string
	Model        *string
	Year         *int
	FullName     *string
	City         *string
	State        *string
}

func (r voteRow) toVote() model.VoteWithVehicle {
	out := model.VoteWithVehicle{
		Vote: model.Vote{
			ID:           r.ID,
			VehicleID:    r.VehicleID,
			VoterIP:      r.VoterIP,
			VoterSession: r.VoterSession,
			CategoryID:   r.CategoryID,
			CreatedAt:    r.CreatedAt,
			UpdatedAt:    r.UpdatedAt,
		},
	}
	// A NULL entry number means the vehicle row is gone.
	if r.EntryNumber != nil {
		out.Vehicle = &model.VehicleSummary{
			ID:          r.VehicleID,
			EntryNumber: *r.EntryNumber,
			Make:        deref(r.Make),
			Model:       deref(r.Model),
			Year:        derefInt(r.Year),
			FullName:    deref(r.FullName),
			City:        deref(r.City),
			State:       deref(r.State),
		}
	}
	return out
}

const voteSelect = "v.id, v.vehicle_id, v.voter_ip, v.voter_session, v.category_id, v.created_at, v.updated_at, " +
	"vh.entry_number, vh.vehicle_make AS make, vh.vehicle_model AS model, vh.vehicle_year AS year, " +
	"vh.owner_name AS full_name, vh.city, vh.state"

// FindVoteByVoter returns the single vote cast by a voter fingerprint.
func (s *gormStore) FindVoteByVoter(ctx context.Context, voter string) (*model.VoteWithVehicle, error) {
	var rows []voteRow
	err := s.db.WithContext(ctx).
		Table("votes AS v").
		Select(voteSelect).
		Joins("LEFT JOIN vehicles AS vh ON v.vehicle_id = vh.id").
		Where("v.voter_session = ?", voter).
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find vote by voter: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	vote := rows[0].toVote()
	return &vote, nil
}

// InsertVote creates a vote. A second vote from the same voter yields ErrDuplicate.
func (s *gormStore) InsertVote(ctx context.Context, v *model.Vote) error {
	if err := s.db.WithContext(ctx).Create(v).Error; err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("insert vote: %w", ErrDuplicate)
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// CountVotes counts votes for a vehicle in a category.
func (s *gormStore) CountVotes(ctx context.Context, vehicleID, categoryID int64) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Vote{}).
		Where("vehicle_id = ? AND category_id = ?", vehicleID, categoryID).
		Count(&n).Error
	if err != nil {
		return 0, fmt.Errorf("count votes for vehicle %d: %w", vehicleID, err)
	}
	return n, nil
}

// ListVotes returns every vote in a category, newest first.
func (s *gormStore) ListVotes(ctx context.Context, categoryID int64) ([]model.VoteWithVehicle, error) {
	var rows []voteRow
	err := s.db.WithContext(ctx).
		Table("votes AS v").
		Select(voteSelect).
		Joins("LEFT JOIN vehicles AS vh ON v.vehicle_id = vh.id").
		Where("v.category_id = ?", categoryID).
		Order("v.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list votes: %w", err)
	}
	votes := make([]model.VoteWithVehicle, 0, len(rows))
	for _, r := range rows {
		votes = append(votes, r.toVote())
	}
	return votes, nil
}

// TallyVotes aggregates votes per vehicle, most votes first.
func (s *gormStore) TallyVotes(ctx context.Context, categoryID int64) ([]Tally, error) {
	var rows []Tally
	err := s.db.WithContext(ctx).
		Table("votes AS v").
		Select("vh.id AS vehicle_id, vh.entry_number, vh.vehicle_make AS make, vh.vehicle_model AS model, "+
			"vh.vehicle_year AS year, vh.owner_name, COUNT(v.id) AS votes").
		Joins("JOIN vehicles AS vh ON v.vehicle_id = vh.id").
		Where("v.category_id = ?", categoryID).
		Group("vh.id, vh.entry_number, vh.vehicle_make, vh.vehicle_model, vh.vehicle_year, vh.owner_name").
		Order("votes DESC, vh.entry_number ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("tally votes: %w", err)
	}
	return rows, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefInt(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

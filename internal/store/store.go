package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"carshow-backend/internal/model"
)

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a write violates a uniqueness constraint.
	ErrDuplicate = errors.New("duplicate key")
)

// Store defines the interface for all database operations.
type Store interface {
	CreateVehicle(ctx context.Context, v *model.Vehicle) error
	DeleteVehicle(ctx context.Context, id int64) error
	AttachPhotos(ctx context.Context, id int64, urls []string) error
	GetVehicle(ctx context.Context, id int64) (*model.Vehicle, error)
	ListVehicles(ctx context.Context, filter VehicleFilter) ([]VehicleWithVotes, error)
	CountCheckedIn(ctx context.Context) (int64, error)
	CheckInVehicle(ctx context.Context, id int64, at time.Time) (*model.Vehicle, error)
	SetVehicleApproved(ctx context.Context, id int64, approved bool) (*model.Vehicle, error)

	FindVoteByVoter(ctx context.Context, voter string) (*model.VoteWithVehicle, error)
	InsertVote(ctx context.Context, v *model.Vote) error
	CountVotes(ctx context.Context, vehicleID, categoryID int64) (int64, error)
	ListVotes(ctx context.Context, categoryID int64) ([]model.VoteWithVehicle, error)
	TallyVotes(ctx context.Context, categoryID int64) ([]Tally, error)

	GetSchedule(ctx context.Context) (*model.VotingSchedule, error)
	UpdateSchedule(ctx context.Context, upd ScheduleUpdate, now time.Time) (*model.VotingSchedule, error)
	PromoteScheduledPublication(ctx context.Context, now time.Time) (bool, error)

	ListAwards(ctx context.Context, publishedOnly bool) ([]model.AdminAward, error)
	AssignAward(ctx context.Context, a AwardAssignment, now time.Time) error
	PublishAward(ctx context.Context, category string, published bool, now time.Time) error
	RemoveAward(ctx context.Context, category string, now time.Time) error

	UpsertSubscription(ctx context.Context, sub *model.PushSubscription) error
	DeleteSubscription(ctx context.Context, endpoint string) error
	GetSubscription(ctx context.Context, endpoint string) (*model.PushSubscription, error)
	ListSubscriptions(ctx context.Context) ([]model.PushSubscription, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// IsUniqueViolation reports whether err came from a uniqueness constraint,
// for both the postgres and sqlite drivers.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrDuplicate) || errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key")
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

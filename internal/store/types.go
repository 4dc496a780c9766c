package store

import (
	"time"

	"carshow-backend/internal/model"
)

// VehicleFilter narrows ListVehicles.
type VehicleFilter struct {
	CheckedInOnly bool
	// ByVotes orders by vote count before creation time.
	ByVotes bool
	Limit   int
}

// VehicleWithVotes is a vehicle together with its Best in Show vote count.
type VehicleWithVotes struct {
	model.Vehicle `gorm:"embedded"`
	VoteCount     int64 `gorm:"column:vote_count"`
}

// Tally is one row of the results table.
type Tally struct {
	VehicleID   int64  `json:"vehicle_id"`
	EntryNumber int    `json:"entry_number"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	OwnerName   string `json:"owner_name"`
	Votes       int64  `json:"votes"`
}

// ScheduleUpdate carries an admin change to the voting schedule.
// Nil fields are left untouched.
type ScheduleUpdate struct {
	VotingOpen         *bool
	PublishNow         bool
	ResultsPublishTime *time.Time
	ClearPublishTime   bool
	VotingStartTime    *time.Time
	VotingEndTime      *time.Time
}

// AwardAssignment assigns a vehicle to a special award category.
type AwardAssignment struct {
	Category  string
	VehicleID int64
	AwardedBy string
	Notes     *string
}

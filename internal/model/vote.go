package model

import "time"

// BestInShowCategoryID is the only category voters can cast a ballot for.
const BestInShowCategoryID int64 = 25

// Vote is a single voter's Best in Show ballot.
type Vote struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	VehicleID    int64     `gorm:"not null;index" json:"vehicle_id"`
	VoterIP      string    `gorm:"column:voter_ip;size:255;not null" json:"-"`
	VoterSession string    `gorm:"size:255;not null;uniqueIndex:idx_votes_voter_session" json:"-"`
	CategoryID   int64     `gorm:"not null;index" json:"category_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VehicleSummary holds the vehicle fields shown alongside a vote.
type VehicleSummary struct {
	ID          int64  `json:"id"`
	EntryNumber int    `json:"entry_number"`
	Make        string `json:"make"`
	Model       string `json:"model"`
	Year        int    `json:"year"`
	FullName    string `json:"full_name"`
	City        string `json:"city,omitempty"`
	State       string `json:"state,omitempty"`
}

// VoteWithVehicle is a vote joined with its vehicle's display fields.
type VoteWithVehicle struct {
	Vote
	Vehicle *VehicleSummary `json:"vehicle,omitempty"`
}

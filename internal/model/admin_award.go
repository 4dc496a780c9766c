package model

import "time"

// SpecialAwardCategories lists the categories judges can assign by hand.
var SpecialAwardCategories = []string{
	"Most Original",
	"Least Original",
	"Rustiest Relic",
	"XOverland - Spirit of Adventure Award",
	"Best in Show",
}

// IsSpecialAwardCategory reports whether name is one of SpecialAwardCategories.
func IsSpecialAwardCategory(name string) bool {
	for _, c := range SpecialAwardCategories {
		if c == name {
			return true
		}
	}
	return false
}

// AdminAward is a judge-assigned award, independent of the public vote.
type AdminAward struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	CategoryName string    `gorm:"size:128;not null;uniqueIndex" json:"category_name"`
	VehicleID    *int64    `gorm:"index" json:"vehicle_id"`
	AwardedBy    *string   `gorm:"size:255" json:"awarded_by"`
	AwardedAt    time.Time `json:"awarded_at"`
	Notes        *string   `json:"notes"`
	IsPublished  bool      `gorm:"not null;default:false" json:"is_published"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Associations
	Vehicle *Vehicle `gorm:"constraint:OnDelete:SET NULL" json:"vehicle,omitempty"`
}

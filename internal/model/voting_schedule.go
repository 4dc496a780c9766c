package model

import "time"

// ScheduleID is the primary key of the single voting_schedule row.
const ScheduleID int64 = 1

// VotingSchedule holds the event-wide voting and publication settings.
// Exactly one row exists, keyed by ScheduleID.
type VotingSchedule struct {
	ID                 int64      `gorm:"primaryKey;autoIncrement:false" json:"id"`
	VotingOpen         bool       `gorm:"not null;default:false" json:"voting_open"`
	ResultsPublished   bool       `gorm:"not null;default:false" json:"results_published"`
	ResultsPublishTime *time.Time `json:"results_publish_time"`
	VotingStartTime    *time.Time `json:"voting_start_time"`
	VotingEndTime      *time.Time `json:"voting_end_time"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName pins the table name to the singular form used by the schema.
func (VotingSchedule) TableName() string {
	return "voting_schedule"
}

package models

import "time"

// DateLayout is the storage format of calendar days.
const DateLayout = "2006-01-02"

// DailyAssignment is one reto given to a user for one calendar day. Rows are
// hard-deleted so that regeneration can reuse the unique key.
type DailyAssignment struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"not null;uniqueIndex:idx_assignment_user_date_reto,priority:1" json:"user_id"`
	ChallengeDate string     `gorm:"size:10;not null;uniqueIndex:idx_assignment_user_date_reto,priority:2;index" json:"challenge_date"`
	RetoID        uint       `gorm:"not null;uniqueIndex:idx_assignment_user_date_reto,priority:3" json:"reto_id"`
	ProgressValue float64    `gorm:"not null;default:0" json:"progress_value"`
	IsCompleted   bool       `gorm:"not null;default:false" json:"is_completed"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Reto          *Reto      `json:"reto,omitempty"`
}

// DailyGeneration claims the daily set of one user for one day. Generators
// insert and lock the row before looking at the assignments, so writers for
// the same user and day run one after another.
type DailyGeneration struct {
	UserID        uint   `gorm:"primaryKey;autoIncrement:false"`
	ChallengeDate string `gorm:"primaryKey;size:10"`
	CreatedAt     time.Time
}

// Achievement (logro) is awarded at most once per assignment.
type Achievement struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	UserID       uint      `gorm:"not null;index" json:"user_id"`
	AssignmentID uint      `gorm:"not null;uniqueIndex" json:"assignment_id"`
	RetoID       uint      `gorm:"not null" json:"reto_id"`
	AwardedAt    time.Time `json:"awarded_at"`
	Reto         *Reto     `json:"reto,omitempty"`
}

// Enrollment is an open-ended participation of a user in a catalog reto,
// tracked apart from the daily sets.
type Enrollment struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_reto,priority:1" json:"user_id"`
	RetoID      uint       `gorm:"not null;uniqueIndex:idx_enrollment_user_reto,priority:2" json:"reto_id"`
	Progress    float64    `gorm:"not null;default:0" json:"progress"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Reto        *Reto      `json:"reto,omitempty"`
}

type CriterionCompletion struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	AssignmentID  uint      `gorm:"not null;uniqueIndex:idx_completion_assignment_criterion,priority:1" json:"assignment_id"`
	CriterionID   uint      `gorm:"not null;uniqueIndex:idx_completion_assignment_criterion,priority:2" json:"criterion_id"`
	Completed     bool      `gorm:"not null;default:false" json:"completed"`
	FirstRecorded time.Time `json:"first_recorded"`
	LastModified  time.Time `json:"last_modified"`
}

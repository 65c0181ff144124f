package models

import (
	"time"

	"gorm.io/gorm"
)

// ProgressRecord is an append-only log entry for a habit or a personal
// challenge. Only Value and Notes change after creation.
type ProgressRecord struct {
	gorm.Model
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	HabitID     *uint     `gorm:"index" json:"habit_id,omitempty"`
	ChallengeID *uint     `gorm:"index" json:"challenge_id,omitempty"`
	Date        time.Time `gorm:"not null;index" json:"date"`
	Value       float64   `gorm:"default:1" json:"value"`
	Notes       string    `gorm:"type:text" json:"notes"`
}

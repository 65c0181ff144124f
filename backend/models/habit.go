package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type HabitType string

const (
	HabitDaily   HabitType = "daily"
	HabitWeekly  HabitType = "weekly"
	HabitMonthly HabitType = "monthly"
)

type Habit struct {
	gorm.Model
	UserID      uint      `gorm:"index;not null" json:"user_id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	HabitType   HabitType `gorm:"size:16;default:daily" json:"habit_type"`
	TargetValue float64   `gorm:"default:1" json:"target_value"`
	Unit        string    `gorm:"size:32" json:"unit"`
	Icon        string    `gorm:"size:32" json:"icon"`
	Color       string    `gorm:"size:16" json:"color"`
	IsActive    bool      `json:"is_active"`
}

type ChallengeType string

const (
	ChallengeSimple    ChallengeType = "simple"
	ChallengeProgress  ChallengeType = "progress"
	ChallengeChecklist ChallengeType = "checklist"
)

type ChallengeStatus string

const (
	StatusPending    ChallengeStatus = "pending"
	StatusInProgress ChallengeStatus = "in_progress"
	StatusCompleted  ChallengeStatus = "completed"
	StatusFailed     ChallengeStatus = "failed"
)

// Challenge is a personal challenge created by its owner.
type Challenge struct {
	gorm.Model
	UserID         uint            `gorm:"index;not null" json:"user_id"`
	Title          string          `gorm:"size:200;not null" json:"title"`
	Description    string          `gorm:"type:text" json:"description"`
	ChallengeType  ChallengeType   `gorm:"size:16;default:simple" json:"challenge_type"`
	Status         ChallengeStatus `gorm:"size:16;default:pending" json:"status"`
	TargetValue    *float64        `json:"target_value,omitempty"`
	CurrentValue   float64         `gorm:"default:0" json:"current_value"`
	Unit           string          `gorm:"size:32" json:"unit"`
	Icon           string          `gorm:"size:32" json:"icon"`
	Color          string          `gorm:"size:16" json:"color"`
	ChecklistItems datatypes.JSON  `json:"checklist_items,omitempty"`
	StartDate      *time.Time      `json:"start_date,omitempty"`
	EndDate        *time.Time      `json:"end_date,omitempty"`
	CompletedAt    *time.Time      `json:"completed_at,omitempty"`
}

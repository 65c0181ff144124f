package models

import (
	"time"

	"gorm.io/datatypes"
)

// Patch structs carry optional fields of a partial update. A nil field is
// left unchanged by Apply.

type UserPatch struct {
	Name      *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	BirthDate *time.Time `json:"birth_date"`
	Phone     *string    `json:"phone" validate:"omitempty,max=32"`
	Password  *string    `json:"password" validate:"omitempty,min=6"`
}

// Apply copies the profile fields. Password is hashed by the caller.
func (p UserPatch) Apply(u *User) {
	setIf(&u.Name, p.Name)
	setIf(&u.Email, p.Email)
	setIf(&u.Phone, p.Phone)
	if p.BirthDate != nil {
		d := *p.BirthDate
		u.BirthDate = &d
	}
}

type HabitPatch struct {
	Name        *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string    `json:"description"`
	HabitType   *HabitType `json:"habit_type" validate:"omitempty,oneof=daily weekly monthly"`
	TargetValue *float64   `json:"target_value" validate:"omitempty,gte=0"`
	Unit        *string    `json:"unit"`
	Icon        *string    `json:"icon"`
	Color       *string    `json:"color"`
	IsActive    *bool      `json:"is_active"`
}

func (p HabitPatch) Apply(h *Habit) {
	setIf(&h.Name, p.Name)
	setIf(&h.Description, p.Description)
	setIf(&h.HabitType, p.HabitType)
	setIf(&h.TargetValue, p.TargetValue)
	setIf(&h.Unit, p.Unit)
	setIf(&h.Icon, p.Icon)
	setIf(&h.Color, p.Color)
	setIf(&h.IsActive, p.IsActive)
}

type ChallengePatch struct {
	Title          *string          `json:"title" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description"`
	ChallengeType  *ChallengeType   `json:"challenge_type" validate:"omitempty,oneof=simple progress checklist"`
	Status         *ChallengeStatus `json:"status" validate:"omitempty,oneof=pending in_progress completed failed"`
	TargetValue    *float64         `json:"target_value" validate:"omitempty,gte=0"`
	CurrentValue   *float64         `json:"current_value" validate:"omitempty,gte=0"`
	Unit           *string          `json:"unit"`
	Icon           *string          `json:"icon"`
	Color          *string          `json:"color"`
	ChecklistItems *datatypes.JSON  `json:"checklist_items"`
	StartDate      *time.Time       `json:"start_date"`
	EndDate        *time.Time       `json:"end_date"`
}

func (p ChallengePatch) Apply(c *Challenge) {
	setIf(&c.Title, p.Title)
	setIf(&c.Description, p.Description)
	setIf(&c.ChallengeType, p.ChallengeType)
	setIf(&c.Status, p.Status)
	setIf(&c.CurrentValue, p.CurrentValue)
	setIf(&c.Unit, p.Unit)
	setIf(&c.Icon, p.Icon)
	setIf(&c.Color, p.Color)
	setIf(&c.ChecklistItems, p.ChecklistItems)
	if p.TargetValue != nil {
		v := *p.TargetValue
		c.TargetValue = &v
	}
	if p.StartDate != nil {
		v := *p.StartDate
		c.StartDate = &v
	}
	if p.EndDate != nil {
		v := *p.EndDate
		c.EndDate = &v
	}
}

type RetoPatch struct {
	Name           *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description    *string   `json:"description"`
	Type           *RetoType `json:"type" validate:"omitempty,gte=1,lte=3"`
	Category       *Category `json:"category" validate:"omitempty,oneof=SOCIAL FISICA INTELECTUAL"`
	IsActive       *bool     `json:"is_active"`
	AssignmentDate *string   `json:"assignment_date" validate:"omitempty,datetime=2006-01-02"`
	RewardPoints   *int      `json:"reward_points" validate:"omitempty,gte=0"`
}

func (p RetoPatch) Apply(r *Reto) {
	setIf(&r.Name, p.Name)
	setIf(&r.Description, p.Description)
	setIf(&r.Type, p.Type)
	setIf(&r.Category, p.Category)
	setIf(&r.IsActive, p.IsActive)
	setIf(&r.AssignmentDate, p.AssignmentDate)
	setIf(&r.RewardPoints, p.RewardPoints)
}

type TemplatePatch struct {
	Name         *string   `json:"name" validate:"omitempty,min=1,max=100"`
	Description  *string   `json:"description"`
	Type         *RetoType `json:"type" validate:"omitempty,gte=1,lte=3"`
	Category     *Category `json:"category" validate:"omitempty,oneof=SOCIAL FISICA INTELECTUAL"`
	Difficulty   *int      `json:"difficulty" validate:"omitempty,gte=1,lte=3"`
	RewardPoints *int      `json:"reward_points" validate:"omitempty,gte=0"`
	IsActive     *bool     `json:"is_active"`
}

func (p TemplatePatch) Apply(t *ChallengeTemplate) {
	setIf(&t.Name, p.Name)
	setIf(&t.Description, p.Description)
	setIf(&t.Type, p.Type)
	setIf(&t.Category, p.Category)
	setIf(&t.Difficulty, p.Difficulty)
	setIf(&t.RewardPoints, p.RewardPoints)
	setIf(&t.IsActive, p.IsActive)
}

type ProgressRecordPatch struct {
	Value *float64 `json:"value" validate:"omitempty,gte=0"`
	Notes *string  `json:"notes"`
}

func (p ProgressRecordPatch) Apply(r *ProgressRecord) {
	setIf(&r.Value, p.Value)
	setIf(&r.Notes, p.Notes)
}

type CriterionPatch struct {
	Description      *string `json:"description" validate:"omitempty,min=1,max=255"`
	EstimatedMinutes *int    `json:"estimated_minutes" validate:"omitempty,gte=0"`
}

func (p CriterionPatch) Apply(c *Criterion) {
	setIf(&c.Description, p.Description)
	setIf(&c.EstimatedMinutes, p.EstimatedMinutes)
}

// AssignmentPatch is the only mutable surface of a daily assignment.
// Completion itself is applied by the assignment service.
type AssignmentPatch struct {
	ProgressValue *float64 `json:"progress_value"`
	IsCompleted   *bool    `json:"is_completed"`
}

func (p AssignmentPatch) Apply(a *DailyAssignment) {
	setIf(&a.ProgressValue, p.ProgressValue)
	setIf(&a.IsCompleted, p.IsCompleted)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

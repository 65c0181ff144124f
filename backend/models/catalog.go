package models

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// Category partitions the reto and template pools.
type Category string

const (
	CategorySocial      Category = "SOCIAL"
	CategoryFisica      Category = "FISICA"
	CategoryIntelectual Category = "INTELECTUAL"
)

// Categories lists the categories in generation order.
var Categories = []Category{CategorySocial, CategoryFisica, CategoryIntelectual}

// ParseCategory accepts the category names case-insensitively. PHYSICAL and
// INTELLECTUAL are accepted as aliases.
func ParseCategory(s string) (Category, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "SOCIAL":
		return CategorySocial, nil
	case "FISICA", "PHYSICAL":
		return CategoryFisica, nil
	case "INTELECTUAL", "INTELLECTUAL":
		return CategoryIntelectual, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// RetoType mirrors the numeric type column of the catalog.
type RetoType int

const (
	RetoTypeSimple    RetoType = 1
	RetoTypeProgress  RetoType = 2
	RetoTypeChecklist RetoType = 3
)

type ChallengeTemplate struct {
	gorm.Model
	Name         string   `gorm:"size:100;not null" json:"name"`
	Description  string   `gorm:"type:text" json:"description"`
	Type         RetoType `gorm:"default:1" json:"type"`
	Category     Category `gorm:"size:20;index;not null" json:"category"`
	Difficulty   int      `gorm:"default:1" json:"difficulty"` // 1-3
	RewardPoints int      `gorm:"default:10" json:"reward_points"`
	IsActive     bool     `gorm:"index" json:"is_active"`
}

type Reto struct {
	gorm.Model
	Name           string      `gorm:"size:100;not null" json:"name"`
	Description    string      `gorm:"type:text" json:"description"`
	Type           RetoType    `gorm:"default:1" json:"type"`
	Category       Category    `gorm:"size:20;index;not null" json:"category"`
	IsActive       bool        `gorm:"index" json:"is_active"`
	AssignmentDate string      `gorm:"size:10" json:"assignment_date,omitempty"`
	RewardPoints   int         `gorm:"default:10" json:"reward_points"`
	TemplateID     *uint       `gorm:"index" json:"template_id,omitempty"`
	Criteria       []Criterion `json:"criteria,omitempty"`
}

type Criterion struct {
	gorm.Model
	RetoID           uint   `gorm:"index;not null" json:"reto_id"`
	Description      string `gorm:"size:255;not null" json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

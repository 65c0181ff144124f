package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	gorm.Model
	Name         string     `gorm:"size:100" json:"name"`
	Email        string     `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	BirthDate    *time.Time `json:"birth_date,omitempty"`
	Phone        string     `gorm:"size:32" json:"phone,omitempty"`
	Role         string     `gorm:"size:16;default:user" json:"role"` // user, admin
	IsActive     bool       `json:"is_active"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type LoginHistory struct {
	gorm.Model
	UserID    uint      `gorm:"index" json:"user_id"`
	LoginTime time.Time `json:"login_time"`
	IP        string    `gorm:"size:64" json:"ip,omitempty"`
}

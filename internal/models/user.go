package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an account on the platform.
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Email     string         `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password  string         `json:"-" gorm:"type:varchar(255)"` // bcrypt hash, never serialized
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

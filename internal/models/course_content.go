package models

import (
	"time"

	"gorm.io/gorm"
)

// Module is an ordered section of a course. Rows cascade-delete with their
// parent course.
type Module struct {
	ID          string  `json:"id" gorm:"primaryKey;type:varchar(36)"`
	CourseID    string  `json:"course_id" gorm:"index;type:varchar(36)"`
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	// Display position within the course; not guaranteed contiguous.
	Order int `json:"order" gorm:"column:sort_order"`

	Lessons []Lesson `json:"lessons,omitempty" gorm:"foreignKey:ModuleID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// Lesson is a single unit of content within a module.
type Lesson struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	ModuleID    string `json:"module_id" gorm:"index;type:varchar(36)"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
	// Display position within the module.
	Order int    `json:"order" gorm:"column:sort_order"`
	Type  string `json:"type" gorm:"type:varchar(16)"` // e.g. video, article, quiz

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

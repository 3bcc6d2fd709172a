package models

import (
	"time"

	"gorm.io/gorm"
)

// Product type discriminator values, stored in the "type" column.
const (
	ProductTypeCourse = "Course"
	ProductTypeBook   = "Book"
)

// Supported currencies for product prices.
const (
	CurrencySATS = "SATS"
	CurrencyUSD  = "USD"
)

// ValidCurrency reports whether s is one of the supported currency codes.
func ValidCurrency(s string) bool {
	return s == CurrencySATS || s == CurrencyUSD
}

// Product is a single-table polymorphic entity: every row is either a course
// or a book, selected by the Type discriminator. Subtype columns are nullable
// and only meaningful for the matching type.
type Product struct {
	ID            string  `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Title         string  `json:"title" validate:"required,max=200"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" validate:"gte=0"`
	Currency      string  `json:"currency" gorm:"type:varchar(8);default:SATS"`
	CreatorID     string  `json:"creator_id" gorm:"index;type:varchar(36)"`
	IsPublished   bool    `json:"is_published"`
	CoverImageURL *string `json:"cover_image_url"`
	Type          string  `json:"type" gorm:"index;type:varchar(16)"`

	// Course-only columns.
	Level *string `json:"level,omitempty"`

	// Book-only columns.
	Author      *string `json:"author,omitempty"`
	Language    *string `json:"language,omitempty"`
	Format      *string `json:"format,omitempty"`
	DownloadURL *string `json:"download_url,omitempty"`
	PreviewURL  *string `json:"preview_url,omitempty"`

	// Deleting a user must never cascade into their products.
	Creator *User `json:"-" gorm:"foreignKey:CreatorID;constraint:OnDelete:RESTRICT"`
	// Deleting a course takes its modules (and lessons) with it.
	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// IsCourse reports whether the row carries course fields.
func (p *Product) IsCourse() bool { return p.Type == ProductTypeCourse }

// IsBook reports whether the row carries book fields.
func (p *Product) IsBook() bool { return p.Type == ProductTypeBook }

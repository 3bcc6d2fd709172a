package repositories

import (
	"math"

	"academy/internal/models"
)

// Pagination bounds applied by Normalize.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// FilterParams narrows and paginates product listings. Absent (nil/zero)
// filters impose no constraint.
type FilterParams struct {
	SearchTerm         string
	Page               int
	PageSize           int
	IncludeUnpublished bool
	ProductType        *string
	Currency           *string
	MinPrice           *float64
	MaxPrice           *float64
	CreatorID          *string
}

// Normalize clamps page and page size into usable bounds. Out-of-range values
// are clamped rather than rejected so listing endpoints never fail on odd
// pagination input.
func (f *FilterParams) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = DefaultPageSize
	}
	if f.PageSize > MaxPageSize {
		f.PageSize = MaxPageSize
	}
}

// Page is one page of a filtered listing plus pagination totals.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPage derives the page-count totals for a result page.
func NewPage[T any](items []T, total int64, page, pageSize int) *Page[T] {
	return &Page[T]{
		Items:      items,
		TotalItems: total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int(math.Ceil(float64(total) / float64(pageSize))),
	}
}

// ProductRepository defines the interface for catalog data access. The
// products table is polymorphic: generic operations see every product, the
// course/book operations constrain the type discriminator.
type ProductRepository interface {
	GetByID(id string) (*models.Product, error)
	GetAll(filter FilterParams) (*Page[models.Product], error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	// Delete soft-deletes the product, forcing it unpublished. For courses it
	// recursively soft-deletes the owned modules and lessons.
	Delete(id string) error

	GetCourseByID(id string, includeModules, includeLessons bool) (*models.Product, error)
	GetBookByID(id string) (*models.Product, error)
	// CountCourseChildren counts the active modules and lessons of a course.
	CountCourseChildren(courseID string) (modules int64, lessons int64, err error)

	CreateModule(module *models.Module) error
	CreateLesson(lesson *models.Lesson) error
	ListModules(courseID string) ([]models.Module, error)
}

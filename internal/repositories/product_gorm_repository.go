package repositories

import (
	"errors"
	"fmt"
	"strings"

	"academy/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// GetByID retrieves a single active product of any type.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// GetAll retrieves one page of products matching the filter.
func (r *GORMProductRepository) GetAll(filter FilterParams) (*Page[models.Product], error) {
	filter.Normalize()

	query := applyFilters(r.db.Model(&models.Product{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := query.
		Order("title ASC, id ASC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}

	return NewPage(products, total, filter.Page, filter.PageSize), nil
}

// Create creates a new product row. The caller sets the type discriminator
// together with the subtype fields.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	// Save updates all fields, including zero values; partial-update
	// semantics are resolved at the service layer before this call.
	res := r.db.Omit("Creator", "Modules").Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete soft-deletes a product, forcing it unpublished. Courses take their
// modules and lessons down with them; the cascade is an explicit walk so the
// children become invisible through the same soft-delete mechanism.
func (r *GORMProductRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return fmt.Errorf("failed to load product %s: %w", id, err)
		}

		if err := tx.Model(&product).Update("is_published", false).Error; err != nil {
			return fmt.Errorf("failed to unpublish product %s: %w", id, err)
		}

		if product.IsCourse() {
			var moduleIDs []string
			if err := tx.Model(&models.Module{}).Where("course_id = ?", id).Pluck("id", &moduleIDs).Error; err != nil {
				return fmt.Errorf("failed to list modules of course %s: %w", id, err)
			}
			if len(moduleIDs) > 0 {
				if err := tx.Where("module_id IN ?", moduleIDs).Delete(&models.Lesson{}).Error; err != nil {
					return fmt.Errorf("failed to delete lessons of course %s: %w", id, err)
				}
				if err := tx.Where("id IN ?", moduleIDs).Delete(&models.Module{}).Error; err != nil {
					return fmt.Errorf("failed to delete modules of course %s: %w", id, err)
				}
			}
		}

		if err := tx.Delete(&product).Error; err != nil {
			return fmt.Errorf("failed to delete product %s: %w", id, err)
		}
		return nil
	})
}

// GetCourseByID retrieves an active course, optionally preloading its active
// modules and lessons in display order.
func (r *GORMProductRepository) GetCourseByID(id string, includeModules, includeLessons bool) (*models.Product, error) {
	query := r.db.Where("type = ?", models.ProductTypeCourse)

	if includeModules {
		query = query.Preload("Modules", func(db *gorm.DB) *gorm.DB {
			return db.Order("sort_order ASC, created_at ASC")
		})
		if includeLessons {
			query = query.Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB {
				return db.Order("sort_order ASC, created_at ASC")
			})
		}
	}

	var course models.Product
	if err := query.First(&course, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get course by ID %s: %w", id, err)
	}
	return &course, nil
}

// GetBookByID retrieves an active book.
func (r *GORMProductRepository) GetBookByID(id string) (*models.Product, error) {
	var book models.Product
	err := r.db.Where("type = ?", models.ProductTypeBook).First(&book, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get book by ID %s: %w", id, err)
	}
	return &book, nil
}

// CountCourseChildren counts the active modules and lessons of a course with
// dedicated queries, so DTO counts never depend on what happened to be
// preloaded.
func (r *GORMProductRepository) CountCourseChildren(courseID string) (int64, int64, error) {
	var moduleCount int64
	if err := r.db.Model(&models.Module{}).Where("course_id = ?", courseID).Count(&moduleCount).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count modules of course %s: %w", courseID, err)
	}

	var lessonCount int64
	moduleIDs := r.db.Model(&models.Module{}).Select("id").Where("course_id = ?", courseID)
	if err := r.db.Model(&models.Lesson{}).Where("module_id IN (?)", moduleIDs).Count(&lessonCount).Error; err != nil {
		return 0, 0, fmt.Errorf("failed to count lessons of course %s: %w", courseID, err)
	}

	return moduleCount, lessonCount, nil
}

// CreateModule creates a new course module.
func (r *GORMProductRepository) CreateModule(module *models.Module) error {
	if module.ID == "" {
		module.ID = uuid.New().String()
	}
	if err := r.db.Create(module).Error; err != nil {
		return fmt.Errorf("failed to create module: %w", err)
	}
	return nil
}

// CreateLesson creates a new lesson inside a module.
func (r *GORMProductRepository) CreateLesson(lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	if err := r.db.Create(lesson).Error; err != nil {
		return fmt.Errorf("failed to create lesson: %w", err)
	}
	return nil
}

// ListModules lists the active modules of a course in display order.
func (r *GORMProductRepository) ListModules(courseID string) ([]models.Module, error) {
	var modules []models.Module
	err := r.db.Where("course_id = ?", courseID).
		Order("sort_order ASC, created_at ASC").
		Find(&modules).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list modules of course %s: %w", courseID, err)
	}
	return modules, nil
}

// applyFilters narrows a products query to the filter. Soft-deleted rows are
// already excluded by GORM's DeletedAt handling.
func applyFilters(query *gorm.DB, filter FilterParams) *gorm.DB {
	if !filter.IncludeUnpublished {
		query = query.Where("is_published = ?", true)
	}

	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		pattern := "%" + strings.ToLower(term) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if filter.ProductType != nil {
		query = query.Where("type = ?", *filter.ProductType)
	}

	if filter.Currency != nil {
		query = query.Where("currency = ?", *filter.Currency)
	}

	if filter.MinPrice != nil {
		query = query.Where("price >= ?", *filter.MinPrice)
	}

	if filter.MaxPrice != nil {
		query = query.Where("price <= ?", *filter.MaxPrice)
	}

	if filter.CreatorID != nil {
		query = query.Where("creator_id = ?", *filter.CreatorID)
	}

	return query
}

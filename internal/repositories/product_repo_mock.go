package repositories

import (
	"sort"
	"strings"
	"sync"
	"time"

	"academy/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the soft-delete and filtering semantics of the GORM
// implementation and backs the memory database mode.
type MockProductRepository struct {
	products map[string]models.Product
	modules  map[string]models.Module
	lessons  map[string]models.Lesson
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
		modules:  make(map[string]models.Module),
		lessons:  make(map[string]models.Lesson),
	}
}

// GetByID returns an active product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok || product.DeletedAt.Valid {
		return nil, ErrNotFound
	}
	return &product, nil
}

// GetAll returns one page of active products matching the filter.
func (r *MockProductRepository) GetAll(filter FilterParams) (*Page[models.Product], error) {
	filter.Normalize()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Product
	for _, p := range r.products {
		if p.DeletedAt.Valid || !matchesFilter(&p, filter) {
			continue
		}
		matched = append(matched, p)
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].Title != matched[j].Title {
			return matched[i].Title < matched[j].Title
		}
		return matched[i].ID < matched[j].ID
	})

	total := int64(len(matched))
	start := (filter.Page - 1) * filter.PageSize
	if start > len(matched) {
		start = len(matched)
	}
	end := start + filter.PageSize
	if end > len(matched) {
		end = len(matched)
	}

	return NewPage(matched[start:end], total, filter.Page, filter.PageSize), nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	now := time.Now()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing active product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok || existing.DeletedAt.Valid {
		return ErrNotFound
	}
	product.UpdatedAt = time.Now()
	r.products[product.ID] = *product
	return nil
}

// Delete soft-deletes a product, forcing it unpublished, and walks the
// course→module→lesson cascade.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok || product.DeletedAt.Valid {
		return ErrNotFound
	}

	now := time.Now()
	product.IsPublished = false
	product.DeletedAt.Time = now
	product.DeletedAt.Valid = true
	r.products[id] = product

	if product.IsCourse() {
		for mid, m := range r.modules {
			if m.CourseID != id || m.DeletedAt.Valid {
				continue
			}
			m.DeletedAt.Time = now
			m.DeletedAt.Valid = true
			r.modules[mid] = m

			for lid, l := range r.lessons {
				if l.ModuleID != mid || l.DeletedAt.Valid {
					continue
				}
				l.DeletedAt.Time = now
				l.DeletedAt.Valid = true
				r.lessons[lid] = l
			}
		}
	}
	return nil
}

// GetCourseByID returns an active course, optionally attaching its active
// modules and lessons in display order.
func (r *MockProductRepository) GetCourseByID(id string, includeModules, includeLessons bool) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	course, ok := r.products[id]
	if !ok || course.DeletedAt.Valid || !course.IsCourse() {
		return nil, ErrNotFound
	}

	if includeModules {
		course.Modules = r.activeModules(id)
		if includeLessons {
			for i := range course.Modules {
				course.Modules[i].Lessons = r.activeLessons(course.Modules[i].ID)
			}
		}
	}
	return &course, nil
}

// GetBookByID returns an active book.
func (r *MockProductRepository) GetBookByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.products[id]
	if !ok || book.DeletedAt.Valid || !book.IsBook() {
		return nil, ErrNotFound
	}
	return &book, nil
}

// CountCourseChildren counts the active modules and lessons of a course.
func (r *MockProductRepository) CountCourseChildren(courseID string) (int64, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var moduleCount, lessonCount int64
	for _, m := range r.modules {
		if m.CourseID != courseID || m.DeletedAt.Valid {
			continue
		}
		moduleCount++
		for _, l := range r.lessons {
			if l.ModuleID == m.ID && !l.DeletedAt.Valid {
				lessonCount++
			}
		}
	}
	return moduleCount, lessonCount, nil
}

// CreateModule adds a new module.
func (r *MockProductRepository) CreateModule(module *models.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if module.ID == "" {
		module.ID = uuid.New().String()
	}
	now := time.Now()
	if module.CreatedAt.IsZero() {
		module.CreatedAt = now
	}
	module.UpdatedAt = now
	r.modules[module.ID] = *module
	return nil
}

// CreateLesson adds a new lesson.
func (r *MockProductRepository) CreateLesson(lesson *models.Lesson) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if lesson.ID == "" {
		lesson.ID = uuid.New().String()
	}
	now := time.Now()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	r.lessons[lesson.ID] = *lesson
	return nil
}

// ListModules lists the active modules of a course in display order.
func (r *MockProductRepository) ListModules(courseID string) ([]models.Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeModules(courseID), nil
}

func (r *MockProductRepository) activeModules(courseID string) []models.Module {
	var modules []models.Module
	for _, m := range r.modules {
		if m.CourseID == courseID && !m.DeletedAt.Valid {
			modules = append(modules, m)
		}
	}
	sort.Slice(modules, func(i, j int) bool {
		if modules[i].Order != modules[j].Order {
			return modules[i].Order < modules[j].Order
		}
		return modules[i].CreatedAt.Before(modules[j].CreatedAt)
	})
	return modules
}

func (r *MockProductRepository) activeLessons(moduleID string) []models.Lesson {
	var lessons []models.Lesson
	for _, l := range r.lessons {
		if l.ModuleID == moduleID && !l.DeletedAt.Valid {
			lessons = append(lessons, l)
		}
	}
	sort.Slice(lessons, func(i, j int) bool {
		if lessons[i].Order != lessons[j].Order {
			return lessons[i].Order < lessons[j].Order
		}
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
	return lessons
}

func matchesFilter(p *models.Product, filter FilterParams) bool {
	if !filter.IncludeUnpublished && !p.IsPublished {
		return false
	}
	if term := strings.TrimSpace(filter.SearchTerm); term != "" {
		term = strings.ToLower(term)
		if !strings.Contains(strings.ToLower(p.Title), term) &&
			!strings.Contains(strings.ToLower(p.Description), term) {
			return false
		}
	}
	if filter.ProductType != nil && p.Type != *filter.ProductType {
		return false
	}
	if filter.Currency != nil && p.Currency != *filter.Currency {
		return false
	}
	if filter.MinPrice != nil && p.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && p.Price > *filter.MaxPrice {
		return false
	}
	if filter.CreatorID != nil && p.CreatorID != *filter.CreatorID {
		return false
	}
	return true
}

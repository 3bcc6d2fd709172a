package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"academy/internal/models"
	"academy/internal/repositories"
	"academy/pkg/rabbitmq"
)

// ProductService handles business logic for the product catalog: courses,
// books, listing filters and the creator-only mutation rules.
type ProductService struct {
	repo     repositories.ProductRepository
	mqClient *rabbitmq.Client // nil disables event publishing
}

// NewProductService creates a new ProductService.
func NewProductService(repo repositories.ProductRepository, mqClient *rabbitmq.Client) *ProductService {
	return &ProductService{
		repo:     repo,
		mqClient: mqClient,
	}
}

// GetProductByID retrieves any product, course or book, as the shared
// projection.
func (s *ProductService) GetProductByID(id string) (*ProductDTO, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	dto := mapToProductDTO(product)
	return &dto, nil
}

// GetAllProducts retrieves one page of products matching the filter.
func (s *ProductService) GetAllProducts(filter repositories.FilterParams) (*repositories.Page[ProductDTO], error) {
	result, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductDTO, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, mapToProductDTO(&result.Items[i]))
	}
	return repositories.NewPage(items, result.TotalItems, result.Page, result.PageSize), nil
}

// GetMyProducts lists the caller's own products, unpublished included when
// the filter says so.
func (s *ProductService) GetMyProducts(userID string, filter repositories.FilterParams) (*repositories.Page[ProductDTO], error) {
	filter.CreatorID = &userID
	return s.GetAllProducts(filter)
}

// GetCourseByID retrieves a course. With includeDetails the active modules
// and lessons are attached to the projection in display order.
func (s *ProductService) GetCourseByID(id string, includeDetails bool) (*CourseDTO, error) {
	course, err := s.repo.GetCourseByID(id, includeDetails, includeDetails)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	return s.mapToCourseDTO(course, includeDetails)
}

// GetAllCourses retrieves one page of courses matching the filter.
func (s *ProductService) GetAllCourses(filter repositories.FilterParams) (*repositories.Page[CourseDTO], error) {
	courseType := models.ProductTypeCourse
	filter.ProductType = &courseType

	result, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, err
	}

	items := make([]CourseDTO, 0, len(result.Items))
	for i := range result.Items {
		dto, err := s.mapToCourseDTO(&result.Items[i], false)
		if err != nil {
			return nil, err
		}
		items = append(items, *dto)
	}
	return repositories.NewPage(items, result.TotalItems, result.Page, result.PageSize), nil
}

// CreateCourse creates a new course owned by creatorID.
func (s *ProductService) CreateCourse(req CreateCourseRequest, creatorID string) (*CourseDTO, error) {
	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	level := req.Level
	if level == "" {
		level = "Beginner"
	}

	course := &models.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      currency,
		CreatorID:     creatorID,
		IsPublished:   req.IsPublished,
		CoverImageURL: req.CoverImageURL,
		Type:          models.ProductTypeCourse,
		Level:         &level,
	}
	if err := s.repo.Create(course); err != nil {
		return nil, fmt.Errorf("failed to create course: %w", err)
	}

	s.publishEvent("catalog.course.created", map[string]interface{}{
		"productID": course.ID,
		"creatorID": course.CreatorID,
		"title":     course.Title,
		"published": course.IsPublished,
	})

	return s.mapToCourseDTO(course, false)
}

// UpdateCourse applies a partial update. Only the owning creator may update;
// fields left nil in the request keep their stored values.
func (s *ProductService) UpdateCourse(id string, req UpdateCourseRequest, userID string) (*CourseDTO, error) {
	course, err := s.repo.GetCourseByID(id, false, false)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	if course.CreatorID != userID {
		log.Printf("User %s tried to update course %s without permission", userID, id)
		return nil, ErrNotOwner
	}

	if req.Currency != nil && !models.ValidCurrency(*req.Currency) {
		return nil, ErrInvalidCurrency(*req.Currency)
	}

	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Description != nil {
		course.Description = *req.Description
	}
	if req.Price != nil {
		course.Price = *req.Price
	}
	if req.Currency != nil {
		course.Currency = *req.Currency
	}
	if req.IsPublished != nil {
		course.IsPublished = *req.IsPublished
	}
	if req.CoverImageURL != nil {
		course.CoverImageURL = req.CoverImageURL
	}
	if req.Level != nil {
		course.Level = req.Level
	}

	if err := s.repo.Update(course); err != nil {
		return nil, s.translateNotFound(err, id)
	}
	return s.mapToCourseDTO(course, false)
}

// DeleteCourse soft-deletes a course and its modules and lessons. Only the
// owning creator may delete.
func (s *ProductService) DeleteCourse(id, userID string) error {
	course, err := s.repo.GetCourseByID(id, false, false)
	if err != nil {
		return s.translateNotFound(err, id)
	}
	if course.CreatorID != userID {
		log.Printf("User %s tried to delete course %s without permission", userID, id)
		return ErrNotOwner
	}

	if err := s.repo.Delete(id); err != nil {
		return s.translateNotFound(err, id)
	}

	s.publishEvent("catalog.product.deleted", map[string]interface{}{
		"productID": id,
		"creatorID": userID,
		"type":      models.ProductTypeCourse,
	})
	return nil
}

// GetBookByID retrieves a book.
func (s *ProductService) GetBookByID(id string) (*BookDTO, error) {
	book, err := s.repo.GetBookByID(id)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	dto := mapToBookDTO(book)
	return &dto, nil
}

// GetAllBooks retrieves one page of books matching the filter.
func (s *ProductService) GetAllBooks(filter repositories.FilterParams) (*repositories.Page[BookDTO], error) {
	bookType := models.ProductTypeBook
	filter.ProductType = &bookType

	result, err := s.repo.GetAll(filter)
	if err != nil {
		return nil, err
	}

	items := make([]BookDTO, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, mapToBookDTO(&result.Items[i]))
	}
	return repositories.NewPage(items, result.TotalItems, result.Page, result.PageSize), nil
}

// CreateBook creates a new book owned by creatorID.
func (s *ProductService) CreateBook(req CreateBookRequest, creatorID string) (*BookDTO, error) {
	currency, err := resolveCurrency(req.Currency)
	if err != nil {
		return nil, err
	}

	author := req.Author
	book := &models.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		Currency:      currency,
		CreatorID:     creatorID,
		IsPublished:   req.IsPublished,
		CoverImageURL: req.CoverImageURL,
		Type:          models.ProductTypeBook,
		Author:        &author,
		Language:      req.Language,
		Format:        req.Format,
		PreviewURL:    req.PreviewURL,
		DownloadURL:   req.DownloadURL,
	}
	if err := s.repo.Create(book); err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}

	s.publishEvent("catalog.book.created", map[string]interface{}{
		"productID": book.ID,
		"creatorID": book.CreatorID,
		"title":     book.Title,
		"published": book.IsPublished,
	})

	dto := mapToBookDTO(book)
	return &dto, nil
}

// UpdateBook applies a partial update. Only the owning creator may update.
func (s *ProductService) UpdateBook(id string, req UpdateBookRequest, userID string) (*BookDTO, error) {
	book, err := s.repo.GetBookByID(id)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	if book.CreatorID != userID {
		log.Printf("User %s tried to update book %s without permission", userID, id)
		return nil, ErrNotOwner
	}

	if req.Currency != nil && !models.ValidCurrency(*req.Currency) {
		return nil, ErrInvalidCurrency(*req.Currency)
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Description != nil {
		book.Description = *req.Description
	}
	if req.Price != nil {
		book.Price = *req.Price
	}
	if req.Currency != nil {
		book.Currency = *req.Currency
	}
	if req.IsPublished != nil {
		book.IsPublished = *req.IsPublished
	}
	if req.CoverImageURL != nil {
		book.CoverImageURL = req.CoverImageURL
	}
	if req.Author != nil {
		book.Author = req.Author
	}
	if req.Language != nil {
		book.Language = req.Language
	}
	if req.Format != nil {
		book.Format = req.Format
	}
	if req.PreviewURL != nil {
		book.PreviewURL = req.PreviewURL
	}
	if req.DownloadURL != nil {
		book.DownloadURL = req.DownloadURL
	}

	if err := s.repo.Update(book); err != nil {
		return nil, s.translateNotFound(err, id)
	}
	dto := mapToBookDTO(book)
	return &dto, nil
}

// DeleteBook soft-deletes a book. Only the owning creator may delete.
func (s *ProductService) DeleteBook(id, userID string) error {
	book, err := s.repo.GetBookByID(id)
	if err != nil {
		return s.translateNotFound(err, id)
	}
	if book.CreatorID != userID {
		log.Printf("User %s tried to delete book %s without permission", userID, id)
		return ErrNotOwner
	}

	if err := s.repo.Delete(id); err != nil {
		return s.translateNotFound(err, id)
	}

	s.publishEvent("catalog.product.deleted", map[string]interface{}{
		"productID": id,
		"creatorID": userID,
		"type":      models.ProductTypeBook,
	})
	return nil
}

// PublishBook flips a book to published. Same not-found/ownership behavior
// as update.
func (s *ProductService) PublishBook(id, userID string) (*BookDTO, error) {
	book, err := s.repo.GetBookByID(id)
	if err != nil {
		return nil, s.translateNotFound(err, id)
	}
	if book.CreatorID != userID {
		log.Printf("User %s tried to publish book %s without permission", userID, id)
		return nil, ErrNotOwner
	}

	book.IsPublished = true
	if err := s.repo.Update(book); err != nil {
		return nil, s.translateNotFound(err, id)
	}

	s.publishEvent("catalog.product.published", map[string]interface{}{
		"productID": id,
		"creatorID": userID,
		"type":      models.ProductTypeBook,
	})

	dto := mapToBookDTO(book)
	return &dto, nil
}

// translateNotFound maps the repository sentinel into the domain error and
// leaves everything else intact.
func (s *ProductService) translateNotFound(err error, id string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("Product with ID %s not found", id)
		return ErrProductNotFound
	}
	return err
}

// publishEvent sends a catalog event, best effort. Publishing failures are
// logged but never surfaced to API callers.
func (s *ProductService) publishEvent(event string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	payload["event"] = event
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Failed to marshal %s event: %v", event, err)
		return
	}
	if err := s.mqClient.Publish("", rabbitmq.CatalogQueue, body); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", event, err)
	}
}

func mapToProductDTO(p *models.Product) ProductDTO {
	return ProductDTO{
		ID:            p.ID,
		Title:         p.Title,
		Description:   p.Description,
		Price:         p.Price,
		Currency:      p.Currency,
		CreatorID:     p.CreatorID,
		IsPublished:   p.IsPublished,
		CoverImageURL: p.CoverImageURL,
		Type:          p.Type,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

// mapToCourseDTO projects a course row. Counts come from dedicated count
// queries so they are right regardless of what was preloaded.
func (s *ProductService) mapToCourseDTO(course *models.Product, withChildren bool) (*CourseDTO, error) {
	moduleCount, lessonCount, err := s.repo.CountCourseChildren(course.ID)
	if err != nil {
		return nil, err
	}

	dto := &CourseDTO{
		ProductDTO:  mapToProductDTO(course),
		ModuleCount: int(moduleCount),
		LessonCount: int(lessonCount),
	}
	if course.Level != nil {
		dto.Level = *course.Level
	}

	if withChildren {
		dto.Modules = make([]ModuleDTO, 0, len(course.Modules))
		for i := range course.Modules {
			dto.Modules = append(dto.Modules, mapToModuleDTO(&course.Modules[i]))
		}
	}
	return dto, nil
}

func mapToModuleDTO(m *models.Module) ModuleDTO {
	dto := ModuleDTO{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Order:       m.Order,
	}
	if len(m.Lessons) > 0 {
		dto.Lessons = make([]LessonDTO, 0, len(m.Lessons))
		for _, l := range m.Lessons {
			dto.Lessons = append(dto.Lessons, LessonDTO{
				ID:          l.ID,
				Title:       l.Title,
				Description: l.Description,
				URL:         l.URL,
				Order:       l.Order,
				Type:        l.Type,
			})
		}
	}
	return dto
}

func mapToBookDTO(b *models.Product) BookDTO {
	dto := BookDTO{
		ProductDTO: mapToProductDTO(b),
		Language:   b.Language,
		Format:     b.Format,
		PreviewURL: b.PreviewURL,
	}
	if b.Author != nil {
		dto.Author = *b.Author
	}
	return dto
}

// resolveCurrency applies the SATS default and validates against the
// supported set.
func resolveCurrency(currency string) (string, error) {
	if currency == "" {
		return models.CurrencySATS, nil
	}
	if !models.ValidCurrency(currency) {
		log.Printf("Invalid currency: %s", currency)
		return "", ErrInvalidCurrency(currency)
	}
	return currency, nil
}

package services_test

import (
	"encoding/json"
	"testing"

	"academy/internal/models"
	"academy/internal/repositories"
	"academy/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockProductRepository is a mock implementation of repositories.ProductRepository
type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) GetByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetAll(filter repositories.FilterParams) (*repositories.Page[models.Product], error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repositories.Page[models.Product]), args.Error(1)
}

func (m *MockProductRepository) Create(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Update(product *models.Product) error {
	args := m.Called(product)
	return args.Error(0)
}

func (m *MockProductRepository) Delete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockProductRepository) GetCourseByID(id string, includeModules, includeLessons bool) (*models.Product, error) {
	args := m.Called(id, includeModules, includeLessons)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) GetBookByID(id string) (*models.Product, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductRepository) CountCourseChildren(courseID string) (int64, int64, error) {
	args := m.Called(courseID)
	return args.Get(0).(int64), args.Get(1).(int64), args.Error(2)
}

func (m *MockProductRepository) CreateModule(module *models.Module) error {
	args := m.Called(module)
	return args.Error(0)
}

func (m *MockProductRepository) CreateLesson(lesson *models.Lesson) error {
	args := m.Called(lesson)
	return args.Error(0)
}

func (m *MockProductRepository) ListModules(courseID string) ([]models.Module, error) {
	args := m.Called(courseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Module), args.Error(1)
}

func strPtr(s string) *string { return &s }

func sampleCourse(id, creatorID string) *models.Product {
	return &models.Product{
		ID:          id,
		Title:       "Go Basics",
		Description: "An introduction",
		Price:       100,
		Currency:    models.CurrencySATS,
		CreatorID:   creatorID,
		IsPublished: true,
		Type:        models.ProductTypeCourse,
		Level:       strPtr("Beginner"),
	}
}

func sampleBook(id, creatorID string) *models.Product {
	return &models.Product{
		ID:          id,
		Title:       "Go in Practice",
		Description: "Patterns and recipes",
		Price:       25,
		Currency:    models.CurrencyUSD,
		CreatorID:   creatorID,
		IsPublished: false,
		Type:        models.ProductTypeBook,
		Author:      strPtr("Jane Writer"),
		DownloadURL: strPtr("https://cdn.example.com/book.pdf"),
	}
}

func TestProductService_CreateCourse(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	mockRepo.On("Create", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockRepo.On("CountCourseChildren", mock.Anything).Return(int64(0), int64(0), nil).Once()

	dto, err := service.CreateCourse(services.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "An introduction",
		Price:       100,
	}, "user-1")
	assert.NoError(t, err)
	assert.Equal(t, "Go Basics", dto.Title)
	assert.Equal(t, "user-1", dto.CreatorID)
	// Omitted currency and level fall back to the defaults.
	assert.Equal(t, models.CurrencySATS, dto.Currency)
	assert.Equal(t, "Beginner", dto.Level)
	assert.Equal(t, models.ProductTypeCourse, dto.Type)
	assert.Equal(t, 0, dto.ModuleCount)
	mockRepo.AssertExpectations(t)
}

func TestProductService_CreateCourse_InvalidCurrency(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	_, err := service.CreateCourse(services.CreateCourseRequest{
		Title:       "Go Basics",
		Description: "An introduction",
		Currency:    "EUR",
	}, "user-1")

	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "INVALID_CURRENCY", vErr.Code)
	// Nothing may be written when validation fails.
	mockRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestProductService_UpdateCourse_PartialUpdate(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	course := sampleCourse("course-1", "user-1")
	mockRepo.On("GetCourseByID", "course-1", false, false).Return(course, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()
	mockRepo.On("CountCourseChildren", "course-1").Return(int64(2), int64(5), nil).Once()

	newPrice := 250.0
	dto, err := service.UpdateCourse("course-1", services.UpdateCourseRequest{
		Price: &newPrice,
	}, "user-1")
	assert.NoError(t, err)
	// Only the price changes; everything else keeps its stored value.
	assert.Equal(t, 250.0, dto.Price)
	assert.Equal(t, "Go Basics", dto.Title)
	assert.Equal(t, "An introduction", dto.Description)
	assert.Equal(t, "Beginner", dto.Level)
	assert.Equal(t, 2, dto.ModuleCount)
	assert.Equal(t, 5, dto.LessonCount)
	mockRepo.AssertExpectations(t)
}

func TestProductService_UpdateCourse_NotOwner(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	course := sampleCourse("course-1", "user-1")
	mockRepo.On("GetCourseByID", "course-1", false, false).Return(course, nil).Once()

	title := "Hijacked"
	_, err := service.UpdateCourse("course-1", services.UpdateCourseRequest{
		Title: &title,
	}, "user-2")
	assert.ErrorIs(t, err, services.ErrNotOwner)
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	assert.Equal(t, "Go Basics", course.Title)
}

func TestProductService_UpdateBook_InvalidCurrency(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	book := sampleBook("book-1", "user-1")
	mockRepo.On("GetBookByID", "book-1").Return(book, nil).Once()

	badCurrency := "DOGE"
	newPrice := 1.0
	_, err := service.UpdateBook("book-1", services.UpdateBookRequest{
		Currency: &badCurrency,
		Price:    &newPrice,
	}, "user-1")

	var vErr *services.ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "INVALID_CURRENCY", vErr.Code)
	// The invalid currency aborts before any field is applied.
	mockRepo.AssertNotCalled(t, "Update", mock.Anything)
	assert.Equal(t, 25.0, book.Price)
}

func TestProductService_DeleteCourse(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	course := sampleCourse("course-1", "user-1")
	mockRepo.On("GetCourseByID", "course-1", false, false).Return(course, nil).Once()
	mockRepo.On("Delete", "course-1").Return(nil).Once()

	err := service.DeleteCourse("course-1", "user-1")
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)

	// Unknown course
	mockRepo.On("GetCourseByID", "missing", false, false).Return(nil, repositories.ErrNotFound).Once()
	err = service.DeleteCourse("missing", "user-1")
	assert.ErrorIs(t, err, services.ErrProductNotFound)

	// Not the owner
	mockRepo.On("GetCourseByID", "course-1", false, false).Return(course, nil).Once()
	err = service.DeleteCourse("course-1", "user-2")
	assert.ErrorIs(t, err, services.ErrNotOwner)
	mockRepo.AssertNumberOfCalls(t, "Delete", 1)
}

func TestProductService_PublishBook(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	book := sampleBook("book-1", "user-1")
	assert.False(t, book.IsPublished)

	mockRepo.On("GetBookByID", "book-1").Return(book, nil).Once()
	mockRepo.On("Update", mock.AnythingOfType("*models.Product")).Return(nil).Once()

	dto, err := service.PublishBook("book-1", "user-1")
	assert.NoError(t, err)
	assert.True(t, dto.IsPublished)
	mockRepo.AssertExpectations(t)

	// Not the owner
	mockRepo.On("GetBookByID", "book-1").Return(book, nil).Once()
	_, err = service.PublishBook("book-1", "user-2")
	assert.ErrorIs(t, err, services.ErrNotOwner)
}

func TestProductService_BookProjectionWithholdsDownloadURL(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	book := sampleBook("book-1", "user-1")
	mockRepo.On("GetBookByID", "book-1").Return(book, nil).Once()

	dto, err := service.GetBookByID("book-1")
	assert.NoError(t, err)
	assert.Equal(t, "Jane Writer", dto.Author)

	// The paid asset URL must never leak through the projection.
	raw, err := json.Marshal(dto)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), "book.pdf")
	assert.NotContains(t, string(raw), "download_url")
}

func TestProductService_GetMyProducts(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	captured := repositories.FilterParams{}
	mockRepo.On("GetAll", mock.AnythingOfType("repositories.FilterParams")).
		Run(func(args mock.Arguments) {
			captured = args.Get(0).(repositories.FilterParams)
		}).
		Return(repositories.NewPage([]models.Product{}, 0, 1, 10), nil).Once()

	_, err := service.GetMyProducts("user-1", repositories.FilterParams{IncludeUnpublished: true})
	assert.NoError(t, err)
	// The listing is always scoped to the caller.
	assert.NotNil(t, captured.CreatorID)
	assert.Equal(t, "user-1", *captured.CreatorID)
	assert.True(t, captured.IncludeUnpublished)
	mockRepo.AssertExpectations(t)
}

func TestProductService_GetCourseByID_WithDetails(t *testing.T) {
	mockRepo := new(MockProductRepository)
	service := services.NewProductService(mockRepo, nil)

	course := sampleCourse("course-1", "user-1")
	course.Modules = []models.Module{
		{
			ID:       "mod-1",
			CourseID: "course-1",
			Title:    "Getting Started",
			Order:    1,
			Lessons: []models.Lesson{
				{ID: "les-1", ModuleID: "mod-1", Title: "Installation", Order: 1, Type: "video"},
			},
		},
	}
	mockRepo.On("GetCourseByID", "course-1", true, true).Return(course, nil).Once()
	mockRepo.On("CountCourseChildren", "course-1").Return(int64(1), int64(1), nil).Once()

	dto, err := service.GetCourseByID("course-1", true)
	assert.NoError(t, err)
	assert.Len(t, dto.Modules, 1)
	assert.Equal(t, "Getting Started", dto.Modules[0].Title)
	assert.Len(t, dto.Modules[0].Lessons, 1)
	assert.Equal(t, 1, dto.ModuleCount)
	assert.Equal(t, 1, dto.LessonCount)
	mockRepo.AssertExpectations(t)
}

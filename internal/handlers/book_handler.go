package handlers

import (
	"log"

	"academy/internal/middleware"
	"academy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// BookHandler handles HTTP requests for books.
type BookHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service *services.ProductService) *BookHandler {
	return &BookHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public book routes.
func (h *BookHandler) RegisterRoutes(router fiber.Router) {
	bookRoutes := router.Group("/books")
	bookRoutes.Get("/", h.HandleGetBooks)
	bookRoutes.Get("/:id", h.HandleGetBookByID)
}

// RegisterProtectedRoutes registers the creator-only book routes.
func (h *BookHandler) RegisterProtectedRoutes(router fiber.Router, auth fiber.Handler) {
	bookRoutes := router.Group("/books")
	bookRoutes.Post("/", auth, h.HandleCreateBook)
	bookRoutes.Put("/:id", auth, h.HandleUpdateBook)
	bookRoutes.Delete("/:id", auth, h.HandleDeleteBook)
	bookRoutes.Post("/:id/publish", auth, h.HandlePublishBook)
}

// HandleGetBooks lists published books with filters and pagination.
func (h *BookHandler) HandleGetBooks(c *fiber.Ctx) error {
	filter := parseListFilter(c)
	filter.IncludeUnpublished = false

	page, err := h.service.GetAllBooks(filter)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(page)
}

// HandleGetBookByID retrieves a single book.
func (h *BookHandler) HandleGetBookByID(c *fiber.Ctx) error {
	book, err := h.service.GetBookByID(c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(book)
}

// HandleCreateBook creates a new book owned by the caller.
func (h *BookHandler) HandleCreateBook(c *fiber.Ctx) error {
	var req services.CreateBookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	book, err := h.service.CreateBook(req, middleware.UserID(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(book)
}

// HandleUpdateBook partially updates a book. Creator-only.
func (h *BookHandler) HandleUpdateBook(c *fiber.Ctx) error {
	var req services.UpdateBookRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update book request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	book, err := h.service.UpdateBook(c.Params("id"), req, middleware.UserID(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(book)
}

// HandleDeleteBook soft-deletes a book. Creator-only.
func (h *BookHandler) HandleDeleteBook(c *fiber.Ctx) error {
	if err := h.service.DeleteBook(c.Params("id"), middleware.UserID(c)); err != nil {
		return domainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandlePublishBook flips a book to published. Creator-only.
func (h *BookHandler) HandlePublishBook(c *fiber.Ctx) error {
	book, err := h.service.PublishBook(c.Params("id"), middleware.UserID(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(book)
}

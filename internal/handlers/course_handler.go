package handlers

import (
	"log"

	"academy/internal/middleware"
	"academy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// CourseHandler handles HTTP requests for courses.
type CourseHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewCourseHandler creates a new CourseHandler.
func NewCourseHandler(service *services.ProductService) *CourseHandler {
	return &CourseHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the public course routes.
func (h *CourseHandler) RegisterRoutes(router fiber.Router) {
	courseRoutes := router.Group("/courses")
	courseRoutes.Get("/", h.HandleGetCourses)
	courseRoutes.Get("/:id", h.HandleGetCourseByID)
}

// RegisterProtectedRoutes registers the creator-only course routes.
func (h *CourseHandler) RegisterProtectedRoutes(router fiber.Router, auth fiber.Handler) {
	courseRoutes := router.Group("/courses")
	courseRoutes.Post("/", auth, h.HandleCreateCourse)
	courseRoutes.Put("/:id", auth, h.HandleUpdateCourse)
	courseRoutes.Delete("/:id", auth, h.HandleDeleteCourse)
}

// HandleGetCourses lists published courses with filters and pagination.
func (h *CourseHandler) HandleGetCourses(c *fiber.Ctx) error {
	filter := parseListFilter(c)
	filter.IncludeUnpublished = false

	page, err := h.service.GetAllCourses(filter)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(page)
}

// HandleGetCourseByID retrieves a single course, optionally with its modules
// and lessons.
func (h *CourseHandler) HandleGetCourseByID(c *fiber.Ctx) error {
	includeDetails := c.QueryBool("includeDetails", false)

	course, err := h.service.GetCourseByID(c.Params("id"), includeDetails)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(course)
}

// HandleCreateCourse creates a new course owned by the caller.
func (h *CourseHandler) HandleCreateCourse(c *fiber.Ctx) error {
	var req services.CreateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create course request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	course, err := h.service.CreateCourse(req, middleware.UserID(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(course)
}

// HandleUpdateCourse partially updates a course. Creator-only.
func (h *CourseHandler) HandleUpdateCourse(c *fiber.Ctx) error {
	var req services.UpdateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update course request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	course, err := h.service.UpdateCourse(c.Params("id"), req, middleware.UserID(c))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(course)
}

// HandleDeleteCourse soft-deletes a course. Creator-only.
func (h *CourseHandler) HandleDeleteCourse(c *fiber.Ctx) error {
	if err := h.service.DeleteCourse(c.Params("id"), middleware.UserID(c)); err != nil {
		return domainErrorResponse(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

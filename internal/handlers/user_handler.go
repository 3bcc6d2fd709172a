package handlers

import (
	"academy/internal/middleware"
	"academy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for user profiles.
type UserHandler struct {
	authService *services.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService) *UserHandler {
	return &UserHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the user routes. All routes require a token.
func (h *UserHandler) RegisterRoutes(router fiber.Router, auth fiber.Handler) {
	userRoutes := router.Group("/users")
	userRoutes.Get("/me", auth, h.HandleGetMe)
}

// HandleGetMe returns the authenticated caller's own profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid token",
		})
	}

	user, err := h.authService.GetUser(services.GetUserRequest{ID: userID})
	if err != nil {
		return domainErrorResponse(c, err)
	}
	if user == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "User not found",
		})
	}

	return c.JSON(user)
}

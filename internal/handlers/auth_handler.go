package handlers

import (
	"log"

	"academy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the authentication routes with the Fiber app.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/signup", h.HandleSignup)
	authRoutes.Post("/signin", h.HandleSignIn)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// HandleSignup handles new user registration.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signup request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	user, err := h.authService.Signup(sanitizeInput(req.Email), sanitizeInput(req.Password))
	if err != nil {
		return domainErrorResponse(c, err)
	}

	return c.JSON(user)
}

// SignInRequest represents the request body for sign-in.
type SignInRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// HandleSignIn handles user sign-in and issues a JWT token.
func (h *AuthHandler) HandleSignIn(c *fiber.Ctx) error {
	var req SignInRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing signin request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		return validationErrorResponse(c, err)
	}

	result, err := h.authService.SignIn(sanitizeInput(req.Email), sanitizeInput(req.Password))
	if err != nil {
		return domainErrorResponse(c, err)
	}

	return c.JSON(result)
}

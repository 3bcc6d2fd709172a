package middleware

import (
	"log"
	"strings"

	"academy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by AuthRequired for downstream handlers.
const (
	LocalUserID = "user_id"
	LocalEmail  = "email"
)

// AuthRequired is a Fiber middleware to check for a valid JWT token. The
// authenticated identity is stored in locals; handlers pass it explicitly
// into domain calls.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header is required",
			})
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Authorization header format must be 'Bearer <token>'",
			})
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		userID, ok := claims["sub"].(string)
		if !ok || userID == "" {
			log.Printf("Token is missing the subject claim")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token",
			})
		}

		c.Locals(LocalUserID, userID)
		if email, ok := claims["email"].(string); ok {
			c.Locals(LocalEmail, email)
		}

		return c.Next()
	}
}

// UserID returns the authenticated user id set by AuthRequired, or "" when
// the request is unauthenticated.
func UserID(c *fiber.Ctx) string {
	if id, ok := c.Locals(LocalUserID).(string); ok {
		return id
	}
	return ""
}

package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler reports liveness and store connectivity.
type HealthHandler struct {
	db *gorm.DB // nil in memory mode
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// RegisterRoutes registers the health endpoint on the app root.
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/health", h.HandleHealth)
}

// HandleHealth pings the store and reports overall status.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	dbStatus := "memory"
	if h.db != nil {
		dbStatus = "connected"
		sqlDB, err := h.db.DB()
		if err != nil {
			dbStatus = "unhealthy: " + err.Error()
		} else if err := sqlDB.Ping(); err != nil {
			dbStatus = "unhealthy: " + err.Error()
		}
	}

	status := "healthy"
	code := fiber.StatusOK
	if dbStatus != "connected" && dbStatus != "memory" {
		status = "degraded"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"db":     dbStatus,
		"time":   time.Now().Format(time.RFC3339),
	})
}

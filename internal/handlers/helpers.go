package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"

	"academy/internal/repositories"
	"academy/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// sanitizeInput strips angle brackets from user-supplied strings. A minimal
// injection mitigation, not a substitute for output encoding.
func sanitizeInput(input string) string {
	input = strings.ReplaceAll(input, "<", "&lt;")
	input = strings.ReplaceAll(input, ">", "&gt;")
	return input
}

// validationErrorResponse renders validator.v10 failures as a field→message map.
func validationErrorResponse(c *fiber.Ctx, err error) error {
	validationErrors := err.(validator.ValidationErrors)
	errorMessages := make(map[string]string)
	for _, e := range validationErrors {
		errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"message": "Validation failed",
		"errors":  errorMessages,
	})
}

// domainErrorResponse translates typed domain failures to HTTP statuses.
// Unknown errors are logged and collapsed into a generic 500 so internal
// detail never reaches the client.
func domainErrorResponse(c *fiber.Ctx, err error) error {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message":   validationErr.Message,
			"errorCode": validationErr.Code,
		})
	case errors.Is(err, services.ErrEmailTaken):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Email already in use",
		})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Wrong email or password",
		})
	case errors.Is(err, services.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request",
		})
	case errors.Is(err, services.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Product not found",
		})
	case errors.Is(err, services.ErrNotOwner):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You don't have permission to modify this product",
		})
	default:
		log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "An unexpected error occurred",
		})
	}
}

// parseListFilter reads the shared listing query parameters. Publication
// visibility is decided by the caller, never by client input on public
// routes.
func parseListFilter(c *fiber.Ctx) repositories.FilterParams {
	filter := repositories.FilterParams{
		Page:       c.QueryInt("page", 1),
		PageSize:   c.QueryInt("pageSize", repositories.DefaultPageSize),
		SearchTerm: c.Query("searchTerm"),
	}

	if v := c.Query("minPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MinPrice = &price
		}
	}
	if v := c.Query("maxPrice"); v != "" {
		if price, err := strconv.ParseFloat(v, 64); err == nil {
			filter.MaxPrice = &price
		}
	}
	if v := c.Query("currency"); v != "" {
		filter.Currency = &v
	}

	return filter
}

package handlers

import (
	"academy/internal/middleware"
	"academy/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for the generic product listing that
// spans both courses and books.
type ProductHandler struct {
	service *services.ProductService
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service: service,
	}
}

// RegisterRoutes registers the public product routes.
func (h *ProductHandler) RegisterRoutes(router fiber.Router) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
}

// RegisterProtectedRoutes registers the token-protected product routes.
// Must run before RegisterRoutes so /products/my wins over /products/:id.
func (h *ProductHandler) RegisterProtectedRoutes(router fiber.Router, auth fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/my", auth, h.HandleGetMyProducts)
}

// HandleGetProducts lists published products with filters and pagination.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	filter := parseListFilter(c)
	// Public listings only ever see published products.
	filter.IncludeUnpublished = false

	page, err := h.service.GetAllProducts(filter)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(page)
}

// HandleGetMyProducts lists the caller's own products, drafts included
// unless the caller opts out.
func (h *ProductHandler) HandleGetMyProducts(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Invalid token",
		})
	}

	filter := parseListFilter(c)
	filter.IncludeUnpublished = c.QueryBool("includeUnpublished", true)

	page, err := h.service.GetMyProducts(userID, filter)
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(page)
}

// HandleGetProductByID retrieves a single product of any type.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	product, err := h.service.GetProductByID(c.Params("id"))
	if err != nil {
		return domainErrorResponse(c, err)
	}
	return c.JSON(product)
}

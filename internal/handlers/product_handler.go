package handlers

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"zapateria/internal/apperrors"
	"zapateria/internal/middleware"
	"zapateria/internal/models"
	"zapateria/internal/services"
)

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes. Reads are public; writes go
// through the bearer-token middleware and the write-role gate.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler, requireWriteRole fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleGetProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", authRequired, requireWriteRole, h.HandleCreateProduct)
	productRoutes.Put("/:id", authRequired, requireWriteRole, h.HandleUpdateProduct)
	productRoutes.Patch("/:id", authRequired, requireWriteRole, h.HandlePartialUpdateProduct)
	productRoutes.Delete("/:id", authRequired, requireWriteRole, h.HandleDeleteProduct)
}

// HandleGetProducts retrieves all active products.
func (h *ProductHandler) HandleGetProducts(c *fiber.Ctx) error {
	products, err := h.service.GetAllProducts()
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"count":   len(products),
		"data":    products,
	})
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	product, err := h.service.GetProductByID(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"data":    product,
	})
}

// HandleCreateProduct creates a new product.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing create request body: %v", err)
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}
	if err := h.validate.Struct(&product); err != nil {
		return h.respondError(c, validationError(err))
	}

	created, err := h.service.CreateProduct(&product, actingUser(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Product created successfully",
		"data":    created,
	})
}

// HandleUpdateProduct replaces all mutable fields of a product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing update request body: %v", err)
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}
	if err := h.validate.Struct(&product); err != nil {
		return h.respondError(c, validationError(err))
	}

	updated, err := h.service.UpdateProduct(id, &product, actingUser(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product updated successfully",
		"data":    updated,
	})
}

// HandlePartialUpdateProduct merges only the provided fields onto a product.
func (h *ProductHandler) HandlePartialUpdateProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}

	var patch models.ProductPatch
	if err := c.BodyParser(&patch); err != nil {
		log.Printf("Error parsing partial update request body: %v", err)
		return h.respondError(c, apperrors.NewValidationError("Invalid request body"))
	}
	if err := h.validate.Struct(&patch); err != nil {
		return h.respondError(c, validationError(err))
	}

	updated, err := h.service.PartialUpdateProduct(id, &patch, actingUser(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product partially updated successfully",
		"data":    updated,
	})
}

// HandleDeleteProduct soft-deletes a product.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return h.respondError(c, err)
	}
	deleted, err := h.service.DeleteProduct(id)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "Product deleted successfully",
		"data":    deleted,
	})
}

// respondError maps service and repository errors to the response envelope.
func (h *ProductHandler) respondError(c *fiber.Ctx, err error) error {
	var validationErr *apperrors.ValidationError
	switch {
	case errors.As(err, &validationErr):
		resp := fiber.Map{
			"success": false,
			"message": validationErr.Message,
		}
		if len(validationErr.Fields) > 0 {
			resp["errors"] = validationErr.Fields
		}
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	case errors.Is(err, apperrors.ErrProductNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"success": false,
			"message": "Product not found",
		})
	default:
		log.Printf("Unexpected error handling %s %s: %v", c.Method(), c.Path(), err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"success": false,
			"message": "Internal server error",
		})
	}
}

// parseID reads the :id path parameter as a positive integer.
func parseID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperrors.NewValidationError("id must be a positive integer")
	}
	return uint(id), nil
}

// actingUser returns the identity id stored by the auth middleware, or ""
// when the request is anonymous.
func actingUser(c *fiber.Ctx) string {
	identity, _ := c.Locals(middleware.IdentityKey).(*models.Identity)
	if identity == nil {
		return ""
	}
	return identity.ID
}

// validationError converts validator errors into the shared taxonomy.
func validationError(err error) *apperrors.ValidationError {
	fields := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			fields[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return &apperrors.ValidationError{Message: "Invalid request data", Fields: fields}
}

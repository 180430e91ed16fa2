package repositories

import (
	"zapateria/internal/models"
)

// ProductRepository defines the interface for product data access. Every
// operation sees only active products (soft-deleted rows are invisible),
// and every returned product is an independent copy of the stored record.
type ProductRepository interface {
	FindAll() ([]models.Product, error)
	// FindByID returns (nil, nil) when no active product matches the id.
	FindByID(id uint) (*models.Product, error)
	Create(product *models.Product) (*models.Product, error)
	Update(id uint, product *models.Product) (*models.Product, error)
	PartialUpdate(id uint, patch *models.ProductPatch) (*models.Product, error)
	// Delete soft-deletes the product and returns it as it existed
	// immediately before deletion.
	Delete(id uint) (*models.Product, error)
}

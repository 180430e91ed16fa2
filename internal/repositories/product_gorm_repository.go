package repositories

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
)

// GORMProductRepository is a GORM implementation of ProductRepository.
// Soft-delete filtering comes from the gorm.DeletedAt field on the model,
// so every query in this file automatically sees active rows only.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// FindAll retrieves all active products, most recently created first.
func (r *GORMProductRepository) FindAll() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Subcategory.Category").
		Order("created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all products: %w", err)
	}
	return products, nil
}

// FindByID retrieves a single active product. A missing or soft-deleted
// product is not an error: it yields (nil, nil).
func (r *GORMProductRepository) FindByID(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Subcategory.Category").First(&product, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return &product, nil
}

// Create inserts a new product. The store assigns the id and timestamps and
// forces version 1; the subcategory is referenced by id, never upserted.
func (r *GORMProductRepository) Create(product *models.Product) (*models.Product, error) {
	record := *product
	record.ID = 0
	record.SubcategoryID = product.Subcategory.ID
	record.Version = 1
	record.DeletedAt = gorm.DeletedAt{}

	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := r.db.Omit("Subcategory").Create(&record).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	return r.reload(record.ID)
}

// Update replaces all mutable fields of an existing product, bumps the
// version by one, and re-validates before committing.
func (r *GORMProductRepository) Update(id uint, product *models.Product) (*models.Product, error) {
	existing, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrProductNotFound
	}

	candidate := *product
	candidate.ID = id
	candidate.CreatedAt = existing.CreatedAt
	candidate.CreatedBy = existing.CreatedBy
	candidate.Version = existing.Version + 1
	if err := candidate.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"name":           candidate.Name,
		"description":    candidate.Description,
		"price":          candidate.Price,
		"stock":          candidate.Stock,
		"size":           candidate.Size,
		"color":          candidate.Color,
		"brand":          candidate.Brand,
		"subcategory_id": candidate.Subcategory.ID,
		"updated_by":     candidate.UpdatedBy,
		"version":        candidate.Version,
	}
	err = r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to update product %d: %w", id, err)
	}
	return r.reload(id)
}

// PartialUpdate merges only the provided fields onto the stored product.
// Protected fields cannot arrive here at all (see models.ProductPatch).
// Categories and subcategories are immutable reference rows, so a nested
// patch only moves the product's subcategory foreign key.
func (r *GORMProductRepository) PartialUpdate(id uint, patch *models.ProductPatch) (*models.Product, error) {
	existing, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrProductNotFound
	}

	merged := *existing
	patch.ApplyTo(&merged)
	merged.Version = existing.Version + 1
	if err := merged.Validate(); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"updated_by": merged.UpdatedBy,
		"version":    merged.Version,
	}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Price != nil {
		updates["price"] = *patch.Price
	}
	if patch.Stock != nil {
		updates["stock"] = *patch.Stock
	}
	if patch.Size != nil {
		updates["size"] = *patch.Size
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if patch.Brand != nil {
		updates["brand"] = *patch.Brand
	}
	if patch.Subcategory != nil {
		updates["subcategory_id"] = patch.Subcategory.ID
	}

	err = r.db.Model(&models.Product{}).Where("id = ?", id).Updates(updates).Error
	if err != nil {
		return nil, fmt.Errorf("failed to partially update product %d: %w", id, err)
	}
	return r.reload(id)
}

// Delete soft-deletes a product and returns its last active state.
func (r *GORMProductRepository) Delete(id uint) (*models.Product, error) {
	existing, err := r.FindByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, apperrors.ErrProductNotFound
	}

	res := r.db.Delete(&models.Product{}, id) // gorm.DeletedAt makes this a soft delete
	if res.Error != nil {
		return nil, fmt.Errorf("failed to delete product %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, apperrors.ErrProductNotFound
	}
	return existing, nil
}

func (r *GORMProductRepository) reload(id uint) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Subcategory.Category").First(&product, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to reload product %d: %w", id, err)
	}
	return &product, nil
}

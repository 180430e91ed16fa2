package repositories

import (
	"sync"
	"time"

	"gorm.io/gorm"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
)

// InMemoryProductRepository is a map-backed implementation of
// ProductRepository, used when no database is configured and in tests.
// Products are stored by value, so callers always get independent copies.
type InMemoryProductRepository struct {
	mu       sync.RWMutex
	products map[uint]models.Product
	nextID   uint
}

// NewInMemoryProductRepository creates a new instance of InMemoryProductRepository.
func NewInMemoryProductRepository() *InMemoryProductRepository {
	return &InMemoryProductRepository{
		products: make(map[uint]models.Product),
		nextID:   1,
	}
}

// active is the single soft-delete predicate for this store.
func active(p models.Product) bool {
	return !p.DeletedAt.Valid
}

// FindAll returns all active products. Iteration order is not guaranteed.
func (r *InMemoryProductRepository) FindAll() ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		if active(p) {
			list = append(list, p)
		}
	}
	return list, nil
}

// FindByID returns the active product with that id, or (nil, nil).
func (r *InMemoryProductRepository) FindByID(id uint) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok || !active(p) {
		return nil, nil
	}
	copied := p
	return &copied, nil
}

// Create assigns an id and timestamps, forces version 1, and stores the product.
func (r *InMemoryProductRepository) Create(product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	record := *product
	record.ID = r.nextID
	record.SubcategoryID = product.Subcategory.ID
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Version = 1
	record.DeletedAt = gorm.DeletedAt{}

	if err := record.Validate(); err != nil {
		return nil, err
	}

	r.nextID++
	r.products[record.ID] = record
	copied := record
	return &copied, nil
}

// Update replaces all mutable fields of an active product.
func (r *InMemoryProductRepository) Update(id uint, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok || !active(existing) {
		return nil, apperrors.ErrProductNotFound
	}

	updated := *product
	updated.ID = id
	updated.SubcategoryID = product.Subcategory.ID
	updated.CreatedAt = existing.CreatedAt
	updated.CreatedBy = existing.CreatedBy
	updated.UpdatedAt = time.Now()
	updated.Version = existing.Version + 1
	updated.DeletedAt = gorm.DeletedAt{}

	if err := updated.Validate(); err != nil {
		return nil, err
	}

	r.products[id] = updated
	copied := updated
	return &copied, nil
}

// PartialUpdate merges the provided fields onto an active product.
func (r *InMemoryProductRepository) PartialUpdate(id uint, patch *models.ProductPatch) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok || !active(existing) {
		return nil, apperrors.ErrProductNotFound
	}

	merged := existing
	patch.ApplyTo(&merged)
	merged.UpdatedAt = time.Now()
	merged.Version = existing.Version + 1

	if err := merged.Validate(); err != nil {
		return nil, err
	}

	r.products[id] = merged
	copied := merged
	return &copied, nil
}

// Delete soft-deletes an active product and returns its pre-deletion state.
func (r *InMemoryProductRepository) Delete(id uint) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[id]
	if !ok || !active(existing) {
		return nil, apperrors.ErrProductNotFound
	}

	copied := existing
	existing.DeletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	r.products[id] = existing
	return &copied, nil
}

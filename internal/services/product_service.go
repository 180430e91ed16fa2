package services

import (
	"log"
	"strings"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
	"zapateria/internal/repositories"
)

// AnonymousUser is stamped into createdBy/updatedBy when no authenticated
// identity performed the mutation.
const AnonymousUser = "anonymous"

// EventPublisher publishes product lifecycle events. A nil publisher
// disables publishing; publish failures never fail the request.
type EventPublisher interface {
	PublishProductEvent(event string, payload map[string]interface{}) error
}

// ProductService holds the product use cases: thin orchestration around the
// repository that applies attribution and entity validation.
type ProductService struct {
	repo   repositories.ProductRepository
	events EventPublisher
}

// NewProductService creates a new ProductService. events may be nil.
func NewProductService(repo repositories.ProductRepository, events EventPublisher) *ProductService {
	return &ProductService{
		repo:   repo,
		events: events,
	}
}

// GetAllProducts retrieves all active products.
func (s *ProductService) GetAllProducts() ([]models.Product, error) {
	return s.repo.FindAll()
}

// GetProductByID retrieves a single active product by its ID.
func (s *ProductService) GetProductByID(id uint) (*models.Product, error) {
	product, err := s.repo.FindByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperrors.ErrProductNotFound
	}
	return product, nil
}

// CreateProduct stamps attribution, validates the entity, and stores it.
func (s *ProductService) CreateProduct(product *models.Product, actingUser string) (*models.Product, error) {
	user := actingOrAnonymous(actingUser)
	product.CreatedBy = user
	product.UpdatedBy = user

	if err := product.Validate(); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(product)
	if err != nil {
		return nil, err
	}
	s.publish("product.created", created)
	return created, nil
}

// UpdateProduct replaces all mutable fields of an existing product.
func (s *ProductService) UpdateProduct(id uint, product *models.Product, actingUser string) (*models.Product, error) {
	product.UpdatedBy = actingOrAnonymous(actingUser)

	if err := product.Validate(); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(id, product)
	if err != nil {
		return nil, err
	}
	s.publish("product.updated", updated)
	return updated, nil
}

// PartialUpdateProduct merges the provided fields onto an existing product.
// Protected fields (id, createdAt, createdBy, deletedAt, version) cannot be
// expressed in a ProductPatch, so they never reach the store.
func (s *ProductService) PartialUpdateProduct(id uint, patch *models.ProductPatch, actingUser string) (*models.Product, error) {
	patch.UpdatedBy = actingOrAnonymous(actingUser)

	updated, err := s.repo.PartialUpdate(id, patch)
	if err != nil {
		return nil, err
	}
	s.publish("product.updated", updated)
	return updated, nil
}

// DeleteProduct soft-deletes a product and returns its last active state.
func (s *ProductService) DeleteProduct(id uint) (*models.Product, error) {
	deleted, err := s.repo.Delete(id)
	if err != nil {
		return nil, err
	}
	s.publish("product.deleted", deleted)
	return deleted, nil
}

func actingOrAnonymous(actingUser string) string {
	if strings.TrimSpace(actingUser) == "" {
		return AnonymousUser
	}
	return actingUser
}

func (s *ProductService) publish(event string, product *models.Product) {
	if s.events == nil {
		return
	}
	payload := map[string]interface{}{
		"productID": product.ID,
		"name":      product.Name,
		"version":   product.Version,
		"updatedBy": product.UpdatedBy,
	}
	if err := s.events.PublishProductEvent(event, payload); err != nil {
		log.Printf("Warning: failed to publish %s event for product %d: %v", event, product.ID, err)
	}
}

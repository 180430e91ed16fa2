package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	"zapateria/internal/apperrors"
	"zapateria/internal/models"
)

func validProduct() models.Product {
	return models.Product{
		Name:        "Zapatilla Urbana",
		Description: "Zapatilla casual para uso diario",
		Price:       59.99,
		Stock:       10,
		Size:        "40",
		Color:       "Blanco",
		Brand:       "UrbanFeet",
		Subcategory: models.Subcategory{
			ID:          101,
			Name:        "Urbano",
			Description: "Calzado urbano",
			Category: models.Category{
				ID:          1001,
				Name:        "Casual",
				Description: "Calzado casual",
			},
		},
	}
}

func TestProductValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *models.Product)
		wantErr string
	}{
		{
			name:   "valid product",
			mutate: func(p *models.Product) {},
		},
		{
			name:    "empty name",
			mutate:  func(p *models.Product) { p.Name = "" },
			wantErr: "product name is required",
		},
		{
			name:    "whitespace-only name",
			mutate:  func(p *models.Product) { p.Name = "   " },
			wantErr: "product name is required",
		},
		{
			name:    "zero price",
			mutate:  func(p *models.Product) { p.Price = 0 },
			wantErr: "product price must be greater than 0",
		},
		{
			name:    "negative price",
			mutate:  func(p *models.Product) { p.Price = -10 },
			wantErr: "product price must be greater than 0",
		},
		{
			name:    "negative stock",
			mutate:  func(p *models.Product) { p.Stock = -1 },
			wantErr: "product stock cannot be negative",
		},
		{
			name: "missing subcategory",
			mutate: func(p *models.Product) {
				p.Subcategory = models.Subcategory{}
				p.SubcategoryID = 0
			},
			wantErr: "subcategory is required",
		},
		{
			name:   "zero stock is allowed",
			mutate: func(p *models.Product) { p.Stock = 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProduct()
			tt.mutate(&p)

			err := p.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var validationErr *apperrors.ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantErr, validationErr.Message)
		})
	}
}

func TestProductPatchApplyTo(t *testing.T) {
	base := validProduct()
	base.ID = 7
	base.CreatedAt = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	base.CreatedBy = "alice"
	base.Version = 3

	newName := "Zapatilla Urbana v2"
	newStock := 99
	subName := "Urbano Premium"

	patch := models.ProductPatch{
		Name:  &newName,
		Stock: &newStock,
		Subcategory: &models.SubcategoryPatch{
			ID:   101,
			Name: &subName,
		},
		UpdatedBy: "bob",
	}

	p := base
	patch.ApplyTo(&p)

	assert.Equal(t, "Zapatilla Urbana v2", p.Name)
	assert.Equal(t, 99, p.Stock)
	assert.Equal(t, "Urbano Premium", p.Subcategory.Name)
	assert.Equal(t, "bob", p.UpdatedBy)

	// untouched fields keep their values
	assert.Equal(t, base.Description, p.Description)
	assert.Equal(t, base.Price, p.Price)
	assert.Equal(t, base.Subcategory.Description, p.Subcategory.Description)
	assert.Equal(t, base.Subcategory.Category, p.Subcategory.Category)

	// protected fields are not expressible in a patch
	assert.Equal(t, base.ID, p.ID)
	assert.Equal(t, base.CreatedAt, p.CreatedAt)
	assert.Equal(t, "alice", p.CreatedBy)
	assert.Equal(t, base.Version, p.Version)
	assert.Equal(t, gorm.DeletedAt{}, p.DeletedAt)
}

func TestProductPatchApplyToMovesSubcategory(t *testing.T) {
	p := validProduct()
	p.SubcategoryID = p.Subcategory.ID

	patch := models.ProductPatch{
		Subcategory: &models.SubcategoryPatch{ID: 202},
	}
	patch.ApplyTo(&p)

	assert.Equal(t, uint(202), p.SubcategoryID)
	assert.Equal(t, uint(202), p.Subcategory.ID)
}

func TestProductPatchApplyToMergesCategoryByField(t *testing.T) {
	p := validProduct()

	catName := "Deportivo"
	patch := models.ProductPatch{
		Subcategory: &models.SubcategoryPatch{
			ID: 101,
			Category: &models.CategoryPatch{
				Name: &catName,
			},
		},
	}
	patch.ApplyTo(&p)

	assert.Equal(t, "Deportivo", p.Subcategory.Category.Name)
	assert.Equal(t, uint(1001), p.Subcategory.Category.ID)
	assert.Equal(t, "Calzado casual", p.Subcategory.Category.Description)
}

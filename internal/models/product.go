package models

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"zapateria/internal/apperrors"
)

// Category is immutable reference data describing a product family.
type Category struct {
	ID          uint   `json:"id" gorm:"primaryKey" validate:"required"`
	Name        string `json:"name" validate:"required,min=1,max=120"`
	Description string `json:"description" validate:"required,min=1,max=500"`
}

// Subcategory groups products under a category.
type Subcategory struct {
	ID          uint     `json:"id" gorm:"primaryKey" validate:"required"`
	Name        string   `json:"name" validate:"required,min=1,max=120"`
	Description string   `json:"description" validate:"required,min=1,max=500"`
	CategoryID  uint     `json:"-"`
	Category    Category `json:"category"`
}

// Product represents a shoe product in the catalog.
type Product struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Name          string         `json:"name" validate:"required,min=3,max=120"`
	Description   string         `json:"description" validate:"required,min=5,max=1000"`
	Price         float64        `json:"price" validate:"required,gt=0"`
	Stock         int            `json:"stock" validate:"gte=0"`
	Size          string         `json:"size" validate:"required,min=1,max=50"`
	Color         string         `json:"color" validate:"required,min=1,max=50"`
	Brand         string         `json:"brand" validate:"required,min=1,max=120"`
	SubcategoryID uint           `json:"-"`
	Subcategory   Subcategory    `json:"subcategory"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	CreatedBy     string         `json:"createdBy"`
	UpdatedBy     string         `json:"updatedBy"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
	Version       int            `json:"version"`
}

// Validate checks the entity invariants that hold regardless of which
// transport or store the product came through.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.NewValidationError("product name is required")
	}
	if p.Price <= 0 {
		return apperrors.NewValidationError("product price must be greater than 0")
	}
	if p.Stock < 0 {
		return apperrors.NewValidationError("product stock cannot be negative")
	}
	if p.Subcategory.ID == 0 && p.SubcategoryID == 0 {
		return apperrors.NewValidationError("subcategory is required")
	}
	return nil
}

// CategoryPatch carries the category fields a partial update may touch.
type CategoryPatch struct {
	ID          *uint   `json:"id" validate:"omitempty,gt=0"`
	Name        *string `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string `json:"description" validate:"omitempty,min=1,max=500"`
}

// SubcategoryPatch carries the subcategory fields a partial update may
// touch. The id is mandatory whenever the subcategory is present at all.
type SubcategoryPatch struct {
	ID          uint           `json:"id" validate:"required"`
	Name        *string        `json:"name" validate:"omitempty,min=1,max=120"`
	Description *string        `json:"description" validate:"omitempty,min=1,max=500"`
	Category    *CategoryPatch `json:"category"`
}

// ProductPatch is the payload of a partial update. Only fields listed here
// can travel through a PATCH; id, createdAt, createdBy, deletedAt, and
// version have no slot, so a client cannot set them no matter what JSON it
// sends.
type ProductPatch struct {
	Name        *string           `json:"name" validate:"omitempty,min=3,max=120"`
	Description *string           `json:"description" validate:"omitempty,min=5,max=1000"`
	Price       *float64          `json:"price" validate:"omitempty,gt=0"`
	Stock       *int              `json:"stock" validate:"omitempty,gte=0"`
	Size        *string           `json:"size" validate:"omitempty,min=1,max=50"`
	Color       *string           `json:"color" validate:"omitempty,min=1,max=50"`
	Brand       *string           `json:"brand" validate:"omitempty,min=1,max=120"`
	Subcategory *SubcategoryPatch `json:"subcategory"`
	UpdatedBy   string            `json:"-"`
}

// ApplyTo merges the provided fields onto the product. Nested subcategory
// and category data merge field by field.
func (u *ProductPatch) ApplyTo(p *Product) {
	if u.Name != nil {
		p.Name = *u.Name
	}
	if u.Description != nil {
		p.Description = *u.Description
	}
	if u.Price != nil {
		p.Price = *u.Price
	}
	if u.Stock != nil {
		p.Stock = *u.Stock
	}
	if u.Size != nil {
		p.Size = *u.Size
	}
	if u.Color != nil {
		p.Color = *u.Color
	}
	if u.Brand != nil {
		p.Brand = *u.Brand
	}
	if u.Subcategory != nil {
		p.SubcategoryID = u.Subcategory.ID
		p.Subcategory.ID = u.Subcategory.ID
		if u.Subcategory.Name != nil {
			p.Subcategory.Name = *u.Subcategory.Name
		}
		if u.Subcategory.Description != nil {
			p.Subcategory.Description = *u.Subcategory.Description
		}
		if c := u.Subcategory.Category; c != nil {
			if c.ID != nil {
				p.Subcategory.CategoryID = *c.ID
				p.Subcategory.Category.ID = *c.ID
			}
			if c.Name != nil {
				p.Subcategory.Category.Name = *c.Name
			}
			if c.Description != nil {
				p.Subcategory.Category.Description = *c.Description
			}
		}
	}
	if u.UpdatedBy != "" {
		p.UpdatedBy = u.UpdatedBy
	}
}

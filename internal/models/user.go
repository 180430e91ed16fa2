package models

import "gorm.io/gorm"

// User represents an account that can authenticate against the catalog.
type User struct {
	ID         string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Username   string `json:"username" gorm:"uniqueIndex;type:varchar(100)" validate:"required,min=3,max=100"`
	Email      string `json:"email" gorm:"uniqueIndex;type:varchar(255)" validate:"required,email"`
	Password   string `gorm:"type:varchar(255)" validate:"required,min=6"` // No json tag for security
	Role       string `json:"role" gorm:"type:varchar(50)" validate:"omitempty,max=50"`
	gorm.Model        // Embed gorm.Model for CreatedAt, UpdatedAt, DeletedAt
}

// Identity is the caller resolved from a bearer token. It is what the
// authorization gate and the audit fields (createdBy/updatedBy) see.
type Identity struct {
	ID    string
	Email string
	Role  string
}

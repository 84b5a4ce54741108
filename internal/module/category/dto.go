package category

import "github.com/google/uuid"

// Category is the API representation of a product category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// SaveCategoryRequest is the request body for creating or updating a category.
type SaveCategoryRequest struct {
	Name        string `json:"name" binding:"required,max=256"`
	Description string `json:"description" binding:"omitempty,max=512"`
}

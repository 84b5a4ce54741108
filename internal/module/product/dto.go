package product

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product is the API representation of a product. Category carries the
// category name instead of the full object.
type Product struct {
	ID                 uuid.UUID       `json:"id"`
	Category           string          `json:"category"`
	Name               string          `json:"name"`
	Description        string          `json:"description"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	DiscountPercentage *float64        `json:"discountPercentage,omitempty"`
}

// SaveProductRequest is the request body for creating or updating a product.
// Price bounds are enforced by the service to match the numeric(8,2) column.
type SaveProductRequest struct {
	CategoryID         uuid.UUID       `json:"categoryId" binding:"required"`
	Name               string          `json:"name" binding:"required,max=256"`
	Description        string          `json:"description" binding:"required"`
	Quantity           int             `json:"quantity" binding:"required"`
	Price              decimal.Decimal `json:"price" binding:"required"`
	DiscountPercentage *float64        `json:"discountPercentage"`
}

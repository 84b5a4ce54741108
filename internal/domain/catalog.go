package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products. Categories are hard-deleted: removing one issues a
// physical DELETE, subject to the referential integrity of the products table.
type Category struct {
	BaseEntity
	Name        string `gorm:"size:256;not null"`
	Description string `gorm:"size:512"`
}

// Product is soft-deleted: a delete request rewrites the row instead of
// removing it. The unique index on (category_id, name, price) is the
// authoritative guard against duplicates under concurrent inserts.
type Product struct {
	DeletableEntity
	CategoryID         uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_products_category_name_price"`
	Name               string          `gorm:"size:256;not null;uniqueIndex:idx_products_category_name_price"`
	Description        string          `gorm:"not null"`
	Quantity           int             `gorm:"not null"`
	Price              decimal.Decimal `gorm:"type:numeric(8,2);not null;uniqueIndex:idx_products_category_name_price"`
	DiscountPercentage *float64

	Category Category `gorm:"foreignKey:CategoryID"`
}

// Image records an uploaded file. The bytes live in the storage provider
// under Path; the row carries the metadata. Hard delete.
type Image struct {
	BaseEntity
	Path        string `gorm:"size:512;not null;uniqueIndex:idx_images_path"`
	ContentType string `gorm:"size:50;not null"`
	Length      int64  `gorm:"not null"`
	Description string
}

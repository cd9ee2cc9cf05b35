package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Item is a product or service that can appear on transactions and invoices
type Item struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	CategoryID    *uuid.UUID          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	Name          string              `gorm:"size:255;not null" json:"name"`
	SKU           string              `gorm:"size:100;uniqueIndex;not null" json:"sku"`
	Description   *string             `gorm:"type:text" json:"description,omitempty"`
	Unit          string              `gorm:"size:30;default:'pcs'" json:"unit"`
	UnitPrice     decimal.Decimal     `gorm:"type:decimal(15,2);not null;default:0" json:"unit_price"`
	CostPrice     decimal.NullDecimal `gorm:"type:decimal(15,2)" json:"cost_price"`
	StockQuantity int                 `gorm:"not null;default:0" json:"stock_quantity"`
	MinStock      int                 `gorm:"not null;default:0" json:"min_stock"`
	TaxRate       decimal.Decimal     `gorm:"type:decimal(5,2);not null;default:0" json:"tax_rate"`
	HSNCode       *string             `gorm:"size:20;column:hsn_code" json:"hsn_code,omitempty"`
	IsService     bool                `gorm:"not null;default:false" json:"is_service"`
	IsActive      bool                `gorm:"not null" json:"is_active"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`

	// Relationships
	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new item
func (i *Item) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Item model
func (Item) TableName() string {
	return "items"
}

// EffectiveCost is the cost price, falling back to the selling price when no cost is recorded.
func (i *Item) EffectiveCost() decimal.Decimal {
	if i.CostPrice.Valid {
		return i.CostPrice.Decimal
	}
	return i.UnitPrice
}

// IsLowStock reports whether a stocked item has fallen to its reorder level.
func (i *Item) IsLowStock() bool {
	return !i.IsService && i.StockQuantity <= i.MinStock
}

// Category groups items for reporting
type Category struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"size:255;uniqueIndex;not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Category model
func (Category) TableName() string {
	return "categories"
}

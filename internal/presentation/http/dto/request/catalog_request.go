package request

import (
	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/shopspring/decimal"
)

// CreateItemRequest represents an item creation request
type CreateItemRequest struct {
	CategoryID    *uuid.UUID          `json:"category_id"`
	Name          string              `json:"name" binding:"required,max=255"`
	SKU           string              `json:"sku" binding:"required,max=100"`
	Description   *string             `json:"description"`
	Unit          string              `json:"unit" binding:"omitempty,max=20"`
	UnitPrice     decimal.Decimal     `json:"unit_price"`
	CostPrice     decimal.NullDecimal `json:"cost_price"`
	StockQuantity int                 `json:"stock_quantity" binding:"min=0"`
	MinStock      int                 `json:"min_stock" binding:"min=0"`
	TaxRate       decimal.Decimal     `json:"tax_rate"`
	HSNCode       *string             `json:"hsn_code"`
	IsService     bool                `json:"is_service"`
	IsActive      *bool               `json:"is_active"`
}

// ItemFilterRequest represents item list parameters
type ItemFilterRequest struct {
	Search     string `form:"search"`
	CategoryID string `form:"category_id"`
	LowStock   bool   `form:"low_stock"`
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Limit      int    `form:"limit"`
}

// CreatePartyRequest represents a customer or supplier creation request
type CreatePartyRequest struct {
	Type         enum.PartyType  `json:"type" binding:"required"`
	Name         string          `json:"name" binding:"required,max=255"`
	Email        *string         `json:"email" binding:"omitempty,email"`
	Phone        *string         `json:"phone" binding:"omitempty,max=50"`
	Address      *string         `json:"address"`
	TaxNumber    *string         `json:"tax_number" binding:"omitempty,max=50"`
	CreditLimit  decimal.Decimal `json:"credit_limit"`
	PaymentTerms int             `json:"payment_terms" binding:"min=0"`
}

// PartyFilterRequest represents party list parameters
type PartyFilterRequest struct {
	Type    string `form:"type"`
	Search  string `form:"search"`
	Page    int    `form:"page"`
	PerPage int    `form:"per_page"`
	Limit   int    `form:"limit"`
}

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=100"`
	Description *string `json:"description"`
}

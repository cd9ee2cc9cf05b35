package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// ItemService handles catalog items. Stock is only changed through the ledger.
type ItemService struct {
	itemRepo     repository.ItemRepository
	categoryRepo repository.CategoryRepository
}

// NewItemService creates a new item service
func NewItemService(itemRepo repository.ItemRepository, categoryRepo repository.CategoryRepository) *ItemService {
	return &ItemService{
		itemRepo:     itemRepo,
		categoryRepo: categoryRepo,
	}
}

// CreateItemInput represents the create item input
type CreateItemInput struct {
	CategoryID    *uuid.UUID
	Name          string
	SKU           string
	Description   *string
	Unit          string
	UnitPrice     decimal.Decimal
	CostPrice     decimal.NullDecimal
	StockQuantity int
	MinStock      int
	TaxRate       decimal.Decimal
	HSNCode       *string
	IsService     bool
	IsActive      *bool
}

// ListItemsInput holds the list filters
type ListItemsInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	CategoryID *uuid.UUID
	LowStock   bool
}

// CreateItem creates a new item with a unique SKU and its opening stock
func (s *ItemService) CreateItem(ctx context.Context, input *CreateItemInput) (*entity.Item, error) {
	var fieldErrors []apperror.FieldError
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if strings.TrimSpace(input.SKU) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "sku", Message: "is required"})
	}
	if input.UnitPrice.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "unit_price", Message: "must not be negative"})
	}
	if input.CostPrice.Valid && input.CostPrice.Decimal.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "cost_price", Message: "must not be negative"})
	}
	if input.StockQuantity < 0 || input.MinStock < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "stock_quantity", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError("Validation failed", fieldErrors...)
	}

	sku := strings.TrimSpace(input.SKU)
	existing, err := s.itemRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Item SKU already exists")
	}

	if input.CategoryID != nil {
		category, err := s.categoryRepo.GetByID(ctx, *input.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, apperror.NewNotFoundError("Category")
		}
	}

	unit := input.Unit
	if unit == "" {
		unit = "pcs"
	}
	active := true
	if input.IsActive != nil {
		active = *input.IsActive
	}
	stock := input.StockQuantity
	if input.IsService {
		stock = 0
	}

	item := &entity.Item{
		CategoryID:    input.CategoryID,
		Name:          strings.TrimSpace(input.Name),
		SKU:           sku,
		Description:   input.Description,
		Unit:          unit,
		UnitPrice:     input.UnitPrice,
		CostPrice:     input.CostPrice,
		StockQuantity: stock,
		MinStock:      input.MinStock,
		TaxRate:       input.TaxRate,
		HSNCode:       input.HSNCode,
		IsService:     input.IsService,
		IsActive:      active,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// GetItem retrieves an item by ID
func (s *ItemService) GetItem(ctx context.Context, id uuid.UUID) (*entity.Item, error) {
	item, err := s.itemRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperror.NewNotFoundError("Item")
	}
	return item, nil
}

// ListItems returns a page of items
func (s *ItemService) ListItems(ctx context.Context, input *ListItemsInput) (*pagination.PaginatedResult[entity.Item], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()

	items, total, err := s.itemRepo.List(ctx, &repository.ItemFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		CategoryID: input.CategoryID,
		LowStock:   input.LowStock,
	})
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(items, p), nil
}

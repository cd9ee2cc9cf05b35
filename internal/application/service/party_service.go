package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sangkips/bizledger-api/internal/domain/entity"
	"github.com/sangkips/bizledger-api/internal/domain/enum"
	"github.com/sangkips/bizledger-api/internal/domain/repository"
	"github.com/sangkips/bizledger-api/pkg/apperror"
	"github.com/sangkips/bizledger-api/pkg/pagination"
	"github.com/shopspring/decimal"
)

// PartyService handles customers and suppliers
type PartyService struct {
	partyRepo repository.PartyRepository
}

// NewPartyService creates a new party service
func NewPartyService(partyRepo repository.PartyRepository) *PartyService {
	return &PartyService{partyRepo: partyRepo}
}

// CreatePartyInput represents the create party input
type CreatePartyInput struct {
	Type         enum.PartyType
	Name         string
	Email        *string
	Phone        *string
	Address      *string
	TaxNumber    *string
	CreditLimit  decimal.Decimal
	PaymentTerms int
}

// ListPartiesInput holds the list filters
type ListPartiesInput struct {
	Pagination *pagination.PaginationParams
	Type       enum.PartyType
	Search     string
}

// CreateParty creates a new customer or supplier
func (s *PartyService) CreateParty(ctx context.Context, input *CreatePartyInput) (*entity.Party, error) {
	var fieldErrors []apperror.FieldError
	if !input.Type.IsValid() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "type", Message: "must be CUSTOMER or SUPPLIER"})
	}
	if strings.TrimSpace(input.Name) == "" {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "name", Message: "is required"})
	}
	if input.CreditLimit.IsNegative() {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "credit_limit", Message: "must not be negative"})
	}
	if input.PaymentTerms < 0 {
		fieldErrors = append(fieldErrors, apperror.FieldError{Field: "payment_terms", Message: "must not be negative"})
	}
	if len(fieldErrors) > 0 {
		return nil, apperror.NewValidationError("Validation failed", fieldErrors...)
	}

	party := &entity.Party{
		Type:         input.Type,
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		Phone:        input.Phone,
		Address:      input.Address,
		TaxNumber:    input.TaxNumber,
		CreditLimit:  input.CreditLimit,
		PaymentTerms: input.PaymentTerms,
	}
	if err := s.partyRepo.Create(ctx, party); err != nil {
		return nil, err
	}
	return party, nil
}

// GetParty retrieves a party by ID
func (s *PartyService) GetParty(ctx context.Context, id uuid.UUID) (*entity.Party, error) {
	party, err := s.partyRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if party == nil {
		return nil, apperror.NewNotFoundError("Party")
	}
	return party, nil
}

// ListParties returns a page of parties
func (s *PartyService) ListParties(ctx context.Context, input *ListPartiesInput) (*pagination.PaginatedResult[entity.Party], error) {
	if input.Pagination == nil {
		input.Pagination = pagination.DefaultPagination()
	}
	input.Pagination.Validate()
	if input.Type != "" && !input.Type.IsValid() {
		return nil, apperror.NewFieldError("type", "must be CUSTOMER or SUPPLIER")
	}

	parties, total, err := s.partyRepo.List(ctx, &repository.PartyFilterParams{
		Pagination: input.Pagination,
		Type:       input.Type,
		Search:     input.Search,
	})
	if err != nil {
		return nil, err
	}

	p := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(parties, p), nil
}
